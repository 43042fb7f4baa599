package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stargods/boxcode/internal/boxsrv/label"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
)

var (
	labelOut      string
	labelName     string
	labelNameCode string
)

// labelCmd renders a label offline, without a server. Useful for checking
// label stock alignment before provisioning anything.
var labelCmd = &cobra.Command{
	Use:   "label <code>",
	Short: "Render a label PNG for a code without a server",
	Args:  cobra.ExactArgs(1),
	RunE:  renderLabel,
}

func init() {
	labelCmd.Flags().StringVarP(&labelOut, "out", "o", "label.png", "Output PNG path")
	labelCmd.Flags().StringVar(&labelName, "name", "", "Box name printed on the label")
	labelCmd.Flags().StringVar(&labelNameCode, "namecode", "", "Short display code printed on the label")
}

func renderLabel(cmd *cobra.Command, args []string) error {
	img, err := label.Compose(&registry.Box{
		Code:     args[0],
		Name:     labelName,
		NameCode: labelNameCode,
		Contents: []string{},
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(labelOut, img, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", labelOut, len(img))
	return nil
}
