// Package cli implements the boxcode command line tool. Commands talk to a
// running boxcode server over its HTTP API; the offline label command
// renders without a server.
package cli

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/stargods/boxcode/internal/common/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	serverURL string
	apiKey    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boxcode",
	Short: "Boxcode CLI - manage box inventory tenants and labels",
	Long: `Boxcode CLI manages tenants and box records on a boxcode server and
renders label images. Record commands need an API key (obtain one with
"boxcode tenant login"); tenant commands need the username and password.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8270", "Boxcode server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("BOXCODE_API_KEY"), "Tenant API key")

	rootCmd.AddCommand(tenantCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(labelCmd)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() *httpx.Client {
	return &httpx.Client{BaseURL: serverURL}
}

func printJSON(body []byte) {
	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(string(out))
}
