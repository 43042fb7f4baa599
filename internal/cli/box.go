package cli

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/stargods/boxcode/internal/boxsrv/auth"
)

var (
	queryInUse    string
	querySerial   string
	queryName     string
	queryNotes    string
	queryContains string
	queryLimit    int
)

var getCmd = &cobra.Command{
	Use:   "get <code>",
	Short: "Get one box record by code",
	Args:  cobra.ExactArgs(1),
	RunE:  getBox,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query box records with a filter conjunction",
	RunE:  queryBoxes,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Get the next free box record",
	RunE:  nextBox,
}

func init() {
	queryCmd.Flags().StringVar(&queryInUse, "inuse", "", "Filter by inuse (true/false)")
	queryCmd.Flags().StringVar(&querySerial, "serial", "", "Filter by serial")
	queryCmd.Flags().StringVar(&queryName, "name", "", "Filter by name")
	queryCmd.Flags().StringVar(&queryNotes, "notes", "", "Filter by notes")
	queryCmd.Flags().StringVar(&queryContains, "contains", "", "Filter by contents item")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Result limit (server default when 0)")
}

func keyHeader() (http.Header, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: pass --api-key or set BOXCODE_API_KEY")
	}
	h := http.Header{}
	h.Set(auth.HeaderAPIKey, apiKey)
	return h, nil
}

func getBox(cmd *cobra.Command, args []string) error {
	header, err := keyHeader()
	if err != nil {
		return err
	}
	body, err := newClient().Do(http.MethodGet, "/api/"+url.PathEscape(args[0]), header, nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func queryBoxes(cmd *cobra.Command, args []string) error {
	header, err := keyHeader()
	if err != nil {
		return err
	}
	params := url.Values{}
	if queryInUse != "" {
		params.Set("inuse", queryInUse)
	}
	if querySerial != "" {
		params.Set("serial", querySerial)
	}
	if queryName != "" {
		params.Set("name", queryName)
	}
	if queryNotes != "" {
		params.Set("notes", queryNotes)
	}
	if queryContains != "" {
		params.Set("contains", queryContains)
	}
	if queryLimit > 0 {
		params.Set("limit", fmt.Sprintf("%d", queryLimit))
	}
	path := "/api/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	body, err := newClient().Do(http.MethodGet, path, header, nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func nextBox(cmd *cobra.Command, args []string) error {
	header, err := keyHeader()
	if err != nil {
		return err
	}
	body, err := newClient().Do(http.MethodGet, "/api/next", header, nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}
