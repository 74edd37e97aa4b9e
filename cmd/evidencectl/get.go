package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var getChain string

var getCmd = &cobra.Command{
	Use:   "get <evidence-id>",
	Short: "Fetch the ledger record for an evidence id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&getChain, "chain", "hot", "Chain to query: hot or cold")
}

func runGet(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp struct {
		Success  bool           `json:"success"`
		Evidence map[string]any `json:"evidence"`
	}
	path := fmt.Sprintf("/api/evidence/%s?chain=%s", url.PathEscape(args[0]), url.QueryEscape(getChain))
	if err := client.getJSON(path, &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp.Evidence)
	}

	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Evidence ID", stringAt(resp.Evidence, "evidenceId")},
		{"Investigation", stringAt(resp.Evidence, "investigationId")},
		{"Description", truncate(stringAt(resp.Evidence, "description"), 60)},
		{"CID", stringAt(resp.Evidence, "cid")},
		{"SHA256", stringAt(resp.Evidence, "sha256")},
		{"Recorded By", stringAt(resp.Evidence, "recordedBy")},
		{"Recorded At", stringAt(resp.Evidence, "recordedAt")},
		{"Chain", stringAt(resp.Evidence, "chain")},
	}
	printTable(headers, rows)
	return nil
}
