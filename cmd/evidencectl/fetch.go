package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

var (
	fetchChain    string
	fetchOutput   string
	fetchNoVerify bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <evidence-id>",
	Short: "Download the payload behind an evidence record",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchChain, "chain", "hot", "Chain to query: hot or cold")
	fetchCmd.Flags().StringVarP(&fetchOutput, "file", "f", "", "Write payload to this path (default: server-suggested name)")
	fetchCmd.Flags().BoolVar(&fetchNoVerify, "no-verify", false, "Skip server-side integrity verification")
}

func runFetch(cmd *cobra.Command, args []string) error {
	client := newClient()

	path := fmt.Sprintf("/api/evidence/%s/file?chain=%s", url.PathEscape(args[0]), url.QueryEscape(fetchChain))
	if fetchNoVerify {
		path += "&verify=false"
	}

	data, suggested, err := client.downloadFile(path)
	if err != nil {
		return err
	}

	target := fetchOutput
	if target == "" {
		target = suggested
	}
	if target == "" {
		target = args[0]
	}

	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	fmt.Printf("Wrote %d bytes to %s\n", len(data), target)
	if fetchNoVerify {
		fmt.Println("Warning: integrity verification was skipped")
	}
	return nil
}
