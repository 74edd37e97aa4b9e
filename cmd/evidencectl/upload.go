package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	uploadInvestigation string
	uploadDescription   string
	uploadUser          string
	uploadRole          string
	uploadChain         string
	uploadMetadata      string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an evidence file and record it on a chain",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadInvestigation, "investigation", "", "Investigation ID (required)")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "Evidence description (required)")
	uploadCmd.Flags().StringVar(&uploadUser, "user", "", "Submitting user ID (required)")
	uploadCmd.Flags().StringVar(&uploadRole, "role", "", "Submitting user role (required)")
	uploadCmd.Flags().StringVar(&uploadChain, "chain", "hot", "Target chain: hot or cold")
	uploadCmd.Flags().StringVar(&uploadMetadata, "metadata", "", "Extra metadata as a JSON object")

	_ = uploadCmd.MarkFlagRequired("investigation")
	_ = uploadCmd.MarkFlagRequired("description")
	_ = uploadCmd.MarkFlagRequired("user")
	_ = uploadCmd.MarkFlagRequired("role")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadMetadata != "" {
		var probe map[string]any
		if err := json.Unmarshal([]byte(uploadMetadata), &probe); err != nil {
			return fmt.Errorf("--metadata must be a JSON object: %w", err)
		}
	}

	fields := map[string]string{
		"investigationId": uploadInvestigation,
		"description":     uploadDescription,
		"userId":          uploadUser,
		"userRole":        uploadRole,
		"chain":           uploadChain,
	}
	if uploadMetadata != "" {
		fields["metadata"] = uploadMetadata
	}

	client := newClient()
	result, err := client.uploadFile("/api/evidence/upload", args[0], fields)
	if err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(result)
	}

	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Evidence ID", stringAt(result, "evidenceId")},
		{"CID", stringAt(result, "cid")},
		{"SHA256", stringAt(result, "sha256")},
		{"Tx ID", stringAt(result, "txId")},
		{"Chain", stringAt(result, "chain")},
	}
	printTable(headers, rows)
	return nil
}
