package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
)

var rootCmd = &cobra.Command{
	Use:   "evidencectl",
	Short: "CLI for the evidence service",
	Long: `evidencectl talks to the evidence service REST API.

It uploads evidence files into the content store and the custody ledger,
retrieves records and payloads, and reads the local audit trail.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "Evidence service URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(auditCmd)
}

func defaultServer() string {
	if v := os.Getenv("EVIDENCE_SERVER_URL"); v != "" {
		return v
	}
	return "http://localhost:3000"
}
