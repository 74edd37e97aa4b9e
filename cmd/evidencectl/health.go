package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check service and dependency health",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp map[string]any
	if err := client.getHealthJSON("/health", &resp); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}

	headers := []string{"Check", "Status"}
	rows := [][]string{
		{"Service", stringAt(resp, "status")},
	}
	if checks, ok := resp["checks"].(map[string]any); ok {
		for _, name := range []string{"ipfs", "hotChain", "coldChain"} {
			status := "down"
			if up, _ := checks[name].(bool); up {
				status = "up"
			}
			rows = append(rows, []string{name, status})
		}
	}

	printTable(headers, rows)
	return nil
}
