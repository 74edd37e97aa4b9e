package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	auditAction   string
	auditActor    string
	auditChain    string
	auditEvidence string
	auditOutcome  string
	auditPageSize int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read the local operation audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events, newest first",
	RunE:  runAuditList,
}

func init() {
	auditListCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action (upload, retrieve, retrieve-file)")
	auditListCmd.Flags().StringVar(&auditActor, "actor", "", "Filter by actor user id")
	auditListCmd.Flags().StringVar(&auditChain, "chain", "", "Filter by chain")
	auditListCmd.Flags().StringVar(&auditEvidence, "evidence", "", "Filter by evidence id")
	auditListCmd.Flags().StringVar(&auditOutcome, "outcome", "", "Filter by outcome (success, failure)")
	auditListCmd.Flags().IntVar(&auditPageSize, "page-size", 20, "Events per page")

	auditCmd.AddCommand(auditListCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	client := newClient()

	q := url.Values{}
	if auditAction != "" {
		q.Set("action", auditAction)
	}
	if auditActor != "" {
		q.Set("actor", auditActor)
	}
	if auditChain != "" {
		q.Set("chain", auditChain)
	}
	if auditEvidence != "" {
		q.Set("evidenceId", auditEvidence)
	}
	if auditOutcome != "" {
		q.Set("outcome", auditOutcome)
	}
	q.Set("pageSize", fmt.Sprintf("%d", auditPageSize))

	var resp struct {
		Events []map[string]any `json:"events"`
		Total  int              `json:"totalSize"`
	}
	if err := client.getJSON("/api/audit/events?"+q.Encode(), &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp.Events)
	}

	headers := []string{"Time", "Action", "Actor", "Evidence", "Chain", "Outcome", "Reason"}
	rows := make([][]string, 0, len(resp.Events))
	for _, ev := range resp.Events {
		rows = append(rows, []string{
			stringAt(ev, "createdAt"),
			stringAt(ev, "action"),
			stringAt(ev, "actor"),
			stringAt(ev, "evidenceId"),
			stringAt(ev, "chain"),
			stringAt(ev, "outcome"),
			truncate(stringAt(ev, "reason"), 40),
		})
	}
	printTable(headers, rows)
	fmt.Printf("\n%d of %d events\n", len(resp.Events), resp.Total)
	return nil
}
