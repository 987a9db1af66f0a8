package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/usefloww/floww/pkg/client"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the decision audit log",
	Long:  "", // TODO
}

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	Long:  "", // TODO
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		workflow, err := cmd.Flags().GetString("workflow")
		if err != nil {
			return err
		}
		provider, err := cmd.Flags().GetString("provider")
		if err != nil {
			return err
		}
		correlation, err := cmd.Flags().GetString("correlation")
		if err != nil {
			return err
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit log...")
		audits, _, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         uint(limit),
			CorrelationID: correlation,
			WorkflowID:    workflow,
			ProviderID:    provider,
		})
		if err != nil {
			return err
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Workflow", "Provider", "Action", "Decision", "Source", "Reason", "Error",
		})

		for _, e := range audits {
			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				truncate(e.WorkflowID, 25),
				e.ProviderID,
				e.ActionName,
				e.Decision,
				e.RuleSource,
				truncate(e.Reason, 45),
				e.Error,
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().String("workflow", "", "Only show entries for this workflow id")
	auditLogCmd.Flags().String("provider", "", "Only show entries for this provider id")
	auditLogCmd.Flags().String("correlation", "", "Only show entries for this correlation id")
}
