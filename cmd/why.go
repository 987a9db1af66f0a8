package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/service"
)

var (
	whyWorkflow   string
	whyProvider   string
	whyParams     []string
	whyParamsJSON string
	whySource     string
)

var whyCmd = &cobra.Command{
	Use:   "why <action>",
	Short: "Explain why an action is allowed or denied",
	Long: `Simulates an evaluation against the server and returns a detailed trace of
	every rule in the chain. Useful for debugging why an action is being denied
	or matching the wrong rule.

Note: This command requires a Floww policy server to be running and reachable.`,
	Example: `  # Why is deleteRepo denied for this workflow?
  floww-policy why deleteRepo --workflow wf-1 --provider github

  # Only show the grant rules of the chain
  floww-policy why deleteRepo --workflow wf-1 --provider github --source grant`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(whyParams)
		if err != nil {
			return err
		}
		if whyParamsJSON != "" {
			if err := json.Unmarshal([]byte(whyParamsJSON), &params); err != nil {
				return fmt.Errorf("parsing --params: %w", err)
			}
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		trace, correlation, err := cli.ExplainTrace(cmd.Context(), service.EvaluateRequest{
			WorkflowID: whyWorkflow,
			ProviderID: whyProvider,
			Action:     args[0],
			Parameters: params,
		})
		if err != nil {
			return fmt.Errorf("explaining action (correlation: %s): %w", correlation, err)
		}

		printTrace(trace)
		return nil
	},
}

func printTrace(trace *core.EvaluationTrace) {
	fmt.Printf("\n%s for workflow %s, provider %s, action %s\n",
		bold("Evaluation Trace"),
		bold(trace.WorkflowID),
		bold(trace.ProviderID),
		bold(trace.Action))

	fmt.Println(faint("---------------------------------------------------"))

	for _, res := range trace.RuleResults {
		if whySource != "" && string(res.Source) != whySource {
			continue
		}

		icon := red("✖")
		if res.Matched {
			icon = green("✔")
		}

		name := fmt.Sprintf("#%d (%s)", res.Index, res.Source)
		if res.Index == trace.MatchedIndex {
			name += " " + cyan("← decides")
		}

		fmt.Printf("%s Rule: %s\n", icon, bold(name))
		if res.Description != "" {
			fmt.Printf("  %s\n", faint(res.Description))
		}

		for _, check := range res.CheckResults {
			checkIcon := red("✖")
			if check.Matched {
				checkIcon = green("✔")
			}

			fmt.Printf("    %s %s\n", checkIcon, check.Expression)

			if check.Reason != "" {
				reason := check.Reason
				if check.Matched {
					reason = faint(reason)
				} else {
					reason = yellow(reason)
				}
				fmt.Printf("      ↳ %s\n", reason)
			}
		}

		fmt.Println()
	}

	fmt.Println("---------------------------------------------------")
	if trace.Decision == core.DecisionAllowed {
		fmt.Printf("Decision: %s (%s)\n", bold(green("allowed")), trace.Reason)
	} else {
		fmt.Printf("Decision: %s (%s)\n", bold(red("denied")), trace.Reason)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyCmd.Flags().StringVarP(&whyWorkflow, "workflow", "w", "", "Workflow id to evaluate for")
	whyCmd.Flags().StringVarP(&whyProvider, "provider", "p", "", "Provider id the action targets")
	whyCmd.Flags().StringArrayVar(&whyParams, "param", nil, "Action parameter as key=value (repeatable)")
	whyCmd.Flags().StringVar(&whyParamsJSON, "params", "", "Action parameters as a JSON object")
	whyCmd.Flags().StringVar(&whySource, "source", "", "Filter output to rules from this source: grant or default (optional)")

	_ = whyCmd.MarkFlagRequired("workflow")
	_ = whyCmd.MarkFlagRequired("provider")
}
