package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/service"
)

var (
	evalWorkflow   string
	evalProvider   string
	evalParams     []string
	evalParamsJSON string
)

var evalCmd = &cobra.Command{
	Use:   "eval <action>",
	Short: "Evaluate an action against the policy rule chain",
	Long: `Builds the rule chain for a workflow and provider, evaluates the given
	action against it and prints the decision.

Note: This command requires a Floww policy server to be running and reachable.`,
	Example: `  # May workflow wf-1 send a Slack message to #general?
  floww-policy eval sendMessage --workflow wf-1 --provider slack --param channel=general

  # Complex parameter bags can be passed as JSON
  floww-policy eval createRepo --workflow wf-1 --provider github --params '{"private": true}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := args[0]

		params, err := parseParams(evalParams)
		if err != nil {
			return err
		}
		if evalParamsJSON != "" {
			if err := json.Unmarshal([]byte(evalParamsJSON), &params); err != nil {
				return fmt.Errorf("parsing --params: %w", err)
			}
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		decision, correlation, err := cli.Evaluate(cmd.Context(), service.EvaluateRequest{
			WorkflowID: evalWorkflow,
			ProviderID: evalProvider,
			Action:     action,
			Parameters: params,
		})
		if err != nil {
			return fmt.Errorf("evaluating action (correlation: %s): %w", correlation, err)
		}

		printDecision(action, decision)
		return nil
	},
}

func printDecision(action string, decision *service.Decision) {
	verdict := red(string(core.DecisionDenied))
	if decision.Decision == core.DecisionAllowed {
		verdict = green(string(core.DecisionAllowed))
	}

	fmt.Printf("\n%s %s\n", bold("Action:"), action)
	fmt.Printf("%s %s\n", bold("Decision:"), verdict)
	fmt.Printf("%s %s\n", bold("Reason:"), decision.Reason)

	if decision.MatchedRule != nil {
		fmt.Printf("%s %s rule for action %s\n",
			bold("Matched:"),
			cyan(string(decision.MatchedRule.Source)),
			cyan(decision.MatchedRule.ActionOrWildcard()))
	} else {
		fmt.Printf("%s %s\n", bold("Matched:"), faint("(no rule, implicit allow)"))
	}

	fmt.Printf("%s %d rule(s) in chain\n", faint("Chain:"), len(decision.Chain.Rules))
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalWorkflow, "workflow", "w", "", "Workflow id to evaluate for")
	evalCmd.Flags().StringVarP(&evalProvider, "provider", "p", "", "Provider id the action targets")
	evalCmd.Flags().StringArrayVar(&evalParams, "param", nil, "Action parameter as key=value (repeatable)")
	evalCmd.Flags().StringVar(&evalParamsJSON, "params", "", "Action parameters as a JSON object")

	_ = evalCmd.MarkFlagRequired("workflow")
	_ = evalCmd.MarkFlagRequired("provider")
}
