package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/usefloww/floww/internal/core"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage policy rules for grants and providers",
	Long: `Read and replace the ordered rule lists stored for grants and provider
	defaults. Rule files are YAML (or JSON, which is a YAML subset).

Note: These commands require admin authentication, see 'floww-policy login'.`,
}

var rulesGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Manage the rules of a grant",
}

var rulesProviderCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage the default rules of a provider",
}

var rulesGrantGetCmd = &cobra.Command{
	Use:   "get <grant-id>",
	Short: "Show the ordered rules of a grant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}
		rules, correlation, err := cli.GetGrantRules(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching grant rules (correlation: %s): %w", correlation, err)
		}
		printRules(rules)
		return nil
	},
}

var rulesGrantSetCmd = &cobra.Command{
	Use:   "set <grant-id>",
	Short: "Replace the ordered rules of a grant from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRulesFile(cmd)
		if err != nil {
			return err
		}
		cli, err := getClient()
		if err != nil {
			return err
		}
		stored, correlation, err := cli.SetGrantRules(cmd.Context(), args[0], rules)
		if err != nil {
			return fmt.Errorf("setting grant rules (correlation: %s): %w", correlation, err)
		}
		log.Info().Msgf("Stored %d rule(s) for grant %q", len(stored), args[0])
		return nil
	},
}

var rulesProviderGetCmd = &cobra.Command{
	Use:   "get <provider-id>",
	Short: "Show the ordered default rules of a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}
		rules, correlation, err := cli.GetProviderRules(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching provider rules (correlation: %s): %w", correlation, err)
		}
		printRules(rules)
		return nil
	},
}

var rulesProviderSetCmd = &cobra.Command{
	Use:   "set <provider-id>",
	Short: "Replace the ordered default rules of a provider from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRulesFile(cmd)
		if err != nil {
			return err
		}
		cli, err := getClient()
		if err != nil {
			return err
		}
		stored, correlation, err := cli.SetProviderRules(cmd.Context(), args[0], rules)
		if err != nil {
			return fmt.Errorf("setting provider rules (correlation: %s): %w", correlation, err)
		}
		log.Info().Msgf("Stored %d default rule(s) for provider %q", len(stored), args[0])
		return nil
	},
}

func loadRulesFile(cmd *cobra.Command) ([]core.PolicyRule, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	// an empty file clears the rule list
	var rules []core.PolicyRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %q: %w", path, err)
	}
	return rules, nil
}

func printRules(rules []core.PolicyRule) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"#", "Effect", "Action", "Constraints", "Expr", "Description",
	})

	for i, r := range rules {
		var constrained []string
		for name := range r.ParameterConstraints {
			constrained = append(constrained, name)
		}

		t.AppendRow(table.Row{
			i,
			r.Effect,
			r.ActionOrWildcard(),
			strings.Join(constrained, ", "),
			truncate(r.Expr, 30),
			truncate(r.Description, 40),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesGrantCmd, rulesProviderCmd)
	rulesGrantCmd.AddCommand(rulesGrantGetCmd, rulesGrantSetCmd)
	rulesProviderCmd.AddCommand(rulesProviderGetCmd, rulesProviderSetCmd)

	for _, c := range []*cobra.Command{rulesGrantSetCmd, rulesProviderSetCmd} {
		c.Flags().StringP("file", "f", "", "YAML file holding the ordered rule list")
		_ = c.MarkFlagRequired("file")
	}
}
