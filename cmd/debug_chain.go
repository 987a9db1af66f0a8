package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/usefloww/floww/internal/config"
	"github.com/usefloww/floww/internal/engine"
	"github.com/usefloww/floww/internal/resolver"
	"github.com/usefloww/floww/internal/store"
)

var (
	debugChainFile     string
	debugChainWorkflow string
	debugChainProvider string
)

// debugChainCmd builds a rule chain from a local config file without a
// running server, then dumps it. Useful to inspect grant resolution and
// rule ordering before deploying a config.
var debugChainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Build and dump the rule chain for a workflow and provider",
	Example: `  floww-policy debug chain -f floww.yaml --workflow wf-1 --provider github`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(debugChainFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		recordStore := store.NewMemory()
		if err := seedStore(cmd.Context(), recordStore, cfg); err != nil {
			return fmt.Errorf("seeding record store: %w", err)
		}

		builder := engine.NewBuilder(recordStore, resolver.New(recordStore))
		chain, err := builder.Build(cmd.Context(), debugChainWorkflow, debugChainProvider)
		if err != nil {
			return fmt.Errorf("building chain: %w", err)
		}

		log.Info().Msgf("Chain for workflow %q, provider %q (%d rules):",
			debugChainWorkflow, debugChainProvider, len(chain.Rules))
		spew.Dump(chain)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugChainCmd)

	debugChainCmd.Flags().StringVarP(&debugChainFile, "config", "f", "floww.yaml", "The policy config file to use")
	debugChainCmd.Flags().StringVarP(&debugChainWorkflow, "workflow", "w", "", "Workflow id to build the chain for")
	debugChainCmd.Flags().StringVarP(&debugChainProvider, "provider", "p", "", "Provider id to build the chain for")

	_ = debugChainCmd.MarkFlagRequired("workflow")
	_ = debugChainCmd.MarkFlagRequired("provider")
}
