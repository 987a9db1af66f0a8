package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/usefloww/floww/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Interact with the configuration",
	Long:  `Utilities for validating and viewing the Floww policy configuration`,
}

var configValidateFile string

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the policy configuration file",
	Long:  "", // TODO
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configValidateFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Configuration is invalid.")
			return err
		}
		log.Info().
			Int("providers", len(cfg.Providers)).
			Int("grants", len(cfg.Grants)).
			Int("workflows", len(cfg.Workflows)).
			Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)

	configValidateCmd.Flags().StringVarP(&configValidateFile, "config", "f", "floww.yaml", "The policy config file to validate")
}
