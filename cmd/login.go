package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usefloww/floww/internal/cliconfig"
	"github.com/usefloww/floww/pkg/client"
)

var loginSkipVerify bool

var loginCmd = &cobra.Command{
	Use:   "login <token>",
	Short: "Authenticate with a Floww policy server",
	Long: `Saves an admin token locally to allow future authenticated requests
	(like managing rules or reading audit logs). The token is verified against
	the server before it is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loginToken := args[0]
		if loginToken == "" {
			return fmt.Errorf("token cannot be empty")
		}

		server := viper.GetString(FlowwAddrKey)
		if server == "" {
			return fmt.Errorf("server address not configured, provide via --server or env")
		}
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("parsing server URL: %w", err)
		}

		if !loginSkipVerify {
			cli := client.New(server, client.WithAuthToken(loginToken))

			log.Info().Msgf("Verifying token against server %q...", u.Host)
			if _, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{Limit: 1}); err != nil {
				return fmt.Errorf("token rejected by server (correlation: %s): %w", correlation, err)
			}
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = &cliconfig.CLIConfig{}
		}
		if err := cfg.SetCredential(server, &cliconfig.Credential{
			Token: loginToken,
		}); err != nil {
			return fmt.Errorf("saving credential: %w", err)
		}
		if err := cliconfig.Save(cfg); err != nil {
			return fmt.Errorf("login succeeded but could not save credentials: %w", err)
		}

		fmt.Printf("%s saved credentials for %s\n", green("✔"), bold(u.Host))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().BoolVar(&loginSkipVerify, "skip-verify", false, "Save the token without verifying it against the server")
}
