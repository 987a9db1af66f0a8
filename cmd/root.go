package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/usefloww/floww/internal/buildinfo"
	"github.com/usefloww/floww/internal/logging"
)

// global flags
var (
	userConfig string
	flowwAddr  string
)

const (
	LogLevelKey   = "log.level"
	LogFormatKey  = "log.format"
	LogNoColorKey = "log.no_color"

	FlowwAddrKey = "addr"
)

var rootCmd = &cobra.Command{
	Use:   "floww-policy",
	Short: fmt.Sprintf("Floww policy service (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `The Floww policy service evaluates firewall-style authorization rules
	attached to grants and provider defaults. It decides whether a workflow
	may perform a provider action, and can explain exactly why.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init(nil)
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&userConfig, "user-config", "",
		"User configuration file for default values (default is $HOME/.floww.yaml)")

	flags := rootCmd.PersistentFlags()

	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	bindFlag(flags, LogLevelKey, "log-level")

	flags.String("log-format", "console", "Log format (console, json)")
	bindFlag(flags, LogFormatKey, "log-format")

	flags.Bool("no-color", false, "Disable color output")
	bindFlag(flags, LogNoColorKey, "no-color")

	flags.StringVar(&flowwAddr, "server", "", "Address of the remote policy server")
	bindFlag(flags, FlowwAddrKey, "server")

	viper.SetEnvPrefix("FLOWW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func bindFlag(fs *pflag.FlagSet, key, name string) {
	_ = viper.BindPFlag(key, fs.Lookup(name))
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if userConfig != "" {
		viper.SetConfigFile(userConfig)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		config, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(config + "/floww")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".floww")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}
