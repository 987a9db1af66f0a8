package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/usefloww/floww/internal/api"
	"github.com/usefloww/floww/internal/audit"
	"github.com/usefloww/floww/internal/config"
	"github.com/usefloww/floww/internal/core"
	"github.com/usefloww/floww/internal/resolver"
	"github.com/usefloww/floww/internal/service"
	"github.com/usefloww/floww/internal/store"
)

var servePolicyFile string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Floww policy server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(servePolicyFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log.Info().Msg("Initializing record store...")
		recordStore, err := store.Build(cfg.Storage.Type, cfg.Storage.Config)
		if err != nil {
			return fmt.Errorf("building record store: %w", err)
		}
		if err := seedStore(cmd.Context(), recordStore, cfg); err != nil {
			return fmt.Errorf("seeding record store: %w", err)
		}

		auditor, err := audit.Build(cfg.Audit.Enabled, cfg.Audit.Type, cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			_ = auditor.Close()
		}()

		signingKey := []byte(cfg.AdminKey)
		if len(signingKey) == 0 {
			log.Warn().Msg("no admin_key configured, generating an ephemeral signing key")
			signingKey = make([]byte, 32)
			if _, err := rand.Read(signingKey); err != nil {
				return fmt.Errorf("generating signing key: %w", err)
			}
		}

		svc := service.NewPolicyService(recordStore, resolver.New(recordStore), auditor)
		srv := api.NewServer(svc, auditor)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(signingKey),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

// seedStore applies the config's providers, hierarchy and grants to the
// store. Seeds win over previously persisted records with the same ids.
func seedStore(ctx context.Context, dst store.Seeder, cfg *config.Config) error {
	for _, p := range cfg.Providers {
		if _, err := dst.SetProviderDefaultRules(ctx, p.ID, p.DefaultRules); err != nil {
			return fmt.Errorf("seeding provider '%s': %w", p.ID, err)
		}
	}
	for _, f := range cfg.Folders {
		if err := dst.SetParent(ctx, f.ID, f.Parent); err != nil {
			return fmt.Errorf("seeding folder '%s': %w", f.ID, err)
		}
	}
	for _, w := range cfg.Workflows {
		if err := dst.SetParent(ctx, w.ID, w.Folder); err != nil {
			return fmt.Errorf("seeding workflow '%s': %w", w.ID, err)
		}
	}
	for _, g := range cfg.Grants {
		grant := core.Grant{
			ID:       g.ID,
			Scope:    g.Scope,
			Provider: g.Provider,
			Rules:    g.Rules,
		}
		if err := dst.PutGrant(ctx, grant); err != nil {
			return fmt.Errorf("seeding grant '%s': %w", g.ID, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVarP(&servePolicyFile, "config", "f", "floww.yaml", "The policy config file to use")
}
