// Package cli holds the neosocial command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/logging"
)

// ServiceName is reported by the index route and the version command.
const ServiceName = "Neo4j Social"

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// app carries the state shared by every subcommand once the root command's
// pre-run has loaded it.
type app struct {
	cfgFile      string
	envFile      string
	addrOverride string
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "neosocial",
		Short:         "Neo4j-backed social graph API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newCheckDBCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and builds the logger.
func (a *app) load() error {
	cfg, err := config.Load(a.envFile, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.New(logging.OptionsFrom(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the command tree with ctx, which is cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
