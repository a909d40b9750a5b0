package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/di"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the uniqueness constraints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := di.InitializeStore(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			constraints := models.Constraints()
			applied := neopersist.EnsureConstraints(cmd.Context(), store.Manager.Runner(), a.logger, constraints...)
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d constraints in place\n", applied, len(constraints))
			if applied < len(constraints) {
				return fmt.Errorf("%d constraints could not be created", len(constraints)-applied)
			}
			return nil
		},
	}
}

func newCheckDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Verify the Neo4j connection and count nodes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := di.InitializeStore(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if err := store.Executor.Verify(ctx); err != nil {
				return fmt.Errorf("Neo4j connection error: %w", err)
			}
			count, err := store.Manager.CountNodes(ctx)
			if err != nil {
				return fmt.Errorf("Neo4j connection error: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connection to Neo4j established (%s), %d nodes\n", a.cfg.Neo4jURI, count)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Printing the version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ServiceName, Version)
		},
	}
}
