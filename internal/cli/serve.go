package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/di"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&a.addrOverride, "addr", "", "listen address, overrides server_address")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if a.addrOverride != "" {
		a.cfg.ServerAddress = a.addrOverride
	}
	container, cleanup, err := di.InitializeContainer(ctx, a.cfg, a.logger, httpapi.ServiceInfo{
		Name:    ServiceName,
		Version: Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()

	srv := container.Server
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server",
			zap.String("address", srv.Addr),
			zap.Bool("debug", a.cfg.Debug),
			zap.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.logger.Info("Server exited")
	return nil
}
