// Package serve implements the HTTP API server subcommand.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlaakso/agrisight-go/internal/analysis"
	"github.com/mlaakso/agrisight-go/internal/api"
	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serve the analysis and crop recommendation API over HTTP until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVar(&settings.WebServer.Host, "host", viper.GetString("webserver.host"), "Address to listen on")
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings) error {
	system, err := analysis.NewSystem(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis system: %w", err)
	}

	controller := api.New(settings, system.Pipeline, system.KnowledgeBase, system.Metrics, system.Classifier.BreakerState)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := controller.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return controller.Shutdown(shutdownCtx)
}
