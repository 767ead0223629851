// Package httpd implements the httpd command, which serves the REST
// API and, unless disabled, runs the scheduler alongside it.
package httpd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/pricetracker/internal/bootstrap"
)

const errorChannelBufferSize = 1

// Command returns the httpd command.
func Command() *cobra.Command {
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "httpd",
		Short: "Run the HTTP API server",
		Long:  `Serve the REST API for managing products, alerts and parser configurations. The scheduler runs in the same process unless --no-scheduler is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), noScheduler)
		},
	}
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve the API without running the scheduler")
	return cmd
}

func run(ctx context.Context, noScheduler bool) error {
	ctx, cancel := bootstrap.SignalContext(ctx)
	defer cancel()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	schedulerErrCh := make(chan error, errorChannelBufferSize)
	if !noScheduler {
		go func() {
			if runErr := app.Scheduler.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				schedulerErrCh <- runErr
				cancel()
			}
		}()
	}

	if err := app.Server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}

	select {
	case err := <-schedulerErrCh:
		return fmt.Errorf("scheduler stopped: %w", err)
	default:
	}
	return nil
}
