// Package track implements the track command, which runs the
// scheduler loop that checks due products until interrupted.
package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/pricetracker/internal/bootstrap"
)

// Command returns the track command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Run the price check scheduler",
		Long:  `Run the scheduler loop that periodically checks due products, records observations and raises alerts. Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
}

func run(ctx context.Context) error {
	ctx, cancel := bootstrap.SignalContext(ctx)
	defer cancel()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	app.Logger.Info("Starting scheduler",
		"tick_interval", app.Config.Scheduler.TickInterval,
		"max_concurrent", app.Config.Scheduler.MaxConcurrent)

	if err := app.Scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler stopped: %w", err)
	}

	app.Logger.Info("Scheduler stopped")
	return nil
}
