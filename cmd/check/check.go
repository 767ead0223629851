// Package check implements the check command, which runs a single
// price check for one product.
package check

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/pricetracker/internal/bootstrap"
)

const defaultCheckTimeout = 5 * time.Minute

// Command returns the check command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "check <product-id>",
		Short: "Run a price check for a single product",
		Long:  `Check one product immediately, bypassing its schedule. The outcome is recorded the same way a scheduled check would be.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			return run(cmd.Context(), productID)
		},
	}
}

func run(ctx context.Context, productID int64) error {
	ctx, cancel := bootstrap.SignalContext(ctx)
	defer cancel()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	checkCtx, checkCancel := context.WithTimeout(ctx, defaultCheckTimeout)
	defer checkCancel()

	if err := app.Tracker.RunCheckNow(checkCtx, productID); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	product, err := app.Repos.Products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to reload product: %w", err)
	}

	fmt.Printf("Product %d (%s)\n", product.ID, product.URL)
	fmt.Printf("  Status: %s\n", product.Status)
	if product.CurrentPrice != nil {
		fmt.Printf("  Price:  %.2f %s\n", *product.CurrentPrice, product.Currency)
	} else {
		fmt.Println("  Price:  unknown")
	}
	if product.LastErrorMessage != nil && *product.LastErrorMessage != "" {
		fmt.Printf("  Last error: %s\n", *product.LastErrorMessage)
	}
	return nil
}
