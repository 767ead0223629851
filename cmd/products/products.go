// Package products implements the products command, which lists
// tracked products in a formatted table.
package products

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/pricetracker/internal/bootstrap"
	"github.com/jonesrussell/pricetracker/internal/domain"
)

// Command returns the products command.
func Command() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List tracked products",
		Long:  `Display all tracked products in a table, optionally filtered by status (active, paused, error, not_trackable).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), status)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by product status")
	return cmd
}

func run(ctx context.Context, status string) error {
	if status != "" && !domain.ProductStatus(status).Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	products, err := app.Repos.Products.List(ctx, domain.ProductStatus(status))
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		fmt.Println("No products tracked")
		return nil
	}

	renderTable(products)
	return nil
}

func renderTable(products []*domain.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Domain", "Status", "Price", "Target", "Last Checked"})

	for _, p := range products {
		t.AppendRow(table.Row{
			p.ID,
			stringOr(p.Name, "-"),
			p.Domain,
			p.Status,
			priceOr(p.CurrentPrice, p.Currency),
			priceOr(p.TargetPrice, p.Currency),
			checkedAt(p.LastCheckedAt),
		})
	}

	t.Render()
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func priceOr(price *float64, currency string) string {
	if price == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f %s", *price, currency)
}

func checkedAt(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
