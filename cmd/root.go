// Package cmd implements the command-line interface for the price
// tracker.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/pricetracker/cmd/check"
	"github.com/jonesrussell/pricetracker/cmd/httpd"
	"github.com/jonesrussell/pricetracker/cmd/products"
	"github.com/jonesrussell/pricetracker/cmd/track"
	"github.com/jonesrussell/pricetracker/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug mode for all commands.
	debug bool

	// rootCmd represents the root command for the price tracker CLI.
	rootCmd = &cobra.Command{
		Use:   "pricetracker",
		Short: "Track e-commerce product prices",
		Long:  `A price tracker that checks product pages on a schedule, records price history and raises alerts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Parse flags early so --config and --debug apply before Viper reads.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if err := config.InitializeViper(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if debug {
		viper.Set("app.debug", true)
		viper.Set("logger.level", "debug")
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("pricetracker version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(track.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(check.Command())
	rootCmd.AddCommand(products.Command())
}
