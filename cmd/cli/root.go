package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/repository"
	"github.com/wadjakorntonsri/shippedtoday/pkg/config"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:   "shippedtoday",
	Short: "Maintenance commands for the ShippedToday launch store",
	Long:  "Export, import and inspect launches in any supported store\n(SQLite/Turso, Postgres or a JSON file).",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "store URL (defaults to DATABASE_URL)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
}

// openRepo opens the store named by --db, falling back to the config.
func openRepo(ctx context.Context) (ports.LaunchRepository, error) {
	url := dbURL
	if url == "" {
		url = config.Load().DatabaseURL
	}
	repo, err := repository.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to %s store: %w", repository.Detect(url), err)
	}
	return repo, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
