package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every launch as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	launches, err := repo.Dump(cmd.Context())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(launches)
}
