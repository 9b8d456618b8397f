package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load launches from a JSON export, skipping ids already stored",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "JSON file to import (required)")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, _ []string) error {
	file, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	repo, err := openRepo(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	imported, skipped, err := importLaunches(cmd.Context(), repo, file, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d launches (%d skipped)\n", imported, skipped)
	return nil
}

// importLaunches stores each launch whose id is not present yet. Existing
// launches are never overwritten; per-launch failures are reported to
// errOut and counted as skipped.
func importLaunches(ctx context.Context, repo ports.LaunchRepository, r io.Reader, errOut io.Writer) (imported, skipped int, err error) {
	var launches []domain.Launch
	if err := json.NewDecoder(r).Decode(&launches); err != nil {
		return 0, 0, fmt.Errorf("decode failed: %w", err)
	}

	for i := range launches {
		l := &launches[i]
		if l.ID == "" {
			fmt.Fprintf(errOut, "Skipping launch without id: %q\n", l.Title)
			skipped++
			continue
		}
		existing, err := repo.GetByID(ctx, l.ID)
		if err != nil {
			return imported, skipped, fmt.Errorf("lookup %s: %w", l.ID, err)
		}
		if existing != nil {
			fmt.Fprintf(errOut, "Skipping existing id: %s\n", l.ID)
			skipped++
			continue
		}
		if err := repo.Create(ctx, l); err != nil {
			fmt.Fprintf(errOut, "Failed to import %s: %v\n", l.ID, err)
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped, nil
}
