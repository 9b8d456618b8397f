package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listFlags struct {
	tag    string
	search string
	limit  int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print launches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listFlags.tag, "tag", "", "only launches with this tag")
	f.StringVar(&listFlags.search, "search", "", "substring of title or description")
	f.IntVar(&listFlags.limit, "limit", 20, "maximum rows (0 for all)")
}

func runList(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	filters := map[string]interface{}{}
	if listFlags.tag != "" {
		filters["tag"] = listFlags.tag
	}
	if listFlags.search != "" {
		filters["search"] = listFlags.search
	}

	launches, err := repo.List(cmd.Context(), listFlags.limit, 0, filters)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	total, err := repo.Count(cmd.Context(), filters)
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBMITTED\tID\tTITLE\tTAGS")
	for _, l := range launches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			l.SubmittedAt.Format(time.RFC3339), l.ID, l.Title, strings.Join(l.Tags, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d launches\n", len(launches), total)
	return nil
}
