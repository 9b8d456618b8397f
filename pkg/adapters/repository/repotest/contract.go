// Package repotest holds the behaviour every ports.LaunchRepository must
// share. Adapter tests call Run with a constructor for a fresh, empty store.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

var base = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// Fixture returns a launch submitted minutesAgo before a fixed base time.
func Fixture(id string, minutesAgo int, tags ...string) domain.Launch {
	if tags == nil {
		tags = []string{}
	}
	return domain.Launch{
		ID:          id,
		Title:       "Launch " + id + " is live",
		URL:         "https://example.com/" + id,
		Description: "A longer description for launch " + id,
		Tags:        tags,
		SubmittedAt: base.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func Run(t *testing.T, newRepo func(t *testing.T) ports.LaunchRepository) {
	t.Run("EmptyStore", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		launches, err := repo.List(ctx, 0, 0, nil)
		require.NoError(t, err)
		assert.Empty(t, launches)

		count, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, count)

		got, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		l := Fixture("a1", 0, "go", "cli")
		l.TweetURL = "https://x.com/someone/status/1"
		require.NoError(t, repo.Create(ctx, &l))

		got, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, l.Title, got.Title)
		assert.Equal(t, l.URL, got.URL)
		assert.Equal(t, l.Description, got.Description)
		assert.Equal(t, []string{"go", "cli"}, got.Tags)
		assert.Equal(t, l.TweetURL, got.TweetURL)
		assert.True(t, l.SubmittedAt.Equal(got.SubmittedAt), "submittedAt %v != %v", got.SubmittedAt, l.SubmittedAt)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// Inserted out of order on purpose.
		for _, l := range []domain.Launch{Fixture("mid", 30), Fixture("old", 90), Fixture("new", 1)} {
			l := l
			require.NoError(t, repo.Create(ctx, &l))
		}

		launches, err := repo.List(ctx, 0, 0, nil)
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"new", "mid", "old"}, ids(launches)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}

		page, err := repo.List(ctx, 2, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"mid", "old"}, ids(page))

		dump, err := repo.Dump(ctx)
		require.NoError(t, err)
		assert.Len(t, dump, 3)
	})

	t.Run("Filters", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		fixtures := []domain.Launch{
			Fixture("one", 3, "go", "cli"),
			Fixture("two", 2, "rust"),
			Fixture("three", 1, "go"),
		}
		fixtures[1].Title = "Ferris says hello world"
		for _, l := range fixtures {
			l := l
			require.NoError(t, repo.Create(ctx, &l))
		}

		byTag := map[string]interface{}{"tag": "go"}
		launches, err := repo.List(ctx, 0, 0, byTag)
		require.NoError(t, err)
		assert.Equal(t, []string{"three", "one"}, ids(launches))
		count, err := repo.Count(ctx, byTag)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		bySearch := map[string]interface{}{"search": "Ferris"}
		launches, err = repo.List(ctx, 0, 0, bySearch)
		require.NoError(t, err)
		assert.Equal(t, []string{"two"}, ids(launches))
	})

	t.Run("SearchIsLiteral", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		fixtures := []domain.Launch{
			Fixture("percent", 3),
			Fixture("underscore", 2),
			Fixture("plain", 1),
		}
		fixtures[0].Title = "100% uptime monitor"
		fixtures[1].Title = "snake_case linter"
		fixtures[2].Title = "Snakes and ladders online"
		for _, l := range fixtures {
			l := l
			require.NoError(t, repo.Create(ctx, &l))
		}

		tests := []struct {
			search string
			want   []string
		}{
			{"_", []string{"underscore"}},
			{"%", []string{"percent"}},
			{"e_c", []string{"underscore"}},
			{"s_a", []string{}},
			{`\`, []string{}},
			{"SNAKE", []string{"plain", "underscore"}},
		}
		for _, tt := range tests {
			filters := map[string]interface{}{"search": tt.search}
			launches, err := repo.List(ctx, 0, 0, filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(launches), "search %q", tt.search)

			count, err := repo.Count(ctx, filters)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), count, "search %q", tt.search)
		}
	})
}

func ids(launches []domain.Launch) []string {
	out := make([]string, 0, len(launches))
	for _, l := range launches {
		out = append(out, l.ID)
	}
	return out
}
