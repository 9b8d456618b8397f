package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/repository/jsonfile"
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
)

func sampleLaunches() []domain.Launch {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Launch{
		{ID: "b", Title: "Second thing", URL: "https://b.example.com", Description: "Another launch", Tags: []string{"rust"}, SubmittedAt: base.Add(time.Hour)},
		{ID: "a", Title: "First thing", URL: "https://a.example.com", Description: "A launch", Tags: []string{"go"}, SubmittedAt: base},
	}
}

func TestImportLaunches_SkipsExisting(t *testing.T) {
	repo, err := jsonfile.NewFileRepository(filepath.Join(t.TempDir(), "launches.json"))
	require.NoError(t, err)
	ctx := context.Background()

	existing := sampleLaunches()[1]
	existing.Title = "Kept as is"
	require.NoError(t, repo.Create(ctx, &existing))

	raw, err := json.Marshal(append(sampleLaunches(), domain.Launch{Title: "No id"}))
	require.NoError(t, err)

	var errOut bytes.Buffer
	imported, skipped, err := importLaunches(ctx, repo, bytes.NewReader(raw), &errOut)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 2, skipped)
	assert.Contains(t, errOut.String(), "Skipping existing id: a")

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Kept as is", got.Title)
}

func TestImportLaunches_BadJSON(t *testing.T) {
	repo, err := jsonfile.NewFileRepository(filepath.Join(t.TempDir(), "launches.json"))
	require.NoError(t, err)

	_, _, err = importLaunches(context.Background(), repo, strings.NewReader("{"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "decode failed")
}

func TestCommands_ExportImportList(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	raw, err := json.Marshal(sampleLaunches())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.json"), raw, 0o644))

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute(), out.String())
		return out.String()
	}

	out := run("--db", src, "import", "--file", filepath.Join(dir, "in.json"))
	assert.Contains(t, out, "Imported 2 launches (0 skipped)")

	out = run("--db", src, "list", "--tag", "go", "--limit", "5")
	assert.Contains(t, out, "First thing")
	assert.NotContains(t, out, "Second thing")
	assert.Contains(t, out, "1 of 1 launches")

	out = run("--db", src, "export")
	var exported []domain.Launch
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "b", exported[0].ID)
}
