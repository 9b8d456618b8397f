// Package repository picks a storage adapter from a DATABASE_URL.
package repository

import (
	"context"
	"strings"

	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/repository/jsonfile"
	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/repository/postgres"
	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendJSONFile Backend = "jsonfile"
)

// Detect maps a URL to a backend:
//
//	postgres://, postgresql://    -> Postgres
//	*.json (optionally file:)     -> JSON file
//	anything else                 -> SQLite / Turso
func Detect(dbURL string) Backend {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return BackendPostgres
	case strings.HasSuffix(strings.ToLower(jsonPath(dbURL)), ".json"):
		return BackendJSONFile
	default:
		return BackendSQLite
	}
}

func Open(ctx context.Context, dbURL string) (ports.LaunchRepository, error) {
	switch Detect(dbURL) {
	case BackendPostgres:
		return postgres.NewPostgresRepository(ctx, dbURL)
	case BackendJSONFile:
		return jsonfile.NewFileRepository(jsonPath(dbURL))
	default:
		return sqlite.NewSQLiteRepository(dbURL)
	}
}

func jsonPath(dbURL string) string {
	return strings.TrimPrefix(dbURL, "file:")
}
