package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// submitted_at holds unix nanoseconds so ordering is exact on both drivers.
func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS launches (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT NOT NULL,
		tags JSON NOT NULL DEFAULT '[]',
		tweet_url TEXT NOT NULL DEFAULT '',
		submitted_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_launches_submitted_at ON launches(submitted_at DESC);
	`
	_, err := db.Exec(query)
	return err
}

const selectColumns = `SELECT id, title, url, description, tags, tweet_url, submitted_at FROM launches`

func (r *SQLiteRepository) Create(ctx context.Context, launch *domain.Launch) error {
	tags := launch.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO launches (id, title, url, description, tags, tweet_url, submitted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		launch.ID, launch.Title, launch.URL, launch.Description, string(tagsJSON), launch.TweetURL,
		launch.SubmittedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*domain.Launch, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	l, err := scanLaunch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Launch, error) {
	where, args := buildWhere(filters)
	query := selectColumns + where + ` ORDER BY submitted_at DESC, id DESC`
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	return r.query(ctx, query, args...)
}

func (r *SQLiteRepository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	where, args := buildWhere(filters)
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launches`+where, args...).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Launch, error) {
	return r.query(ctx, selectColumns+` ORDER BY submitted_at DESC, id DESC`)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Launch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	launches := []domain.Launch{}
	for rows.Next() {
		l, err := scanLaunch(rows)
		if err != nil {
			return nil, err
		}
		launches = append(launches, *l)
	}
	return launches, rows.Err()
}

// Tag filtering uses json_each, which both modernc sqlite and libsql provide.
func buildWhere(filters map[string]interface{}) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if search, ok := filters["search"].(string); ok && search != "" {
		pattern := "%" + escapeLike(search) + "%"
		clauses = append(clauses, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if tag, ok := filters["tag"].(string); ok && tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(launches.tags) WHERE value = ?)")
		args = append(args, tag)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Search is a literal substring match, so LIKE wildcards in it are escaped.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLaunch(s scanner) (*domain.Launch, error) {
	var l domain.Launch
	var tagsJSON string
	var submittedAt int64
	if err := s.Scan(&l.ID, &l.Title, &l.URL, &l.Description, &tagsJSON, &l.TweetURL, &submittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", l.ID, err)
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	l.SubmittedAt = time.Unix(0, submittedAt).UTC()
	return &l, nil
}

// Ensure interface compliance
var _ ports.LaunchRepository = (*SQLiteRepository)(nil)
