package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, dbURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
	CREATE TABLE IF NOT EXISTS launches (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		tweet_url TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_launches_submitted_at ON launches(submitted_at DESC);
	`
	_, err := pool.Exec(ctx, query)
	return err
}

const selectColumns = `SELECT id, title, url, description, tags, tweet_url, submitted_at FROM launches`

func (r *PostgresRepository) Create(ctx context.Context, launch *domain.Launch) error {
	tags := launch.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO launches (id, title, url, description, tags, tweet_url, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		launch.ID, launch.Title, launch.URL, launch.Description, tags, launch.TweetURL, launch.SubmittedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Launch, error) {
	l, err := scanLaunch(r.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Launch, error) {
	where, args := buildWhere(filters)
	query := selectColumns + where + ` ORDER BY submitted_at DESC, id DESC`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	where, args := buildWhere(filters)
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM launches`+where, args...).Scan(&count)
	return count, err
}

func (r *PostgresRepository) Dump(ctx context.Context) ([]domain.Launch, error) {
	return r.query(ctx, selectColumns+` ORDER BY submitted_at DESC, id DESC`)
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Launch, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func buildWhere(filters map[string]interface{}) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if search, ok := filters["search"].(string); ok && search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		clauses = append(clauses, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if tag, ok := filters["tag"].(string); ok && tag != "" {
		args = append(args, tag)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(tags)", len(args)))
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

func scanLaunch(row pgx.Row) (*domain.Launch, error) {
	var l domain.Launch
	if err := row.Scan(&l.ID, &l.Title, &l.URL, &l.Description, &l.Tags, &l.TweetURL, &l.SubmittedAt); err != nil {
		return nil, err
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	l.SubmittedAt = l.SubmittedAt.UTC()
	return &l, nil
}

var _ ports.LaunchRepository = (*PostgresRepository)(nil)
