// Package jsonfile stores launches as a single JSON array on disk, newest
// first. Every write replaces the file atomically via a temp file + rename.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

type FileRepository struct {
	path string
	mu   sync.RWMutex
}

// NewFileRepository creates the file with an empty array when missing.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := r.write([]domain.Launch{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	// Fail fast on a corrupt file.
	if _, err := r.read(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepository) Create(ctx context.Context, launch *domain.Launch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	launches, err := r.read()
	if err != nil {
		return err
	}
	for _, l := range launches {
		if l.ID == launch.ID {
			return fmt.Errorf("launch %s already exists", launch.ID)
		}
	}
	stored := *launch
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	launches = append([]domain.Launch{stored}, launches...)
	sortNewestFirst(launches)
	return r.write(launches)
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.Launch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	launches, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, l := range launches {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (r *FileRepository) List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Launch, error) {
	matches, err := r.filtered(filters)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return matches, nil
	}
	if offset >= len(matches) {
		return []domain.Launch{}, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r *FileRepository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	matches, err := r.filtered(filters)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

func (r *FileRepository) Dump(ctx context.Context) ([]domain.Launch, error) {
	return r.filtered(nil)
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) filtered(filters map[string]interface{}) ([]domain.Launch, error) {
	r.mu.RLock()
	launches, err := r.read()
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	search, _ := filters["search"].(string)
	search = strings.ToLower(search)
	tag, _ := filters["tag"].(string)

	out := make([]domain.Launch, 0, len(launches))
	for _, l := range launches {
		if search != "" &&
			!strings.Contains(strings.ToLower(l.Title), search) &&
			!strings.Contains(strings.ToLower(l.Description), search) {
			continue
		}
		if tag != "" && !hasTag(l.Tags, tag) {
			continue
		}
		out = append(out, l)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *FileRepository) read() ([]domain.Launch, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read launches file: %w", err)
	}
	var launches []domain.Launch
	if err := json.Unmarshal(raw, &launches); err != nil {
		return nil, fmt.Errorf("decode launches file: %w", err)
	}
	return launches, nil
}

func (r *FileRepository) write(launches []domain.Launch) error {
	raw, err := json.MarshalIndent(launches, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write launches file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace launches file: %w", err)
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortNewestFirst(launches []domain.Launch) {
	sort.SliceStable(launches, func(i, j int) bool {
		if launches[i].SubmittedAt.Equal(launches[j].SubmittedAt) {
			return launches[i].ID > launches[j].ID
		}
		return launches[i].SubmittedAt.After(launches[j].SubmittedAt)
	})
}

var _ ports.LaunchRepository = (*FileRepository)(nil)
