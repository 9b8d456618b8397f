package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/guard"
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
)

type fakeRepo struct {
	launches    []domain.Launch
	createErr   error
	createDelay time.Duration
}

func (r *fakeRepo) Create(_ context.Context, l *domain.Launch) error {
	if r.createErr != nil {
		return r.createErr
	}
	time.Sleep(r.createDelay)
	r.launches = append(r.launches, *l)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Launch, error) {
	for _, l := range r.launches {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) matching(filters map[string]interface{}) []domain.Launch {
	tag, _ := filters["tag"].(string)
	var out []domain.Launch
	for _, l := range r.launches {
		if tag != "" && !strings.Contains(strings.Join(l.Tags, ","), tag) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out
}

func (r *fakeRepo) List(_ context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Launch, error) {
	out := r.matching(filters)
	if limit > 0 {
		if offset > len(out) {
			offset = len(out)
		}
		end := offset + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, nil
}

func (r *fakeRepo) Count(_ context.Context, filters map[string]interface{}) (int64, error) {
	return int64(len(r.matching(filters))), nil
}

func (r *fakeRepo) Dump(_ context.Context) ([]domain.Launch, error) { return r.launches, nil }
func (r *fakeRepo) Close() error                                    { return nil }

type fakeGuard struct {
	cooldown   bool
	deny       bool
	duplicates map[string]bool
	attempts   []string
	marked     []string
}

func (g *fakeGuard) CooldownActive(context.Context) (bool, error) { return g.cooldown, nil }

func (g *fakeGuard) Allow(_ context.Context, clientID string) (bool, error) {
	if g.deny {
		return false, nil
	}
	g.attempts = append(g.attempts, clientID)
	return true, nil
}

func (g *fakeGuard) IsDuplicate(_ context.Context, h string) (bool, error) {
	return g.duplicates[h], nil
}

func (g *fakeGuard) MarkAccepted(_ context.Context, h string) error {
	if g.duplicates == nil {
		g.duplicates = map[string]bool{}
	}
	g.duplicates[h] = true
	g.marked = append(g.marked, h)
	return nil
}

func newTestService(maxLaunches int) (*LaunchService, *fakeRepo, *fakeGuard) {
	repo := &fakeRepo{}
	fg := &fakeGuard{}
	svc := NewLaunchService(repo, fg, nil, maxLaunches, logger.Nop())
	clock := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	n := 0
	svc.newID = func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
	return svc, repo, fg
}

func validSubmission() domain.Submission {
	return domain.Submission{
		Title:       "  Shipped my   new CLI  ",
		URL:         "https://example.com/cli",
		Description: "A <fast> tool for tailing logs across servers",
		Tags:        []string{"go", " cli ", "go", ""},
	}
}

func TestSubmit_Success(t *testing.T) {
	svc, repo, guard := newTestService(10)

	launch, err := svc.Submit(context.Background(), "1.1.1.1", validSubmission())
	require.NoError(t, err)

	assert.Equal(t, "id-a", launch.ID)
	assert.Equal(t, "Shipped my new CLI", launch.Title)
	assert.Equal(t, "A fast tool for tailing logs across servers", launch.Description)
	assert.Equal(t, []string{"go", "cli"}, launch.Tags)
	assert.Equal(t, time.UTC, launch.SubmittedAt.Location())
	assert.Empty(t, launch.TweetURL)

	require.Len(t, repo.launches, 1)
	assert.Equal(t, []string{"1.1.1.1"}, guard.attempts)
	assert.Len(t, guard.marked, 1)
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fakeGuard, *fakeRepo)
		mutate  func(*domain.Submission)
		max     int
		wantErr error
	}{
		{
			name:    "cooldown",
			setup:   func(g *fakeGuard, _ *fakeRepo) { g.cooldown = true },
			wantErr: domain.ErrCooldown,
		},
		{
			name:    "rate limited",
			setup:   func(g *fakeGuard, _ *fakeRepo) { g.deny = true },
			wantErr: domain.ErrRateLimited,
		},
		{
			name:    "spam",
			mutate:  func(s *domain.Submission) { s.Description = "Limited time offer, act now for savings" },
			wantErr: domain.ErrSpam,
		},
		{
			name:    "javascript in description",
			mutate:  func(s *domain.Submission) { s.Description = "Run javascript:alert(1) for a surprise" },
			wantErr: domain.ErrUnsafeContent,
		},
		{
			name: "store full",
			max:  1,
			setup: func(_ *fakeGuard, r *fakeRepo) {
				r.launches = append(r.launches, domain.Launch{ID: "existing"})
			},
			wantErr: domain.ErrStoreFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := tt.max
			if limit == 0 {
				limit = 10
			}
			svc, repo, guard := newTestService(limit)
			if tt.setup != nil {
				tt.setup(guard, repo)
			}
			sub := validSubmission()
			if tt.mutate != nil {
				tt.mutate(&sub)
			}
			before := len(repo.launches)

			_, err := svc.Submit(context.Background(), "2.2.2.2", sub)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, repo.launches, before, "nothing stored")
			assert.Empty(t, guard.marked)
		})
	}
}

func TestSubmit_ConcurrentCooldown(t *testing.T) {
	repo := &fakeRepo{createDelay: 5 * time.Millisecond}
	g := guard.NewMemoryGuard(guard.Limits{
		RateLimitWindow: time.Minute,
		RateLimitMax:    2,
		GlobalCooldown:  10 * time.Second,
		DuplicateWindow: time.Hour,
	}, logger.Nop())
	svc := NewLaunchService(repo, g, nil, 100, logger.Nop())

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			sub := validSubmission()
			sub.Title = fmt.Sprintf("Concurrent launch number %d", i)
			sub.URL = fmt.Sprintf("https://example.com/c/%d", i)
			_, errs[i] = svc.Submit(context.Background(), fmt.Sprintf("10.0.0.%d", i), sub)
		}(i)
	}
	close(start)
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrCooldown)
	}
	assert.Equal(t, 1, accepted)
	assert.Len(t, repo.launches, 1)
}

func TestSubmit_Duplicate(t *testing.T) {
	svc, repo, _ := newTestService(10)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "a", validSubmission())
	require.NoError(t, err)

	again := validSubmission()
	again.Title = "SHIPPED MY NEW CLI"
	_, err = svc.Submit(ctx, "b", again)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, repo.launches, 1)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.Submission)
		wantFields []string
		wantMsg    string
	}{
		{"missing title", func(s *domain.Submission) { s.Title = "  " }, []string{"title"}, msgValidation},
		{"bad url", func(s *domain.Submission) { s.URL = "not a url" }, []string{"url"}, msgValidation},
		{"non web scheme", func(s *domain.Submission) { s.URL = "ftp://example.com/x" }, []string{"url"}, msgValidation},
		{"bad tweet url", func(s *domain.Submission) { s.TweetURL = "tweet" }, []string{"tweetUrl"}, msgValidation},
		{"several", func(s *domain.Submission) { s.Title = ""; s.Description = "" }, []string{"title", "description"}, msgValidation},
		{"short title", func(s *domain.Submission) { s.Title = "<<tiny>>" }, []string{"title"}, msgTooShort},
		{"short description", func(s *domain.Submission) { s.Description = "too   short" }, []string{"description"}, msgTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(10)
			sub := validSubmission()
			tt.mutate(&sub)

			_, err := svc.Submit(context.Background(), "c", sub)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.wantMsg, ve.Message)

			var fields []string
			for _, d := range ve.Details {
				fields = append(fields, d.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
			assert.Empty(t, repo.launches)
		})
	}
}

func TestSubmit_KeepsTweetURL(t *testing.T) {
	svc, _, _ := newTestService(10)
	sub := validSubmission()
	sub.TweetURL = " https://x.com/maker/status/123 "

	launch, err := svc.Submit(context.Background(), "d", sub)
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/maker/status/123", launch.TweetURL)
}

func TestSubmit_StoreError(t *testing.T) {
	svc, repo, guard := newTestService(10)
	repo.createErr = errors.New("disk full")

	_, err := svc.Submit(context.Background(), "e", validSubmission())
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, guard.marked, "failed writes do not start the cooldown")
}

func TestList_NewestFirst(t *testing.T) {
	svc, repo, _ := newTestService(10)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.launches = []domain.Launch{
		{ID: "old", SubmittedAt: base, Tags: []string{"go"}},
		{ID: "new", SubmittedAt: base.Add(2 * time.Hour), Tags: []string{"rust"}},
		{ID: "mid", SubmittedAt: base.Add(time.Hour), Tags: []string{"go"}},
	}
	ctx := context.Background()

	launches, total, err := svc.List(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, launches, 3)
	assert.Equal(t, "new", launches[0].ID)
	assert.Equal(t, "mid", launches[1].ID)
	assert.Equal(t, "old", launches[2].ID)

	launches, total, err = svc.List(ctx, domain.ListQuery{Tag: "go", Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "total counts matches, not the page")
	require.Len(t, launches, 1)
	assert.Equal(t, "old", launches[0].ID)
}

func TestGet(t *testing.T) {
	svc, repo, _ := newTestService(10)
	repo.launches = []domain.Launch{{ID: "x"}}

	got, err := svc.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", got.ID)

	_, err = svc.Get(context.Background(), "y")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
