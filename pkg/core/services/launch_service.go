package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/moderation"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

type LaunchService struct {
	repo        ports.LaunchRepository
	guard       ports.SubmissionGuard
	detector    *moderation.Detector
	maxLaunches int
	log         *logger.Logger

	now   func() time.Time
	newID func() string

	// serializes duplicate check, cap check, write and mark
	mu sync.Mutex
}

func NewLaunchService(repo ports.LaunchRepository, guard ports.SubmissionGuard, detector *moderation.Detector, maxLaunches int, log *logger.Logger) *LaunchService {
	if detector == nil {
		detector = moderation.DefaultDetector()
	}
	return &LaunchService{
		repo:        repo,
		guard:       guard,
		detector:    detector,
		maxLaunches: maxLaunches,
		log:         log.With("service", "LaunchService"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Submit runs a submission through the anti-abuse checks in order and
// persists it. The first failing check decides the returned error.
func (s *LaunchService) Submit(ctx context.Context, clientID string, sub domain.Submission) (*domain.Launch, error) {
	active, err := s.guard.CooldownActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("check cooldown: %w", err)
	}
	if active {
		return nil, domain.ErrCooldown
	}

	allowed, err := s.guard.Allow(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("check rate limit: %w", err)
	}
	if !allowed {
		s.log.Info("rate limited", "client", clientID)
		return nil, domain.ErrRateLimited
	}

	clean, err := validateSubmission(sub)
	if err != nil {
		return nil, err
	}

	if s.detector.IsSpam(clean.Title, clean.Description, clean.URL) {
		s.log.Warn("spam pattern detected", "title", clean.Title, "client", clientID)
		return nil, domain.ErrSpam
	}

	hash := moderation.ContentHash(clean.Title, clean.Description, clean.URL)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another submission may have been accepted while this one waited.
	active, err = s.guard.CooldownActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("check cooldown: %w", err)
	}
	if active {
		return nil, domain.ErrCooldown
	}

	dup, err := s.guard.IsDuplicate(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return nil, domain.ErrDuplicate
	}

	if moderation.HasUnsafeScheme(clean.Title, clean.Description, clean.URL) {
		s.log.Warn("unsafe content rejected", "client", clientID)
		return nil, domain.ErrUnsafeContent
	}

	if s.maxLaunches > 0 {
		count, err := s.repo.Count(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("count launches: %w", err)
		}
		if count >= int64(s.maxLaunches) {
			return nil, domain.ErrStoreFull
		}
	}

	launch := &domain.Launch{
		ID:          s.newID(),
		Title:       clean.Title,
		URL:         clean.URL,
		Description: clean.Description,
		Tags:        clean.Tags,
		TweetURL:    clean.TweetURL,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, launch); err != nil {
		return nil, fmt.Errorf("store launch: %w", err)
	}

	if err := s.guard.MarkAccepted(ctx, hash); err != nil {
		// The launch is already stored; report it and keep the success.
		s.log.Error("failed to record accepted submission", "id", launch.ID, "error", err)
	}

	s.log.Info("new launch added", "id", launch.ID, "title", launch.Title, "client", clientID)
	return launch, nil
}

// List returns launches newest-first plus the number of matches.
func (s *LaunchService) List(ctx context.Context, q domain.ListQuery) ([]domain.Launch, int64, error) {
	if q.Limit < 0 {
		q.Limit = 0
	}
	filters := map[string]interface{}{
		"search": q.Search,
		"tag":    q.Tag,
	}

	launches, err := s.repo.List(ctx, q.Limit, q.Offset(), filters)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	return launches, count, nil
}

func (s *LaunchService) Get(ctx context.Context, id string) (*domain.Launch, error) {
	launch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if launch == nil {
		return nil, domain.ErrNotFound
	}
	return launch, nil
}

// Export returns every stored launch for backups and migrations.
func (s *LaunchService) Export(ctx context.Context) ([]domain.Launch, error) {
	return s.repo.Dump(ctx)
}

var _ ports.LaunchService = (*LaunchService)(nil)
