package ports

import (
	"context"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
)

// LaunchRepository defines storage operations for launches.
// Implementations return launches newest-first.
type LaunchRepository interface {
	Create(ctx context.Context, launch *domain.Launch) error
	GetByID(ctx context.Context, id string) (*domain.Launch, error) // nil, nil when missing
	List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Launch, error)
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)
	Dump(ctx context.Context) ([]domain.Launch, error) // For migration
	Close() error
}

// SubmissionGuard holds the anti-abuse state shared between submissions.
type SubmissionGuard interface {
	// CooldownActive reports whether a launch was accepted too recently.
	CooldownActive(ctx context.Context) (bool, error)
	// Allow records an attempt for clientID unless the client is already
	// over its limit, in which case it returns false and records nothing.
	Allow(ctx context.Context, clientID string) (bool, error)
	IsDuplicate(ctx context.Context, contentHash string) (bool, error)
	// MarkAccepted starts the cooldown and remembers the content hash.
	MarkAccepted(ctx context.Context, contentHash string) error
}

// LaunchService defines the business logic operations
type LaunchService interface {
	Submit(ctx context.Context, clientID string, sub domain.Submission) (*domain.Launch, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Launch, int64, error)
	Get(ctx context.Context, id string) (*domain.Launch, error)
	Export(ctx context.Context) ([]domain.Launch, error)
}
