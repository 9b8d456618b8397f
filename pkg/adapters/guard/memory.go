package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

// Limits configures both guard implementations.
type Limits struct {
	RateLimitWindow time.Duration
	RateLimitMax    int
	GlobalCooldown  time.Duration
	DuplicateWindow time.Duration
}

// Inline sweeps keep memory bounded when no janitor runs (serverless).
const (
	hashPruneThreshold    = 100
	attemptPruneThreshold = 1000
)

type attempt struct {
	count int
	last  time.Time
}

// MemoryGuard keeps submission state in process memory.
type MemoryGuard struct {
	limits Limits
	now    func() time.Time
	log    *logger.Logger

	mu           sync.Mutex
	attempts     map[string]attempt
	hashes       map[string]time.Time
	lastAccepted time.Time
	lastSweep    time.Time
}

func NewMemoryGuard(limits Limits, log *logger.Logger) *MemoryGuard {
	return &MemoryGuard{
		limits:   limits,
		now:      time.Now,
		log:      log.With("service", "MemoryGuard"),
		attempts: make(map[string]attempt),
		hashes:   make(map[string]time.Time),
	}
}

func (g *MemoryGuard) CooldownActive(_ context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastAccepted.IsZero() {
		return false, nil
	}
	return g.now().Sub(g.lastAccepted) < g.limits.GlobalCooldown, nil
}

func (g *MemoryGuard) Allow(_ context.Context, clientID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	a, ok := g.attempts[clientID]
	if ok && now.Sub(a.last) > g.limits.RateLimitWindow {
		ok = false
	}
	if !ok {
		if len(g.attempts) >= attemptPruneThreshold && now.Sub(g.lastSweep) >= g.limits.RateLimitWindow {
			g.pruneLocked(now)
		}
		g.attempts[clientID] = attempt{count: 1, last: now}
		return true, nil
	}
	if a.count >= g.limits.RateLimitMax {
		return false, nil
	}
	g.attempts[clientID] = attempt{count: a.count + 1, last: now}
	return true, nil
}

func (g *MemoryGuard) IsDuplicate(_ context.Context, contentHash string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seen, ok := g.hashes[contentHash]
	return ok && g.now().Sub(seen) < g.limits.DuplicateWindow, nil
}

func (g *MemoryGuard) MarkAccepted(_ context.Context, contentHash string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.lastAccepted = now
	g.hashes[contentHash] = now
	if len(g.hashes) > hashPruneThreshold {
		g.pruneLocked(now)
	}
	return nil
}

// Prune drops rate-limit entries and hashes whose windows have passed.
func (g *MemoryGuard) Prune() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pruneLocked(g.now())
}

func (g *MemoryGuard) pruneLocked(now time.Time) int {
	g.lastSweep = now
	removed := 0
	for id, a := range g.attempts {
		if now.Sub(a.last) > g.limits.RateLimitWindow {
			delete(g.attempts, id)
			removed++
		}
	}
	for h, seen := range g.hashes {
		if now.Sub(seen) >= g.limits.DuplicateWindow {
			delete(g.hashes, h)
			removed++
		}
	}
	return removed
}

// Run prunes on every tick until ctx is cancelled.
func (g *MemoryGuard) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("prune interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := g.Prune(); n > 0 {
				g.log.Debug("pruned guard entries", "removed", n)
			}
		}
	}
}

var _ ports.SubmissionGuard = (*MemoryGuard)(nil)
