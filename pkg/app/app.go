// Package app wires config into a running handler: storage, guard, spam
// rules, service and router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/guard"
	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/repository"
	"github.com/wadjakorntonsri/shippedtoday/pkg/adapters/rules"
	"github.com/wadjakorntonsri/shippedtoday/pkg/config"
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/moderation"
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/services"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

type App struct {
	Handler http.Handler
	Service *services.LaunchService

	repo    ports.LaunchRepository
	memory  *guard.MemoryGuard
	redis   *guard.RedisGuard
	watcher *rules.Watcher
	cfg     *config.Config
	log     *logger.Logger
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	repo, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", repository.Detect(cfg.DatabaseURL), err)
	}

	detector, err := moderation.LoadDetector(cfg.SpamRulesFile)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	a := &App{repo: repo, cfg: cfg, log: log}
	if cfg.SpamRulesFile != "" {
		a.watcher = rules.NewWatcher(cfg.SpamRulesFile, detector, log)
	}

	limits := guard.Limits{
		RateLimitWindow: cfg.RateLimitWindow,
		RateLimitMax:    cfg.RateLimitMax,
		GlobalCooldown:  cfg.GlobalCooldown,
		DuplicateWindow: cfg.DuplicateWindow,
	}
	var g ports.SubmissionGuard
	if cfg.RedisAddr != "" {
		a.redis, err = guard.NewRedisGuard(ctx, cfg.RedisAddr, limits, log)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
		g = a.redis
	} else {
		a.memory = guard.NewMemoryGuard(limits, log)
		g = a.memory
	}

	a.Service = services.NewLaunchService(repo, g, detector, cfg.MaxLaunches, log)
	a.Handler = handler.NewRouter(cfg, a.Service, log)

	log.Info("application ready",
		"store", repository.Detect(cfg.DatabaseURL),
		"shared_guard", a.redis != nil,
		"max_launches", cfg.MaxLaunches,
	)
	return a, nil
}

// Run drives the background work until ctx ends: pruning the in-memory
// guard (Redis expires keys itself) and reloading the spam rules file.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.memory != nil {
		g.Go(func() error {
			return a.memory.Run(ctx, a.cfg.PruneInterval)
		})
	}
	if a.watcher != nil {
		g.Go(func() error {
			return a.watcher.Run(ctx)
		})
	}
	return g.Wait()
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.repo.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
