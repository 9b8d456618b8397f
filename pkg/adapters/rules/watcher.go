// Package rules reloads the spam rules file while the server runs.
package rules

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/moderation"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a Detector when its rules file changes. A file that fails
// to parse is logged and the previous rules stay active.
type Watcher struct {
	path     string
	detector *moderation.Detector
	log      *logger.Logger
	debounce time.Duration
}

func NewWatcher(path string, detector *moderation.Detector, log *logger.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		detector: detector,
		log:      log.With("component", "RulesWatcher", "path", path),
		debounce: defaultDebounce,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched so
// editors that save by rename are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching spam rules", "patterns", w.detector.Len())

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	next, err := moderation.LoadDetector(w.path)
	if err != nil {
		w.log.Warn("keeping previous spam rules", "error", err)
		return
	}
	w.detector.Replace(next)
	w.log.Info("spam rules reloaded", "patterns", next.Len())
}
