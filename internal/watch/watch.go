// Package watch re-runs aggregation as artifacts land. Remote generators
// upload result files over a span of minutes; watching the results
// directories keeps the report current without manual re-runs.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the burst of write events an scp-style transfer
// produces into a single rebuild.
const DefaultDebounce = 2 * time.Second

// Watcher triggers a rebuild callback whenever artifact files for one test
// id change under the watched roots.
type Watcher struct {
	testID   string
	roots    []string
	debounce time.Duration
	logger   *zap.Logger
	rebuild  func(context.Context) error
}

// New creates a Watcher. rebuild is invoked after each debounced batch of
// changes; its errors are logged, not fatal, since a half-copied file is
// expected to fail until the transfer completes.
func New(testID string, roots []string, rebuild func(context.Context) error, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		testID:   testID,
		roots:    roots,
		debounce: DefaultDebounce,
		logger:   logger,
		rebuild:  rebuild,
	}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, root := range w.roots {
		if err := fw.Add(root); err != nil {
			return fmt.Errorf("watch: add root %s: %w", root, err)
		}
	}
	w.logger.Info("watching for artifacts",
		zap.String("test_id", w.testID),
		zap.Strings("roots", w.roots))

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("artifact change", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				// Drain a tick that fired between selects so Reset starts a
				// clean window instead of delivering a stale early rebuild.
				if !timer.Stop() {
					select {
					case <-timerCh:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := w.rebuild(ctx); err != nil {
				w.logger.Warn("rebuild failed, waiting for more artifacts", zap.Error(err))
			}
		}
	}
}

// relevant filters events down to create/write of this test's artifacts.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), w.testID+"_")
}
