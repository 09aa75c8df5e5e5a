// Package watch observes the layer directories of a PHP project and reports
// batches of changed .php files once edits have settled.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// Handler receives one debounced batch of changed files, sorted.
// A returned error is logged; watching continues.
type Handler func(ctx context.Context, paths []string) error

// Watcher watches directory trees recursively. New subdirectories are picked
// up as they appear.
type Watcher struct {
	fsw      *fsnotify.Watcher
	clock    clockwork.Clock
	debounce time.Duration
	logger   *slog.Logger

	pending map[string]struct{}
	timer   clockwork.Timer
}

// New creates a watcher over roots. Roots that do not exist are skipped with a
// warning; at least one root must be watchable.
func New(roots []string, debounce time.Duration, clock clockwork.Clock, logger *slog.Logger) (*Watcher, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		clock:    clock,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}

	watched := 0
	for _, root := range roots {
		if err := w.addTree(root, false); err != nil {
			logger.Warn("cannot watch directory",
				slog.String("path", root),
				slog.Any("error", err),
			)
			continue
		}
		watched++
	}

	if watched == 0 {
		_ = fsw.Close()
		return nil, errors.New("watch: no watchable directories")
	}
	return w, nil
}

// Watched returns the directories currently registered with the OS watcher.
func (w *Watcher) Watched() []string {
	dirs := w.fsw.WatchList()
	slices.Sort(dirs)
	return dirs
}

// Close releases the OS watcher of a Watcher that was never run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run dispatches batches to handler until ctx is canceled. The underlying
// OS watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer func() {
		if w.timer != nil {
			w.timer.Stop()
		}
		_ = w.fsw.Close()
	}()

	for {
		var fire <-chan time.Time
		if w.timer != nil {
			fire = w.timer.Chan()
		}

		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.Any("error", err))

		case <-fire:
			w.timer = nil
			w.flush(ctx, handler)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.Warn("cannot watch new directory",
					slog.String("path", event.Name),
					slog.Any("error", err),
				)
			}
			return
		}
	}

	if !isPHP(event.Name) {
		return
	}

	w.logger.Debug("file changed",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()),
	)
	w.enqueue(event.Name)
}

// addTree registers root and every directory below it. With queueExisting,
// PHP files already present are queued, since their create events may have
// fired before the directory was watched.
func (w *Watcher) addTree(root string, queueExisting bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		if queueExisting && isPHP(path) {
			w.enqueue(path)
		}
		return nil
	})
}

func (w *Watcher) enqueue(path string) {
	w.pending[path] = struct{}{}
	if w.timer == nil {
		w.timer = w.clock.NewTimer(w.debounce)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) flush(ctx context.Context, handler Handler) {
	if len(w.pending) == 0 {
		return
	}

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	clear(w.pending)

	if err := handler(ctx, paths); err != nil {
		w.logger.ErrorContext(ctx, "handling changed files",
			slog.String("operation", "watch.Run"),
			slog.Int("files", len(paths)),
			slog.Any("error", err),
		)
	}
}

func isPHP(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".php")
}
