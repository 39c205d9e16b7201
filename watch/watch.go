// Package watch reports batches of changed files under a directory tree,
// filtered by doublestar patterns and debounced so that an editor save
// storm triggers one callback.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no debounce window is given.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the sorted, de-duplicated paths changed in one batch.
type Handler func(ctx context.Context, paths []string)

// Options configures a Watcher.
type Options struct {
	// Patterns are doublestar globs matched against paths relative to the
	// root. An empty list matches everything.
	Patterns []string
	// Debounce is the quiet period after the last change before the
	// handler runs.
	Debounce time.Duration
	// Skip lists directory names that are never watched.
	Skip   []string
	Logger *slog.Logger
}

// Watcher watches a directory tree.
type Watcher struct {
	root     string
	patterns []string
	debounce time.Duration
	skip     map[string]bool
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher with every directory under root already registered,
// so changes made after New returns are observed.
func New(root string, opts Options) (*Watcher, error) {
	for _, p := range opts.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	skip := map[string]bool{".git": true}
	for _, s := range opts.Skip {
		skip[s] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		patterns: opts.Patterns,
		debounce: opts.Debounce,
		skip:     skip,
		logger:   opts.Logger,
		fsw:      fsw,
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watcher. Run returns once it is closed.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skip[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Match reports whether path, absolute or relative to the root, is covered
// by the watch patterns.
func (w *Watcher) Match(path string) bool {
	if len(w.patterns) == 0 {
		return true
	}
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(w.root, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Run delivers debounced batches to h until ctx is done or the watcher is
// closed. Handler calls are sequential.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	pending := make(map[string]bool)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if err := w.addTree(event.Name); err == nil {
					w.logger.Debug("watching new path", slog.String("path", event.Name))
				}
			}
			if event.Op == fsnotify.Chmod || !w.Match(event.Name) {
				continue
			}
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)
			w.logger.Debug("change batch", slog.Int("paths", len(paths)))
			h(ctx, paths)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}
