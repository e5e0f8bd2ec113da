// Package watch ingests documentation files dropped into a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Result is the outcome of ingesting one file.
type Result struct {
	Path     string
	Document *domain.Document
	Err      error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialScan ingests the files already present when Run starts.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) { w.initialScan = enabled }
}

// WithMaxFileBytes skips files larger than n without reading them.
func WithMaxFileBytes(n int64) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.maxBytes = n
		}
	}
}

// Watcher ingests files created or modified in a directory.
// Hidden files and files with a disallowed extension are ignored.
type Watcher struct {
	dir         string
	ingest      driving.IngestService
	extensions  []string
	debounce    time.Duration
	maxBytes    int64
	initialScan bool
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:        filepath.Clean(dir),
		ingest:     ingest,
		extensions: ingest.AllowedExtensions(),
		debounce:   DefaultDebounce,
		maxBytes:   domain.DefaultMaxSourceBytes,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled, sending one Result per ingested file.
// The results channel is not closed.
func (w *Watcher) Run(ctx context.Context, results chan<- Result) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for %s", w.dir, strings.Join(w.extensions, " "))

	if w.initialScan {
		for _, path := range w.existingFiles() {
			w.send(ctx, results, w.ingestFile(ctx, path))
		}
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", w.dir, err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				w.send(ctx, results, w.ingestFile(ctx, path))
			}
		}
	}
}

// handleFsEvent returns the path to ingest for a create or write of a
// visible regular file with an allowed extension.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil || isHidden(rel) {
		return "", false
	}
	if !w.allowed(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) ingestFile(ctx context.Context, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	if info.Size() > w.maxBytes {
		return Result{Path: path, Err: fmt.Errorf("%w: %s is %d bytes, limit %d",
			domain.ErrSourceTooLarge, filepath.Base(path), info.Size(), w.maxBytes)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	doc, err := w.ingest.IngestFile(ctx, path, data, "")
	if err != nil {
		logger.Warn("watch: ingest %s: %v", path, err)
	}
	return Result{Path: path, Document: doc, Err: err}
}

// existingFiles lists ingestible files directly inside the directory.
func (w *Watcher) existingFiles() []string {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("watch: scan %s: %v", w.dir, err)
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if w.allowed(path) {
			paths = append(paths, path)
		}
	}
	return paths
}

func (w *Watcher) allowed(path string) bool {
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}

func (w *Watcher) send(ctx context.Context, results chan<- Result, r Result) {
	if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, fs.ErrNotExist) {
		return
	}
	select {
	case results <- r:
	case <-ctx.Done():
	}
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
