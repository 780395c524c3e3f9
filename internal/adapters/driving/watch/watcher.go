// Package watch ingests files dropped into an inbox directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Defaults for the watcher.
const (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultConcurrency = 4
)

// Event reports the outcome of one ingestion triggered by the watcher.
type Event struct {
	Path   string
	Result domain.IngestResult
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithConcurrency bounds the number of ingestions running at once.
func WithConcurrency(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithInitialScan ingests files already present when Run starts.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initialScan = enabled
	}
}

// WithEventHandler receives one Event per finished ingestion.
// It is called from worker goroutines.
func WithEventHandler(fn func(Event)) Option {
	return func(w *Watcher) {
		w.onEvent = fn
	}
}

// Watcher ingests every supported file created or rewritten in a directory.
// Each file is handed to the ingestion service on its own goroutine once its
// events have settled.
type Watcher struct {
	dir         string
	ingestion   driving.IngestionService
	debounce    time.Duration
	concurrency int
	initialScan bool
	onEvent     func(Event)
	extensions  map[string]bool

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    map[string]fileStamp
	closed  bool
	fired   sync.WaitGroup
}

// fileStamp identifies a file version that was already ingested.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// New creates a watcher for dir.
func New(dir string, ingestion driving.IngestionService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:         dir,
		ingestion:   ingestion,
		debounce:    DefaultDebounce,
		concurrency: DefaultConcurrency,
		onEvent:     func(Event) {},
		extensions:  make(map[string]bool),
		pending:     make(map[string]*time.Timer),
		done:        make(map[string]fileStamp),
	}
	for _, ext := range ingestion.SupportedExtensions() {
		w.extensions[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches until ctx is cancelled, then waits for running ingestions.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	submit := func(path string) {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			w.ingest(ctx, path)
			return nil
		})
	}

	if w.initialScan {
		if err := w.scan(submit); err != nil {
			logger.Warn("inbox scan failed: %v", err)
		}
	}

	logger.Info("watching %s", w.dir)
	err = w.loop(ctx, fsw, submit)

	w.stopPending()
	w.fired.Wait()
	_ = g.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, submit func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.accepts(event.Name) {
				logger.Debug("ignoring %s", event.Name)
				continue
			}
			w.schedule(event.Name, submit)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// schedule restarts the debounce timer for path.
func (w *Watcher) schedule(path string, submit func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.fired.Add(1)
		w.mu.Unlock()

		defer w.fired.Done()
		submit(path)
	})
}

// stopPending cancels waiting timers and stops new submissions.
// Callbacks already past the closed check are tracked by fired.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// scan submits the supported files already in the directory.
func (w *Watcher) scan(submit func(string)) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if w.accepts(path) {
			submit(path)
		}
	}
	return nil
}

// accepts reports whether path looks like a finished, supported file.
func (w *Watcher) accepts(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(name))]
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}

	w.mu.Lock()
	seen, ok := w.done[path]
	w.mu.Unlock()
	if ok && seen == stamp {
		return
	}

	result, err := w.ingestion.Ingest(ctx, path, filepath.Base(path))
	if err != nil {
		logger.Warn("ingest %s: %v", filepath.Base(path), err)
	} else {
		logger.Info("ingested %s as %s (%d chunks)", result.Filename, result.DocumentID, result.ChunkCount)
		w.mu.Lock()
		w.done[path] = stamp
		w.mu.Unlock()
	}
	w.onEvent(Event{Path: path, Result: result, Err: err})
}
