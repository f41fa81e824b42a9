// Package watcher indexes documents dropped into a watched folder. Files
// are debounced so partially written files are not picked up mid-copy.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/extractors"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before indexing.
const DefaultDebounce = 500 * time.Millisecond

// DocumentDeleter is the slice of the document service the watcher needs to
// mirror file removals into the stores.
type DocumentDeleter interface {
	DeleteDocument(ctx context.Context, collection, id string) error
}

// Watcher tails a directory and feeds new files to the indexer. Removing a
// watched file deletes its document again.
type Watcher struct {
	indexer    driving.Indexer
	documents  DocumentDeleter
	dir        string
	collection string
	debounce   time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	// indexed remembers the document id each path indexed under. The file is
	// gone by the time a remove event arrives, so the id cannot be recomputed.
	indexed map[string]string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period before a file is indexed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher that indexes files from dir into collection.
func New(indexer driving.Indexer, documents DocumentDeleter, dir, collection string, opts ...Option) *Watcher {
	w := &Watcher{
		indexer:    indexer,
		documents:  documents,
		dir:        dir,
		collection: collection,
		debounce:   DefaultDebounce,
		pending:    make(map[string]*time.Timer),
		indexed:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until the context is cancelled. Files already
// present at startup are indexed first.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.dir); err != nil {
		return err
	}

	w.indexExisting(ctx)
	logger.Info("Watching %s for collection %s", w.dir, w.collection)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(ctx, event.Name)
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.removeFile(ctx, event.Name)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// indexExisting picks up files that were in the folder before the watch
// started.
func (w *Watcher) indexExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Reading watch directory: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.indexFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// schedule (re)arms the debounce timer for a path. Every new event on the
// same path pushes indexing further out, so a file only indexes once it has
// stopped changing.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.indexFile(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// indexFile reads and indexes a single file. Duplicates and unsupported
// types are skipped quietly; they are expected in a drop folder.
func (w *Watcher) indexFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading %s: %v", path, err)
		return
	}

	fileName := filepath.Base(path)
	fileType := extractors.NormalizeType(strings.TrimPrefix(filepath.Ext(fileName), "."))

	id, err := w.indexer.IndexDocument(ctx, driving.IndexRequest{
		Collection: w.collection,
		FileName:   fileName,
		FileType:   fileType,
		Data:       data,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateDocument):
		logger.Info("Skipping %s: already indexed", fileName)
	case errors.Is(err, domain.ErrUnsupportedFileType):
		logger.Info("Skipping %s: unsupported file type", fileName)
	case err != nil:
		logger.Error("Indexing %s failed: %v", fileName, err)
	default:
		w.mu.Lock()
		w.indexed[path] = id
		w.mu.Unlock()
		logger.Info("Indexed %s as %s", fileName, id)
	}
}

// removeFile deletes the document a removed path was indexed under. Paths the
// watcher never indexed (duplicates, unsupported types, pre-existing state)
// are left alone.
func (w *Watcher) removeFile(ctx context.Context, path string) {
	w.mu.Lock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
	id, ok := w.indexed[path]
	delete(w.indexed, path)
	w.mu.Unlock()

	if !ok {
		return
	}

	err := w.documents.DeleteDocument(ctx, w.collection, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Already deleted through another surface.
	case err != nil:
		logger.Error("Deleting removed document %s failed: %v", id, err)
	default:
		logger.Info("Deleted %s after file removal", id)
	}
}
