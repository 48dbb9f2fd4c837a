package credentials

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a credentials file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *zap.Logger
}

// NewWatcher watches the directory holding path. Watching the directory
// rather than the file keeps working when the file is replaced atomically.
func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("credentials: watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("credentials: watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{path: filepath.Clean(path), watcher: w, log: log}, nil
}

// Run delivers a freshly loaded record (or the load error) to fn on every
// change of the file. It blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, fn func(Credentials, error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != w.path {
				continue
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}

			w.log.Debug("credentials changed", zap.String("path", w.path), zap.String("op", ev.Op.String()))
			fn(Load(w.path))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			w.log.Warn("credentials watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch watches path until ctx is done, calling fn after every change.
// Cancellation is not reported as an error.
func Watch(ctx context.Context, path string, log *zap.Logger, fn func(Credentials, error)) error {
	w, err := NewWatcher(path, log)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Run(ctx, fn); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
