// Package watch re-runs a callback whenever a single source file changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/pkg/core/logging"
)

// DefaultDebounce is used when Options.Debounce is zero
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher
type Options struct {
	Logger *mdwlog.Logger

	// Debounce is the quiet period after the last event before onChange fires
	Debounce time.Duration
}

// Watcher observes one file. The parent directory is watched so editors that
// save by rename are still noticed.
type Watcher struct {
	path     string
	name     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *logging.Logger

	closeOnce sync.Once
}

// New creates a watcher for path
func New(path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to resolve path").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("path", path)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, mdwerror.Newf("cannot watch %s: file not found", path).
			WithCode(mdwerror.CodeFileNotFound).
			WithOperation("watch.new").
			WithDetail("path", path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create watcher").
			WithCode(mdwerror.CodeIOError).
			WithOperation("watch.new")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, mdwerror.Wrap(err, "failed to watch directory").
			WithCode(mdwerror.CodeIOError).
			WithOperation("watch.new").
			WithDetail("dir", filepath.Dir(abs))
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		name:     filepath.Base(abs),
		debounce: opts.Debounce,
		watcher:  fsw,
		logger:   logging.Wrap(opts.Logger, "kylang-watch"),
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is done, calling onChange once per burst of write or
// create events on the file. onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.Close()

	w.logger.Info("Started watching for changes", "file", w.path, "debounce", w.debounce)

	// fire is nil while no change is pending
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping file watcher (context cancelled)")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}

			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				w.logger.Debug("File event", "file", event.Name, "op", event.Op.String())
				fire = time.After(w.debounce)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				w.logger.Debug("File removed, waiting for it to reappear", "file", event.Name)
			}

		case <-fire:
			fire = nil
			onChange(w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// Close releases the underlying watcher; it is safe to call more than once
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}
