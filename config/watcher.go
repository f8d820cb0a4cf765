package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-loads a config file whenever it changes on disk.
// The directory is watched rather than the file so editors that save by rename are seen.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	updates chan Config
	errs    chan error
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// Watch starts watching path. The watcher stops when ctx is cancelled or Close is called.
//
// Parameters:
//   - ctx: cancels the watch goroutine
//   - path: the config file to watch
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the watch cannot be registered
func Watch(ctx context.Context, path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		updates: make(chan Config, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run(ctx)
	return w, nil
}

// Updates delivers each successfully re-loaded config. Only the newest pending value is kept.
func (w *Watcher) Updates() <-chan Config {
	return w.updates
}

// Errors delivers load failures. Only the newest pending error is kept.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher and waits for its goroutine to exit.
//
// Returns:
//   - error: error from closing the underlying fsnotify watcher
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	w.wg.Wait()
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.once.Do(func() {
				close(w.done)
				w.fsw.Close()
			})
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				slog.Warn("config reload failed", "path", w.path, "error", err)
				publish(w.errs, err)
				continue
			}
			slog.Info("config reloaded", "path", w.path)
			publish(w.updates, cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			publish(w.errs, err)
		}
	}
}

// publish replaces any unread value in a one-slot channel with v.
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
