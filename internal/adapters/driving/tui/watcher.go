package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of write events into one change.
const debounceWindow = 200 * time.Millisecond

// Watcher watches the library data file for changes made outside this
// process, such as another docanalyser invocation writing the library.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	changes chan struct{}
}

// NewWatcher creates a watcher for the given library file. The parent
// directory is watched because stores replace the file atomically via
// rename, which would drop a watch on the file itself.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		fsw:     fsw,
		changes: make(chan struct{}, 1),
	}, nil
}

// Start runs the event loop until the context is cancelled. The changes
// channel is closed when the loop exits.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer close(w.changes)
		defer w.fsw.Close() //nolint:errcheck

		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
					fire = timer.C
				} else {
					timer.Reset(debounceWindow)
				}

			case <-fire:
				timer = nil
				fire = nil
				select {
				case w.changes <- struct{}{}:
				default:
				}

			case _, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
}

// Changes returns the channel that receives one signal per coalesced
// library change.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}
