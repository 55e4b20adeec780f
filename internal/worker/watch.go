package worker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reports writes to a fixed set of files.
type Watcher struct {
	fs    *fsnotify.Watcher
	files map[string]bool
	log   zerolog.Logger
}

// NewWatcher watches the directories holding paths. Directories are watched
// rather than the files so that editors doing atomic saves are still seen.
func NewWatcher(paths []string, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{fs: fw, files: make(map[string]bool), log: log}

	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch directory: %w", err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run calls onChange for every write or create of a watched file until ctx
// is cancelled. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.fs.Close()
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.log.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("input changed")
				onChange(abs)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
