// Package watch reruns a build whenever one of the files it read changes.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a burst of events has to settle before the
// build runs again.
const DefaultDelay = 100 * time.Millisecond

// BuildFunc runs one build and returns the files it read. On error the files
// returned so far are still watched; a nil list keeps the previous set.
type BuildFunc func() ([]string, error)

type Watcher struct {
	Delay time.Duration
	Log   *slog.Logger

	fs    *fsnotify.Watcher
	dirs  map[string]bool
	files map[string]bool
}

func New(log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{Delay: DefaultDelay, Log: log}
}

// Run calls build once and then after every change to the files it reported,
// until ctx is cancelled. It returns an error only if the watcher cannot be
// set up or the first build leaves nothing to watch.
func (w *Watcher) Run(ctx context.Context, build BuildFunc) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fs.Close()
	w.fs = fs
	w.dirs = map[string]bool{}
	w.files = map[string]bool{}

	if err := w.rebuild(build); err != nil {
		if len(w.files) == 0 {
			return err
		}
		w.Log.Error("build failed", "err", err)
	}
	if len(w.files) == 0 {
		return errors.New("no files to watch")
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fs.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.Log.Debug("file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.Delay)
			} else {
				timer.Reset(w.Delay)
			}
			fire = timer.C

		case err, ok := <-fs.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn("watch error", "err", err)

		case <-fire:
			fire = nil
			if err := w.rebuild(build); err != nil {
				w.Log.Error("build failed", "err", err)
			}
		}
	}
}

func (w *Watcher) rebuild(build BuildFunc) error {
	paths, err := build()
	if paths == nil {
		return err
	}

	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, aerr := filepath.Abs(p)
		if aerr != nil {
			w.Log.Warn("cannot watch file", "file", p, "err", aerr)
			continue
		}
		files[abs] = true

		// directories are watched so that editors replacing a file by rename
		// are still seen
		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if aerr := w.fs.Add(dir); aerr != nil {
			w.Log.Warn("cannot watch directory", "dir", dir, "err", aerr)
			continue
		}
		w.dirs[dir] = true
	}
	w.files = files
	w.Log.Debug("watching", "files", len(files), "dirs", len(w.dirs))
	return err
}
