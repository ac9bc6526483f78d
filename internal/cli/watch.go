package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchPath re-runs run whenever a parameter file under path changes, until
// ctx is cancelled. Failed runs are logged; they do not stop the watch.
func watchPath(ctx context.Context, path string, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "starting file watcher", err)
	}
	defer w.Close()

	match, err := addWatches(w, path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("watching %s", path), err)
	}

	slog.Info("watching for changes", "path", path)
	return watchLoop(ctx, w.Events, w.Errors, match, run)
}

// addWatches registers path with w and returns a predicate selecting the
// events that should trigger a re-run. fsnotify is not recursive, so every
// directory under a watched directory is added.
func addWatches(w *fsnotify.Watcher, path string) (func(string) bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		target := filepath.Clean(path)
		if err := w.Add(filepath.Dir(target)); err != nil {
			return nil, err
		}
		return func(name string) bool { return filepath.Clean(name) == target }, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return isParamFile, nil
}

func isParamFile(name string) bool {
	switch filepath.Ext(name) {
	case ".cue", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

const rerunOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	match func(string) bool,
	run func() error,
) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopping: context cancelled")
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Op&rerunOps == 0 || !match(ev.Name) {
				continue
			}
			slog.Info("parameter file changed", "file", ev.Name, "op", ev.Op.String())
			if err := run(); err != nil {
				slog.Warn("re-encode failed", "file", ev.Name, "error", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}
