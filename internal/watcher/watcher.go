// Package watcher reports changes to data documents made on disk, including
// edits that bypass the API.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/checksum"
)

// ChangeCallback is called with the document name (file name without .json)
// whose content changed or which was removed.
type ChangeCallback func(name string)

// Watch watches dataDir until ctx is cancelled. Writes that leave a
// document's content unchanged are not reported.
func Watch(ctx context.Context, dataDir string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dataDir); err != nil {
		return err
	}

	sums := snapshot(dataDir)
	logger.Info("watcher: started", slog.String("root", dataDir), slog.Int("documents", len(sums)))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, ok := documentName(ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					// gone again before we could read it
					continue
				}
				sum := checksum.Sum(data)
				if sums[name] == sum {
					continue
				}
				sums[name] = sum
				logger.Debug("watcher: changed", slog.String("name", name))
				if cb != nil {
					cb(name)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if _, err := os.Stat(ev.Name); err == nil {
					// atomic replace: the rename target still exists
					continue
				}
				if _, known := sums[name]; !known {
					continue
				}
				delete(sums, name)
				logger.Debug("watcher: removed", slog.String("name", name))
				if cb != nil {
					cb(name)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// documentName maps a path to its document name, skipping temp and hidden
// files and anything that is not JSON.
func documentName(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".json") {
		return "", false
	}
	return strings.TrimSuffix(base, ".json"), true
}

func snapshot(dir string) map[string]string {
	sums := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return sums
	}
	for _, e := range entries {
		name, ok := documentName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		sums[name] = checksum.Sum(data)
	}
	return sums
}
