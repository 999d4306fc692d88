package web

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce lets an editor finish a burst of writes before the catalog is re-read.
const reloadDebounce = 200 * time.Millisecond

// WatchCatalog reloads the catalog whenever its file changes, until ctx is cancelled. A
// catalog that fails to load is logged and the previous one keeps serving. onReload, if set,
// is called after every reload attempt with its result.
func (s *Server) WatchCatalog(ctx context.Context, onReload func(error)) error {
	if s.catalogPath == "" {
		return errors.New("no catalog file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen too.
	target := filepath.Clean(s.catalogPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	s.log.Info("watching catalog", zap.String("path", target))

	ticker := time.NewTicker(reloadDebounce / 4)
	defer ticker.Stop()
	var changed time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				changed = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("catalog watcher", zap.Error(err))

		case <-ticker.C:
			if changed.IsZero() || time.Since(changed) < reloadDebounce {
				continue
			}
			changed = time.Time{}
			err := s.reloadCatalog()
			if err != nil {
				s.log.Error("reload catalog", zap.String("path", target), zap.Error(err))
			} else {
				s.log.Info("catalog reloaded", zap.Int("cards", len(s.Catalog().Cards())))
			}
			if onReload != nil {
				onReload(err)
			}
		}
	}
}
