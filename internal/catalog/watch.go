package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 400 * time.Millisecond

// Watch reloads the catalog whenever its backing file changes. The watch is
// placed on the containing directory so atomic replace (write temp + rename)
// is picked up. Runs until ctx is cancelled. Reload failures keep the
// previous catalog and are logged, never fatal.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var mu sync.Mutex
		var pending *time.Timer
		target := filepath.Clean(c.path)

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if pending != nil {
					pending.Stop()
				}
				mu.Unlock()
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(reloadDebounce, func() {
					if err := c.Reload(); err != nil {
						c.logger.Warn("catalog reload failed", zap.Error(err))
					}
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if err != nil {
					c.logger.Debug("catalog watch error", zap.Error(err))
				}
			}
		}
	}()

	return nil
}
