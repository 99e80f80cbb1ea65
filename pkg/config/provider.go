package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/vxgo/approuter/pkg/logger"
)

// Provider hands out the current dynamic config snapshot. The worker
// calls Snapshot once per message; the returned value is immutable for
// the duration of that handling.
type Provider interface {
	Snapshot() *Dynamic
}

// StaticProvider serves a fixed snapshot. Used in tests and for workers
// that do not hot-reload.
type StaticProvider struct {
	cfg *Dynamic
}

// NewStaticProvider wraps a fixed dynamic config.
func NewStaticProvider(cfg *Dynamic) *StaticProvider {
	return &StaticProvider{cfg: cfg}
}

// Snapshot returns the fixed config.
func (p *StaticProvider) Snapshot() *Dynamic {
	return p.cfg
}

// FileProvider serves snapshots of a YAML config file and refreshes them
// when the file changes on disk. An update that fails to decode or
// validate is logged and skipped; the previous snapshot stays active.
type FileProvider struct {
	path    string
	current atomic.Pointer[Dynamic]
	watcher *fsnotify.Watcher
}

// NewFileProvider loads the initial snapshot from path. The initial load
// must succeed; later reload failures only log.
func NewFileProvider(path string) (*FileProvider, error) {
	cfg, err := LoadDynamic(path)
	if err != nil {
		return nil, err
	}

	p := &FileProvider{path: path}
	p.current.Store(cfg)
	return p, nil
}

// Snapshot returns the current dynamic config.
func (p *FileProvider) Snapshot() *Dynamic {
	return p.current.Load()
}

// Watch blocks until ctx is done, reloading the snapshot whenever the
// config file is written. Watching the directory rather than the file
// keeps the watch alive across the rename-and-replace writes editors and
// config management tools perform.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()
	p.watcher = watcher

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			p.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("config watcher error", "error", err)
		}
	}
}

func (p *FileProvider) reload() {
	cfg, err := LoadDynamic(p.path)
	if err != nil {
		logger.Warnw("ignoring invalid dynamic config update",
			"path", p.path, "error", err)
		return
	}
	p.current.Store(cfg)
	logger.Infow("dynamic config reloaded",
		"path", p.path, "entries", len(cfg.Entries))
}
