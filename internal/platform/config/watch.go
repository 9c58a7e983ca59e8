package config

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	applog "github.com/janisto/football-api/internal/platform/logging"
)

// ErrNoConfigFile is returned by Watch when the last Load found no file.
var ErrNoConfigFile = errors.New("no config file to watch")

// Watch reloads the config each time the config file read by the last Load,
// or the dotenv file, is written or replaced, and passes the result to
// onChange. A reload that fails keeps the previous config: the error is
// logged and onChange is not called. Watch blocks until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context, onChange func(*Config)) error {
	path := l.File()
	if path == "" {
		return ErrNoConfigFile
	}
	watched := map[string]bool{path: true}
	if envPath := l.EnvFile(); envPath != "" {
		watched[envPath] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch directories so atomic saves (write temp, rename) are seen.
	dirs := map[string]bool{}
	for p := range watched {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	applog.LogInfo(ctx, "watching config", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			l.reload(ctx, event.Name, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			applog.LogError(ctx, "config watcher error", err)
		}
	}
}

func (l *Loader) reload(ctx context.Context, path string, onChange func(*Config)) {
	cfg, err := l.Load()
	if err != nil {
		applog.LogError(ctx, "config reload failed, keeping previous config", err, zap.String("path", path))
		return
	}
	applog.LogInfo(ctx, "config reloaded", zap.String("path", path))
	onChange(cfg)
}
