package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives the reloaded config, or the error that prevented the
// reload, after a config file changed.
type ChangeFunc func(e fsnotify.Event, cfg *Config, err error)

// Watch reloads the config whenever a candidate file in BasePath is written,
// created, removed or renamed, until ctx is done. The directory is watched so
// files created after Watch starts are picked up too.
func (l *Loader) Watch(ctx context.Context, onChange ChangeFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(l.opts.BasePath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", l.opts.BasePath, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !l.isConfigFile(e.Name) {
					continue
				}
				if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) &&
					!e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
					continue
				}
				cfg, err := l.Load()
				if onChange != nil {
					onChange(e, cfg, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onChange != nil {
					onChange(fsnotify.Event{}, nil, err)
				}
			}
		}
	}()

	return nil
}

func (l *Loader) isConfigFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range l.configFileNames() {
		if strings.EqualFold(base, name+"."+l.opts.FileType) {
			return true
		}
	}
	return false
}
