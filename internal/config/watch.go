// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// reloadQuiet coalesces the editor write bursts fsnotify reports for a
// single save.
const reloadQuiet = 250 * time.Millisecond

// Watcher reloads the config file on change and hands each valid
// rebuild to the onChange callback. Invalid rewrites are logged and
// skipped; the previous config stays in effect.
type Watcher struct {
	fw     *fsnotify.Watcher
	path   string
	logger *zap.Logger
	done   chan struct{}
}

// Watch starts watching path. The callback runs on the watcher
// goroutine.
func Watch(path string, logger *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Watch the directory: editors replace files on save, which drops a
	// watch set on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{fw: fw, path: path, logger: logger, done: make(chan struct{})}
	go w.loop(onChange)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) loop(onChange func(*Config)) {
	var pending *time.Timer
	target := filepath.Clean(w.path)

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadQuiet, func() {
				cfg, err := Load(w.path)
				if err != nil {
					w.logger.Warn("config reload failed", zap.Error(err))
					return
				}
				w.logger.Info("config reloaded", zap.String("path", w.path))
				onChange(cfg)
			})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", zap.Error(err))
		}
	}
}
