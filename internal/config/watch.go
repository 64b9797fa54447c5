// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/privacyrouter/core/pkg/logging"
)

// Watcher reloads a Config from disk whenever the backing YAML file
// changes, for the CLI's long-running serve mode. Routing decisions
// already snapshot the persona they were called with (spec.md §5
// "Routing decisions are pure functions of (persona snapshot, ...)"), so
// a hot-reloaded Config only affects requests made after the swap.
type Watcher struct {
	path string
	log  *logging.Logger

	mu  sync.RWMutex
	cur *Config

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher loads path once and starts watching it for changes.
func NewWatcher(path string, log *logging.Logger) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    path,
		log:     log,
		cur:     cfg,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous config", "path", w.path, "error", err)
				continue
			}
			w.mu.Lock()
			w.cur = cfg
			w.mu.Unlock()
			w.log.Info("config reloaded", "path", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
