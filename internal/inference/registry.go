// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"os"
	"path/filepath"

	"github.com/privacyrouter/core/internal/codekind"
	"github.com/privacyrouter/core/internal/config"
)

// minModelFileBytes is the "minimum-size sanity threshold" spec.md §4.1
// requires for a downloaded file to count as present: small enough to
// reject a truncated/zero-byte download, far below any real GGUF file.
const minModelFileBytes = 1 << 20 // 1 MiB

// registry resolves model ids against the closed config.Models table and
// the models directory on disk.
type registry struct {
	modelsDir string
	models    map[string]config.ModelEntry
}

func newRegistry(cfg *config.Config) *registry {
	r := &registry{modelsDir: cfg.ModelsDir, models: make(map[string]config.ModelEntry, len(cfg.Models))}
	for _, m := range cfg.Models {
		r.models[m.ID] = m
	}
	return r
}

func (r *registry) entry(id string) (config.ModelEntry, error) {
	m, ok := r.models[id]
	if !ok {
		return config.ModelEntry{}, codekind.New(codekind.ModelNotFound, "unknown model id "+id)
	}
	return m, nil
}

func (r *registry) path(m config.ModelEntry) string {
	return filepath.Join(r.modelsDir, m.Filename)
}

// loadable reports whether m's file exists on disk and passes the
// minimum-size sanity threshold.
func (r *registry) loadable(m config.ModelEntry) bool {
	info, err := os.Stat(r.path(m))
	if err != nil {
		return false
	}
	return info.Size() >= minModelFileBytes
}

// anyLoadable reports whether any registered model is currently loadable --
// this is the definition of is_available (spec.md §4.1 "Availability").
func (r *registry) anyLoadable() bool {
	for _, m := range r.models {
		if r.loadable(m) {
			return true
		}
	}
	return false
}

func (r *registry) ids() []string {
	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	return ids
}
