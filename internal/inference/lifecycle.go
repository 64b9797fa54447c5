// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/privacyrouter/core/internal/codekind"
	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/pkg/logging"
)

// LocalHost implements Host against an embedded NativeBackend (normally
// llamacpp.Engine), handling the model registry, download, and the
// single-writer load gate described in spec.md §4.1 "Model lifecycle".
type LocalHost struct {
	cfg      *config.Config
	reg      *registry
	backend  NativeBackend
	log      *logging.Logger
	client   *http.Client

	mu       sync.Mutex
	state    State
	activeID string

	loadGroup singleflight.Group
	progress  map[string]*progress
	progMu    sync.Mutex
}

// NewLocalHost constructs a LocalHost around backend, using cfg's model
// registry for resolution and download sourcing.
func NewLocalHost(cfg *config.Config, backend NativeBackend, log *logging.Logger) *LocalHost {
	return &LocalHost{
		cfg:      cfg,
		reg:      newRegistry(cfg),
		backend:  backend,
		log:      log,
		client:   &http.Client{},
		state:    StateUnloaded,
		progress: make(map[string]*progress),
	}
}

func (h *LocalHost) IsAvailable() bool {
	return h.reg.anyLoadable()
}

func (h *LocalHost) progressFor(id string) *progress {
	h.progMu.Lock()
	defer h.progMu.Unlock()
	p, ok := h.progress[id]
	if !ok {
		p = &progress{}
		h.progress[id] = p
	}
	return p
}

// EnsureModel implements spec.md §4.1's single-writer load gate: at most
// one load runs at a time per id (singleflight.Group dedups concurrent
// callers asking for the same id), downloading first if the file is not
// yet present and loadable.
func (h *LocalHost) EnsureModel(ctx context.Context, id string) error {
	m, err := h.reg.entry(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.activeID == id && h.state == StateLoaded {
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	_, err, _ = h.loadGroup.Do(id, func() (any, error) {
		h.mu.Lock()
		if h.activeID == id && h.state == StateLoaded {
			// A flight that finished after the check above already loaded it.
			h.mu.Unlock()
			return nil, nil
		}
		h.state = StateLoading
		h.mu.Unlock()

		path := h.reg.path(m)
		if !h.reg.loadable(m) {
			if err := os.MkdirAll(h.cfg.ModelsDir, 0o755); err != nil {
				return nil, codekind.Wrap(codekind.DownloadFailed, "create models dir", err)
			}
			if err := downloadModel(ctx, h.client, m, path, h.progressFor(id), h.log); err != nil {
				h.mu.Lock()
				h.state = StateUnloaded
				h.mu.Unlock()
				return nil, err
			}
		}

		if err := h.backend.LoadModel(ctx, id, path); err != nil {
			h.mu.Lock()
			h.state = StateUnloaded
			h.mu.Unlock()
			return nil, codekind.Wrap(codekind.ModelLoadFailed, id, err)
		}

		h.mu.Lock()
		h.activeID = id
		h.state = StateLoaded
		h.mu.Unlock()
		modelLoads.Inc()
		return nil, nil
	})
	return err
}

// SetActiveModel switches the active model. Per spec.md §4.1's state
// diagram, changing the active id unloads the previous model; the next
// EnsureModel/Generate call for the new id reloads it.
func (h *LocalHost) SetActiveModel(ctx context.Context, id string) error {
	if _, err := h.reg.entry(id); err != nil {
		return err
	}
	h.mu.Lock()
	if h.activeID != id {
		h.backend.Unload()
		h.state = StateUnloaded
		h.activeID = ""
	}
	h.mu.Unlock()
	return h.EnsureModel(ctx, id)
}

// DeleteModel removes a downloaded model's file. If it is the active
// model, the backend is unloaded first.
func (h *LocalHost) DeleteModel(id string) error {
	m, err := h.reg.entry(id)
	if err != nil {
		return err
	}
	h.mu.Lock()
	if h.activeID == id {
		h.backend.Unload()
		h.state = StateUnloaded
		h.activeID = ""
	}
	h.mu.Unlock()
	path := h.reg.path(m)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return codekind.Wrap(codekind.ModelFileMissing, id, err)
	}
	return nil
}

// Preload warm-loads the default model (spec.md §4.1 "Warm-up"); it is a
// no-op if the active model is already loaded.
func (h *LocalHost) Preload(ctx context.Context) error {
	h.mu.Lock()
	alreadyLoaded := h.state == StateLoaded
	h.mu.Unlock()
	if alreadyLoaded {
		return nil
	}
	id := h.cfg.DefaultPersona
	if id == "" {
		ids := h.reg.ids()
		if len(ids) == 0 {
			return codekind.New(codekind.ModelNotFound, "no models registered")
		}
		id = ids[0]
	}
	if p, ok := h.cfg.FindPersona(id); ok && p.LocalModelID != "" {
		id = p.LocalModelID
	}
	return h.EnsureModel(ctx, id)
}

func (h *LocalHost) waitForLoaded(ctx context.Context, id string) error {
	const pollInterval = 200 * time.Millisecond // spec.md §5 "wait-polling interval"
	for {
		h.mu.Lock()
		state, active := h.state, h.activeID
		h.mu.Unlock()
		if active == id && state == StateLoaded {
			return nil
		}
		if active != id && state != StateLoading {
			// The active id changed out from under us; reissue the load.
			return h.EnsureModel(ctx, id)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (h *LocalHost) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	if modelID == "" {
		h.mu.Lock()
		modelID = h.activeID
		h.mu.Unlock()
		if modelID == "" {
			if p, ok := h.cfg.FindPersona(h.cfg.DefaultPersona); ok {
				modelID = p.LocalModelID
			}
		}
	}
	if err := h.EnsureModel(ctx, modelID); err != nil {
		return "", err
	}
	if err := h.waitForLoaded(ctx, modelID); err != nil {
		return "", err
	}
	start := time.Now()
	out, err := h.backend.Generate(ctx, prompt)
	recordGenerate("free_text", time.Since(start), err)
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, modelID, err)
	}
	return out, nil
}

func (h *LocalHost) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	h.mu.Lock()
	modelID := h.activeID
	h.mu.Unlock()
	if modelID == "" {
		if err := h.Preload(ctx); err != nil {
			return "", err
		}
		h.mu.Lock()
		modelID = h.activeID
		h.mu.Unlock()
	}
	if err := h.waitForLoaded(ctx, modelID); err != nil {
		return "", err
	}
	start := time.Now()
	out, err := h.backend.GenerateJSON(ctx, prompt)
	recordGenerate("json", time.Since(start), err)
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, modelID, err)
	}
	return out, nil
}

func (h *LocalHost) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	dp := make(map[string]int, len(h.progress))
	h.progMu.Lock()
	for id, p := range h.progress {
		dp[id] = p.get()
	}
	h.progMu.Unlock()
	return Status{
		ActiveModelID:     h.activeID,
		State:             h.state,
		DownloadProgress:  dp,
		AvailableModelIDs: h.reg.ids(),
	}
}
