// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package core

import (
	"context"

	"github.com/privacyrouter/core/internal/codekind"
	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/internal/inference"
	"github.com/privacyrouter/core/internal/inference/ollama"
)

// externalHost adapts an ollama.Client (a plain generate/generate_json
// daemon client) to the full inference.Host contract, for
// FORCE_EXTERNAL_INFERENCE mode. The daemon owns its own model
// lifecycle, so EnsureModel/Preload are no-ops once the daemon is
// reachable and Status reports a coarser view than the embedded engine.
type externalHost struct {
	client *ollama.Client
	cfg    *config.Config
}

func (h *externalHost) IsAvailable() bool {
	return h.client.IsAvailable()
}

func (h *externalHost) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	return h.client.Generate(ctx, prompt)
}

func (h *externalHost) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return h.client.GenerateJSON(ctx, prompt)
}

func (h *externalHost) EnsureModel(ctx context.Context, id string) error {
	if !h.client.IsAvailable() {
		return codekind.New(codekind.ModelLoadFailed, "external inference daemon unreachable")
	}
	return nil
}

func (h *externalHost) Preload(ctx context.Context) error {
	if !h.client.IsAvailable() {
		return codekind.New(codekind.ModelLoadFailed, "external inference daemon unreachable")
	}
	return nil
}

func (h *externalHost) Status() inference.Status {
	state := inference.StateUnloaded
	if h.client.IsAvailable() {
		state = inference.StateLoaded
	}
	return inference.Status{State: state}
}
