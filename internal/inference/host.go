// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package inference implements the Local Inference Host (spec.md §4.1): a
// narrow contract hiding native-model lifecycle, download, and generation
// concerns behind {is_available, generate, generate_json, ensure_model,
// preload, status}. The embedded-GGUF backend lives in
// internal/inference/llamacpp; the HTTP daemon backend for
// FORCE_EXTERNAL_INFERENCE lives in internal/inference/ollama.
package inference

import "context"

// State is a model's lifecycle state (spec.md §4.1 "Model lifecycle").
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateLoaded   State = "loaded"
)

// Status is returned by get_status (spec.md §6).
type Status struct {
	ActiveModelID     string
	State             State
	DownloadProgress  map[string]int // percent-complete per model id, 0-100
	AvailableModelIDs []string
}

// NativeBackend is the narrow interface a concrete model runtime (embedded
// GGUF, an HTTP daemon) implements. Host composes one of these with the
// download/registry/lifecycle machinery that is backend-independent.
type NativeBackend interface {
	// LoadModel prepares id for generation. Must be safe to call again for
	// the same id (idempotent) and must return once the model is ready.
	LoadModel(ctx context.Context, id string, path string) error
	// Unload releases any resources held for the currently loaded model.
	Unload()
	// Generate produces free-form text for prompt against the currently
	// loaded model.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateJSON produces text in JSON sampling mode and returns the
	// first balanced JSON object found, or the raw text if none is found.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Host is the contract spec.md §4.1 names. *LocalHost implements it against
// an embedded llamacpp.Engine; the FORCE_EXTERNAL_INFERENCE alternative
// wraps an ollama.Client in internal/core's externalHost adapter (see
// core.buildInferenceHost).
type Host interface {
	IsAvailable() bool
	Generate(ctx context.Context, prompt string, modelID string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	EnsureModel(ctx context.Context, id string) error
	Preload(ctx context.Context) error
	Status() Status
}
