// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyrouter/core/internal/codekind"
)

const sampleYAML = `
models_dir: llm-models
confidence_threshold: 0.7
default_persona: careful
models:
  - id: qwen3-8b
    filename: Qwen3-8B-Q4_K_M.gguf
    url: https://example.invalid/qwen3-8b.gguf
    declared_bytes: 5030000000
    context_window: 4096
personas:
  - id: careful
    preferred_backend: hybrid
    enable_local_anonymizer: true
    anonymization_mode: required
    local_model_id: qwen3-8b
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "llm-models", cfg.ModelsDir)
	require.Len(t, cfg.Personas, 1)

	p, ok := cfg.FindPersona("careful")
	require.True(t, ok)
	require.Equal(t, BackendHybrid, p.PreferredBackend)

	m, ok := cfg.FindModel("qwen3-8b")
	require.True(t, ok)
	require.Equal(t, 4096, m.ContextWindow)

	_, ok = cfg.FindModel("nonexistent")
	require.False(t, ok)
}

func TestPersonaInvariantP1(t *testing.T) {
	p := Persona{
		ID:                "broken",
		PreferredBackend:  BackendDirect,
		AnonymizationMode: AnonymizationRequired,
		EnableLocalAnon:   false,
	}
	err := p.Validate()
	require.Error(t, err)
	require.True(t, codekind.Is(err, codekind.PersonaConfigInvalid))
}

func TestPersonaInvariantP2(t *testing.T) {
	p := Persona{
		ID:                "broken",
		PreferredBackend:  BackendLocal,
		AnonymizationMode: AnonymizationNone,
		EnableLocalAnon:   false,
	}
	err := p.Validate()
	require.Error(t, err)
	require.True(t, codekind.Is(err, codekind.PersonaConfigInvalid))
}

func TestPersonaValidCombinations(t *testing.T) {
	valid := []Persona{
		{ID: "a", PreferredBackend: BackendDirect, AnonymizationMode: AnonymizationNone},
		{ID: "b", PreferredBackend: BackendLocal, AnonymizationMode: AnonymizationOptional, EnableLocalAnon: true},
		{ID: "c", PreferredBackend: BackendHybrid, AnonymizationMode: AnonymizationRequired, EnableLocalAnon: true},
	}
	for _, p := range valid {
		require.NoError(t, p.Validate(), p.ID)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	t.Setenv("FORCE_EXTERNAL_INFERENCE", "1")
	t.Setenv("GPU_LAYERS", "32")
	t.Setenv("SUPPORT_PAT", "abc123")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.ForceExternalInference)
	require.Equal(t, 32, cfg.GPULayers)
	require.Equal(t, "abc123", cfg.SupportPAT)
}

func TestLoadRejectsInvalidPersonaInFile(t *testing.T) {
	bad := sampleYAML + "  - id: bad\n    preferred_backend: local\n    anonymization_mode: none\n    enable_local_anonymizer: false\n"
	path := writeTemp(t, bad)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
