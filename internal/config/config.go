// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the router's YAML configuration: the model
// registry, default persona policy, and anonymization tuning, plus
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/privacyrouter/core/internal/codekind"
)

// Backend is persona.preferred_backend (spec.md §3).
type Backend string

const (
	BackendDirect Backend = "direct"
	BackendLocal  Backend = "local"
	BackendHybrid Backend = "hybrid"
)

// AnonymizationMode is persona.anonymization_mode.
type AnonymizationMode string

const (
	AnonymizationNone     AnonymizationMode = "none"
	AnonymizationOptional AnonymizationMode = "optional"
	AnonymizationRequired AnonymizationMode = "required"
)

// Persona is the policy object from spec.md §3. Immutable for the
// duration of a request once loaded/validated.
type Persona struct {
	ID                  string            `yaml:"id" validate:"required"`
	PreferredBackend    Backend           `yaml:"preferred_backend" validate:"required,oneof=direct local hybrid"`
	EnableLocalAnon     bool              `yaml:"enable_local_anonymizer"`
	AnonymizationMode   AnonymizationMode `yaml:"anonymization_mode" validate:"required,oneof=none optional required"`
	LocalModelID        string            `yaml:"local_model_id,omitempty"`
	CloudModelID        string            `yaml:"cloud_model_id,omitempty"`
	ConfidenceThreshold float64           `yaml:"confidence_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

var personaValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks Persona's struct tags plus invariants P1 and P2, which
// the tag-based validator cannot express (they are cross-field boolean
// implications, not single-field constraints).
//
// P1: anonymization_mode = required ⇒ enable_local_anonymizer = true.
// P2: preferred_backend = local ⇒ enable_local_anonymizer = true.
func (p Persona) Validate() error {
	if err := personaValidate.Struct(p); err != nil {
		return codekind.Wrap(codekind.PersonaConfigInvalid, "persona "+p.ID, err)
	}
	if p.AnonymizationMode == AnonymizationRequired && !p.EnableLocalAnon {
		return codekind.New(codekind.PersonaConfigInvalid,
			fmt.Sprintf("persona %s: anonymization_mode=required requires enable_local_anonymizer=true (P1)", p.ID))
	}
	if p.PreferredBackend == BackendLocal && !p.EnableLocalAnon {
		return codekind.New(codekind.PersonaConfigInvalid,
			fmt.Sprintf("persona %s: preferred_backend=local requires enable_local_anonymizer=true (P2)", p.ID))
	}
	return nil
}

// ModelEntry is one row of the closed local-model registry (spec.md §4.1
// "Model registry").
type ModelEntry struct {
	ID              string `yaml:"id" validate:"required"`
	Filename        string `yaml:"filename" validate:"required"`
	URL             string `yaml:"url" validate:"required,url"`
	DeclaredBytes   int64  `yaml:"declared_bytes" validate:"required,gt=0"`
	ContextWindow   int    `yaml:"context_window" validate:"required,gt=0"`
	Tier            string `yaml:"tier,omitempty"`
	ExpectedSHA256  string `yaml:"expected_sha256,omitempty"`
}

// Config is the top-level YAML document.
type Config struct {
	ModelsDir           string       `yaml:"models_dir"`
	Models              []ModelEntry `yaml:"models" validate:"dive"`
	DefaultPersona      string       `yaml:"default_persona"`
	Personas            []Persona    `yaml:"personas" validate:"dive"`
	ConfidenceThreshold float64      `yaml:"confidence_threshold" validate:"gte=0,lte=1"`
	HTTPAddr            string       `yaml:"http_addr"`
	StoreDir            string       `yaml:"store_dir"`
	SecretKeyPath       string       `yaml:"secret_key_path"`
	OllamaBaseURL       string       `yaml:"ollama_base_url"`
	CloudModel          string       `yaml:"cloud_model"`

	// Environment overrides, resolved once at Load time (spec.md §6
	// "Environment variables").
	ForceExternalInference bool
	GPULayers              int
	SupportPAT             string
}

const defaultConfidenceThreshold = 0.7

// Load reads and validates a router YAML config from path, then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "llm-models"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8787"
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = "pii-store"
	}
	if cfg.SecretKeyPath == "" {
		cfg.SecretKeyPath = "privacyrouter.key"
	}
	if cfg.OllamaBaseURL == "" {
		cfg.OllamaBaseURL = "http://localhost:11434"
	}
	if err := personaValidate.Struct(&cfg); err != nil {
		return nil, codekind.Wrap(codekind.PersonaConfigInvalid, "config "+path, err)
	}
	for _, p := range cfg.Personas {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.ForceExternalInference = os.Getenv("FORCE_EXTERNAL_INFERENCE") == "1"
	if v := os.Getenv("GPU_LAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GPULayers = n
		}
	}
	cfg.SupportPAT = os.Getenv("SUPPORT_PAT")
}

// FindPersona looks up a persona by id.
func (c *Config) FindPersona(id string) (Persona, bool) {
	for _, p := range c.Personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// FindModel looks up a registry entry by id. The registry is closed: an
// unknown id is the caller's signal to surface codekind.ModelNotFound.
func (c *Config) FindModel(id string) (ModelEntry, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelEntry{}, false
}
