// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package core wires every subsystem into a single process-lifetime
// value, replacing the teacher's process-wide service registry of
// singletons (spec.md §9 "Global singletons") with one explicitly
// constructed struct passed to whatever needs it -- the command surface,
// the CLI, tests.
package core

import (
	"context"
	"fmt"
	"runtime"

	"github.com/privacyrouter/core/internal/anonymize"
	"github.com/privacyrouter/core/internal/attributes"
	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/internal/cryptobound"
	"github.com/privacyrouter/core/internal/inference"
	"github.com/privacyrouter/core/internal/inference/llamacpp"
	"github.com/privacyrouter/core/internal/inference/ollama"
	"github.com/privacyrouter/core/internal/store"
	"github.com/privacyrouter/core/pkg/logging"
)

// Core holds every subsystem a request might touch. Fields are exported
// so internal/transport/httpapi and cmd/routerd can reach them directly;
// Core itself adds no behavior beyond construction and teardown.
type Core struct {
	Config      *config.Config
	Log         *logging.Logger
	KeyManager  *cryptobound.KeyManager
	Cipher      *cryptobound.Cipher
	Store       *store.Store
	Anonymizer  *anonymize.Engine
	Attributes  *attributes.Extractor
	Inference   inference.Host
	Cloud       *inference.CloudAdapter
}

// New constructs every subsystem from cfg. Per spec.md §5 "Fail-fast
// critical initializers", a failure in the key manager is fatal; the
// regex compiler's fail-fast behavior lives in anonymize's package init.
func New(cfg *config.Config, log *logging.Logger, cloudAPIKey string) (*Core, error) {
	if log == nil {
		log = logging.Default()
	}

	keyManager, err := cryptobound.NewKeyManager(cryptobound.FileSecretStore{Path: cfg.SecretKeyPath})
	if err != nil {
		return nil, fmt.Errorf("init key manager: %w", err)
	}
	cipher, err := keyManager.Cipher()
	if err != nil {
		keyManager.Destroy()
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	mappingStore, err := store.Open(cfg.StoreDir)
	if err != nil {
		keyManager.Destroy()
		return nil, fmt.Errorf("open mapping store: %w", err)
	}

	anonymizer := anonymize.New(cfg.ConfidenceThreshold, cipher, log)

	host := buildInferenceHost(cfg, log)
	attributeExtractor := attributes.New(host, log)

	var cloud *inference.CloudAdapter
	if cloudAPIKey != "" {
		cloud = inference.NewCloudAdapter(cloudAPIKey, "", cfg.CloudModel)
	}

	return &Core{
		Config:     cfg,
		Log:        log,
		KeyManager: keyManager,
		Cipher:     cipher,
		Store:      mappingStore,
		Anonymizer: anonymizer,
		Attributes: attributeExtractor,
		Inference:  host,
		Cloud:      cloud,
	}, nil
}

// buildInferenceHost selects the embedded llamacpp engine or, when
// FORCE_EXTERNAL_INFERENCE is set, the HTTP daemon client (spec.md §6
// "Environment variables").
func buildInferenceHost(cfg *config.Config, log *logging.Logger) inference.Host {
	if cfg.ForceExternalInference {
		log.Info("FORCE_EXTERNAL_INFERENCE set, routing local generation to the external daemon", "base_url", cfg.OllamaBaseURL)
		defaultModel := ""
		if p, ok := cfg.FindPersona(cfg.DefaultPersona); ok {
			defaultModel = p.LocalModelID
		}
		client := ollama.NewClient(cfg.OllamaBaseURL, defaultModel, 2)
		return &externalHost{client: client, cfg: cfg}
	}
	threads := min(runtime.NumCPU(), 4)
	if cfg.GPULayers > 0 {
		log.Info("gpu layer offload requested", "gpu_layers", cfg.GPULayers)
	}
	factory := func(ctx context.Context, path string) (llamacpp.NativeModel, error) {
		return nil, fmt.Errorf("no native GGUF backend is linked into this build for %s", path)
	}
	engine := llamacpp.NewEngine(factory, threads)
	return inference.NewLocalHost(cfg, engine, log)
}

// Close releases resources in reverse-acquisition order.
func (c *Core) Close() error {
	var firstErr error
	if c.Store != nil {
		if err := c.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.KeyManager != nil {
		c.KeyManager.Destroy()
	}
	return firstErr
}
