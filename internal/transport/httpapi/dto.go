// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpapi

import (
	"fmt"

	"github.com/privacyrouter/core/internal/config"
)

func errUnknownPersona(id string) error {
	return fmt.Errorf("unknown persona id %q", id)
}

// personaDTO is the wire shape for a persona in request/response bodies.
type personaDTO struct {
	ID                  string  `json:"id" binding:"required"`
	PreferredBackend    string  `json:"preferred_backend" binding:"required"`
	EnableLocalAnon     bool    `json:"enable_local_anonymizer"`
	AnonymizationMode   string  `json:"anonymization_mode" binding:"required"`
	LocalModelID        string  `json:"local_model_id"`
	CloudModelID        string  `json:"cloud_model_id"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

func personaFromDTO(p personaDTO) config.Persona {
	return config.Persona{
		ID:                  p.ID,
		PreferredBackend:    config.Backend(p.PreferredBackend),
		EnableLocalAnon:     p.EnableLocalAnon,
		AnonymizationMode:   config.AnonymizationMode(p.AnonymizationMode),
		LocalModelID:        p.LocalModelID,
		CloudModelID:        p.CloudModelID,
		ConfidenceThreshold: p.ConfidenceThreshold,
	}
}
