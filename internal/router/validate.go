// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package router

import "github.com/privacyrouter/core/internal/config"

// Classify mirrors original_source/backend_routing.rs's
// determine_backend: a config-only pre-flight resolution of which
// backend a persona *would* use, independent of live availability.
// Supplemented per SPEC_FULL.md §13 to separate "is this config
// internally consistent" from "what do we do for this request right
// now" (MakeRoutingDecision).
func Classify(persona config.Persona) config.Backend {
	return persona.PreferredBackend
}

// ValidatePersonaConfig checks persona for structural validity (P1, P2)
// plus the original's determine_backend-style soft warnings about
// combinations that are legal but likely surprising (spec.md §6 names
// this operation; SPEC_FULL.md §13 supplements it with warnings).
func ValidatePersonaConfig(persona config.Persona) (errs []string, warnings []string) {
	if err := persona.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if persona.PreferredBackend == config.BackendDirect && persona.AnonymizationMode == config.AnonymizationRequired {
		warnings = append(warnings,
			"required anonymization with direct backend routes attributes-only, double-check this is intended")
	}
	if persona.PreferredBackend == config.BackendHybrid && persona.LocalModelID == "" {
		warnings = append(warnings,
			"hybrid backend with no local_model_id configured will always fall back to direct")
	}
	if persona.PreferredBackend != config.BackendDirect && persona.CloudModelID == "" {
		warnings = append(warnings,
			"no cloud_model_id configured, fallback-to-direct paths will have no model to call")
	}

	return errs, warnings
}
