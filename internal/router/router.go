// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package router implements the Backend Routing State Machine
// (spec.md §4.3): a pure decision table over persona policy and
// local-model availability, with fail-closed semantics. Cross-checked
// against original_source/apps/desktop/src-tauri/src/backend_routing.rs
// per SPEC_FULL.md §13; spec.md's table is authoritative where the two
// differ (they do not).
package router

import (
	"fmt"

	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/pkg/logging"
)

// ContentMode is spec.md §3's content_mode.
type ContentMode string

const (
	ContentFullText       ContentMode = "full_text"
	ContentAttributesOnly ContentMode = "attributes_only"
)

// FallbackEvent is spec.md §3's fallback_event.
type FallbackEvent struct {
	Kind   string // "none" | "local_unavailable" | "anonymization_failed" | "blocked"
	Reason string // populated only for "blocked"
}

var FallbackNone = FallbackEvent{Kind: "none"}
var FallbackLocalUnavailable = FallbackEvent{Kind: "local_unavailable"}
var FallbackAnonymizationFailed = FallbackEvent{Kind: "anonymization_failed"}

func blocked(reason string) FallbackEvent {
	return FallbackEvent{Kind: "blocked", Reason: reason}
}

// Decision is spec.md §3's RoutingDecision.
type Decision struct {
	Backend       config.Backend
	ContentMode   ContentMode
	Anonymize     bool
	ModelID       string
	Reason        string
	FallbackEvent FallbackEvent
	IsSafe        bool
}

// MakeRoutingDecision implements spec.md §4.3's decision table. It is a
// pure function of (persona, localAvailable) -- Router-Pure, spec.md §8.
func MakeRoutingDecision(persona config.Persona, localAvailable bool) Decision {
	switch persona.PreferredBackend {
	case config.BackendDirect:
		return directDecision(persona)
	case config.BackendLocal:
		return localDecision(persona, localAvailable)
	case config.BackendHybrid:
		return hybridDecision(persona, localAvailable)
	default:
		return Decision{
			Backend:       persona.PreferredBackend,
			ContentMode:   ContentFullText,
			IsSafe:        false,
			FallbackEvent: blocked(fmt.Sprintf("unknown preferred_backend %q", persona.PreferredBackend)),
			Reason:        "persona specifies an unrecognized backend",
		}
	}
}

func directDecision(persona config.Persona) Decision {
	if persona.AnonymizationMode == config.AnonymizationRequired {
		return Decision{
			Backend:       config.BackendDirect,
			ContentMode:   ContentAttributesOnly,
			Anonymize:     false,
			ModelID:       persona.CloudModelID,
			Reason:        "direct backend cannot anonymize; required mode degrades to attributes-only",
			FallbackEvent: FallbackNone,
			IsSafe:        true,
		}
	}
	return Decision{
		Backend:       config.BackendDirect,
		ContentMode:   ContentFullText,
		Anonymize:     false,
		ModelID:       persona.CloudModelID,
		Reason:        "direct backend with no anonymization requirement",
		FallbackEvent: FallbackNone,
		IsSafe:        true,
	}
}

func localDecision(persona config.Persona, localAvailable bool) Decision {
	if !localAvailable {
		if persona.AnonymizationMode == config.AnonymizationRequired {
			return Decision{
				Backend:       "",
				ContentMode:   "",
				IsSafe:        false,
				FallbackEvent: blocked("cannot process without local model"),
				Reason:        "local backend required but no local model is available",
			}
		}
		return Decision{
			Backend:       config.BackendDirect,
			ContentMode:   ContentFullText,
			Anonymize:     false,
			ModelID:       persona.CloudModelID,
			Reason:        "local backend unavailable, falling back to direct with full text",
			FallbackEvent: FallbackLocalUnavailable,
			IsSafe:        true,
		}
	}
	return Decision{
		Backend:       config.BackendLocal,
		ContentMode:   ContentFullText,
		Anonymize:     false,
		ModelID:       persona.LocalModelID,
		Reason:        "local model available, serving locally",
		FallbackEvent: FallbackNone,
		IsSafe:        true,
	}
}

func hybridDecision(persona config.Persona, localAvailable bool) Decision {
	if !localAvailable {
		switch persona.AnonymizationMode {
		case config.AnonymizationRequired:
			return Decision{
				IsSafe:        false,
				FallbackEvent: blocked("cannot anonymize without local model"),
				Reason:        "hybrid backend requires anonymization but no local model is available",
			}
		case config.AnonymizationOptional:
			return Decision{
				Backend:       config.BackendDirect,
				ContentMode:   ContentAttributesOnly,
				Anonymize:     false,
				ModelID:       persona.CloudModelID,
				Reason:        "hybrid backend unavailable, falling back to attributes-only to preserve the privacy floor",
				FallbackEvent: FallbackLocalUnavailable,
				IsSafe:        true,
			}
		default: // none
			return Decision{
				Backend:       config.BackendDirect,
				ContentMode:   ContentFullText,
				Anonymize:     false,
				ModelID:       persona.CloudModelID,
				Reason:        "hybrid backend unavailable with no anonymization requirement, falling back to direct",
				FallbackEvent: FallbackLocalUnavailable,
				IsSafe:        true,
			}
		}
	}

	if persona.AnonymizationMode == config.AnonymizationRequired {
		return Decision{
			Backend:       config.BackendHybrid,
			ContentMode:   ContentAttributesOnly,
			Anonymize:     true,
			ModelID:       persona.LocalModelID,
			Reason:        "hybrid backend with required anonymization, local model available",
			FallbackEvent: FallbackNone,
			IsSafe:        true,
		}
	}
	return Decision{
		Backend:       config.BackendHybrid,
		ContentMode:   ContentFullText,
		Anonymize:     true,
		ModelID:       persona.LocalModelID,
		Reason:        "hybrid backend, local model available",
		FallbackEvent: FallbackNone,
		IsSafe:        true,
	}
}

// AuditLogDecision emits the structured log line spec.md §4.3 requires
// before any outbound call -- "the single source of truth for
// downstream incident review".
func AuditLogDecision(log *logging.Logger, personaID string, d Decision) {
	if log == nil {
		return
	}
	log.Info("routing decision",
		"persona_id", personaID,
		"backend", string(d.Backend),
		"content_mode", string(d.ContentMode),
		"anonymize", d.Anonymize,
		"is_safe", d.IsSafe,
		"fallback", d.FallbackEvent.Kind,
		"reason", d.Reason,
	)
}
