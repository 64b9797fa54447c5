// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/privacyrouter/core/internal/anonymize"
	"github.com/privacyrouter/core/internal/attributes"
	"github.com/privacyrouter/core/internal/router"
	"github.com/privacyrouter/core/internal/store"
)

type extractTaxAttributesRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleExtractTaxAttributes(c *gin.Context) {
	var req extractTaxAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	attrs, err := s.core.Attributes.Extract(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, attrs)
}

type privacySafePromptRequest struct {
	Attrs    attributes.TaxAttributes `json:"attrs" binding:"required"`
	Question string                   `json:"question" binding:"required"`
}

func (s *Server) handleGeneratePrivacySafePrompt(c *gin.Context) {
	var req privacySafePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	prompt := attributes.BuildPrivacySafePrompt(req.Attrs, req.Question)
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

type processChatRequest struct {
	Text           string                         `json:"text" binding:"required"`
	ConversationID string                         `json:"conversation_id" binding:"required"`
	Persona        personaDTO                     `json:"persona" binding:"required"`
	Extraction     map[string]extractionFieldDTO `json:"extraction"`
}

// preparedRequestDTO is spec.md §6's process_chat_with_privacy(...) ->
// "prepared request": everything a caller needs to make the actual
// outbound call, or nothing executable at all when is_safe is false.
type preparedRequestDTO struct {
	Backend       string       `json:"backend"`
	ContentMode   string       `json:"content_mode"`
	Anonymize     bool         `json:"anonymize"`
	ModelID       string       `json:"model_id"`
	Reason        string       `json:"reason"`
	IsSafe        bool         `json:"is_safe"`
	FallbackEvent string       `json:"fallback_event"`
	Prompt        string       `json:"prompt"`
	Mappings      []mappingDTO `json:"mappings,omitempty"`
}

// handleProcessChatWithPrivacy implements spec.md §6's
// process_chat_with_privacy(text, persona) -> prepared request: it makes
// the routing decision, audits it before any outbound call, then
// prepares the outbound prompt -- running anonymization whenever the
// decision sets Anonymize, then attribute extraction for attributes_only
// mode or passing the (possibly anonymized) text through for full_text
// mode, per spec.md §4.3's decision table.
func (s *Server) handleProcessChatWithPrivacy(c *gin.Context) {
	var req processChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	persona := personaFromDTO(req.Persona)
	start := time.Now()
	decision := router.MakeRoutingDecision(persona, s.core.Inference.IsAvailable())
	router.RecordDecision(decision, time.Since(start).Seconds())
	router.AuditLogDecision(s.core.Log, persona.ID, decision)

	out := preparedRequestDTO{
		Backend:       string(decision.Backend),
		ContentMode:   string(decision.ContentMode),
		Anonymize:     decision.Anonymize,
		ModelID:       decision.ModelID,
		Reason:        decision.Reason,
		IsSafe:        decision.IsSafe,
		FallbackEvent: decision.FallbackEvent.Kind,
	}

	// spec.md §4.3: "is_safe=false produces an empty prompt and must
	// short-circuit callers before any network I/O."
	if !decision.IsSafe {
		c.JSON(http.StatusOK, out)
		return
	}

	var mappings []anonymize.Mapping
	if decision.Anonymize {
		extraction := anonymize.Extraction{Fields: make(map[string]anonymize.Field, len(req.Extraction))}
		for category, f := range req.Extraction {
			extraction.Fields[category] = anonymize.Field{Value: f.Value, Confidence: f.Confidence}
		}
		anonymizedText, m, err := s.core.Anonymizer.Anonymize(req.Text, req.ConversationID, extraction)
		if err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		mappings = m
		for _, mp := range mappings {
			if _, err := s.core.Store.Insert(store.Mapping{
				ID:             mp.ID,
				ConversationID: mp.ConversationID,
				Category:       mp.Category,
				Placeholder:    mp.Placeholder,
				Ciphertext:     mp.Ciphertext,
				Encrypted:      mp.Encrypted,
			}); err != nil {
				s.fail(c, http.StatusInternalServerError, err)
				return
			}
			out.Mappings = append(out.Mappings, mappingDTO{ID: mp.ID, Category: mp.Category, Placeholder: mp.Placeholder, Encrypted: mp.Encrypted})
		}
		req.Text = anonymizedText
	}

	switch decision.ContentMode {
	case router.ContentAttributesOnly:
		attrs, err := s.core.Attributes.Extract(c.Request.Context(), req.Text)
		if err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		question := attributes.ExtractQuestion(req.Text)
		out.Prompt = attributes.BuildPrivacySafePrompt(attrs, question)
	case router.ContentFullText:
		out.Prompt = req.Text
	}

	c.JSON(http.StatusOK, out)
}
