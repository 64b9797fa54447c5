// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privacyrouter/core/internal/anonymize"
	"github.com/privacyrouter/core/internal/store"
)

type extractionFieldDTO struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type anonymizeTextRequest struct {
	Text           string                         `json:"text" binding:"required"`
	ConversationID string                         `json:"conversation_id" binding:"required"`
	Extraction     map[string]extractionFieldDTO `json:"extraction"`
}

type mappingDTO struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Placeholder string `json:"placeholder"`
	Encrypted   bool   `json:"encrypted"`
}

func (s *Server) handleAnonymizeText(c *gin.Context) {
	var req anonymizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	extraction := anonymize.Extraction{Fields: make(map[string]anonymize.Field, len(req.Extraction))}
	for category, f := range req.Extraction {
		extraction.Fields[category] = anonymize.Field{Value: f.Value, Confidence: f.Confidence}
	}

	anonymized, mappings, err := s.core.Anonymizer.Anonymize(req.Text, req.ConversationID, extraction)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]mappingDTO, 0, len(mappings))
	for _, m := range mappings {
		if _, err := s.core.Store.Insert(store.Mapping{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Category:       m.Category,
			Placeholder:    m.Placeholder,
			Ciphertext:     m.Ciphertext,
			Encrypted:      m.Encrypted,
		}); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		dtos = append(dtos, mappingDTO{ID: m.ID, Category: m.Category, Placeholder: m.Placeholder, Encrypted: m.Encrypted})
	}

	c.JSON(http.StatusOK, gin.H{"anonymized_text": anonymized, "mappings": dtos})
}

type validateAnonymizationRequest struct {
	Text string `json:"text" binding:"required"`
	Mode string `json:"mode"` // "strict" (default) or "lenient"
}

func (s *Server) handleValidateAnonymization(c *gin.Context) {
	var req validateAnonymizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	v := anonymize.Validate(req.Text)
	isSafe := v.IsAcceptableForRequired()
	if req.Mode == "lenient" {
		isSafe = v.IsAcceptableForOptional()
	}
	c.JSON(http.StatusOK, gin.H{
		"is_safe":        isSafe,
		"risk":           v.Risk,
		"found_patterns": v.FoundPatterns,
	})
}
