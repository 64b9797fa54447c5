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

	"github.com/privacyrouter/core/internal/router"
)

type makeRoutingDecisionRequest struct {
	PersonaID string `json:"persona_id" binding:"required"`
}

// handleMakeRoutingDecision implements spec.md §6's
// make_routing_decision(persona) -> RoutingDecision, probing live
// availability itself -- callers supply only the persona id.
func (s *Server) handleMakeRoutingDecision(c *gin.Context) {
	var req makeRoutingDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	persona, ok := s.core.Config.FindPersona(req.PersonaID)
	if !ok {
		s.fail(c, http.StatusNotFound, errUnknownPersona(req.PersonaID))
		return
	}

	start := time.Now()
	decision := router.MakeRoutingDecision(persona, s.core.Inference.IsAvailable())
	router.RecordDecision(decision, time.Since(start).Seconds())
	router.AuditLogDecision(s.core.Log, persona.ID, decision) // emitted before any outbound call, per spec.md §4.3

	c.JSON(http.StatusOK, decision)
}

type validatePersonaConfigRequest struct {
	Persona personaDTO `json:"persona" binding:"required"`
}

func (s *Server) handleValidatePersonaConfig(c *gin.Context) {
	var req validatePersonaConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	errs, warnings := router.ValidatePersonaConfig(personaFromDTO(req.Persona))
	c.JSON(http.StatusOK, gin.H{"errors": errs, "warnings": warnings})
}
