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

	"github.com/privacyrouter/core/internal/rehydrate"
)

type templateRequest struct {
	Template string              `json:"template" binding:"required"`
	Values   rehydrate.PIIValues `json:"values"`
}

func (s *Server) handleAnalyzeTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	analysis := rehydrate.AnalyzeTemplate(req.Template, req.Values, time.Now())
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleRehydrateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	result := rehydrate.RehydrateTemplate(req.Template, req.Values, time.Now())
	c.JSON(http.StatusOK, result)
}

type buildTemplatePromptRequest struct {
	UserRequest  string `json:"user_request" binding:"required"`
	TemplateType string `json:"template_type" binding:"required"`
}

func (s *Server) handleBuildTemplatePrompt(c *gin.Context) {
	var req buildTemplatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	prompt := rehydrate.BuildTemplatePrompt(req.UserRequest, req.TemplateType)
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

func (s *Server) handleGetPlaceholderTypes(c *gin.Context) {
	c.JSON(http.StatusOK, rehydrate.GetPlaceholderTypes())
}
