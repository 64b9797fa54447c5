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

	"github.com/privacyrouter/core/internal/inference"
)

func (s *Server) handleIsAvailable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"is_available": s.core.Inference.IsAvailable()})
}

type generateRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	ModelID string `json:"model_id"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	out, err := s.core.Inference.Generate(c.Request.Context(), req.Prompt, req.ModelID)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": out})
}

type generateJSONRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (s *Server) handleGenerateJSON(c *gin.Context) {
	var req generateJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	out, err := s.core.Inference.GenerateJSON(c.Request.Context(), req.Prompt)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": out})
}

type ensureModelRequest struct {
	ID string `json:"id" binding:"required"`
}

func (s *Server) handleEnsureModel(c *gin.Context) {
	var req ensureModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.core.Inference.EnsureModel(c.Request.Context(), req.ID); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleGetStatus(c *gin.Context) {
	st := s.core.Inference.Status()
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleGetDownloadProgress(c *gin.Context) {
	id := c.Param("id")
	st := s.core.Inference.Status()
	c.JSON(http.StatusOK, gin.H{"id": id, "percent": st.DownloadProgress[id]})
}

func (s *Server) handleListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"model_ids": s.core.Inference.Status().AvailableModelIDs})
}

func (s *Server) handleSetActiveModel(c *gin.Context) {
	var req ensureModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	host, ok := s.core.Inference.(*inference.LocalHost)
	if !ok {
		s.fail(c, http.StatusConflict, errUnsupportedByExternalDaemon)
		return
	}
	if err := host.SetActiveModel(c.Request.Context(), req.ID); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleDeleteModel(c *gin.Context) {
	id := c.Param("id")
	host, ok := s.core.Inference.(*inference.LocalHost)
	if !ok {
		s.fail(c, http.StatusConflict, errUnsupportedByExternalDaemon)
		return
	}
	if err := host.DeleteModel(id); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
