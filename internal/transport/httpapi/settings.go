// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetSetting(c *gin.Context) {
	key := c.Param("key")
	v, ok := s.settings.Load(key)
	if !ok {
		s.fail(c, http.StatusNotFound, errors.New("no setting for key "+key))
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
}

type setSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func (s *Server) handleSetSetting(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.settings.Store(req.Key, req.Value)
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": req.Value})
}
