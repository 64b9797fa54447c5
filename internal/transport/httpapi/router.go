// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package httpapi exposes spec.md §6's flat command surface as local gin
// HTTP endpoints, grounded on the teacher's services/orchestrator router
// setup trimmed to this narrower command set.
package httpapi

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/privacyrouter/core/internal/core"
)

// Server holds the gin engine and in-process state the command surface
// needs beyond Core (the settings table, whose schema spec.md §6 leaves
// free -- a key/value map is sufficient here).
type Server struct {
	core     *core.Core
	engine   *gin.Engine
	settings sync.Map // string -> string
}

// New builds a Server wired to core and registers every command surface
// route.
func New(c *core.Core) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("privacyrouter-core"))

	s := &Server{core: c, engine: engine}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying *gin.Engine for http.ListenAndServe.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) { c.Status(200) })

	settings := s.engine.Group("/settings")
	settings.GET("/:key", s.handleGetSetting)
	settings.POST("", s.handleSetSetting)

	anon := s.engine.Group("/anonymization")
	anon.POST("/anonymize", s.handleAnonymizeText)
	anon.POST("/validate", s.handleValidateAnonymization)

	inf := s.engine.Group("/inference")
	inf.GET("/available", s.handleIsAvailable)
	inf.POST("/generate", s.handleGenerate)
	inf.POST("/generate-json", s.handleGenerateJSON)
	inf.POST("/ensure-model", s.handleEnsureModel)
	inf.GET("/status", s.handleGetStatus)
	inf.GET("/download-progress/:id", s.handleGetDownloadProgress)
	inf.GET("/models", s.handleListModels)
	inf.POST("/active-model", s.handleSetActiveModel)
	inf.DELETE("/models/:id", s.handleDeleteModel)

	routing := s.engine.Group("/routing")
	routing.POST("/decide", s.handleMakeRoutingDecision)
	routing.POST("/validate-persona", s.handleValidatePersonaConfig)

	attrs := s.engine.Group("/attributes")
	attrs.POST("/extract", s.handleExtractTaxAttributes)
	attrs.POST("/privacy-safe-prompt", s.handleGeneratePrivacySafePrompt)
	attrs.POST("/process-chat", s.handleProcessChatWithPrivacy)

	rehydrate := s.engine.Group("/rehydrate")
	rehydrate.POST("/analyze", s.handleAnalyzeTemplate)
	rehydrate.POST("/template", s.handleRehydrateTemplate)
	rehydrate.POST("/build-prompt", s.handleBuildTemplatePrompt)
	rehydrate.GET("/placeholder-types", s.handleGetPlaceholderTypes)
}

// errorResponse is spec.md §6's "single-line human error string" wire
// shape.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	c.JSON(status, errorResponse{Error: err.Error()})
}
