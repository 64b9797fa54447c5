// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/internal/core"
	"github.com/privacyrouter/core/internal/inference"
	"github.com/privacyrouter/core/internal/transport/httpapi"
	"github.com/privacyrouter/core/pkg/logging"
)

// runServe constructs one core.Core, starts the HTTP command surface and
// the local-model warm-up background task, and blocks until an interrupt
// or terminate signal arrives, per SPEC_FULL.md §11 "a long-running
// daemon command ... that constructs one core.Core, starts the HTTP
// command surface and the inference warm-up background task".
func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	shutdownTracing, err := setupTracing(cmd.Context())
	if err != nil {
		log.Warn("tracing setup failed, continuing without spans", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	apiKeyEnv, _ := cmd.Flags().GetString("cloud-api-key-env")
	c, err := core.New(cfg, log, os.Getenv(apiKeyEnv))
	if err != nil {
		return err
	}
	defer c.Close()

	if localHost, ok := c.Inference.(*inference.LocalHost); ok {
		inference.StartWarmup(cmd.Context(), localHost, log)
	}

	server := httpapi.New(c)
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Engine()}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", "error", err)
	}
	return nil
}

func newLogger() *logging.Logger {
	var level logging.Level
	switch logLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	default:
		level = logging.LevelInfo
	}
	return logging.New(logging.Config{Level: level, Service: "routerd"})
}
