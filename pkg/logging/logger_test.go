// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.level.String())
	}
}

func TestLevelToSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.level.toSlogLevel())
	}
}

func TestNewDefaultConfig(t *testing.T) {
	logger := New(Config{Quiet: true})
	require.NotNil(t, logger)
	require.NotNil(t, logger.slog)
}

func TestNewWithService(t *testing.T) {
	logger := New(Config{Service: "test-service", Quiet: true})
	require.Equal(t, "test-service", logger.config.Service)
}

func TestNewWithJSON(t *testing.T) {
	logger := New(Config{JSON: true, Quiet: true})
	require.NotNil(t, logger)
}

func TestDefault(t *testing.T) {
	logger := Default()
	require.Equal(t, LevelInfo, logger.config.Level)
	require.Equal(t, "privacyrouter", logger.config.Service)
}

func TestLoggerLevelsDoNotPanic(t *testing.T) {
	logger := New(Config{Level: LevelDebug, Quiet: true})
	logger.Debug("debug", "k", "v")
	logger.Info("info", "k", "v")
	logger.Warn("warn", "k", "v")
	logger.Error("error", "k", "v")
}

func TestLoggerWith(t *testing.T) {
	logger := New(Config{Quiet: true})
	child := logger.With("request_id", "abc123")
	require.NotNil(t, child)
	require.NotSame(t, logger, child)
	child.Info("request started")
}

func TestLoggerSlog(t *testing.T) {
	logger := New(Config{Quiet: true})
	require.NotNil(t, logger.Slog())
}
