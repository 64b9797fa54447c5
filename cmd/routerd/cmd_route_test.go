// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := `
default_persona: direct
store_dir: ` + filepath.Join(dir, "store") + `
secret_key_path: ` + filepath.Join(dir, "secret.key") + `
personas:
  - id: direct
    preferred_backend: direct
    anonymization_mode: none
models: []
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestRunRouteUnknownPersona(t *testing.T) {
	configPath = writeTestConfig(t)
	err := runRoute(&cobra.Command{}, []string{"nope"})
	require.Error(t, err)
}

func TestRunRouteKnownPersonaSucceeds(t *testing.T) {
	configPath = writeTestConfig(t)
	cmd := &cobra.Command{}
	err := runRoute(cmd, []string{"direct"})
	require.NoError(t, err)
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	logLevel = ""
	log := newLogger()
	require.NotNil(t, log)
	require.True(t, log.Slog().Enabled(context.Background(), slog.LevelInfo))
	require.False(t, log.Slog().Enabled(context.Background(), slog.LevelDebug))
}
