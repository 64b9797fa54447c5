// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAvailableTrueWhenTagsEndpointOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3-8b", 10)
	require.True(t, c.IsAvailable())
}

func TestIsAvailableFalseWhenUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "qwen3-8b", 10)
	require.False(t, c.IsAvailable())
}

func TestGenerateSendsExpectedPayload(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "hello back", Done: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3-8b", 10)
	out, err := c.Generate(context.Background(), "hi there")
	require.NoError(t, err)
	require.Equal(t, "hello back", out)
	require.Equal(t, "qwen3-8b", captured.Model)
	require.Equal(t, "hi there", captured.Prompt)
	require.InDelta(t, 0.7, captured.Options.Temperature, 0.001)
}

func TestGenerateJSONSetsFormatAndLowTemperature(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: `{"ok":true}`, Done: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3-8b", 10)
	out, err := c.GenerateJSON(context.Background(), "extract attrs")
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, out)
	require.Equal(t, "json", captured.Format)
	require.InDelta(t, 0.1, captured.Options.Temperature, 0.001)
}

func TestGenerateWrapsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3-8b", 10)
	_, err := c.Generate(context.Background(), "hi")
	require.Error(t, err)
}
