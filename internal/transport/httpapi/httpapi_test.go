// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/internal/core"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ModelsDir:           filepath.Join(dir, "models"),
		StoreDir:            filepath.Join(dir, "store"),
		SecretKeyPath:       filepath.Join(dir, "secret.key"),
		OllamaBaseURL:       "http://localhost:11434",
		ConfidenceThreshold: 0.7,
		DefaultPersona:      "direct",
		Personas: []config.Persona{
			{ID: "direct", PreferredBackend: config.BackendDirect, AnonymizationMode: config.AnonymizationNone},
			{ID: "hybrid-required", PreferredBackend: config.BackendHybrid, AnonymizationMode: config.AnonymizationRequired, EnableLocalAnon: true, LocalModelID: "qwen3-8b"},
		},
		Models: []config.ModelEntry{
			{ID: "qwen3-8b", Filename: "qwen3-8b.gguf", URL: "http://example.invalid/m.gguf", DeclaredBytes: 1, ContextWindow: 4096},
		},
	}
	c, err := core.New(cfg, nil, "")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return New(c)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/settings", setSettingRequest{Key: "theme", Value: "dark"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/settings/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "dark", got["value"])
}

func TestGetUnknownSettingReturns404(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/settings/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnonymizeAndValidate(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/anonymization/anonymize", anonymizeTextRequest{
		Text:           "Mijn BSN is 123456782",
		ConversationID: "conv-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AnonymizedText string       `json:"anonymized_text"`
		Mappings       []mappingDTO `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Mappings)

	rec = doJSON(t, s, http.MethodPost, "/anonymization/validate", validateAnonymizationRequest{Text: resp.AnonymizedText})
	require.Equal(t, http.StatusOK, rec.Code)
	var v struct {
		IsSafe bool `json:"is_safe"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.True(t, v.IsSafe)
}

func TestInferenceIsAvailable(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/inference/available", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutingDecisionForDirectPersona(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/routing/decide", makeRoutingDecisionRequest{PersonaID: "direct"})
	require.Equal(t, http.StatusOK, rec.Code)
	var decision struct {
		Backend string `json:"Backend"`
		IsSafe  bool   `json:"IsSafe"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	require.Equal(t, "direct", decision.Backend)
	require.True(t, decision.IsSafe)
}

func TestRoutingDecisionUnknownPersona(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/routing/decide", makeRoutingDecisionRequest{PersonaID: "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidatePersonaConfigRejectsRequiredWithoutLocalAnon(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/routing/validate-persona", validatePersonaConfigRequest{
		Persona: personaDTO{ID: "p", PreferredBackend: "hybrid", AnonymizationMode: "required"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)
}

func TestProcessChatWithPrivacyDirectPersonaIsSafeFullText(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/attributes/process-chat", processChatRequest{
		Text:           "Can I deduct my home office costs?",
		ConversationID: "conv-2",
		Persona:        personaDTO{ID: "direct", PreferredBackend: "direct", AnonymizationMode: "none"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out preparedRequestDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, out.IsSafe)
	require.Equal(t, "full_text", out.ContentMode)
	require.Contains(t, out.Prompt, "home office")
}

func TestProcessChatWithPrivacyHybridRequiredUnavailableIsBlocked(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/attributes/process-chat", processChatRequest{
		Text:           "Can I deduct my home office costs?",
		ConversationID: "conv-3",
		Persona:        personaDTO{ID: "hybrid-required", PreferredBackend: "hybrid", AnonymizationMode: "required", EnableLocalAnon: true, LocalModelID: "qwen3-8b"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out preparedRequestDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.False(t, out.IsSafe)
	require.Empty(t, out.Prompt)
}

func TestGeneratePrivacySafePrompt(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/attributes/privacy-safe-prompt", map[string]any{
		"attrs":    map[string]string{"income_bracket": "40k_to_70k"},
		"question": "What can I deduct?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Prompt string `json:"prompt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Prompt, "What can I deduct?")
}

func TestRehydratePlaceholderTypes(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/rehydrate/placeholder-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	require.NotEmpty(t, types)
}

func TestBuildTemplatePrompt(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/rehydrate/build-prompt", buildTemplatePromptRequest{
		UserRequest:  "write a letter to my accountant",
		TemplateType: "accountant_letter",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}
