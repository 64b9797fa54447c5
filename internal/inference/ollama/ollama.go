// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ollama implements the FORCE_EXTERNAL_INFERENCE backend: a client
// for a local HTTP inference daemon, used instead of the embedded
// llamacpp.Engine when the operator opts into running models out-of-process
// (spec.md §6 "Environment variables").
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/privacyrouter/core/internal/codekind"
)

// availabilityProbeTimeout is spec.md §5's "Availability probe timeout: 5s".
const availabilityProbeTimeout = 5 * time.Second

// Client talks to a local daemon's HTTP API (liveness via GET /api/tags,
// generation via POST /api/generate), matching the shape the teacher's own
// local-inference HTTP clients use. Calls are rate-limited so a burst of
// concurrent requests cannot overwhelm a single-process local daemon.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client against baseURL (e.g. "http://localhost:11434")
// using model as the default generation model, rate-limiting calls to the
// daemon to requestsPerSecond per second (burst 1). The number of calls
// in flight at once is not bounded.
func NewClient(baseURL, model string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// IsAvailable reports whether the daemon is reachable within
// availabilityProbeTimeout.
func (c *Client) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), availabilityProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
	Options struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"top_p,omitempty"`
		Seed        int64   `json:"seed"`
	} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *Client) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "rate limit wait", err)
	}

	reqBody := generateRequest{Model: c.model, Prompt: prompt, Stream: false}
	if jsonMode {
		reqBody.Format = "json"
		reqBody.Options.Temperature = 0.1
		reqBody.Options.Seed = 42
	} else {
		reqBody.Options.Temperature = 0.7
		reqBody.Options.TopP = 0.9
		reqBody.Options.Seed = 1234
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "daemon request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "read daemon response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", codekind.New(codekind.InferenceFailed, fmt.Sprintf("daemon returned %s", resp.Status))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "decode daemon response", err)
	}
	return out.Response, nil
}

// Generate requests free-form text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, false)
}

// GenerateJSON requests JSON-mode output.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, true)
}
