// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/privacyrouter/core/internal/codekind"
)

// CloudAdapter implements the opaque text-in/text-out cloud endpoint
// spec.md §6 "Wire protocols" describes, against an OpenAI-compatible chat
// completions API. It is the backend chosen by internal/router's Decision
// for config.BackendDirect and the direct-fallback rows of the decision
// table.
type CloudAdapter struct {
	client *openai.Client
	model  string
}

// NewCloudAdapter builds a CloudAdapter. baseURL may be empty to use the
// library's default (api.openai.com); it is exposed so the adapter can also
// target an OpenAI-compatible gateway.
func NewCloudAdapter(apiKey, baseURL, model string) *CloudAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &CloudAdapter{client: openai.NewClientWithConfig(cfg), model: model}
}

// Generate sends prompt as a single user message and returns the first
// choice's content. Cloud request timeout is caller-supplied via ctx
// (spec.md §5 "Cloud request timeout: caller-supplied, not core concern").
func (c *CloudAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", codekind.Wrap(codekind.InferenceFailed, "cloud generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", codekind.New(codekind.InferenceFailed, "cloud generate: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
