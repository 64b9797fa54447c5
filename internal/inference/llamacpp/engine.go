// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llamacpp implements the embedded-GGUF model host contract:
// tokenization, prefill batching, sampling, the repetition guard, and
// JSON-object extraction (spec.md §4.1 "Generation"), against an injectable
// NativeModel so the lifecycle and sampling logic is testable without a
// real GGUF runtime linked in. Production wiring supplies a NativeModel
// backed by a cgo llama.cpp binding; that binding is out of this module's
// scope (no such dependency appears anywhere in the retrieval pack).
package llamacpp

import (
	"context"
	"strings"
	"sync"

	"github.com/privacyrouter/core/internal/codekind"
)

// prefillBatchSize is spec.md §4.1's "prompt-prefill batch size B = 256".
const prefillBatchSize = 256

// maxSampleTokens is spec.md §4.1's hard cap on sampled tokens.
const maxSampleTokens = 512

// reservedContextTail is spec.md §4.1's "context_window − 64" trim margin.
const reservedContextTail = 64

// SampleParams is the sampler configuration for one generation call.
type SampleParams struct {
	Temperature float64
	TopP        float64 // 0 disables top-p
	Seed        uint64
}

// JSONSampleParams and FreeSampleParams are spec.md §4.1 step 5's two fixed
// sampler configurations.
var (
	JSONSampleParams = SampleParams{Temperature: 0.1, Seed: 42}
	FreeSampleParams = SampleParams{Temperature: 0.7, TopP: 0.9, Seed: 1234}
)

// NativeModel is the minimal surface a concrete GGUF runtime must provide.
// Implementations are expected to hold native (non-GC'd) memory and must
// not be called concurrently; Engine serializes access to the active
// NativeModel via its own mutex.
type NativeModel interface {
	// ContextWindow returns the model's configured context length.
	ContextWindow() int
	// Tokenize converts text to token ids, prefixing a beginning-of-stream
	// marker when addBOS is true.
	Tokenize(text string, addBOS bool) []int32
	// Prefill decodes a batch of prompt tokens. requestLogits marks
	// whether the final token's logits should be retained for sampling.
	Prefill(ctx context.Context, tokens []int32, requestLogits bool) error
	// SampleNext draws the next token given params, feeding it back into
	// the model's repetition-penalty state as a side effect.
	SampleNext(ctx context.Context, params SampleParams) (token int32, eos bool, err error)
	// DecodeToken renders a single token id to its UTF-8 byte fragment.
	DecodeToken(token int32) []byte
}

// ModelFactory constructs a NativeModel for a given model file path.
// Production code supplies the real GGUF loader; tests supply a fake.
type ModelFactory func(ctx context.Context, path string) (NativeModel, error)

// Engine implements inference.NativeBackend by driving a NativeModel
// through spec.md §4.1's tokenize/prefill/sample/repetition-guard loop.
type Engine struct {
	factory ModelFactory
	threads int

	mu     sync.Mutex
	active NativeModel

	// genMu serializes generate calls so the active NativeModel is never
	// driven concurrently.
	genMu sync.Mutex
}

// NewEngine builds an Engine. threads is clamped to spec.md §4.1's
// "CPU thread count = min(available, 4)" at construction time by the
// caller; Engine itself does not probe runtime.NumCPU to stay host-agnostic
// for tests.
func NewEngine(factory ModelFactory, threads int) *Engine {
	return &Engine{factory: factory, threads: threads}
}

func (e *Engine) LoadModel(ctx context.Context, id string, path string) error {
	model, err := e.factory(ctx, path)
	if err != nil {
		return codekind.Wrap(codekind.ModelLoadFailed, id, err)
	}
	e.mu.Lock()
	e.active = model
	e.mu.Unlock()
	return nil
}

func (e *Engine) Unload() {
	e.mu.Lock()
	e.active = nil
	e.mu.Unlock()
}

func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	return e.generate(ctx, prompt, FreeSampleParams, false)
}

func (e *Engine) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return e.generate(ctx, prompt, JSONSampleParams, true)
}

func (e *Engine) generate(ctx context.Context, prompt string, params SampleParams, jsonMode bool) (string, error) {
	e.genMu.Lock()
	defer e.genMu.Unlock()

	e.mu.Lock()
	model := e.active
	e.mu.Unlock()
	if model == nil {
		return "", codekind.New(codekind.InferenceFailed, "no model loaded")
	}

	ctxWindow := model.ContextWindow()
	tokens := model.Tokenize(prompt, true)
	if maxPrompt := ctxWindow - reservedContextTail; len(tokens) > maxPrompt {
		tokens = tokens[len(tokens)-maxPrompt:] // retain the suffix
	}
	if len(tokens) == 0 {
		return "", codekind.New(codekind.InferenceFailed, "empty prompt after trimming")
	}

	for start := 0; start < len(tokens); start += prefillBatchSize {
		end := start + prefillBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		isLastChunk := end == len(tokens)
		if err := model.Prefill(ctx, tokens[start:end], isLastChunk); err != nil {
			return "", codekind.Wrap(codekind.InferenceFailed, "prefill", err)
		}
	}

	budget := ctxWindow - len(tokens)
	if budget > maxSampleTokens {
		budget = maxSampleTokens
	}
	if budget <= 0 {
		return "", nil
	}

	var out []byte
	guard := newRepetitionGuard()
	for i := 0; i < budget; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, eos, err := model.SampleNext(ctx, params)
		if err != nil {
			return "", codekind.Wrap(codekind.InferenceFailed, "sample", err)
		}
		if eos {
			break
		}
		out = append(out, model.DecodeToken(tok)...)
		if truncated, stop := guard.feed(out); stop {
			out = truncated
			break
		}
	}

	text := strings.ToValidUTF8(string(out), "�") // lossy decode of invalid byte sequences
	if jsonMode {
		if obj, ok := ExtractJSONObject(text); ok {
			return obj, nil
		}
	}
	return text, nil
}
