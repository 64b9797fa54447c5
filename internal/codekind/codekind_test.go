// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package codekind

import (
	"errors"
	"fmt"
	"testing"
)

func TestOfUnwraps(t *testing.T) {
	base := errors.New("disk full")
	err := Wrap(DownloadFailed, "qwen3-8b", base)
	wrapped := fmt.Errorf("download: %w", err)

	kind, ok := Of(wrapped)
	if !ok || kind != DownloadFailed {
		t.Fatalf("Of() = %v, %v, want %v, true", kind, ok, DownloadFailed)
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("expected wrapped error chain to reach base cause")
	}
}

func TestIs(t *testing.T) {
	err := New(ModelNotFound, "qwen3-99b")
	if !Is(err, ModelNotFound) {
		t.Fatal("expected Is to match ModelNotFound")
	}
	if Is(err, ModelLoadFailed) {
		t.Fatal("expected Is to reject ModelLoadFailed")
	}
	if Is(errors.New("plain"), ModelNotFound) {
		t.Fatal("expected Is to reject a non-codekind error")
	}
}

func TestErrorMessageHasNoNewlines(t *testing.T) {
	err := Wrap(InferenceFailed, "sampler rejected token", errors.New("native panic"))
	for _, r := range err.Error() {
		if r == '\n' {
			t.Fatal("error message must be single-line")
		}
	}
}
