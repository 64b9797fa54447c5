// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llamacpp

import "bytes"

// windowSize and requiredRepeats are spec.md §4.1 step 7's repetition
// guard: "Maintain a sliding tail of the last 40 output bytes. After ≥80
// bytes exist, compare the last 40 against the preceding 40; when three
// consecutive windows repeat identically, truncate off the repetitive tail
// and stop." Three consecutive 40-byte windows require 120 bytes of
// output to exist at all, so 80 bytes can never trigger the guard.
const (
	windowSize      = 40
	requiredRepeats = 3
)

// repetitionGuard is stateless: each feed call re-examines the trailing
// requiredRepeats*windowSize bytes of the accumulated output.
type repetitionGuard struct{}

func newRepetitionGuard() *repetitionGuard { return &repetitionGuard{} }

// feed returns (truncated, true) when the last requiredRepeats
// non-overlapping windows of windowSize bytes are all byte-identical, with
// the repeated tail (all but the first matching window) removed.
func (g *repetitionGuard) feed(out []byte) ([]byte, bool) {
	needed := requiredRepeats * windowSize
	if len(out) < needed {
		return out, false
	}
	base := out[len(out)-needed : len(out)-needed+windowSize]
	for i := 1; i < requiredRepeats; i++ {
		start := len(out) - needed + i*windowSize
		if !bytes.Equal(out[start:start+windowSize], base) {
			return out, false
		}
	}
	return out[:len(out)-needed+windowSize], true
}
