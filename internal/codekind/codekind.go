// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package codekind defines the typed error-kind taxonomy used across the
// privacy router so callers can branch on failure class without parsing
// error strings.
package codekind

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure from the error handling design (§7).
type Kind string

const (
	ModelNotFound               Kind = "model-not-found"
	ModelFileMissing            Kind = "model-file-missing"
	DownloadFailed              Kind = "download-failed"
	ChecksumMismatch            Kind = "checksum-mismatch"
	ModelLoadFailed             Kind = "model-load-failed"
	InferenceFailed             Kind = "inference-failed"
	AnonymizationBelowThreshold Kind = "anonymization-below-threshold"
	AnonymizationRequiredFailed Kind = "anonymization-required-failed"
	PersonaConfigInvalid        Kind = "persona-config-invalid"
	CryptoInitFailed            Kind = "crypto-init-failed"
)

// Error wraps an underlying cause with a Kind so callers can use errors.As
// to recover it, and a single-line, PII-free message safe to surface to a
// UI host.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a plain message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Of reports the Kind of err, if err (or something it wraps) is a *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err's Kind equals kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}
