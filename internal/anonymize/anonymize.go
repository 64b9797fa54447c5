// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package anonymize implements the Anonymization Engine (spec.md §4.2):
// a two-pass PII detection pipeline (structured local-model extraction
// plus a deterministic regex backstop), placeholder minting, mapping
// recording, and post-anonymization risk validation.
//
// Exact regex grammars are carried over from
// original_source/apps/desktop/src-tauri/src/anonymization.rs per
// SPEC_FULL.md §13, since spec.md §4.2 describes the patterns only at a
// level of generality ("9 digits optionally separated...").
package anonymize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/privacyrouter/core/internal/cryptobound"
	"github.com/privacyrouter/core/pkg/logging"
)

// DefaultConfidenceThreshold is the structured pass's acceptance floor
// (spec.md §4.2, "default 0.7; configurable per service instance").
const DefaultConfidenceThreshold = 0.7

// Category tags. Pass-1 categories match spec.md §4.2's fixed order;
// regex categories carry a "_regex" suffix per spec.md §4.2 Pass 2.
const (
	CategoryNationalID = "national_id"
	CategoryGivenName  = "given_name"
	CategorySurname    = "surname"
	CategoryPhone      = "phone"
	CategoryAddress    = "address"
	CategoryEmail      = "email"
	CategoryIncome     = "income"

	CategoryNationalIDRegex = "national_id_regex"
	CategoryIBANRegex       = "iban_regex"
	CategoryAmountRegex     = "amount_regex"
)

// pass1Order is the fixed category order of spec.md §4.2 Pass 1.
var pass1Order = []string{
	CategoryNationalID,
	CategoryGivenName,
	CategorySurname,
	CategoryPhone,
	CategoryAddress,
	CategoryEmail,
	CategoryIncome,
}

// Field is one optional extracted value with its confidence, from the
// local-model structured pass (spec.md §3 PIIExtraction).
type Field struct {
	Value      string
	Confidence float64
}

// Extraction is PIIExtraction: a record of optional fields per
// recognized category, each with a confidence score in [0, 1].
type Extraction struct {
	Fields map[string]Field
}

func (e Extraction) field(category string) (Field, bool) {
	f, ok := e.Fields[category]
	if !ok || f.Value == "" {
		return Field{}, false
	}
	return f, true
}

// Mapping mirrors spec.md §3's PiiMapping shape, decoupled from the
// storage layer's Mapping type so this package has no dependency on
// internal/store.
type Mapping struct {
	ID             string
	ConversationID string
	Category       string
	Placeholder    string
	Ciphertext     []byte
	Encrypted      bool
}

// Regex patterns, carried verbatim in semantics from
// original_source/anonymization.rs.
var (
	bsnPattern      = regexp.MustCompile(`\b\d{3}[\s.-]?\d{3}[\s.-]?\d{3}\b`)
	ibanPattern     = regexp.MustCompile(`\bNL\s?\d{2}\s?[A-Z]{4}\s?\d{4}\s?\d{4}\s?\d{2}\b`)
	phonePattern    = regexp.MustCompile(`(?:\+|00)31\s?[1-9][\s-]?\d{8}|0\s?[1-9][\s-]?\d{8}|06[\s-]?\d{8}`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	postcodePattern = regexp.MustCompile(`\b\d{4}\s?[A-Z]{2}\b`)
	euroAmountPattern = regexp.MustCompile(
		`€\s?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?|\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?\s?(?:euro|EUR)`)
)

// Engine runs the two-pass pipeline. A nil Cipher is permitted: mappings
// are recorded with Encrypted=false and an empty (nil) Ciphertext, a
// fail-loud non-production mode per spec.md §4.2 ("left as empty bytes
// in a non-production mode with encrypted=false explicitly recorded").
type Engine struct {
	threshold float64
	cipher    *cryptobound.Cipher
	log       *logging.Logger
}

// New constructs an Engine. Compiling the package-level regexes happens
// at init time and panics on failure (spec.md §5 "Fail-fast critical
// initializers ... anonymization regex-pattern compiler are fatal on
// failure"); New itself cannot fail.
func New(threshold float64, cipher *cryptobound.Cipher, log *logging.Logger) *Engine {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Engine{threshold: threshold, cipher: cipher, log: log}
}

// Anonymize runs Pass 1 (structured) then Pass 2 (regex backstop)
// against text, returning the anonymized text and the new mappings it
// produced for conversationID.
func (e *Engine) Anonymize(text, conversationID string, extraction Extraction) (string, []Mapping, error) {
	working := text
	var mappings []Mapping

	for _, category := range pass1Order {
		field, ok := extraction.field(category)
		if !ok {
			continue
		}
		if field.Confidence < e.threshold {
			if e.log != nil {
				e.log.Debug("anonymization field below confidence threshold",
					"category", category, "confidence", field.Confidence, "threshold", e.threshold)
			}
			continue
		}
		if !strings.Contains(working, field.Value) {
			continue
		}
		m, err := e.mint(conversationID, category, field.Value)
		if err != nil {
			return "", nil, err
		}
		working = strings.ReplaceAll(working, field.Value, m.Placeholder)
		mappings = append(mappings, m)
	}

	regexMappings, working2, err := e.regexBackstop(working, conversationID)
	if err != nil {
		return "", nil, err
	}
	working = working2
	mappings = append(mappings, regexMappings...)

	return working, mappings, nil
}

// regexBackstop is spec.md §4.2 Pass 2: national-id, IBAN, and
// over-threshold euro-amount patterns run against the already-anonymized
// text, each non-overlapping match spawning a "_regex"-suffixed mapping.
func (e *Engine) regexBackstop(text, conversationID string) ([]Mapping, string, error) {
	var mappings []Mapping
	working := text

	replaceAll := func(re *regexp.Regexp, category string, accept func(match string) bool) error {
		offset := 0
		for {
			loc := re.FindStringIndex(working[offset:])
			if loc == nil {
				return nil
			}
			start, end := offset+loc[0], offset+loc[1]
			match := working[start:end]
			if accept != nil && !accept(match) {
				// Leave the rejected match in place and scan on past it.
				offset = end
				continue
			}
			m, err := e.mint(conversationID, category, match)
			if err != nil {
				return err
			}
			working = working[:start] + m.Placeholder + working[end:]
			offset = start + len(m.Placeholder)
			mappings = append(mappings, m)
		}
	}

	if err := replaceAll(bsnPattern, CategoryNationalIDRegex, nil); err != nil {
		return nil, "", err
	}
	if err := replaceAll(ibanPattern, CategoryIBANRegex, nil); err != nil {
		return nil, "", err
	}
	if err := replaceAll(euroAmountPattern, CategoryAmountRegex, func(match string) bool {
		return parseAmount(match) > 1000
	}); err != nil {
		return nil, "", err
	}

	return mappings, working, nil
}

func (e *Engine) mint(conversationID, category, value string) (Mapping, error) {
	placeholder := fmt.Sprintf("[PLACEHOLDER_%s_%s]", strings.ToUpper(category), uuid.NewString())
	m := Mapping{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Category:       category,
		Placeholder:    placeholder,
	}
	if e.cipher != nil {
		ct, err := e.cipher.Encrypt([]byte(value))
		if err != nil {
			return Mapping{}, fmt.Errorf("encrypt mapping value: %w", err)
		}
		m.Ciphertext = ct
		m.Encrypted = true
	} else {
		m.Ciphertext = nil
		m.Encrypted = false
	}
	return m, nil
}

// parseAmount extracts the integer magnitude of a matched euro-amount
// string so Pass 2's "only when the parsed integer magnitude exceeds
// 1000" rule can be applied. euroAmountPattern's own structure resolves
// the ambiguity between thousands-grouping and a decimal/cents tail:
// groups of exactly 3 digits after a separator are thousands groups,
// while a final group of exactly 2 digits is a cents tail and is
// dropped from the integer magnitude.
func parseAmount(match string) int64 {
	numeric := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9' || r == '.' || r == ',':
			return r
		default:
			return -1
		}
	}, match)
	groups := strings.FieldsFunc(numeric, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) == 0 {
		return 0
	}
	if len(groups) > 1 && len(groups[len(groups)-1]) == 2 {
		groups = groups[:len(groups)-1]
	}
	n, err := strconv.ParseInt(strings.Join(groups, ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
