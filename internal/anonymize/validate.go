// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package anonymize

import "strings"

// RiskLevel is the post-anonymization validation gate's classification
// (spec.md §4.2 "Validation").
type RiskLevel string

const (
	RiskSafe   RiskLevel = "safe"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Validation is the result of walking candidate text for residual PII
// patterns after anonymization.
type Validation struct {
	Risk          RiskLevel
	FoundPatterns []string
}

// IsAcceptableForRequired is the original's validate_strict: only Safe
// passes (spec.md §4.2 "strict accepts only safe").
func (v Validation) IsAcceptableForRequired() bool {
	return v.Risk == RiskSafe
}

// IsAcceptableForOptional is the original's validate_lenient: anything
// below High passes (spec.md §4.2 "lenient accepts anything < high").
func (v Validation) IsAcceptableForOptional() bool {
	return v.Risk != RiskHigh
}

const largeAmountThreshold = 10000

// Validate walks text for national-id, IBAN, phone, email, postcode, and
// very-large-amount patterns and classifies the worst tier found
// (spec.md §4.2's risk table: High = national-id/IBAN, Medium =
// phone/email, Low = postcode/very-large-amount, Safe = none).
func Validate(text string) Validation {
	var found []string
	risk := RiskSafe

	raise := func(level RiskLevel, name string) {
		found = append(found, name)
		if riskRank(level) > riskRank(risk) {
			risk = level
		}
	}

	if bsnPattern.MatchString(text) {
		raise(RiskHigh, "national_id")
	}
	if ibanPattern.MatchString(text) {
		raise(RiskHigh, "iban")
	}
	if phonePattern.MatchString(text) {
		raise(RiskMedium, "phone")
	}
	if emailPattern.MatchString(text) {
		raise(RiskMedium, "email")
	}
	if postcodePattern.MatchString(text) {
		raise(RiskLow, "postcode")
	}
	for _, match := range euroAmountPattern.FindAllString(text, -1) {
		if parseAmount(match) > largeAmountThreshold {
			raise(RiskLow, "large_amount")
			break
		}
	}

	return Validation{Risk: risk, FoundPatterns: found}
}

func riskRank(r RiskLevel) int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Deanonymize replaces each placeholder by its category tag rendering
// (e.g. "[NATIONAL_ID]"), never the plaintext — a diagnostic rendering
// only (spec.md §4.2 "De-anonymization (debug)"). Full re-hydration
// with real values is internal/rehydrate's job. Per DESIGN.md's Open
// Question 2 this has no caller from internal/transport/httpapi yet (no command
// surface entry exists for it), matching the original's unwired debug
// path.
func Deanonymize(text string, mappings []Mapping) string {
	out := text
	for _, m := range mappings {
		tag := "[" + strings.ToUpper(m.Category) + "]"
		out = strings.ReplaceAll(out, m.Placeholder, tag)
	}
	return out
}
