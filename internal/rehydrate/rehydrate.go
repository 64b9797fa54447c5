// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rehydrate

import (
	"regexp"
	"strings"
	"time"
)

var placeholderToken = regexp.MustCompile(`\[([A-Z_]+)\]`)

// PlaceholderOccurrence is one `[TOKEN]` found in a template.
type PlaceholderOccurrence struct {
	Text      string // including brackets, e.g. "[BSN]"
	Name      string // without brackets, e.g. "BSN"
	Position  int
	Known     bool
	HasValue  bool
}

// TemplateAnalysis is the result of analyzing a template against a
// PIIValues record (spec.md §4.5 "Template analysis").
type TemplateAnalysis struct {
	Placeholders    []PlaceholderOccurrence
	CanFullyHydrate bool
	MissingValues   []string
}

// AnalyzeTemplate scans template for `[A-Z_]+` bracketed tokens and
// classifies each as known/custom and has_value. now is not consulted:
// dynamic placeholders always count as having a value.
func AnalyzeTemplate(template string, values PIIValues, now time.Time) TemplateAnalysis {
	matches := placeholderToken.FindAllStringSubmatchIndex(template, -1)
	var occurrences []PlaceholderOccurrence
	missing := map[string]bool{}

	for _, m := range matches {
		name := template[m[2]:m[3]]
		known := IsKnown(name)
		hasValue := IsDynamicPlaceholder(name)
		if !hasValue {
			_, hasValue = values.valueFor(name)
		}
		occurrences = append(occurrences, PlaceholderOccurrence{
			Text:     template[m[0]:m[1]],
			Name:     name,
			Position: m[0],
			Known:    known,
			HasValue: hasValue,
		})
		if !hasValue {
			missing[name] = true
		}
	}

	missingList := make([]string, 0, len(missing))
	for name := range missing {
		missingList = append(missingList, name)
	}

	return TemplateAnalysis{
		Placeholders:    occurrences,
		CanFullyHydrate: len(missingList) == 0,
		MissingValues:   missingList,
	}
}

// FilledPlaceholder records one substitution made during rehydration,
// carrying a masked rendering for audit/UI display (spec.md §4.5
// "Rehydration").
type FilledPlaceholder struct {
	Placeholder string
	MaskedValue string
	IsSensitive bool
}

// Result is the outcome of RehydrateTemplate.
type Result struct {
	Content              string
	FilledPlaceholders   []FilledPlaceholder
	UnfilledPlaceholders []string
	IsComplete           bool
}

var sensitivePlaceholders = map[string]bool{
	BSN: true, TAX_NUMBER: true, IBAN: true, BANK_ACCOUNT: true,
	INCOME: true, SALARY: true, DATE_OF_BIRTH: true,
}

// RehydrateTemplate walks template's placeholders in order, substituting
// each known/dynamic/custom value and logging a masked FilledPlaceholder,
// then collects the deduplicated list of unfilled placeholders.
// RehydrateTemplate is deterministic for fixed (template, values, now)
// inputs (Mapping-Idempotent, spec.md §8).
func RehydrateTemplate(template string, values PIIValues, now time.Time) Result {
	var filled []FilledPlaceholder
	unfilled := map[string]bool{}

	content := placeholderToken.ReplaceAllStringFunc(template, func(token string) string {
		name := strings.Trim(token, "[]")

		if dynVal, ok := dynamicValue(name, now); ok {
			filled = append(filled, FilledPlaceholder{Placeholder: name, MaskedValue: maskValue(dynVal, name), IsSensitive: false})
			return dynVal
		}

		if val, ok := values.valueFor(name); ok {
			filled = append(filled, FilledPlaceholder{
				Placeholder: name,
				MaskedValue: maskValue(val, name),
				IsSensitive: sensitivePlaceholders[name],
			})
			return val
		}

		if values.Custom != nil {
			if val, ok := values.Custom[name]; ok && val != "" {
				filled = append(filled, FilledPlaceholder{Placeholder: name, MaskedValue: maskValue(val, name), IsSensitive: false})
				return val
			}
		}

		unfilled[name] = true
		return token
	})

	unfilledList := make([]string, 0, len(unfilled))
	for name := range unfilled {
		unfilledList = append(unfilledList, name)
	}

	return Result{
		Content:              content,
		FilledPlaceholders:   filled,
		UnfilledPlaceholders: unfilledList,
		IsComplete:           len(unfilledList) == 0,
	}
}

// GetPlaceholderTypes exposes the closed registry (spec.md §6).
func GetPlaceholderTypes() []PlaceholderInfo {
	return Placeholders
}
