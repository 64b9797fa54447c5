// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package attributes implements the Attribute Extractor (spec.md §4.4):
// a closed-vocabulary TaxAttributes record produced by prompting the
// local model with a strict JSON schema, grounded on
// original_source/apps/desktop/src-tauri/src/attribute_extraction.rs for
// the enum vocabularies and prompt shape.
package attributes

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/privacyrouter/core/pkg/logging"
)

type IncomeBracket string

const (
	IncomeBelow20k     IncomeBracket = "below_20k"
	Income20kTo40k     IncomeBracket = "20k_to_40k"
	Income40kTo70k     IncomeBracket = "40k_to_70k"
	Income70kTo100k    IncomeBracket = "70k_to_100k"
	IncomeAbove100k    IncomeBracket = "above_100k"
	IncomeUnknown      IncomeBracket = "unknown"
)

var incomeBrackets = []IncomeBracket{IncomeBelow20k, Income20kTo40k, Income40kTo70k, Income70kTo100k, IncomeAbove100k, IncomeUnknown}

type EmploymentType string

const (
	EmploymentEmployee    EmploymentType = "employee"
	EmploymentFreelancer  EmploymentType = "freelancer"
	EmploymentEntrepreneur EmploymentType = "entrepreneur"
	EmploymentDirector    EmploymentType = "director"
	EmploymentRetired     EmploymentType = "retired"
	EmploymentStudent     EmploymentType = "student"
	EmploymentUnemployed  EmploymentType = "unemployed"
	EmploymentMixed       EmploymentType = "mixed"
	EmploymentUnknown     EmploymentType = "unknown"
)

var employmentTypes = []EmploymentType{
	EmploymentEmployee, EmploymentFreelancer, EmploymentEntrepreneur, EmploymentDirector,
	EmploymentRetired, EmploymentStudent, EmploymentUnemployed, EmploymentMixed, EmploymentUnknown,
}

type HousingSituation string

const (
	HousingOwner          HousingSituation = "owner"
	HousingRenter         HousingSituation = "renter"
	HousingLivingWithParents HousingSituation = "living_with_parents"
	HousingSocial         HousingSituation = "social_housing"
	HousingUnknown        HousingSituation = "unknown"
)

var housingSituations = []HousingSituation{HousingOwner, HousingRenter, HousingLivingWithParents, HousingSocial, HousingUnknown}

type FilingStatus string

const (
	FilingSingle             FilingStatus = "single"
	FilingMarried            FilingStatus = "married"
	FilingRegisteredPartner  FilingStatus = "registered_partner"
	FilingCohabiting         FilingStatus = "cohabiting"
	FilingDivorced           FilingStatus = "divorced"
	FilingWidowed            FilingStatus = "widowed"
	FilingUnknown            FilingStatus = "unknown"
)

var filingStatuses = []FilingStatus{FilingSingle, FilingMarried, FilingRegisteredPartner, FilingCohabiting, FilingDivorced, FilingWidowed, FilingUnknown}

// TaxAttributes is spec.md §3's transient, categorical-only record. No
// free-form strings, no numeric values outside declared bucket
// vocabularies.
type TaxAttributes struct {
	IncomeBracket              IncomeBracket    `json:"income_bracket"`
	EmploymentType             EmploymentType   `json:"employment_type"`
	HasMultipleEmployers       bool             `json:"has_multiple_employers"`
	ReceivesBenefits           bool             `json:"receives_benefits"`
	HousingSituation           HousingSituation `json:"housing_situation"`
	HasMortgage                bool             `json:"has_mortgage"`
	HasSavingsAboveThreshold   bool             `json:"has_savings_above_threshold"`
	HasInvestments             bool             `json:"has_investments"`
	FilingStatus               FilingStatus     `json:"filing_status"`
	HasDependents              bool             `json:"has_dependents"`
	HasFiscalPartner           bool             `json:"has_fiscal_partner"`
	Has30PercentRuling         bool             `json:"has_30_percent_ruling"`
	IsEntrepreneur             bool             `json:"is_entrepreneur"`
	HasForeignIncome           bool             `json:"has_foreign_income"`
	HasCryptoAssets            bool             `json:"has_crypto_assets"`
	RelevantBoxes              []string         `json:"relevant_boxes"`
	DeductionCategories        []string         `json:"deduction_categories"`
}

// defaultAttributes is the empty/default record returned on parse
// failure (spec.md §4.4 "Parse failure returns an empty TaxAttributes
// (default) and logs a warning -- never throws").
func defaultAttributes() TaxAttributes {
	return TaxAttributes{
		IncomeBracket:    IncomeUnknown,
		EmploymentType:   EmploymentUnknown,
		HousingSituation: HousingUnknown,
		FilingStatus:     FilingUnknown,
	}
}

// LocalGenerator is the narrow subset of the Local Inference Host
// contract this package needs (spec.md §4.1's generate_json).
type LocalGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Extractor converts free-form text into a TaxAttributes record.
type Extractor struct {
	gen LocalGenerator
	log *logging.Logger
}

func New(gen LocalGenerator, log *logging.Logger) *Extractor {
	return &Extractor{gen: gen, log: log}
}

// Extract prompts the local model for a strict JSON TaxAttributes
// object and parses the response. It never returns an error to the
// caller for a malformed model response; it logs and falls back to
// defaults instead (spec.md §4.4).
func (ex *Extractor) Extract(ctx context.Context, text string) (TaxAttributes, error) {
	prompt := buildExtractionPrompt(text)
	raw, err := ex.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return TaxAttributes{}, err
	}

	var attrs TaxAttributes
	if jsonErr := json.Unmarshal([]byte(raw), &attrs); jsonErr != nil {
		if ex.log != nil {
			ex.log.Warn("tax attribute extraction produced unparseable JSON, using defaults", "error", jsonErr)
		}
		return defaultAttributes(), nil
	}
	normalize(&attrs)
	return attrs, nil
}

// normalize replaces any field whose value is outside its declared
// vocabulary with "unknown", since the model is prompted but not
// schema-constrained (SPEC_FULL.md §9 open question: "Left as a future
// hardening opportunity").
func normalize(a *TaxAttributes) {
	if !contains(incomeBrackets, a.IncomeBracket) {
		a.IncomeBracket = IncomeUnknown
	}
	if !contains(employmentTypes, a.EmploymentType) {
		a.EmploymentType = EmploymentUnknown
	}
	if !contains(housingSituations, a.HousingSituation) {
		a.HousingSituation = HousingUnknown
	}
	if !contains(filingStatuses, a.FilingStatus) {
		a.FilingStatus = FilingUnknown
	}
}

func contains[T comparable](haystack []T, needle T) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

// interrogativeTokens drives question extraction (spec.md §4.4).
var interrogativeTokens = []string{
	"wat", "hoe", "hoeveel", "waarom", "wanneer", "waar", "wie", "welke", "kan", "mag", "moet",
	"what", "how", "why", "when", "where", "who", "which", "can", "should",
}

// ExtractQuestion splits input on sentence terminators, returning every
// sentence containing an interrogative token (joined with ". "), or the
// last sentence if none qualifies.
func ExtractQuestion(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	var questions []string
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, tok := range interrogativeTokens {
			if containsWord(lower, tok) {
				questions = append(questions, strings.TrimSpace(s))
				break
			}
		}
	}
	if len(questions) > 0 {
		return strings.Join(questions, ". ")
	}
	return strings.TrimSpace(sentences[len(sentences)-1])
}

func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if trimmed := strings.TrimSpace(cur.String()); trimmed != "" {
				sentences = append(sentences, trimmed)
			}
			cur.Reset()
		}
	}
	if trimmed := strings.TrimSpace(cur.String()); trimmed != "" {
		sentences = append(sentences, trimmed)
	}
	return sentences
}

func containsWord(haystack, word string) bool {
	for _, w := range strings.Fields(haystack) {
		w = strings.Trim(w, ".,!?;:")
		if w == word {
			return true
		}
	}
	return false
}
