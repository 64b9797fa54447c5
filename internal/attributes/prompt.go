// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package attributes

import (
	"fmt"
	"strings"
)

// buildExtractionPrompt enumerates every allowed value per field and
// forbids names/addresses/amounts in the output, per spec.md §4.4 (a)-(c)
// and original_source/attribute_extraction.rs's build_extraction_prompt,
// which SPEC_FULL.md §13 adopts verbatim as the required prompt shape.
func buildExtractionPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are a tax attribute classifier. Read the text below and output ONLY a JSON object matching this exact schema, with no surrounding commentary.\n\n")
	b.WriteString("DO NOT extract any names, addresses, or specific amounts. Only output the categorical fields below.\n\n")
	fmt.Fprintf(&b, "income_bracket: one of %s\n", joinVocab(toStrings(incomeBrackets)))
	fmt.Fprintf(&b, "employment_type: one of %s\n", joinVocab(toStrings(employmentTypes)))
	fmt.Fprintf(&b, "housing_situation: one of %s\n", joinVocab(toStrings(housingSituations)))
	fmt.Fprintf(&b, "filing_status: one of %s\n", joinVocab(toStrings(filingStatuses)))
	b.WriteString("has_multiple_employers, receives_benefits, has_mortgage, has_savings_above_threshold, has_investments, has_dependents, has_fiscal_partner, has_30_percent_ruling, is_entrepreneur, has_foreign_income, has_crypto_assets: boolean\n")
	b.WriteString("relevant_boxes: array of strings (Box 1/2/3 tags)\n")
	b.WriteString("deduction_categories: array of strings (category tags only, never amounts)\n\n")
	b.WriteString("Text:\n")
	b.WriteString(text)
	b.WriteString("\n\nJSON:")
	return b.String()
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func joinVocab(values []string) string {
	return strings.Join(values, ", ")
}

// boilerplateContext is appended to every generated prompt, per spec.md
// §4.4 ("and appends boilerplate context").
const boilerplateContext = "Answer using only the profile above. Do not assume any detail not listed; ask a clarifying question instead of guessing."

// BuildPrivacySafePrompt implements spec.md §6's
// generate_privacy_safe_prompt(attrs, question): it renders attrs as a
// bulleted profile, then appends the caller-supplied question and the
// boilerplate context. Enum fields are written as their string values
// and booleans as yes/no labels; RelevantBoxes and DeductionCategories
// entries are joined as given. No value is checked against a declared
// vocabulary here, so a non-vocabulary string in attrs appears verbatim
// in the profile.
func BuildPrivacySafePrompt(attrs TaxAttributes, question string) string {
	var b strings.Builder
	b.WriteString("Taxpayer profile:\n")
	fmt.Fprintf(&b, "- Income bracket: %s\n", attrs.IncomeBracket)
	fmt.Fprintf(&b, "- Employment type: %s\n", attrs.EmploymentType)
	fmt.Fprintf(&b, "- Multiple employers: %s\n", yesNo(attrs.HasMultipleEmployers))
	fmt.Fprintf(&b, "- Receives benefits: %s\n", yesNo(attrs.ReceivesBenefits))
	fmt.Fprintf(&b, "- Housing situation: %s\n", attrs.HousingSituation)
	fmt.Fprintf(&b, "- Has mortgage: %s\n", yesNo(attrs.HasMortgage))
	fmt.Fprintf(&b, "- Savings above threshold: %s\n", yesNo(attrs.HasSavingsAboveThreshold))
	fmt.Fprintf(&b, "- Has investments: %s\n", yesNo(attrs.HasInvestments))
	fmt.Fprintf(&b, "- Filing status: %s\n", attrs.FilingStatus)
	fmt.Fprintf(&b, "- Has dependents: %s\n", yesNo(attrs.HasDependents))
	fmt.Fprintf(&b, "- Has fiscal partner: %s\n", yesNo(attrs.HasFiscalPartner))
	fmt.Fprintf(&b, "- 30%% ruling: %s\n", yesNo(attrs.Has30PercentRuling))
	fmt.Fprintf(&b, "- Entrepreneur: %s\n", yesNo(attrs.IsEntrepreneur))
	fmt.Fprintf(&b, "- Foreign income: %s\n", yesNo(attrs.HasForeignIncome))
	fmt.Fprintf(&b, "- Crypto assets: %s\n", yesNo(attrs.HasCryptoAssets))
	if len(attrs.RelevantBoxes) > 0 {
		fmt.Fprintf(&b, "- Relevant boxes: %s\n", strings.Join(attrs.RelevantBoxes, ", "))
	}
	if len(attrs.DeductionCategories) > 0 {
		fmt.Fprintf(&b, "- Deduction categories: %s\n", strings.Join(attrs.DeductionCategories, ", "))
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\n")
	b.WriteString(boilerplateContext)
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
