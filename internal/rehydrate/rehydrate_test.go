// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rehydrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Scenario 6 from spec.md §8: template re-hydration.
func TestRehydrateTemplateScenario(t *testing.T) {
	template := "Beste [ACCOUNTANT_NAME], mijn BSN is [BSN]. Datum: [CURRENT_DATE]"
	values := PIIValues{BSN: "123456789"}
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	result := RehydrateTemplate(template, values, now)
	require.False(t, result.IsComplete)
	require.Equal(t, []string{"ACCOUNTANT_NAME"}, result.UnfilledPlaceholders)
	require.Contains(t, result.Content, "123456789")
	require.Contains(t, result.Content, "01-08-2026")
}

func TestRehydrateIsIdempotent(t *testing.T) {
	template := "BSN: [BSN], IBAN: [IBAN]"
	values := PIIValues{BSN: "123456789", IBAN: "NL91ABNA0417164300"}
	now := time.Now()

	first := RehydrateTemplate(template, values, now)
	second := RehydrateTemplate(template, values, now)
	require.Equal(t, first.Content, second.Content)
}

func TestRehydrateFullyHydratedTemplate(t *testing.T) {
	template := "[FULL_NAME] [BSN] [CURRENT_DATE] [TAX_YEAR]"
	values := PIIValues{Name: "Jan", Surname: "Jansen", BSN: "123456789"}
	result := RehydrateTemplate(template, values, time.Now())
	require.True(t, result.IsComplete)
	require.Contains(t, result.Content, "Jan Jansen")
}

func TestFullNameCombinesNameAndSurname(t *testing.T) {
	values := PIIValues{Name: "Jan", Surname: "Jansen"}
	val, ok := values.valueFor(FULL_NAME)
	require.True(t, ok)
	require.Equal(t, "Jan Jansen", val)
}

func TestTaxNumberFallsBackToBSN(t *testing.T) {
	values := PIIValues{BSN: "123456789"}
	val, ok := values.valueFor(TAX_NUMBER)
	require.True(t, ok)
	require.Equal(t, "123456789", val)
}

func TestBankAccountAliasesIBAN(t *testing.T) {
	values := PIIValues{IBAN: "NL91ABNA0417164300"}
	val, ok := values.valueFor(BANK_ACCOUNT)
	require.True(t, ok)
	require.Equal(t, "NL91ABNA0417164300", val)
}

func TestCurrentTaxYearRollsOverInApril(t *testing.T) {
	before := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2025", currentTaxYear(before))

	after := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2026", currentTaxYear(after))
}

func TestMaskValuePolicy(t *testing.T) {
	require.Equal(t, "***789", maskValue("123456789", BSN))
	require.Equal(t, "****4300", maskValue("NL91ABNA0417164300", IBAN))
	require.Equal(t, "€***", maskValue("52000", INCOME))
	require.Equal(t, "****5678", maskValue("0612345678", PHONE))
	require.Equal(t, "ja***@example.com", maskValue("jan@example.com", EMAIL))
	require.Equal(t, "short", maskValue("short", ADDRESS))
}

func TestAnalyzeTemplateReportsMissingAndDynamic(t *testing.T) {
	template := "[BSN] [UNKNOWN_CUSTOM] [CURRENT_DATE]"
	values := PIIValues{Custom: map[string]string{}}
	analysis := AnalyzeTemplate(template, values, time.Now())
	require.False(t, analysis.CanFullyHydrate)
	require.Contains(t, analysis.MissingValues, "BSN")
	require.Contains(t, analysis.MissingValues, "UNKNOWN_CUSTOM")
	require.NotContains(t, analysis.MissingValues, "CURRENT_DATE")
}

func TestAnalyzeTemplateKnownVsCustom(t *testing.T) {
	template := "[BSN] [MY_CUSTOM_FIELD]"
	values := PIIValues{BSN: "123456789", Custom: map[string]string{"MY_CUSTOM_FIELD": "x"}}
	analysis := AnalyzeTemplate(template, values, time.Now())
	require.True(t, analysis.CanFullyHydrate)

	var sawCustom bool
	for _, p := range analysis.Placeholders {
		if p.Name == "MY_CUSTOM_FIELD" {
			sawCustom = true
			require.False(t, p.Known)
			require.True(t, p.HasValue)
		}
	}
	require.True(t, sawCustom)
}

func TestBuildTemplatePromptForbidsRealData(t *testing.T) {
	prompt := BuildTemplatePrompt("write a letter to my accountant", "email")
	require.Contains(t, prompt, "[BSN]")
	require.Contains(t, prompt, "do not include any real names")
}
