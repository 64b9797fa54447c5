// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rehydrate implements the Re-hydration Engine (spec.md §4.5):
// substituting placeholder tokens in cloud LLM responses with locally
// held plaintext values, tracking which slots remain unfilled. The
// placeholder table, masking policy, and synthetic field aliasing are
// carried from
// original_source/apps/desktop/src-tauri/src/rehydration.rs per
// SPEC_FULL.md §13.
package rehydrate

// Group categorizes a placeholder for display/documentation purposes
// (spec.md §4.5 "grouped by category (personal, contact, financial, tax,
// third-party, dynamic)").
type Group string

const (
	GroupPersonal   Group = "personal"
	GroupContact    Group = "contact"
	GroupFinancial  Group = "financial"
	GroupTax        Group = "tax"
	GroupThirdParty Group = "third_party"
	GroupDynamic    Group = "dynamic"
)

// Placeholder names, the closed set from spec.md §4.5.
const (
	BSN             = "BSN"
	NAME            = "NAME"
	SURNAME         = "SURNAME"
	FULL_NAME       = "FULL_NAME"
	DATE_OF_BIRTH   = "DATE_OF_BIRTH"
	EMAIL           = "EMAIL"
	PHONE           = "PHONE"
	ADDRESS         = "ADDRESS"
	POSTCODE        = "POSTCODE"
	CITY            = "CITY"
	INCOME          = "INCOME"
	SALARY          = "SALARY"
	IBAN            = "IBAN"
	BANK_ACCOUNT    = "BANK_ACCOUNT"
	TAX_NUMBER      = "TAX_NUMBER"
	TAX_YEAR        = "TAX_YEAR"
	ACCOUNTANT_NAME = "ACCOUNTANT_NAME"
	ACCOUNTANT_EMAIL = "ACCOUNTANT_EMAIL"
	EMPLOYER_NAME   = "EMPLOYER_NAME"
	CURRENT_DATE    = "CURRENT_DATE"
)

// PlaceholderInfo documents one entry of the closed registry.
type PlaceholderInfo struct {
	Name  string
	Group Group
}

// Placeholders is the closed registry, used by GetPlaceholderTypes (§6)
// and by template analysis to classify a bracketed token as known.
var Placeholders = []PlaceholderInfo{
	{BSN, GroupPersonal},
	{NAME, GroupPersonal},
	{SURNAME, GroupPersonal},
	{FULL_NAME, GroupPersonal},
	{DATE_OF_BIRTH, GroupPersonal},
	{EMAIL, GroupContact},
	{PHONE, GroupContact},
	{ADDRESS, GroupContact},
	{POSTCODE, GroupContact},
	{CITY, GroupContact},
	{INCOME, GroupFinancial},
	{SALARY, GroupFinancial},
	{IBAN, GroupFinancial},
	{BANK_ACCOUNT, GroupFinancial},
	{TAX_NUMBER, GroupTax},
	{TAX_YEAR, GroupDynamic},
	{ACCOUNTANT_NAME, GroupThirdParty},
	{ACCOUNTANT_EMAIL, GroupThirdParty},
	{EMPLOYER_NAME, GroupThirdParty},
	{CURRENT_DATE, GroupDynamic},
}

var placeholderGroup = func() map[string]Group {
	m := make(map[string]Group, len(Placeholders))
	for _, p := range Placeholders {
		m[p.Name] = p.Group
	}
	return m
}()

// IsKnown reports whether name is in the closed placeholder registry.
func IsKnown(name string) bool {
	_, ok := placeholderGroup[name]
	return ok
}

// IsDynamicPlaceholder reports whether name is always considered filled
// regardless of PIIValues content (spec.md §4.5 "Dynamic placeholders
// count as has_value = true unconditionally").
func IsDynamicPlaceholder(name string) bool {
	return name == CURRENT_DATE || name == TAX_YEAR
}

// PIIValues holds the locally-known plaintext values available for
// rehydration. Every field is optional; Custom carries values for
// placeholders outside the closed registry.
type PIIValues struct {
	BSN             string
	Name            string
	Surname         string
	DateOfBirth     string
	Email           string
	Phone           string
	Address         string
	Postcode        string
	City            string
	Income          string
	Salary          string
	IBAN            string
	TaxNumber       string
	AccountantName  string
	AccountantEmail string
	EmployerName    string
	Custom          map[string]string
}

// valueFor resolves name against v, including the synthetic aliasing
// from original_source's has_value_for_placeholder: FULL_NAME combines
// NAME+SURNAME, TAX_NUMBER falls back to BSN, BANK_ACCOUNT aliases IBAN.
func (v PIIValues) valueFor(name string) (string, bool) {
	switch name {
	case BSN:
		return nonEmpty(v.BSN)
	case NAME:
		return nonEmpty(v.Name)
	case SURNAME:
		return nonEmpty(v.Surname)
	case FULL_NAME:
		if full := combineFullName(v.Name, v.Surname); full != "" {
			return full, true
		}
		return "", false
	case DATE_OF_BIRTH:
		return nonEmpty(v.DateOfBirth)
	case EMAIL:
		return nonEmpty(v.Email)
	case PHONE:
		return nonEmpty(v.Phone)
	case ADDRESS:
		return nonEmpty(v.Address)
	case POSTCODE:
		return nonEmpty(v.Postcode)
	case CITY:
		return nonEmpty(v.City)
	case INCOME:
		return nonEmpty(v.Income)
	case SALARY:
		return nonEmpty(v.Salary)
	case IBAN:
		return nonEmpty(v.IBAN)
	case BANK_ACCOUNT:
		return nonEmpty(v.IBAN)
	case TAX_NUMBER:
		if val, ok := nonEmpty(v.TaxNumber); ok {
			return val, true
		}
		return nonEmpty(v.BSN)
	case ACCOUNTANT_NAME:
		return nonEmpty(v.AccountantName)
	case ACCOUNTANT_EMAIL:
		return nonEmpty(v.AccountantEmail)
	case EMPLOYER_NAME:
		return nonEmpty(v.EmployerName)
	default:
		if v.Custom != nil {
			return nonEmpty(v.Custom[name])
		}
		return "", false
	}
}

func nonEmpty(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return s, true
}

func combineFullName(name, surname string) string {
	switch {
	case name != "" && surname != "":
		return name + " " + surname
	case name != "":
		return name
	case surname != "":
		return surname
	default:
		return ""
	}
}
