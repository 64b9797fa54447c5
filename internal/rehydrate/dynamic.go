// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rehydrate

import (
	"strconv"
	"time"
)

// currentDate renders today's date as DD-MM-YYYY, matching
// original_source/rehydration.rs's get_current_date.
func currentDate(now time.Time) string {
	return now.Format("02-01-2006")
}

// currentTaxYear derives the Dutch fiscal year: calendar year minus one
// if the current month is before April, else the current year
// (original_source/rehydration.rs's get_current_tax_year).
func currentTaxYear(now time.Time) string {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	return strconv.Itoa(year)
}

func dynamicValue(name string, now time.Time) (string, bool) {
	switch name {
	case CURRENT_DATE:
		return currentDate(now), true
	case TAX_YEAR:
		return currentTaxYear(now), true
	default:
		return "", false
	}
}
