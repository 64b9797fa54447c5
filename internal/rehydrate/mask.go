// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rehydrate

import "strings"

// maskValue renders value for audit/UI display only, never as
// user-visible output, per spec.md §4.5's masking policy table.
func maskValue(value, placeholder string) string {
	switch placeholder {
	case BSN, TAX_NUMBER:
		return "***" + lastN(value, 3)
	case IBAN, BANK_ACCOUNT:
		return "****" + lastN(value, 4)
	case INCOME, SALARY:
		return "€***"
	case PHONE:
		return "****" + lastNDigits(value, 4)
	case EMAIL:
		return maskEmail(value)
	default:
		if len(value) <= 20 {
			return value
		}
		return value[:20] + "…"
	}
}

func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[len(r)-n:])
}

func lastNDigits(s string, n int) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	return lastN(string(digits), n)
}

func maskEmail(value string) string {
	at := strings.Index(value, "@")
	if at == -1 {
		if len(value) <= 20 {
			return value
		}
		return value[:20] + "…"
	}
	local, domain := value[:at], value[at+1:]
	prefix := local
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return prefix + "***" + "@" + domain
}
