// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rehydrate

import (
	"fmt"
	"strings"
)

// BuildTemplatePrompt asks the local model to produce a response
// template containing only registered placeholders and forbidding real
// data, matching original_source/rehydration.rs's build_template_prompt
// (adopted verbatim per SPEC_FULL.md §13).
func BuildTemplatePrompt(userRequest, templateType string) string {
	var names []string
	for _, p := range Placeholders {
		names = append(names, "["+p.Name+"]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s response template for the following request.\n\n", templateType)
	b.WriteString("Use ONLY the following placeholders where personal data would go, and do not include any real names, numbers, or addresses:\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nRequest:\n")
	b.WriteString(userRequest)
	b.WriteString("\n\nTemplate:")
	return b.String()
}
