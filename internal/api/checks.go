// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"regexp"

	"github.com/alvinbaena/pwd-register/pkg/analysis"
)

const minLength = 8

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile("[!@#$%^&*(),.?\":{}|<>_\\-+=\\[\\]\\\\;'`~/]")
)

var requirementHints = map[analysis.Requirement]string{
	analysis.Length:        "Use at least 8 characters",
	analysis.Lowercase:     "Add lowercase letters",
	analysis.Uppercase:     "Add uppercase letters",
	analysis.Digit:         "Add at least one number",
	analysis.Special:       "Add special characters (!@#$%^&*...)",
	analysis.NoConsecutive: "Remove consecutive identical characters (e.g., 'aa', '11')",
}

func checkPassword(password string) analysis.Checks {
	return analysis.Checks{
		analysis.Length:        len([]rune(password)) >= minLength,
		analysis.Lowercase:     lowerRe.MatchString(password),
		analysis.Uppercase:     upperRe.MatchString(password),
		analysis.Digit:         digitRe.MatchString(password),
		analysis.Special:       specialRe.MatchString(password),
		analysis.NoConsecutive: !hasConsecutive(password),
	}
}

func hasConsecutive(password string) bool {
	runes := []rune(password)
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			return true
		}
	}
	return false
}

// hints returns one suggestion per failed requirement, in display order.
func hints(checks analysis.Checks) []string {
	out := make([]string, 0)
	for _, r := range analysis.Requirements {
		if !checks[r] {
			out = append(out, requirementHints[r])
		}
	}
	return out
}
