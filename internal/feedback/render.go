// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package feedback

import (
	"fmt"
	"github.com/alvinbaena/pwd-register/pkg/analysis"
)

// AllRequirementsMet is the single suggestion row shown when the service has
// nothing left to suggest.
const AllRequirementsMet = "All requirements met — great password!"

// DefaultIcon is used for strength ratings without an icon of their own.
const DefaultIcon = "🛡️"

var shields = map[analysis.Strength]string{
	analysis.VeryWeak:   "💀",
	analysis.Weak:       "⚠️",
	analysis.Moderate:   "🔒",
	analysis.Strong:     "🛡️",
	analysis.VeryStrong: "🔐",
}

var requirementLabels = map[analysis.Requirement]string{
	analysis.Length:        "At least 8 characters",
	analysis.Lowercase:     "Lowercase letter (a-z)",
	analysis.Uppercase:     "Uppercase letter (A-Z)",
	analysis.Digit:         "Number (0-9)",
	analysis.Special:       "Special character (!@#$...)",
	analysis.NoConsecutive: "No consecutive identical characters",
}

// ShieldIcon maps a strength rating to its icon.
func ShieldIcon(s analysis.Strength) string {
	if icon, ok := shields[s]; ok {
		return icon
	}
	return DefaultIcon
}

type CheckRow struct {
	Requirement analysis.Requirement
	Label       string
	Passed      bool
}

// Class is "pass" or "fail".
func (c CheckRow) Class() string {
	if c.Passed {
		return "pass"
	}
	return "fail"
}

type SuggestionRow struct {
	Text string
	// Affirmative marks the "all requirements met" row.
	Affirmative bool
}

// View is everything the feedback panels display. The zero View is the empty
// state: panels hidden, placeholder shown.
type View struct {
	Visible     bool
	Score       int
	Width       int
	ScoreText   string
	Strength    analysis.Strength
	Label       string
	Color       string
	Icon        string
	CrackTime   string
	Checks      []CheckRow
	Suggestions []SuggestionRow
	AllPassed   bool
}

// EmptyView is shown before any input and after a reset.
func EmptyView() View {
	return View{}
}

// Render projects an analysis result onto the feedback panels.
func Render(res analysis.Result) View {
	label := res.Label
	if label == "" {
		label = res.Strength.String()
	}

	v := View{
		Visible:   true,
		Score:     res.Score,
		Width:     clampPercent(res.Score),
		ScoreText: fmt.Sprintf("%d/100", res.Score),
		Strength:  res.Strength,
		Label:     label,
		Color:     res.Color,
		Icon:      ShieldIcon(res.Strength),
		CrackTime: res.CrackTime,
		Checks:    make([]CheckRow, 0, len(analysis.Requirements)),
		AllPassed: true,
	}

	for _, req := range analysis.Requirements {
		passed := res.Checks[req]
		if !passed {
			v.AllPassed = false
		}
		v.Checks = append(v.Checks, CheckRow{Requirement: req, Label: requirementLabels[req], Passed: passed})
	}

	if len(res.Suggestions) == 0 {
		v.Suggestions = []SuggestionRow{{Text: AllRequirementsMet, Affirmative: true}}
	} else {
		v.Suggestions = make([]SuggestionRow, 0, len(res.Suggestions))
		for _, s := range res.Suggestions {
			v.Suggestions = append(v.Suggestions, SuggestionRow{Text: s})
		}
	}

	return v
}

func clampPercent(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
