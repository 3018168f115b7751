// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package analysis

import (
	"encoding/json"
	"strings"
)

// Strength is the coarse rating the scoring service attaches to a password.
type Strength int

const (
	StrengthUnknown Strength = iota
	VeryWeak
	Weak
	Moderate
	Strong
	VeryStrong
)

var strengthLabels = map[Strength]string{
	VeryWeak:   "Very Weak",
	Weak:       "Weak",
	Moderate:   "Moderate",
	Strong:     "Strong",
	VeryStrong: "Very Strong",
}

func (s Strength) String() string {
	if label, ok := strengthLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// ParseStrength accepts the service labels ("Very Weak") as well as compact
// spellings ("VeryWeak", "very_weak"). Anything else is StrengthUnknown.
func ParseStrength(label string) Strength {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(label))
	for s, l := range strengthLabels {
		if strings.ToLower(strings.ReplaceAll(l, " ", "")) == norm {
			return s
		}
	}
	return StrengthUnknown
}

// Requirement is one of the fixed password rules the service checks.
type Requirement int

const (
	Length Requirement = iota
	Lowercase
	Uppercase
	Digit
	Special
	NoConsecutive
)

// Requirements lists every rule in display order.
var Requirements = [...]Requirement{Length, Lowercase, Uppercase, Digit, Special, NoConsecutive}

var requirementKeys = [...]string{"length", "lowercase", "uppercase", "digit", "special", "no_consecutive"}

// Key is the JSON key of the requirement in the checks object.
func (r Requirement) Key() string {
	if r < 0 || int(r) >= len(requirementKeys) {
		return ""
	}
	return requirementKeys[r]
}

func (r Requirement) String() string {
	return r.Key()
}

// Checks maps every requirement to whether the password satisfies it. A
// requirement missing from the map counts as failed.
type Checks map[Requirement]bool

// AllPassed is true iff every fixed requirement is present and true.
func (c Checks) AllPassed() bool {
	for _, r := range Requirements {
		if !c[r] {
			return false
		}
	}
	return true
}

// Result is the analysis of a single password as returned by /analyze.
type Result struct {
	Score    int
	Strength Strength
	// Label keeps the strength text exactly as the service sent it, so an
	// unrecognised rating can still be displayed.
	Label       string
	Color       string
	CrackTime   string
	Checks      Checks
	Suggestions []string
	// Cached is set when the client answered without a round trip. It is
	// never sent on the wire.
	Cached bool
}

type wireResult struct {
	Score       int             `json:"score"`
	Strength    string          `json:"strength"`
	Color       string          `json:"color"`
	CrackTime   string          `json:"crack_time"`
	Checks      map[string]bool `json:"checks"`
	Suggestions []string        `json:"suggestions"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	w := wireResult{
		Score:       r.Score,
		Strength:    r.Label,
		Color:       r.Color,
		CrackTime:   r.CrackTime,
		Checks:      make(map[string]bool, len(Requirements)),
		Suggestions: r.Suggestions,
	}
	if w.Strength == "" {
		w.Strength = r.Strength.String()
	}
	if w.Suggestions == nil {
		w.Suggestions = []string{}
	}
	for _, req := range Requirements {
		w.Checks[req.Key()] = r.Checks[req]
	}
	return json.Marshal(w)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	checks := make(Checks, len(Requirements))
	for _, req := range Requirements {
		checks[req] = w.Checks[req.Key()]
	}

	*r = Result{
		Score:       w.Score,
		Strength:    ParseStrength(w.Strength),
		Label:       w.Strength,
		Color:       w.Color,
		CrackTime:   w.CrackTime,
		Checks:      checks,
		Suggestions: w.Suggestions,
	}
	return nil
}

// Outcome is the answer of the account creation service.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AnalyzeRequest struct {
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
