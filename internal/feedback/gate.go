package feedback

import (
	"strings"
	"unicode/utf8"
)

// MinIdentifierLength is the minimum trimmed length of a username.
const MinIdentifierLength = 3

// Validation holds the two inputs of the submission gate.
type Validation struct {
	AllChecksPassed bool
	IdentifierValid bool
}

// CanSubmit is true iff the password passes every check and the identifier is
// long enough.
func (v Validation) CanSubmit() bool {
	return v.AllChecksPassed && v.IdentifierValid
}

func IdentifierValid(identifier string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(identifier)) >= MinIdentifierLength
}
