package feedback

import (
	"strings"

	"github.com/alvinbaena/pwd-register/pkg/analysis"
)

const (
	SubmitLabel    = "Create Account"
	WorkingLabel   = "Creating Account..."
	GenericFailure = "Something went wrong. Please try again."
)

// RegistrationController tracks a single account creation attempt.
type RegistrationController struct {
	inFlight bool
	label    string
}

func NewRegistrationController() *RegistrationController {
	return &RegistrationController{label: SubmitLabel}
}

// Begin starts an attempt if the gate allows it and none is in flight. The
// returned request carries the values as they are now; later edits to the
// fields do not reach it.
func (r *RegistrationController) Begin(gate Validation, identifier, password string) (RequestRegistration, bool) {
	if r.inFlight || !gate.CanSubmit() {
		return RequestRegistration{}, false
	}

	r.inFlight = true
	r.label = WorkingLabel
	return RequestRegistration{Username: strings.TrimSpace(identifier), Password: password}, true
}

// Settle ends the attempt and returns the notification to show. The label is
// restored whatever the result.
func (r *RegistrationController) Settle(outcome analysis.Outcome, err error) (message string, kind Kind, success bool) {
	r.inFlight = false
	r.label = SubmitLabel

	switch {
	case err != nil:
		return GenericFailure, KindError, false
	case outcome.Success:
		return outcome.Message, KindSuccess, true
	case outcome.Message == "":
		return GenericFailure, KindError, false
	default:
		return outcome.Message, KindError, false
	}
}

func (r *RegistrationController) InFlight() bool {
	return r.inFlight
}

func (r *RegistrationController) Label() string {
	return r.label
}
