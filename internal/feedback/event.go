// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package feedback

import (
	"context"
	"time"

	"github.com/alvinbaena/pwd-register/pkg/analysis"
)

// EventType keys the pipeline dispatch table.
type EventType int

const (
	PasswordChangedEvent EventType = iota + 1
	IdentifierChangedEvent
	DebounceElapsedEvent
	AnalysisCompletedEvent
	SubmitPressedEvent
	RegistrationCompletedEvent
	NotificationExpiredEvent
	VisibilityToggledEvent
)

// Event is an input to the pipeline: user edits, timer fires and request
// completions.
type Event interface {
	Type() EventType
}

type PasswordChanged struct {
	Value string
}

type IdentifierChanged struct {
	Value string
}

type DebounceElapsed struct {
	Token Token
}

type AnalysisCompleted struct {
	Seq    uint64
	Result analysis.Result
	Err    error
}

type SubmitPressed struct{}

type RegistrationCompleted struct {
	Outcome analysis.Outcome
	Err     error
}

type NotificationExpired struct {
	Token Token
}

type VisibilityToggled struct{}

func (PasswordChanged) Type() EventType       { return PasswordChangedEvent }
func (IdentifierChanged) Type() EventType     { return IdentifierChangedEvent }
func (DebounceElapsed) Type() EventType       { return DebounceElapsedEvent }
func (AnalysisCompleted) Type() EventType     { return AnalysisCompletedEvent }
func (SubmitPressed) Type() EventType         { return SubmitPressedEvent }
func (RegistrationCompleted) Type() EventType { return RegistrationCompletedEvent }
func (NotificationExpired) Type() EventType   { return NotificationExpiredEvent }
func (VisibilityToggled) Type() EventType     { return VisibilityToggledEvent }

// Effect is work the pipeline asks its host to perform.
type Effect interface {
	effect()
}

// ArmTimer asks for Fire to be delivered back after the delay. A timer is
// identified by the event it delivers.
type ArmTimer struct {
	After time.Duration
	Fire  Event
}

// CancelTimer stops a timer armed earlier. Hosts that cannot stop timers may
// ignore it: a cancelled timer that still fires is discarded.
type CancelTimer struct {
	Fire Event
}

type RequestAnalysis struct {
	Seq      uint64
	Password string
}

type RequestRegistration struct {
	Username string
	Password string
}

func (ArmTimer) effect()            {}
func (CancelTimer) effect()         {}
func (RequestAnalysis) effect()     {}
func (RequestRegistration) effect() {}

// Service is the remote side of the pipeline.
type Service interface {
	Analyze(ctx context.Context, password string) (analysis.Result, error)
	Register(ctx context.Context, username, password string) (analysis.Outcome, error)
}

// Perform runs the request and returns its completion event.
func (r RequestAnalysis) Perform(ctx context.Context, svc Service) Event {
	res, err := svc.Analyze(ctx, r.Password)
	return AnalysisCompleted{Seq: r.Seq, Result: res, Err: err}
}

// Perform runs the request and returns its completion event.
func (r RequestRegistration) Perform(ctx context.Context, svc Service) Event {
	out, err := svc.Register(ctx, r.Username, r.Password)
	return RegistrationCompleted{Outcome: out, Err: err}
}
