// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package feedback

import (
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Debounce        time.Duration
	NotificationTTL time.Duration
}

func DefaultConfig() Config {
	return Config{Debounce: DefaultDebounce, NotificationTTL: DefaultNotificationTTL}
}

// State is a snapshot of everything a host displays.
type State struct {
	Password      string
	Identifier    string
	Masked        bool
	View          View
	Validation    Validation
	SubmitEnabled bool
	SubmitLabel   string
	Submitting    bool
	Notification  Notification
}

// Stats counts analysis requests by how they ended.
type Stats struct {
	Issued        uint64
	Applied       uint64
	Stale         uint64
	Failed        uint64
	Registrations uint64
}

type handler func(Event) []Effect

// Pipeline owns the rendered state of the sign-up form. It is not safe for
// concurrent use: hosts call Dispatch from a single goroutine and execute the
// returned effects, feeding completions back as events.
type Pipeline struct {
	log        zerolog.Logger
	password   string
	identifier string
	masked     bool

	debouncer *Debouncer
	seq       Sequencer
	view      View
	gate      Validation
	register  *RegistrationController
	notices   *NotificationCenter
	stats     Stats

	handlers map[EventType]handler
}

func New(cfg Config, logger zerolog.Logger) *Pipeline {
	p := &Pipeline{
		log:       logger,
		masked:    true,
		debouncer: NewDebouncer(cfg.Debounce),
		view:      EmptyView(),
		register:  NewRegistrationController(),
		notices:   NewNotificationCenter(cfg.NotificationTTL),
	}

	p.handlers = map[EventType]handler{
		PasswordChangedEvent:       p.onPasswordChanged,
		IdentifierChangedEvent:     p.onIdentifierChanged,
		DebounceElapsedEvent:       p.onDebounceElapsed,
		AnalysisCompletedEvent:     p.onAnalysisCompleted,
		SubmitPressedEvent:         p.onSubmitPressed,
		RegistrationCompletedEvent: p.onRegistrationCompleted,
		NotificationExpiredEvent:   p.onNotificationExpired,
		VisibilityToggledEvent:     p.onVisibilityToggled,
	}

	return p
}

// Dispatch applies ev to the state and returns the effects the host must run.
func (p *Pipeline) Dispatch(ev Event) []Effect {
	if ev == nil {
		return nil
	}
	h, ok := p.handlers[ev.Type()]
	if !ok {
		p.log.Warn().Msgf("no handler for event %T", ev)
		return nil
	}
	return h(ev)
}

func (p *Pipeline) State() State {
	return State{
		Password:      p.password,
		Identifier:    p.identifier,
		Masked:        p.masked,
		View:          p.view,
		Validation:    p.gate,
		SubmitEnabled: p.gate.CanSubmit() && !p.register.InFlight(),
		SubmitLabel:   p.register.Label(),
		Submitting:    p.register.InFlight(),
		Notification:  p.notices.Current(),
	}
}

func (p *Pipeline) Stats() Stats {
	return p.stats
}

// CanSubmit reports the gate alone, ignoring any registration in flight.
func (p *Pipeline) CanSubmit() bool {
	return p.gate.CanSubmit()
}

func (p *Pipeline) onPasswordChanged(ev Event) []Effect {
	value := ev.(PasswordChanged).Value
	p.password = value

	var effects []Effect
	trig := p.debouncer.Notify(value)
	if trig.Cancelled != 0 {
		effects = append(effects, CancelTimer{Fire: DebounceElapsed{Token: trig.Cancelled}})
	}

	if trig.Armed == 0 {
		p.reset()
		return effects
	}

	p.recompute()
	return append(effects, ArmTimer{After: p.debouncer.Window(), Fire: DebounceElapsed{Token: trig.Armed}})
}

func (p *Pipeline) onIdentifierChanged(ev Event) []Effect {
	p.identifier = ev.(IdentifierChanged).Value
	p.recompute()
	return nil
}

func (p *Pipeline) onDebounceElapsed(ev Event) []Effect {
	token := ev.(DebounceElapsed).Token
	value, ok := p.debouncer.Fire(token)
	if !ok {
		p.log.Debug().Uint64("token", uint64(token)).Msg("ignoring cancelled debounce timer")
		return nil
	}

	p.stats.Issued++
	return []Effect{RequestAnalysis{Seq: p.seq.Issue(), Password: value}}
}

func (p *Pipeline) onAnalysisCompleted(ev Event) []Effect {
	done := ev.(AnalysisCompleted)
	if !p.seq.Current(done.Seq) {
		p.stats.Stale++
		p.log.Debug().Uint64("seq", done.Seq).Msg("discarding stale analysis response")
		return nil
	}

	if done.Err != nil {
		// The panels keep the last good analysis; failures are only logged.
		p.stats.Failed++
		p.log.Error().Err(done.Err).Uint64("seq", done.Seq).Msg("password analysis failed")
		return nil
	}

	p.stats.Applied++
	p.view = Render(done.Result)
	p.gate.AllChecksPassed = p.view.AllPassed
	p.recompute()
	return nil
}

func (p *Pipeline) onSubmitPressed(Event) []Effect {
	p.recompute()
	req, ok := p.register.Begin(p.gate, p.identifier, p.password)
	if !ok {
		p.log.Debug().Bool("in_flight", p.register.InFlight()).Msg("submission not allowed")
		return nil
	}

	p.stats.Registrations++
	p.log.Info().Str("username", req.Username).Msg("creating account")
	return []Effect{req}
}

func (p *Pipeline) onRegistrationCompleted(ev Event) []Effect {
	if !p.register.InFlight() {
		p.log.Warn().Msg("registration completed with no attempt in flight")
		return nil
	}

	done := ev.(RegistrationCompleted)
	if done.Err != nil {
		p.log.Error().Err(done.Err).Msg("account creation failed")
	}

	message, kind, success := p.register.Settle(done.Outcome, done.Err)

	var effects []Effect
	if success {
		p.password = ""
		p.identifier = ""
		if cancelled := p.debouncer.Cancel(); cancelled != 0 {
			effects = append(effects, CancelTimer{Fire: DebounceElapsed{Token: cancelled}})
		}
		p.reset()
	}

	effects = append(effects, p.notify(message, kind)...)
	p.recompute()
	return effects
}

func (p *Pipeline) onNotificationExpired(ev Event) []Effect {
	p.notices.Expire(ev.(NotificationExpired).Token)
	return nil
}

func (p *Pipeline) onVisibilityToggled(Event) []Effect {
	p.masked = !p.masked
	return nil
}

func (p *Pipeline) notify(message string, kind Kind) []Effect {
	armed, superseded := p.notices.Show(message, kind)
	var effects []Effect
	if superseded != 0 {
		effects = append(effects, CancelTimer{Fire: NotificationExpired{Token: superseded}})
	}
	return append(effects, ArmTimer{After: p.notices.TTL(), Fire: NotificationExpired{Token: armed}})
}

// reset returns the panels to the empty state and makes any analysis still in
// flight stale.
func (p *Pipeline) reset() {
	p.seq.Invalidate()
	p.view = EmptyView()
	p.gate.AllChecksPassed = false
	p.recompute()
}

func (p *Pipeline) recompute() {
	if p.password == "" {
		p.gate.AllChecksPassed = false
	}
	p.gate.IdentifierValid = IdentifierValid(p.identifier)
}
