// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"time"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type field int

const (
	fieldUsername field = iota
	fieldPassword
)

// Model is the sign-up form. Pipeline events arrive as tea messages, so every
// state change happens inside Update.
type Model struct {
	ctx      context.Context
	svc      feedback.Service
	pipeline *feedback.Pipeline

	username textinput.Model
	password textinput.Model
	focus    field
}

func New(ctx context.Context, svc feedback.Service, cfg feedback.Config, logger zerolog.Logger) Model {
	username := textinput.New()
	username.Placeholder = "at least 3 characters"
	username.CharLimit = 64
	username.Width = 32
	username.Focus()

	password := textinput.New()
	password.Placeholder = "type a password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 32

	return Model{
		ctx:      ctx,
		svc:      svc,
		pipeline: feedback.New(cfg, logger),
		username: username,
		password: password,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next), key.Matches(msg, keys.Prev):
			return m.toggleFocus(), nil
		case key.Matches(msg, keys.Reveal):
			return m.dispatch(feedback.VisibilityToggled{})
		case key.Matches(msg, keys.Submit):
			return m.dispatch(feedback.SubmitPressed{})
		}
		return m.edit(msg)

	case feedback.Event:
		return m.dispatch(msg)
	}

	var cmd tea.Cmd
	if m.focus == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// State exposes the pipeline snapshot for tests and the final summary.
func (m Model) State() feedback.State {
	return m.pipeline.State()
}

func (m Model) Stats() feedback.Stats {
	return m.pipeline.Stats()
}

func (m Model) toggleFocus() Model {
	if m.focus == fieldUsername {
		m.focus = fieldPassword
		m.username.Blur()
		m.password.Focus()
	} else {
		m.focus = fieldUsername
		m.password.Blur()
		m.username.Focus()
	}
	return m
}

// edit forwards a keystroke to the focused input and reports a changed value
// to the pipeline.
func (m Model) edit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var inputCmd tea.Cmd
	var ev feedback.Event

	if m.focus == fieldUsername {
		before := m.username.Value()
		m.username, inputCmd = m.username.Update(msg)
		if v := m.username.Value(); v != before {
			ev = feedback.IdentifierChanged{Value: v}
		}
	} else {
		before := m.password.Value()
		m.password, inputCmd = m.password.Update(msg)
		if v := m.password.Value(); v != before {
			ev = feedback.PasswordChanged{Value: v}
		}
	}

	if ev == nil {
		return m, inputCmd
	}

	next, cmd := m.dispatch(ev)
	return next, batch(inputCmd, cmd)
}

func (m Model) dispatch(ev feedback.Event) (Model, tea.Cmd) {
	effects := m.pipeline.Dispatch(ev)
	m.sync()
	return m, m.commands(effects)
}

// sync copies pipeline-owned values back into the inputs, e.g. after a
// successful registration cleared both fields.
func (m *Model) sync() {
	s := m.pipeline.State()
	if m.username.Value() != s.Identifier {
		m.username.SetValue(s.Identifier)
	}
	if m.password.Value() != s.Password {
		m.password.SetValue(s.Password)
	}
	if s.Masked {
		m.password.EchoMode = textinput.EchoPassword
	} else {
		m.password.EchoMode = textinput.EchoNormal
	}
}

func (m Model) commands(effects []feedback.Effect) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		switch e := eff.(type) {
		case feedback.ArmTimer:
			fire := e.Fire
			cmds = append(cmds, tea.Tick(e.After, func(time.Time) tea.Msg { return fire }))
		case feedback.CancelTimer:
			// a cancelled tick still arrives and is discarded by its token
		case feedback.RequestAnalysis:
			cmds = append(cmds, func() tea.Msg { return e.Perform(m.ctx, m.svc) })
		case feedback.RequestRegistration:
			cmds = append(cmds, func() tea.Msg { return e.Perform(m.ctx, m.svc) })
		}
	}
	return batch(cmds...)
}

func batch(cmds ...tea.Cmd) tea.Cmd {
	valid := cmds[:0:0]
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return tea.Batch(valid...)
}
