package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/alvinbaena/pwd-register/pkg/analysis"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	result  analysis.Result
	outcome analysis.Outcome
	err     error
	lastReg analysis.RegisterRequest
}

func (s *stubService) Analyze(context.Context, string) (analysis.Result, error) {
	return s.result, s.err
}

func (s *stubService) Register(_ context.Context, username, password string) (analysis.Outcome, error) {
	s.lastReg = analysis.RegisterRequest{Username: username, Password: password}
	return s.outcome, s.err
}

func allChecks() analysis.Checks {
	c := analysis.Checks{}
	for _, r := range analysis.Requirements {
		c[r] = true
	}
	return c
}

func newModel(svc feedback.Service) Model {
	return New(context.Background(), svc, feedback.DefaultConfig(), zerolog.Nop())
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: k})
}

// analyze types password into the focused field and delivers the debounce
// tick and the analysis response the way the runtime would.
func analyze(t *testing.T, m Model, password string) Model {
	t.Helper()
	m = typeText(t, m, password)
	m, cmd := update(t, m, feedback.DebounceElapsed{Token: feedback.Token(len([]rune(password)))})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func TestModel_TypingReachesPipeline(t *testing.T) {
	m := newModel(&stubService{})
	m = typeText(t, m, "alice")
	assert.Equal(t, "alice", m.State().Identifier)
	assert.True(t, m.State().Validation.IdentifierValid)

	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "abc")
	assert.Equal(t, "abc", m.State().Password)
	assert.Equal(t, "alice", m.State().Identifier)
}

func TestModel_DebouncedAnalysis(t *testing.T) {
	svc := &stubService{result: analysis.Result{Score: 35, Strength: analysis.Weak, Label: "Weak", Color: "#ff9500"}}
	m := newModel(svc)
	m, _ = press(t, m, tea.KeyTab)

	m = analyze(t, m, "abc")
	v := m.State().View
	assert.True(t, v.Visible)
	assert.Equal(t, "Weak", v.Label)
	assert.Contains(t, m.View(), "35/100")
}

func TestModel_SupersededTickIsIgnored(t *testing.T) {
	m := newModel(&stubService{})
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "abc")

	m, cmd := update(t, m, feedback.DebounceElapsed{Token: 1})
	assert.Nil(t, cmd)
	assert.False(t, m.State().View.Visible)
	assert.Equal(t, uint64(0), m.Stats().Issued)
}

func TestModel_RevealTogglesEcho(t *testing.T) {
	m := newModel(&stubService{})
	assert.Equal(t, textinput.EchoPassword, m.password.EchoMode)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.False(t, m.State().Masked)
	assert.Equal(t, textinput.EchoNormal, m.password.EchoMode)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, textinput.EchoPassword, m.password.EchoMode)
}

func TestModel_SubmitDisabledUntilReady(t *testing.T) {
	m := newModel(&stubService{})
	m = typeText(t, m, "al")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.State().Submitting)
}

func TestModel_RegistrationClearsForm(t *testing.T) {
	svc := &stubService{
		result:  analysis.Result{Score: 95, Strength: analysis.VeryStrong, Label: "Very Strong", Checks: allChecks()},
		outcome: analysis.Outcome{Success: true, Message: "Account created successfully for alice!"},
	}
	m := newModel(svc)
	m = typeText(t, m, "alice")
	m, _ = press(t, m, tea.KeyTab)
	m = analyze(t, m, "C0rect-Horse")
	require.True(t, m.State().SubmitEnabled)

	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, feedback.WorkingLabel, m.State().SubmitLabel)
	assert.Contains(t, m.View(), feedback.WorkingLabel)

	m, expire := update(t, m, cmd())
	assert.NotNil(t, expire)
	assert.Equal(t, analysis.RegisterRequest{Username: "alice", Password: "C0rect-Horse"}, svc.lastReg)
	assert.Empty(t, m.username.Value())
	assert.Empty(t, m.password.Value())
	assert.False(t, m.State().View.Visible)
	assert.Contains(t, m.View(), "Account created successfully for alice!")
}

func TestModel_RegistrationErrorKeepsForm(t *testing.T) {
	svc := &stubService{result: analysis.Result{Score: 95, Strength: analysis.VeryStrong, Checks: allChecks()}}
	m := newModel(svc)
	m = typeText(t, m, "alice")
	m, _ = press(t, m, tea.KeyTab)
	m = analyze(t, m, "C0rect-Horse")

	svc.err = errors.New("connection refused")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, "C0rect-Horse", m.password.Value())
	assert.Equal(t, feedback.SubmitLabel, m.State().SubmitLabel)
	assert.True(t, strings.Contains(m.View(), feedback.GenericFailure))
}

func TestModel_Quit(t *testing.T) {
	m := newModel(&stubService{})
	_, cmd := press(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
