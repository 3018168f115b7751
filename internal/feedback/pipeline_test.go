package feedback

import (
	"errors"
	"testing"

	"github.com/alvinbaena/pwd-register/pkg/analysis"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fireDebounce delivers the debounce timer armed by effects and returns the
// analysis request it produced.
func fireDebounce(t *testing.T, p *Pipeline, effects []Effect) RequestAnalysis {
	t.Helper()
	arm := findArm(t, effects, DebounceElapsedEvent)
	out := p.Dispatch(arm.Fire)
	require.Len(t, out, 1)
	req, ok := out[0].(RequestAnalysis)
	require.True(t, ok, "expected RequestAnalysis, got %T", out[0])
	return req
}

func findArm(t *testing.T, effects []Effect, typ EventType) ArmTimer {
	t.Helper()
	for _, e := range effects {
		if arm, ok := e.(ArmTimer); ok && arm.Fire.Type() == typ {
			return arm
		}
	}
	t.Fatalf("no timer armed for event type %d in %v", typ, effects)
	return ArmTimer{}
}

func allPassing() analysis.Checks {
	c := analysis.Checks{}
	for _, r := range analysis.Requirements {
		c[r] = true
	}
	return c
}

func strongResult() analysis.Result {
	return analysis.Result{
		Score:     95,
		Strength:  analysis.VeryStrong,
		Label:     "Very Strong",
		Color:     "#00c7be",
		CrackTime: "Millions of years",
		Checks:    allPassing(),
	}
}

func smallResult() analysis.Result {
	checks := allPassing()
	checks[analysis.NoConsecutive] = false
	return analysis.Result{
		Score:       40,
		Strength:    analysis.Weak,
		Label:       "Weak",
		Color:       "#ff9500",
		CrackTime:   "2 hours",
		Checks:      checks,
		Suggestions: []string{"Remove consecutive identical characters (e.g., 'aa', '11')"},
	}
}

// readyPipeline returns a pipeline with a valid identifier and a password whose
// analysis passed every check.
func readyPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := New(DefaultConfig(), testLogger())
	p.Dispatch(IdentifierChanged{Value: "alice"})
	req := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "C0rrect-Horse"}))
	p.Dispatch(AnalysisCompleted{Seq: req.Seq, Result: strongResult()})
	require.True(t, p.State().SubmitEnabled)
	return p
}

func TestPipeline_InitialState(t *testing.T) {
	p := New(Config{}, testLogger())
	s := p.State()

	assert.False(t, s.View.Visible)
	assert.False(t, s.SubmitEnabled)
	assert.Equal(t, SubmitLabel, s.SubmitLabel)
	assert.True(t, s.Masked)
	assert.False(t, s.Notification.Visible)
}

func TestPipeline_BurstIssuesOneRequest(t *testing.T) {
	p := New(DefaultConfig(), testLogger())

	var arms []ArmTimer
	for _, v := range []string{"S", "Sm", "Sm4", "Sm4l", "Sm4ll", "Sm4ll!"} {
		effects := p.Dispatch(PasswordChanged{Value: v})
		arm := findArm(t, effects, DebounceElapsedEvent)
		assert.Equal(t, DefaultDebounce, arm.After)
		arms = append(arms, arm)
	}

	var requests []RequestAnalysis
	for _, arm := range arms {
		for _, e := range p.Dispatch(arm.Fire) {
			requests = append(requests, e.(RequestAnalysis))
		}
	}

	require.Len(t, requests, 1)
	assert.Equal(t, "Sm4ll!", requests[0].Password)
	assert.Equal(t, uint64(1), p.Stats().Issued)
}

func TestPipeline_RearmCancelsPreviousTimer(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	first := findArm(t, p.Dispatch(PasswordChanged{Value: "a"}), DebounceElapsedEvent)

	effects := p.Dispatch(PasswordChanged{Value: "ab"})
	require.Len(t, effects, 2)
	assert.Equal(t, CancelTimer{Fire: first.Fire}, effects[0])
}

func TestPipeline_ClearResetsImmediately(t *testing.T) {
	p := readyPipeline(t)

	// an analysis is in flight when the field is cleared
	req := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "C0rrect-Horse!"}))

	effects := p.Dispatch(PasswordChanged{Value: ""})
	for _, e := range effects {
		_, isReq := e.(RequestAnalysis)
		_, isArm := e.(ArmTimer)
		assert.False(t, isReq || isArm, "clearing must not schedule work, got %T", e)
	}

	s := p.State()
	assert.False(t, s.View.Visible)
	assert.False(t, s.Validation.AllChecksPassed)
	assert.False(t, p.CanSubmit())

	p.Dispatch(AnalysisCompleted{Seq: req.Seq, Result: strongResult()})
	assert.False(t, p.State().View.Visible, "late response must not resurrect the panels")
	assert.False(t, p.CanSubmit())
	assert.Equal(t, uint64(1), p.Stats().Stale)
}

func TestPipeline_OutOfOrderResponses(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	p.Dispatch(IdentifierChanged{Value: "alice"})

	reqAB := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "ab"}))
	reqABC := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "abc"}))
	assert.Greater(t, reqABC.Seq, reqAB.Seq)

	abc := analysis.Result{Score: 10, Strength: analysis.VeryWeak, Label: "Very Weak", Checks: analysis.Checks{analysis.Lowercase: true}}
	ab := strongResult()

	p.Dispatch(AnalysisCompleted{Seq: reqABC.Seq, Result: abc})
	p.Dispatch(AnalysisCompleted{Seq: reqAB.Seq, Result: ab})

	s := p.State()
	assert.Equal(t, "Very Weak", s.View.Label)
	assert.Equal(t, 10, s.View.Score)
	assert.False(t, s.SubmitEnabled)
	assert.Equal(t, uint64(1), p.Stats().Applied)
	assert.Equal(t, uint64(1), p.Stats().Stale)
}

func TestPipeline_AnalysisFailureKeepsLastView(t *testing.T) {
	p := readyPipeline(t)
	before := p.State().View

	req := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "C0rrect-Horse-2"}))
	p.Dispatch(AnalysisCompleted{Seq: req.Seq, Err: errors.New("connection refused")})

	assert.Equal(t, before, p.State().View)
	assert.Equal(t, uint64(1), p.Stats().Failed)
	assert.False(t, p.State().Notification.Visible, "analysis failures are not shown to the user")
}

func TestPipeline_AnalysisFailureBeforeAnyResult(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	req := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "abc"}))
	p.Dispatch(AnalysisCompleted{Seq: req.Seq, Err: errors.New("bad gateway")})

	assert.Equal(t, EmptyView(), p.State().View)
}

func TestPipeline_WeakPasswordScenario(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	p.Dispatch(IdentifierChanged{Value: "alice"})
	req := fireDebounce(t, p, p.Dispatch(PasswordChanged{Value: "Sm4ll!"}))
	p.Dispatch(AnalysisCompleted{Seq: req.Seq, Result: smallResult()})

	s := p.State()
	assert.Equal(t, "Weak", s.View.Label)
	assert.Equal(t, "⚠️", s.View.Icon)
	assert.True(t, s.Validation.IdentifierValid)
	assert.False(t, s.Validation.AllChecksPassed)
	assert.False(t, p.CanSubmit())
}

func TestPipeline_IdentifierEditRecomputesGate(t *testing.T) {
	p := readyPipeline(t)

	p.Dispatch(IdentifierChanged{Value: "al"})
	assert.False(t, p.CanSubmit())

	p.Dispatch(IdentifierChanged{Value: "  al  "})
	assert.False(t, p.CanSubmit())

	p.Dispatch(IdentifierChanged{Value: "bob"})
	assert.True(t, p.CanSubmit())
}

func TestPipeline_RegistrationSuccess(t *testing.T) {
	p := readyPipeline(t)

	effects := p.Dispatch(SubmitPressed{})
	require.Len(t, effects, 1)
	req := effects[0].(RequestRegistration)
	assert.Equal(t, RequestRegistration{Username: "alice", Password: "C0rrect-Horse"}, req)

	s := p.State()
	assert.True(t, s.Submitting)
	assert.False(t, s.SubmitEnabled)
	assert.Equal(t, WorkingLabel, s.SubmitLabel)

	effects = p.Dispatch(RegistrationCompleted{Outcome: analysis.Outcome{Success: true, Message: "Welcome"}})
	findArm(t, effects, NotificationExpiredEvent)

	s = p.State()
	assert.Equal(t, Notification{Message: "Welcome", Kind: KindSuccess, Visible: true}, s.Notification)
	assert.Empty(t, s.Password)
	assert.Empty(t, s.Identifier)
	assert.Equal(t, EmptyView(), s.View)
	assert.False(t, s.SubmitEnabled)
	assert.False(t, s.Submitting)
	assert.Equal(t, SubmitLabel, s.SubmitLabel)
}

func TestPipeline_RegistrationRejected(t *testing.T) {
	p := readyPipeline(t)
	p.Dispatch(SubmitPressed{})
	p.Dispatch(RegistrationCompleted{Outcome: analysis.Outcome{Success: false, Message: "Username taken"}})

	s := p.State()
	assert.Equal(t, Notification{Message: "Username taken", Kind: KindError, Visible: true}, s.Notification)
	assert.Equal(t, "alice", s.Identifier)
	assert.Equal(t, "C0rrect-Horse", s.Password)
	assert.True(t, s.View.Visible)
	assert.True(t, s.SubmitEnabled)
	assert.Equal(t, SubmitLabel, s.SubmitLabel)
}

func TestPipeline_RegistrationTransportError(t *testing.T) {
	p := readyPipeline(t)
	p.Dispatch(SubmitPressed{})
	p.Dispatch(RegistrationCompleted{Err: errors.New("dial tcp: connection refused")})

	s := p.State()
	assert.Equal(t, GenericFailure, s.Notification.Message)
	assert.Equal(t, KindError, s.Notification.Kind)
	assert.Equal(t, "C0rrect-Horse", s.Password)
	assert.True(t, s.SubmitEnabled)
}

func TestPipeline_SubmitRejectedByGate(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	p.Dispatch(IdentifierChanged{Value: "alice"})
	p.Dispatch(PasswordChanged{Value: "Sm4ll!"})

	assert.Empty(t, p.Dispatch(SubmitPressed{}))
	assert.Equal(t, uint64(0), p.Stats().Registrations)
}

func TestPipeline_SecondSubmitWhileInFlight(t *testing.T) {
	p := readyPipeline(t)
	require.Len(t, p.Dispatch(SubmitPressed{}), 1)
	assert.Empty(t, p.Dispatch(SubmitPressed{}))
}

func TestPipeline_EditDuringRegistrationKeepsSnapshot(t *testing.T) {
	p := readyPipeline(t)
	req := p.Dispatch(SubmitPressed{})[0].(RequestRegistration)

	p.Dispatch(PasswordChanged{Value: "something-else"})
	p.Dispatch(IdentifierChanged{Value: "mallory"})

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "C0rrect-Horse", req.Password)
}

func TestPipeline_StrayRegistrationCompletionIgnored(t *testing.T) {
	p := readyPipeline(t)
	assert.Empty(t, p.Dispatch(RegistrationCompleted{Outcome: analysis.Outcome{Success: true, Message: "Welcome"}}))
	assert.Equal(t, "C0rrect-Horse", p.State().Password)
}

func TestPipeline_NotificationReplacement(t *testing.T) {
	p := readyPipeline(t)

	p.Dispatch(SubmitPressed{})
	first := findArm(t, p.Dispatch(RegistrationCompleted{Outcome: analysis.Outcome{Message: "Username taken"}}), NotificationExpiredEvent)

	p.Dispatch(SubmitPressed{})
	effects := p.Dispatch(RegistrationCompleted{Err: errors.New("timeout")})
	second := findArm(t, effects, NotificationExpiredEvent)
	assert.Contains(t, effects, Effect(CancelTimer{Fire: first.Fire}))
	assert.Equal(t, DefaultNotificationTTL, second.After)

	// the superseded timer fires late and must not hide the newer message
	p.Dispatch(first.Fire)
	assert.True(t, p.State().Notification.Visible)
	assert.Equal(t, GenericFailure, p.State().Notification.Message)

	p.Dispatch(second.Fire)
	assert.False(t, p.State().Notification.Visible)
}

func TestPipeline_VisibilityToggle(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	p.Dispatch(VisibilityToggled{})
	assert.False(t, p.State().Masked)
	p.Dispatch(VisibilityToggled{})
	assert.True(t, p.State().Masked)
}

func TestPipeline_NilEvent(t *testing.T) {
	p := New(DefaultConfig(), testLogger())
	assert.Nil(t, p.Dispatch(nil))
}
