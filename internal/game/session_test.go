package game

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/appengine-ltd/ghost-protocol/internal/challenge"
)

type recordingCheckpointer struct {
	calls int
	fail  int
	err   error
	last  *GameState
}

func (r *recordingCheckpointer) Save(state *GameState) error {
	r.calls++
	if r.calls <= r.fail {
		return r.err
	}
	r.last = state.Clone()
	return nil
}

func newTestSession(t *testing.T, state *GameState, opts ...SessionOption) *Session {
	t.Helper()
	base := []SessionOption{
		WithRNG(challenge.NewRNG(42)),
		WithBackOff(func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
		}),
	}
	return NewSession(state, challenge.Default(), append(base, opts...)...)
}

func TestSubmitCorrectAnswerAppliesRewardAndCost(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	a, err := s.Start("welcome", challenge.Standard)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	res := a.Submit("Welcome to the Ghost Protocol")
	if !res.Correct || !res.FirstCompletion {
		t.Fatalf("expected correct first completion, got %+v", res)
	}
	if res.XP != 50 || s.State.Experience != 50 {
		t.Fatalf("expected 50 xp, got result=%d state=%d", res.XP, s.State.Experience)
	}
	if s.State.Sanity != 95 {
		t.Fatalf("expected sanity 95, got %d", s.State.Sanity)
	}
	if !s.State.HasCompleted("welcome") {
		t.Fatalf("expected welcome to be completed")
	}
	if !a.Done() || a.AttemptsLeft() != 0 {
		t.Fatalf("expected attempt to be closed")
	}
}

func TestRepeatCompletionCostsSanityButGrantsNoXP(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	for i := 0; i < 2; i++ {
		a, err := s.Start("port_scan", challenge.Standard)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		a.Submit("6666")
	}
	if s.State.Experience != 50 {
		t.Fatalf("expected xp from first completion only, got %d", s.State.Experience)
	}
	if s.State.Sanity != 90 {
		t.Fatalf("expected two sanity costs, got %d", s.State.Sanity)
	}
}

func TestWrongAnswersExhaustAttempt(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	a, err := s.Start("welcome", challenge.Standard)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 1; i < MaxWrongAnswers; i++ {
		res := a.Submit("nope")
		if res.Correct || res.Exhausted {
			t.Fatalf("attempt %d: unexpected result %+v", i, res)
		}
		if res.AttemptsLeft != MaxWrongAnswers-i {
			t.Fatalf("attempt %d: expected %d left, got %d", i, MaxWrongAnswers-i, res.AttemptsLeft)
		}
	}
	res := a.Submit("still no")
	if !res.Exhausted || res.SanityCost != ExhaustionSanityCost {
		t.Fatalf("expected exhaustion penalty, got %+v", res)
	}
	if s.State.Sanity != MaxSanity-ExhaustionSanityCost {
		t.Fatalf("expected sanity %d, got %d", MaxSanity-ExhaustionSanityCost, s.State.Sanity)
	}
	if late := a.Submit("Welcome to the Ghost Protocol"); late.Correct {
		t.Fatalf("closed attempt must not accept answers")
	}
	if s.State.HasCompleted("welcome") {
		t.Fatalf("exhausted attempt must not complete")
	}
}

func TestBlankSubmissionDoesNotUseAttempt(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	a, _ := s.Start("welcome", challenge.Standard)
	a.Submit("   ")
	if a.AttemptsLeft() != MaxWrongAnswers {
		t.Fatalf("blank input consumed an attempt")
	}
}

func TestHintsUnlockInOrder(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	a, _ := s.Start("welcome", challenge.Standard)
	if len(a.Hints()) != 0 {
		t.Fatalf("expected no hints before asking")
	}
	first, ok := a.Hint()
	if !ok || first != a.Instance.Hints[0] {
		t.Fatalf("expected first hint, got %q", first)
	}
	if _, ok := a.Hint(); !ok {
		t.Fatalf("expected second hint")
	}
	if _, ok := a.Hint(); ok {
		t.Fatalf("expected hints to run out")
	}
	if got := s.State.Analytics.HintsUsed["welcome"]; got != 2 {
		t.Fatalf("expected 2 hints recorded, got %d", got)
	}
	if len(a.Hints()) != 2 {
		t.Fatalf("expected both hints unlocked, got %d", len(a.Hints()))
	}
}

func TestStartRejectsLockedAndPracticeChallenges(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	if _, err := s.Start("final_protocol", challenge.Standard); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if _, err := s.Start("dynamic_rot", challenge.Standard); !errors.Is(err, ErrPracticeOnly) {
		t.Fatalf("expected practice-only error, got %v", err)
	}
	if _, err := s.Start("nope", challenge.Standard); !errors.Is(err, ErrUnknownChallenge) {
		t.Fatalf("expected unknown challenge error, got %v", err)
	}
	if _, err := s.Start("port_scan", challenge.Expert); !errors.Is(err, challenge.ErrUnknownDifficulty) {
		t.Fatalf("expected unknown difficulty error, got %v", err)
	}
	if _, err := s.Practice("welcome"); !errors.Is(err, ErrNotPractice) {
		t.Fatalf("expected not-practice error, got %v", err)
	}
}

func TestAvailableFollowsLevel(t *testing.T) {
	state := NewGameState("ghost")
	s := newTestSession(t, state)
	if got := len(s.Available()); got != len(challenge.Default().ForLevel(0)) {
		t.Fatalf("expected only tier 0, got %d challenges", got)
	}
	state.AddExperience(1000)
	if got := len(s.Available()); got != challenge.Default().Graded() {
		t.Fatalf("expected every graded challenge at max level, got %d", got)
	}
}

func TestPracticeNeverCompletes(t *testing.T) {
	s := newTestSession(t, NewGameState("ghost"))
	a, err := s.Practice("dynamic_base64")
	if err != nil {
		t.Fatalf("practice: %v", err)
	}
	var answer string
	for _, field := range strings.Fields(a.Prompt()) {
		if b, err := base64.StdEncoding.DecodeString(field); err == nil && len(b) > 0 {
			answer = string(b)
		}
	}
	if answer == "" {
		t.Fatalf("could not find encoded payload in %q", a.Prompt())
	}
	res := a.Submit(answer)
	if !res.Correct {
		t.Fatalf("expected decoded payload %q to be accepted", answer)
	}
	if res.XP != 17 || s.State.Experience != 17 {
		t.Fatalf("expected half reward 17, got result=%d state=%d", res.XP, s.State.Experience)
	}
	if len(s.State.CompletedChallenges) != 0 {
		t.Fatalf("practice must not touch the completed set")
	}
	if s.State.Sanity != MaxSanity {
		t.Fatalf("practice must not cost sanity, got %d", s.State.Sanity)
	}
}

func TestLevelUpTriggersCheckpoint(t *testing.T) {
	cp := &recordingCheckpointer{}
	s := newTestSession(t, NewGameState("ghost"), WithCheckpointer(cp))

	a, _ := s.Start("welcome", challenge.Standard)
	a.Submit("welcome to the ghost protocol")
	if cp.calls != 0 {
		t.Fatalf("no checkpoint expected before level up")
	}
	b, _ := s.Start("port_scan", challenge.Standard)
	res := b.Submit("6666")
	if !res.LeveledUp {
		t.Fatalf("expected level up at 100 xp, got %+v", res)
	}
	if cp.calls != 1 || cp.last == nil || cp.last.CurrentLevel != 1 {
		t.Fatalf("expected one checkpoint at level 1, got calls=%d", cp.calls)
	}
}

func TestGameOverTriggersCheckpoint(t *testing.T) {
	state := NewGameState("ghost")
	state.Sanity = 5
	cp := &recordingCheckpointer{}
	s := newTestSession(t, state, WithCheckpointer(cp))

	a, _ := s.Start("welcome", challenge.Standard)
	res := a.Submit("welcome to the ghost protocol")
	if !res.GameOver {
		t.Fatalf("expected game over, got %+v", res)
	}
	if cp.calls != 1 {
		t.Fatalf("expected checkpoint on game over, got %d", cp.calls)
	}
	if _, err := s.Start("port_scan", challenge.Standard); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected game over error, got %v", err)
	}
}

func TestCheckpointRetriesTransientFailures(t *testing.T) {
	cp := &recordingCheckpointer{fail: 2, err: errors.New("disk busy")}
	s := newTestSession(t, NewGameState("ghost"), WithCheckpointer(cp))
	if err := s.Checkpoint(); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if cp.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", cp.calls)
	}
}

func TestCheckpointStopsOnPermanentFailure(t *testing.T) {
	permanent := errors.New("read-only filesystem")
	cp := &recordingCheckpointer{fail: 10, err: permanent}
	s := newTestSession(t, NewGameState("ghost"),
		WithCheckpointer(cp),
		WithRetryable(func(err error) bool { return !errors.Is(err, permanent) }),
	)
	if err := s.Checkpoint(); !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if cp.calls != 1 {
		t.Fatalf("expected no retries, got %d calls", cp.calls)
	}
}

func TestCompletionTimeRecorded(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newTestSession(t, NewGameState("ghost"), WithClock(clock))
	a, _ := s.Start("port_scan", challenge.Standard)
	now = now.Add(42 * time.Second)
	a.Submit("6666")
	if got := s.State.Analytics.CompletionSeconds["port_scan"]; got != 42 {
		t.Fatalf("expected 42s completion, got %v", got)
	}
	if s.State.Analytics.TotalPlaySeconds != 42 {
		t.Fatalf("expected 42s playtime, got %d", s.State.Analytics.TotalPlaySeconds)
	}
}

func TestCompletedNeverExceedsCatalog(t *testing.T) {
	state := NewGameState("ghost")
	state.AddExperience(1000)
	s := newTestSession(t, state)
	for _, c := range s.Available() {
		a, err := s.Start(c.ID, challenge.Standard)
		if err != nil {
			t.Fatalf("start %s: %v", c.ID, err)
		}
		a.Skip()
	}
	if len(state.CompletedChallenges) > challenge.Default().Graded() {
		t.Fatalf("completed set exceeds catalog")
	}
}

func TestNewSessionDropsUnknownCompletions(t *testing.T) {
	state := NewGameState("ghost")
	state.CompleteChallenge("welcome", 50)
	state.CompleteChallenge("retired_challenge", 10)
	state.CompleteChallenge("dynamic_base64", 10)

	s := newTestSession(t, state)
	if got := s.State.CompletedIDs(); len(got) != 1 || got[0] != "welcome" {
		t.Fatalf("expected only welcome kept, got %v", got)
	}
	if s.State.Experience != 70 {
		t.Fatalf("experience must never decrease, got %d", s.State.Experience)
	}
}
