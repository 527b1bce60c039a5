package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/appengine-ltd/ghost-protocol/internal/challenge"
)

const (
	MaxWrongAnswers        = 5
	ExhaustionSanityCost   = 10
	defaultCheckpointTries = 3
)

var (
	ErrUnknownChallenge = errors.New("unknown challenge")
	ErrLocked           = errors.New("challenge is above the player's level")
	ErrPracticeOnly     = errors.New("practice challenges cannot be graded")
	ErrNotPractice      = errors.New("challenge is not a practice challenge")
	ErrGameOver         = errors.New("sanity depleted")
)

// Checkpointer persists a snapshot of the state.
type Checkpointer interface {
	Save(state *GameState) error
}

type Session struct {
	State *GameState

	catalog    *challenge.Catalog
	rng        *rand.Rand
	checkpoint Checkpointer
	retryable  func(error) bool
	newBackOff func() backoff.BackOff
	now        func() time.Time
	log        *logrus.Entry
}

type SessionOption func(*Session)

func WithCheckpointer(c Checkpointer) SessionOption {
	return func(s *Session) { s.checkpoint = c }
}

// WithRetryable limits checkpoint retries to errors the predicate accepts.
func WithRetryable(fn func(error) bool) SessionOption {
	return func(s *Session) { s.retryable = fn }
}

func WithBackOff(fn func() backoff.BackOff) SessionOption {
	return func(s *Session) { s.newBackOff = fn }
}

func WithRNG(r *rand.Rand) SessionOption {
	return func(s *Session) { s.rng = r }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func NewSession(state *GameState, catalog *challenge.Catalog, opts ...SessionOption) *Session {
	if state == nil {
		state = NewGameState("")
	}
	state.Normalize()
	if catalog == nil {
		catalog = challenge.Default()
	}
	s := &Session{
		State:     state,
		catalog:   catalog,
		retryable: func(error) bool { return true },
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultCheckpointTries)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = challenge.NewRNG(0)
	}
	s.log = logrus.WithFields(logrus.Fields{"component": "session", "profile": state.ProfileID})
	s.dropUnknownCompletions()
	return s
}

// dropUnknownCompletions removes completed ids the catalog does not grade, so
// the completed set never outgrows the catalog.
func (s *Session) dropUnknownCompletions() {
	for _, id := range s.State.CompletedIDs() {
		if c, ok := s.catalog.Find(id); ok && !c.Practice() {
			continue
		}
		delete(s.State.CompletedChallenges, id)
		s.log.WithField("challenge", id).Warn("dropped unknown completed challenge")
	}
}

func (s *Session) Catalog() *challenge.Catalog {
	return s.catalog
}

// UnlockedTier is the highest catalog tier the player may attempt.
func (s *Session) UnlockedTier() int {
	return min(s.State.CurrentLevel, challenge.MaxLevel)
}

func (s *Session) Available() []challenge.Challenge {
	return s.catalog.UpToLevel(s.UnlockedTier())
}

// Start opens a graded attempt. An empty difficulty asks the progression
// model for a recommendation.
func (s *Session) Start(id string, d challenge.Difficulty) (*Attempt, error) {
	if s.State.IsGameOver() {
		return nil, ErrGameOver
	}
	c, ok := s.catalog.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChallenge, id)
	}
	if c.Practice() {
		return nil, fmt.Errorf("%w: %s", ErrPracticeOnly, id)
	}
	if c.Level > s.UnlockedTier() {
		return nil, fmt.Errorf("%w: %s needs level %d", ErrLocked, id, c.Level)
	}
	if d == "" {
		d = s.State.RecommendDifficulty(c)
	}
	inst, err := c.WithDifficulty(d, s.rng)
	if err != nil {
		return nil, err
	}
	return s.open(inst, false), nil
}

// Practice opens an attempt at a generated challenge. An empty id picks one
// at random.
func (s *Session) Practice(id string) (*Attempt, error) {
	if s.State.IsGameOver() {
		return nil, ErrGameOver
	}
	var c challenge.Challenge
	if strings.TrimSpace(id) == "" {
		dyn := s.catalog.Dynamic()
		if len(dyn) == 0 {
			return nil, fmt.Errorf("%w: no practice challenges", ErrUnknownChallenge)
		}
		c = dyn[s.rng.IntN(len(dyn))]
	} else {
		found, ok := s.catalog.Find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownChallenge, id)
		}
		if !found.Practice() {
			return nil, fmt.Errorf("%w: %s", ErrNotPractice, id)
		}
		c = found
	}
	inst, err := c.WithDifficulty(challenge.Standard, s.rng)
	if err != nil {
		return nil, err
	}
	return s.open(inst, true), nil
}

func (s *Session) open(inst challenge.Instance, practice bool) *Attempt {
	s.State.Analytics.RecordAttempt(inst.ChallengeID)
	return &Attempt{
		session:  s,
		Instance: inst,
		practice: practice,
		started:  s.now(),
	}
}

// Checkpoint saves the state, retrying transient failures.
func (s *Session) Checkpoint() error {
	if s.checkpoint == nil {
		return nil
	}
	op := func() error {
		err := s.checkpoint.Save(s.State)
		if err != nil && !s.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.log.WithError(err).WithField("retry_in", wait).Warn("checkpoint failed, retrying")
	}
	if err := backoff.RetryNotify(op, s.newBackOff(), notify); err != nil {
		s.log.WithError(err).Error("checkpoint failed")
		return err
	}
	return nil
}

type Result struct {
	Correct         bool
	XP              int
	SanityCost      int
	FirstCompletion bool
	LeveledUp       bool
	Exhausted       bool
	GameOver        bool
	AttemptsLeft    int
	CheckpointErr   error
}

// Attempt is one run at a challenge instance: at most MaxWrongAnswers wrong
// answers, hints unlocked one at a time.
type Attempt struct {
	Instance challenge.Instance

	session  *Session
	practice bool
	wrong    int
	hints    int
	started  time.Time
	done     bool
}

func (a *Attempt) Practice() bool {
	return a.practice
}

func (a *Attempt) Prompt() string {
	return a.Instance.Prompt
}

func (a *Attempt) Done() bool {
	return a.done
}

func (a *Attempt) AttemptsLeft() int {
	if a.done {
		return 0
	}
	return MaxWrongAnswers - a.wrong
}

// Hints returns the hints unlocked so far.
func (a *Attempt) Hints() []string {
	return append([]string(nil), a.Instance.Hints[:a.hints]...)
}

// Hint unlocks the next hint. ok is false once every hint is shown.
func (a *Attempt) Hint() (hint string, ok bool) {
	if a.hints >= len(a.Instance.Hints) {
		return "", false
	}
	hint = a.Instance.Hints[a.hints]
	a.hints++
	a.session.State.Analytics.RecordHint(a.Instance.ChallengeID)
	return hint, true
}

// Skip abandons the attempt without a sanity penalty.
func (a *Attempt) Skip() {
	if a.done {
		return
	}
	a.done = true
	a.session.State.Analytics.AddPlaytime(a.session.now().Sub(a.started))
}

// Submit checks raw against the instance. Blank input is ignored and does
// not use up an attempt.
func (a *Attempt) Submit(raw string) Result {
	if a.done {
		return Result{GameOver: a.session.State.IsGameOver()}
	}
	if strings.TrimSpace(raw) == "" {
		return Result{AttemptsLeft: a.AttemptsLeft()}
	}
	s := a.session
	st := s.State
	levelBefore := st.CurrentLevel
	var res Result

	if a.Instance.Validate(raw) {
		a.done = true
		res.Correct = true
		elapsed := s.now().Sub(a.started)
		if a.practice {
			res.XP = a.Instance.XPReward / 2
			st.AddExperience(res.XP)
		} else {
			res.FirstCompletion = st.CompleteChallenge(a.Instance.ChallengeID, a.Instance.XPReward)
			if res.FirstCompletion {
				res.XP = a.Instance.XPReward
			}
			res.SanityCost = a.Instance.SanityCost
			st.ModifySanity(-res.SanityCost)
			st.Analytics.RecordCompletionTime(a.Instance.ChallengeID, elapsed)
		}
		st.Analytics.RecordOutcome(true)
		st.Analytics.AddPlaytime(elapsed)
	} else {
		a.wrong++
		res.AttemptsLeft = MaxWrongAnswers - a.wrong
		if a.wrong < MaxWrongAnswers {
			return res
		}
		a.done = true
		res.Exhausted = true
		if !a.practice {
			res.SanityCost = ExhaustionSanityCost
			st.ModifySanity(-ExhaustionSanityCost)
		}
		st.Analytics.RecordOutcome(false)
		st.Analytics.AddPlaytime(s.now().Sub(a.started))
	}

	res.LeveledUp = st.CurrentLevel > levelBefore
	res.GameOver = st.IsGameOver()
	if res.LeveledUp {
		s.log.WithField("level", st.CurrentLevel).Info("level up")
	}
	if res.GameOver {
		s.log.Info("sanity depleted")
	}
	if res.LeveledUp || res.GameOver {
		res.CheckpointErr = s.Checkpoint()
	}
	return res
}
