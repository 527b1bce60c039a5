package game

import (
	"math"
	"testing"
)

func TestNewGameStateDefaults(t *testing.T) {
	s := NewGameState("  ")
	if s.PlayerName != DefaultPlayerName {
		t.Fatalf("expected default name, got %q", s.PlayerName)
	}
	if s.Sanity != MaxSanity {
		t.Fatalf("expected full sanity, got %d", s.Sanity)
	}
	if s.ProfileID == "" {
		t.Fatalf("expected profile id to be assigned")
	}
	if s.Preferences.DifficultyScaling != ScalingAdaptive {
		t.Fatalf("expected adaptive scaling by default, got %s", s.Preferences.DifficultyScaling)
	}
}

func TestLevelCurve(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{xp: 0, want: 0},
		{xp: 99, want: 0},
		{xp: 100, want: 1},
		{xp: 450, want: 4},
		{xp: 1000, want: 10},
		{xp: math.MaxInt, want: 10},
		{xp: -5, want: 0},
	}
	for _, tc := range tests {
		if got := LevelForExperience(tc.xp); got != tc.want {
			t.Fatalf("LevelForExperience(%d)=%d want=%d", tc.xp, got, tc.want)
		}
	}
	if ExperienceForLevel(3) != 300 || ExperienceForLevel(11) != -1 {
		t.Fatalf("unexpected thresholds")
	}
}

func TestCompleteChallengeIsIdempotent(t *testing.T) {
	s := NewGameState("ghost")
	if !s.CompleteChallenge("welcome", 50) {
		t.Fatalf("expected first completion")
	}
	if s.CompleteChallenge("welcome", 50) {
		t.Fatalf("expected repeat completion to be reported as not first")
	}
	if s.Experience != 50 {
		t.Fatalf("expected xp 50 after repeat, got %d", s.Experience)
	}
	if len(s.CompletedChallenges) != 1 {
		t.Fatalf("expected one completed id, got %d", len(s.CompletedChallenges))
	}
	if s.CompleteChallenge("   ", 50) {
		t.Fatalf("blank id must not complete")
	}
}

func TestExperienceAndLevelNeverDecrease(t *testing.T) {
	s := NewGameState("ghost")
	prevXP, prevLevel := 0, 0
	rewards := []int{50, -20, 0, 75, math.MinInt, 300, math.MaxInt, 10}
	for i, xp := range rewards {
		s.AddExperience(xp)
		if s.Experience < prevXP {
			t.Fatalf("step %d: xp decreased %d -> %d", i, prevXP, s.Experience)
		}
		if s.CurrentLevel < prevLevel {
			t.Fatalf("step %d: level decreased %d -> %d", i, prevLevel, s.CurrentLevel)
		}
		prevXP, prevLevel = s.Experience, s.CurrentLevel
	}
	if s.Experience != math.MaxInt {
		t.Fatalf("expected saturated xp, got %d", s.Experience)
	}
	if s.CurrentLevel != MaxLevel {
		t.Fatalf("expected max level, got %d", s.CurrentLevel)
	}
}

func TestAddExperienceReportsLevelUp(t *testing.T) {
	s := NewGameState("ghost")
	if s.AddExperience(99) {
		t.Fatalf("99 xp should not level up")
	}
	if !s.AddExperience(1) {
		t.Fatalf("100 xp should level up")
	}
	if s.CurrentLevel != 1 {
		t.Fatalf("expected level 1, got %d", s.CurrentLevel)
	}
}

func TestSanityStaysInBounds(t *testing.T) {
	s := NewGameState("ghost")
	deltas := []int{-30, 500, -1, math.MinInt, 7, math.MaxInt, -99, -2, 40}
	for _, d := range deltas {
		s.ModifySanity(d)
		if s.Sanity < 0 || s.Sanity > MaxSanity {
			t.Fatalf("sanity out of bounds after %d: %d", d, s.Sanity)
		}
	}
	s.ModifySanity(-MaxSanity)
	if !s.IsGameOver() {
		t.Fatalf("expected game over at zero sanity")
	}
}

func TestDiscoverSecretIdempotent(t *testing.T) {
	s := NewGameState("ghost")
	if !s.DiscoverSecret("konami") || s.DiscoverSecret("konami") {
		t.Fatalf("expected only first discovery to report new")
	}
	if got := s.SecretIDs(); len(got) != 1 || got[0] != "konami" {
		t.Fatalf("unexpected secrets %v", got)
	}
}

func TestNormalizeRepairsExternalState(t *testing.T) {
	s := &GameState{Experience: 350, CurrentLevel: 1, Sanity: 250}
	s.Normalize()
	if s.CurrentLevel != 3 {
		t.Fatalf("expected level recomputed to 3, got %d", s.CurrentLevel)
	}
	if s.Sanity != MaxSanity {
		t.Fatalf("expected clamped sanity, got %d", s.Sanity)
	}
	if s.CompletedChallenges == nil || s.Preferences.Aliases == nil || s.Analytics.Attempts == nil {
		t.Fatalf("expected nil collections to be initialised")
	}

	ahead := &GameState{Experience: 0, CurrentLevel: 4, Sanity: 10}
	ahead.Normalize()
	if ahead.CurrentLevel != 4 {
		t.Fatalf("cached level must not drop, got %d", ahead.CurrentLevel)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewGameState("ghost")
	s.CompleteChallenge("welcome", 50)
	_ = s.AddAlias("s", "stats")
	s.Analytics.RecordOutcome(true)

	c := s.Clone()
	c.CompleteChallenge("port_scan", 50)
	c.Preferences.Aliases["q"] = "quit"
	c.Analytics.RecentOutcomes[0] = false

	if s.HasCompleted("port_scan") {
		t.Fatalf("clone shares completed set")
	}
	if _, ok := s.Preferences.Aliases["q"]; ok {
		t.Fatalf("clone shares alias map")
	}
	if !s.Analytics.RecentOutcomes[0] {
		t.Fatalf("clone shares outcome slice")
	}
}

func TestNextLevelProgress(t *testing.T) {
	s := NewGameState("ghost")
	s.AddExperience(150)
	got, span := s.NextLevelProgress()
	if got != 50 || span != 100 {
		t.Fatalf("expected 50/100, got %d/%d", got, span)
	}
	s.AddExperience(5000)
	if got, span := s.NextLevelProgress(); got != 0 || span != 0 {
		t.Fatalf("expected no progress at cap, got %d/%d", got, span)
	}
}

func TestCompletionThenSanityCollapse(t *testing.T) {
	s := NewGameState("ghost")
	s.CompleteChallenge("c1", 50)
	if s.Experience != 50 {
		t.Fatalf("expected 50 xp, got %d", s.Experience)
	}
	if len(s.CompletedChallenges) != 1 || !s.HasCompleted("c1") {
		t.Fatalf("expected only c1 completed, got %v", s.CompletedIDs())
	}
	s.ModifySanity(-150)
	if s.Sanity != 0 || !s.IsGameOver() {
		t.Fatalf("expected game over at zero sanity, got %d", s.Sanity)
	}
}
