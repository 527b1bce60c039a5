package game

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxSanity         = 100
	MaxLevel          = 10
	DefaultPlayerName = "Operator"
)

// levelThresholds[i] is the experience needed to reach level i.
var levelThresholds = [MaxLevel + 1]int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}

type GameState struct {
	ProfileID           string
	PlayerName          string
	Experience          int
	CurrentLevel        int
	Sanity              int
	TutorialCompleted   bool
	CompletedChallenges map[string]struct{}
	DiscoveredSecrets   map[string]struct{}
	Preferences         Preferences
	Analytics           Analytics
}

func NewGameState(name string) *GameState {
	s := &GameState{
		ProfileID:           uuid.NewString(),
		PlayerName:          name,
		Sanity:              MaxSanity,
		CompletedChallenges: map[string]struct{}{},
		DiscoveredSecrets:   map[string]struct{}{},
		Preferences:         DefaultPreferences(),
	}
	s.Normalize()
	return s
}

func LevelForExperience(xp int) int {
	level := 0
	for i, threshold := range levelThresholds {
		if xp >= threshold {
			level = i
		}
	}
	return level
}

// ExperienceForLevel returns the threshold for level, or -1 past the cap.
func ExperienceForLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return -1
	}
	return levelThresholds[level]
}

// CompleteChallenge records id as completed and awards xp on the first
// completion only. It reports whether this was the first completion.
func (s *GameState) CompleteChallenge(id string, xp int) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if s.CompletedChallenges == nil {
		s.CompletedChallenges = map[string]struct{}{}
	}
	if _, done := s.CompletedChallenges[id]; done {
		return false
	}
	s.CompletedChallenges[id] = struct{}{}
	s.AddExperience(xp)
	return true
}

// AddExperience adds a non-negative amount, saturating at math.MaxInt, and
// reports whether the cached level rose.
func (s *GameState) AddExperience(xp int) bool {
	if xp <= 0 {
		return false
	}
	if s.Experience > math.MaxInt-xp {
		s.Experience = math.MaxInt
	} else {
		s.Experience += xp
	}
	before := s.CurrentLevel
	s.CurrentLevel = max(s.CurrentLevel, LevelForExperience(s.Experience))
	return s.CurrentLevel > before
}

func (s *GameState) ModifySanity(delta int) {
	switch {
	case delta >= MaxSanity:
		s.Sanity = MaxSanity
	case delta <= -MaxSanity:
		s.Sanity = 0
	default:
		s.Sanity = clamp(s.Sanity+delta, 0, MaxSanity)
	}
}

func (s *GameState) IsGameOver() bool {
	return s.Sanity <= 0
}

func (s *GameState) HasCompleted(id string) bool {
	_, ok := s.CompletedChallenges[strings.TrimSpace(id)]
	return ok
}

// DiscoverSecret is idempotent; it reports whether key was new.
func (s *GameState) DiscoverSecret(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if s.DiscoveredSecrets == nil {
		s.DiscoveredSecrets = map[string]struct{}{}
	}
	if _, ok := s.DiscoveredSecrets[key]; ok {
		return false
	}
	s.DiscoveredSecrets[key] = struct{}{}
	return true
}

func (s *GameState) CompletedIDs() []string {
	return sortedKeys(s.CompletedChallenges)
}

func (s *GameState) SecretIDs() []string {
	return sortedKeys(s.DiscoveredSecrets)
}

// NextLevelProgress returns experience earned past the current threshold and
// the span to the next one. At the level cap the span is zero.
func (s *GameState) NextLevelProgress() (int, int) {
	if s.CurrentLevel >= MaxLevel {
		return 0, 0
	}
	base := levelThresholds[s.CurrentLevel]
	next := levelThresholds[s.CurrentLevel+1]
	return clamp(s.Experience-base, 0, next-base), next - base
}

// Normalize repairs a state assembled from outside input: nil sets, a blank
// name, out-of-range sanity, a level behind the experience curve.
func (s *GameState) Normalize() {
	s.PlayerName = strings.TrimSpace(s.PlayerName)
	if s.PlayerName == "" {
		s.PlayerName = DefaultPlayerName
	}
	if strings.TrimSpace(s.ProfileID) == "" {
		s.ProfileID = uuid.NewString()
	}
	if s.Experience < 0 {
		s.Experience = 0
	}
	s.Sanity = clamp(s.Sanity, 0, MaxSanity)
	s.CurrentLevel = clamp(max(s.CurrentLevel, LevelForExperience(s.Experience)), 0, MaxLevel)
	if s.CompletedChallenges == nil {
		s.CompletedChallenges = map[string]struct{}{}
	}
	if s.DiscoveredSecrets == nil {
		s.DiscoveredSecrets = map[string]struct{}{}
	}
	s.Preferences.Normalize()
	s.Analytics.Normalize()
}

func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.CompletedChallenges = cloneSet(s.CompletedChallenges)
	out.DiscoveredSecrets = cloneSet(s.DiscoveredSecrets)
	out.Preferences = s.Preferences.clone()
	out.Analytics = s.Analytics.clone()
	return &out
}

func SetOf(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func cloneSet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func sortedKeys[V any](in map[string]V) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clamp(number, lo, hi int) int {
	if number < lo {
		return lo
	}
	if number > hi {
		return hi
	}
	return number
}
