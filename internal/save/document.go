package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appengine-ltd/ghost-protocol/internal/game"
)

var (
	ErrNotFound  = errors.New("save not found")
	ErrCorrupt   = errors.New("save data corrupt")
	ErrIO        = errors.New("save i/o failure")
	ErrSlotRange = errors.New("save slot out of range")
)

// CurrentVersion is the schema written by this build. Older documents are
// upgraded on load by the steps in migrate.go.
const CurrentVersion = 3

type Document struct {
	Version             int            `json:"version"`
	ProfileID           string         `json:"profile_id"`
	PlayerName          string         `json:"player_name"`
	Experience          int            `json:"experience"`
	CurrentLevel        int            `json:"current_level"`
	Sanity              int            `json:"sanity"`
	TutorialCompleted   bool           `json:"tutorial_completed"`
	CompletedChallenges []string       `json:"completed_challenges"`
	DiscoveredSecrets   []string       `json:"discovered_secrets"`
	Preferences         preferencesDoc `json:"preferences"`
	Analytics           analyticsDoc   `json:"analytics"`
	SavedAt             time.Time      `json:"saved_at,omitempty"`
}

type preferencesDoc struct {
	DifficultyScaling string            `json:"difficulty_scaling,omitempty"`
	HintVerbosity     string            `json:"hint_verbosity,omitempty"`
	Theme             string            `json:"theme,omitempty"`
	FontSize          int               `json:"font_size,omitempty"`
	AnimationSpeed    string            `json:"animation_speed,omitempty"`
	AudioEnabled      *bool             `json:"audio_enabled,omitempty"`
	Aliases           map[string]string `json:"aliases,omitempty"`
}

type analyticsDoc struct {
	Attempts          map[string]int     `json:"attempts,omitempty"`
	HintsUsed         map[string]int     `json:"hints_used,omitempty"`
	CompletionSeconds map[string]float64 `json:"completion_seconds,omitempty"`
	RecentOutcomes    []bool             `json:"recent_outcomes,omitempty"`
	TotalPlaySeconds  int64              `json:"total_play_seconds,omitempty"`
	LearningStreak    int                `json:"learning_streak,omitempty"`
	LongestStreak     int                `json:"longest_streak,omitempty"`
}

func documentFromState(s *game.GameState, savedAt time.Time) Document {
	audio := s.Preferences.AudioEnabled
	return Document{
		Version:             CurrentVersion,
		ProfileID:           s.ProfileID,
		PlayerName:          s.PlayerName,
		Experience:          s.Experience,
		CurrentLevel:        s.CurrentLevel,
		Sanity:              s.Sanity,
		TutorialCompleted:   s.TutorialCompleted,
		CompletedChallenges: s.CompletedIDs(),
		DiscoveredSecrets:   s.SecretIDs(),
		Preferences: preferencesDoc{
			DifficultyScaling: string(s.Preferences.DifficultyScaling),
			HintVerbosity:     string(s.Preferences.HintVerbosity),
			Theme:             s.Preferences.Theme,
			FontSize:          s.Preferences.FontSize,
			AnimationSpeed:    string(s.Preferences.AnimationSpeed),
			AudioEnabled:      &audio,
			Aliases:           s.Preferences.Aliases,
		},
		Analytics: analyticsDoc{
			Attempts:          s.Analytics.Attempts,
			HintsUsed:         s.Analytics.HintsUsed,
			CompletionSeconds: s.Analytics.CompletionSeconds,
			RecentOutcomes:    s.Analytics.RecentOutcomes,
			TotalPlaySeconds:  s.Analytics.TotalPlaySeconds,
			LearningStreak:    s.Analytics.LearningStreak,
			LongestStreak:     s.Analytics.LongestStreak,
		},
		SavedAt: savedAt.UTC(),
	}
}

func (d Document) state() *game.GameState {
	prefs := game.Preferences{
		DifficultyScaling: game.DifficultyScaling(d.Preferences.DifficultyScaling),
		HintVerbosity:     game.HintVerbosity(d.Preferences.HintVerbosity),
		Theme:             d.Preferences.Theme,
		FontSize:          d.Preferences.FontSize,
		AnimationSpeed:    game.AnimationSpeed(d.Preferences.AnimationSpeed),
		AudioEnabled:      d.Preferences.AudioEnabled == nil || *d.Preferences.AudioEnabled,
		Aliases:           d.Preferences.Aliases,
	}
	s := &game.GameState{
		ProfileID:           d.ProfileID,
		PlayerName:          d.PlayerName,
		Experience:          d.Experience,
		CurrentLevel:        d.CurrentLevel,
		Sanity:              d.Sanity,
		TutorialCompleted:   d.TutorialCompleted,
		CompletedChallenges: game.SetOf(d.CompletedChallenges...),
		DiscoveredSecrets:   game.SetOf(d.DiscoveredSecrets...),
		Preferences:         prefs,
		Analytics: game.Analytics{
			Attempts:          d.Analytics.Attempts,
			HintsUsed:         d.Analytics.HintsUsed,
			CompletionSeconds: d.Analytics.CompletionSeconds,
			RecentOutcomes:    d.Analytics.RecentOutcomes,
			TotalPlaySeconds:  d.Analytics.TotalPlaySeconds,
			LearningStreak:    d.Analytics.LearningStreak,
			LongestStreak:     d.Analytics.LongestStreak,
		},
	}
	s.Normalize()
	return s
}

// Encode renders the state as a current-version document.
func Encode(s *game.GameState, savedAt time.Time) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil state", ErrCorrupt)
	}
	snapshot := s.Clone()
	snapshot.Normalize()
	return json.MarshalIndent(documentFromState(snapshot, savedAt), "", "  ")
}

// Decode parses a document of any supported version. Every failure wraps
// ErrCorrupt.
func Decode(data []byte) (*game.GameState, error) {
	doc, _, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.state(), nil
}

// decodeDocument returns the upgraded document and the version it was
// stored as.
func decodeDocument(data []byte) (Document, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, 0, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	raw, err := parseRaw(data)
	if err != nil {
		return Document{}, 0, err
	}
	stored, err := migrate(raw)
	if err != nil {
		return Document{}, 0, err
	}
	upgraded, err := json.Marshal(raw)
	if err != nil {
		return Document{}, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var doc Document
	if err := json.Unmarshal(upgraded, &doc); err != nil {
		return Document{}, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return doc, stored, nil
}

func parseRaw(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrCorrupt)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrCorrupt)
	}
	return raw, nil
}
