package game

import (
	"strings"
	"time"
)

const recentOutcomeWindow = 10

type Analytics struct {
	Attempts          map[string]int
	HintsUsed         map[string]int
	CompletionSeconds map[string]float64
	RecentOutcomes    []bool
	TotalPlaySeconds  int64
	LearningStreak    int
	LongestStreak     int
}

func (a *Analytics) Normalize() {
	if a.Attempts == nil {
		a.Attempts = map[string]int{}
	}
	if a.HintsUsed == nil {
		a.HintsUsed = map[string]int{}
	}
	if a.CompletionSeconds == nil {
		a.CompletionSeconds = map[string]float64{}
	}
	if len(a.RecentOutcomes) > recentOutcomeWindow {
		a.RecentOutcomes = append([]bool(nil), a.RecentOutcomes[len(a.RecentOutcomes)-recentOutcomeWindow:]...)
	}
	a.TotalPlaySeconds = max(a.TotalPlaySeconds, 0)
	a.LearningStreak = max(a.LearningStreak, 0)
	a.LongestStreak = max(a.LongestStreak, a.LearningStreak)
}

func (a Analytics) clone() Analytics {
	out := a
	out.Attempts = make(map[string]int, len(a.Attempts))
	for k, v := range a.Attempts {
		out.Attempts[k] = v
	}
	out.HintsUsed = make(map[string]int, len(a.HintsUsed))
	for k, v := range a.HintsUsed {
		out.HintsUsed[k] = v
	}
	out.CompletionSeconds = make(map[string]float64, len(a.CompletionSeconds))
	for k, v := range a.CompletionSeconds {
		out.CompletionSeconds[k] = v
	}
	out.RecentOutcomes = append([]bool(nil), a.RecentOutcomes...)
	return out
}

func (a *Analytics) RecordAttempt(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	a.Normalize()
	a.Attempts[id]++
}

func (a *Analytics) RecordHint(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	a.Normalize()
	a.HintsUsed[id]++
}

// RecordOutcome appends to the rolling window and updates the streak.
func (a *Analytics) RecordOutcome(success bool) {
	a.RecentOutcomes = append(a.RecentOutcomes, success)
	if success {
		a.LearningStreak++
	} else {
		a.LearningStreak = 0
	}
	a.Normalize()
}

// RecordCompletionTime keeps the fastest time per challenge.
func (a *Analytics) RecordCompletionTime(id string, d time.Duration) {
	id = strings.TrimSpace(id)
	if id == "" || d <= 0 {
		return
	}
	a.Normalize()
	secs := d.Seconds()
	if best, ok := a.CompletionSeconds[id]; !ok || secs < best {
		a.CompletionSeconds[id] = secs
	}
}

func (a *Analytics) AddPlaytime(d time.Duration) {
	if d <= 0 {
		return
	}
	a.TotalPlaySeconds += int64(d / time.Second)
}

// SuccessRate over the recent window; ok is false with no history.
func (a Analytics) SuccessRate() (rate float64, ok bool) {
	if len(a.RecentOutcomes) == 0 {
		return 0, false
	}
	wins := 0
	for _, o := range a.RecentOutcomes {
		if o {
			wins++
		}
	}
	return float64(wins) / float64(len(a.RecentOutcomes)), true
}
