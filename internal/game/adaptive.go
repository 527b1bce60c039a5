package game

import "github.com/appengine-ltd/ghost-protocol/internal/challenge"

// RecommendDifficulty picks a variant for c from the player's preferences and
// recent form. It is deterministic for a given state and only ever returns a
// difficulty c actually offers.
func (s *GameState) RecommendDifficulty(c challenge.Challenge) challenge.Difficulty {
	if s.Preferences.DifficultyScaling != ScalingAdaptive {
		return challenge.Standard
	}
	score := s.adaptiveScore(c.ID)
	switch {
	case score > 0.8 && c.HasDifficulty(challenge.Expert):
		return challenge.Expert
	case score > 0.4 && c.HasDifficulty(challenge.Advanced):
		return challenge.Advanced
	case score < -0.3 && c.HasDifficulty(challenge.Beginner):
		return challenge.Beginner
	}
	return challenge.Standard
}

func (s *GameState) adaptiveScore(id string) float64 {
	score := 0.0
	if rate, ok := s.Analytics.SuccessRate(); ok {
		switch {
		case rate > 0.8:
			score += 0.3
		case rate > 0.6:
			score += 0.1
		case rate < 0.4:
			score -= 0.2
		}
	}
	switch {
	case s.Sanity > 75:
		score += 0.2
	case s.Sanity < 50:
		score -= 0.3
	}
	score += 0.1 * float64(clamp(s.CurrentLevel, 0, MaxLevel))
	if s.Analytics.Attempts[id] > 3 {
		score -= 0.2
	}
	return score
}
