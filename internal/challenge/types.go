package challenge

import (
	"errors"
	"strings"
)

type Category string

const (
	CategoryEncoding      Category = "encoding"
	CategoryCryptography  Category = "cryptography"
	CategoryWeb           Category = "web"
	CategoryForensics     Category = "forensics"
	CategoryReverse       Category = "reverse"
	CategoryBinary        Category = "binary"
	CategoryOSINT         Category = "osint"
	CategorySteganography Category = "steganography"
	CategoryMalware       Category = "malware"
	CategoryIoT           Category = "iot"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEncoding, CategoryCryptography, CategoryWeb, CategoryForensics, CategoryReverse,
		CategoryBinary, CategoryOSINT, CategorySteganography, CategoryMalware, CategoryIoT:
		return true
	default:
		return false
	}
}

type Difficulty string

const (
	Beginner Difficulty = "beginner"
	Standard Difficulty = "standard"
	Advanced Difficulty = "advanced"
	Expert   Difficulty = "expert"
	Dynamic  Difficulty = "dynamic"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Standard, Advanced, Expert, Dynamic:
		return true
	default:
		return false
	}
}

func ParseDifficulty(raw string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if d == "" {
		return Standard, true
	}
	return d, d.Valid()
}

const MaxLevel = 4

var (
	ErrUnknownDifficulty = errors.New("difficulty not available for challenge")
	ErrUnknownGenerator  = errors.New("unknown dynamic generator")
)

// Variant scales a challenge's base reward and cost. Hints replaces the base
// hint list when non-empty; Generator swaps the static answer for a freshly
// generated one.
type Variant struct {
	XPMultiplier     float64
	SanityMultiplier float64
	TitleSuffix      string
	PromptNote       string
	Hints            []string
	Generator        string
}

type Challenge struct {
	ID         string
	Title      string
	Category   Category
	Level      int
	XPReward   int
	SanityCost int
	Prompt     string
	Hints      []string
	Variants   map[Difficulty]Variant

	// Generator is set for practice-only challenges whose answer is produced
	// per attempt.
	Generator string

	matcher Matcher
}

func (c Challenge) Practice() bool {
	return c.Generator != ""
}

// Validate reports whether raw is an accepted answer for the standard variant.
// Practice challenges have no fixed answer and always return false here.
func (c Challenge) Validate(raw string) bool {
	if c.matcher == nil {
		return false
	}
	return c.matcher.Match(raw)
}

func (c Challenge) Matcher() Matcher {
	return c.matcher
}

// Instance is a playable rendition of a challenge at one difficulty.
type Instance struct {
	ChallengeID string
	Difficulty  Difficulty
	Title       string
	Prompt      string
	Hints       []string
	XPReward    int
	SanityCost  int
	Matcher     Matcher
}

func (i Instance) Validate(raw string) bool {
	if i.Matcher == nil {
		return false
	}
	return i.Matcher.Match(raw)
}
