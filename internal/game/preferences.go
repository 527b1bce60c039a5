package game

import (
	"errors"
	"strings"
)

type DifficultyScaling string

const (
	ScalingStatic   DifficultyScaling = "static"
	ScalingAdaptive DifficultyScaling = "adaptive"
	ScalingCustom   DifficultyScaling = "custom"
)

type HintVerbosity string

const (
	HintsMinimal  HintVerbosity = "minimal"
	HintsNormal   HintVerbosity = "normal"
	HintsDetailed HintVerbosity = "detailed"
)

type AnimationSpeed string

const (
	AnimationSlow   AnimationSpeed = "slow"
	AnimationNormal AnimationSpeed = "normal"
	AnimationFast   AnimationSpeed = "fast"
	AnimationOff    AnimationSpeed = "off"
)

const (
	DefaultTheme    = "horror"
	DefaultFontSize = 14
	minFontSize     = 8
	maxFontSize     = 32
	maxAliasChain   = 32
)

var (
	ErrEmptyAlias  = errors.New("alias and command must not be empty")
	ErrSelfAlias   = errors.New("alias cannot point at itself")
	ErrCyclicAlias = errors.New("alias would create a cycle")
)

type Preferences struct {
	DifficultyScaling DifficultyScaling
	HintVerbosity     HintVerbosity
	Theme             string
	FontSize          int
	AnimationSpeed    AnimationSpeed
	AudioEnabled      bool
	Aliases           map[string]string
}

func DefaultPreferences() Preferences {
	return Preferences{
		DifficultyScaling: ScalingAdaptive,
		HintVerbosity:     HintsNormal,
		Theme:             DefaultTheme,
		FontSize:          DefaultFontSize,
		AnimationSpeed:    AnimationNormal,
		AudioEnabled:      true,
		Aliases:           map[string]string{},
	}
}

func (p *Preferences) Normalize() {
	switch p.DifficultyScaling {
	case ScalingStatic, ScalingAdaptive, ScalingCustom:
	default:
		p.DifficultyScaling = ScalingAdaptive
	}
	switch p.HintVerbosity {
	case HintsMinimal, HintsNormal, HintsDetailed:
	default:
		p.HintVerbosity = HintsNormal
	}
	switch p.AnimationSpeed {
	case AnimationSlow, AnimationNormal, AnimationFast, AnimationOff:
	default:
		p.AnimationSpeed = AnimationNormal
	}
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = DefaultTheme
	}
	if p.FontSize == 0 {
		p.FontSize = DefaultFontSize
	}
	p.FontSize = clamp(p.FontSize, minFontSize, maxFontSize)
	p.Aliases = cleanAliases(p.Aliases)
}

// cleanAliases rebuilds loaded aliases in key order, dropping entries that
// are empty, point at themselves or close a loop.
func cleanAliases(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for _, key := range sortedKeys(in) {
		short, command := normaliseCommand(key), normaliseCommand(in[key])
		if checkAlias(out, short, command) == nil {
			out[short] = command
		}
	}
	return out
}

func checkAlias(aliases map[string]string, short, command string) error {
	if short == "" || command == "" {
		return ErrEmptyAlias
	}
	if short == command {
		return ErrSelfAlias
	}
	next := command
	for range len(aliases) + 1 {
		if next == short {
			return ErrCyclicAlias
		}
		target, ok := aliases[next]
		if !ok {
			break
		}
		next = target
	}
	return nil
}

func (p Preferences) clone() Preferences {
	out := p
	out.Aliases = make(map[string]string, len(p.Aliases))
	for k, v := range p.Aliases {
		out.Aliases[k] = v
	}
	return out
}

func normaliseCommand(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// AddAlias maps short to command. The mapping is rejected before any change
// if it points at itself or would close a loop through existing aliases.
func (s *GameState) AddAlias(short, command string) error {
	short = normaliseCommand(short)
	command = normaliseCommand(command)
	if err := checkAlias(s.Preferences.Aliases, short, command); err != nil {
		return err
	}
	if s.Preferences.Aliases == nil {
		s.Preferences.Aliases = map[string]string{}
	}
	s.Preferences.Aliases[short] = command
	return nil
}

func (s *GameState) RemoveAlias(short string) bool {
	short = normaliseCommand(short)
	if _, ok := s.Preferences.Aliases[short]; !ok {
		return false
	}
	delete(s.Preferences.Aliases, short)
	return true
}

// ResolveCommand follows the alias chain for input. Unknown input comes back
// normalised but otherwise unchanged.
func (s *GameState) ResolveCommand(input string) string {
	cmd := normaliseCommand(input)
	for range maxAliasChain {
		target, ok := s.Preferences.Aliases[cmd]
		if !ok {
			break
		}
		cmd = target
	}
	return cmd
}

func (s *GameState) AliasNames() []string {
	return sortedKeys(s.Preferences.Aliases)
}
