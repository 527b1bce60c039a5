package challenge

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

var (
	catalogValidate *validator.Validate
	challengeIDRE   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

func init() {
	catalogValidate = validator.New()
	_ = catalogValidate.RegisterValidation("challenge_id", func(fl validator.FieldLevel) bool {
		return challengeIDRE.MatchString(fl.Field().String())
	})
	_ = catalogValidate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = catalogValidate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return Difficulty(fl.Field().String()).Valid()
	})
	_ = catalogValidate.RegisterValidation("generator", func(fl validator.FieldLevel) bool {
		_, ok := LookupGenerator(fl.Field().String())
		return ok
	})
}

type catalogFile struct {
	Challenges []definition `yaml:"challenges" validate:"required,min=1,dive"`
}

type definition struct {
	ID        string                 `yaml:"id" validate:"required,challenge_id"`
	Title     string                 `yaml:"title" validate:"required"`
	Category  string                 `yaml:"category" validate:"required,category"`
	Level     int                    `yaml:"level" validate:"gte=0,lte=4"`
	XP        int                    `yaml:"xp" validate:"gt=0"`
	Sanity    int                    `yaml:"sanity" validate:"gt=0"`
	Prompt    string                 `yaml:"prompt" validate:"required"`
	Hints     []string               `yaml:"hints" validate:"min=2,dive,required"`
	Answer    *answerSpec            `yaml:"answer" validate:"required_without=Generator,excluded_with=Generator"`
	Generator string                 `yaml:"generator" validate:"omitempty,generator"`
	Variants  map[string]variantSpec `yaml:"variants" validate:"dive,keys,difficulty,endkeys"`
}

type answerSpec struct {
	Kind      string       `yaml:"kind" validate:"required,oneof=exact one_of contains prefix numeric any"`
	Values    []string     `yaml:"values" validate:"dive,required"`
	Min       *int64       `yaml:"min"`
	Max       *int64       `yaml:"max"`
	Equals    *int64       `yaml:"equals"`
	Normalize []string     `yaml:"normalize" validate:"dive,oneof=trim fold separators"`
	Remove    string       `yaml:"remove"`
	Any       []answerSpec `yaml:"any" validate:"required_if=Kind any,dive"`
}

type variantSpec struct {
	XP        float64  `yaml:"xp" validate:"gt=0"`
	Sanity    float64  `yaml:"sanity" validate:"gt=0"`
	Suffix    string   `yaml:"suffix"`
	Note      string   `yaml:"note"`
	Hints     []string `yaml:"hints" validate:"omitempty,min=2,dive,required"`
	Generator string   `yaml:"generator" validate:"omitempty,generator"`
}

// Catalog is the immutable challenge registry. Order within a level follows
// the source document.
type Catalog struct {
	challenges []Challenge
	byID       map[string]int
}

// Default returns the embedded catalog, which is checked once at first use.
var Default = sync.OnceValue(func() *Catalog {
	return MustLoad(builtinCatalog)
})

func MustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("challenge catalog: %v", err))
	}
	return c
}

func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalogValidate.Struct(file); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	c := &Catalog{
		challenges: make([]Challenge, 0, len(file.Challenges)),
		byID:       make(map[string]int, len(file.Challenges)),
	}
	for _, def := range file.Challenges {
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("validate catalog: duplicate challenge id %q", def.ID)
		}
		ch, err := def.build()
		if err != nil {
			return nil, fmt.Errorf("challenge %s: %w", def.ID, err)
		}
		c.byID[ch.ID] = len(c.challenges)
		c.challenges = append(c.challenges, ch)
	}
	return c, nil
}

func (d definition) build() (Challenge, error) {
	ch := Challenge{
		ID:         d.ID,
		Title:      strings.TrimSpace(d.Title),
		Category:   Category(d.Category),
		Level:      d.Level,
		XPReward:   d.XP,
		SanityCost: d.Sanity,
		Prompt:     strings.TrimSpace(d.Prompt),
		Hints:      append([]string(nil), d.Hints...),
		Generator:  d.Generator,
	}
	if d.Answer != nil {
		m, err := d.Answer.build()
		if err != nil {
			return Challenge{}, err
		}
		ch.matcher = m
	}
	if len(d.Variants) > 0 {
		ch.Variants = make(map[Difficulty]Variant, len(d.Variants))
		for key, v := range d.Variants {
			ch.Variants[Difficulty(key)] = Variant{
				XPMultiplier:     v.XP,
				SanityMultiplier: v.Sanity,
				TitleSuffix:      v.Suffix,
				PromptNote:       strings.TrimSpace(v.Note),
				Hints:            append([]string(nil), v.Hints...),
				Generator:        v.Generator,
			}
		}
	}
	return ch, nil
}

func (a answerSpec) normalizer() Normalizer {
	n := Normalizer{Remove: a.Remove}
	for _, step := range a.Normalize {
		switch step {
		case "trim":
			n.Trim = true
		case "fold":
			n.Fold = true
		case "separators":
			n.Separators = true
		}
	}
	return n
}

func (a answerSpec) build() (Matcher, error) {
	n := a.normalizer()
	if len(a.Values) == 0 && (a.Kind == "one_of" || a.Kind == "contains" || a.Kind == "prefix") {
		return nil, fmt.Errorf("%s answer needs values", a.Kind)
	}
	switch a.Kind {
	case "exact":
		if len(a.Values) != 1 {
			return nil, errors.New("exact answer needs exactly one value")
		}
		return Exact{Norm: n, Value: a.Values[0]}, nil
	case "one_of":
		return OneOf{Norm: n, Values: append([]string(nil), a.Values...)}, nil
	case "contains":
		return Contains{Norm: n, Parts: append([]string(nil), a.Values...)}, nil
	case "prefix":
		return Prefix{Norm: n, Prefixes: append([]string(nil), a.Values...)}, nil
	case "numeric":
		m := Numeric{Norm: n, Min: math.MinInt64, Max: math.MaxInt64}
		switch {
		case a.Equals != nil:
			m.Min, m.Max = *a.Equals, *a.Equals
		case a.Min == nil && a.Max == nil:
			return nil, errors.New("numeric answer needs equals, min or max")
		}
		if a.Min != nil {
			m.Min = *a.Min
		}
		if a.Max != nil {
			m.Max = *a.Max
		}
		if m.Min > m.Max {
			return nil, errors.New("numeric answer has min above max")
		}
		return m, nil
	case "any":
		out := make(Any, 0, len(a.Any))
		for _, child := range a.Any {
			m, err := child.build()
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown answer kind %q", a.Kind)
}

func (c *Catalog) Len() int {
	return len(c.challenges)
}

func (c *Catalog) All() []Challenge {
	return append([]Challenge(nil), c.challenges...)
}

// ForLevel lists the graded challenges of one tier. Practice challenges are
// excluded.
func (c *Catalog) ForLevel(level int) []Challenge {
	out := make([]Challenge, 0, 8)
	for _, ch := range c.challenges {
		if ch.Level == level && !ch.Practice() {
			out = append(out, ch)
		}
	}
	return out
}

// UpToLevel lists graded challenges of tiers 0..level inclusive.
func (c *Catalog) UpToLevel(level int) []Challenge {
	level = min(level, MaxLevel)
	out := make([]Challenge, 0, len(c.challenges))
	for _, ch := range c.challenges {
		if ch.Level <= level && !ch.Practice() {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Catalog) Dynamic() []Challenge {
	out := make([]Challenge, 0, 4)
	for _, ch := range c.challenges {
		if ch.Practice() {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Catalog) Find(id string) (Challenge, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Challenge{}, false
	}
	return c.challenges[i], true
}

// Graded counts challenges that can enter a player's completed set.
func (c *Catalog) Graded() int {
	n := 0
	for _, ch := range c.challenges {
		if !ch.Practice() {
			n++
		}
	}
	return n
}

// AvailableDifficulties lists standard first, then declared variants in
// ascending order.
func (c Challenge) AvailableDifficulties() []Difficulty {
	out := []Difficulty{Standard}
	for _, d := range []Difficulty{Beginner, Advanced, Expert, Dynamic} {
		if _, ok := c.Variants[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (c Challenge) HasDifficulty(d Difficulty) bool {
	if d == Standard {
		return true
	}
	_, ok := c.Variants[d]
	return ok
}

// WithDifficulty builds a playable instance. A nil rng falls back to a
// clock-seeded generator for dynamic content.
func (c Challenge) WithDifficulty(d Difficulty, rng *rand.Rand) (Instance, error) {
	if d == "" {
		d = Standard
	}
	inst := Instance{
		ChallengeID: c.ID,
		Difficulty:  d,
		Title:       c.Title,
		Prompt:      c.Prompt,
		Hints:       append([]string(nil), c.Hints...),
		XPReward:    c.XPReward,
		SanityCost:  c.SanityCost,
		Matcher:     c.matcher,
	}
	generator := c.Generator

	if d != Standard {
		v, ok := c.Variants[d]
		if !ok {
			return Instance{}, fmt.Errorf("%w: %s has no %s variant", ErrUnknownDifficulty, c.ID, d)
		}
		inst.XPReward = scale(c.XPReward, v.XPMultiplier)
		inst.SanityCost = scale(c.SanityCost, v.SanityMultiplier)
		if v.TitleSuffix != "" {
			inst.Title = c.Title + " " + v.TitleSuffix
		}
		if v.PromptNote != "" {
			inst.Prompt = inst.Prompt + "\n\n" + v.PromptNote
		}
		if len(v.Hints) > 0 {
			inst.Hints = append([]string(nil), v.Hints...)
		}
		if v.Generator != "" {
			generator = v.Generator
		}
	}

	if generator != "" {
		gen, ok := LookupGenerator(generator)
		if !ok {
			return Instance{}, fmt.Errorf("%w: %s", ErrUnknownGenerator, generator)
		}
		if rng == nil {
			rng = NewRNG(0)
		}
		prompt, m := gen(rng)
		inst.Prompt = prompt
		inst.Matcher = m
	}

	if d == Expert && len(inst.Hints) > 1 {
		inst.Hints = inst.Hints[:1]
	}
	return inst, nil
}

func scale(base int, mult float64) int {
	if mult <= 0 {
		mult = 1
	}
	v := math.Round(float64(base) * mult)
	if v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
