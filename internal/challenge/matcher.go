package challenge

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Matcher decides whether a raw answer is accepted. Implementations must be
// total: any input string, however malformed, yields true or false.
type Matcher interface {
	Match(raw string) bool
}

// Normalizer is the per-matcher input cleanup. Unicode input is always
// composed to NFC first so combining sequences compare like their
// precomposed forms.
type Normalizer struct {
	Trim       bool
	Fold       bool
	Separators bool
	Remove     string
}

func (n Normalizer) Apply(raw string) string {
	out := norm.NFC.String(raw)
	if n.Trim {
		out = strings.TrimSpace(out)
	}
	if n.Fold {
		out = cases.Fold().String(out)
	}
	if n.Separators {
		out = strings.Map(func(r rune) rune {
			if r == '-' || r == '_' {
				return ' '
			}
			return r
		}, out)
		out = strings.Join(strings.Fields(out), " ")
	}
	if n.Remove != "" {
		out = strings.Map(func(r rune) rune {
			if strings.ContainsRune(n.Remove, r) {
				return -1
			}
			return r
		}, out)
	}
	return out
}

type Exact struct {
	Norm  Normalizer
	Value string
}

func (m Exact) Match(raw string) bool {
	want := m.Norm.Apply(m.Value)
	return want != "" && m.Norm.Apply(raw) == want
}

type OneOf struct {
	Norm   Normalizer
	Values []string
}

func (m OneOf) Match(raw string) bool {
	got := m.Norm.Apply(raw)
	if got == "" {
		return false
	}
	for _, v := range m.Values {
		if got == m.Norm.Apply(v) {
			return true
		}
	}
	return false
}

// Contains accepts input holding every fragment in Parts.
type Contains struct {
	Norm  Normalizer
	Parts []string
}

func (m Contains) Match(raw string) bool {
	if len(m.Parts) == 0 {
		return false
	}
	got := m.Norm.Apply(raw)
	for _, p := range m.Parts {
		p = m.Norm.Apply(p)
		if p == "" || !strings.Contains(got, p) {
			return false
		}
	}
	return true
}

type Prefix struct {
	Norm     Normalizer
	Prefixes []string
}

func (m Prefix) Match(raw string) bool {
	got := m.Norm.Apply(raw)
	for _, p := range m.Prefixes {
		p = m.Norm.Apply(p)
		if p != "" && strings.HasPrefix(got, p) {
			return true
		}
	}
	return false
}

// Numeric accepts integer literals in decimal, 0x, 0o or 0b notation that
// fall inside [Min, Max].
type Numeric struct {
	Norm Normalizer
	Min  int64
	Max  int64
}

func (m Numeric) Match(raw string) bool {
	got := m.Norm.Apply(raw)
	if got == "" || len(got) > 66 {
		return false
	}
	n, err := strconv.ParseInt(got, 0, 64)
	if err != nil {
		return false
	}
	return n >= m.Min && n <= m.Max
}

// Any is true when at least one child matcher accepts the input.
type Any []Matcher

func (m Any) Match(raw string) bool {
	for _, child := range m {
		if child != nil && child.Match(raw) {
			return true
		}
	}
	return false
}
