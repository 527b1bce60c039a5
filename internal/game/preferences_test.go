package game

import (
	"errors"
	"testing"
)

func TestAddAliasRejectsSelfAndCycles(t *testing.T) {
	s := NewGameState("ghost")
	if err := s.AddAlias("a", "A"); !errors.Is(err, ErrSelfAlias) {
		t.Fatalf("expected self alias error, got %v", err)
	}
	if err := s.AddAlias("a", "b"); err != nil {
		t.Fatalf("add a->b: %v", err)
	}
	if err := s.AddAlias("b", "c"); err != nil {
		t.Fatalf("add b->c: %v", err)
	}
	if err := s.AddAlias("c", "a"); !errors.Is(err, ErrCyclicAlias) {
		t.Fatalf("expected cycle error for c->a, got %v", err)
	}
	if _, ok := s.Preferences.Aliases["c"]; ok {
		t.Fatalf("rejected alias must not be stored")
	}
	if got := s.ResolveCommand("A"); got != "c" {
		t.Fatalf("expected chain to resolve to c, got %q", got)
	}
	if err := s.AddAlias(" ", "stats"); !errors.Is(err, ErrEmptyAlias) {
		t.Fatalf("expected empty alias error, got %v", err)
	}
}

func TestResolveCommandPassesUnknownInputThrough(t *testing.T) {
	s := NewGameState("ghost")
	_ = s.AddAlias("st", "stats")
	if got := s.ResolveCommand("  ST "); got != "stats" {
		t.Fatalf("expected stats, got %q", got)
	}
	if got := s.ResolveCommand("Help  Me"); got != "help me" {
		t.Fatalf("expected normalised passthrough, got %q", got)
	}
}

func TestResolveCommandTerminatesOnCorruptCycle(t *testing.T) {
	s := NewGameState("ghost")
	// Loaded data can bypass AddAlias.
	s.Preferences.Aliases = map[string]string{"x": "y", "y": "x"}
	got := s.ResolveCommand("x")
	if got != "x" && got != "y" {
		t.Fatalf("unexpected resolution %q", got)
	}
}

func TestRemoveAlias(t *testing.T) {
	s := NewGameState("ghost")
	_ = s.AddAlias("q", "quit")
	if !s.RemoveAlias("Q") {
		t.Fatalf("expected alias removal")
	}
	if s.RemoveAlias("q") {
		t.Fatalf("expected second removal to report false")
	}
}

func TestPreferencesNormalizeFillsDefaults(t *testing.T) {
	p := Preferences{DifficultyScaling: "chaotic", FontSize: 200, AnimationSpeed: "warp"}
	p.Normalize()
	if p.DifficultyScaling != ScalingAdaptive || p.HintVerbosity != HintsNormal || p.AnimationSpeed != AnimationNormal {
		t.Fatalf("expected defaults, got %+v", p)
	}
	if p.FontSize != maxFontSize {
		t.Fatalf("expected clamped font size, got %d", p.FontSize)
	}
	if p.Theme != DefaultTheme {
		t.Fatalf("expected default theme, got %q", p.Theme)
	}
}

func TestAliasCycleRejectedKeepsExistingMapping(t *testing.T) {
	s := NewGameState("ghost")
	if err := s.AddAlias("s", "stats"); err != nil {
		t.Fatalf("add s: %v", err)
	}
	if err := s.AddAlias("stats", "s"); !errors.Is(err, ErrCyclicAlias) {
		t.Fatalf("expected cyclic alias error, got %v", err)
	}
	if got := s.ResolveCommand("s"); got != "stats" {
		t.Fatalf("expected s -> stats, got %q", got)
	}
	if len(s.Preferences.Aliases) != 1 {
		t.Fatalf("alias map changed: %v", s.Preferences.Aliases)
	}
}

func TestNormalizeDropsBrokenAliases(t *testing.T) {
	p := DefaultPreferences()
	p.Aliases = map[string]string{
		"x":    "y",
		"y":    "x",
		"z":    "Z",
		" St ": "STATS",
		"":     "help",
	}
	p.Normalize()
	want := map[string]string{"x": "y", "st": "stats"}
	if len(p.Aliases) != len(want) {
		t.Fatalf("expected %v, got %v", want, p.Aliases)
	}
	for k, v := range want {
		if p.Aliases[k] != v {
			t.Fatalf("expected %v, got %v", want, p.Aliases)
		}
	}
}
