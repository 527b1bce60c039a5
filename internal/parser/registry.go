package parser

import "strconv"

// maxNumericChoices bounds how many numeric choices a context lists.
const maxNumericChoices = 999

const (
	ContextMainMenu  = "main_menu"
	ContextChallenge = "challenge"
	ContextHelp      = "help_menu"
	ContextSettings  = "settings_menu"
	ContextPractice  = "practice_menu"
	ContextSlots     = "slot_menu"
	ContextAliases   = "alias_menu"
	ContextNone      = "none"
)

// NewContext builds a context from raw tokens. Tokens are normalised and
// de-duplicated; blank tokens are dropped. Order is preserved.
func NewContext(name string, numeric int, tokens ...string) Context {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := normaliseInput(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return Context{Name: name, Tokens: out, Numeric: min(max(numeric, 0), maxNumericChoices)}
}

func MainMenu(challenges int) Context {
	return NewContext(ContextMainMenu, challenges,
		"stats", "help", "practice", "settings", "save", "load", "slots", "alias", "tutorial", "quit")
}

func ChallengePrompt() Context {
	return NewContext(ContextChallenge, 0, "hint", "skip")
}

func HelpMenu() Context {
	return NewContext(ContextHelp, 5, "back")
}

func SettingsMenu() Context {
	return NewContext(ContextSettings, 0,
		"difficulty", "hints", "theme", "font", "animation", "audio", "back")
}

func PracticeMenu(generators int) Context {
	return NewContext(ContextPractice, generators, "random", "back")
}

func SlotMenu(slots int) Context {
	return NewContext(ContextSlots, slots, "save", "load", "delete", "back")
}

func AliasMenu() Context {
	return NewContext(ContextAliases, 0, "add", "remove", "list", "back")
}

func None() Context {
	return Context{Name: ContextNone}
}

// All returns every valid token: named tokens first, then numeric choices in
// ascending order.
func (c Context) All() []string {
	out := make([]string, 0, len(c.Tokens)+c.numeric())
	out = append(out, c.Tokens...)
	for i := 1; i <= c.numeric(); i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// Choice reports the numeric choice named by token, if it is in range.
func (c Context) Choice(token string) (int, bool) {
	token = normaliseInput(token)
	if !isNumeric(token) {
		return 0, false
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > c.numeric() || strconv.Itoa(n) != token {
		return 0, false
	}
	return n, true
}

func (c Context) numeric() int {
	return min(max(c.Numeric, 0), maxNumericChoices)
}
