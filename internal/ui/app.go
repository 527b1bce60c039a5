package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/appengine-ltd/ghost-protocol/internal/challenge"
	"github.com/appengine-ltd/ghost-protocol/internal/game"
	"github.com/appengine-ltd/ghost-protocol/internal/parser"
	"github.com/appengine-ltd/ghost-protocol/internal/save"
	"github.com/appengine-ltd/ghost-protocol/internal/ui/theme"
)

type AppConfig struct {
	Version    string
	Commit     string
	BuildDate  string
	Saves      *save.Manager
	Slot       int
	PlayerName string
	Seed       int64
}

type App struct {
	cfg AppConfig
}

func NewApp(cfg AppConfig) *App {
	return &App{cfg: cfg}
}

func (a *App) Run() error {
	m, err := newModel(a.cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type screen int

const (
	screenMenu screen = iota
	screenChallenge
	screenPractice
	screenHelp
	screenSettings
	screenSlots
	screenAliases
	screenGameOver
)

const maxLogLines = 14

type model struct {
	cfg     AppConfig
	saves   *save.Manager
	target  save.Target
	session *game.Session
	history *parser.History
	input   textinput.Model
	pal     theme.Palette

	screen   screen
	returnTo screen
	attempt  *game.Attempt
	pending  *parser.Result

	lines  []string
	status string
}

func newModel(cfg AppConfig) (model, error) {
	if cfg.Saves == nil {
		return model{}, errors.New("ui: save manager is required")
	}
	target, err := cfg.Saves.Target(cfg.Slot)
	if err != nil {
		return model{}, err
	}
	ti := textinput.New()
	ti.Placeholder = "command, number, or Tab to complete"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	m := model{
		cfg:     cfg,
		saves:   cfg.Saves,
		target:  target,
		history: parser.NewHistory(parser.DefaultHistorySize),
		input:   ti,
		pal:     theme.Default(),
	}
	state, rec := target.LoadOrNew(cfg.PlayerName)
	m.attach(state)
	switch rec {
	case save.RecoveredBackup:
		m.status = "Save was damaged. Restored the previous checkpoint."
	case save.RecoveredFresh:
		m.status = fmt.Sprintf("New profile for %s. Type help, or 1 to begin.", state.PlayerName)
	default:
		m.status = fmt.Sprintf("Welcome back, %s.", state.PlayerName)
	}
	if state.IsGameOver() {
		m.screen = screenGameOver
	}
	return m, nil
}

// attach starts a session over state, checkpointing to the model's target.
func (m *model) attach(state *game.GameState) {
	m.session = game.NewSession(state, challenge.Default(),
		game.WithCheckpointer(m.target),
		game.WithRNG(challenge.NewRNG(m.cfg.Seed)),
		game.WithRetryable(func(err error) bool { return errors.Is(err, save.ErrIO) }),
	)
	m.attempt = nil
	m.pending = nil
}

func (m model) state() *game.GameState {
	return m.session.State
}

func (m model) palette() theme.Palette {
	return m.pal
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "esc":
			if m.pending != nil {
				m.pending = nil
				m.status = ""
				return m, nil
			}
			if m.screen == screenMenu || m.screen == screenGameOver {
				return m.quit()
			}
			if m.screen == screenChallenge {
				return m.handleChallenge("skip")
			}
			m.screen = screenMenu
			return m, nil
		case "tab":
			return m.complete(), nil
		case "up":
			if v, ok := m.history.Prev(); ok {
				m.input.SetValue(v)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			v, _ := m.history.Next()
			m.input.SetValue(v)
			m.input.CursorEnd()
			return m, nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) context() parser.Context {
	switch m.screen {
	case screenMenu:
		return parser.MainMenu(len(m.session.Available()))
	case screenChallenge:
		return parser.ChallengePrompt()
	case screenPractice:
		return parser.PracticeMenu(len(m.session.Catalog().Dynamic()))
	case screenHelp:
		return parser.HelpMenu()
	case screenSettings:
		return parser.SettingsMenu()
	case screenSlots:
		return parser.SlotMenu(m.saves.SlotCount())
	case screenAliases:
		return parser.AliasMenu()
	default:
		return parser.None()
	}
}

// complete runs Tab completion on the input buffer.
func (m model) complete() model {
	line := m.input.Value()
	if m.screen != screenChallenge {
		line = m.resolveAlias(line)
	}
	res := parser.Complete(m.context(), line)
	switch res.Kind {
	case parser.Completed:
		m.input.SetValue(res.Value)
		m.status = ""
	case parser.Ambiguous:
		if len(res.Value) > len(strings.TrimSpace(line)) {
			m.input.SetValue(res.Value)
		}
		m.status = "Options: " + strings.Join(res.Candidates, ", ")
	case parser.Suggestion:
		m.status = "Did you mean: " + strings.Join(res.Candidates, ", ") + "?"
	default:
		m.status = "No completion."
	}
	m.input.CursorEnd()
	return m
}

func (m model) submit() (tea.Model, tea.Cmd) {
	raw := m.input.Value()
	m.input.Reset()

	if m.pending != nil {
		return m.confirm(raw)
	}
	m.history.Add(raw)

	switch m.screen {
	case screenGameOver:
		return m.quit()
	case screenChallenge:
		return m.handleChallenge(raw)
	}

	line := m.resolveAlias(raw)
	res := parser.Complete(m.context(), line)
	switch res.Kind {
	case parser.Completed:
		return m.dispatch(res.Value)
	case parser.Suggestion:
		m.pending = &res
		if len(res.Candidates) == 1 {
			m.status = fmt.Sprintf("Did you mean %q? (y/n)", res.Value)
		} else {
			m.status = "Did you mean: " + numbered(res.Candidates) + "? Pick a number, or n."
		}
	case parser.Ambiguous:
		if strings.TrimSpace(line) == "" {
			m.status = "Options: " + strings.Join(res.Candidates, ", ")
		} else {
			m.status = fmt.Sprintf("%q could be: %s", strings.TrimSpace(raw), strings.Join(res.Candidates, ", "))
		}
	default:
		m.status = fmt.Sprintf("Unknown command %q. Press Tab for options.", strings.TrimSpace(raw))
	}
	return m, nil
}

// confirm resolves a pending typo suggestion.
func (m model) confirm(raw string) (tea.Model, tea.Cmd) {
	res := *m.pending
	m.pending = nil
	answer := strings.ToLower(strings.TrimSpace(raw))
	args := strings.TrimPrefix(res.Value, res.Candidates[0])

	if len(res.Candidates) == 1 {
		if answer == "" || answer == "y" || answer == "yes" {
			return m.dispatch(res.Value)
		}
		m.status = "Cancelled."
		return m, nil
	}
	for i, cand := range res.Candidates {
		if answer == fmt.Sprint(i+1) || answer == cand {
			return m.dispatch(cand + args)
		}
	}
	m.status = "Cancelled."
	return m, nil
}

// resolveAlias expands a user alias in the first word of line.
func (m model) resolveAlias(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line
	}
	fields[0] = m.state().ResolveCommand(fields[0])
	return strings.Join(fields, " ")
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.attempt != nil && !m.attempt.Done() {
		m.attempt.Skip()
	}
	if err := m.session.Checkpoint(); err != nil {
		m.status = fmt.Sprintf("Could not save before exit: %v", err)
	}
	return m, tea.Quit
}

func (m *model) log(format string, args ...any) {
	m.lines = append(m.lines, fmt.Sprintf(format, args...))
	if over := len(m.lines) - maxLogLines; over > 0 {
		m.lines = append(m.lines[:0:0], m.lines[over:]...)
	}
}

func numbered(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, v)
	}
	return strings.Join(parts, " ")
}
