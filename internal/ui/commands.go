package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/appengine-ltd/ghost-protocol/internal/challenge"
	"github.com/appengine-ltd/ghost-protocol/internal/game"
	"github.com/appengine-ltd/ghost-protocol/internal/save"
)

// dispatch runs a completed command line on the current screen.
func (m model) dispatch(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}
	cmd, args := fields[0], fields[1:]
	if cmd == "back" {
		m.screen = screenMenu
		m.status = ""
		return m, nil
	}
	switch m.screen {
	case screenMenu:
		return m.menuCommand(cmd, args)
	case screenPractice:
		return m.practiceCommand(cmd)
	case screenHelp:
		return m.helpCommand(cmd)
	case screenSettings:
		return m.settingsCommand(cmd, args)
	case screenSlots:
		return m.slotCommand(cmd, args)
	case screenAliases:
		return m.aliasCommand(cmd, args)
	}
	return m, nil
}

func (m model) menuCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	if n, err := strconv.Atoi(cmd); err == nil {
		available := m.session.Available()
		if n < 1 || n > len(available) {
			m.status = fmt.Sprintf("Choose 1-%d.", len(available))
			return m, nil
		}
		var d challenge.Difficulty
		if len(args) > 0 {
			parsed, ok := challenge.ParseDifficulty(args[0])
			if !ok {
				m.status = fmt.Sprintf("Unknown difficulty %q.", args[0])
				return m, nil
			}
			d = parsed
		}
		return m.begin(m.session.Start(available[n-1].ID, d))
	}

	switch cmd {
	case "stats":
		m.lines = nil
		for _, line := range statsLines(m.state()) {
			m.log("%s", line)
		}
		m.status = ""
	case "help":
		m.screen = screenHelp
		m.status = "Pick a topic."
	case "practice":
		m.screen = screenPractice
		m.status = "Practice grants half experience and costs no sanity."
	case "settings":
		m.screen = screenSettings
		m.status = "Type a setting and a value, e.g. theme matrix."
	case "slots":
		m.screen = screenSlots
		m.status = "save N, load N or delete N."
	case "alias":
		m.screen = screenAliases
		m.status = "add <short> <command>, remove <short>, list."
	case "tutorial":
		m.lines = nil
		for _, line := range helpTopics[len(helpTopics)-1].body {
			m.log("%s", line)
		}
		m.state().TutorialCompleted = true
		m.status = "Tutorial complete. Type 1 to take your first challenge."
	case "save":
		if err := m.session.Checkpoint(); err != nil {
			m.status = fmt.Sprintf("Save failed: %v", err)
		} else {
			m.status = "Progress saved."
		}
	case "load":
		state, err := m.target.Load()
		if err != nil {
			m.status = loadError(err)
			return m, nil
		}
		m.attach(state)
		m.status = fmt.Sprintf("Loaded %s.", state.PlayerName)
	case "quit":
		return m.quit()
	}
	return m, nil
}

func (m model) begin(a *game.Attempt, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = startError(err)
		return m, nil
	}
	m.returnTo = m.screen
	m.attempt = a
	m.screen = screenChallenge
	m.lines = nil
	m.status = "Answer, or type hint / skip."
	return m, nil
}

func (m model) handleChallenge(raw string) (tea.Model, tea.Cmd) {
	a := m.attempt
	if a == nil || a.Done() {
		m.screen = m.returnTo
		return m, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hint":
		if hint, ok := a.Hint(); ok {
			m.log("Hint: %s", hint)
		} else {
			m.status = "No more hints."
		}
		return m, nil
	case "skip":
		a.Skip()
		m.finish("Skipped.")
		return m, nil
	}

	res := a.Submit(raw)
	switch {
	case strings.TrimSpace(raw) == "":
		m.status = "Type an answer."
		return m, nil
	case res.Correct:
		msg := "Correct."
		if res.XP > 0 {
			msg += fmt.Sprintf(" +%d xp.", res.XP)
		} else if !a.Practice() {
			msg += " Already completed, no experience."
		}
		if res.SanityCost > 0 {
			msg += fmt.Sprintf(" -%d sanity.", res.SanityCost)
		}
		if res.LeveledUp {
			msg += fmt.Sprintf(" Level %d reached.", m.state().CurrentLevel)
		}
		m.finish(msg)
	case res.Exhausted:
		m.finish(fmt.Sprintf("Out of attempts. -%d sanity.", res.SanityCost))
	default:
		m.status = fmt.Sprintf("Incorrect. %d attempts left.", res.AttemptsLeft)
		return m, nil
	}
	if res.CheckpointErr != nil {
		m.status += fmt.Sprintf(" (checkpoint failed: %v)", res.CheckpointErr)
	}
	if res.GameOver {
		m.screen = screenGameOver
	}
	return m, nil
}

// finish closes the current attempt and returns to the screen it came from.
func (m *model) finish(msg string) {
	m.attempt = nil
	m.screen = m.returnTo
	m.status = msg
}

func (m model) practiceCommand(cmd string) (tea.Model, tea.Cmd) {
	if cmd == "random" {
		return m.begin(m.session.Practice(""))
	}
	n, err := strconv.Atoi(cmd)
	dyn := m.session.Catalog().Dynamic()
	if err != nil || n < 1 || n > len(dyn) {
		m.status = fmt.Sprintf("Choose 1-%d or random.", len(dyn))
		return m, nil
	}
	return m.begin(m.session.Practice(dyn[n-1].ID))
}

func (m model) helpCommand(cmd string) (tea.Model, tea.Cmd) {
	n, err := strconv.Atoi(cmd)
	if err != nil || n < 1 || n > len(helpTopics) {
		return m, nil
	}
	topic := helpTopics[n-1]
	m.lines = nil
	m.log("%s", strings.ToUpper(topic.title))
	for _, line := range topic.body {
		m.log("%s", line)
	}
	if n == len(helpTopics) {
		m.state().TutorialCompleted = true
	}
	m.status = ""
	return m, nil
}

func (m model) settingsCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	p := &m.state().Preferences
	if len(args) == 0 {
		m.status = fmt.Sprintf("%s is %s.", cmd, settingValue(*p, cmd))
		return m, nil
	}
	value := strings.ToLower(args[0])
	switch cmd {
	case "difficulty":
		p.DifficultyScaling = game.DifficultyScaling(value)
	case "hints":
		p.HintVerbosity = game.HintVerbosity(value)
	case "theme":
		p.Theme = strings.Join(args, " ")
	case "font":
		size, err := strconv.Atoi(value)
		if err != nil {
			m.status = "Font size must be a number."
			return m, nil
		}
		p.FontSize = size
	case "animation":
		p.AnimationSpeed = game.AnimationSpeed(value)
	case "audio":
		p.AudioEnabled = value == "on" || value == "true" || value == "yes"
	}
	p.Normalize()
	m.status = fmt.Sprintf("%s set to %s.", cmd, settingValue(*p, cmd))
	return m, nil
}

func settingValue(p game.Preferences, name string) string {
	switch name {
	case "difficulty":
		return string(p.DifficultyScaling)
	case "hints":
		return string(p.HintVerbosity)
	case "theme":
		return p.Theme
	case "font":
		return strconv.Itoa(p.FontSize)
	case "animation":
		return string(p.AnimationSpeed)
	case "audio":
		if p.AudioEnabled {
			return "on"
		}
		return "off"
	}
	return "unknown"
}

// slotCommand handles save/load/delete. Slots are shown 1-based.
func (m model) slotCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	if _, err := strconv.Atoi(cmd); err == nil {
		args, cmd = []string{cmd}, "load"
	}
	if len(args) == 0 {
		m.status = fmt.Sprintf("%s which slot? 1-%d.", cmd, m.saves.SlotCount())
		return m, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		m.status = "Slot must be a number."
		return m, nil
	}
	index := n - 1

	switch cmd {
	case "save":
		err = m.saves.SaveSlot(index, m.state())
		if err == nil {
			m.status = fmt.Sprintf("Saved to slot %d.", n)
		}
	case "load":
		var state *game.GameState
		state, err = m.saves.LoadSlot(index)
		if err == nil {
			m.attach(state)
			m.status = fmt.Sprintf("Loaded slot %d: %s.", n, state.PlayerName)
		}
	case "delete":
		err = m.saves.DeleteSlot(index)
		if err == nil {
			m.status = fmt.Sprintf("Slot %d cleared.", n)
		}
	}
	if err != nil {
		m.status = loadError(err)
	}
	return m, nil
}

func (m model) aliasCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	st := m.state()
	switch cmd {
	case "add":
		if len(args) < 2 {
			m.status = "Usage: add <short> <command>."
			return m, nil
		}
		if err := st.AddAlias(args[0], strings.Join(args[1:], " ")); err != nil {
			m.status = fmt.Sprintf("Alias rejected: %v.", err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s now runs %s.", args[0], strings.Join(args[1:], " "))
	case "remove":
		if len(args) == 0 || !st.RemoveAlias(args[0]) {
			m.status = "No such alias."
			return m, nil
		}
		m.status = fmt.Sprintf("Removed %s.", args[0])
	case "list":
		m.lines = nil
		names := st.AliasNames()
		if len(names) == 0 {
			m.status = "No aliases defined."
			return m, nil
		}
		for _, name := range names {
			m.log("%s -> %s", name, st.Preferences.Aliases[name])
		}
		m.status = ""
	}
	return m, nil
}

func startError(err error) string {
	switch {
	case errors.Is(err, game.ErrLocked):
		return "That challenge is still locked."
	case errors.Is(err, game.ErrGameOver):
		return "Your sanity is gone. There is nothing left to attempt."
	case errors.Is(err, challenge.ErrUnknownDifficulty):
		return "That difficulty is not offered for this challenge."
	default:
		return err.Error()
	}
}

func loadError(err error) string {
	switch {
	case errors.Is(err, save.ErrNotFound):
		return "Nothing saved there yet."
	case errors.Is(err, save.ErrCorrupt):
		return "That save is corrupt."
	case errors.Is(err, save.ErrSlotRange):
		return "No such slot."
	default:
		return fmt.Sprintf("Save error: %v", err)
	}
}
