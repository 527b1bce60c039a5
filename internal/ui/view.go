package ui

import (
	"fmt"
	"strings"

	"github.com/appengine-ltd/ghost-protocol/internal/challenge"
	"github.com/appengine-ltd/ghost-protocol/internal/game"
	"github.com/appengine-ltd/ghost-protocol/internal/ui/theme"
)

const rule = "------------------------------------------------------------"

type helpTopic struct {
	title string
	body  []string
}

// The last topic doubles as the tutorial.
var helpTopics = []helpTopic{
	{title: "Commands", body: []string{
		"stats, practice, settings, save, load, slots, alias, tutorial, quit.",
		"Type a number to open that challenge. Add a difficulty to override: 3 advanced.",
		"Tab completes, Up and Down recall earlier commands.",
	}},
	{title: "Challenges", body: []string{
		"Most answers ignore case and extra spaces. File names, paths and flags must match exactly.",
		"You have 5 tries. Running out costs 10 sanity.",
		"Variants scale experience and sanity cost. Adaptive scaling picks one for you.",
	}},
	{title: "Sanity and levels", body: []string{
		"Every solved challenge costs sanity. At zero the session ends.",
		"Every 100 experience is a level. Higher levels unlock harder tiers.",
		"Solving a challenge again costs sanity but grants no experience.",
	}},
	{title: "Saving", body: []string{
		"Progress is checkpointed on level up, on game over and when you quit.",
		"slots lets you keep several runs side by side.",
		"A damaged save falls back to the previous checkpoint.",
	}},
	{title: "Tutorial", body: []string{
		"Something is living in the machine. Every answer you give it costs you.",
		"Read the prompt, decode what you can, and type the answer.",
		"Stuck? Type hint. Still stuck? skip costs nothing.",
		"Practice generates fresh puzzles that never run out.",
	}},
}

func (m model) View() string {
	pal := m.palette()
	var b strings.Builder
	title := pal.Bright.Render("GHOST PROTOCOL")
	if m.cfg.Version != "" {
		title += pal.Dim.Render(fmt.Sprintf("  v%s (%s) %s", m.cfg.Version, m.cfg.Commit, m.cfg.BuildDate))
	}
	b.WriteString(title + "\n")
	b.WriteString(statusBar(pal, m.state()) + "\n")
	b.WriteString(pal.Border.Render(rule) + "\n\n")

	for _, line := range m.body() {
		b.WriteString(line + "\n")
	}
	if len(m.lines) > 0 {
		b.WriteString("\n")
		for _, line := range m.lines {
			b.WriteString(pal.Text.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + pal.Border.Render(rule) + "\n")
	if m.status != "" {
		b.WriteString(pal.Text.Render(m.status) + "\n")
	}
	if m.screen != screenGameOver {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(pal.Dim.Render("Enter to submit, Tab to complete, Esc to go back") + "\n")
	return b.String()
}

func (m model) body() []string {
	pal := m.palette()
	switch m.screen {
	case screenMenu:
		return m.menuBody()
	case screenChallenge:
		return m.challengeBody()
	case screenPractice:
		out := []string{pal.Bright.Render("PRACTICE")}
		for i, c := range m.session.Catalog().Dynamic() {
			out = append(out, pal.Text.Render(fmt.Sprintf("  %d. %s", i+1, c.Title)))
		}
		return append(out, pal.Dim.Render("  random, back"))
	case screenHelp:
		out := []string{pal.Bright.Render("HELP")}
		for i, t := range helpTopics {
			out = append(out, pal.Text.Render(fmt.Sprintf("  %d. %s", i+1, t.title)))
		}
		return append(out, pal.Dim.Render("  back"))
	case screenSettings:
		p := m.state().Preferences
		out := []string{pal.Bright.Render("SETTINGS")}
		for _, name := range []string{"difficulty", "hints", "theme", "font", "animation", "audio"} {
			out = append(out, pal.Text.Render(fmt.Sprintf("  %-10s %s", name, settingValue(p, name))))
		}
		return out
	case screenSlots:
		out := []string{pal.Bright.Render("SAVE SLOTS")}
		for _, s := range m.saves.ListSlots() {
			desc := "empty"
			if s.Exists {
				desc = s.Summary
				if !s.Corrupt {
					desc += "  " + s.ModifiedAt.Format("2006-01-02 15:04")
				}
			}
			out = append(out, pal.Text.Render(fmt.Sprintf("  %d. %s", s.Index+1, desc)))
		}
		return out
	case screenAliases:
		return []string{pal.Bright.Render("ALIASES"), pal.Dim.Render("  add <short> <command>, remove <short>, list, back")}
	case screenGameOver:
		st := m.state()
		out := []string{pal.Danger.Render("SANITY DEPLETED"), ""}
		for _, line := range statsLines(st) {
			out = append(out, pal.Text.Render("  "+line))
		}
		return append(out, "", pal.Dim.Render("Press Enter to leave."))
	}
	return nil
}

func (m model) menuBody() []string {
	pal := m.palette()
	st := m.state()
	available := m.session.Available()
	out := []string{pal.Bright.Render(fmt.Sprintf("CHALLENGES  (tier %d unlocked)", m.session.UnlockedTier()))}
	done := 0
	for i, c := range available {
		mark := " "
		if st.HasCompleted(c.ID) {
			mark = "x"
			done++
		}
		label := fmt.Sprintf("  %2d. [%s] %-28s L%d  %s", i+1, mark, c.Title, c.Level, c.Category)
		if mark == "x" {
			out = append(out, pal.Dim.Render(label))
		} else {
			out = append(out, pal.Text.Render(label))
		}
	}
	if done == m.session.Catalog().Graded() {
		out = append(out, "", pal.Bright.Render("Every challenge is solved. The ghost is quiet, for now."))
	}
	return out
}

func (m model) challengeBody() []string {
	a := m.attempt
	if a == nil {
		return nil
	}
	pal := m.palette()
	inst := a.Instance
	kind := string(inst.Difficulty)
	if a.Practice() {
		kind = "practice"
	}
	out := []string{
		pal.Bright.Render(inst.Title) + pal.Dim.Render(fmt.Sprintf("  [%s]  %d xp  %d sanity", kind, inst.XPReward, inst.SanityCost)),
		"",
	}
	for _, line := range strings.Split(strings.TrimRight(inst.Prompt, "\n"), "\n") {
		out = append(out, pal.Text.Render(line))
	}
	out = append(out, "", pal.Dim.Render(fmt.Sprintf("Attempts left: %d   Hints: %d/%d", a.AttemptsLeft(), len(a.Hints()), len(inst.Hints))))
	return out
}

func statusBar(pal theme.Palette, st *game.GameState) string {
	xp, span := st.NextLevelProgress()
	progress := "max"
	if span > 0 {
		progress = fmt.Sprintf("%d/%d", xp, span)
	}
	sanity := fmt.Sprintf("sanity %s %d", meter(st.Sanity, game.MaxSanity, 20), st.Sanity)
	line := fmt.Sprintf("%s  level %d (%s)  %d xp  ", st.PlayerName, st.CurrentLevel, progress, st.Experience)
	if st.Sanity < pal.Low {
		return pal.Text.Render(line) + pal.Danger.Render(sanity)
	}
	return pal.Text.Render(line + sanity)
}

func meter(value, limit, width int) string {
	filled := 0
	if limit > 0 {
		filled = value * width / limit
	}
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func statsLines(st *game.GameState) []string {
	out := []string{
		fmt.Sprintf("Operator:   %s", st.PlayerName),
		fmt.Sprintf("Level:      %d (%d xp)", st.CurrentLevel, st.Experience),
		fmt.Sprintf("Sanity:     %d/%d", st.Sanity, game.MaxSanity),
		fmt.Sprintf("Completed:  %d/%d", len(st.CompletedChallenges), challenge.Default().Graded()),
		fmt.Sprintf("Secrets:    %d", len(st.DiscoveredSecrets)),
	}
	if rate, ok := st.Analytics.SuccessRate(); ok {
		out = append(out, fmt.Sprintf("Recent:     %.0f%% success", rate*100))
	}
	out = append(out,
		fmt.Sprintf("Streak:     %d (best %d)", st.Analytics.LearningStreak, st.Analytics.LongestStreak),
		fmt.Sprintf("Play time:  %dm", st.Analytics.TotalPlaySeconds/60),
	)
	return out
}
