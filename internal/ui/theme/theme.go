package theme

import "github.com/charmbracelet/lipgloss"

// Palette is the set of styles every screen draws with.
type Palette struct {
	Text   lipgloss.Style
	Bright lipgloss.Style
	Dim    lipgloss.Style
	Border lipgloss.Style
	Danger lipgloss.Style
	// Low is the sanity level below which the status bar switches to Danger.
	Low int
}

// Terminal green on ANSI 256 colours.
var (
	TextGreen   = lipgloss.Color("2")
	BrightGreen = lipgloss.Color("10")
	DimGreen    = lipgloss.Color("22")
	BorderGreen = lipgloss.Color("2")
	DangerRed   = lipgloss.Color("9")
)

func Default() Palette {
	return Palette{
		Text:   lipgloss.NewStyle().Foreground(TextGreen),
		Bright: lipgloss.NewStyle().Foreground(BrightGreen).Bold(true),
		Dim:    lipgloss.NewStyle().Foreground(DimGreen),
		Border: lipgloss.NewStyle().Foreground(BorderGreen),
		Danger: lipgloss.NewStyle().Foreground(DangerRed).Bold(true),
		Low:    30,
	}
}
