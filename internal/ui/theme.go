package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mrjschrack/library-checker-app/internal/dashboard"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	SelectionBg   string
	SelectionText string
	Border        string

	// StatusColors keys are availability statuses.
	StatusColors map[string]string
}

var themes = []Theme{
	{
		Name:          "Paper",
		Text:          "#eceff4",
		Muted:         "#9aa5b5",
		Faint:         "#5b6474",
		Accent:        "#88c0d0",
		Success:       "#a3be8c",
		Warning:       "#ebcb8b",
		Danger:        "#bf616a",
		Info:          "#81a1c1",
		SelectionBg:   "#3b4252",
		SelectionText: "#eceff4",
		Border:        "#4c566a",
		StatusColors: map[string]string{
			dashboard.StatusAvailable:   "#a3be8c",
			dashboard.StatusHold:        "#ebcb8b",
			dashboard.StatusUnknown:     "#81a1c1",
			dashboard.StatusUnavailable: "#9aa5b5",
			dashboard.StatusNotFound:    "#5b6474",
			dashboard.StatusError:       "#bf616a",
		},
	},
	{
		Name:          "Dracula",
		Text:          "#f8f8f2",
		Muted:         "#a8a8b8",
		Faint:         "#6272a4",
		Accent:        "#bd93f9",
		Success:       "#50fa7b",
		Warning:       "#f1fa8c",
		Danger:        "#ff5555",
		Info:          "#8be9fd",
		SelectionBg:   "#44475a",
		SelectionText: "#f8f8f2",
		Border:        "#6272a4",
		StatusColors: map[string]string{
			dashboard.StatusAvailable:   "#50fa7b",
			dashboard.StatusHold:        "#f1fa8c",
			dashboard.StatusUnknown:     "#8be9fd",
			dashboard.StatusUnavailable: "#a8a8b8",
			dashboard.StatusNotFound:    "#6272a4",
			dashboard.StatusError:       "#ff5555",
		},
	},
}

// GetTheme returns the theme with the given name, defaulting to the first.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the name of the theme after the given one, cycling.
func NextTheme(name string) string {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ColorForStatus returns the badge color for an availability status.
func (t Theme) ColorForStatus(status string) string {
	if color, ok := t.StatusColors[status]; ok {
		return color
	}
	return t.Muted
}

// statusBadge is the declarative display treatment for one status. The
// mapping is presentation only; ordering lives in the availability package.
type statusBadge struct {
	Label string
	Icon  string
}

var statusBadges = map[string]statusBadge{
	dashboard.StatusAvailable:   {Label: "Borrow", Icon: "✓"},
	dashboard.StatusHold:        {Label: "Hold", Icon: "◷"},
	dashboard.StatusUnavailable: {Label: "Unavailable", Icon: "✗"},
	dashboard.StatusNotFound:    {Label: "Not Found", Icon: "✗"},
	dashboard.StatusUnknown:     {Label: "Check", Icon: "?"},
	dashboard.StatusError:       {Label: "Error", Icon: "!"},
}

// badgeFor returns the badge treatment for a status, falling back to the
// unknown treatment for statuses this build does not know.
func badgeFor(status string) statusBadge {
	if badge, ok := statusBadges[status]; ok {
		return badge
	}
	return statusBadges[dashboard.StatusUnknown]
}

func (t Theme) textStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
}

func (t Theme) mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
}

func (t Theme) faintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true)
}

func (t Theme) dangerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(t.SelectionBg)).
		Foreground(lipgloss.Color(t.SelectionText))
}

func (t Theme) badgeStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.ColorForStatus(status)))
}
