package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/akyairhashvil/roadmap/internal/models"
)

type Theme struct {
	Name      string
	Base      lipgloss.Style
	Border    lipgloss.Color
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Axis      lipgloss.Style
	Team      lipgloss.Style
	Label     lipgloss.Style
	Input     lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
	// BarColors maps a task color to the fill used for its progress bar.
	BarColors map[models.Color]string
	BarEmpty  string
}

var Themes = map[string]Theme{
	"default": {
		Name:      "Default",
		Base:      lipgloss.NewStyle().Margin(1, 2),
		Border:    lipgloss.Color("63"),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")).Bold(true).Padding(0, 1),
		Axis:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		Team:      lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1).Width(50),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		BarColors: map[models.Color]string{
			models.ColorBlue:   "#3B82F6",
			models.ColorIndigo: "#6366F1",
		},
		BarEmpty: "#3A3A3A",
	},
	"dracula": {
		Name:      "Dracula",
		Base:      lipgloss.NewStyle().Margin(1, 2),
		Border:    lipgloss.Color("62"),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("50")).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62")).Bold(true).Padding(0, 1),
		Axis:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		Team:      lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("50")).Padding(0, 1).Width(50),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
		BarColors: map[models.Color]string{
			models.ColorBlue:   "#8BE9FD",
			models.ColorIndigo: "#BD93F9",
		},
		BarEmpty: "#44475A",
	},
}

// CurrentTheme holds the currently active theme.
var CurrentTheme = Themes["default"]

func SetTheme(name string) {
	if t, ok := Themes[name]; ok {
		CurrentTheme = t
	}
}

func (t Theme) barColor(c models.Color) string {
	if fill, ok := t.BarColors[c]; ok {
		return fill
	}
	return t.BarColors[models.DefaultColor]
}
