// Package theme picks terminal styles and chroma syntax styles for the light and dark themes.
package theme

import (
	"slices"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/blogctl/internal/config"
)

// Theme is the set of lipgloss styles used for command output.
type Theme struct {
	Name string

	Title   lipgloss.Style
	Meta    lipgloss.Style
	Tag     lipgloss.Style
	Body    lipgloss.Style
	Card    lipgloss.Style
	Prompt  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Status  lipgloss.Style
}

type palette struct {
	accent, text, muted, ok, bad, border lipgloss.Color
}

var palettes = map[string]palette{
	config.DarkTheme: {
		accent: lipgloss.Color("#8ec07c"),
		text:   lipgloss.Color("#ebdbb2"),
		muted:  lipgloss.Color("#928374"),
		ok:     lipgloss.Color("#b8bb26"),
		bad:    lipgloss.Color("#fb4934"),
		border: lipgloss.Color("#504945"),
	},
	config.LightTheme: {
		accent: lipgloss.Color("#3E27FF"),
		text:   lipgloss.Color("#4c4f69"),
		muted:  lipgloss.Color("#8c8fa1"),
		ok:     lipgloss.Color("#40a02b"),
		bad:    lipgloss.Color("#d20f39"),
		border: lipgloss.Color("#ccd0da"),
	},
}

// New falls back to the dark theme for unknown names.
func New(name string) *Theme {
	p, ok := palettes[name]
	if !ok {
		name = config.DarkTheme
		p = palettes[name]
	}

	return &Theme{
		Name:    name,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Meta:    lipgloss.NewStyle().Italic(true).Foreground(p.muted),
		Tag:     lipgloss.NewStyle().Foreground(p.accent).Padding(0, 1).Border(lipgloss.NormalBorder(), false, true).BorderForeground(p.border),
		Body:    lipgloss.NewStyle().Foreground(p.text),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1).Width(72),
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Success: lipgloss.NewStyle().Foreground(p.ok),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.bad),
		Muted:   lipgloss.NewStyle().Foreground(p.muted),
		Status:  lipgloss.NewStyle().Foreground(p.text).Background(p.border).Padding(0, 1),
	}
}

func (t *Theme) IsDark() bool {
	return t.Name != config.LightTheme
}

// DefaultSyntaxStyle is the configured chroma style for the theme.
func DefaultSyntaxStyle(themeName string) string {
	if config.AppConfig == nil {
		if themeName == config.LightTheme {
			return config.DefaultLightSyntaxTheme
		}
		return config.DefaultDarkSyntaxTheme
	}
	if themeName == config.LightTheme {
		return config.AppConfig.Theme.SyntaxHighlighting.DefaultLight
	}
	return config.AppConfig.Theme.SyntaxHighlighting.DefaultDark
}

// SyntaxStyle resolves a chroma style, using the fallback for unknown names.
func SyntaxStyle(name string) *chroma.Style {
	if s, ok := styles.Registry[name]; ok {
		return s
	}
	return styles.Fallback
}

func SyntaxStyles() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}
