// Package styles holds the pre-built lipgloss styles for the dashboard.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/swarmdash/internal/collect"
	"github.com/Dicklesworthstone/swarmdash/internal/gh"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/theme"
)

// Styles contains the pre-built lipgloss styles for a theme. Build once per
// program run (or after a theme change) and share across panels.
type Styles struct {
	Theme theme.Theme

	// Base styles
	Title  lipgloss.Style
	Normal lipgloss.Style
	Dim    lipgloss.Style
	Bold   lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Panel chrome
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	// Tab bar
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	DeadTab   lipgloss.Style
}

// New builds the style set for a theme.
func New(t theme.Theme) Styles {
	return Styles{
		Theme: t,

		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Mauve),
		Normal: lipgloss.NewStyle().Foreground(t.Text),
		Dim:    lipgloss.NewStyle().Foreground(t.Overlay),
		Bold:   lipgloss.NewStyle().Bold(true),

		Success: lipgloss.NewStyle().Foreground(t.Success),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
		Error:   lipgloss.NewStyle().Foreground(t.Error),
		Info:    lipgloss.NewStyle().Foreground(t.Info),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Bold(true).Foreground(t.Blue),

		Tab:       lipgloss.NewStyle().Foreground(t.Subtext).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Bold(true).Foreground(t.Base).Background(t.Blue).Padding(0, 1),
		DeadTab:   lipgloss.NewStyle().Foreground(t.Overlay).Padding(0, 1),
	}
}

// Default builds styles from the current theme.
func Default() Styles {
	return New(theme.Current())
}

// PanelBorder returns the border color for a panel status. Degraded panels
// get a warning border so problems are visible without reading the rows.
func (s Styles) PanelBorder(status string) lipgloss.Style {
	switch status {
	case collect.StatusError:
		return s.Panel.BorderForeground(s.Theme.Error)
	case collect.StatusWarn:
		return s.Panel.BorderForeground(s.Theme.Warning)
	default:
		return s.Panel
	}
}

// AgentState renders an agent state label in its color.
func (s Styles) AgentState(state string) string {
	switch state {
	case collect.AgentIdle:
		return s.Success.Render(state)
	case collect.AgentBusy:
		return s.Warning.Render(state)
	case collect.AgentStopped:
		return s.Dim.Render(state)
	case collect.AgentDead:
		return s.Error.Render(state)
	default:
		return s.Dim.Foreground(s.Theme.Error).Render(state)
	}
}

// Health renders an orchestrator health label in its color.
func (s Styles) Health(health string) string {
	switch health {
	case collect.HealthHealthy:
		return s.Success.Render(health)
	case collect.HealthDegraded:
		return s.Warning.Render(health)
	default:
		return s.Error.Render(health)
	}
}

// CIIcon renders a short check-rollup marker for a PR row.
func (s Styles) CIIcon(state string) string {
	switch state {
	case gh.StatePass:
		return s.Success.Render("OK")
	case gh.StateFail:
		return s.Error.Render("FAIL")
	case gh.StatePending:
		return s.Warning.Render("...")
	default:
		return s.Dim.Render("—")
	}
}

// ReviewIcon renders a short review-decision marker for a PR row.
func (s Styles) ReviewIcon(state string) string {
	switch state {
	case gh.StatePass:
		return s.Success.Render("OK")
	case gh.StateFail:
		return s.Error.Render("CHG")
	case gh.StatePending:
		return s.Warning.Render("REQ")
	default:
		return s.Dim.Render("—")
	}
}

// WIP renders a column's work-in-progress counter colored by pressure.
func (s Styles) WIP(text, state string) string {
	switch state {
	case collect.WIPOver:
		return s.Error.Render(text)
	case collect.WIPFull:
		return s.Warning.Render(text)
	case collect.WIPOK:
		return s.Success.Render(text)
	default:
		return s.Normal.Render(text)
	}
}
