// Package dashboard is the live bubbletea dashboard.
package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/swarmdash/internal/collect"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/layout"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/panels"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/styles"
	"github.com/Dicklesworthstone/swarmdash/internal/watcher"
)

// DefaultRefreshInterval is the default auto-refresh cadence.
const DefaultRefreshInterval = 5 * time.Second

// collectTimeout bounds one full snapshot collection; the gh probe is the
// slow path and carries its own shorter timeout.
const collectTimeout = 15 * time.Second

// TickMsg drives the auto-refresh cadence.
type TickMsg time.Time

// RefreshMsg requests an immediate snapshot collection. The file watcher
// sends it between ticks when swarm state changes on disk.
type RefreshMsg struct{}

// SnapshotMsg delivers a freshly collected snapshot.
type SnapshotMsg struct {
	Snapshot collect.Snapshot
}

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Num1    key.Binding
	Num2    key.Binding
	Num3    key.Binding
	Num4    key.Binding
	Num5    key.Binding
	Num6    key.Binding
	Num7    key.Binding
	Num8    key.Binding
	Num9    key.Binding
}

var dashKeys = KeyMap{
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
	NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next feed")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev feed")),
	Num1:    key.NewBinding(key.WithKeys("1")),
	Num2:    key.NewBinding(key.WithKeys("2")),
	Num3:    key.NewBinding(key.WithKeys("3")),
	Num4:    key.NewBinding(key.WithKeys("4")),
	Num5:    key.NewBinding(key.WithKeys("5")),
	Num6:    key.NewBinding(key.WithKeys("6")),
	Num7:    key.NewBinding(key.WithKeys("7")),
	Num8:    key.NewBinding(key.WithKeys("8")),
	Num9:    key.NewBinding(key.WithKeys("9")),
}

// Model is the dashboard model.
type Model struct {
	collector *collect.Collector
	renderer  panels.Renderer
	styles    styles.Styles

	snapshot *collect.Snapshot
	tab      int
	width    int
	height   int
	tier     layout.Tier
	quitting bool

	refreshInterval time.Duration
	// enabled filters panels by key; config can switch panels off entirely.
	enabled func(key string) bool
}

// New creates a dashboard model around a collector.
func New(c *collect.Collector) Model {
	s := styles.Default()
	return Model{
		collector:       c,
		renderer:        panels.New(s),
		styles:          s,
		tab:             1,
		width:           80,
		height:          24,
		tier:            layout.TierFor(80, 24),
		refreshInterval: DefaultRefreshInterval,
		enabled:         func(string) bool { return true },
	}
}

// WithPanelFilter returns a copy of the model that skips panels the filter
// rejects.
func (m Model) WithPanelFilter(enabled func(key string) bool) Model {
	if enabled != nil {
		m.enabled = enabled
	}
	return m
}

// NewWithInterval creates a dashboard with a custom refresh cadence.
func NewWithInterval(c *collect.Collector, interval time.Duration) Model {
	m := New(c)
	if interval > 0 {
		m.refreshInterval = interval
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.collectSnapshot(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// collectSnapshot gathers all panels off the Update loop.
func (m Model) collectSnapshot() tea.Cmd {
	c, tab := m.collector, m.tab
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
		defer cancel()
		return SnapshotMsg{Snapshot: c.All(ctx, tab)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tier = layout.TierFor(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.collectSnapshot(), m.tick())

	case RefreshMsg:
		return m, m.collectSnapshot()

	case SnapshotMsg:
		snap := msg.Snapshot
		m.snapshot = &snap
		// The collector clamps out-of-range tabs; adopt its verdict so the
		// tab bar highlight matches the lines shown.
		m.tab = snap.Terminal.Selected
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, dashKeys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, dashKeys.Refresh):
			return m, m.collectSnapshot()

		case key.Matches(msg, dashKeys.NextTab):
			return m.selectTab(m.tab + 1)
		case key.Matches(msg, dashKeys.PrevTab):
			return m.selectTab(m.tab - 1)

		case key.Matches(msg, dashKeys.Num1):
			return m.selectTab(1)
		case key.Matches(msg, dashKeys.Num2):
			return m.selectTab(2)
		case key.Matches(msg, dashKeys.Num3):
			return m.selectTab(3)
		case key.Matches(msg, dashKeys.Num4):
			return m.selectTab(4)
		case key.Matches(msg, dashKeys.Num5):
			return m.selectTab(5)
		case key.Matches(msg, dashKeys.Num6):
			return m.selectTab(6)
		case key.Matches(msg, dashKeys.Num7):
			return m.selectTab(7)
		case key.Matches(msg, dashKeys.Num8):
			return m.selectTab(8)
		case key.Matches(msg, dashKeys.Num9):
			return m.selectTab(9)
		}
	}

	return m, nil
}

// selectTab switches the feed tab and collects fresh lines for it. The
// selection is clamped against the last known tab count so digits beyond the
// bar fold back to the orchestrator.
func (m Model) selectTab(n int) (tea.Model, tea.Cmd) {
	tabs := 1
	if m.snapshot != nil {
		tabs = len(m.snapshot.Terminal.Tabs)
	}
	if n < 1 || n > tabs {
		n = 1
	}
	if n == m.tab {
		return m, nil
	}
	m.tab = n
	return m, m.collectSnapshot()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.snapshot == nil {
		return "\n  " + m.styles.Dim.Render("Collecting swarm state...") + "\n"
	}

	snap := *m.snapshot
	r := m.renderer

	var sections []string
	if m.tier.Columns() == 1 {
		w := m.width
		for _, s := range []struct {
			key  string
			body string
		}{
			{"orchestrator", r.Orchestrator(snap.Orchestrator, w)},
			{"agents", r.Agents(snap.Agents, w)},
			{"kanban", r.Kanban(snap.Kanban, w)},
			{"activity_log", r.Logs(snap.Log, w)},
		} {
			if m.enabled(s.key) {
				sections = append(sections, s.body)
			}
		}
	} else {
		left, right := layout.SplitColumns(m.width)
		var leftCol, rightCol []string
		if m.enabled("orchestrator") {
			leftCol = append(leftCol, r.Orchestrator(snap.Orchestrator, left))
		}
		if m.enabled("agents") {
			leftCol = append(leftCol, r.Agents(snap.Agents, left))
		}
		if m.enabled("kanban") {
			leftCol = append(leftCol, r.Kanban(snap.Kanban, left))
		}
		if m.enabled("recent_activity") {
			rightCol = append(rightCol, r.Activity(snap.Activity, right))
		}
		if m.enabled("prs") {
			rightCol = append(rightCol, r.PRs(snap.PRs, right))
		}
		if m.tier.ShowInbox() && m.enabled("inbox") {
			leftCol = append(leftCol, r.Inbox(snap.Inbox, left))
		}
		if m.tier.ShowMetrics() && m.enabled("metrics") {
			rightCol = append(rightCol, r.Metrics(snap.Metrics, right))
		}
		if m.enabled("activity_log") {
			rightCol = append(rightCol, r.Logs(snap.Log, right))
		}

		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			strings.Join(leftCol, "\n"),
			strings.Join(rightCol, "\n")))
	}

	if m.enabled("agent_terminal") {
		sections = append(sections, r.Terminal(snap.Terminal, m.width))
	}
	sections = append(sections, m.helpBar())

	return strings.Join(sections, "\n")
}

func (m Model) helpBar() string {
	parts := []string{
		"1-9 feed", "tab next", "r refresh", "q quit",
	}
	bar := m.styles.Dim.Render(strings.Join(parts, "  ·  "))
	if m.snapshot != nil {
		bar += m.styles.Dim.Render("  ·  collected " + m.snapshot.CollectedAt)
	}
	return bar
}

// RenderOnce renders a single snapshot for the one-shot mode without
// starting a program or touching terminal modes.
func RenderOnce(snap collect.Snapshot, width, height int, enabled func(key string) bool) string {
	m := New(nil).WithPanelFilter(enabled)
	m.snapshot = &snap
	m.width = width
	m.height = height
	m.tier = layout.TierFor(width, height)
	m.tab = snap.Terminal.Selected
	return m.View()
}

// Run starts the live dashboard with a file watcher nudging refreshes
// between ticks. bubbletea owns the terminal for the duration and restores
// it on every exit path.
func Run(c *collect.Collector, interval time.Duration, enabled func(key string) bool) error {
	model := NewWithInterval(c, interval).WithPanelFilter(enabled)
	p := tea.NewProgram(model, tea.WithAltScreen())

	w, err := watcher.New(c.Paths, func() {
		p.Send(RefreshMsg{})
	})
	if err == nil {
		defer w.Close()
	}

	_, err = p.Run()
	return err
}
