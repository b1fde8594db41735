// Package panels renders each collected panel to a bordered box.
package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/truncate"

	"github.com/Dicklesworthstone/swarmdash/internal/collect"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/layout"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/styles"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// Renderer renders collected panels with a shared style set.
type Renderer struct {
	S styles.Styles
}

// New returns a renderer for the given styles.
func New(s styles.Styles) Renderer {
	return Renderer{S: s}
}

// frame wraps body lines in the panel chrome. Lines are clipped to the inner
// width with an ANSI-aware truncation so styled text never wraps.
func (r Renderer) frame(p collect.Panel, width int, lines []string) string {
	inner := width - 4 // border + padding on both sides
	if inner < 10 {
		inner = 10
	}

	var b strings.Builder
	b.WriteString(r.S.PanelTitle.Render(layout.Truncate(p.Title, inner)))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(truncate.StringWithTail(line, uint(inner), "…"))
	}
	for _, e := range p.Errors {
		b.WriteString("\n")
		b.WriteString(r.S.Warning.Render(layout.Truncate("! "+e, inner)))
	}

	return r.S.PanelBorder(p.Status).Width(width - 2).Render(b.String())
}

// Orchestrator renders the orchestrator liveness summary.
func (r Renderer) Orchestrator(p collect.OrchestratorPanel, width int) string {
	lines := make([]string, 0, len(p.Items)+1)
	lines = append(lines, "Health: "+r.S.Health(p.Meta.Health))
	for _, row := range p.Items {
		if row.Label == "Health" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", row.Label, r.S.Normal.Render(row.Value)))
	}
	return r.frame(p.Panel, width, lines)
}

// Agents renders the reconciled agent table.
func (r Renderer) Agents(p collect.AgentsPanel, width int) string {
	title := fmt.Sprintf("%s (%d)", p.Title, p.Meta.Count)
	framed := p.Panel
	framed.Title = title

	if len(p.Items) == 0 {
		return r.frame(framed, width, []string{r.S.Dim.Render("No agents")})
	}

	lines := make([]string, 0, len(p.Items))
	for _, a := range p.Items {
		task := a.TaskLabel
		if task == "" {
			task = r.S.Dim.Render("—")
		}
		line := fmt.Sprintf("%-12s %-10s %-8s %s",
			layout.Truncate(a.Name, 12),
			layout.Truncate(a.Role, 10),
			r.S.AgentState(a.State),
			task)
		if d := secondsLabel(a.DurationSeconds); d != "" {
			line += " " + r.S.Dim.Render("("+d+")")
		}
		if a.TasksToday > 0 {
			line += " " + r.S.Dim.Render(fmt.Sprintf("[%d today]", a.TasksToday))
		}
		lines = append(lines, line)
	}
	return r.frame(framed, width, lines)
}

// Kanban renders the board summary with WIP pressure and velocity.
func (r Renderer) Kanban(p collect.KanbanPanel, width int) string {
	framed := p.Panel
	framed.Title = fmt.Sprintf("%s (%d tasks)", p.Title, p.Meta.TotalTasks)

	lines := make([]string, 0, len(p.Items)+2)
	for _, col := range p.Items {
		line := fmt.Sprintf("%-14s %s", layout.Truncate(col.Column, 14), r.S.WIP(col.WIP, col.WIPState))
		if len(col.TopTasks) > 0 {
			line += "  " + r.S.Dim.Render(layout.Truncate(strings.Join(col.TopTasks, ", "), 48))
		}
		lines = append(lines, line)
	}
	v := p.Meta.Velocity
	if v.ItemsCompleted > 0 {
		lines = append(lines, r.S.Dim.Render(fmt.Sprintf(
			"velocity %.1f/day, lead %dh (%d done this week)",
			v.ItemsPerDay, v.AvgLeadTimeHours, v.ItemsCompleted)))
	}
	if p.Meta.UpdatedAt != "" {
		lines = append(lines, r.S.Dim.Render("updated "+p.Meta.UpdatedAt))
	}
	return r.frame(framed, width, lines)
}

// Inbox renders the pending task list.
func (r Renderer) Inbox(p collect.InboxPanel, width int) string {
	framed := p.Panel
	framed.Title = fmt.Sprintf("%s (%d pending)", p.Title, p.Meta.Pending)

	lines := make([]string, 0, len(p.Items))
	for _, t := range p.Items {
		lines = append(lines, fmt.Sprintf("%-24s %-18s %s",
			layout.Truncate(t.TaskID, 24),
			layout.Truncate(t.TaskLabel, 18),
			r.S.Dim.Render(t.Age)))
	}
	return r.frame(framed, width, lines)
}

// Activity renders recently completed tasks.
func (r Renderer) Activity(p collect.ActivityPanel, width int) string {
	lines := make([]string, 0, len(p.Items))
	for _, a := range p.Items {
		status := a.Status
		switch status {
		case "completed", "success", "done":
			status = r.S.Success.Render(status)
		case "failed", "error":
			status = r.S.Error.Render(status)
		default:
			status = r.S.Warning.Render(status)
		}
		line := fmt.Sprintf("%-24s %s %s",
			layout.Truncate(a.TaskLabel, 24), status, r.S.Dim.Render("by "+a.Agent))
		if a.PRNumber > 0 {
			line += " " + r.S.Info.Render(fmt.Sprintf("PR #%d", a.PRNumber))
		}
		if d := secondsLabel(a.AgeSeconds); d != "" {
			line += " " + r.S.Dim.Render(d+" ago")
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, r.S.Dim.Render("No recent completions"))
	}
	return r.frame(p.Panel, width, lines)
}

// PRs renders open pull requests with CI and review markers.
func (r Renderer) PRs(p collect.PRPanel, width int) string {
	framed := p.Panel
	framed.Title = fmt.Sprintf("%s (%d)", p.Title, p.Meta.Open)

	lines := make([]string, 0, len(p.Items))
	for _, pr := range p.Items {
		lines = append(lines, fmt.Sprintf("#%-5d %-40s CI:%s  Rev:%s  %s",
			pr.Number,
			layout.Truncate(pr.Title, 40),
			r.S.CIIcon(pr.CI),
			r.S.ReviewIcon(pr.Review),
			r.S.Dim.Render(pr.Author)))
	}
	if len(lines) == 0 && len(p.Errors) == 0 {
		lines = append(lines, r.S.Dim.Render("No open PRs"))
	}
	return r.frame(framed, width, lines)
}

// Metrics renders the budget and resource rows.
func (r Renderer) Metrics(p collect.MetricsPanel, width int) string {
	lines := make([]string, 0, len(p.Items))
	for _, row := range p.Items {
		lines = append(lines, fmt.Sprintf("%-10s %s", row.Label, r.S.Normal.Render(row.Value)))
	}
	return r.frame(p.Panel, width, lines)
}

// Logs renders the unified activity log, newest first.
func (r Renderer) Logs(p collect.LogPanel, width int) string {
	lines := make([]string, 0, len(p.Items))
	for _, e := range p.Items {
		msg := e.Message
		if e.IsError {
			msg = r.S.Error.Render(msg)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			r.S.Dim.Render(e.Time),
			r.S.Info.Render(fmt.Sprintf("%-6s", e.Tag)),
			msg))
	}
	if len(lines) == 0 {
		lines = append(lines, r.S.Dim.Render("No activity today"))
	}
	return r.frame(p.Panel, width, lines)
}

// Terminal renders the agent feed with its tab bar.
func (r Renderer) Terminal(t collect.Terminal, width int) string {
	var tabs []string
	for _, tab := range t.Tabs {
		label := fmt.Sprintf("%d:%s", tab.Index, layout.Truncate(tab.Name, 12))
		switch {
		case tab.Index == t.Selected:
			tabs = append(tabs, r.S.ActiveTab.Render(label))
		case !tab.Alive:
			tabs = append(tabs, r.S.DeadTab.Render(label))
		default:
			tabs = append(tabs, r.S.Tab.Render(label))
		}
	}

	lines := make([]string, 0, len(t.Lines)+1)
	lines = append(lines, strings.Join(tabs, " "))
	for _, l := range t.Lines {
		lines = append(lines, r.S.Normal.Render(l))
	}

	panel := collect.Panel{Key: "agent_terminal", Title: "Agent Feed", Status: collect.StatusOK}
	return r.frame(panel, width, lines)
}

// secondsLabel formats an optional duration in seconds for display.
func secondsLabel(sec *float64) string {
	if sec == nil {
		return ""
	}
	return util.HumanDuration(time.Duration(*sec * float64(time.Second)))
}
