package collect

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
)

// dfTimeout bounds the disk-usage probe.
const dfTimeout = 5 * time.Second

// MetricsPanel reports daily budget consumption and resource extras.
type MetricsPanel struct {
	Panel
	Items []Row       `json:"items"`
	Meta  MetricsData `json:"meta"`
}

// MetricsData carries the raw counters behind the display rows.
type MetricsData struct {
	SessionsCreated  int  `json:"sessions_created"`
	MaxDailySessions int  `json:"max_daily_sessions"`
	TasksDispatched  int  `json:"tasks_dispatched"`
	TasksCompleted   int  `json:"tasks_completed"`
	MaxTasks         int  `json:"max_tasks"`
	ActiveAgents     int  `json:"active_agents"`
	MaxAgents        int  `json:"max_agents"`
	DiskPct          *int `json:"disk_pct"`
	SelfImproveCount int  `json:"self_improve_count"`
	SentryUnresolved *int `json:"sentry_unresolved"`
	SentryCritical   *int `json:"sentry_critical"`
	PROpen           int  `json:"pr_open"`
	PRConflicting    int  `json:"pr_conflicting"`
	PRBehind         int  `json:"pr_behind"`
}

// Metrics reads the budget counters and resource signals. Budget limit
// defaults match the orchestrator's own fallbacks.
func (c *Collector) Metrics() MetricsPanel {
	var daily struct {
		SessionsCreated  int `json:"sessions_created"`
		TasksDispatched  int `json:"tasks_dispatched"`
		TasksCompleted   int `json:"tasks_completed"`
		SelfImproveCount int `json:"self_improve_count"`
	}
	swarm.ReadJSON(c.Paths.DailyBudget(), &daily)

	limits := struct {
		MaxDailySessions    int `json:"max_daily_sessions"`
		MaxDailyTasks       int `json:"max_daily_tasks"`
		MaxConcurrentAgents int `json:"max_concurrent_agents"`
	}{MaxDailySessions: 100, MaxDailyTasks: 200, MaxConcurrentAgents: 6}
	swarm.ReadJSON(c.Paths.BudgetLimits(), &limits)

	active := 0
	for _, name := range c.Paths.AgentNames() {
		if c.Probe(c.Prefix + name) {
			active++
		}
	}

	data := MetricsData{
		SessionsCreated:  daily.SessionsCreated,
		MaxDailySessions: limits.MaxDailySessions,
		TasksDispatched:  daily.TasksDispatched,
		TasksCompleted:   daily.TasksCompleted,
		MaxTasks:         limits.MaxDailyTasks,
		ActiveAgents:     active,
		MaxAgents:        limits.MaxConcurrentAgents,
		DiskPct:          diskUsePercent(c.Paths.Root),
		SelfImproveCount: daily.SelfImproveCount,
	}

	var sentry struct {
		UnresolvedTotal int `json:"unresolved_total"`
		CriticalCount   int `json:"critical_count"`
	}
	if swarm.ReadJSON(c.Paths.SentryState(), &sentry) {
		data.SentryUnresolved = &sentry.UnresolvedTotal
		data.SentryCritical = &sentry.CriticalCount
	}

	var prHealth struct {
		TotalOpen   int   `json:"total_open"`
		Conflicting []any `json:"conflicting"`
		Behind      []any `json:"behind"`
	}
	if swarm.ReadJSON(c.Paths.PRHealth(), &prHealth) {
		data.PROpen = prHealth.TotalOpen
		data.PRConflicting = len(prHealth.Conflicting)
		data.PRBehind = len(prHealth.Behind)
	}

	items := []Row{
		{Label: "Sessions", Value: fmt.Sprintf("%d/%d", data.SessionsCreated, data.MaxDailySessions)},
		{Label: "Tasks", Value: fmt.Sprintf("%d/%d done %d", data.TasksDispatched, data.MaxTasks, data.TasksCompleted)},
		{Label: "Agents", Value: fmt.Sprintf("%d/%d active", data.ActiveAgents, data.MaxAgents)},
	}
	if data.DiskPct != nil {
		items = append(items, Row{Label: "Disk", Value: fmt.Sprintf("%d%%", *data.DiskPct)})
	}
	if data.SentryUnresolved != nil {
		items = append(items, Row{
			Label: "Sentry",
			Value: fmt.Sprintf("%d open, %d critical", *data.SentryUnresolved, *data.SentryCritical),
		})
	}
	if data.PROpen > 0 || data.PRConflicting > 0 || data.PRBehind > 0 {
		items = append(items, Row{
			Label: "PR health",
			Value: fmt.Sprintf("%d open, %d conflicting, %d behind", data.PROpen, data.PRConflicting, data.PRBehind),
		})
	}

	status := StatusOK
	if data.DiskPct != nil && *data.DiskPct >= 90 {
		status = StatusWarn
	}
	if data.SentryCritical != nil && *data.SentryCritical > 0 {
		status = StatusWarn
	}

	return MetricsPanel{
		Panel: Panel{Key: "metrics", Title: "Metrics", Status: status, Errors: []string{}},
		Items: items,
		Meta:  data,
	}
}

// diskUsePercent shells out to df for the filesystem holding dir and parses
// the use% column. Nil when df is unavailable or its output is unexpected.
func diskUsePercent(dir string) *int {
	ctx, cancel := context.WithTimeout(context.Background(), dfTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "df", dir).Output()
	if err != nil {
		return nil
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return nil
	}
	for _, field := range strings.Fields(lines[1]) {
		if strings.HasSuffix(field, "%") {
			if pct, err := strconv.Atoi(strings.TrimSuffix(field, "%")); err == nil {
				return &pct
			}
		}
	}
	return nil
}
