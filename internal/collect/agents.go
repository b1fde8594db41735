package collect

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// Agent states, most significant first.
const (
	AgentBusy    = "busy"
	AgentIdle    = "idle"
	AgentStopped = "stopped"
	AgentDead    = "dead"
)

// AgentRecord is one reconciled agent row.
type AgentRecord struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	State     string `json:"state"`
	Task      string `json:"task,omitempty"`
	TaskLabel string `json:"task_label,omitempty"`
	// DurationSeconds is time since dispatch; nil when the agent has no
	// active dispatched task.
	DurationSeconds *float64 `json:"duration"`
	SessionAlive    bool     `json:"tmux"`
	TasksToday      int      `json:"tasks_today"`
}

// AgentsPanel lists all known agents.
type AgentsPanel struct {
	Panel
	Items []AgentRecord `json:"items"`
	Meta  AgentsMeta    `json:"meta"`
}

type AgentsMeta struct {
	Count int `json:"count"`
	Busy  int `json:"busy"`
}

// dispatchEntry is one agent's winning row from the dispatch table.
type dispatchEntry struct {
	TaskID       string
	DispatchedAt string
	CreatedAt    string
}

// stateFile mirrors the dispatch table in state.json.
type stateFile struct {
	DispatchedTasks map[string]struct {
		Agent        string `json:"agent"`
		DispatchedAt string `json:"dispatched_at"`
		CreatedAt    string `json:"created_at"`
	} `json:"dispatched_tasks"`
}

// Agents reconciles three sources per agent: the per-agent status file, the
// global dispatch table, and tmux session liveness. Liveness is ground truth;
// the status file only contributes when the session is gone.
func (c *Collector) Agents() AgentsPanel {
	dispatch := c.buildDispatchMap()

	var items []AgentRecord
	for _, name := range c.Paths.AgentNames() {
		alive := c.Probe(c.Prefix + name)
		entry, dispatched := dispatch[name]

		var status struct {
			Status string `json:"status"`
			Role   string `json:"role"`
		}
		hasStatus := swarm.ReadJSON(c.Paths.AgentStatus(name), &status)

		if !hasStatus && !alive && !dispatched {
			// Directory exists but the agent was never spawned.
			continue
		}

		rec := AgentRecord{
			Name:         name,
			SessionAlive: alive,
			TasksToday:   c.countTasksToday(name),
		}
		if status.Role != "" {
			rec.Role = status.Role
		} else {
			rec.Role = c.Roles.Resolve(name)
		}

		task := entry.TaskID
		if !dispatched && !hasStatus {
			task = c.fallbackTask(name)
		}

		switch {
		case alive && task != "":
			rec.State = AgentBusy
			rec.Task = task
			rec.TaskLabel = util.PrettyTaskID(task)
			if secs, ok := dispatchAge(entry.DispatchedAt); ok {
				rec.DurationSeconds = &secs
			}
		case alive:
			rec.State = AgentIdle
		case hasStatus && status.Status == AgentStopped:
			rec.State = AgentStopped
		default:
			rec.State = AgentDead
		}

		items = append(items, rec)
	}

	busy := 0
	for _, a := range items {
		if a.State == AgentBusy {
			busy++
		}
	}

	p := AgentsPanel{
		Panel: Panel{Key: "agents", Title: "Agents", Status: StatusOK, Errors: []string{}},
		Items: items,
		Meta:  AgentsMeta{Count: len(items), Busy: busy},
	}
	if len(items) == 0 {
		p.Status = StatusWarn
		p.Errors = append(p.Errors, "no agents discovered")
	}
	return p
}

// buildDispatchMap reduces the dispatch table to one entry per agent. When an
// agent has several entries the one with the latest created_at wins; entries
// without a parsable timestamp lose to any that have one, and exact ties go
// to the lexically larger task id.
func (c *Collector) buildDispatchMap() map[string]dispatchEntry {
	var state stateFile
	swarm.ReadJSON(c.Paths.State(), &state)

	winners := make(map[string]dispatchEntry)
	for taskID, info := range state.DispatchedTasks {
		if info.Agent == "" {
			continue
		}
		entry := dispatchEntry{
			TaskID:       taskID,
			DispatchedAt: info.DispatchedAt,
			CreatedAt:    info.CreatedAt,
		}
		current, ok := winners[info.Agent]
		if !ok || dispatchLess(current, entry) {
			winners[info.Agent] = entry
		}
	}
	return winners
}

// dispatchLess reports whether a loses to b under the tie-break ordering.
func dispatchLess(a, b dispatchEntry) bool {
	at, aok := util.ParseTimestamp(a.CreatedAt)
	bt, bok := util.ParseTimestamp(b.CreatedAt)
	if aok != bok {
		return bok
	}
	if aok && !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.TaskID < b.TaskID
}

func dispatchAge(dispatchedAt string) (float64, bool) {
	ts, ok := util.ParseTimestamp(dispatchedAt)
	if !ok {
		return 0, false
	}
	secs := time.Since(ts).Seconds()
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// fallbackTask scans an agent directory for the newest task prompt or output
// log when neither the dispatch table nor the status file knows the task.
func (c *Collector) fallbackTask(name string) string {
	dir := c.Paths.AgentDir(name)
	for _, pat := range []struct{ glob, prefix, suffix string }{
		{"task-*.prompt", "task-", ".prompt"},
		{"output-*.log", "output-", ".log"},
	} {
		matches := swarm.Glob(dir, pat.glob)
		if len(matches) > 0 {
			base := filepath.Base(matches[0])
			return strings.TrimSuffix(strings.TrimPrefix(base, pat.prefix), pat.suffix)
		}
	}
	return ""
}

// countTasksToday counts output logs in the agent directory modified on the
// current calendar day.
func (c *Collector) countTasksToday(name string) int {
	today := time.Now().Format("2006-01-02")
	count := 0
	for _, path := range swarm.Glob(c.Paths.AgentDir(name), "output-*.log") {
		if mt, ok := swarm.ModTime(path); ok && mt.Format("2006-01-02") == today {
			count++
		}
	}
	return count
}
