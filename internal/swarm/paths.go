// Package swarm provides read-only access to the on-disk state directory
// written by the swarm orchestrator and its agents. All readers tolerate
// missing or corrupt files by returning an absence signal instead of an error.
package swarm

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is the swarm state directory when no override is given.
const DefaultDir = "/var/swarm"

// EnvDir is the environment variable that overrides the state directory.
const EnvDir = "SWARMDASH_DIR"

// Structural subdirectories under agents/ that are not real agents.
var reservedAgentDirs = map[string]bool{
	"orchestrator": true,
	"self":         true,
}

// IsReservedAgentDir reports whether name is a structural directory that must
// be excluded from agent enumeration.
func IsReservedAgentDir(name string) bool {
	return reservedAgentDirs[name]
}

// Paths resolves the well-known locations inside a swarm state directory.
type Paths struct {
	Root string
}

// NewPaths returns Paths rooted at dir, falling back to the SWARMDASH_DIR
// environment variable and then DefaultDir when dir is empty.
func NewPaths(dir string) Paths {
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		dir = DefaultDir
	}
	return Paths{Root: dir}
}

// Heartbeat is the orchestrator heartbeat marker file.
func (p Paths) Heartbeat() string { return filepath.Join(p.Root, "heartbeat") }

// State is the global orchestrator state file holding the dispatch table.
func (p Paths) State() string { return filepath.Join(p.Root, "state.json") }

// AgentsDir holds one subdirectory per agent.
func (p Paths) AgentsDir() string { return filepath.Join(p.Root, "agents") }

// AgentDir is the state directory for a single agent.
func (p Paths) AgentDir(name string) string { return filepath.Join(p.AgentsDir(), name) }

// AgentStatus is the per-agent status file.
func (p Paths) AgentStatus(name string) string {
	return filepath.Join(p.AgentDir(name), "status.json")
}

// Board is the kanban board file.
func (p Paths) Board() string { return filepath.Join(p.Root, "kanban", "board.json") }

// InboxDir holds one file per pending task.
func (p Paths) InboxDir() string { return filepath.Join(p.Root, "inbox") }

// OutboxDir holds one file per completed task.
func (p Paths) OutboxDir() string { return filepath.Join(p.Root, "outbox") }

// DailyBudget is the daily counters file.
func (p Paths) DailyBudget() string { return filepath.Join(p.Root, "budgets", "daily.json") }

// BudgetLimits is the budget ceilings file.
func (p Paths) BudgetLimits() string { return filepath.Join(p.Root, "budgets", "limits.json") }

// SentryState is the optional sentry issue-tracker snapshot.
func (p Paths) SentryState() string { return filepath.Join(p.Root, "sentry-state.json") }

// PRHealth is the optional pull-request health snapshot.
func (p Paths) PRHealth() string { return filepath.Join(p.Root, "pr-health.json") }

// LogDir is the per-day log directory for t's calendar date (local time).
func (p Paths) LogDir(t time.Time) string {
	return filepath.Join(p.Root, "logs", t.Format("2006-01-02"))
}

// EventLog is the structured line-delimited event stream for t's date.
func (p Paths) EventLog(t time.Time) string {
	return filepath.Join(p.LogDir(t), "events.jsonl")
}

// AgentNames lists agent subdirectories in sorted name order, excluding
// reserved structural directories. A missing agents/ directory yields nil.
func (p Paths) AgentNames() []string {
	entries, err := os.ReadDir(p.AgentsDir())
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || IsReservedAgentDir(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
