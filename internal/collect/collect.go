package collect

import (
	"context"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/config"
	"github.com/Dicklesworthstone/swarmdash/internal/feed"
	"github.com/Dicklesworthstone/swarmdash/internal/gh"
	"github.com/Dicklesworthstone/swarmdash/internal/roles"
	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/tmux"
)

// Collector gathers all panels from one swarm directory. The probe and PR
// lister fields exist so tests can run without tmux or gh installed.
type Collector struct {
	Paths  swarm.Paths
	Prefix string
	Probe  feed.Prober
	GH     PRLister
	Roles  *roles.Table
}

// New wires a Collector from configuration with the real tmux and gh probes.
func New(cfg *config.Config) *Collector {
	return &Collector{
		Paths:  swarm.NewPaths(cfg.Dir),
		Prefix: cfg.SessionPrefix,
		Probe:  tmux.SessionExists,
		GH:     &gh.Client{Bin: "gh", Timeout: gh.DefaultTimeout, Limit: cfg.PRLimit},
		Roles:  roles.Load(cfg.Dir),
	}
}

// Snapshot is the complete dashboard state at one instant. Field names are
// stable; JSON consumers see the same document whichever source satisfied
// each panel.
type Snapshot struct {
	Orchestrator OrchestratorPanel `json:"orchestrator"`
	Agents       AgentsPanel       `json:"agents"`
	Kanban       KanbanPanel       `json:"kanban"`
	Inbox        InboxPanel        `json:"inbox"`
	Activity     ActivityPanel     `json:"recent_activity"`
	PRs          PRPanel           `json:"prs"`
	Metrics      MetricsPanel      `json:"metrics"`
	Log          LogPanel          `json:"activity_log"`
	Terminal     Terminal          `json:"agent_terminal"`
	CollectedAt  string            `json:"collected_at"`
}

// All collects every panel for the given feed tab.
func (c *Collector) All(ctx context.Context, tab int) Snapshot {
	return Snapshot{
		Orchestrator: c.Orchestrator(),
		Agents:       c.Agents(),
		Kanban:       c.Kanban(),
		Inbox:        c.Inbox(),
		Activity:     c.Activity(),
		PRs:          c.PRs(ctx),
		Metrics:      c.Metrics(),
		Log:          c.Logs(),
		Terminal:     c.Terminal(tab),
		CollectedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
