package collect

import (
	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// Orchestrator health states.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
	HealthDead     = "dead"
)

// healthyHeartbeatSeconds is the maximum heartbeat age for a healthy verdict.
const healthyHeartbeatSeconds = 120

// OrchestratorPanel is the orchestrator liveness summary.
type OrchestratorPanel struct {
	Panel
	Items []Row            `json:"items"`
	Meta  OrchestratorMeta `json:"meta"`
}

// OrchestratorMeta carries the raw signals behind the health verdict.
type OrchestratorMeta struct {
	Health              string   `json:"health"`
	SessionAlive        bool     `json:"tmux_alive"`
	HeartbeatAgeSeconds *float64 `json:"heartbeat_age"`
	// Uptime approximates process uptime with heartbeat freshness; the
	// orchestrator does not persist its true start time.
	UptimeSeconds *float64 `json:"uptime"`
	Backend       string   `json:"backend"`
}

// Orchestrator reconciles the heartbeat file with tmux session liveness.
// A live session with a fresh heartbeat is healthy; a live session with a
// stale or missing heartbeat is degraded; no session means dead.
func (c *Collector) Orchestrator() OrchestratorPanel {
	hbAge, hbOK := swarm.FileAge(c.Paths.Heartbeat())
	alive := c.Probe(c.Prefix + "orchestrator")

	var state struct {
		OrchestratorBackend string `json:"orchestrator_backend"`
		Backend             string `json:"backend"`
	}
	swarm.ReadJSON(c.Paths.State(), &state)
	backend := state.OrchestratorBackend
	if backend == "" {
		backend = state.Backend
	}
	if backend == "" {
		backend = "unknown"
	}

	var health, status string
	switch {
	case alive && hbOK && hbAge.Seconds() < healthyHeartbeatSeconds:
		health, status = HealthHealthy, StatusOK
	case alive:
		health, status = HealthDegraded, StatusWarn
	default:
		health, status = HealthDead, StatusError
	}

	meta := OrchestratorMeta{
		Health:       health,
		SessionAlive: alive,
		Backend:      backend,
	}
	hbValue := util.NoDuration
	if hbOK {
		secs := hbAge.Seconds()
		meta.HeartbeatAgeSeconds = &secs
		meta.UptimeSeconds = &secs
		hbValue = util.HumanDuration(hbAge) + " ago"
	}

	p := OrchestratorPanel{
		Panel: Panel{Key: "orchestrator", Title: "Orchestrator", Status: status, Errors: []string{}},
		Items: []Row{
			{Label: "Health", Value: health},
			{Label: "Heartbeat", Value: hbValue},
			{Label: "Backend", Value: backend},
		},
		Meta: meta,
	}
	if !hbOK {
		p.Errors = append(p.Errors, "heartbeat file unavailable")
	}
	return p
}
