// Package collect reconciles the swarm's on-disk state, tmux liveness, and
// GitHub CLI output into panel snapshots. Collectors never fail: a missing or
// corrupt source degrades the panel status and records a human-readable
// reason instead of returning an error.
package collect

// Panel statuses, in increasing severity.
const (
	StatusOK    = "ok"
	StatusWarn  = "warn"
	StatusError = "error"
)

// Panel is the envelope common to every collected panel.
type Panel struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Status string   `json:"status"`
	Errors []string `json:"errors"`
}

// Row is a generic label/value display item.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
