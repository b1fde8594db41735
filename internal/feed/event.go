// Package feed normalizes the swarm's heterogeneous log streams into a
// single event shape and multiplexes per-agent terminal feeds. Sources range
// from structured events.jsonl lines to bracket-tagged plaintext to raw
// pipe-pane terminal captures.
package feed

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// LogEvent is one normalized feed entry.
type LogEvent struct {
	Seq     int       // ingest order, tie-breaker when timestamps collide
	Time    time.Time // zero when the source line carried no timestamp
	HasTime bool
	Tag     string // component or source tag
	Level   string
	Message string
	IsError bool
}

// Bracket-tagged plaintext: [tag] ISO-timestamp rest-of-message.
var logLineRE = regexp.MustCompile(
	`^\[([^\]]+)\]\s+(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\S*)\s+(.+)$`,
)

// Keepalive lines to keep; everything else in that stream is heartbeat noise.
var keepaliveKeep = []string{
	"wake", "restart", "warn", "alert", "killed", "error", "nudge", "dead",
}

// Substrings that mark a line as an error regardless of level.
var errorKeywords = []string{
	"ANTI-LOOP", "FATAL", "Force-killed", "ESCALATED", "ERROR", "FAILED",
}

// ParseLine normalizes one log line. The chain is JSON object, then
// bracket-tagged plaintext, then the raw line as an untimestamped message.
// Blank lines report ok=false.
func ParseLine(line string) (LogEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return LogEvent{}, false
	}

	if strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}") {
		if ev, ok := parseJSONLine(line); ok {
			return ev, true
		}
	}

	if m := logLineRE.FindStringSubmatch(line); m != nil {
		ev := LogEvent{Tag: m[1], Message: m[3]}
		if ts, ok := util.ParseTimestamp(m[2]); ok {
			ev.Time = ts
			ev.HasTime = true
		}
		ev.IsError = IsErrorMessage(ev.Message)
		return ev, true
	}

	return LogEvent{Message: line, IsError: IsErrorMessage(line)}, true
}

func parseJSONLine(line string) (LogEvent, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return LogEvent{}, false
	}

	event := str(payload, "event", "event_type")
	if event == "" {
		event = "event"
	}
	msg := str(payload, "msg", "message", "detail", "task_id")

	ev := LogEvent{
		Tag:   str(payload, "component"),
		Level: str(payload, "level"),
	}
	if ev.Tag == "" {
		ev.Tag = event
	}
	ev.Message = strings.TrimSpace(event + ": " + msg)
	ev.Message = strings.TrimSuffix(ev.Message, ":")

	if ts, ok := util.ParseTimestamp(str(payload, "ts", "timestamp")); ok {
		ev.Time = ts
		ev.HasTime = true
	}
	ev.IsError = ev.Level == "error" || ev.Level == "critical" || IsErrorMessage(ev.Message)
	return ev, true
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Keep applies source-specific noise filters. Keepalive lines survive only
// when they mention a lifecycle keyword; ssh-dispatch request-serving chatter
// is dropped.
func Keep(source, message string) bool {
	switch source {
	case "keepalive.log":
		lower := strings.ToLower(message)
		for _, kw := range keepaliveKeep {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	case "ssh-dispatch.log":
		return !strings.HasPrefix(message, "Serving ")
	}
	return true
}

// IsErrorMessage reports whether a message contains a known error marker.
func IsErrorMessage(message string) bool {
	for _, kw := range errorKeywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// SortNewestFirst orders events newest first. Events without a timestamp
// sort after all timestamped ones; equal timestamps fall back to ingest
// order, latest first.
func SortNewestFirst(events []LogEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.HasTime != b.HasTime {
			return a.HasTime
		}
		if !a.Time.Equal(b.Time) {
			return a.Time.After(b.Time)
		}
		return a.Seq > b.Seq
	})
}
