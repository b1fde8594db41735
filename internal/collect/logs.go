package collect

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/feed"
	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

const (
	logMaxEvents       = 15
	logMaxLinesPerFile = 200
	logEventScan       = 500
)

// Plaintext fallback sources and their display tags.
var logSources = []struct{ file, tag string }{
	{"agents.log", "agent"},
	{"inbox.log", "inbox"},
	{"keepalive.log", "alive"},
	{"alerts.log", "alert"},
	{"cost.log", "cost"},
	{"ssh-dispatch.log", "ssh"},
}

// Short display tags for event-stream components.
var componentTags = map[string]string{
	"task-queue":       "task",
	"agent-lifecycle":  "agent",
	"agent-supervisor": "super",
	"alert-router":     "alert",
	"kanban":           "kanban",
	"cognitive":        "think",
	"cost-tracker":     "cost",
	"self-improve":     "self",
	"telegram":         "tg",
	"memory-sync":      "mem",
	"health-check":     "health",
	"keepalive":        "alive",
	"adapter-claude":   "claude",
	"adapter-codex":    "codex",
}

// LogEntry is one activity-log line.
type LogEntry struct {
	Time    string `json:"time"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	IsError bool   `json:"is_error"`
}

// LogPanel is the unified activity log.
type LogPanel struct {
	Panel
	Items []LogEntry `json:"items"`
	Meta  LogMeta    `json:"meta"`
}

type LogMeta struct {
	Shown int `json:"shown"`
}

// Logs builds the unified activity feed for today. The structured event
// stream wins when it has entries; otherwise the per-concern plaintext logs
// are merged through the noise filters.
func (c *Collector) Logs() LogPanel {
	now := time.Now()
	entries := c.eventLogEntries(c.Paths.EventLog(now))
	if len(entries) == 0 {
		entries = c.legacyLogEntries(c.Paths.LogDir(now))
	}

	p := LogPanel{
		Panel: Panel{Key: "activity_log", Title: "Activity Log", Status: StatusOK, Errors: []string{}},
		Items: entries,
		Meta:  LogMeta{Shown: len(entries)},
	}
	if len(entries) == 0 {
		p.Status = StatusWarn
		p.Errors = append(p.Errors, "no log lines available")
	}
	return p
}

func (c *Collector) eventLogEntries(path string) []LogEntry {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		raw = append(raw, sc.Text())
		if len(raw) > logEventScan {
			raw = raw[1:]
		}
	}

	var events []feed.LogEvent
	seq := 0
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ev struct {
			TS        string `json:"ts"`
			Level     string `json:"level"`
			Component string `json:"component"`
			Msg       string `json:"msg"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Level == "debug" {
			continue
		}

		entry := feed.LogEvent{
			Seq:     seq,
			Tag:     componentTag(ev.Component),
			Level:   ev.Level,
			Message: ev.Msg,
			IsError: ev.Level == "error" || ev.Level == "critical",
		}
		if ts, ok := util.ParseTimestamp(ev.TS); ok {
			entry.Time = ts
			entry.HasTime = true
		}
		events = append(events, entry)
		seq++
	}

	return newestEntries(events)
}

func (c *Collector) legacyLogEntries(logDir string) []LogEntry {
	var events []feed.LogEvent
	seq := 0
	for _, src := range logSources {
		path := filepath.Join(logDir, src.file)
		for _, line := range swarm.TailLines(path, 64*1024, logMaxLinesPerFile) {
			ev, ok := feed.ParseLine(line)
			if !ok || !ev.HasTime {
				continue
			}
			if !feed.Keep(src.file, ev.Message) {
				continue
			}
			ev.Tag = src.tag
			ev.Seq = seq
			events = append(events, ev)
			seq++
		}
	}
	return newestEntries(events)
}

func newestEntries(events []feed.LogEvent) []LogEntry {
	feed.SortNewestFirst(events)
	if len(events) > logMaxEvents {
		events = events[:logMaxEvents]
	}
	entries := make([]LogEntry, 0, len(events))
	for _, ev := range events {
		timeStr := "??:??"
		if ev.HasTime {
			timeStr = ev.Time.Format("15:04")
		}
		entries = append(entries, LogEntry{
			Time:    timeStr,
			Tag:     ev.Tag,
			Message: ev.Message,
			IsError: ev.IsError,
		})
	}
	return entries
}

func componentTag(component string) string {
	if tag, ok := componentTags[component]; ok {
		return tag
	}
	if len(component) > 6 {
		return component[:6]
	}
	if component == "" {
		return "?"
	}
	return component
}
