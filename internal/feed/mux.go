package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dicklesworthstone/swarmdash/internal/ansi"
	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// OrchestratorTab is the display name of the fixed first tab.
const OrchestratorTab = "Orchestrator"

// Feed limits; the terminal panel shows a short, fresh window.
const (
	maxAgentTabs = 8
	tailBytes    = 2000
	maxFeedLines = 20
	// events.jsonl can grow large over a day; only the recent window matters.
	maxEventScan = 1000
)

// Components whose events belong to the orchestrator tab.
var orchestratorComponents = map[string]bool{
	"task-queue":   true,
	"kanban":       true,
	"cognitive":    true,
	"memory-sync":  true,
	"keepalive":    true,
	"health-check": true,
}

// Spinner and decoration glyphs that agent CLIs prepend to output lines.
const glyphCutset = "⏵⏷✻✶✢✽✿·*†●○◉◎⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏↑↓←→▶▷◆◇★☆✦✧✩ "

// Interactive-UI chrome that carries no information in a captured log.
var uiNoise = []string{
	"bypasspermission", "shift+tab", "esctointerrupt",
	"esctocancelpermission", "allowfortheentire",
	"ctrl+o to expand", "ctrl+c to cancel",
	"(shift+tab", "permission",
}

// Prober reports whether a tmux session is alive. Injectable for tests.
type Prober func(session string) bool

// Tab is one selectable feed.
type Tab struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
}

// Tabs returns the selectable feeds: tab 1 is always the orchestrator, tabs
// 2..9 are agent directories in name order, capped at 8.
func Tabs(p swarm.Paths, prefix string, alive Prober) []Tab {
	tabs := []Tab{{Index: 1, Name: OrchestratorTab, Alive: alive(prefix + "orchestrator")}}
	names := p.AgentNames()
	if len(names) > maxAgentTabs {
		names = names[:maxAgentTabs]
	}
	for i, name := range names {
		tabs = append(tabs, Tab{Index: i + 2, Name: name, Alive: alive(prefix + name)})
	}
	return tabs
}

// Clamp folds an out-of-range tab selection back to the first tab.
func Clamp(selected, n int) int {
	if selected < 1 || selected > n {
		return 1
	}
	return selected
}

// Lines returns the feed for one tab: the structured event stream when it has
// matching entries for today, otherwise a cleaned tail of the raw terminal
// capture.
func Lines(p swarm.Paths, tab Tab) []string {
	now := time.Now()
	if lines := eventLines(p.EventLog(now), tab); len(lines) > 0 {
		return lines
	}
	return rawLines(p, tab, now)
}

// eventLine mirrors one events.jsonl record.
type eventLine struct {
	TS        string `json:"ts"`
	Level     string `json:"level"`
	Event     string `json:"event"`
	Msg       string `json:"msg"`
	Component string `json:"component"`
	Agent     string `json:"agent"`
}

func eventLines(path string, tab Tab) []string {
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
		if len(raw) > maxEventScan {
			raw = raw[1:]
		}
	}

	var lines []string
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ev eventLine
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if tab.Index == 1 {
			if !orchestratorComponents[ev.Component] {
				continue
			}
		} else if ev.Agent != tab.Name {
			continue
		}

		timeStr := "??:??:??"
		if ts, ok := util.ParseTimestamp(ev.TS); ok {
			timeStr = ts.Format("15:04:05")
		}
		level := ev.Level
		if level == "" {
			level = "info"
		}
		event := ev.Event
		if event == "" {
			event = "?"
		}
		lines = append(lines, fmt.Sprintf("%s %-5s %s: %s", timeStr, strings.ToUpper(level), event, ev.Msg))
	}

	if len(lines) > maxFeedLines {
		lines = lines[len(lines)-maxFeedLines:]
	}
	return lines
}

// rawLines tails the pipe-pane capture for the tab's session and scrubs
// terminal chrome out of it.
func rawLines(p swarm.Paths, tab Tab, now time.Time) []string {
	name := tab.Name
	if tab.Index == 1 {
		name = "orchestrator"
	}
	path := filepath.Join(p.LogDir(now), name+".log")

	data, ok := swarm.TailBytes(path, tailBytes)
	if !ok {
		return []string{"No log available"}
	}

	var lines []string
	for _, line := range strings.Split(ansi.Strip(string(data)), "\n") {
		cleaned := cleanTerminalLine(line)
		if cleaned == "" {
			continue
		}
		lines = append(lines, cleaned)
	}
	if len(lines) > maxFeedLines {
		lines = lines[len(lines)-maxFeedLines:]
	}
	return lines
}

// cleanTerminalLine strips escape fragments, spinner glyphs, and interactive
// UI chrome from one captured terminal line. An empty result means the line
// carried nothing worth showing.
func cleanTerminalLine(line string) string {
	s := strings.TrimSpace(line)
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(ansi.StripFragment(s))
	s = strings.TrimLeft(s, glyphCutset)
	if utf8.RuneCountInString(s) <= 2 {
		return ""
	}
	lower := strings.ToLower(s)
	for _, noise := range uiNoise {
		if strings.Contains(lower, noise) {
			return ""
		}
	}
	return strings.TrimRight(s, "↑↓←→ ")
}
