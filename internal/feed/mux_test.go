package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTabs(t *testing.T) {
	p := swarm.Paths{Root: t.TempDir()}
	for _, name := range []string{"worker-1", "worker-2", "orchestrator", "self"} {
		if err := os.MkdirAll(p.AgentDir(name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	alive := func(session string) bool { return session == "swarm-worker-2" }
	tabs := Tabs(p, "swarm-", alive)

	if len(tabs) != 3 {
		t.Fatalf("got %d tabs, want 3: %+v", len(tabs), tabs)
	}
	if tabs[0].Index != 1 || tabs[0].Name != OrchestratorTab || tabs[0].Alive {
		t.Errorf("tab 1 = %+v", tabs[0])
	}
	if tabs[1].Name != "worker-1" || tabs[1].Index != 2 || tabs[1].Alive {
		t.Errorf("tab 2 = %+v", tabs[1])
	}
	if tabs[2].Name != "worker-2" || !tabs[2].Alive {
		t.Errorf("tab 3 = %+v", tabs[2])
	}
}

func TestTabsCapped(t *testing.T) {
	p := swarm.Paths{Root: t.TempDir()}
	for i := 0; i < 12; i++ {
		name := "agent-" + string(rune('a'+i))
		if err := os.MkdirAll(p.AgentDir(name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	tabs := Tabs(p, "swarm-", func(string) bool { return false })
	if len(tabs) != 9 {
		t.Errorf("got %d tabs, want 9 (orchestrator + 8 agents)", len(tabs))
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		selected, n, want int
	}{
		{1, 3, 1},
		{3, 3, 3},
		{0, 3, 1},
		{4, 3, 1},
		{-2, 3, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.selected, tt.n); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.selected, tt.n, got, tt.want)
		}
	}
}

func TestLinesFromEventStream(t *testing.T) {
	p := swarm.Paths{Root: t.TempDir()}
	events := strings.Join([]string{
		`{"ts":"2026-08-30T10:00:00+00:00","level":"info","component":"task-queue","event":"task.received","msg":"queued","agent":""}`,
		`{"ts":"2026-08-30T10:00:01+00:00","level":"warn","component":"adapter-claude","event":"agent.slow","msg":"lagging","agent":"worker-1"}`,
		`{"ts":"2026-08-30T10:00:02+00:00","level":"info","component":"kanban","event":"card.moved","msg":"to done","agent":""}`,
		`not json at all`,
	}, "\n")
	writeFile(t, p.EventLog(time.Now()), events)

	// Orchestrator tab sees only orchestrator components.
	lines := Lines(p, Tab{Index: 1, Name: OrchestratorTab})
	if len(lines) != 2 {
		t.Fatalf("orchestrator lines = %v", lines)
	}
	if !strings.Contains(lines[0], "INFO  task.received: queued") {
		t.Errorf("line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[0], "10:00:00 ") {
		t.Errorf("line = %q, want HH:MM:SS prefix", lines[0])
	}

	// Agent tab filters by agent field.
	lines = Lines(p, Tab{Index: 2, Name: "worker-1"})
	if len(lines) != 1 || !strings.Contains(lines[0], "WARN  agent.slow: lagging") {
		t.Errorf("agent lines = %v", lines)
	}
}

func TestLinesRawFallback(t *testing.T) {
	p := swarm.Paths{Root: t.TempDir()}
	raw := strings.Join([]string{
		"\x1b[38;5;2m✻ building project\x1b[0m",
		"ok",
		"press shift+tab to toggle BypassPermissions",
		"tests passed ↑",
	}, "\n")
	writeFile(t, filepath.Join(p.LogDir(time.Now()), "worker-1.log"), raw)

	lines := Lines(p, Tab{Index: 2, Name: "worker-1"})
	want := []string{"building project", "tests passed"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestLinesOrchestratorRawFallback(t *testing.T) {
	p := swarm.Paths{Root: t.TempDir()}
	writeFile(t, filepath.Join(p.LogDir(time.Now()), "orchestrator.log"), "dispatch loop started\n")

	lines := Lines(p, Tab{Index: 1, Name: OrchestratorTab})
	if len(lines) != 1 || lines[0] != "dispatch loop started" {
		t.Errorf("lines = %v", lines)
	}
}

func TestLinesNoLog(t *testing.T) {
	p := swarm.Paths{Root: t.TempDir()}
	lines := Lines(p, Tab{Index: 2, Name: "ghost"})
	if len(lines) != 1 || lines[0] != "No log available" {
		t.Errorf("lines = %v", lines)
	}
}
