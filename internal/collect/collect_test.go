package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/gh"
	"github.com/Dicklesworthstone/swarmdash/internal/roles"
	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
)

// fakePRs satisfies PRLister without the gh binary.
type fakePRs struct {
	prs []gh.PR
	err error
}

func (f *fakePRs) ListPRs(context.Context) ([]gh.PR, error) { return f.prs, f.err }

func newTestCollector(t *testing.T, aliveSessions ...string) *Collector {
	t.Helper()
	alive := make(map[string]bool, len(aliveSessions))
	for _, s := range aliveSessions {
		alive[s] = true
	}
	root := t.TempDir()
	return &Collector{
		Paths:  swarm.Paths{Root: root},
		Prefix: "swarm-",
		Probe:  func(session string) bool { return alive[session] },
		GH:     &fakePRs{},
		Roles:  roles.Load(root),
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOrchestratorHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newTestCollector(t, "swarm-orchestrator")
		touch(t, c.Paths.Heartbeat())
		p := c.Orchestrator()
		if p.Meta.Health != HealthHealthy || p.Status != StatusOK {
			t.Errorf("health = %q status = %q", p.Meta.Health, p.Status)
		}
	})

	t.Run("degraded without heartbeat", func(t *testing.T) {
		c := newTestCollector(t, "swarm-orchestrator")
		p := c.Orchestrator()
		if p.Meta.Health != HealthDegraded || p.Status != StatusWarn {
			t.Errorf("health = %q status = %q", p.Meta.Health, p.Status)
		}
		if len(p.Errors) == 0 {
			t.Error("expected heartbeat error entry")
		}
	})

	t.Run("dead without session", func(t *testing.T) {
		c := newTestCollector(t)
		touch(t, c.Paths.Heartbeat())
		p := c.Orchestrator()
		if p.Meta.Health != HealthDead || p.Status != StatusError {
			t.Errorf("health = %q status = %q", p.Meta.Health, p.Status)
		}
	})
}

func TestAgentsReconciliation(t *testing.T) {
	c := newTestCollector(t, "swarm-worker-1", "swarm-qa")

	// worker-1: alive with a dispatched task -> busy.
	writeJSON(t, c.Paths.AgentStatus("worker-1"), map[string]any{"status": "idle"})
	// qa: alive, no task -> idle despite a stale busy status file.
	writeJSON(t, c.Paths.AgentStatus("qa"), map[string]any{"status": "busy"})
	// worker-2: session gone, status says stopped -> stopped.
	writeJSON(t, c.Paths.AgentStatus("worker-2"), map[string]any{"status": "stopped"})
	// worker-3: session gone, status says running -> dead.
	writeJSON(t, c.Paths.AgentStatus("worker-3"), map[string]any{"status": "running"})
	// ghost: directory only, never spawned -> omitted.
	if err := os.MkdirAll(c.Paths.AgentDir("ghost"), 0o755); err != nil {
		t.Fatal(err)
	}

	dispatched := time.Now().UTC().Add(-90 * time.Second).Format(time.RFC3339)
	writeJSON(t, c.Paths.State(), map[string]any{
		"dispatched_tasks": map[string]any{
			"issue-867-auth-refactor": map[string]any{
				"agent":         "worker-1",
				"dispatched_at": dispatched,
				"created_at":    dispatched,
			},
		},
	})

	p := c.Agents()
	byName := make(map[string]AgentRecord)
	for _, a := range p.Items {
		byName[a.Name] = a
	}

	if _, ok := byName["ghost"]; ok {
		t.Error("never-spawned agent should be omitted")
	}
	if got := byName["worker-1"]; got.State != AgentBusy || got.Task != "issue-867-auth-refactor" {
		t.Errorf("worker-1 = %+v", got)
	}
	if got := byName["worker-1"]; got.DurationSeconds == nil || *got.DurationSeconds < 85 || *got.DurationSeconds > 120 {
		t.Errorf("worker-1 duration = %v", got.DurationSeconds)
	}
	if got := byName["qa"]; got.State != AgentIdle || got.Task != "" {
		t.Errorf("qa = %+v", got)
	}
	if got := byName["worker-2"]; got.State != AgentStopped {
		t.Errorf("worker-2 = %+v", got)
	}
	if got := byName["worker-3"]; got.State != AgentDead {
		t.Errorf("worker-3 = %+v", got)
	}
	if p.Meta.Busy != 1 {
		t.Errorf("busy = %d, want 1", p.Meta.Busy)
	}
}

func TestAgentsFallbackTaskDiscovery(t *testing.T) {
	c := newTestCollector(t, "swarm-worker-1")
	// No status.json and no dispatch entry, but a task prompt exists.
	touch(t, filepath.Join(c.Paths.AgentDir("worker-1"), "task-fix-login.prompt"))

	p := c.Agents()
	if len(p.Items) != 1 {
		t.Fatalf("items = %+v", p.Items)
	}
	got := p.Items[0]
	if got.State != AgentBusy || got.Task != "fix-login" {
		t.Errorf("agent = %+v", got)
	}
	if got.DurationSeconds != nil {
		t.Error("fallback task has no dispatch duration")
	}
}

func TestDispatchTieBreak(t *testing.T) {
	older := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	newer := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)

	tests := []struct {
		name  string
		tasks map[string]any
		want  string
	}{
		{
			name: "latest created_at wins",
			tasks: map[string]any{
				"task-old": map[string]any{"agent": "w", "created_at": older},
				"task-new": map[string]any{"agent": "w", "created_at": newer},
			},
			want: "task-new",
		},
		{
			name: "timestamped beats untimestamped",
			tasks: map[string]any{
				"task-z": map[string]any{"agent": "w"},
				"task-a": map[string]any{"agent": "w", "created_at": older},
			},
			want: "task-a",
		},
		{
			name: "tie broken by task id",
			tasks: map[string]any{
				"task-a": map[string]any{"agent": "w", "created_at": older},
				"task-b": map[string]any{"agent": "w", "created_at": older},
			},
			want: "task-b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCollector(t, "swarm-w")
			writeJSON(t, c.Paths.AgentStatus("w"), map[string]any{})
			writeJSON(t, c.Paths.State(), map[string]any{"dispatched_tasks": tt.tasks})

			p := c.Agents()
			if len(p.Items) != 1 || p.Items[0].Task != tt.want {
				t.Errorf("items = %+v, want task %q", p.Items, tt.want)
			}
		})
	}
}

func TestKanbanMappingBoard(t *testing.T) {
	c := newTestCollector(t)
	now := time.Now().UTC()
	done := []map[string]any{
		{
			"title":             "Ship login fix",
			"entered_column_at": now.Add(-24 * time.Hour).Format(time.RFC3339),
			"created_at":        now.Add(-48 * time.Hour).Format(time.RFC3339),
		},
		{
			// Outside the 7-day window.
			"entered_column_at": now.Add(-10 * 24 * time.Hour).Format(time.RFC3339),
		},
	}
	writeJSON(t, c.Paths.Board(), map[string]any{
		"columns": map[string]any{
			"in_progress": map[string]any{
				"wip_limit": 2,
				"items": []map[string]any{
					{"task_type": "pr_review"},
					{"issue_number": 42},
					{"whatever": true},
				},
			},
			"backlog": map[string]any{"items": []map[string]any{}},
			"done":    map[string]any{"items": done},
		},
		"updated_at": "2026-08-30T10:00:00Z",
	})

	p := c.Kanban()
	if len(p.Items) != 3 {
		t.Fatalf("columns = %+v", p.Items)
	}
	// Known columns render in workflow order.
	if p.Items[0].Column != "backlog" || p.Items[1].Column != "in_progress" || p.Items[2].Column != "done" {
		t.Errorf("order = %v %v %v", p.Items[0].Column, p.Items[1].Column, p.Items[2].Column)
	}

	inProg := p.Items[1]
	if inProg.Count != 3 || inProg.WIPState != WIPOver || inProg.WIP != "3/2" {
		t.Errorf("in_progress = %+v", inProg)
	}
	wantTop := []string{"PR Review", "Issue #42", "Task"}
	for i, w := range wantTop {
		if inProg.TopTasks[i] != w {
			t.Errorf("top_tasks[%d] = %q, want %q", i, inProg.TopTasks[i], w)
		}
	}
	if p.Status != StatusWarn {
		t.Errorf("status = %q, want warn for over-limit column", p.Status)
	}

	v := p.Meta.Velocity
	if v.ItemsCompleted != 1 || v.ItemsPerDay != 0.1 || v.AvgLeadTimeHours != 24 {
		t.Errorf("velocity = %+v", v)
	}
	if p.Meta.UpdatedAt != "2026-08-30T10:00:00Z" {
		t.Errorf("updated_at = %q", p.Meta.UpdatedAt)
	}
}

func TestKanbanSequenceBoard(t *testing.T) {
	c := newTestCollector(t)
	writeJSON(t, c.Paths.Board(), map[string]any{
		"columns": []map[string]any{
			{"name": "ready", "wip_limit": 3, "tasks": []map[string]any{
				{"title": "A"}, {"title": "B"}, {"title": "C"},
			}},
			{"id": "review", "tasks": []map[string]any{{"title": "D"}}},
		},
	})

	p := c.Kanban()
	if len(p.Items) != 2 {
		t.Fatalf("columns = %+v", p.Items)
	}
	if p.Items[0].Column != "ready" || p.Items[0].WIPState != WIPFull {
		t.Errorf("ready = %+v", p.Items[0])
	}
	if p.Items[1].Column != "review" || p.Items[1].WIPState != WIPUnbounded || p.Items[1].WIP != "1/-" {
		t.Errorf("review = %+v", p.Items[1])
	}
	if p.Meta.TotalTasks != 4 {
		t.Errorf("total = %d", p.Meta.TotalTasks)
	}
}

func TestKanbanMissingBoard(t *testing.T) {
	c := newTestCollector(t)
	p := c.Kanban()
	if p.Status != StatusWarn || len(p.Items) != 0 || len(p.Errors) == 0 {
		t.Errorf("panel = %+v", p)
	}
}

func TestWIPState(t *testing.T) {
	tests := []struct {
		count, limit int
		want         string
	}{
		{5, 0, WIPUnbounded},
		{5, -1, WIPUnbounded},
		{3, 2, WIPOver},
		{2, 2, WIPFull},
		{1, 2, WIPOK},
	}
	for _, tt := range tests {
		if got := wipState(tt.count, tt.limit); got != tt.want {
			t.Errorf("wipState(%d, %d) = %q, want %q", tt.count, tt.limit, got, tt.want)
		}
	}
}

func TestInbox(t *testing.T) {
	c := newTestCollector(t)
	created := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
	writeJSON(t, filepath.Join(c.Paths.InboxDir(), "a.json"), map[string]any{
		"task_id":    "task-1",
		"type":       "pr_review",
		"source":     "webhook",
		"created_at": created,
	})
	writeJSON(t, filepath.Join(c.Paths.InboxDir(), "b.json"), map[string]any{
		"payload": map[string]any{"task_type": "issue_implement"},
	})

	p := c.Inbox()
	if p.Meta.Pending != 2 || len(p.Items) != 2 {
		t.Fatalf("panel = %+v", p)
	}
	byID := make(map[string]InboxTask)
	for _, it := range p.Items {
		byID[it.TaskID] = it
	}
	a := byID["task-1"]
	if a.Type != "pr_review" || a.TaskLabel != "PR Review" || a.Source != "webhook" {
		t.Errorf("a = %+v", a)
	}
	if a.Age != "2h ago" {
		t.Errorf("a.Age = %q", a.Age)
	}
	// Filename stem becomes the task id; payload task_type wins over type.
	b := byID["b"]
	if b.Type != "issue_implement" || b.TaskLabel != "Issue Implement" || b.Source != "unknown" {
		t.Errorf("b = %+v", b)
	}
}

func TestInboxEmpty(t *testing.T) {
	c := newTestCollector(t)
	p := c.Inbox()
	if p.Status != StatusWarn || len(p.Errors) == 0 {
		t.Errorf("panel = %+v", p)
	}
}

func TestActivityAttribution(t *testing.T) {
	c := newTestCollector(t)
	now := time.Now()

	// Structured events map task-1 to worker-1.
	eventLine := `{"ts":"` + now.UTC().Format(time.RFC3339) + `","task_id":"task-1","agent":"worker-1","event":"task.completed"}`
	touchDir := c.Paths.LogDir(now)
	if err := os.MkdirAll(touchDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.Paths.EventLog(now), []byte(eventLine+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Legacy quoted-pair record maps task-2 to qa.
	legacy := "[agent] " + now.UTC().Format(time.RFC3339) + " task 'task-2' completed by agent 'qa'\n"
	if err := os.WriteFile(filepath.Join(touchDir, "agents.log"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	writeJSON(t, filepath.Join(c.Paths.OutboxDir(), "task-1.json"), map[string]any{
		"task_id": "task-1",
		"status":  "success",
		"result":  map[string]any{"pr_number": 99},
	})
	writeJSON(t, filepath.Join(c.Paths.OutboxDir(), "task-2.json"), map[string]any{
		"task_id": "task-2",
		"result":  map[string]any{"status": "done", "result": map[string]any{"pr_number": 7}},
	})
	writeJSON(t, filepath.Join(c.Paths.OutboxDir(), "task-3.json"), map[string]any{
		"task_id": "task-3",
		"payload": map[string]any{"pr_number": 3},
	})

	p := c.Activity()
	byID := make(map[string]ActivityRecord)
	for _, it := range p.Items {
		byID[it.TaskID] = it
	}

	if got := byID["task-1"]; got.Agent != "worker-1" || got.Status != "success" || got.PRNumber != 99 {
		t.Errorf("task-1 = %+v", got)
	}
	if got := byID["task-2"]; got.Agent != "qa" || got.Status != "done" || got.PRNumber != 7 {
		t.Errorf("task-2 = %+v", got)
	}
	// No completion record and no embedded agent: credited to the orchestrator.
	if got := byID["task-3"]; got.Agent != "orchestrator" || got.Status != "unknown" || got.PRNumber != 3 {
		t.Errorf("task-3 = %+v", got)
	}
}

func TestMetricsDefaults(t *testing.T) {
	c := newTestCollector(t, "swarm-worker-1")
	if err := os.MkdirAll(c.Paths.AgentDir("worker-1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(c.Paths.AgentDir("worker-2"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, c.Paths.DailyBudget(), map[string]any{
		"sessions_created": 4,
		"tasks_dispatched": 12,
		"tasks_completed":  9,
	})

	p := c.Metrics()
	m := p.Meta
	if m.SessionsCreated != 4 || m.TasksDispatched != 12 || m.TasksCompleted != 9 {
		t.Errorf("counters = %+v", m)
	}
	// Limits file missing: orchestrator fallbacks apply.
	if m.MaxDailySessions != 100 || m.MaxTasks != 200 || m.MaxAgents != 6 {
		t.Errorf("limits = %+v", m)
	}
	if m.ActiveAgents != 1 {
		t.Errorf("active = %d, want 1", m.ActiveAgents)
	}
	if m.SentryUnresolved != nil {
		t.Error("sentry fields should be absent without sentry-state.json")
	}
}

func TestMetricsSentryWarn(t *testing.T) {
	c := newTestCollector(t)
	writeJSON(t, c.Paths.SentryState(), map[string]any{
		"unresolved_total": 5,
		"critical_count":   2,
	})
	p := c.Metrics()
	if p.Meta.SentryUnresolved == nil || *p.Meta.SentryUnresolved != 5 {
		t.Errorf("sentry = %+v", p.Meta)
	}
	if p.Status != StatusWarn {
		t.Errorf("status = %q, want warn with critical sentry issues", p.Status)
	}
}

func TestPRsDegrade(t *testing.T) {
	c := newTestCollector(t)
	c.GH = &fakePRs{err: errors.New("gh pr list timed out after 8s")}

	p := c.PRs(context.Background())
	if p.Status != StatusWarn || len(p.Items) != 0 {
		t.Errorf("panel = %+v", p)
	}
	if len(p.Errors) != 1 || p.Errors[0] != "gh pr list timed out after 8s" {
		t.Errorf("errors = %v", p.Errors)
	}
}

func TestPRsOK(t *testing.T) {
	c := newTestCollector(t)
	c.GH = &fakePRs{prs: []gh.PR{{Number: 1, Title: "x", CI: gh.StatePass, Review: gh.StateNone}}}

	p := c.PRs(context.Background())
	if p.Status != StatusOK || p.Meta.Open != 1 || len(p.Items) != 1 {
		t.Errorf("panel = %+v", p)
	}
}

func TestLogsFromEventStream(t *testing.T) {
	c := newTestCollector(t)
	now := time.Now()
	lines := ""
	for i := 0; i < 3; i++ {
		lines += fmt.Sprintf(
			`{"ts":"%s","level":"info","component":"task-queue","event":"task.received","msg":"queued %d"}`+"\n",
			now.UTC().Add(time.Duration(i)*time.Second).Format(time.RFC3339), i)
	}
	lines += `{"ts":"` + now.UTC().Format(time.RFC3339) + `","level":"debug","component":"cognitive","msg":"noise"}` + "\n"
	if err := os.MkdirAll(c.Paths.LogDir(now), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.Paths.EventLog(now), []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	p := c.Logs()
	if len(p.Items) != 3 {
		t.Fatalf("items = %+v", p.Items)
	}
	// Newest first; debug filtered.
	if p.Items[0].Message != "queued 2" || p.Items[0].Tag != "task" {
		t.Errorf("first = %+v", p.Items[0])
	}
}

func TestLogsLegacyFallback(t *testing.T) {
	c := newTestCollector(t)
	now := time.Now()
	dir := c.Paths.LogDir(now)
	ts := now.UTC().Format(time.RFC3339)

	keepalive := "[alive] " + ts + " checked worker-1\n" +
		"[alive] " + ts + " sent wake signal\n"
	ssh := "[ssh] " + ts + " Serving request from 10.0.0.4\n" +
		"[ssh] " + ts + " dispatched remote task\n"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keepalive.log"), []byte(keepalive), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ssh-dispatch.log"), []byte(ssh), 0o644); err != nil {
		t.Fatal(err)
	}

	p := c.Logs()
	if len(p.Items) != 2 {
		t.Fatalf("items = %+v", p.Items)
	}
	for _, it := range p.Items {
		if it.Message == "checked worker-1" || it.Message == "Serving request from 10.0.0.4" {
			t.Errorf("noise line survived: %+v", it)
		}
	}
}

func TestTerminalClampAndSnapshot(t *testing.T) {
	c := newTestCollector(t)
	if err := os.MkdirAll(c.Paths.AgentDir("worker-1"), 0o755); err != nil {
		t.Fatal(err)
	}

	term := c.Terminal(99)
	if term.Selected != 1 {
		t.Errorf("selected = %d, want clamp to 1", term.Selected)
	}
	if len(term.Tabs) != 2 {
		t.Errorf("tabs = %+v", term.Tabs)
	}

	snap := c.All(context.Background(), 1)
	if snap.CollectedAt == "" {
		t.Error("collected_at empty")
	}
	if snap.Terminal.Selected != 1 {
		t.Errorf("terminal = %+v", snap.Terminal)
	}

	// The JSON document keeps its stable top-level field names.
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"orchestrator", "agents", "kanban", "inbox", "recent_activity",
		"prs", "metrics", "activity_log", "agent_terminal", "collected_at",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("snapshot JSON missing %q", key)
		}
	}
}
