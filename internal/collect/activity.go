package collect

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// activityLimit caps how many completed tasks the panel shows.
const activityLimit = 10

// ActivityRecord is one recently completed task from the outbox.
type ActivityRecord struct {
	TaskID     string   `json:"task_id"`
	TaskLabel  string   `json:"task_label"`
	Status     string   `json:"status"`
	Agent      string   `json:"agent"`
	AgeSeconds *float64 `json:"age"`
	PRNumber   int      `json:"pr_number,omitempty"`
}

// ActivityPanel lists recently completed tasks, newest first.
type ActivityPanel struct {
	Panel
	Items []ActivityRecord `json:"items"`
	Meta  ActivityMeta     `json:"meta"`
}

type ActivityMeta struct {
	Shown int `json:"shown"`
}

// Activity reads the newest outbox files and attributes each completion to an
// agent. Attribution prefers the structured event stream, then legacy
// completion records in agents.log, then the outbox payload itself, and
// finally credits the orchestrator for self-processed tasks.
func (c *Collector) Activity() ActivityPanel {
	files := swarm.ListJSONFilesByMtime(c.Paths.OutboxDir())
	completions := c.buildCompletionMap()

	items := make([]ActivityRecord, 0, activityLimit)
	for _, path := range files {
		if len(items) == activityLimit {
			break
		}
		var data map[string]any
		if !swarm.ReadJSON(path, &data) {
			continue
		}

		taskID, _ := data["task_id"].(string)
		if taskID == "" {
			taskID = strings.TrimSuffix(filepath.Base(path), ".json")
		}

		result, _ := data["result"].(map[string]any)

		status, _ := data["status"].(string)
		if status == "" {
			if s, ok := result["status"].(string); ok {
				status = s
			} else {
				status = "unknown"
			}
		}

		agent := completions[taskID]
		if agent == "" {
			agent, _ = data["agent"].(string)
		}
		if agent == "" {
			agent = "orchestrator"
		}

		rec := ActivityRecord{
			TaskID:    taskID,
			TaskLabel: util.PrettyTaskID(taskID),
			Status:    status,
			Agent:     agent,
			PRNumber:  extractPRNumber(data, result),
		}
		if age, ok := swarm.FileAge(path); ok {
			secs := age.Seconds()
			rec.AgeSeconds = &secs
		}
		items = append(items, rec)
	}

	p := ActivityPanel{
		Panel: Panel{Key: "recent_activity", Title: "Recent Activity", Status: StatusOK, Errors: []string{}},
		Items: items,
		Meta:  ActivityMeta{Shown: len(items)},
	}
	if len(items) == 0 {
		p.Status = StatusWarn
		p.Errors = append(p.Errors, "no completed tasks")
	}
	return p
}

// extractPRNumber looks for a PR number at any of the nesting levels outbox
// writers have used: result, result.result, then the original payload.
func extractPRNumber(data, result map[string]any) int {
	if n, ok := numField(result, "pr_number"); ok {
		return n
	}
	if inner, ok := result["result"].(map[string]any); ok {
		if n, ok := numField(inner, "pr_number"); ok {
			return n
		}
	}
	if payload, ok := data["payload"].(map[string]any); ok {
		if n, ok := numField(payload, "pr_number"); ok {
			return n
		}
	}
	return 0
}

// buildCompletionMap maps task id to agent name using today's and
// yesterday's logs. The structured event stream is authoritative; the legacy
// quoted-pair format in agents.log fills gaps from older orchestrators.
func (c *Collector) buildCompletionMap() map[string]string {
	now := time.Now()
	completions := make(map[string]string)

	for _, day := range []time.Time{now, now.AddDate(0, 0, -1)} {
		scanEventAgents(c.Paths.EventLog(day), completions)
		scanLegacyCompletions(filepath.Join(c.Paths.LogDir(day), "agents.log"), completions)
	}
	return completions
}

func scanEventAgents(path string, completions map[string]string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, `"agent"`) {
			continue
		}
		var ev struct {
			TaskID string `json:"task_id"`
			Agent  string `json:"agent"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.TaskID != "" && ev.Agent != "" {
			completions[ev.TaskID] = ev.Agent
		}
	}
}

// scanLegacyCompletions parses lines of the form
//
//	... task 'task-id' completed by agent 'name' ...
//
// where the task id and agent name are the first two single-quoted spans.
func scanLegacyCompletions(path string, completions map[string]string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "completed by agent") {
			continue
		}
		parts := strings.Split(line, "'")
		if len(parts) >= 4 && parts[1] != "" && parts[3] != "" {
			completions[parts[1]] = parts[3]
		}
	}
}
