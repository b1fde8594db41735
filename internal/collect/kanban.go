package collect

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// WIP states for a kanban column.
const (
	WIPUnbounded = "unbounded"
	WIPOver      = "over"
	WIPFull      = "full"
	WIPOK        = "ok"
)

// Canonical column order; boards that store columns as a mapping lose their
// ordering in JSON, so known columns render in workflow order.
var columnOrder = []string{"backlog", "ready", "in_progress", "in_review", "done"}

// ColumnSummary is one summarized kanban column.
type ColumnSummary struct {
	Column   string   `json:"column"`
	Count    int      `json:"count"`
	WIPLimit int      `json:"wip_limit"`
	WIP      string   `json:"wip"`
	WIPState string   `json:"wip_state"`
	TopTasks []string `json:"top_tasks"`
}

// Velocity is computed live from done-column timestamps rather than trusting
// a possibly stale velocity file.
type Velocity struct {
	ItemsPerDay      float64 `json:"items_per_day"`
	AvgLeadTimeHours int     `json:"avg_lead_time_hours"`
	ItemsCompleted   int     `json:"items_completed"`
}

// KanbanPanel summarizes the board.
type KanbanPanel struct {
	Panel
	Items []ColumnSummary `json:"items"`
	Meta  KanbanMeta      `json:"meta"`
}

type KanbanMeta struct {
	Columns    int      `json:"columns"`
	TotalTasks int      `json:"total_tasks"`
	Velocity   Velocity `json:"velocity"`
	UpdatedAt  string   `json:"updated_at"`
}

// boardColumn is the normalized form of one column, whichever shape the
// board file used.
type boardColumn struct {
	name     string
	wipLimit int
	tasks    []map[string]any
}

// Kanban summarizes the board file. Both board shapes are accepted: columns
// as a name-keyed mapping or as an ordered sequence of column objects.
func (c *Collector) Kanban() KanbanPanel {
	var board struct {
		Columns   json.RawMessage `json:"columns"`
		UpdatedAt string          `json:"updated_at"`
	}
	if !swarm.ReadJSON(c.Paths.Board(), &board) {
		return KanbanPanel{
			Panel: Panel{Key: "kanban", Title: "Kanban", Status: StatusWarn,
				Errors: []string{"board.json missing or invalid"}},
			Items: []ColumnSummary{},
		}
	}

	columns := parseColumns(board.Columns)

	items := make([]ColumnSummary, 0, len(columns))
	total := 0
	overLimit := false
	var done *boardColumn
	for i, col := range columns {
		state := wipState(len(col.tasks), col.wipLimit)
		if state == WIPOver {
			overLimit = true
		}
		wip := fmt.Sprintf("%d/-", len(col.tasks))
		if col.wipLimit > 0 {
			wip = fmt.Sprintf("%d/%d", len(col.tasks), col.wipLimit)
		}
		top := make([]string, 0, 3)
		for _, task := range col.tasks {
			if len(top) == 3 {
				break
			}
			top = append(top, taskPreview(task))
		}
		items = append(items, ColumnSummary{
			Column:   col.name,
			Count:    len(col.tasks),
			WIPLimit: col.wipLimit,
			WIP:      wip,
			WIPState: state,
			TopTasks: top,
		})
		total += len(col.tasks)
		if col.name == "done" {
			done = &columns[i]
		}
	}

	status := StatusOK
	errs := []string{}
	if overLimit || len(items) == 0 {
		status = StatusWarn
	}
	if len(items) == 0 {
		errs = append(errs, "no columns found")
	}

	return KanbanPanel{
		Panel: Panel{Key: "kanban", Title: "Kanban", Status: status, Errors: errs},
		Items: items,
		Meta: KanbanMeta{
			Columns:    len(items),
			TotalTasks: total,
			Velocity:   velocityFromDone(done, time.Now().UTC()),
			UpdatedAt:  board.UpdatedAt,
		},
	}
}

// parseColumns accepts either board shape and returns normalized columns.
// Mapping boards render known columns in workflow order, then any extras
// sorted by name.
func parseColumns(raw json.RawMessage) []boardColumn {
	if len(raw) == 0 {
		return nil
	}

	var seq []json.RawMessage
	if err := json.Unmarshal(raw, &seq); err == nil {
		var columns []boardColumn
		for _, item := range seq {
			var col map[string]any
			if err := json.Unmarshal(item, &col); err != nil {
				continue
			}
			name, _ := col["name"].(string)
			if name == "" {
				name, _ = col["id"].(string)
			}
			if name == "" {
				name = "column"
			}
			columns = append(columns, boardColumn{
				name:     name,
				wipLimit: intField(col, "wip_limit"),
				tasks:    tasksFromValue(col),
			})
		}
		return columns
	}

	var byName map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil
	}

	names := make([]string, 0, len(byName))
	seen := make(map[string]bool, len(byName))
	for _, known := range columnOrder {
		if _, ok := byName[known]; ok {
			names = append(names, known)
			seen[known] = true
		}
	}
	var extras []string
	for name := range byName {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	names = append(names, extras...)

	var columns []boardColumn
	for _, name := range names {
		col := boardColumn{name: name}
		var asList []map[string]any
		if err := json.Unmarshal(byName[name], &asList); err == nil {
			col.tasks = asList
		} else {
			var asObj map[string]any
			if err := json.Unmarshal(byName[name], &asObj); err != nil {
				continue
			}
			col.wipLimit = intField(asObj, "wip_limit")
			col.tasks = tasksFromValue(asObj)
		}
		columns = append(columns, col)
	}
	return columns
}

// tasksFromValue pulls the task list out of a column object, trying the
// "tasks" key then "items".
func tasksFromValue(col map[string]any) []map[string]any {
	for _, key := range []string{"tasks", "items"} {
		list, ok := col[key].([]any)
		if !ok {
			continue
		}
		tasks := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				tasks = append(tasks, m)
			}
		}
		return tasks
	}
	return nil
}

// taskPreview picks the most informative short label for a task: its title,
// then a task-type label, then an issue reference, then a placeholder.
func taskPreview(task map[string]any) string {
	if title, ok := task["title"].(string); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	for _, key := range []string{"task_type", "type"} {
		if tt, ok := task[key].(string); ok && tt != "" {
			return util.TaskTypeLabel(tt)
		}
	}
	if n, ok := numField(task, "issue_number"); ok {
		return fmt.Sprintf("Issue #%d", n)
	}
	return "Task"
}

func wipState(count, limit int) string {
	switch {
	case limit <= 0:
		return WIPUnbounded
	case count > limit:
		return WIPOver
	case count == limit:
		return WIPFull
	default:
		return WIPOK
	}
}

// velocityFromDone derives throughput from done-column items whose
// entered_column_at falls within the last seven days.
func velocityFromDone(done *boardColumn, now time.Time) Velocity {
	if done == nil {
		return Velocity{}
	}
	cutoff := now.AddDate(0, 0, -7)

	count := 0
	totalLeadHours := 0.0
	for _, item := range done.tasks {
		enteredStr, _ := item["entered_column_at"].(string)
		entered, ok := util.ParseTimestamp(enteredStr)
		if !ok || entered.Before(cutoff) {
			continue
		}
		count++
		if createdStr, ok := item["created_at"].(string); ok {
			if created, ok := util.ParseTimestamp(createdStr); ok {
				totalLeadHours += entered.Sub(created).Hours()
			}
		}
	}

	if count == 0 {
		return Velocity{}
	}
	return Velocity{
		ItemsPerDay:      math.Round(float64(count)/7*10) / 10,
		AvgLeadTimeHours: int(math.Round(totalLeadHours / float64(count))),
		ItemsCompleted:   count,
	}
}

func intField(m map[string]any, key string) int {
	n, _ := numField(m, key)
	return n
}

func numField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
