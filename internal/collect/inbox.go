package collect

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
	"github.com/Dicklesworthstone/swarmdash/internal/util"
)

// inboxLimit caps how many pending tasks the panel shows.
const inboxLimit = 20

// InboxTask is one pending task file.
type InboxTask struct {
	TaskID    string `json:"task_id"`
	Type      string `json:"type"`
	TaskLabel string `json:"task_label"`
	Source    string `json:"source"`
	Age       string `json:"age"`
}

// InboxPanel lists pending tasks, newest first.
type InboxPanel struct {
	Panel
	Items []InboxTask `json:"items"`
	Meta  InboxMeta   `json:"meta"`
}

type InboxMeta struct {
	Pending int `json:"pending"`
	Shown   int `json:"shown"`
}

// Inbox reads one task per inbox JSON file. Task age prefers the embedded
// created_at, then the ingest receipt time, then the file's mtime.
func (c *Collector) Inbox() InboxPanel {
	files := swarm.ListJSONFilesByMtime(c.Paths.InboxDir())
	now := time.Now().UTC()

	items := make([]InboxTask, 0, inboxLimit)
	for _, path := range files {
		if len(items) == inboxLimit {
			break
		}
		var payload struct {
			TaskID  string `json:"task_id"`
			Type    string `json:"type"`
			Source  string `json:"source"`
			Payload struct {
				TaskType string `json:"task_type"`
			} `json:"payload"`
			CreatedAt      string `json:"created_at"`
			IngestMetadata struct {
				ReceivedAt string `json:"received_at"`
			} `json:"ingest_metadata"`
		}
		swarm.ReadJSON(path, &payload)

		taskID := payload.TaskID
		if taskID == "" {
			taskID = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		taskType := payload.Payload.TaskType
		if taskType == "" {
			taskType = payload.Type
		}
		if taskType == "" {
			taskType = "unknown"
		}
		source := payload.Source
		if source == "" {
			source = "unknown"
		}

		items = append(items, InboxTask{
			TaskID:    taskID,
			Type:      taskType,
			TaskLabel: util.TaskTypeLabel(taskType),
			Source:    source,
			Age:       inboxAge(path, payload.CreatedAt, payload.IngestMetadata.ReceivedAt, now),
		})
	}

	p := InboxPanel{
		Panel: Panel{Key: "inbox", Title: "Inbox", Status: StatusOK, Errors: []string{}},
		Items: items,
		Meta:  InboxMeta{Pending: len(files), Shown: len(items)},
	}
	if len(files) == 0 {
		p.Status = StatusWarn
		p.Errors = append(p.Errors, "inbox empty")
	}
	return p
}

func inboxAge(path, createdAt, receivedAt string, now time.Time) string {
	for _, candidate := range []string{createdAt, receivedAt} {
		if ts, ok := util.ParseTimestamp(candidate); ok {
			age := now.Sub(ts)
			if age < 0 {
				age = 0
			}
			return util.RelativeAge(&age)
		}
	}
	if age, ok := swarm.FileAge(path); ok {
		return util.RelativeAge(&age)
	}
	return util.RelativeAge(nil)
}
