package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Short display labels for well-known task types. Ordered: more specific
// types must come before their prefixes (pr_review_second before pr_review).
var taskTypeLabels = []struct {
	taskType string
	label    string
}{
	{"issue_implement", "Impl"},
	{"pr_review_second", "2nd Review"},
	{"pr_review", "PR Review"},
	{"pr_fix", "PR Fix"},
	{"sentry_fix", "Sentry"},
	{"deploy_staging", "Deploy Stg"},
	{"deploy_prod", "Deploy Prod"},
	{"security_scan", "Sec Scan"},
	{"health_check", "Health"},
	{"dispatch_work", "Dispatch"},
	{"daily_standup", "Standup"},
	{"blocker_check", "Blockers"},
	{"backlog_groom", "Groom"},
	{"arch_review", "Arch Review"},
	{"arch_audit", "Arch Audit"},
	{"acceptance_test", "Accept Test"},
	{"test_strategy", "Test Strategy"},
	{"quality_gate", "Quality Gate"},
	{"retrospective", "Retro"},
	{"triage", "Triage"},
	{"spec_create", "Spec"},
	{"content_create", "Content"},
	{"self_heal", "Self-Heal"},
	{"self_improve", "Self-Improve"},
}

// Acronym-style tokens kept uppercase in generated labels.
var tokenLabels = map[string]string{
	"api": "API",
	"ci":  "CI",
	"db":  "DB",
	"llm": "LLM",
	"pr":  "PR",
	"qa":  "QA",
	"ssh": "SSH",
	"ui":  "UI",
	"ux":  "UX",
}

var labelDelimiter = regexp.MustCompile(`[._/\-]+`)

var ordinalSuffixes = map[string]bool{
	"first": true, "second": true, "third": true, "fourth": true, "fifth": true,
}

// TaskTypeLabel converts a raw task type like "pr_review_second" into a
// human-scannable label ("Second PR Review"). Unknown empty input yields
// "Unknown Task".
func TaskTypeLabel(taskType string) string {
	raw := strings.TrimSpace(taskType)
	if raw == "" {
		return "Unknown Task"
	}
	if raw == "pr_review_second" {
		return "Second PR Review"
	}

	tokens := labelDelimiter.Split(raw, -1)
	var parts []string
	for _, tok := range tokens {
		if tok != "" {
			parts = append(parts, tok)
		}
	}
	if len(parts) == 0 {
		return "Unknown Task"
	}

	// "pr_review_second" style: pull the trailing ordinal to the front.
	if len(parts) > 1 && ordinalSuffixes[strings.ToLower(parts[len(parts)-1])] {
		parts = append([]string{parts[len(parts)-1]}, parts[:len(parts)-1]...)
	}

	out := make([]string, 0, len(parts))
	for _, tok := range parts {
		lower := strings.ToLower(tok)
		switch {
		case tokenLabels[lower] != "":
			out = append(out, tokenLabels[lower])
		case tok == strings.ToUpper(tok) && tok != strings.ToLower(tok):
			out = append(out, tok)
		default:
			out = append(out, strings.ToUpper(lower[:1])+lower[1:])
		}
	}
	return strings.Join(out, " ")
}

// taskNameResolver attempts to produce a short label for a raw task id.
// Resolvers are tried in order until one succeeds.
type taskNameResolver func(taskID string) (string, bool)

var taskNameResolvers = []taskNameResolver{
	resolveTypedTask,
	resolveIssueTask,
	resolveTruncatedTask,
}

// PrettyTaskID converts a raw task id into a short human-readable label.
//
//	cognitive-issue_implement-1771857023-10740 -> Impl #10740
//	issue-867-auth-refactor                    -> #867 auth-refactor
//	cron-1771833600025-a826                    -> cron-1771833600025-~
func PrettyTaskID(taskID string) string {
	if taskID == "" {
		return NoDuration
	}
	for _, resolve := range taskNameResolvers {
		if label, ok := resolve(taskID); ok {
			return label
		}
	}
	return taskID
}

func resolveTypedTask(taskID string) (string, bool) {
	for _, entry := range taskTypeLabels {
		if !strings.Contains(taskID, entry.taskType) {
			continue
		}
		if i := strings.LastIndex(taskID, "-"); i >= 0 {
			if num := taskID[i+1:]; isDigits(num) {
				return fmt.Sprintf("%s #%s", entry.label, num), true
			}
		}
		return entry.label, true
	}
	return "", false
}

func resolveIssueTask(taskID string) (string, bool) {
	rest, ok := strings.CutPrefix(taskID, "issue-")
	if !ok {
		return "", false
	}
	dash := strings.Index(rest, "-")
	if dash <= 0 || !isDigits(rest[:dash]) {
		return "", false
	}
	slug := rest[dash+1:]
	if len(slug) > 14 {
		slug = slug[:13] + "~"
	}
	return fmt.Sprintf("#%s %s", rest[:dash], slug), true
}

func resolveTruncatedTask(taskID string) (string, bool) {
	if len(taskID) > 20 {
		return taskID[:19] + "~", true
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseTimestamp parses an ISO-8601 timestamp, accepting a trailing "Z" and
// missing zone (treated as UTC). ok is false for empty or malformed input.
func ParseTimestamp(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
