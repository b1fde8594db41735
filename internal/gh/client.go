// Package gh lists open pull requests via the GitHub CLI. The gh binary is
// treated as an external collaborator: every failure mode (missing binary,
// nonzero exit, timeout, bad JSON) degrades to an empty result plus a reason.
package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds the gh invocation so a slow GitHub API cannot stall
// a refresh cycle.
const DefaultTimeout = 8 * time.Second

// DefaultLimit is how many open PRs to request.
const DefaultLimit = 10

// CI and review rollup states.
const (
	StatePass    = "pass"
	StateFail    = "fail"
	StatePending = "pending"
	StateNone    = "none"
)

// PR is one open pull request with its CI and review rollups.
type PR struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	CI     string `json:"ci"`
	Review string `json:"review"`
	Author string `json:"author"`
}

// Client invokes the gh binary.
type Client struct {
	Bin     string
	Timeout time.Duration
	Limit   int
}

// NewClient returns a Client with default binary, timeout, and limit.
func NewClient() *Client {
	return &Client{Bin: "gh", Timeout: DefaultTimeout, Limit: DefaultLimit}
}

// rawPR mirrors the fields requested from gh pr list --json.
type rawPR struct {
	Number            int              `json:"number"`
	Title             string           `json:"title"`
	StatusCheckRollup []map[string]any `json:"statusCheckRollup"`
	ReviewDecision    string           `json:"reviewDecision"`
	LatestReviews     []struct {
		State string `json:"state"`
	} `json:"latestReviews"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
}

// ListPRs runs gh pr list and returns the summarized open PRs. The returned
// error describes why the listing is unavailable; callers surface it as a
// warning, never a fatal condition.
func (c *Client) ListPRs(ctx context.Context) ([]PR, error) {
	bin := c.Bin
	if bin == "" {
		bin = "gh"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%s not installed", bin)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"pr", "list", "--json",
		"number,title,statusCheckRollup,reviewDecision,latestReviews,author",
		"--limit", fmt.Sprint(limit),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s pr list timed out after %s", bin, timeout)
		}
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		if i := strings.IndexByte(reason, '\n'); i >= 0 {
			reason = reason[:i]
		}
		return nil, fmt.Errorf("%s pr list failed: %s", bin, reason)
	}

	var raw []rawPR
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON from %s", bin)
	}

	prs := make([]PR, 0, len(raw))
	for _, r := range raw {
		prs = append(prs, PR{
			Number: r.Number,
			Title:  r.Title,
			CI:     summarizeChecks(r.StatusCheckRollup),
			Review: summarizeReview(r),
			Author: r.Author.Login,
		})
	}
	return prs, nil
}

var failStates = map[string]bool{
	"failure": true, "error": true, "action_required": true,
	"startup_failure": true, "timed_out": true, "cancelled": true,
}

var passStates = map[string]bool{
	"success": true, "neutral": true, "skipped": true,
}

// summarizeChecks collapses a statusCheckRollup to a single state. CheckRun
// objects carry conclusion (finished) or status (running); StatusContext
// objects carry state. Any failure wins; all-pass means pass; otherwise the
// rollup is still pending.
func summarizeChecks(checks []map[string]any) string {
	if len(checks) == 0 {
		return StateNone
	}

	hasFail := false
	allPass := true
	for _, c := range checks {
		val := strings.ToLower(firstString(c, "conclusion", "status", "state"))
		if failStates[val] {
			hasFail = true
		}
		if !passStates[val] {
			allPass = false
		}
	}

	switch {
	case hasFail:
		return StateFail
	case allPass:
		return StatePass
	default:
		return StatePending
	}
}

// summarizeReview maps reviewDecision to a state, falling back to the latest
// individual reviews when the decision field is empty.
func summarizeReview(r rawPR) string {
	switch r.ReviewDecision {
	case "APPROVED":
		return StatePass
	case "CHANGES_REQUESTED":
		return StateFail
	case "REVIEW_REQUIRED":
		return StatePending
	}
	if r.ReviewDecision != "" {
		return StateNone
	}

	state := StateNone
	for _, rev := range r.LatestReviews {
		switch strings.ToUpper(rev.State) {
		case "APPROVED":
			return StatePass
		case "CHANGES_REQUESTED":
			return StateFail
		case "COMMENTED", "PENDING":
			state = StatePending
		}
	}
	return state
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
