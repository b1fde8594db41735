package collect

import (
	"context"

	"github.com/Dicklesworthstone/swarmdash/internal/gh"
)

// PRLister lists open pull requests. Satisfied by *gh.Client; injectable for
// tests.
type PRLister interface {
	ListPRs(ctx context.Context) ([]gh.PR, error)
}

// PRPanel lists open pull requests with CI and review rollups.
type PRPanel struct {
	Panel
	Items []gh.PR `json:"items"`
	Meta  PRMeta  `json:"meta"`
}

type PRMeta struct {
	Open int `json:"open"`
}

// PRs queries the GitHub CLI. Any failure yields an empty warn panel with
// the reason recorded; PR visibility is never worth blocking the dashboard.
func (c *Collector) PRs(ctx context.Context) PRPanel {
	p := PRPanel{
		Panel: Panel{Key: "prs", Title: "Open PRs", Status: StatusOK, Errors: []string{}},
		Items: []gh.PR{},
	}
	if c.GH == nil {
		p.Status = StatusWarn
		p.Errors = append(p.Errors, "gh client not configured")
		return p
	}

	prs, err := c.GH.ListPRs(ctx)
	if err != nil {
		p.Status = StatusWarn
		p.Errors = append(p.Errors, err.Error())
		return p
	}
	p.Items = prs
	p.Meta.Open = len(prs)
	return p
}
