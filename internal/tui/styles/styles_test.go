package styles

import (
	"testing"

	"github.com/Dicklesworthstone/swarmdash/internal/collect"
	"github.com/Dicklesworthstone/swarmdash/internal/gh"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/theme"
)

// Plain theme keeps Render output free of escape codes so the tests can
// compare text directly.
func plainStyles() Styles {
	return New(theme.Plain)
}

func TestCIIcon(t *testing.T) {
	s := plainStyles()
	tests := []struct {
		state string
		want  string
	}{
		{gh.StatePass, "OK"},
		{gh.StateFail, "FAIL"},
		{gh.StatePending, "..."},
		{gh.StateNone, "—"},
		{"bogus", "—"},
	}
	for _, tt := range tests {
		if got := s.CIIcon(tt.state); got != tt.want {
			t.Errorf("CIIcon(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestReviewIcon(t *testing.T) {
	s := plainStyles()
	tests := []struct {
		state string
		want  string
	}{
		{gh.StatePass, "OK"},
		{gh.StateFail, "CHG"},
		{gh.StatePending, "REQ"},
		{gh.StateNone, "—"},
	}
	for _, tt := range tests {
		if got := s.ReviewIcon(tt.state); got != tt.want {
			t.Errorf("ReviewIcon(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestAgentStateKeepsLabel(t *testing.T) {
	s := plainStyles()
	for _, state := range []string{
		collect.AgentIdle, collect.AgentBusy, collect.AgentStopped, collect.AgentDead, "unknown",
	} {
		if got := s.AgentState(state); got != state {
			t.Errorf("AgentState(%q) = %q, want label preserved", state, got)
		}
	}
}

func TestWIPKeepsText(t *testing.T) {
	s := plainStyles()
	for _, state := range []string{collect.WIPOver, collect.WIPFull, collect.WIPOK, collect.WIPUnbounded} {
		if got := s.WIP("3/2", state); got != "3/2" {
			t.Errorf("WIP(%q) = %q", state, got)
		}
	}
}
