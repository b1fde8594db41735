package collect

import (
	"github.com/Dicklesworthstone/swarmdash/internal/feed"
)

// Terminal is the per-agent feed viewer state: the tab bar, the clamped
// selection, and the visible lines for the selected tab.
type Terminal struct {
	Tabs     []feed.Tab `json:"tabs"`
	Selected int        `json:"selected"`
	Lines    []string   `json:"lines"`
}

// Terminal multiplexes the agent feeds. Out-of-range selections fold back to
// the orchestrator tab.
func (c *Collector) Terminal(selected int) Terminal {
	tabs := feed.Tabs(c.Paths, c.Prefix, c.Probe)
	selected = feed.Clamp(selected, len(tabs))
	return Terminal{
		Tabs:     tabs,
		Selected: selected,
		Lines:    feed.Lines(c.Paths, tabs[selected-1]),
	}
}
