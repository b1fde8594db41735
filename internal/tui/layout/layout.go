package layout

import "github.com/mattn/go-runewidth"

// Size tiers are shared across the dashboard surfaces so panel visibility
// stays predictable on small laptops, standard terminals, and big displays.
// Unlike width-only breakpoints, the dashboard also needs vertical room: a
// 200x20 terminal can fit wide rows but not the metrics or inbox panels.
//
// Reference matrix (panel visibility by tier):
//   TierNarrow (<80w or <35h):   single column; orchestrator, agents, kanban,
//                                activity log stacked; everything else dropped.
//   TierMedium (80-99w, 35-49h): two columns; inbox and metrics dropped.
//   TierLarge  (100-119w, 50-64h): two columns; metrics dropped.
//   TierXL     (>=120w, >=65h):  two columns, all panels visible.
const (
	MediumWidthThreshold  = 80
	MediumHeightThreshold = 35
	LargeWidthThreshold   = 100
	LargeHeightThreshold  = 50
	XLWidthThreshold      = 120
	XLHeightThreshold     = 65
)

// Tier describes the current terminal size bucket.
type Tier int

const (
	TierNarrow Tier = iota
	TierMedium
	TierLarge
	TierXL
)

// String returns the tier name for diagnostics.
func (t Tier) String() string {
	switch t {
	case TierXL:
		return "xl"
	case TierLarge:
		return "large"
	case TierMedium:
		return "medium"
	default:
		return "narrow"
	}
}

// TierFor maps terminal dimensions to a tier. Both dimensions must clear a
// tier's thresholds for it to apply, so a very wide but short terminal still
// degrades to a tier whose panels fit vertically.
func TierFor(width, height int) Tier {
	switch {
	case width >= XLWidthThreshold && height >= XLHeightThreshold:
		return TierXL
	case width >= LargeWidthThreshold && height >= LargeHeightThreshold:
		return TierLarge
	case width >= MediumWidthThreshold && height >= MediumHeightThreshold:
		return TierMedium
	default:
		return TierNarrow
	}
}

// ShowInbox reports whether the inbox panel fits at this tier.
func (t Tier) ShowInbox() bool { return t >= TierLarge }

// ShowMetrics reports whether the metrics panel fits at this tier.
func (t Tier) ShowMetrics() bool { return t >= TierXL }

// Columns returns the number of panel columns for this tier.
func (t Tier) Columns() int {
	if t == TierNarrow {
		return 1
	}
	return 2
}

// SplitColumns returns left/right widths for the two-column layout given
// total width. A small padding budget is removed to prevent edge wrapping.
func SplitColumns(total int) (left int, right int) {
	if total < MediumWidthThreshold {
		return total, 0
	}
	// Budget 2 cols for borders/padding on each panel (4 total)
	avail := total - 4
	if avail < 10 {
		avail = total
	}
	left = avail / 2
	right = avail - left
	return
}

// TruncateRunes trims a string to max runes and appends suffix if truncated.
// It is rune-aware to avoid splitting emoji or wide glyphs.
func TruncateRunes(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < len([]rune(suffix)) {
		return string(runes[:max])
	}
	return string(runes[:max-len([]rune(suffix))]) + suffix
}

// Truncate is a convenience wrapper for TruncateRunes using the standard
// single-character ellipsis "…" (U+2026).
func Truncate(s string, max int) string {
	return TruncateRunes(s, max, "…")
}

// TruncateWidth trims a string to max terminal cells, accounting for
// double-width CJK glyphs. Agent terminal lines pass through here because
// raw pane captures often carry wide runes that rune counting misjudges.
func TruncateWidth(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "…")
}
