// Package ansi removes terminal control sequences from captured output.
// Pipe-pane logs contain raw terminal writes: CSI color/cursor sequences, OSC
// title updates, partial escapes cut at read boundaries, and stray C0 bytes.
package ansi

import "regexp"

// escapeRE matches everything Strip removes: CSI sequences, OSC sequences
// (BEL or ST terminated), charset selection, keypad mode, single-character
// escape commands, bell, backspace, remaining C0 controls except tab and
// newline, and carriage returns.
var escapeRE = regexp.MustCompile(`\x1b\[[?0-9;:]*[A-Za-z]` +
	`|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)` +
	`|\x1b\([A-Za-z]` +
	`|\x1b[>=]` +
	`|\x1b[78DEHM]` +
	`|\x07` +
	`|\x08` +
	`|[\x00-\x06\x0e-\x1a]` +
	`|\r`)

// fragmentRE matches the residue of an escape sequence whose leading bytes
// were lost to a read boundary: optional ?/;/: prefix, digits, optional
// further ;:-separated digit groups, one trailing letter.
var fragmentRE = regexp.MustCompile(`^[?;:]*[0-9]+[;:0-9]*[A-Za-z]`)

// Strip removes control sequences and carriage returns from s. It is
// idempotent and leaves ordinary bracket characters in clean text alone.
func Strip(s string) string {
	return escapeRE.ReplaceAllString(s, "")
}

// StripFragment removes a leading escape-sequence fragment from s. Fragments
// appear when a bounded tail read starts mid-sequence, leaving text like
// ";5;174mready" after Strip has removed the complete sequences.
func StripFragment(s string) string {
	return fragmentRE.ReplaceAllString(s, "")
}
