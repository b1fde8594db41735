package ansi

import "testing"

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"brackets kept", "a [b] c [1;2] d", "a [b] c [1;2] d"},
		{"csi color", "\x1b[31mred\x1b[0m", "red"},
		{"csi private mode", "\x1b[?25lhidden\x1b[?25h", "hidden"},
		{"csi cursor", "line\x1b[2Aup", "lineup"},
		{"osc bel", "\x1b]0;title\x07text", "text"},
		{"osc st", "\x1b]8;;http://x\x1b\\link", "link"},
		{"charset", "\x1b(Bascii", "ascii"},
		{"keypad", "\x1b>nums\x1b=", "nums"},
		{"single char esc", "\x1b7save\x1b8", "save"},
		{"bell backspace", "a\x07b\x08c", "abc"},
		{"c0 controls", "a\x01b\x0ec", "abc"},
		{"tab newline kept", "a\tb\nc", "a\tb\nc"},
		{"carriage return", "progress\rdone", "progressdone"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Strip(tc.in); got != tc.want {
				t.Errorf("Strip(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Strip(Strip(x)) == Strip(x) for arbitrary byte soup.
func TestStripIdempotent(t *testing.T) {
	inputs := []string{
		"plain",
		"\x1b[31mred\x1b[0m and \x1b]0;t\x07rest",
		"\x1b[?25l\x1b(B\x1b>\x1b7\x07\x08\r\x01",
		"half escape \x1b[38;5",
		"[4;2H not an escape",
		string([]byte{0x1b, '[', '3', '1'}),
	}
	for _, in := range inputs {
		once := Strip(in)
		twice := Strip(once)
		if once != twice {
			t.Errorf("Strip not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestStripFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{";5;174mready", "ready"},
		{"?25lshown", "shown"},
		{"42Cmoved", "moved"},
		{"0;1;2mtext", "text"},
		{"no digits here", "no digits here"},
		{"ready ;5m later", "ready ;5m later"}, // only leading fragments
		{"", ""},
	}
	for _, tc := range tests {
		if got := StripFragment(tc.in); got != tc.want {
			t.Errorf("StripFragment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
