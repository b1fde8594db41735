package swarm

import (
	"bytes"
	"io"
	"os"
)

// TailBytes reads at most maxBytes from the end of the file at path. When the
// read does not start at offset 0 the first (possibly truncated) line is
// discarded so callers only ever see whole lines. ok is false when the file
// cannot be opened.
func TailBytes(path string, maxBytes int64) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false
	}

	start := info.Size() - maxBytes
	if start < 0 {
		start = 0
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false
	}

	if start > 0 {
		if nl := bytes.IndexByte(data, '\n'); nl >= 0 {
			data = data[nl+1:]
		} else {
			data = nil
		}
	}
	return data, true
}

// TailLines returns the last max whole lines of the file at path, reading at
// most maxBytes from its end. Missing files yield nil.
func TailLines(path string, maxBytes int64, max int) []string {
	data, ok := TailBytes(path, maxBytes)
	if !ok || len(data) == 0 {
		return nil
	}
	raw := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	if max > 0 && len(raw) > max {
		raw = raw[len(raw)-max:]
	}
	lines := make([]string, 0, len(raw))
	for _, b := range raw {
		lines = append(lines, string(b))
	}
	return lines
}
