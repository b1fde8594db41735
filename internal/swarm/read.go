package swarm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReadJSON decodes the JSON file at path into v. It returns false when the
// file is missing, unreadable, or not valid JSON; v is left untouched in the
// corrupt case only if decoding failed before any field was written, so
// callers should pass a fresh value.
func ReadJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// FileAge returns how long ago path was last modified. ok is false when the
// file cannot be stat'ed. Negative ages (mtime in the future) clamp to zero.
func FileAge(path string) (time.Duration, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	age := time.Since(info.ModTime())
	if age < 0 {
		age = 0
	}
	return age, true
}

// ModTime returns path's modification time, ok=false when unavailable.
func ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// ListJSONFiles returns the *.json files directly under dir in sorted name
// order, skipping temp files. A missing directory yields nil.
func ListJSONFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files
}

// ListJSONFilesByMtime returns *.json files under dir ordered newest first.
func ListJSONFilesByMtime(dir string) []string {
	files := ListJSONFiles(dir)
	sort.Slice(files, func(i, j int) bool {
		ti, _ := ModTime(files[i])
		tj, _ := ModTime(files[j])
		if ti.Equal(tj) {
			return files[i] < files[j]
		}
		return ti.After(tj)
	})
	return files
}

// Glob returns the paths matching pattern inside dir, newest first. Errors
// yield nil.
func Glob(dir, pattern string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		ti, _ := ModTime(matches[i])
		tj, _ := ModTime(matches[j])
		if ti.Equal(tj) {
			return matches[i] < matches[j]
		}
		return ti.After(tj)
	})
	return matches
}
