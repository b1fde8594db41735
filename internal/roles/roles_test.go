package roles

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"qa-lead", "QA Lead"},
		{"po", "Product Owner"},
		{"sm", "Scrum Master"},
		{"tl", "Tech Lead"},
		{"qa", "Reviewer"},
		{"devops", "DevOps"},
		{"security", "Security"},
		{"marketing", "Marketing"},
		{"sentry", "Sentry"},
		{"worker-3", "Worker"},
		{"gpu-worker", "Worker"},
		{"unknown", "Agent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.name); got != tt.want {
				t.Errorf("Derive(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	data := "worker-1: Release Captain\nqa: \"\"\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl := Load(dir)
	if got := tbl.Resolve("worker-1"); got != "Release Captain" {
		t.Errorf("Resolve(worker-1) = %q, want override", got)
	}
	// Empty override falls back to the heuristic.
	if got := tbl.Resolve("qa"); got != "Reviewer" {
		t.Errorf("Resolve(qa) = %q, want Reviewer", got)
	}
	if got := tbl.Resolve("sm"); got != "Scrum Master" {
		t.Errorf("Resolve(sm) = %q, want heuristic", got)
	}
}

func TestLoadMissingOrBad(t *testing.T) {
	dir := t.TempDir()
	if got := Load(dir).Resolve("tl"); got != "Tech Lead" {
		t.Errorf("missing file: Resolve(tl) = %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Load(dir).Resolve("tl"); got != "Tech Lead" {
		t.Errorf("bad yaml: Resolve(tl) = %q", got)
	}
}
