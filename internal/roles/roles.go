// Package roles maps agent names to human-readable role labels. An optional
// roles.yaml in the swarm directory overrides the built-in name heuristic.
package roles

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the optional override file inside the swarm directory.
const FileName = "roles.yaml"

// Table resolves agent names to role labels.
type Table struct {
	overrides map[string]string
}

// Load reads roles.yaml from dir. A missing or malformed file yields an
// empty table; the heuristic still applies.
func Load(dir string) *Table {
	t := &Table{}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return t
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return t
	}
	t.overrides = m
	return t
}

// Resolve returns the role label for an agent name, preferring an explicit
// roles.yaml entry over the name heuristic.
func (t *Table) Resolve(name string) string {
	if t != nil && t.overrides != nil {
		if label, ok := t.overrides[name]; ok && label != "" {
			return label
		}
	}
	return Derive(name)
}

// Derive infers a role label from the agent name alone. Management roles are
// matched before the generic "qa" rule so qa-lead does not resolve to
// Reviewer.
func Derive(name string) string {
	switch name {
	case "qa-lead":
		return "QA Lead"
	case "po":
		return "Product Owner"
	case "sm":
		return "Scrum Master"
	case "tl":
		return "Tech Lead"
	case "qa":
		return "Reviewer"
	case "devops":
		return "DevOps"
	case "security":
		return "Security"
	case "marketing":
		return "Marketing"
	case "sentry":
		return "Sentry"
	}
	if strings.Contains(name, "worker") {
		return "Worker"
	}
	return "Agent"
}
