// Package tournament generates the pairwise comparisons the ranking
// pipeline consumes: it loads applicant metadata, schedules balanced
// pairs with a seeded round-robin rotation, and judges each pair through
// an LLM client.
package tournament

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Errors returned while loading the project registry.
var (
	// ErrTooFewProjects indicates fewer than two loadable projects; a
	// tournament needs at least one pair.
	ErrTooFewProjects = errors.New("need at least two projects to generate pairs")
)

// Registry holds applicant metadata keyed by project name. The full JSON
// payload is preserved verbatim for prompt construction.
type Registry struct {
	payloads map[string]json.RawMessage
}

// LoadRegistry reads every *.json file in dir into a Registry. Each file
// must carry a non-empty top-level "project_name"; duplicates across
// files are rejected. Names are NFC-normalized to match ingestion.
func LoadRegistry(dir string) (*Registry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan project directory: %w", err)
	}
	sort.Strings(paths)

	payloads := make(map[string]json.RawMessage, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var meta struct {
			ProjectName string `json:"project_name"`
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		name := norm.NFC.String(strings.TrimSpace(meta.ProjectName))
		if name == "" {
			return nil, fmt.Errorf("missing project_name in %s", path)
		}
		if _, exists := payloads[name]; exists {
			return nil, fmt.Errorf("duplicate project_name detected: %s", name)
		}
		payloads[name] = json.RawMessage(data)
	}

	if len(payloads) < 2 {
		return nil, ErrTooFewProjects
	}
	return &Registry{payloads: payloads}, nil
}

// Names returns the registered project names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.payloads))
	for name := range r.payloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Payload returns the raw JSON payload for the named project and whether
// it is registered.
func (r *Registry) Payload(name string) (json.RawMessage, bool) {
	payload, ok := r.payloads[name]
	return payload, ok
}

// Len returns the number of registered projects.
func (r *Registry) Len() int { return len(r.payloads) }
