// Package snapshot fetches everything the dashboard needs for one plan —
// the plan's runs, every test flattened across runs, and the four lookup
// tables — into an immutable value, memoized per plan id for a fixed window.
package snapshot

import (
	"strconv"
	"strings"
	"time"

	"backlog/internal/testrail"
)

// Run identifies one run inside the snapshot.
type Run struct {
	ID   int
	Name string
	URL  string
}

// Test is a plan test annotated with its owning run.
type Test struct {
	testrail.Test
	Run Run
}

// Snapshot is a read-only view of one plan at fetch time. It is never
// mutated after Fetch returns; the cache replaces it wholesale on expiry.
type Snapshot struct {
	Plan       *testrail.Plan
	Runs       []Run
	Tests      []Test
	Statuses   map[int]string
	Priorities map[int]string
	Types      map[int]string
	// Options maps a custom-field name ("custom_device") to its
	// option-id → label table, for dropdown and multi-select fields.
	Options   map[string]map[int64]string
	FetchedAt time.Time
}

// FieldOptions returns the option table for a custom-field name, or nil
// when the field has none.
func (s *Snapshot) FieldOptions(name string) map[int64]string {
	return s.Options[name]
}

// StatusLabel resolves a raw status id, falling back to "Unknown".
func (s *Snapshot) StatusLabel(id int) string {
	if label, ok := s.Statuses[id]; ok {
		return label
	}
	return "Unknown"
}

// PriorityLabel resolves a priority id, falling back to a placeholder.
func (s *Snapshot) PriorityLabel(id int) string {
	if label, ok := s.Priorities[id]; ok {
		return label
	}
	return "—"
}

// TypeLabel resolves a case-type id, falling back to a placeholder.
func (s *Snapshot) TypeLabel(id int) string {
	if label, ok := s.Types[id]; ok {
		return label
	}
	return "—"
}

// ParseOptionItems parses a case field's option definitions: one "id,label"
// pair per line. Lines without a comma or with a non-numeric id are skipped
// silently; a malformed line never fails the field.
func ParseOptionItems(items string) map[int64]string {
	options := make(map[int64]string)
	for _, line := range strings.Split(items, "\n") {
		line = strings.TrimSpace(line)
		id, label, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			continue
		}
		options[parsed] = strings.TrimSpace(label)
	}
	return options
}
