package testrail

import (
	"encoding/json"
	"strings"
)

// --- TestRail response types (aligned with the v2 API) ---

// Plan is a TestRail test plan: a named container of entries, each holding
// one or more runs.
type Plan struct {
	ID      int         `json:"id"`
	Name    string      `json:"name,omitempty"`
	URL     string      `json:"url,omitempty"`
	Entries []PlanEntry `json:"entries,omitempty"`
}

// PlanEntry groups the runs created from one test suite inside a plan.
type PlanEntry struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Runs []Run  `json:"runs,omitempty"`
}

// Run is one execution batch of tests within a plan.
type Run struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Test is one case's execution record within a run. Custom fields arrive as
// sibling keys with a "custom_" prefix and are collected into Custom.
type Test struct {
	ID         int
	CaseID     int
	Title      string
	StatusID   int
	PriorityID int
	TypeID     int
	RunID      int
	Custom     map[string]FieldValue
}

type testWire struct {
	ID         int    `json:"id"`
	CaseID     int    `json:"case_id"`
	Title      string `json:"title"`
	StatusID   int    `json:"status_id"`
	PriorityID int    `json:"priority_id"`
	TypeID     int    `json:"type_id"`
	RunID      int    `json:"run_id"`
}

// UnmarshalJSON decodes the fixed columns and sweeps every "custom_" key
// into the Custom map. Custom values that fail to decode are skipped rather
// than failing the whole test record.
func (t *Test) UnmarshalJSON(data []byte) error {
	var wire testWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = Test{
		ID:         wire.ID,
		CaseID:     wire.CaseID,
		Title:      wire.Title,
		StatusID:   wire.StatusID,
		PriorityID: wire.PriorityID,
		TypeID:     wire.TypeID,
		RunID:      wire.RunID,
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		if !strings.HasPrefix(key, "custom_") {
			continue
		}
		var fv FieldValue
		if err := json.Unmarshal(val, &fv); err != nil {
			continue
		}
		if t.Custom == nil {
			t.Custom = make(map[string]FieldValue)
		}
		t.Custom[key] = fv
	}
	return nil
}

// CustomField returns the value for a custom-field name, or the absent
// variant when the test carries no such field.
func (t *Test) CustomField(name string) FieldValue {
	if v, ok := t.Custom[name]; ok {
		return v
	}
	return AbsentField()
}

// Status is one row of the execution-status lookup table.
type Status struct {
	ID    int    `json:"id"`
	Label string `json:"label,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Priority is one row of the priority lookup table.
type Priority struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// CaseType is one row of the case-type lookup table.
type CaseType struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Case-field type ids for fields that carry option lists.
const (
	FieldTypeDropdown    = 6
	FieldTypeMultiSelect = 12
)

// CaseField describes one user-defined case attribute, including the option
// definitions for dropdown and multi-select fields.
type CaseField struct {
	ID         int               `json:"id"`
	SystemName string            `json:"system_name,omitempty"`
	Name       string            `json:"name,omitempty"`
	TypeID     int               `json:"type_id"`
	Configs    []CaseFieldConfig `json:"configs,omitempty"`
}

// CaseFieldConfig is one per-project configuration of a case field.
type CaseFieldConfig struct {
	Options CaseFieldOptions `json:"options"`
}

// CaseFieldOptions holds the raw option definitions: newline-separated
// "id,label" pairs.
type CaseFieldOptions struct {
	Items string `json:"items,omitempty"`
}

// --- Paginated response envelope ---

// pagedTests is the envelope returned by get_tests on TestRail 6.7+.
// Older instances return a bare array instead.
type pagedTests struct {
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
	Size   int        `json:"size"`
	Links  *pageLinks `json:"_links"`
	Tests  []Test     `json:"tests"`
}

type pageLinks struct {
	Next *string `json:"next"`
	Prev *string `json:"prev"`
}
