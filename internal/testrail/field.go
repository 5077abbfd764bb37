package testrail

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldKind discriminates the wire shapes a custom-field value can take.
type FieldKind int

const (
	FieldAbsent  FieldKind = iota // null or missing
	FieldOption                   // single dropdown option id
	FieldOptions                  // list of multi-select option ids
	FieldText                     // free text (or any other scalar)
)

// FieldValue is a tagged variant over the possible custom-field value shapes.
// TestRail serializes a dropdown as an integer id, a multi-select as a list
// of ids, text fields as strings, and unset fields as null; the variant makes
// that explicit instead of leaving callers to type-switch on raw JSON.
type FieldValue struct {
	Kind FieldKind
	ID   int64
	IDs  []int64
	Text string
}

// AbsentField returns the absent variant.
func AbsentField() FieldValue { return FieldValue{Kind: FieldAbsent} }

// OptionField returns a single-option variant.
func OptionField(id int64) FieldValue { return FieldValue{Kind: FieldOption, ID: id} }

// OptionsField returns a multi-option variant.
func OptionsField(ids ...int64) FieldValue { return FieldValue{Kind: FieldOptions, IDs: ids} }

// TextField returns a free-text variant.
func TextField(s string) FieldValue { return FieldValue{Kind: FieldText, Text: s} }

// UnmarshalJSON decodes any of the wire shapes into the variant. A list whose
// elements are not all integers collapses to free text with the elements
// comma-joined, matching how such values are displayed.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = AbsentField()
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*v = OptionField(id)
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		*v = OptionsField(ids...)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = TextField(s)
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = TextField(strconv.FormatBool(b))
		return nil
	}

	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, el := range list {
			parts = append(parts, fmt.Sprint(el))
		}
		*v = TextField(strings.Join(parts, ", "))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = TextField(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}

	return fmt.Errorf("custom field: unsupported value %s", trimmed)
}

// IsAbsent reports whether the field carried no value.
func (v FieldValue) IsAbsent() bool { return v.Kind == FieldAbsent }
