// Package resolve turns raw TestRail values into the labels the dashboard
// shows: status-group normalization, generic custom-field resolution, the
// effective-status override for device-specific automation sub-statuses, and
// country classification.
//
// Everything here is a pure function over already-fetched values; resolving
// the same input twice always yields the same output.
package resolve

import (
	"strconv"
	"strings"

	"backlog/internal/testrail"
)

// Device classifications. An unset device field defaults to DeviceBoth.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceBoth    = "Both"
)

// StatusNotApplicable is the effective status assigned when the applicable
// automation sub-statuses rule a test out.
const StatusNotApplicable = "Not Applicable"

// statusGroups folds raw status labels into the groups the dashboard reports
// on. Labels absent from the table pass through unchanged, so new statuses
// added in TestRail show up as their own group instead of breaking the load.
var statusGroups = map[string]string{
	"Passed":            "Passed",
	"Passed with Issue": "Passed with Issue",
	"Passed with Stub":  "Passed with Stub",
	"To Do":             "To Do",
	"To-do":             "To Do",
	"Blocked":           "Blocked",
	"Failed":            "Failed",
	"Failed (Medium)":   "Failed (Medium)",
	"Not Applicable":    "Not Applicable",
	"Retest":            "To Do",
	"Untested":          "Untested",
}

// StatusGroup maps a raw status label to its normalized group.
func StatusGroup(label string) string {
	if group, ok := statusGroups[label]; ok {
		return group
	}
	return label
}

// naVariants are the sub-status spellings that mean "not applicable",
// compared case-insensitively after trimming.
var naVariants = map[string]struct{}{
	"not applicable":            {},
	"automation not applicable": {},
	"n/a":                       {},
}

// IsNotApplicableValue reports whether a sub-status value reads as
// not-applicable.
func IsNotApplicableValue(s string) bool {
	_, ok := naVariants[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// EffectiveStatus reconciles the resolved raw status group with the two
// device-specific automation sub-statuses:
//
//   - device Desktop: the desktop sub-status alone decides;
//   - device Mobile: the mobile sub-status alone decides;
//   - device Both: only when both sub-statuses read not-applicable.
//
// When the applicable sub-statuses rule the test out the effective status is
// "Not Applicable"; otherwise it is the raw status group unchanged.
func EffectiveStatus(statusGroup, device, desktopSub, mobileSub string) string {
	desktopNA := IsNotApplicableValue(desktopSub)
	mobileNA := IsNotApplicableValue(mobileSub)

	switch device {
	case DeviceDesktop:
		if desktopNA {
			return StatusNotApplicable
		}
	case DeviceMobile:
		if mobileNA {
			return StatusNotApplicable
		}
	case DeviceBoth:
		if desktopNA && mobileNA {
			return StatusNotApplicable
		}
	}
	return statusGroup
}

// ResolveField renders a custom-field value for display. Dropdown and
// multi-select ids are resolved through the field's option map; ids missing
// from the map render as their decimal form. Absent values render empty.
func ResolveField(v testrail.FieldValue, options map[int64]string) string {
	switch v.Kind {
	case testrail.FieldAbsent:
		return ""
	case testrail.FieldOption:
		return optionLabel(v.ID, options)
	case testrail.FieldOptions:
		parts := make([]string, 0, len(v.IDs))
		for _, id := range v.IDs {
			parts = append(parts, optionLabel(id, options))
		}
		return strings.Join(parts, ", ")
	default:
		return v.Text
	}
}

func optionLabel(id int64, options map[int64]string) string {
	if label, ok := options[id]; ok {
		return label
	}
	return strconv.FormatInt(id, 10)
}

// Device resolves the device classification field, defaulting to "Both"
// when the field is unset or resolves to empty.
func Device(v testrail.FieldValue, options map[int64]string) string {
	if d := ResolveField(v, options); d != "" {
		return d
	}
	return DeviceBoth
}

// Countries is the parsed country classification of one test.
type Countries struct {
	Tokens []string
	HasLT  bool
	HasLV  bool
}

// Both reports whether the test covers both tracked markets.
func (c Countries) Both() bool { return c.HasLT && c.HasLV }

// Display renders the token list for table cells; "—" when empty.
func (c Countries) Display() string {
	if len(c.Tokens) == 0 {
		return "—"
	}
	return strings.Join(c.Tokens, ", ")
}

// ParseCountries splits a resolved countries value on commas and newlines
// into trimmed tokens, tracking LT and LV membership independently.
func ParseCountries(raw string) Countries {
	var c Countries
	for _, token := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		c.Tokens = append(c.Tokens, token)
		switch token {
		case "LT":
			c.HasLT = true
		case "LV":
			c.HasLV = true
		}
	}
	return c
}
