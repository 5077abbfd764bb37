package report

import (
	"sort"

	"backlog/internal/resolve"
)

// baseStatusOrder is the fixed priority ordering for known status groups.
// Statuses encountered in the data but absent here are appended in
// encounter order.
var baseStatusOrder = []string{
	"Passed",
	"Passed with Issue",
	"Passed with Stub",
	"To Do",
	"Blocked",
	"Failed",
	"Failed (Medium)",
	"Not automated",
	"Automation not applicable",
	"Untested",
	"No-Run",
	"Not Applicable",
}

// doneStatuses are the groups counted as automated for the progress ratio.
var doneStatuses = map[string]struct{}{
	"Passed":            {},
	"Passed with Issue": {},
	"Passed with Stub":  {},
}

// descriptions explains each known status group in the legend and the
// detail-table captions.
var descriptions = map[string]string{
	"Passed":                    "Merged into the master branch.",
	"Passed with Issue":         "PR raised — review in progress.",
	"Passed with Stub":          "Implementation completed — PR yet to be raised.",
	"To Do":                     "Picked by team.",
	"Blocked":                   "Blocked due to an issue, pending test data, or other dependencies.",
	"Failed":                    "Test execution failed.",
	"Failed (Medium)":           "Automation not feasible on UAT; will be revisited later.",
	"Not Applicable":            "Excluded from automation.",
	"Untested":                  "Not yet executed.",
	"No-Run":                    "Not yet executed.",
	"Not automated":             "Pending automation.",
	"Automation not applicable": "Automation not applicable for this test.",
}

// Describe returns the legend text for a status group, or "" for unknown
// groups.
func Describe(status string) string { return descriptions[status] }

// PresentStatuses returns the distinct effective statuses in encounter order.
func PresentStatuses(rows []Row) []string {
	seen := make(map[string]struct{})
	var present []string
	for _, row := range rows {
		if _, ok := seen[row.Status]; ok {
			continue
		}
		seen[row.Status] = struct{}{}
		present = append(present, row.Status)
	}
	return present
}

// StatusOrder orders the present statuses by the fixed base ordering, with
// unknown statuses appended in the order given.
func StatusOrder(present []string) []string {
	presentSet := make(map[string]struct{}, len(present))
	for _, s := range present {
		presentSet[s] = struct{}{}
	}

	var order []string
	ordered := make(map[string]struct{})
	for _, s := range baseStatusOrder {
		if _, ok := presentSet[s]; ok {
			order = append(order, s)
			ordered[s] = struct{}{}
		}
	}
	for _, s := range present {
		if _, ok := ordered[s]; !ok {
			order = append(order, s)
		}
	}
	return order
}

// CountByStatus counts rows per effective status.
func CountByStatus(rows []Row) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Status]++
	}
	return counts
}

// Progress is the automation-progress ratio over actionable tests.
type Progress struct {
	Done          int
	Actionable    int // total minus Not Applicable
	NotApplicable int
	Total         int
}

// Percent returns the progress percentage; zero actionable tests yield 0.
func (p Progress) Percent() float64 {
	if p.Actionable <= 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Actionable) * 100
}

// ComputeProgress derives the progress ratio from the status counts.
func ComputeProgress(counts map[string]int, total int) Progress {
	done := 0
	for s := range doneStatuses {
		done += counts[s]
	}
	na := counts[resolve.StatusNotApplicable]
	return Progress{
		Done:          done,
		Actionable:    total - na,
		NotApplicable: na,
		Total:         total,
	}
}

// RunNames returns the sorted distinct run names across the rows.
func RunNames(rows []Row) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		if _, ok := seen[row.Run]; ok {
			continue
		}
		seen[row.Run] = struct{}{}
		names = append(names, row.Run)
	}
	sort.Strings(names)
	return names
}

// HasCountries reports whether any row carries country tokens, which gates
// the country breakdown table.
func HasCountries(rows []Row) bool {
	for _, row := range rows {
		if len(row.Countries.Tokens) > 0 {
			return true
		}
	}
	return false
}

// Devices returns the sorted distinct device classifications across the rows.
func Devices(rows []Row) []string {
	seen := make(map[string]struct{})
	var devices []string
	for _, row := range rows {
		if _, ok := seen[row.Device]; ok {
			continue
		}
		seen[row.Device] = struct{}{}
		devices = append(devices, row.Device)
	}
	sort.Strings(devices)
	return devices
}
