package report

import (
	"sort"
	"strings"

	"backlog/internal/resolve"
)

// BreakdownTable cross-tabulates effective statuses against a set of column
// labels, with per-row and per-column totals.
type BreakdownTable struct {
	Columns []string
	Rows    []BreakdownRow
	Totals  BreakdownRow
}

// BreakdownRow is one status line of a breakdown table.
type BreakdownRow struct {
	Status string
	Cells  []int
	Total  int
}

// DeviceBreakdown tabulates statuses against the device classifications
// present in the rows. Statuses with zero rows are omitted.
func DeviceBreakdown(rows []Row, order []string) BreakdownTable {
	devices := Devices(rows)
	return crossTab(rows, order, devices, func(row Row, device string) bool {
		return row.Device == device
	})
}

// countryColumns are the fixed columns of the country breakdown.
var countryColumns = []string{"LT", "LV", "Both"}

// CountryBreakdown tabulates statuses against LT/LV membership and their
// conjunction. A test covering both markets counts in all three columns.
func CountryBreakdown(rows []Row, order []string) BreakdownTable {
	return crossTab(rows, order, countryColumns, func(row Row, col string) bool {
		switch col {
		case "LT":
			return row.Countries.HasLT
		case "LV":
			return row.Countries.HasLV
		default:
			return row.Countries.Both()
		}
	})
}

func crossTab(rows []Row, order, columns []string, member func(Row, string) bool) BreakdownTable {
	table := BreakdownTable{Columns: columns}
	columnTotals := make([]int, len(columns))
	grandTotal := 0

	for _, status := range order {
		row := BreakdownRow{Status: status, Cells: make([]int, len(columns))}
		for _, r := range rows {
			if r.Status != status {
				continue
			}
			row.Total++
			for i, col := range columns {
				if member(r, col) {
					row.Cells[i]++
				}
			}
		}
		if row.Total == 0 {
			continue
		}
		for i := range columns {
			columnTotals[i] += row.Cells[i]
		}
		grandTotal += row.Total
		table.Rows = append(table.Rows, row)
	}

	table.Totals = BreakdownRow{Status: "Total", Cells: columnTotals, Total: grandTotal}
	return table
}

// noReasonLabel buckets Not-Applicable rows that carry no reason.
const noReasonLabel = "No reason specified"

// NAGroup is one reason bucket of the not-applicable breakdown.
type NAGroup struct {
	Reason string
	Rows   []Row
}

// NABreakdown groups the not-applicable population by reason, largest bucket
// first (ties broken by reason for stable output).
//
// The population is the union of rows whose effective status is Not
// Applicable and rows carrying any non-empty NA reason even when their
// status is something else, deduplicated by (case id, run). The union is
// intentional upstream behavior; see DESIGN.md.
func NABreakdown(rows []Row) []NAGroup {
	type key struct {
		caseID int
		run    string
	}
	seen := make(map[key]struct{})
	groups := make(map[string][]Row)

	add := func(row Row) {
		k := key{caseID: row.CaseID, run: row.Run}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		reason := strings.TrimSpace(row.NAReason)
		if reason == "" {
			reason = noReasonLabel
		}
		groups[reason] = append(groups[reason], row)
	}

	for _, row := range rows {
		if row.Status == resolve.StatusNotApplicable {
			add(row)
		}
	}
	for _, row := range rows {
		if strings.TrimSpace(row.NAReason) != "" {
			add(row)
		}
	}

	result := make([]NAGroup, 0, len(groups))
	for reason, members := range groups {
		result = append(result, NAGroup{Reason: reason, Rows: members})
	}
	sort.Slice(result, func(i, j int) bool {
		if len(result[i].Rows) != len(result[j].Rows) {
			return len(result[i].Rows) > len(result[j].Rows)
		}
		return result[i].Reason < result[j].Reason
	})
	return result
}
