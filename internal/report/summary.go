package report

import (
	"fmt"
	"strings"

	"backlog/internal/config"
	"backlog/internal/snapshot"
)

// Summary is the full dashboard model for one plan, optionally filtered to a
// single run. It is what every presentation layer (terminal, HTTP, MCP)
// consumes; nothing downstream recomputes business logic.
type Summary struct {
	PlanName  string
	PlanURL   string
	Runs      []snapshot.Run
	RunFilter string // empty = all runs

	Rows     []Row
	Order    []string
	Counts   map[string]int
	Total    int
	Progress Progress

	Devices      BreakdownTable
	Countries    BreakdownTable
	HasCountries bool
	NAGroups     []NAGroup
}

// Summarize builds the dashboard model from a snapshot. runFilter narrows
// the row set to one run by name; breakdowns and counts follow the filter.
func Summarize(snap *snapshot.Snapshot, baseURL string, fields config.Fields, runFilter string) *Summary {
	all := BuildRows(snap, baseURL, fields)
	rows := FilterByRun(all, runFilter)

	order := StatusOrder(PresentStatuses(rows))
	counts := CountByStatus(rows)
	total := len(rows)

	return &Summary{
		PlanName:     snap.Plan.Name,
		PlanURL:      planURL(snap, baseURL),
		Runs:         snap.Runs,
		RunFilter:    runFilter,
		Rows:         rows,
		Order:        order,
		Counts:       counts,
		Total:        total,
		Progress:     ComputeProgress(counts, total),
		Devices:      DeviceBreakdown(rows, order),
		Countries:    CountryBreakdown(rows, order),
		HasCountries: HasCountries(rows),
		NAGroups:     NABreakdown(rows),
	}
}

// Empty reports whether the plan resolved to zero tests — an explicit
// "no data" state for the presentation layers, not an error.
func (s *Summary) Empty() bool { return s.Total == 0 }

// RowsByStatus returns the rows with the given effective status, in row
// order.
func (s *Summary) RowsByStatus(status string) []Row {
	var rows []Row
	for _, row := range s.Rows {
		if row.Status == status {
			rows = append(rows, row)
		}
	}
	return rows
}

func planURL(snap *snapshot.Snapshot, baseURL string) string {
	if snap.Plan.URL != "" {
		return snap.Plan.URL
	}
	if baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/index.php?/plans/view/%d", strings.TrimSuffix(baseURL, "/"), snap.Plan.ID)
}
