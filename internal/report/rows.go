// Package report flattens a plan snapshot into the dashboard's tabular
// model and computes the read-only aggregates the presentation layers
// consume: status ordering, counts, the automation-progress ratio, and the
// per-status and not-applicable breakdowns.
package report

import (
	"backlog/internal/config"
	"backlog/internal/resolve"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

// Row is one flat record per test, with every field already resolved for
// display.
type Row struct {
	CaseID            int
	Title             string
	RawStatus         string
	Status            string // effective status after the NA override
	Priority          string
	Type              string
	Run               string
	RunID             int
	Device            string
	Countries         resolve.Countries
	NAReason          string
	ReviewNotes       string
	DesktopAutomation string
	MobileAutomation  string
	Link              string
}

// BuildRows flattens every test in the snapshot into one row, preserving
// fetch order (plan entries → runs → tests).
func BuildRows(snap *snapshot.Snapshot, baseURL string, fields config.Fields) []Row {
	rows := make([]Row, 0, len(snap.Tests))
	for _, test := range snap.Tests {
		rows = append(rows, buildRow(snap, test, baseURL, fields))
	}
	return rows
}

func buildRow(snap *snapshot.Snapshot, test snapshot.Test, baseURL string, fields config.Fields) Row {
	rawStatus := resolve.StatusGroup(snap.StatusLabel(test.StatusID))

	device := resolve.Device(test.CustomField(fields.Device), snap.FieldOptions(fields.Device))
	desktopSub := resolve.ResolveField(test.CustomField(fields.DesktopAutomation), snap.FieldOptions(fields.DesktopAutomation))
	mobileSub := resolve.ResolveField(test.CustomField(fields.MobileAutomation), snap.FieldOptions(fields.MobileAutomation))

	countriesRaw := resolve.ResolveField(test.CustomField(fields.Countries), snap.FieldOptions(fields.Countries))

	return Row{
		CaseID:            test.CaseID,
		Title:             test.Title,
		RawStatus:         rawStatus,
		Status:            resolve.EffectiveStatus(rawStatus, device, desktopSub, mobileSub),
		Priority:          snap.PriorityLabel(test.PriorityID),
		Type:              snap.TypeLabel(test.TypeID),
		Run:               test.Run.Name,
		RunID:             test.Run.ID,
		Device:            device,
		Countries:         resolve.ParseCountries(countriesRaw),
		NAReason:          resolve.ResolveField(test.CustomField(fields.NAReason), snap.FieldOptions(fields.NAReason)),
		ReviewNotes:       resolve.ResolveField(test.CustomField(fields.ReviewNotes), snap.FieldOptions(fields.ReviewNotes)),
		DesktopAutomation: desktopSub,
		MobileAutomation:  mobileSub,
		Link:              testrail.CaseURL(baseURL, test.CaseID),
	}
}

// FilterByRun returns the rows belonging to the named run; an empty name
// returns all rows.
func FilterByRun(rows []Row, runName string) []Row {
	if runName == "" {
		return rows
	}
	var filtered []Row
	for _, row := range rows {
		if row.Run == runName {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
