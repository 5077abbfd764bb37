package dashboard

import "backlog/internal/report"

// dashboardPayload is the JSON shape of one dashboard load.
type dashboardPayload struct {
	Plan      string              `json:"plan"`
	PlanURL   string              `json:"plan_url,omitempty"`
	RunFilter string              `json:"run_filter,omitempty"`
	Runs      []runPayload        `json:"runs"`
	Total     int                 `json:"total"`
	Order     []string            `json:"order"`
	Counts    map[string]int      `json:"counts"`
	Progress  progressPayload     `json:"progress"`
	Devices   breakdownPayload    `json:"devices"`
	Countries *breakdownPayload   `json:"countries,omitempty"`
	NAGroups  []naGroupPayload    `json:"na_groups,omitempty"`
	Statuses  []statusRowsPayload `json:"statuses"`
}

type runPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type progressPayload struct {
	Done          int     `json:"done"`
	Actionable    int     `json:"actionable"`
	NotApplicable int     `json:"not_applicable"`
	Total         int     `json:"total"`
	Percent       float64 `json:"percent"`
}

type breakdownPayload struct {
	Columns []string              `json:"columns"`
	Rows    []breakdownRowPayload `json:"rows"`
	Totals  breakdownRowPayload   `json:"totals"`
}

type breakdownRowPayload struct {
	Status string `json:"status"`
	Cells  []int  `json:"cells"`
	Total  int    `json:"total"`
}

type naGroupPayload struct {
	Reason string       `json:"reason"`
	Count  int          `json:"count"`
	Rows   []rowPayload `json:"rows"`
}

type statusRowsPayload struct {
	Status      string       `json:"status"`
	Description string       `json:"description,omitempty"`
	Count       int          `json:"count"`
	Rows        []rowPayload `json:"rows"`
}

type rowPayload struct {
	CaseID            int    `json:"case_id"`
	Title             string `json:"title"`
	RawStatus         string `json:"raw_status"`
	Status            string `json:"status"`
	Priority          string `json:"priority"`
	Type              string `json:"type"`
	Run               string `json:"run"`
	Device            string `json:"device"`
	Countries         string `json:"countries"`
	LT                bool   `json:"lt"`
	LV                bool   `json:"lv"`
	BothCountries     bool   `json:"both_countries"`
	NAReason          string `json:"na_reason,omitempty"`
	ReviewNotes       string `json:"review_notes,omitempty"`
	DesktopAutomation string `json:"desktop_automation,omitempty"`
	MobileAutomation  string `json:"mobile_automation,omitempty"`
	Link              string `json:"link,omitempty"`
}

func toPayload(s *report.Summary) dashboardPayload {
	payload := dashboardPayload{
		Plan:      s.PlanName,
		PlanURL:   s.PlanURL,
		RunFilter: s.RunFilter,
		Runs:      make([]runPayload, 0, len(s.Runs)),
		Total:     s.Total,
		Order:     s.Order,
		Counts:    s.Counts,
		Progress: progressPayload{
			Done:          s.Progress.Done,
			Actionable:    s.Progress.Actionable,
			NotApplicable: s.Progress.NotApplicable,
			Total:         s.Progress.Total,
			Percent:       s.Progress.Percent(),
		},
		Devices: toBreakdownPayload(s.Devices),
	}
	for _, run := range s.Runs {
		payload.Runs = append(payload.Runs, runPayload{ID: run.ID, Name: run.Name})
	}
	if s.HasCountries {
		countries := toBreakdownPayload(s.Countries)
		payload.Countries = &countries
	}
	for _, group := range s.NAGroups {
		payload.NAGroups = append(payload.NAGroups, naGroupPayload{
			Reason: group.Reason,
			Count:  len(group.Rows),
			Rows:   toRowPayloads(group.Rows),
		})
	}
	for _, status := range s.Order {
		rows := s.RowsByStatus(status)
		payload.Statuses = append(payload.Statuses, statusRowsPayload{
			Status:      status,
			Description: report.Describe(status),
			Count:       len(rows),
			Rows:        toRowPayloads(rows),
		})
	}
	return payload
}

func toBreakdownPayload(b report.BreakdownTable) breakdownPayload {
	payload := breakdownPayload{
		Columns: b.Columns,
		Totals:  breakdownRowPayload{Status: b.Totals.Status, Cells: b.Totals.Cells, Total: b.Totals.Total},
	}
	for _, row := range b.Rows {
		payload.Rows = append(payload.Rows, breakdownRowPayload{Status: row.Status, Cells: row.Cells, Total: row.Total})
	}
	return payload
}

func toRowPayloads(rows []report.Row) []rowPayload {
	payload := make([]rowPayload, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, rowPayload{
			CaseID:            row.CaseID,
			Title:             row.Title,
			RawStatus:         row.RawStatus,
			Status:            row.Status,
			Priority:          row.Priority,
			Type:              row.Type,
			Run:               row.Run,
			Device:            row.Device,
			Countries:         row.Countries.Display(),
			LT:                row.Countries.HasLT,
			LV:                row.Countries.HasLV,
			BothCountries:     row.Countries.Both(),
			NAReason:          row.NAReason,
			ReviewNotes:       row.ReviewNotes,
			DesktopAutomation: row.DesktopAutomation,
			MobileAutomation:  row.MobileAutomation,
			Link:              row.Link,
		})
	}
	return payload
}
