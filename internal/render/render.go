package render

import (
	"fmt"
	"io"
	"strings"

	"backlog/internal/report"
)

// Renderer writes a report.Summary as text.
type Renderer struct {
	mode Mode
}

// New returns a Renderer for the given Mode.
func New(mode Mode) *Renderer {
	return &Renderer{mode: mode}
}

// Summary writes the whole dashboard: header, KPI strip, progress,
// breakdowns, the not-applicable drill-down, per-status detail tables, and
// the legend.
func (r *Renderer) Summary(w io.Writer, s *report.Summary) {
	r.header(w, s)
	if s.Empty() {
		fmt.Fprintln(w, "No tests found.")
		return
	}
	r.kpiStrip(w, s)
	r.progress(w, s)
	r.breakdowns(w, s)
	r.naBreakdown(w, s)
	r.details(w, s)
	r.legend(w, s)
}

func (r *Renderer) header(w io.Writer, s *report.Summary) {
	r.heading(w, 2, "Automation Backlog")
	fmt.Fprintf(w, "%s", s.PlanName)
	if s.RunFilter != "" {
		fmt.Fprintf(w, " · run %q", s.RunFilter)
	}
	if s.PlanURL != "" {
		fmt.Fprintf(w, " · %s", s.PlanURL)
	}
	fmt.Fprint(w, "\n\n")
}

func (r *Renderer) kpiStrip(w io.Writer, s *report.Summary) {
	tbl := NewTable(r.mode)
	header := make([]string, 0, len(s.Order)+1)
	cells := make([]any, 0, len(s.Order)+1)
	for _, status := range s.Order {
		count := s.Counts[status]
		header = append(header, status)
		cells = append(cells, fmt.Sprintf("%d (%s)", count, percent(count, s.Total)))
	}
	header = append(header, "Total")
	cells = append(cells, s.Total)
	tbl.Header(header...)
	tbl.Row(cells...)
	fmt.Fprintln(w, tbl.String())
	fmt.Fprintln(w)
}

func (r *Renderer) progress(w io.Writer, s *report.Summary) {
	p := s.Progress
	fmt.Fprintf(w, "Progress: %s  %.1f%% — %d / %d actionable tests automated · %d not applicable excluded\n\n",
		progressBar(p.Percent()), p.Percent(), p.Done, p.Actionable, p.NotApplicable)
}

// progressBar draws a 30-cell bar, filled proportionally.
func progressBar(pct float64) string {
	const width = 30
	filled := int(pct / 100 * width)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func (r *Renderer) breakdowns(w io.Writer, s *report.Summary) {
	r.heading(w, 4, "By Device")
	r.breakdownTable(w, s.Devices)
	if s.HasCountries {
		r.heading(w, 4, "By Country")
		r.breakdownTable(w, s.Countries)
	}
}

func (r *Renderer) breakdownTable(w io.Writer, b report.BreakdownTable) {
	tbl := NewTable(r.mode)
	header := append([]string{"Status"}, b.Columns...)
	header = append(header, "Total")
	tbl.Header(header...)

	for _, row := range b.Rows {
		tbl.Row(breakdownCells(row)...)
	}
	tbl.Footer(breakdownCells(b.Totals)...)

	cfgs := make([]ColumnConfig, 0, len(b.Columns)+1)
	for i := range b.Columns {
		cfgs = append(cfgs, ColumnConfig{Number: i + 2, Right: true})
	}
	cfgs = append(cfgs, ColumnConfig{Number: len(b.Columns) + 2, Right: true})
	tbl.Columns(cfgs...)

	fmt.Fprintln(w, tbl.String())
	fmt.Fprintln(w)
}

func breakdownCells(row report.BreakdownRow) []any {
	cells := make([]any, 0, len(row.Cells)+2)
	cells = append(cells, row.Status)
	for _, c := range row.Cells {
		cells = append(cells, c)
	}
	return append(cells, row.Total)
}

func (r *Renderer) naBreakdown(w io.Writer, s *report.Summary) {
	if len(s.NAGroups) == 0 {
		return
	}
	r.heading(w, 4, "Not Applicable Breakdown")
	for _, group := range s.NAGroups {
		fmt.Fprintf(w, "%s — %d tests\n", group.Reason, len(group.Rows))
		tbl := NewTable(r.mode)
		tbl.Header("Case ID", "Title", "Priority", "Run", "Device", "Countries", "Link")
		for _, row := range group.Rows {
			tbl.Row(row.CaseID, row.Title, row.Priority, row.Run, row.Device, row.Countries.Display(), row.Link)
		}
		tbl.Columns(ColumnConfig{Number: 2, MaxWidth: 60})
		fmt.Fprintln(w, tbl.String())
		fmt.Fprintln(w)
	}
}

func (r *Renderer) details(w io.Writer, s *report.Summary) {
	r.heading(w, 4, "Test Details")
	for _, status := range s.Order {
		rows := s.RowsByStatus(status)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s — %d tests", status, len(rows))
		if desc := report.Describe(status); desc != "" {
			fmt.Fprintf(w, " (%s)", desc)
		}
		fmt.Fprintln(w)

		withNA := status == "Not Applicable"
		tbl := NewTable(r.mode)
		if withNA {
			tbl.Header("Case ID", "Title", "Priority", "Type", "Run", "Device", "Countries", "NA Reason", "Review Notes", "Link")
		} else {
			tbl.Header("Case ID", "Title", "Priority", "Type", "Run", "Device", "Countries", "Link")
		}
		for _, row := range rows {
			if withNA {
				tbl.Row(row.CaseID, row.Title, row.Priority, row.Type, row.Run, row.Device,
					row.Countries.Display(), row.NAReason, row.ReviewNotes, row.Link)
			} else {
				tbl.Row(row.CaseID, row.Title, row.Priority, row.Type, row.Run, row.Device,
					row.Countries.Display(), row.Link)
			}
		}
		tbl.Columns(ColumnConfig{Number: 2, MaxWidth: 60})
		fmt.Fprintln(w, tbl.String())
		fmt.Fprintln(w)
	}
}

func (r *Renderer) legend(w io.Writer, s *report.Summary) {
	r.heading(w, 4, "Legend")
	for _, status := range s.Order {
		desc := report.Describe(status)
		if desc == "" {
			desc = "No description."
		}
		fmt.Fprintf(w, "- %s — %s\n", status, desc)
	}
}

func (r *Renderer) heading(w io.Writer, level int, title string) {
	if r.mode == Markdown {
		fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", level), title)
		return
	}
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("─", len([]rune(title))))
}

func percent(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}
