// Package mcpsrv exposes the backlog dashboard to MCP clients: the same
// summary model the HTTP dashboard serves, reachable as tools over stdio.
package mcpsrv

import (
	"context"
	"fmt"

	"backlog/internal/config"
	"backlog/internal/report"
	"backlog/internal/snapshot"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server over the shared snapshot cache.
type Server struct {
	MCPServer *sdkmcp.Server

	cfg   *config.Config
	cache *snapshot.Cache
}

// NewServer creates the MCP server and registers the dashboard tools.
func NewServer(cfg *config.Config, cache *snapshot.Cache) *Server {
	s := &Server{cfg: cfg, cache: cache}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "backlog", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_business_units",
		Description: "List the configured business units and their TestRail plan ids.",
	}, s.handleListBusinessUnits)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_dashboard_summary",
		Description: "Summarize one business unit's automation backlog: status counts, progress, device and country breakdowns, and not-applicable reasons.",
	}, s.handleGetDashboardSummary)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_tests",
		Description: "List the tests of one business unit, optionally narrowed to a single effective status or run.",
	}, s.handleListTests)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "refresh",
		Description: "Drop the cached snapshot for a business unit so the next read refetches from TestRail.",
	}, s.handleRefresh)
}

// --- Tool input/output types ---

type listBusinessUnitsInput struct{}

type businessUnit struct {
	Name   string `json:"name"`
	PlanID int    `json:"plan_id"`
}

type listBusinessUnitsOutput struct {
	BusinessUnits []businessUnit `json:"business_units"`
}

type getDashboardSummaryInput struct {
	BusinessUnit string `json:"business_unit,omitempty" jsonschema:"business unit name (default: first configured)"`
	Run          string `json:"run,omitempty" jsonschema:"narrow to a single run by name"`
}

type statusCount struct {
	Status      string `json:"status"`
	Count       int    `json:"count"`
	Description string `json:"description,omitempty"`
}

type naReason struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type getDashboardSummaryOutput struct {
	Plan          string         `json:"plan"`
	PlanURL       string         `json:"plan_url,omitempty"`
	Runs          []string       `json:"runs"`
	Total         int            `json:"total"`
	Statuses      []statusCount  `json:"statuses"`
	Done          int            `json:"done"`
	Actionable    int            `json:"actionable"`
	NotApplicable int            `json:"not_applicable"`
	Percent       float64        `json:"percent"`
	Devices       map[string]int `json:"devices,omitempty"`
	NAReasons     []naReason     `json:"na_reasons,omitempty"`
}

type listTestsInput struct {
	BusinessUnit string `json:"business_unit,omitempty" jsonschema:"business unit name (default: first configured)"`
	Status       string `json:"status,omitempty" jsonschema:"narrow to one effective status, e.g. Untested"`
	Run          string `json:"run,omitempty" jsonschema:"narrow to a single run by name"`
}

type testRow struct {
	CaseID    int    `json:"case_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	Type      string `json:"type"`
	Run       string `json:"run"`
	Device    string `json:"device"`
	Countries string `json:"countries"`
	NAReason  string `json:"na_reason,omitempty"`
	Link      string `json:"link,omitempty"`
}

type listTestsOutput struct {
	Total int       `json:"total"`
	Tests []testRow `json:"tests"`
}

type refreshInput struct {
	BusinessUnit string `json:"business_unit,omitempty" jsonschema:"business unit name (default: all configured)"`
}

type refreshOutput struct {
	Invalidated []string `json:"invalidated"`
}

// --- Tool handlers ---

func (s *Server) handleListBusinessUnits(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listBusinessUnitsInput) (*sdkmcp.CallToolResult, listBusinessUnitsOutput, error) {
	out := listBusinessUnitsOutput{BusinessUnits: make([]businessUnit, 0, len(s.cfg.Plans))}
	for _, p := range s.cfg.Plans {
		out.BusinessUnits = append(out.BusinessUnits, businessUnit{Name: p.Name, PlanID: p.PlanID})
	}
	return nil, out, nil
}

func (s *Server) handleGetDashboardSummary(ctx context.Context, _ *sdkmcp.CallToolRequest, input getDashboardSummaryInput) (*sdkmcp.CallToolResult, getDashboardSummaryOutput, error) {
	summary, err := s.summarize(ctx, input.BusinessUnit, input.Run)
	if err != nil {
		return nil, getDashboardSummaryOutput{}, err
	}

	out := getDashboardSummaryOutput{
		Plan:          summary.PlanName,
		PlanURL:       summary.PlanURL,
		Total:         summary.Total,
		Done:          summary.Progress.Done,
		Actionable:    summary.Progress.Actionable,
		NotApplicable: summary.Progress.NotApplicable,
		Percent:       summary.Progress.Percent(),
	}
	for _, run := range summary.Runs {
		out.Runs = append(out.Runs, run.Name)
	}
	for _, status := range summary.Order {
		out.Statuses = append(out.Statuses, statusCount{
			Status:      status,
			Count:       summary.Counts[status],
			Description: report.Describe(status),
		})
	}
	if len(summary.Devices.Columns) > 0 {
		out.Devices = make(map[string]int, len(summary.Devices.Columns))
		for i, device := range summary.Devices.Columns {
			out.Devices[device] = summary.Devices.Totals.Cells[i]
		}
	}
	for _, group := range summary.NAGroups {
		out.NAReasons = append(out.NAReasons, naReason{Reason: group.Reason, Count: len(group.Rows)})
	}
	return nil, out, nil
}

func (s *Server) handleListTests(ctx context.Context, _ *sdkmcp.CallToolRequest, input listTestsInput) (*sdkmcp.CallToolResult, listTestsOutput, error) {
	summary, err := s.summarize(ctx, input.BusinessUnit, input.Run)
	if err != nil {
		return nil, listTestsOutput{}, err
	}

	var out listTestsOutput
	for _, row := range summary.Rows {
		if input.Status != "" && row.Status != input.Status {
			continue
		}
		out.Tests = append(out.Tests, testRow{
			CaseID:    row.CaseID,
			Title:     row.Title,
			Status:    row.Status,
			Priority:  row.Priority,
			Type:      row.Type,
			Run:       row.Run,
			Device:    row.Device,
			Countries: row.Countries.Display(),
			NAReason:  row.NAReason,
			Link:      row.Link,
		})
	}
	out.Total = len(out.Tests)
	return nil, out, nil
}

func (s *Server) handleRefresh(ctx context.Context, _ *sdkmcp.CallToolRequest, input refreshInput) (*sdkmcp.CallToolResult, refreshOutput, error) {
	var out refreshOutput
	for _, p := range s.cfg.Plans {
		if input.BusinessUnit != "" && p.Name != input.BusinessUnit {
			continue
		}
		s.cache.Invalidate(p.PlanID)
		out.Invalidated = append(out.Invalidated, p.Name)
	}
	if len(out.Invalidated) == 0 {
		return nil, refreshOutput{}, fmt.Errorf("unknown business unit %q", input.BusinessUnit)
	}
	return nil, out, nil
}

func (s *Server) summarize(ctx context.Context, buName, runFilter string) (*report.Summary, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	var plan config.Plan
	switch {
	case buName != "":
		p, ok := s.cfg.PlanByName(buName)
		if !ok {
			return nil, fmt.Errorf("unknown business unit %q", buName)
		}
		plan = p
	case len(s.cfg.Plans) > 0:
		plan = s.cfg.Plans[0]
	default:
		return nil, fmt.Errorf("no plans configured")
	}

	snap, err := s.cache.Get(ctx, plan.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", plan.Name, err)
	}
	return report.Summarize(snap, s.cfg.Secrets.BaseURL, s.cfg.Fields, runFilter), nil
}
