package mcpsrv_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backlog/internal/config"
	"backlog/internal/mcpsrv"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubFetcher struct {
	snap  *snapshot.Snapshot
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, planID int) (*snapshot.Snapshot, error) {
	f.calls++
	return f.snap, nil
}

func fixtureSnapshot() *snapshot.Snapshot {
	run := snapshot.Run{ID: 101, Name: "Web"}
	return &snapshot.Snapshot{
		Plan:     &testrail.Plan{ID: 61979, Name: "Automation Backlog"},
		Runs:     []snapshot.Run{run},
		Statuses: map[int]string{1: "Passed", 3: "Untested"},
		Options: map[string]map[int64]string{
			"custom_device": {1: "Desktop", 2: "Mobile"},
		},
		Tests: []snapshot.Test{
			{Run: run, Test: testrail.Test{ID: 1, CaseID: 11, Title: "Login", StatusID: 1,
				Custom: map[string]testrail.FieldValue{"custom_device": testrail.OptionField(1)}}},
			{Run: run, Test: testrail.Test{ID: 2, CaseID: 12, Title: "Checkout", StatusID: 3,
				Custom: map[string]testrail.FieldValue{"custom_device": testrail.OptionField(2)}}},
		},
		FetchedAt: time.Now(),
	}
}

func newTestServer(t *testing.T) (*mcpsrv.Server, *stubFetcher) {
	t.Helper()
	cfg := &config.Config{
		Secrets: config.Secrets{
			BaseURL: "https://example.testrail.io",
			User:    "bot@example.com",
			APIKey:  "secret",
		},
		Plans:  []config.Plan{{Name: "Payments", PlanID: 61979}},
		Fields: config.DefaultFields(),
	}
	fetcher := &stubFetcher{snap: fixtureSnapshot()}
	cache := snapshot.NewCache(fetcher, 300*time.Second)
	return mcpsrv.NewServer(cfg, cache), fetcher
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpsrv.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"list_business_units":   false,
		"get_dashboard_summary": false,
		"list_tests":            false,
		"refresh":               false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_ListBusinessUnits(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "list_business_units", nil)
	units, ok := result["business_units"].([]any)
	if !ok || len(units) != 1 {
		t.Fatalf("business_units = %v", result["business_units"])
	}
	unit := units[0].(map[string]any)
	if unit["name"] != "Payments" || unit["plan_id"].(float64) != 61979 {
		t.Errorf("unit = %v", unit)
	}
}

func TestServer_GetDashboardSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "get_dashboard_summary", map[string]any{
		"business_unit": "Payments",
	})
	if result["plan"] != "Automation Backlog" {
		t.Errorf("plan = %v", result["plan"])
	}
	if result["total"].(float64) != 2 {
		t.Errorf("total = %v", result["total"])
	}
	if result["done"].(float64) != 1 || result["actionable"].(float64) != 2 {
		t.Errorf("done=%v actionable=%v", result["done"], result["actionable"])
	}
	statuses, ok := result["statuses"].([]any)
	if !ok || len(statuses) != 2 {
		t.Fatalf("statuses = %v", result["statuses"])
	}
}

func TestServer_ListTests_StatusFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	result := callTool(t, ctx, session, "list_tests", map[string]any{
		"status": "Untested",
	})
	if result["total"].(float64) != 1 {
		t.Fatalf("total = %v", result["total"])
	}
	tests := result["tests"].([]any)
	row := tests[0].(map[string]any)
	if row["title"] != "Checkout" || row["device"] != "Mobile" {
		t.Errorf("row = %v", row)
	}
}

func TestServer_Refresh(t *testing.T) {
	srv, fetcher := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	callTool(t, ctx, session, "get_dashboard_summary", nil)
	callTool(t, ctx, session, "get_dashboard_summary", nil)
	if fetcher.calls != 1 {
		t.Fatalf("calls before refresh = %d", fetcher.calls)
	}

	result := callTool(t, ctx, session, "refresh", map[string]any{"business_unit": "Payments"})
	invalidated := result["invalidated"].([]any)
	if len(invalidated) != 1 || invalidated[0] != "Payments" {
		t.Fatalf("invalidated = %v", invalidated)
	}

	callTool(t, ctx, session, "get_dashboard_summary", nil)
	if fetcher.calls != 2 {
		t.Errorf("calls after refresh = %d", fetcher.calls)
	}
}

func TestServer_Refresh_UnknownBusinessUnit(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "refresh",
		Arguments: map[string]any{"business_unit": "Nope"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown business unit")
	}
}
