package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backlog/internal/config"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

type stubFetcher struct {
	snap  *snapshot.Snapshot
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, planID int) (*snapshot.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func fixtureSnapshot() *snapshot.Snapshot {
	run := snapshot.Run{ID: 101, Name: "Web"}
	return &snapshot.Snapshot{
		Plan:     &testrail.Plan{ID: 61979, Name: "Automation Backlog"},
		Runs:     []snapshot.Run{run},
		Statuses: map[int]string{1: "Passed", 3: "Untested"},
		Options: map[string]map[int64]string{
			"custom_device": {1: "Desktop", 2: "Mobile", 3: "Both"},
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

func testConfig() *config.Config {
	return &config.Config{
		Secrets: config.Secrets{
			BaseURL: "https://example.testrail.io",
			User:    "bot@example.com",
			APIKey:  "secret",
		},
		Plans:    []config.Plan{{Name: "Payments", PlanID: 61979}},
		Fields:   config.DefaultFields(),
		CacheTTL: config.Duration(300 * time.Second),
	}
}

func newTestServer(t *testing.T, cfg *config.Config, fetcher snapshot.PlanFetcher) *Server {
	t.Helper()
	cache := snapshot.NewCache(fetcher, cfg.CacheTTL.Std())
	return New(cfg, cache)
}

func TestHandleDashboard(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?bu=Payments", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var payload dashboardPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Plan != "Automation Backlog" || payload.Total != 2 {
		t.Errorf("plan=%q total=%d", payload.Plan, payload.Total)
	}
	if payload.Counts["Passed"] != 1 || payload.Counts["Untested"] != 1 {
		t.Errorf("counts = %v", payload.Counts)
	}
	if len(payload.Statuses) != 2 {
		t.Fatalf("statuses = %d", len(payload.Statuses))
	}
	if payload.Statuses[0].Rows[0].Link != "https://example.testrail.io/index.php?/cases/view/11" {
		t.Errorf("link = %q", payload.Statuses[0].Rows[0].Link)
	}
}

func TestHandleDashboard_UnknownBusinessUnit(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?bu=Nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleDashboard_MissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Secrets.APIKey = ""
	srv := newTestServer(t, cfg, &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleDashboard_FetchError(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{err: errors.New("boom")})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestHandleRefresh(t *testing.T) {
	fetcher := &stubFetcher{snap: fixtureSnapshot()}
	srv := newTestServer(t, testConfig(), fetcher)

	// Warm the cache, then a second load within the window hits it.
	for range 2 {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if fetcher.calls != 1 {
		t.Fatalf("calls before refresh = %d", fetcher.calls)
	}

	events := srv.events.subscribe()
	defer srv.events.unsubscribe(events)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh?bu=Payments", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body)
	}

	select {
	case ev := <-events:
		if len(ev.BusinessUnits) != 1 || ev.BusinessUnits[0] != "Payments" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Error("no refresh event published")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fetcher.calls != 2 {
		t.Errorf("calls after refresh = %d", fetcher.calls)
	}
}

func TestHandleRefresh_UnknownBusinessUnit(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh?bu=Nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlePlans(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var plans []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &plans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plans) != 1 || plans[0]["name"] != "Payments" {
		t.Errorf("plans = %v", plans)
	}
}

func TestHandleIndex(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Automation Backlog", "Payments", "Passed", "Untested", "Open plan"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHandleIndex_Error(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{err: errors.New("upstream down")})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "upstream down") {
		t.Errorf("page missing error text: %s", rec.Body)
	}
}

func TestRequestLogging_AddsRequestID(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubFetcher{snap: fixtureSnapshot()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
