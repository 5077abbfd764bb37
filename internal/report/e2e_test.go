package report_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"backlog/internal/config"
	"backlog/internal/report"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

// planServer mocks one plan with one run and three tests:
//
//	(a) Passed,   device Both,    both sub-statuses "Not Applicable"
//	(b) Untested, device Desktop, desktop sub-status "In Progress"
//	(c) Failed,   device Mobile,  mobile sub-status "N/A"
func planServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.TrimPrefix(r.URL.RawQuery, "/api/v2/")
		switch {
		case strings.HasPrefix(endpoint, "get_plan/"):
			json.NewEncoder(w).Encode(map[string]any{
				"id": 61979, "name": "Automation Backlog",
				"entries": []map[string]any{
					{"name": "Regression", "runs": []map[string]any{{"id": 101, "name": "Web"}}},
				},
			})
		case strings.HasPrefix(endpoint, "get_tests/101"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "case_id": 11, "title": "Login", "status_id": 1,
					"custom_device": 3,
					"custom_automation_status_testim_desktop":     2,
					"custom_automation_status_testim_mobile_view": 2},
				{"id": 2, "case_id": 12, "title": "Checkout", "status_id": 3,
					"custom_device": 1,
					"custom_automation_status_testim_desktop": 1},
				{"id": 3, "case_id": 13, "title": "Search", "status_id": 5,
					"custom_device": 2,
					"custom_automation_status_testim_mobile_view": "N/A"},
			})
		case endpoint == "get_statuses":
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "label": "Passed"},
				{"id": 3, "label": "Untested"},
				{"id": 5, "label": "Failed"},
			})
		case endpoint == "get_priorities":
			json.NewEncoder(w).Encode([]map[string]any{{"id": 4, "name": "High"}})
		case endpoint == "get_case_types":
			json.NewEncoder(w).Encode([]map[string]any{{"id": 6, "name": "Functional"}})
		case endpoint == "get_case_fields":
			json.NewEncoder(w).Encode([]map[string]any{
				{"system_name": "device", "type_id": 6, "configs": []map[string]any{
					{"options": map[string]any{"items": "1, Desktop\n2, Mobile\n3, Both"}},
				}},
				{"system_name": "automation_status_testim_desktop", "type_id": 6, "configs": []map[string]any{
					{"options": map[string]any{"items": "1, In Progress\n2, Not Applicable"}},
				}},
				{"system_name": "automation_status_testim_mobile_view", "type_id": 6, "configs": []map[string]any{
					{"options": map[string]any{"items": "1, In Progress\n2, Not Applicable"}},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

var _ = Describe("dashboard pipeline", func() {
	var (
		server  *httptest.Server
		summary *report.Summary
	)

	BeforeEach(func() {
		server = planServer()
		DeferCleanup(server.Close)

		client, err := testrail.New(server.URL, "qa@example.com", "secret",
			testrail.WithHTTPClient(server.Client()))
		Expect(err).NotTo(HaveOccurred())

		snap, err := snapshot.NewFetcher(client).Fetch(context.Background(), 61979)
		Expect(err).NotTo(HaveOccurred())

		summary = report.Summarize(snap, server.URL, config.DefaultFields(), "")
	})

	It("derives the effective status per test", func() {
		Expect(summary.Rows).To(HaveLen(3))
		Expect(summary.Rows[0].Status).To(Equal("Not Applicable"))
		Expect(summary.Rows[1].Status).To(Equal("Untested"))
		Expect(summary.Rows[2].Status).To(Equal("Not Applicable"))
	})

	It("aggregates the expected status counts", func() {
		Expect(summary.Counts).To(Equal(map[string]int{
			"Not Applicable": 2,
			"Untested":       1,
		}))
		Expect(summary.Order).To(Equal([]string{"Untested", "Not Applicable"}))
	})

	It("computes progress over actionable tests", func() {
		Expect(summary.Progress.Total).To(Equal(3))
		Expect(summary.Progress.NotApplicable).To(Equal(2))
		Expect(summary.Progress.Actionable).To(Equal(1))
		Expect(summary.Progress.Done).To(BeZero())
	})

	It("buckets the not-applicable population", func() {
		Expect(summary.NAGroups).To(HaveLen(1))
		Expect(summary.NAGroups[0].Reason).To(Equal("No reason specified"))
		Expect(summary.NAGroups[0].Rows).To(HaveLen(2))
	})
})
