package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"backlog/internal/config"
	"backlog/internal/report"
)

// errUnknownBusinessUnit marks a request for a business unit the config
// does not know.
var errUnknownBusinessUnit = errors.New("unknown business unit")

// loadSummary resolves the business unit, consults the cache, and builds the
// dashboard model. All fetch failures surface as a single user-facing error.
func (s *Server) loadSummary(r *http.Request) (*report.Summary, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	buName := r.URL.Query().Get("bu")
	var plan config.Plan
	switch {
	case buName != "":
		p, ok := s.cfg.PlanByName(buName)
		if !ok {
			return nil, fmt.Errorf("%w %q", errUnknownBusinessUnit, buName)
		}
		plan = p
	case len(s.cfg.Plans) > 0:
		plan = s.cfg.Plans[0]
	default:
		return nil, errors.New("no plans configured")
	}

	snap, err := s.cache.Get(r.Context(), plan.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", plan.Name, err)
	}

	return report.Summarize(snap, s.cfg.Secrets.BaseURL, s.cfg.Fields, r.URL.Query().Get("run")), nil
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	type planPayload struct {
		Name   string `json:"name"`
		PlanID int    `json:"plan_id"`
	}
	payload := make([]planPayload, 0, len(s.cfg.Plans))
	for _, p := range s.cfg.Plans {
		payload = append(payload, planPayload{Name: p.Name, PlanID: p.PlanID})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.loadSummary(r)
	if err != nil {
		s.logger.Error("dashboard load failed", "error", err)
		writeJSONError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toPayload(summary))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	buName := r.URL.Query().Get("bu")
	var invalidated []string
	for _, p := range s.cfg.Plans {
		if buName != "" && p.Name != buName {
			continue
		}
		s.cache.Invalidate(p.PlanID)
		invalidated = append(invalidated, p.Name)
	}
	if len(invalidated) == 0 {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown business unit %q", buName))
		return
	}
	s.events.publish(refreshEvent{BusinessUnits: invalidated})
	writeJSON(w, http.StatusOK, map[string]any{"invalidated": invalidated})
}

// errorStatus maps the error taxonomy to HTTP statuses: configuration
// problems are the operator's to fix (503), a bad business unit is the
// caller's (404), everything else is a failed upstream load (502).
func errorStatus(err error) int {
	switch {
	case errors.Is(err, config.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	case errors.Is(err, errUnknownBusinessUnit):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
