package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"backlog/internal/testrail"
)

// Fetcher loads plan snapshots from the TestRail API.
type Fetcher struct {
	client *testrail.Client
	logger *slog.Logger
	now    func() time.Time
}

// FetcherOption configures the Fetcher during construction.
type FetcherOption func(*Fetcher)

// WithFetcherLogger configures structured logging.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// WithFetcherClock overrides the clock, for tests.
func WithFetcherClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher returns a Fetcher over the given client.
func NewFetcher(client *testrail.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads a full snapshot for one plan: the plan itself, the four lookup
// tables, the dropdown option tables, and every test across the plan's runs.
// Run fetches are sequential; the per-run order of tests is preserved.
func (f *Fetcher) Fetch(ctx context.Context, planID int) (*Snapshot, error) {
	plan, err := f.client.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	statuses, err := f.client.GetStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	priorities, err := f.client.GetPriorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	caseTypes, err := f.client.GetCaseTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	caseFields, err := f.client.GetCaseFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	snap := &Snapshot{
		Plan:       plan,
		Statuses:   make(map[int]string, len(statuses)),
		Priorities: make(map[int]string, len(priorities)),
		Types:      make(map[int]string, len(caseTypes)),
		Options:    optionTables(caseFields),
		FetchedAt:  f.now(),
	}
	for _, s := range statuses {
		snap.Statuses[s.ID] = s.Label
	}
	for _, p := range priorities {
		snap.Priorities[p.ID] = p.Name
	}
	for _, t := range caseTypes {
		snap.Types[t.ID] = t.Name
	}

	for _, entry := range plan.Entries {
		for _, run := range entry.Runs {
			info := Run{ID: run.ID, Name: run.Name, URL: run.URL}
			snap.Runs = append(snap.Runs, info)

			tests, err := f.client.GetTests(ctx, run.ID)
			if err != nil {
				return nil, fmt.Errorf("fetch snapshot: run %d: %w", run.ID, err)
			}
			f.logger.InfoContext(ctx, "fetched run", "run_id", run.ID, "run_name", run.Name, "tests", len(tests))
			for _, test := range tests {
				snap.Tests = append(snap.Tests, Test{Test: test, Run: info})
			}
		}
	}

	return snap, nil
}

// optionTables builds the per-field option maps for dropdown and
// multi-select fields, keyed by the "custom_"-prefixed system name.
func optionTables(fields []testrail.CaseField) map[string]map[int64]string {
	tables := make(map[string]map[int64]string)
	for _, field := range fields {
		if field.TypeID != testrail.FieldTypeDropdown && field.TypeID != testrail.FieldTypeMultiSelect {
			continue
		}
		name := field.SystemName
		if name == "" {
			name = field.Name
		}
		if name == "" {
			continue
		}
		key := "custom_" + name
		for _, cfg := range field.Configs {
			if cfg.Options.Items == "" {
				continue
			}
			options := ParseOptionItems(cfg.Options.Items)
			if existing, ok := tables[key]; ok {
				for id, label := range options {
					existing[id] = label
				}
			} else {
				tables[key] = options
			}
		}
	}
	return tables
}
