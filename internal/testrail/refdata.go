package testrail

import (
	"context"
	"fmt"
	"strings"
)

// GetStatuses returns the execution-status lookup table.
func (c *Client) GetStatuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	if err := c.getJSON(ctx, "get_statuses", nil, "get statuses", &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetPriorities returns the priority lookup table.
func (c *Client) GetPriorities(ctx context.Context) ([]Priority, error) {
	var priorities []Priority
	if err := c.getJSON(ctx, "get_priorities", nil, "get priorities", &priorities); err != nil {
		return nil, err
	}
	return priorities, nil
}

// GetCaseTypes returns the case-type lookup table.
func (c *Client) GetCaseTypes(ctx context.Context) ([]CaseType, error) {
	var types []CaseType
	if err := c.getJSON(ctx, "get_case_types", nil, "get case types", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// GetCaseFields returns the case-field definitions, including dropdown and
// multi-select option strings.
func (c *Client) GetCaseFields(ctx context.Context) ([]CaseField, error) {
	var fields []CaseField
	if err := c.getJSON(ctx, "get_case_fields", nil, "get case fields", &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// CaseURL builds the deep link to a case in the TestRail UI. Returns ""
// when caseID is zero.
func CaseURL(baseURL string, caseID int) string {
	if caseID == 0 || baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/index.php?/cases/view/%d", strings.TrimSuffix(baseURL, "/"), caseID)
}
