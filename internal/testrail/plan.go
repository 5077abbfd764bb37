package testrail

import (
	"context"
	"fmt"
)

// GetPlan returns a plan with its nested entries and runs.
func (c *Client) GetPlan(ctx context.Context, planID int) (*Plan, error) {
	var plan Plan
	if err := c.getJSON(ctx, fmt.Sprintf("get_plan/%d", planID), nil, "get plan", &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Runs returns all runs across the plan's entries, in plan order.
func (p *Plan) Runs() []Run {
	var runs []Run
	for _, entry := range p.Entries {
		runs = append(runs, entry.Runs...)
	}
	return runs
}
