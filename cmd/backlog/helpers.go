package main

import (
	"errors"
	"fmt"

	"backlog/internal/config"
)

// selectPlan picks the named business unit, or the first configured one when
// name is empty.
func selectPlan(cfg *config.Config, name string) (config.Plan, error) {
	if name != "" {
		plan, ok := cfg.PlanByName(name)
		if !ok {
			return config.Plan{}, fmt.Errorf("unknown business unit %q", name)
		}
		return plan, nil
	}
	if len(cfg.Plans) == 0 {
		return config.Plan{}, errors.New("no plans configured (set plans in the config file)")
	}
	return cfg.Plans[0], nil
}
