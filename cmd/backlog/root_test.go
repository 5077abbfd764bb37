package main

import (
	"testing"

	"backlog/internal/config"
)

func TestSelectPlan(t *testing.T) {
	cfg := &config.Config{Plans: []config.Plan{
		{Name: "Payments", PlanID: 1},
		{Name: "Lending", PlanID: 2},
	}}

	plan, err := selectPlan(cfg, "")
	if err != nil || plan.Name != "Payments" {
		t.Errorf("default plan = %+v, err %v", plan, err)
	}

	plan, err = selectPlan(cfg, "Lending")
	if err != nil || plan.PlanID != 2 {
		t.Errorf("named plan = %+v, err %v", plan, err)
	}

	if _, err = selectPlan(cfg, "Nope"); err == nil {
		t.Error("expected error for unknown business unit")
	}

	if _, err = selectPlan(&config.Config{}, ""); err == nil {
		t.Error("expected error for empty plan list")
	}
}

func TestRootCommandRegistration(t *testing.T) {
	want := map[string]bool{"report": false, "serve": false, "mcp": false, "snapshot": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
