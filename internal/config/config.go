// Package config holds the explicit configuration for the backlog dashboard:
// TestRail credentials from the environment, plus a YAML file describing the
// business-unit → plan mapping and custom-field names.
//
// Nothing in this package is read from ambient globals after Load returns;
// the Config value is passed into every constructor that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Secrets are the three TestRail credentials, read from the environment.
type Secrets struct {
	BaseURL string `env:"TESTRAIL_URL"`
	User    string `env:"TESTRAIL_USER"`
	APIKey  string `env:"TESTRAIL_API_KEY"`
}

// Plan maps a business unit to one TestRail plan.
type Plan struct {
	Name   string `yaml:"name"`
	PlanID int    `yaml:"plan_id"`
}

// Fields names the TestRail custom fields the resolver reads. All keys follow
// the TestRail convention of a "custom_" prefix on the system name.
type Fields struct {
	ReviewNotes       string `yaml:"review_notes"`
	NAReason          string `yaml:"na_reason"`
	Countries         string `yaml:"countries"`
	Device            string `yaml:"device"`
	DesktopAutomation string `yaml:"desktop_automation"`
	MobileAutomation  string `yaml:"mobile_automation"`
}

// Duration wraps time.Duration so YAML values like "300s" or "5m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full dashboard configuration.
type Config struct {
	Secrets  Secrets  `yaml:"-"`
	Plans    []Plan   `yaml:"plans"`
	Fields   Fields   `yaml:"fields"`
	CacheTTL Duration `yaml:"cache_ttl"`
	Listen   string   `yaml:"listen"`
}

// ErrMissingCredentials is returned by Validate when any of the three
// TestRail secrets is empty. Callers surface it to the user without
// attempting a fetch.
var ErrMissingCredentials = errors.New("TestRail credentials not configured (set TESTRAIL_URL, TESTRAIL_USER, TESTRAIL_API_KEY)")

// DefaultFields matches the field layout of the automation backlog project.
func DefaultFields() Fields {
	return Fields{
		ReviewNotes:       "custom_review_note",
		NAReason:          "custom_automation_not_applicable_reason",
		Countries:         "custom_multi_countries",
		Device:            "custom_device",
		DesktopAutomation: "custom_automation_status_testim_desktop",
		MobileAutomation:  "custom_automation_status_testim_mobile_view",
	}
}

// Default returns a Config with defaults applied and secrets parsed from the
// environment. No plan mapping is included.
func Default() (*Config, error) {
	cfg := &Config{
		Fields:   DefaultFields(),
		CacheTTL: Duration(300 * time.Second),
		Listen:   ":8080",
	}
	if err := env.Parse(&cfg.Secrets); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// LoadFromPath reads a YAML config file on top of the defaults. Empty fields
// in the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data)
}

// Load parses YAML config bytes on top of the defaults.
func Load(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.Plans = file.Plans
	if file.CacheTTL > 0 {
		cfg.CacheTTL = file.CacheTTL
	}
	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	mergeFields(&cfg.Fields, file.Fields)
	return cfg, nil
}

func mergeFields(dst *Fields, src Fields) {
	if src.ReviewNotes != "" {
		dst.ReviewNotes = src.ReviewNotes
	}
	if src.NAReason != "" {
		dst.NAReason = src.NAReason
	}
	if src.Countries != "" {
		dst.Countries = src.Countries
	}
	if src.Device != "" {
		dst.Device = src.Device
	}
	if src.DesktopAutomation != "" {
		dst.DesktopAutomation = src.DesktopAutomation
	}
	if src.MobileAutomation != "" {
		dst.MobileAutomation = src.MobileAutomation
	}
}

// Validate checks that the credentials are present.
func (c *Config) Validate() error {
	if c.Secrets.BaseURL == "" || c.Secrets.User == "" || c.Secrets.APIKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// PlanByName returns the plan configured for the given business unit.
func (c *Config) PlanByName(name string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}
