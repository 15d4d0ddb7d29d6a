package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCategory is the threshold entry used when a set's category has no
// entry of its own. Every policy must define it.
const DefaultCategory = "Default"

// Policy holds the station's compliance rules: per-category popularity
// limits, personas whose sets are never checked, and weekly quiet periods.
type Policy struct {
	Thresholds     map[string]CategoryThreshold `yaml:"thresholds"`
	ExemptPersonas []int                        `yaml:"exempt_personas"`
	QuietPeriods   []QuietPeriod                `yaml:"quiet_periods"`
}

// CategoryThreshold is the popularity limit pair for one genre block.
type CategoryThreshold struct {
	AverageArtistPopularity float64 `yaml:"average_artist_popularity"`
	TrackPopularity         int     `yaml:"track_popularity"`
}

// QuietPeriod is a weekly window in station-local time during which sets are
// not popularity-checked (e.g. a designated anything-goes programming slot).
type QuietPeriod struct {
	Weekday string `yaml:"weekday"` // e.g. "Friday"
	Start   string `yaml:"start"`   // "HH:MM" local time-of-day
	End     string `yaml:"end"`     // "HH:MM" local time-of-day
}

// DefaultPolicy returns the policy used when no policy file is configured.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds: map[string]CategoryThreshold{
			DefaultCategory: {AverageArtistPopularity: 40, TrackPopularity: 65},
		},
	}
}

// LoadPolicy reads and validates a policy YAML file. An empty path yields
// DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the policy for the invariants the monitor relies on.
func (p Policy) Validate() error {
	if len(p.Thresholds) == 0 {
		return fmt.Errorf("thresholds table is empty")
	}
	if _, ok := p.Thresholds[DefaultCategory]; !ok {
		return fmt.Errorf("thresholds table has no %q entry", DefaultCategory)
	}
	for _, q := range p.QuietPeriods {
		if _, err := ParseWeekday(q.Weekday); err != nil {
			return err
		}
		for _, clock := range []string{q.Start, q.End} {
			if _, _, err := ParseClock(clock); err != nil {
				return err
			}
		}
	}
	return nil
}
