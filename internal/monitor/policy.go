package monitor

import (
	"fmt"

	"github.com/wvrb/airmon/internal/config"
)

// ConfigFrom translates the environment configuration and the station
// policy file into a monitor Config.
func ConfigFrom(cfg *config.Config, pol config.Policy) (Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Config{}, fmt.Errorf("resolve timezone: %w", err)
	}

	thresholds := make(map[string]Thresholds, len(pol.Thresholds))
	for category, t := range pol.Thresholds {
		thresholds[category] = Thresholds{
			AverageArtistPopularity: t.AverageArtistPopularity,
			TrackPopularity:         t.TrackPopularity,
		}
	}

	exempt := make(map[int]bool, len(pol.ExemptPersonas))
	for _, id := range pol.ExemptPersonas {
		exempt[id] = true
	}

	quiet := make([]QuietPeriod, 0, len(pol.QuietPeriods))
	for _, q := range pol.QuietPeriods {
		weekday, err := config.ParseWeekday(q.Weekday)
		if err != nil {
			return Config{}, fmt.Errorf("quiet period: %w", err)
		}
		sh, sm, err := config.ParseClock(q.Start)
		if err != nil {
			return Config{}, fmt.Errorf("quiet period start: %w", err)
		}
		eh, em, err := config.ParseClock(q.End)
		if err != nil {
			return Config{}, fmt.Errorf("quiet period end: %w", err)
		}
		quiet = append(quiet, QuietPeriod{
			Weekday: weekday,
			Start:   ClockTime{Hour: sh, Minute: sm},
			End:     ClockTime{Hour: eh, Minute: em},
		})
	}

	return Config{
		StationSlug:     cfg.StationSlug,
		BaseURL:         cfg.SpinitronBaseURL,
		Lookback:        cfg.Lookback,
		LookbackOffset:  cfg.LookbackOffset,
		MaxSpinPages:    cfg.MaxSpinPages,
		LookupDelay:     cfg.LookupDelay,
		Thresholds:      thresholds,
		ExemptPersonas:  exempt,
		QuietPeriods:    quiet,
		SimilarityUpper: cfg.SimilarityUpper,
		SimilarityLower: cfg.SimilarityLower,
		Location:        loc,
	}, nil
}
