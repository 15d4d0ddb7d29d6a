package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wvrb/airmon/internal/catalog"
	"github.com/wvrb/airmon/internal/spinitron"
)

// ErrSweepInProgress is returned when a sweep is requested while another
// one is still running. Sweeps never overlap.
var ErrSweepInProgress = errors.New("monitor: sweep already in progress")

// MetadataService is the slice of the playlist metadata API the monitor
// needs.
type MetadataService interface {
	ListPlaylists(ctx context.Context, start, end time.Time) ([]spinitron.Playlist, error)
	ListSpins(ctx context.Context, playlistID, page int) ([]spinitron.Spin, error)
	Persona(ctx context.Context, id int) (*spinitron.Persona, error)
}

// CatalogService is the slice of the track catalog API the monitor needs.
type CatalogService interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]catalog.Track, error)
	ArtistPopularity(ctx context.Context, artistID string) (int, error)
}

// Notifier delivers one alert chunk. Implementations must accept bodies up
// to 4096 characters.
type Notifier interface {
	SendAlert(ctx context.Context, description string) error
}

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) minutes() int { return c.Hour*60 + c.Minute }

// QuietPeriod suppresses checks for sets ending on a given weekday inside
// the [Start, End] window, station local time.
type QuietPeriod struct {
	Weekday time.Weekday
	Start   ClockTime
	End     ClockTime
}

func (q QuietPeriod) covers(start, end time.Time) bool {
	if end.Weekday() != q.Weekday {
		return false
	}
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()
	return s >= q.Start.minutes() && s <= q.End.minutes() &&
		e >= q.Start.minutes() && e <= q.End.minutes()
}

// Config carries everything a Monitor needs beyond its collaborators.
type Config struct {
	StationSlug    string
	BaseURL        string // playlist metadata site, for alert links
	Lookback       time.Duration
	LookbackOffset time.Duration // shifts the window back for catch-up runs
	MaxSpinPages   int
	LookupDelay    time.Duration

	// Thresholds maps playlist categories to their limits. A "Default"
	// entry is required; categories without their own entry use it.
	Thresholds      map[string]Thresholds
	ExemptPersonas  map[int]bool
	QuietPeriods    []QuietPeriod
	SimilarityUpper float64
	SimilarityLower float64
	Location        *time.Location
}

// DefaultCategory is the required fallback key in Config.Thresholds.
const DefaultCategory = "Default"

// Monitor periodically reviews recently finished sets against the
// popularity policy and alerts on violations.
type Monitor struct {
	cfg      Config
	meta     MetadataService
	catalog  CatalogService
	notifier Notifier
	limiter  *rate.Limiter
	logger   *slog.Logger

	sweepMu sync.Mutex // held for the duration of a sweep

	lastMu sync.RWMutex
	last   *Result
}

// New validates the config and builds a Monitor. The notifier may be nil,
// in which case flagged sets are logged but not delivered.
func New(cfg Config, meta MetadataService, cat CatalogService, notifier Notifier, logger *slog.Logger) (*Monitor, error) {
	if _, ok := cfg.Thresholds[DefaultCategory]; !ok {
		return nil, fmt.Errorf("monitor: thresholds missing %q entry", DefaultCategory)
	}
	if cfg.MaxSpinPages <= 0 {
		cfg.MaxSpinPages = 3
	}
	if cfg.LookupDelay <= 0 {
		cfg.LookupDelay = 100 * time.Millisecond
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Monitor{
		cfg:      cfg,
		meta:     meta,
		catalog:  cat,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Every(cfg.LookupDelay), 1),
		logger:   logger,
	}, nil
}

// Result summarizes one sweep.
type Result struct {
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	SetsChecked  int       `json:"sets_checked"`
	SetsSkipped  int       `json:"sets_skipped"`
	SetsFlagged  int       `json:"sets_flagged"`
	SpinsChecked int       `json:"spins_checked"`
	AlertsSent   int       `json:"alerts_sent"`
	Errors       []string  `json:"errors,omitempty"`
}

func (r *Result) Summary() string {
	return fmt.Sprintf("checked %d sets (%d skipped, %d flagged), %d spins, %d alerts, %d errors in %s",
		r.SetsChecked, r.SetsSkipped, r.SetsFlagged, r.SpinsChecked, r.AlertsSent,
		len(r.Errors), r.Finished.Sub(r.Started).Round(time.Millisecond))
}

func (r *Result) recordError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// LastResult returns the most recent sweep result, or nil before the first
// sweep completes.
func (m *Monitor) LastResult() *Result {
	m.lastMu.RLock()
	defer m.lastMu.RUnlock()
	return m.last
}

// Start runs sweeps on a fixed interval until ctx is cancelled. The first
// sweep fires after one full interval.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	m.logger.Info("popularity monitor started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("popularity monitor stopped")
			return
		case <-ticker.C:
			res, err := m.Sweep(ctx, time.Now())
			if err != nil {
				m.logger.Error("sweep failed", "error", err)
				continue
			}
			m.logger.Info("sweep complete", "summary", res.Summary())
		}
	}
}

// Sweep reviews every set that finished inside the lookback window ending
// at now. A failure on one spin or one set is recorded and the sweep moves
// on; only a cancelled context or an overlapping sweep aborts it.
func (m *Monitor) Sweep(ctx context.Context, now time.Time) (*Result, error) {
	if !m.sweepMu.TryLock() {
		return nil, ErrSweepInProgress
	}
	defer m.sweepMu.Unlock()

	end := now.Add(-m.cfg.LookbackOffset)
	start := end.Add(-m.cfg.Lookback)
	res := &Result{Started: now, WindowStart: start, WindowEnd: end}
	defer func() {
		res.Finished = time.Now()
		m.lastMu.Lock()
		m.last = res
		m.lastMu.Unlock()
	}()

	playlists, err := m.meta.ListPlaylists(ctx, start, end)
	if err != nil {
		m.logger.Error("listing playlists failed", "error", err)
		res.recordError(fmt.Errorf("list playlists: %w", err))
		return res, nil
	}

	for _, pl := range playlists {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if m.skipSet(pl, end) {
			res.SetsSkipped++
			continue
		}
		if err := m.checkSet(ctx, pl, res); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			m.logger.Error("set check failed", "playlist", pl.ID, "error", err)
			res.recordError(fmt.Errorf("playlist %d: %w", pl.ID, err))
		}
		res.SetsChecked++
	}
	return res, nil
}

// skipSet applies the pre-checks that exclude a set entirely: still in
// progress, exempt persona, or inside a quiet period.
func (m *Monitor) skipSet(pl spinitron.Playlist, windowEnd time.Time) bool {
	if pl.End.Time.After(windowEnd) {
		m.logger.Debug("skipping in-progress set", "playlist", pl.ID)
		return true
	}
	if m.cfg.ExemptPersonas[pl.PersonaID] {
		m.logger.Debug("skipping exempt persona", "playlist", pl.ID, "persona", pl.PersonaID)
		return true
	}
	localStart := pl.Start.Time.In(m.cfg.Location)
	localEnd := pl.End.Time.In(m.cfg.Location)
	for _, q := range m.cfg.QuietPeriods {
		if q.covers(localStart, localEnd) {
			m.logger.Debug("skipping quiet-period set", "playlist", pl.ID)
			return true
		}
	}
	return false
}

func (m *Monitor) thresholdsFor(category string) Thresholds {
	if t, ok := m.cfg.Thresholds[category]; ok {
		return t
	}
	return m.cfg.Thresholds[DefaultCategory]
}

// checkSet walks a set's spins page by page, resolves each against the
// catalog, and sends an alert when the set violates its category
// thresholds.
func (m *Monitor) checkSet(ctx context.Context, pl spinitron.Playlist, res *Result) error {
	t := m.thresholdsFor(pl.Category)
	score := &setScore{}

	for page := 1; page <= m.cfg.MaxSpinPages; page++ {
		spins, err := m.meta.ListSpins(ctx, pl.ID, page)
		if err != nil {
			return fmt.Errorf("list spins page %d: %w", page, err)
		}
		if len(spins) == 0 {
			break
		}
		for _, spin := range spins {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := m.limiter.Wait(ctx); err != nil {
				return err
			}
			m.checkSpin(ctx, spin, t, score)
			res.SpinsChecked++
		}
	}

	ev := evaluate(score, t)
	if !ev.Flagged() {
		return nil
	}
	res.SetsFlagged++
	m.logger.Info("set flagged",
		"playlist", pl.ID, "category", pl.Category,
		"avg_artist", ev.AvgArtist, "avg_track", ev.AvgTrack,
		"track_exceeded", ev.AnyTrackExceeded)

	djName := fmt.Sprintf("persona %d", pl.PersonaID)
	if persona, err := m.meta.Persona(ctx, pl.PersonaID); err != nil {
		m.logger.Warn("persona lookup failed", "persona", pl.PersonaID, "error", err)
	} else {
		djName = persona.Name
	}

	alert := m.buildAlert(pl, djName, score, ev, t)
	if m.notifier == nil {
		return nil
	}
	for _, chunk := range chunkAlert(alert) {
		if err := m.notifier.SendAlert(ctx, chunk); err != nil {
			return fmt.Errorf("send alert: %w", err)
		}
		res.AlertsSent++
	}
	return nil
}

// checkSpin resolves one spin and records its contribution to the set
// score. Resolution failures become report lines rather than sweep errors.
func (m *Monitor) checkSpin(ctx context.Context, spin spinitron.Spin, t Thresholds, score *setScore) {
	track, err := m.resolveSpin(ctx, spin)
	switch {
	case errors.Is(err, errNoMatch):
		score.addUnresolved(fmt.Sprintf("   - %s - %s [could not find catalog match]", spin.Artist, spin.Song))
		return
	case err != nil:
		m.logger.Warn("spin check failed", "artist", spin.Artist, "song", spin.Song, "error", err)
		score.addUnresolved("   - [error while checking track]")
		return
	case track == nil:
		// Nothing in the catalog resembles this spin at all; it simply
		// contributes nothing.
		return
	}

	artist := track.PrimaryArtist()
	artistPop, err := m.catalog.ArtistPopularity(ctx, artist.ID)
	if err != nil {
		m.logger.Warn("artist popularity lookup failed", "artist", artist.Name, "error", err)
		score.addUnresolved("   - [error while checking track]")
		return
	}

	bold := ""
	exceeded := track.Popularity > t.TrackPopularity
	if exceeded {
		bold = "**"
	}
	line := fmt.Sprintf("   - %s[%s](%s) (`%d`) - [%s](%s) (`%d`)%s",
		bold, spin.Artist, artist.URL, artistPop, spin.Song, track.URL, track.Popularity, bold)
	score.addResolved(artistPop, track.Popularity, line, exceeded)
}
