package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/wvrb/airmon/internal/catalog"
	"github.com/wvrb/airmon/internal/spinitron"
)

// errNoMatch marks a spin the catalog could not resolve with enough
// confidence. Callers report it differently from transport errors.
var errNoMatch = errors.New("no catalog match")

// searchQuery is one tier of the lookup plan. Low-confidence tiers need
// their best hit verified before it is accepted.
type searchQuery struct {
	q             string
	lowConfidence bool
}

// searchPlan builds the tiered queries for a spin, most precise first:
// ISRC, then UPC plus names, then raw quoted names. Tiers whose
// identifiers are absent from the spin are skipped.
func searchPlan(spin spinitron.Spin) []searchQuery {
	var plan []searchQuery
	if spin.ISRC != "" {
		plan = append(plan, searchQuery{q: fmt.Sprintf("isrc:%s", spin.ISRC)})
	}
	artistLoose := normalize(spin.Artist, queryProfile)
	trackLoose := normalize(spin.Song, queryProfile)
	if spin.UPC != "" {
		// Long track names past the UPC tier's useful precision are cut.
		short := trackLoose
		if len(short) > 15 {
			short = short[:15]
		}
		plan = append(plan, searchQuery{
			q:             fmt.Sprintf("upc:%s artist:%q track:%q", spin.UPC, artistLoose, short),
			lowConfidence: true,
		})
	}
	plan = append(plan, searchQuery{
		q:             fmt.Sprintf("artist:%q track:%q", spin.Artist, spin.Song),
		lowConfidence: true,
	})
	return plan
}

// resolveSpin matches a spin against the catalog. It walks the tiered plan
// taking the first hit; low-confidence hits must agree with the spin under
// strict normalization. When no tier produces an exact hit it falls back to
// a free-text search and takes the closest candidate, accepted only when
// artist and track similarity clear the asymmetric thresholds.
func (m *Monitor) resolveSpin(ctx context.Context, spin spinitron.Spin) (*catalog.Track, error) {
	artistStrict := normalize(spin.Artist, compareProfile)
	trackStrict := normalize(spin.Song, compareProfile)

	for _, sq := range searchPlan(spin) {
		tracks, err := m.catalog.SearchTracks(ctx, sq.q, 1)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", sq.q, err)
		}
		if len(tracks) == 0 {
			continue
		}
		hit := tracks[0]
		if !sq.lowConfidence {
			return &hit, nil
		}
		if normalize(hit.PrimaryArtist().Name, compareProfile) == artistStrict &&
			normalize(hit.Name, compareProfile) == trackStrict {
			return &hit, nil
		}
	}

	// Free-text fallback: widen the search and rank by name similarity.
	free := normalize(spin.Artist, queryProfile) + " " + normalize(spin.Song, queryProfile)
	tracks, err := m.catalog.SearchTracks(ctx, free, 10)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", free, err)
	}
	if len(tracks) == 0 {
		// Nothing in the catalog resembles this spin at all.
		return nil, nil
	}

	var (
		best     *catalog.Track
		bestSum  float64
		bestASim float64
		bestTSim float64
	)
	for i := range tracks {
		t := &tracks[i]
		aSim := similarity(normalize(t.PrimaryArtist().Name, compareProfile), artistStrict)
		tSim := similarity(normalize(t.Name, compareProfile), trackStrict)
		if best == nil || aSim+tSim > bestSum {
			best, bestSum, bestASim, bestTSim = t, aSim+tSim, aSim, tSim
		}
	}
	if accepted(bestASim, bestTSim, m.cfg.SimilarityUpper, m.cfg.SimilarityLower) {
		return best, nil
	}
	return nil, errNoMatch
}

// accepted applies the asymmetric similarity rule: one of the two names
// must be a near-exact match while the other clears the lower bar.
func accepted(artistSim, trackSim, upper, lower float64) bool {
	return (artistSim > upper && trackSim > lower) ||
		(artistSim > lower && trackSim > upper)
}
