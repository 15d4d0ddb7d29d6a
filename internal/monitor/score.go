package monitor

// noAverage is the sentinel recorded when a set produced no usable
// popularity samples at all.
const noAverage = -1

// Thresholds holds the popularity limits applied to one playlist category.
type Thresholds struct {
	// AverageArtistPopularity is the ceiling for the mean popularity of
	// all resolved artists across the set.
	AverageArtistPopularity float64
	// TrackPopularity is the per-track ceiling; a single track above it
	// flags the whole set.
	TrackPopularity int
}

// setScore accumulates per-spin results while a set is being checked.
type setScore struct {
	artistPopularities []int
	trackPopularities  []int
	lines              []string
	anyTrackExceeded   bool
}

func (s *setScore) addResolved(artistPop, trackPop int, line string, exceeded bool) {
	s.artistPopularities = append(s.artistPopularities, artistPop)
	s.trackPopularities = append(s.trackPopularities, trackPop)
	s.prepend(line)
	if exceeded {
		s.anyTrackExceeded = true
	}
}

func (s *setScore) addUnresolved(line string) {
	s.prepend(line)
}

// prepend keeps lines in reverse spin order so the newest spin prints
// first in the alert.
func (s *setScore) prepend(line string) {
	s.lines = append([]string{line}, s.lines...)
}

// evaluation is the verdict for one set after every spin has been checked.
type evaluation struct {
	AvgArtist        float64
	AvgTrack         float64
	AvgExceeded      bool
	AnyTrackExceeded bool
}

func (e evaluation) Flagged() bool {
	return e.AvgExceeded || e.AnyTrackExceeded
}

// evaluate computes the set averages and compares them against the
// category thresholds. Sets with no resolved spins carry the noAverage
// sentinel and never trip the average check.
func evaluate(s *setScore, t Thresholds) evaluation {
	ev := evaluation{
		AvgArtist:        mean(s.artistPopularities),
		AvgTrack:         mean(s.trackPopularities),
		AnyTrackExceeded: s.anyTrackExceeded,
	}
	if ev.AvgArtist != noAverage && ev.AvgArtist > t.AverageArtistPopularity {
		ev.AvgExceeded = true
	}
	return ev
}

func mean(vals []int) float64 {
	if len(vals) == 0 {
		return noAverage
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}
