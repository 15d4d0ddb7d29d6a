package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	thresholds := Thresholds{AverageArtistPopularity: 40, TrackPopularity: 65}

	t.Run("empty set carries sentinel and never trips", func(t *testing.T) {
		ev := evaluate(&setScore{}, thresholds)
		assert.Equal(t, float64(noAverage), ev.AvgArtist)
		assert.Equal(t, float64(noAverage), ev.AvgTrack)
		assert.False(t, ev.Flagged())
	})

	t.Run("average strictly above threshold flags", func(t *testing.T) {
		s := &setScore{}
		s.addResolved(41, 10, "a", false)
		ev := evaluate(s, thresholds)
		assert.Equal(t, 41.0, ev.AvgArtist)
		assert.True(t, ev.AvgExceeded)
		assert.True(t, ev.Flagged())
	})

	t.Run("average exactly at threshold does not flag", func(t *testing.T) {
		s := &setScore{}
		s.addResolved(40, 10, "a", false)
		ev := evaluate(s, thresholds)
		assert.False(t, ev.AvgExceeded)
		assert.False(t, ev.Flagged())
	})

	t.Run("single hot track flags regardless of average", func(t *testing.T) {
		s := &setScore{}
		s.addResolved(5, 70, "a", true)
		s.addResolved(5, 5, "b", false)
		ev := evaluate(s, thresholds)
		assert.False(t, ev.AvgExceeded)
		assert.True(t, ev.AnyTrackExceeded)
		assert.True(t, ev.Flagged())
	})

	t.Run("averages computed over resolved spins only", func(t *testing.T) {
		s := &setScore{}
		s.addResolved(30, 60, "a", false)
		s.addResolved(50, 20, "b", false)
		s.addUnresolved("c")
		ev := evaluate(s, thresholds)
		assert.Equal(t, 40.0, ev.AvgArtist)
		assert.Equal(t, 40.0, ev.AvgTrack)
	})
}

func TestSetScorePrependsLines(t *testing.T) {
	s := &setScore{}
	s.addResolved(1, 1, "first", false)
	s.addUnresolved("second")
	s.addResolved(1, 1, "third", false)
	assert.Equal(t, []string{"third", "second", "first"}, s.lines)
}
