package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvrb/airmon/internal/spinitron"
)

func testMonitorForReport(t *testing.T) *Monitor {
	t.Helper()
	m, err := New(Config{
		StationSlug: "WVRB",
		BaseURL:     "https://spinitron.example",
		Thresholds: map[string]Thresholds{
			DefaultCategory: {AverageArtistPopularity: 40, TrackPopularity: 65},
		},
	}, nil, nil, nil, discardLogger())
	require.NoError(t, err)
	return m
}

func TestBuildAlert(t *testing.T) {
	m := testMonitorForReport(t)
	pl := spinitron.Playlist{
		ID:        901,
		Title:     "Late Shift",
		PersonaID: 77,
		Category:  "Rock",
		End:       spinitron.Time{Time: time.Now()},
	}

	score := &setScore{}
	score.addResolved(50, 30, "   - [A](a) (`50`) - [T](t) (`30`)", false)
	score.addResolved(60, 70, "   - **[B](b) (`60`) - [U](u) (`70`)**", true)
	ev := evaluate(score, Thresholds{AverageArtistPopularity: 40, TrackPopularity: 65})
	require.True(t, ev.Flagged())

	alert := m.buildAlert(pl, "DJ Nightowl", score, ev, Thresholds{AverageArtistPopularity: 40, TrackPopularity: 65})

	assert.Contains(t, alert, "[Late Shift](https://spinitron.example/WVRB/pl/901)")
	assert.Contains(t, alert, "[DJ Nightowl](https://spinitron.example/dj/77)")
	assert.Contains(t, alert, "average artist popularity across the set of `55.0`")
	assert.Contains(t, alert, "popularity threshold of `40`")
	assert.Contains(t, alert, "track popularity threshold of `65`")
	assert.Contains(t, alert, "Average track popularity across set: `50.0`")

	// Newest spin line first.
	bIdx := strings.Index(alert, "[B](b)")
	aIdx := strings.Index(alert, "[A](a)")
	assert.Less(t, bIdx, aIdx)
}

func TestBuildAlertOmitsAverageReasonWhenOnlyTrackTripped(t *testing.T) {
	m := testMonitorForReport(t)
	score := &setScore{}
	score.addResolved(10, 70, "   - line", true)
	th := Thresholds{AverageArtistPopularity: 40, TrackPopularity: 65}
	ev := evaluate(score, th)

	alert := m.buildAlert(spinitron.Playlist{}, "dj", score, ev, th)
	assert.NotContains(t, alert, "average artist popularity across the set")
	assert.Contains(t, alert, "track popularity threshold")
}

func TestChunkAlertPassthrough(t *testing.T) {
	chunks := chunkAlert("short message")
	assert.Equal(t, []string{"short message"}, chunks)
}

func TestChunkAlertSplitsOnNewlines(t *testing.T) {
	line := strings.Repeat("x", 99) + "\n"
	msg := strings.Repeat(line, 100) // 10000 chars

	chunks := chunkAlert(msg)
	require.Greater(t, len(chunks), 2)

	for i, c := range chunks {
		assert.Less(t, len(c), maxAlertLen, "chunk %d over limit", i)
		if i < len(chunks)-1 {
			assert.True(t, strings.HasSuffix(c, contNext), "chunk %d missing marker", i)
			// Only the final chunk opens with the continuation prefix;
			// middle chunks carry just the suffix.
			assert.False(t, strings.HasPrefix(c, contPrev), "chunk %d has stray prefix", i)
		} else {
			assert.True(t, strings.HasPrefix(c, contPrev))
		}
	}

	// Reassembling the chunks restores the original message.
	var b strings.Builder
	for i, c := range chunks {
		if i < len(chunks)-1 {
			b.WriteString(strings.TrimSuffix(c, contNext))
		} else {
			b.WriteString(strings.TrimPrefix(c, contPrev))
		}
	}
	assert.Equal(t, msg, b.String())
}

func TestChunkAlertHandlesUnbrokenLine(t *testing.T) {
	msg := strings.Repeat("y", maxAlertLen+500)
	chunks := chunkAlert(msg)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), chunkCut+len(contNext))
	}
}
