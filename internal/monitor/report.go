package monitor

import (
	"fmt"
	"strings"

	"github.com/wvrb/airmon/internal/spinitron"
)

const (
	// maxAlertLen is the hard limit the notification sink imposes on a
	// single message body.
	maxAlertLen = 4096
	// chunkCut is where oversized alerts are split, leaving headroom for
	// the continuation markers.
	chunkCut = 4000

	contNext = "\n(continued in next message)"
	contPrev = "- (continued from previous message)"
)

// alertHeader renders the first line of a flagged-set alert, linking the
// playlist and DJ pages.
func (m *Monitor) alertHeader(pl spinitron.Playlist, djName string) string {
	return fmt.Sprintf("The playlist [%s](%s/%s/pl/%d) by [%s](%s/dj/%d) has been flagged for the following reasons:\n",
		pl.Title, m.cfg.BaseURL, m.cfg.StationSlug, pl.ID,
		djName, m.cfg.BaseURL, pl.PersonaID)
}

// buildAlert assembles the full alert body for a flagged set: header,
// the average-artist reason when that threshold tripped, the bolding note,
// the per-track lines in reverse spin order, and the set-wide track
// average.
func (m *Monitor) buildAlert(pl spinitron.Playlist, djName string, score *setScore, ev evaluation, t Thresholds) string {
	var b strings.Builder
	b.WriteString(m.alertHeader(pl, djName))
	if ev.AvgExceeded {
		fmt.Fprintf(&b, "- Detected an average artist popularity across the set of `%.1f`, passing the popularity threshold of `%.0f` for the genre block %q\n",
			ev.AvgArtist, t.AverageArtistPopularity, pl.Category)
	}
	fmt.Fprintf(&b, "- Any tracks below that are **bolded** passed the track popularity threshold of `%d` for the genre block %q:\n",
		t.TrackPopularity, pl.Category)
	// Lines were prepended as spins arrived, so the newest spin prints
	// first.
	for _, line := range score.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Average track popularity across set: `%.1f`", ev.AvgTrack)
	return b.String()
}

// chunkAlert splits an alert that exceeds the sink limit into pieces joined
// by continuation markers. Alerts under the limit pass through as a single
// chunk.
func chunkAlert(msg string) []string {
	if len(msg) < maxAlertLen {
		return []string{msg}
	}
	var chunks []string
	rest := msg
	for len(rest) >= chunkCut {
		idx := strings.LastIndex(rest[:chunkCut], "\n")
		if idx <= 0 {
			// One unbroken line; hard cut so the loop always advances.
			idx = chunkCut
		}
		chunks = append(chunks, rest[:idx]+contNext)
		rest = rest[idx:]
	}
	chunks = append(chunks, contPrev+rest)
	return chunks
}
