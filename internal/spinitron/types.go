package spinitron

import (
	"fmt"
	"strings"
	"time"
)

// Playlist is one broadcast set: a contiguous DJ session with an associated
// genre block ("category").
type Playlist struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	PersonaID int    `json:"persona_id"`
	Category  string `json:"category"`
	Start     Time   `json:"start"`
	End       Time   `json:"end"`
	Image     string `json:"image"`
}

// Spin is one track play logged within a playlist.
type Spin struct {
	Artist     string `json:"artist"`
	Song       string `json:"song"`
	ISRC       string `json:"isrc"`
	UPC        string `json:"upc"`
	Start      Time   `json:"start"`
	PlaylistID int    `json:"playlist_id"`
	Image      string `json:"image"`
}

// Persona is a DJ/host account on the metadata service.
type Persona struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Show is a scheduled program slot.
type Show struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Start    Time   `json:"start"`
	End      Time   `json:"end"`
}

// Time decodes the timestamp formats the metadata service emits: RFC 3339
// and the numeric-zone variant without a colon ("2006-01-02T15:04:05-0700").
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
