package catalog

// Track is a normalized catalog entry with its popularity score.
type Track struct {
	ID         string
	Name       string
	Popularity int // 0–100
	URL        string
	Artists    []Artist
}

// Artist is a credited artist on a track.
type Artist struct {
	ID   string
	Name string
	URL  string
}

// PrimaryArtist returns the first credited artist, or a zero Artist when
// the track carries no credits.
func (t Track) PrimaryArtist() Artist {
	if len(t.Artists) == 0 {
		return Artist{}
	}
	return t.Artists[0]
}
