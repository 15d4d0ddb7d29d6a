package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQueryProfile(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "MF DOOM", "mf doom"},
		{"strips bracketed", "Song Title (Remastered 2009)", "song title "},
		{"strips square brackets", "Song [Live]", "song "},
		{"strips dash suffix", "Title - 2011 Remaster", "title"},
		{"strips feature", "Track feat. Somebody", "track "},
		{"folds accents", "Beyoncé", "beyonce"},
		{"drops non-alphanumeric", "AC/DC", "acdc"},
		{"keeps collaborators", "Duo One & Duo Two", "duo one  duo two"},
		{"keeps spaces", "three word name", "three word name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in, queryProfile))
		})
	}
}

func TestNormalizeCompareProfile(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips ampersand list", "Simon & Garfunkel", "simon"},
		{"strips comma list", "Crosby, Stills, Nash", "crosby"},
		{"strips bracketed and list", "Artist (UK) & Friends", "artist "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in, compareProfile))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Sigur Rós - Svefn-g-englar (Live) feat. Nobody"
	once := normalize(in, compareProfile)
	assert.Equal(t, once, normalize(once, compareProfile))
}

func TestAsciiFoldDropsUnmappable(t *testing.T) {
	assert.Equal(t, "sigur ros", asciiFold("sigur rós"))
	assert.Equal(t, "", asciiFold("東京"))
}
