package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, api http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var grants atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		grants.Add(1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", api)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, srv.URL+"/token", "client-id", "client-secret", 6000, nil), &grants
}

func TestSearchTracksNormalizes(t *testing.T) {
	c, grants := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "isrc:X1", r.URL.Query().Get("q"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"tracks":{"items":[{
			"id":"t1","name":"Song","popularity":42,
			"external_urls":{"spotify":"https://catalog.example/t1"},
			"artists":[{"id":"a1","name":"Artist","external_urls":{"spotify":"https://catalog.example/a1"}}]
		}]}}`))
	})

	tracks, err := c.SearchTracks(context.Background(), "isrc:X1", 1)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	got := tracks[0]
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, 42, got.Popularity)
	assert.Equal(t, "https://catalog.example/t1", got.URL)
	assert.Equal(t, "Artist", got.PrimaryArtist().Name)
	assert.Equal(t, int32(1), grants.Load())

	// Second call reuses the cached token.
	_, err = c.SearchTracks(context.Background(), "isrc:X1", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), grants.Load())
}

func TestArtistPopularity(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artists/a1", r.URL.Path)
		w.Write([]byte(`{"id":"a1","popularity":73}`))
	})

	pop, err := c.ArtistPopularity(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 73, pop)
}

func TestTokenGrantFailureSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, srv.URL+"/token", "id", "wrong", 6000, nil)
	_, err := c.SearchTracks(context.Background(), "anything", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPrimaryArtistEmpty(t *testing.T) {
	assert.Equal(t, Artist{}, Track{}.PrimaryArtist())
}
