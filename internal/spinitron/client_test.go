package spinitron

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 6000, nil)
}

func TestListPlaylistsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/playlists", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("start"))
		assert.NotEmpty(t, r.URL.Query().Get("end"))
		w.Write([]byte(`{"items":[{"id":7,"title":"Night Drive","persona_id":3,"category":"Rock","start":"2026-08-28T01:00:00-0400","end":"2026-08-28 03:00:00"}]}`))
	})

	got, err := c.ListPlaylists(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].ID)
	assert.Equal(t, "Night Drive", got[0].Title)
	assert.Equal(t, 1, got[0].Start.Hour())
	assert.Equal(t, 3, got[0].End.Hour())
}

func TestListSpinsBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9", r.URL.Query().Get("playlist_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(`[{"artist":"A","song":"S","isrc":"X","upc":""}]`))
	})

	got, err := c.ListSpins(context.Background(), 9, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Artist)
	assert.Equal(t, "X", got[0].ISRC)
}

func TestListRejectsUnexpectedShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.ListSpins(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a list nor an items envelope")
}

func TestPersonaNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := c.Persona(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersonaDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/personas/12", r.URL.Path)
		w.Write([]byte(`{"id":12,"name":"DJ Nine"}`))
	})

	p, err := c.Persona(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "DJ Nine", p.Name)
}

func TestCurrentPlaylistEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Write([]byte(`{"items":[]}`))
	})

	pl, err := c.CurrentPlaylist(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pl)
}

func TestErrorBodyTruncated(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'e'
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(long)
	})

	_, err := c.ListSpins(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 400)
	assert.Contains(t, err.Error(), "500")
}
