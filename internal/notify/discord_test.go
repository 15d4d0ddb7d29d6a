package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDiscordSenderDisabledWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewDiscordSender("", "123", discardLogger()))
	assert.Nil(t, NewDiscordSender("tok", "", discardLogger()))
}

func TestNilSenderDropsEverything(t *testing.T) {
	var s *DiscordSender
	assert.NoError(t, s.SendAlert(context.Background(), "hello"))
	assert.NoError(t, s.SetChannelTopic(context.Background(), "topic"))
}

func TestSendAlertPostsEmbed(t *testing.T) {
	var got struct {
		Embeds []embed `json:"embeds"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/555/messages", r.URL.Path)
		assert.Equal(t, "Bot tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	s := NewDiscordSender("tok", "555", discardLogger())
	s.baseURL = srv.URL

	require.NoError(t, s.SendAlert(context.Background(), "flagged set"))
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "flagged set", got.Embeds[0].Description)
}

func TestSetChannelTopicPatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/channels/555", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	s := NewDiscordSender("tok", "555", discardLogger())
	s.baseURL = srv.URL

	assert.NoError(t, s.SetChannelTopic(context.Background(), "Now Playing: Night Drive"))
}

func TestSendAlertSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing permissions", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	s := NewDiscordSender("tok", "555", discardLogger())
	s.baseURL = srv.URL

	err := s.SendAlert(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
