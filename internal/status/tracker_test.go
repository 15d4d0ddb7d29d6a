package status

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvrb/airmon/internal/spinitron"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMeta struct {
	playlist *spinitron.Playlist
	show     *spinitron.Show
}

func (f *fakeMeta) CurrentPlaylist(context.Context) (*spinitron.Playlist, error) {
	return f.playlist, nil
}

func (f *fakeMeta) CurrentShow(context.Context) (*spinitron.Show, error) {
	return f.show, nil
}

type fakeTopics struct {
	topics []string
}

func (f *fakeTopics) SetChannelTopic(_ context.Context, topic string) error {
	f.topics = append(f.topics, topic)
	return nil
}

func TestRefreshUsesShowTitle(t *testing.T) {
	meta := &fakeMeta{
		playlist: &spinitron.Playlist{ID: 1, PersonaID: 9},
		show:     &spinitron.Show{Title: "Night Drive", Category: "Rock"},
	}
	topics := &fakeTopics{}
	tr := New(meta, topics, 42, "WVRB", discardLogger())

	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, "Night Drive", tr.Current())
	assert.Equal(t, []string{"Night Drive"}, topics.topics)
}

func TestRefreshUsesCategoryForAutomation(t *testing.T) {
	meta := &fakeMeta{
		playlist: &spinitron.Playlist{ID: 1, PersonaID: 42},
		show:     &spinitron.Show{Title: "Overnight", Category: "Chainsaw"},
	}
	tr := New(meta, nil, 42, "WVRB", discardLogger())

	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, "Chainsaw", tr.Current())
}

func TestRefreshFallsBackWhenSilent(t *testing.T) {
	tr := New(&fakeMeta{}, nil, 42, "WVRB", discardLogger())
	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, "WVRB", tr.Current())
}

func TestRefreshOnlyPushesChanges(t *testing.T) {
	meta := &fakeMeta{
		playlist: &spinitron.Playlist{ID: 1, PersonaID: 9},
		show:     &spinitron.Show{Title: "Night Drive"},
	}
	topics := &fakeTopics{}
	tr := New(meta, topics, 0, "WVRB", discardLogger())

	require.NoError(t, tr.Refresh(context.Background()))
	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, []string{"Night Drive"}, topics.topics)

	meta.show = &spinitron.Show{Title: "Morning Show"}
	require.NoError(t, tr.Refresh(context.Background()))
	assert.Equal(t, []string{"Night Drive", "Morning Show"}, topics.topics)
}
