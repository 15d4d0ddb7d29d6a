// Package status tracks the station's currently playing set and mirrors it
// to the notification channel topic.
package status

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wvrb/airmon/internal/spinitron"
)

// MetadataService is the slice of the playlist metadata API the tracker
// needs.
type MetadataService interface {
	CurrentPlaylist(ctx context.Context) (*spinitron.Playlist, error)
	CurrentShow(ctx context.Context) (*spinitron.Show, error)
}

// TopicSetter publishes the current listening text. A nil implementation
// is handled by the sender itself.
type TopicSetter interface {
	SetChannelTopic(ctx context.Context, topic string) error
}

// Tracker polls the metadata API for the current set. When automation is
// on air the show category stands in for a title.
type Tracker struct {
	meta              MetadataService
	topics            TopicSetter
	automationPersona int
	fallback          string
	logger            *slog.Logger

	mu      sync.RWMutex
	current string
}

func New(meta MetadataService, topics TopicSetter, automationPersona int, fallback string, logger *slog.Logger) *Tracker {
	return &Tracker{
		meta:              meta,
		topics:            topics,
		automationPersona: automationPersona,
		fallback:          fallback,
		logger:            logger,
		current:           fallback,
	}
}

// Current returns the most recently observed listening text.
func (t *Tracker) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Start polls on a fixed interval until ctx is cancelled.
func (t *Tracker) Start(ctx context.Context, interval time.Duration) {
	t.logger.Info("status tracker started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("status tracker stopped")
			return
		case <-ticker.C:
			if err := t.Refresh(ctx); err != nil {
				t.logger.Error("status refresh failed", "error", err)
			}
		}
	}
}

// Refresh fetches the current set once and pushes the topic when the
// listening text changed.
func (t *Tracker) Refresh(ctx context.Context) error {
	text, err := t.listeningText(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	changed := text != t.current
	if changed {
		t.current = text
	}
	t.mu.Unlock()

	if !changed {
		return nil
	}
	t.logger.Info("now playing changed", "text", text)
	if t.topics != nil {
		return t.topics.SetChannelTopic(ctx, text)
	}
	return nil
}

func (t *Tracker) listeningText(ctx context.Context) (string, error) {
	pl, err := t.meta.CurrentPlaylist(ctx)
	if err != nil {
		return "", err
	}
	show, err := t.meta.CurrentShow(ctx)
	if err != nil {
		return "", err
	}
	if pl == nil || show == nil {
		return t.fallback, nil
	}
	if t.automationPersona != 0 && pl.PersonaID == t.automationPersona {
		// Automation deck has no DJ; the genre block name is more useful.
		if show.Category != "" {
			return show.Category, nil
		}
		return t.fallback, nil
	}
	if show.Title == "" {
		return t.fallback, nil
	}
	return show.Title, nil
}
