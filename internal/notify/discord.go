// Package notify delivers monitor alerts and status updates to a Discord
// channel over the REST API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://discord.com/api/v10"

// DiscordSender posts embeds and topic updates to a single channel. A nil
// sender is valid and drops everything, so callers never need to branch on
// whether Discord is configured.
type DiscordSender struct {
	httpClient *http.Client
	baseURL    string
	token      string
	channelID  string
	logger     *slog.Logger
}

// NewDiscordSender returns a sender for the given bot token and channel,
// or nil when either is empty.
func NewDiscordSender(token, channelID string, logger *slog.Logger) *DiscordSender {
	if token == "" || channelID == "" {
		logger.Info("discord sender disabled, missing token or channel")
		return nil
	}
	return &DiscordSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		channelID:  channelID,
		logger:     logger,
	}
}

type embed struct {
	Description string `json:"description"`
}

// SendAlert posts one embed to the channel. Bodies must stay under the
// 4096-character embed description limit.
func (s *DiscordSender) SendAlert(ctx context.Context, description string) error {
	if s == nil {
		return nil
	}
	payload := struct {
		Embeds []embed `json:"embeds"`
	}{Embeds: []embed{{Description: description}}}
	url := fmt.Sprintf("%s/channels/%s/messages", s.baseURL, s.channelID)
	return s.post(ctx, http.MethodPost, url, payload)
}

// SetChannelTopic replaces the channel topic, used for the now-playing
// status line.
func (s *DiscordSender) SetChannelTopic(ctx context.Context, topic string) error {
	if s == nil {
		return nil
	}
	payload := struct {
		Topic string `json:"topic"`
	}{Topic: topic}
	url := fmt.Sprintf("%s/channels/%s", s.baseURL, s.channelID)
	return s.post(ctx, http.MethodPatch, url, payload)
}

func (s *DiscordSender) post(ctx context.Context, method, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
