// Package spinitron provides the HTTP client for the broadcast metadata
// service (playlists, spins, personas, show schedule).
//
// The service uses bearer-token auth (one credential per channel) and
// page-based pagination. List endpoints respond with either a bare JSON
// array or an envelope object holding the array under "items"; the client
// normalizes both shapes at decode time.
package spinitron

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the service reports 404 for a resource.
var ErrNotFound = errors.New("spinitron: not found")

// Client is the HTTP client for all metadata endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a metadata client with rate limiting.
func NewClient(baseURL, token string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// ListPlaylists returns the playlists overlapping [start, end].
func (c *Client) ListPlaylists(ctx context.Context, start, end time.Time) ([]Playlist, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	var playlists []Playlist
	if err := c.getList(ctx, "/api/playlists", params, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// ListSpins returns one page of a playlist's spins. Pages start at 1; an
// empty result means the playlist has no further pages.
func (c *Client) ListSpins(ctx context.Context, playlistID, page int) ([]Spin, error) {
	params := url.Values{}
	params.Set("playlist_id", strconv.Itoa(playlistID))
	params.Set("page", strconv.Itoa(page))

	var spins []Spin
	if err := c.getList(ctx, "/api/spins", params, &spins); err != nil {
		return nil, err
	}
	return spins, nil
}

// Persona returns the DJ account for a persona id.
func (c *Client) Persona(ctx context.Context, id int) (*Persona, error) {
	body, err := c.get(ctx, "/api/personas/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	var p Persona
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode persona: %w", err)
	}
	return &p, nil
}

// FindPersonas searches DJ accounts by name.
func (c *Client) FindPersonas(ctx context.Context, name string) ([]Persona, error) {
	params := url.Values{}
	params.Set("name", name)

	var personas []Persona
	if err := c.getList(ctx, "/api/personas", params, &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

// CurrentPlaylist returns the playlist on air right now, or nil when the
// station is silent.
func (c *Client) CurrentPlaylist(ctx context.Context) (*Playlist, error) {
	params := url.Values{}
	params.Set("count", "1")

	var playlists []Playlist
	if err := c.getList(ctx, "/api/playlists", params, &playlists); err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, nil
	}
	return &playlists[0], nil
}

// CurrentShow returns the scheduled show on air right now, or nil when
// nothing is scheduled.
func (c *Client) CurrentShow(ctx context.Context) (*Show, error) {
	params := url.Values{}
	params.Set("count", "1")

	var shows []Show
	if err := c.getList(ctx, "/api/shows", params, &shows); err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, nil
	}
	return &shows[0], nil
}

// --------------------------------------------------------------------------
// Internal — request plumbing and envelope normalization
// --------------------------------------------------------------------------

// get performs a rate-limited GET request to a metadata endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("metadata %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// getList performs a GET and decodes the list payload into dst, accepting
// either a bare array or an {"items": [...]} envelope.
func (c *Client) getList(ctx context.Context, path string, params url.Values, dst interface{}) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	items, err := listPayload(body)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(items, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// listPayload resolves the list-or-envelope response shape once. A response
// that is neither shape is an error, never a crash further in.
func listPayload(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf("response is neither a list nor an items envelope")
	}
	return envelope.Items, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
