// Package catalog provides the HTTP client for the track catalog and
// popularity service.
//
// The service uses a client-credentials token grant; the client refreshes
// the token transparently before expiry. Search queries support field
// filters (isrc:, upc:, artist:, track:) as well as free text.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// tokenExpiryMargin renews the access token this long before the service
// says it expires, so in-flight requests never race the expiry.
const tokenExpiryMargin = 30 * time.Second

// Client is the HTTP client for catalog search and popularity lookups.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	limiter      *rate.Limiter
	logger       *slog.Logger

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a catalog client with rate limiting.
func NewClient(baseURL, tokenURL, clientID, clientSecret string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		logger:       logger,
	}
}

// SearchTracks queries the catalog and returns up to limit candidates.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	tracks := make([]Track, 0, len(sr.Tracks.Items))
	for _, td := range sr.Tracks.Items {
		tracks = append(tracks, td.normalize())
	}
	return tracks, nil
}

// ArtistPopularity returns the 0–100 popularity score for an artist.
func (c *Client) ArtistPopularity(ctx context.Context, artistID string) (int, error) {
	body, err := c.get(ctx, "/artists/"+artistID, nil)
	if err != nil {
		return 0, err
	}

	var a struct {
		Popularity int `json:"popularity"`
	}
	if err := json.Unmarshal(body, &a); err != nil {
		return 0, fmt.Errorf("decode artist: %w", err)
	}
	return a.Popularity, nil
}

// --------------------------------------------------------------------------
// Internal — token grant
// --------------------------------------------------------------------------

// bearerToken returns a valid access token, refreshing if needed.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have refreshed while we waited for the lock.
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token grant returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		return "", fmt.Errorf("token grant returned no access token")
	}

	c.accessToken = grant.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(grant.ExpiresIn)*time.Second - tokenExpiryMargin)
	c.logger.Debug("catalog token refreshed", "expires_in", grant.ExpiresIn)
	return c.accessToken, nil
}

// get performs a rate-limited, token-authenticated GET request.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// --------------------------------------------------------------------------
// Catalog API response types
// --------------------------------------------------------------------------

type searchResponse struct {
	Tracks struct {
		Items []trackData `json:"items"`
	} `json:"tracks"`
}

type trackData struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Popularity   int    `json:"popularity"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Artists []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	} `json:"artists"`
}

// normalize converts the raw API shape into a Track.
func (td trackData) normalize() Track {
	t := Track{
		ID:         td.ID,
		Name:       td.Name,
		Popularity: td.Popularity,
		URL:        td.ExternalURLs.Spotify,
	}
	for _, a := range td.Artists {
		t.Artists = append(t.Artists, Artist{
			ID:   a.ID,
			Name: a.Name,
			URL:  a.ExternalURLs.Spotify,
		})
	}
	return t
}

// truncate returns a truncated string for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
