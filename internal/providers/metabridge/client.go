package metabridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crosswalk/internal/identity"
	"crosswalk/internal/services"
)

const maxResponseBytes = 1 << 20

// Mapping is the bridge's answer for one IMDb identifier.
type Mapping struct {
	IMDBID string `json:"imdb_id"`
	TMDBID int64  `json:"tmdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// API defines the meta-bridge operation used by the resolver.
type API interface {
	Lookup(ctx context.Context, imdbID string, contentType identity.ContentType) (*Mapping, error)
}

// Client provides access to a meta-bridge deployment.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// New creates a meta-bridge client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("metabridge base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup asks the bridge for the TMDB and TVDB ids behind an IMDb identifier.
func (c *Client) Lookup(ctx context.Context, imdbID string, contentType identity.ContentType) (*Mapping, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrValidation, "metabridge", "lookup", "imdb id must not be empty", nil)
	}

	params := url.Values{}
	params.Set("imdb", imdbID)
	if contentType != "" {
		params.Set("type", string(contentType))
	}
	endpoint, err := url.Parse(c.baseURL + "/lookup?" + params.Encode())
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "metabridge", "lookup", "parse url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "metabridge", "lookup", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "metabridge", "lookup", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "metabridge", "lookup", "read response", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "metabridge", "lookup", fmt.Sprintf("returned 404 (latency=%v)", latency), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrNetwork, "metabridge", "lookup", fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var mapping Mapping
	if err := json.Unmarshal(body, &mapping); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, "metabridge", "lookup", "decode response", err)
	}
	if mapping.TMDBID == 0 && mapping.TVDBID == 0 {
		return nil, services.Wrap(services.ErrNotFound, "metabridge", "lookup", "no ids for "+imdbID, nil)
	}
	return &mapping, nil
}
