package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crosswalk/internal/services"
)

const maxResponseBytes = 2 << 20

// Externals is the cross-reference block TVmaze attaches to a show.
type Externals struct {
	IMDB       string `json:"imdb"`
	TheMovieDB int64  `json:"themoviedb"`
	TheTVDB    int64  `json:"thetvdb"`
}

// Show is a TVmaze show record, trimmed to the fields the resolver consumes.
type Show struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Externals Externals `json:"externals"`
}

// API defines the TVmaze operations used by the resolver.
type API interface {
	ShowDetail(ctx context.Context, showID int64) (*Show, error)
	FindByIMDB(ctx context.Context, imdbID string) (*Show, error)
	FindByTVDB(ctx context.Context, tvdbID int64) (*Show, error)
}

// Client provides access to the TVmaze API.
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

// New creates a TVmaze client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tvmaze base url required")
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

// ShowDetail fetches a show by its TVmaze id.
func (c *Client) ShowDetail(ctx context.Context, showID int64) (*Show, error) {
	if showID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tvmaze", "show detail", "show id must be positive", nil)
	}
	return c.getShow(ctx, fmt.Sprintf("/shows/%d", showID), "show detail")
}

// FindByIMDB looks up a show by IMDb identifier.
func (c *Client) FindByIMDB(ctx context.Context, imdbID string) (*Show, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrValidation, "tvmaze", "find by imdb", "imdb id must not be empty", nil)
	}
	return c.getShow(ctx, "/lookup/shows?imdb="+url.QueryEscape(imdbID), "find by imdb")
}

// FindByTVDB looks up a show by TVDB identifier.
func (c *Client) FindByTVDB(ctx context.Context, tvdbID int64) (*Show, error) {
	if tvdbID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tvmaze", "find by tvdb", "tvdb id must be positive", nil)
	}
	return c.getShow(ctx, "/lookup/shows?thetvdb="+strconv.FormatInt(tvdbID, 10), "find by tvdb")
}

func (c *Client) getShow(ctx context.Context, path, operation string) (*Show, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "tvmaze", operation, "parse url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "tvmaze", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "tvmaze", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "tvmaze", operation, "read response", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "tvmaze", operation, fmt.Sprintf("returned 404 (latency=%v)", latency), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrNetwork, "tvmaze", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var show Show
	if err := json.Unmarshal(body, &show); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, "tvmaze", operation, "decode response", err)
	}
	if show.ID == 0 {
		return nil, services.Wrap(services.ErrMalformedResponse, "tvmaze", operation, "show missing id", nil)
	}
	return &show, nil
}
