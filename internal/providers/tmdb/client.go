package tmdb

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

	"crosswalk/internal/services"
)

const maxResponseBytes = 2 << 20

// ExternalIDs is the cross-reference block TMDB attaches to a movie or show.
type ExternalIDs struct {
	ID     int64  `json:"id"`
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// FindResult is a single match from the find-by-external-id endpoint.
type FindResult struct {
	ID        int64  `json:"id"`
	MediaType string `json:"media_type"`
}

// FindResponse groups find-by-external-id matches by media type.
type FindResponse struct {
	MovieResults []FindResult `json:"movie_results"`
	TVResults    []FindResult `json:"tv_results"`
}

// API defines the TMDB operations used by the resolver.
type API interface {
	MovieExternalIDs(ctx context.Context, movieID int64) (*ExternalIDs, error)
	TVExternalIDs(ctx context.Context, showID int64) (*ExternalIDs, error)
	FindByIMDB(ctx context.Context, imdbID string) (*FindResponse, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
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

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// MovieExternalIDs fetches the external-id block for a movie.
func (c *Client) MovieExternalIDs(ctx context.Context, movieID int64) (*ExternalIDs, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie external ids", "movie id must be positive", nil)
	}
	var payload ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/external_ids", movieID), "movie external ids", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TVExternalIDs fetches the external-id block for a TV show.
func (c *Client) TVExternalIDs(ctx context.Context, showID int64) (*ExternalIDs, error) {
	if showID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "tv external ids", "show id must be positive", nil)
	}
	var payload ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/external_ids", showID), "tv external ids", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FindByIMDB looks up TMDB records keyed by an IMDb identifier.
func (c *Client) FindByIMDB(ctx context.Context, imdbID string) (*FindResponse, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "find", "imdb id must not be empty", nil)
	}
	var payload FindResponse
	path := "/find/" + url.PathEscape(imdbID) + "?external_source=imdb_id"
	if err := c.get(ctx, path, "find", &payload); err != nil {
		return nil, err
	}
	if len(payload.MovieResults) == 0 && len(payload.TVResults) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "tmdb", "find", "no match for "+imdbID, nil)
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "tmdb", operation, "parse url", err)
	}
	params := endpoint.Query()
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, "read response", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "tmdb", operation, fmt.Sprintf("returned 404 (latency=%v)", latency), nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrNetwork, "tmdb", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrMalformedResponse, "tmdb", operation, "decode response", err)
	}
	return nil
}
