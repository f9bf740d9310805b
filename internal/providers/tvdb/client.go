package tvdb

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

const maxResponseBytes = 2 << 20

// Remote-id source names as TheTVDB spells them.
const (
	SourceIMDB   = "IMDB"
	SourceTMDB   = "TheMovieDB.com"
	SourceTVmaze = "TV Maze"
)

// RemoteID is one cross-reference entry from an extended record.
type RemoteID struct {
	ID         string `json:"id"`
	SourceName string `json:"sourceName"`
}

// ExtendedRecord is the extended series or movie payload, trimmed to the
// fields the resolver consumes.
type ExtendedRecord struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	RemoteIDs []RemoteID `json:"remoteIds"`
}

// Remote returns the cross-reference value for a source name, if present.
func (r *ExtendedRecord) Remote(sourceName string) (string, bool) {
	for _, remote := range r.RemoteIDs {
		if strings.EqualFold(remote.SourceName, sourceName) && strings.TrimSpace(remote.ID) != "" {
			return strings.TrimSpace(remote.ID), true
		}
	}
	return "", false
}

// searchRecord is the id-bearing fragment of a remote-id search hit.
type searchRecord struct {
	ID int64 `json:"id"`
}

// searchMatch nests the matched record under its kind.
type searchMatch struct {
	Series *searchRecord `json:"series"`
	Movie  *searchRecord `json:"movie"`
}

type searchEnvelope struct {
	Status string        `json:"status"`
	Data   []searchMatch `json:"data"`
}

type extendedEnvelope struct {
	Status string         `json:"status"`
	Data   ExtendedRecord `json:"data"`
}

// API defines the TheTVDB operations used by the resolver.
type API interface {
	FindByTMDB(ctx context.Context, tmdbID int64, contentType identity.ContentType) (int64, error)
	FindByIMDB(ctx context.Context, imdbID string, contentType identity.ContentType) (int64, error)
	Extended(ctx context.Context, tvdbID int64, contentType identity.ContentType) (*ExtendedRecord, error)
}

// Client provides access to the TheTVDB v4 API.
type Client struct {
	apiKey     string
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

// New creates a TheTVDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tvdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tvdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindByTMDB searches the remote-id index for a TMDB identifier and returns
// the TVDB id of the match for the requested content type.
func (c *Client) FindByTMDB(ctx context.Context, tmdbID int64, contentType identity.ContentType) (int64, error) {
	if tmdbID <= 0 {
		return 0, services.Wrap(services.ErrValidation, "tvdb", "find by tmdb", "tmdb id must be positive", nil)
	}
	return c.searchRemote(ctx, fmt.Sprintf("%d", tmdbID), "find by tmdb", contentType)
}

// FindByIMDB searches the remote-id index for an IMDb identifier and returns
// the TVDB id of the match for the requested content type.
func (c *Client) FindByIMDB(ctx context.Context, imdbID string, contentType identity.ContentType) (int64, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return 0, services.Wrap(services.ErrValidation, "tvdb", "find by imdb", "imdb id must not be empty", nil)
	}
	return c.searchRemote(ctx, imdbID, "find by imdb", contentType)
}

// Extended fetches the extended record, including remote-id cross-references.
func (c *Client) Extended(ctx context.Context, tvdbID int64, contentType identity.ContentType) (*ExtendedRecord, error) {
	if tvdbID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tvdb", "extended", "tvdb id must be positive", nil)
	}
	kind := "series"
	if contentType == identity.ContentTypeMovie {
		kind = "movies"
	}
	var payload extendedEnvelope
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/extended", kind, tvdbID), "extended", &payload); err != nil {
		return nil, err
	}
	if payload.Data.ID == 0 {
		return nil, services.Wrap(services.ErrMalformedResponse, "tvdb", "extended", "record missing id", nil)
	}
	return &payload.Data, nil
}

func (c *Client) searchRemote(ctx context.Context, remoteID, operation string, contentType identity.ContentType) (int64, error) {
	var payload searchEnvelope
	if err := c.get(ctx, "/search/remoteid/"+url.PathEscape(remoteID), operation, &payload); err != nil {
		return 0, err
	}
	for _, match := range payload.Data {
		if contentType == identity.ContentTypeMovie {
			if match.Movie != nil && match.Movie.ID > 0 {
				return match.Movie.ID, nil
			}
			continue
		}
		if match.Series != nil && match.Series.ID > 0 {
			return match.Series.ID, nil
		}
	}
	return 0, services.Wrap(services.ErrNotFound, "tvdb", operation, "no "+string(contentType)+" match for "+remoteID, nil)
}

func (c *Client) get(ctx context.Context, path, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "tvdb", operation, "parse url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tvdb", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tvdb", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tvdb", operation, "read response", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "tvdb", operation, fmt.Sprintf("returned 404 (latency=%v)", latency), nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrNetwork, "tvdb", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrMalformedResponse, "tvdb", operation, "decode response", err)
	}
	return nil
}
