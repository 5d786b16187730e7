package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/smallnest/collabwalk/log"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultTokenURL is the Spotify accounts token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// maxPageSize is the largest page the albums endpoint serves.
	maxPageSize = 50

	defaultReleaseLimit = 20
)

// SpotifyClient implements Client against the Spotify Web API using the
// client credentials flow.
type SpotifyClient struct {
	baseURL    string
	tokenURL   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     log.Logger
}

var _ Client = (*SpotifyClient)(nil)

type SpotifyOption func(*SpotifyClient)

// WithBaseURL sets the API root, e.g. for a local test server.
func WithBaseURL(baseURL string) SpotifyOption {
	return func(c *SpotifyClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTokenURL sets the OAuth2 token endpoint.
func WithTokenURL(tokenURL string) SpotifyOption {
	return func(c *SpotifyClient) {
		c.tokenURL = tokenURL
	}
}

// WithHTTPClient replaces the OAuth2 client. The caller is then responsible
// for authorizing requests.
func WithHTTPClient(client *http.Client) SpotifyOption {
	return func(c *SpotifyClient) {
		c.httpClient = client
	}
}

// WithTimeout sets the per request timeout of the OAuth2 client.
func WithTimeout(timeout time.Duration) SpotifyOption {
	return func(c *SpotifyClient) {
		c.timeout = timeout
	}
}

// WithRateLimit limits outgoing requests to rps per second. Zero or less disables limiting.
func WithRateLimit(rps float64) SpotifyOption {
	return func(c *SpotifyClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := max(int(rps), 1)
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger log.Logger) SpotifyOption {
	return func(c *SpotifyClient) {
		c.logger = logger
	}
}

// NewSpotifyClient creates a Spotify catalog client.
// Empty credentials fall back to SPOTIFY_CLIENT and SPOTIFY_SECRET.
func NewSpotifyClient(clientID, clientSecret string, opts ...SpotifyOption) (*SpotifyClient, error) {
	if clientID == "" {
		clientID = os.Getenv("SPOTIFY_CLIENT")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("SPOTIFY_SECRET")
	}

	c := &SpotifyClient{
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
		timeout:  10 * time.Second,
		limiter:  rate.NewLimiter(rate.Limit(10), 10),
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		if clientID == "" || clientSecret == "" {
			return nil, fmt.Errorf("SPOTIFY_CLIENT and SPOTIFY_SECRET must be set")
		}
		cfg := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     c.tokenURL,
		}
		c.httpClient = cfg.Client(context.Background())
		c.httpClient.Timeout = c.timeout
	}

	return c, nil
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
	Href string `json:"href"`
}

func (a spotifyArtist) toArtist() Artist {
	return Artist{ID: a.ID, Name: a.Name, URI: a.URI, Href: a.Href}
}

type searchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

type albumsResponse struct {
	Items []struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		URI     string          `json:"uri"`
		Artists []spotifyArtist `json:"artists"`
	} `json:"items"`
	Next *string `json:"next"`
}

type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SearchArtist resolves name to the first artist the catalog ranks for it.
func (c *SpotifyClient) SearchArtist(ctx context.Context, name string) (Artist, error) {
	params := url.Values{}
	params.Set("q", "artist:"+name)
	params.Set("type", "artist")
	params.Set("limit", "1")

	var resp searchResponse
	if err := c.get(ctx, "search", fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()), &resp); err != nil {
		return Artist{}, err
	}
	if len(resp.Artists.Items) == 0 {
		return Artist{}, &NotFoundError{Query: name}
	}
	return resp.Artists.Items[0].toArtist(), nil
}

// ListReleases lists up to query.Limit releases of artistID, following pages as needed.
func (c *SpotifyClient) ListReleases(ctx context.Context, artistID string, query ReleaseQuery) ([]Release, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultReleaseLimit
	}
	releaseType := query.Type
	if releaseType == "" {
		releaseType = ReleaseSingle
	}

	params := url.Values{}
	params.Set("include_groups", releaseType.String())
	params.Set("limit", strconv.Itoa(min(limit, maxPageSize)))
	if query.Market != "" {
		params.Set("market", query.Market)
	}
	next := fmt.Sprintf("%s/artists/%s/albums?%s", c.baseURL, url.PathEscape(artistID), params.Encode())

	releases := make([]Release, 0, limit)
	for next != "" && len(releases) < limit {
		var page albumsResponse
		if err := c.get(ctx, "releases", next, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if len(releases) == limit {
				break
			}
			artists := make([]Artist, 0, len(item.Artists))
			for _, a := range item.Artists {
				artists = append(artists, a.toArtist())
			}
			releases = append(releases, Release{ID: item.ID, Name: item.Name, URI: item.URI, Artists: artists})
		}

		next = ""
		if page.Next != nil && len(page.Items) > 0 {
			next = *page.Next
		}
	}

	c.logger.Debug("catalog: %d %s releases for %s", len(releases), releaseType, artistID)
	return releases, nil
}

func (c *SpotifyClient) get(ctx context.Context, op, reqURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &CatalogError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &CatalogError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &CatalogError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func transportError(op string, err error) error {
	ce := &CatalogError{Op: op, Err: err}

	// Token endpoint failures surface as *oauth2.RetrieveError inside a *url.Error
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		ce.StatusCode = re.Response.StatusCode
		ce.Message = "token request rejected"
		if re.ErrorDescription != "" {
			ce.Message += ": " + re.ErrorDescription
		}
		ce.RetryAfter = parseRetryAfter(re.Response.Header.Get("Retry-After"))
	}
	return ce
}

func responseError(op string, resp *http.Response) error {
	ce := &CatalogError{
		Op:         op,
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
			ce.Message = env.Error.Message
		}
	}
	if ce.Message == "" {
		ce.Message = http.StatusText(resp.StatusCode)
	}
	return ce
}

// parseRetryAfter reads a Retry-After value given in seconds or as an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
