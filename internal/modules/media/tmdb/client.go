package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelmate/internal/modules/media/dto"
	"reelmate/pkg/apperror"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultTimeout  = 10 * time.Second
	userAgent       = "Reelmate/1.0"
	maxResponseSize = 5 * 1024 * 1024
)

// Observer receives one call per upstream request.
type Observer interface {
	RecordUpstream(endpoint string, statusCode int, duration time.Duration)
}

type ClientConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Logger   *logrus.Logger
	Observer Observer
}

// Client talks to the TMDB v3 API. It has no cache and does not retry.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	observer   Observer
}

func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger:   config.Logger,
		observer: config.Observer,
	}
}

func (c *Client) Discover(ctx context.Context, mediaPath string, page int) (*dto.PagedResults, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")

	var out dto.PagedResults
	if err := c.get(ctx, "discover", "/discover/"+mediaPath, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*dto.PagedResults, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	var out dto.PagedResults
	if err := c.get(ctx, "search", "/search/multi", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Details(ctx context.Context, mediaPath string, id int) (*dto.MediaDetails, error) {
	var out dto.MediaDetails
	if err := c.get(ctx, "details", fmt.Sprintf("/%s/%d", mediaPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Season(ctx context.Context, showID, season int) (*dto.Season, error) {
	var out dto.Season
	if err := c.get(ctx, "season", fmt.Sprintf("/tv/%d/season/%d", showID, season), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Genres(ctx context.Context, mediaPath string) ([]dto.Genre, error) {
	var out dto.GenreList
	if err := c.get(ctx, "genres", "/genre/"+mediaPath+"/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req, params)
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Warn("tmdb request failed")
		return fmt.Errorf("tmdb %s: %v: %w", endpoint, err, apperror.ErrUpstream)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("tmdb %s: %w", endpoint, apperror.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Warn("tmdb returned error status")
		return fmt.Errorf("tmdb %s returned status %d: %w", endpoint, resp.StatusCode, apperror.ErrUpstream)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("tmdb %s: failed to read response body: %w", endpoint, err)
	}
	if len(body) > maxResponseSize {
		return fmt.Errorf("tmdb %s: response too large: %w", endpoint, apperror.ErrUpstream)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb %s: failed to decode response: %w", endpoint, err)
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint":      endpoint,
		"response_size": len(body),
	}).Debug("tmdb request successful")

	return nil
}

// authorize uses a bearer header for v4 read access tokens and the api_key
// query parameter for classic v3 keys.
func (c *Client) authorize(req *http.Request, params url.Values) {
	if c.apiKey == "" {
		return
	}
	if strings.HasPrefix(c.apiKey, "eyJ") {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return
	}
	params.Set("api_key", c.apiKey)
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.RecordUpstream(endpoint, status, time.Since(start))
	}
}
