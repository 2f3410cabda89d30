// Package tracker reads the passive activity feed and converts its
// samples into raw activity blocks.
package tracker

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
)

const dayLayout = "2006-01-02"

// ErrFetchFailed wraps any failure while reading the activity feed.
var ErrFetchFailed = errors.New("activity feed fetch failed")

// Sample is one raw observation from the tracking agent.
type Sample struct {
	ID              string `json:"id"`
	StartTimestamp  int64  `json:"startTimestamp"` // unix seconds
	DurationSeconds int    `json:"durationSeconds"`
	AppName         string `json:"appName"`
	Title           string `json:"title"`
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

// FetchDay lists the activity samples recorded on one day, in feed order.
func (c *HTTPClient) FetchDay(ctx context.Context, day time.Time) ([]Sample, error) {
	requestURL := c.baseURL + "/api/activities?date=" + url.QueryEscape(day.Format(dayLayout))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf(
			"%w: status %d: %s",
			ErrFetchFailed,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	var samples []Sample
	if err := json.NewDecoder(resp.Body).Decode(&samples); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFetchFailed, err)
	}
	return samples, nil
}
