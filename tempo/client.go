// Package tempo is the HTTP client for the work-log system. It reads the
// committed entries of a day and writes new or edited entries; it never
// retries — failures propagate to the caller.
package tempo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daybook/worklog"
)

const dayLayout = "2006-01-02"

var (
	// ErrFetchFailed wraps any failure while reading from the work-log
	// system.
	ErrFetchFailed = errors.New("work-log fetch failed")

	// ErrWriteFailed wraps any failure while writing to the work-log
	// system.
	ErrWriteFailed = errors.New("work-log write failed")
)

// Client defines the work-log operations the engine depends on.
type Client interface {
	GetDayEntries(ctx context.Context, day time.Time) ([]worklog.CommittedEntry, error)
	CreateEntry(ctx context.Context, req worklog.EntryRequest) (int64, error)
	UpdateEntry(ctx context.Context, entryID int64, req worklog.EntryRequest) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIToken   string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	apiToken   string
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
		apiToken:   strings.TrimSpace(cfg.APIToken),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

type wireEntry struct {
	ID              int64  `json:"id"`
	TicketKey       string `json:"ticketKey"`
	StartTime       string `json:"startTime"`
	DurationSeconds int    `json:"durationSeconds"`
	Description     string `json:"description"`
}

type listEntriesResponse struct {
	Worklogs []wireEntry `json:"worklogs"`
}

type writeEntryRequest struct {
	TicketKey       string `json:"ticketKey"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationSeconds int    `json:"durationSeconds"`
	Description     string `json:"description"`
}

type writeEntryResponse struct {
	ID int64 `json:"id"`
}

// GetDayEntries lists the committed entries of one day.
func (c *HTTPClient) GetDayEntries(ctx context.Context, day time.Time) ([]worklog.CommittedEntry, error) {
	path := "/api/worklogs?date=" + url.QueryEscape(FormatDay(day))
	var out listEntriesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	entries := make([]worklog.CommittedEntry, 0, len(out.Worklogs))
	for _, item := range out.Worklogs {
		entries = append(entries, worklog.CommittedEntry{
			ID:              item.ID,
			TicketKey:       item.TicketKey,
			StartTime:       item.StartTime,
			DurationSeconds: item.DurationSeconds,
			Description:     item.Description,
		})
	}
	return entries, nil
}

// CreateEntry persists a new entry and returns its id.
func (c *HTTPClient) CreateEntry(ctx context.Context, req worklog.EntryRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}

	var out writeEntryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/worklogs", toWireRequest(req), &out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return out.ID, nil
}

// UpdateEntry replaces an existing entry.
func (c *HTTPClient) UpdateEntry(ctx context.Context, entryID int64, req worklog.EntryRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if entryID <= 0 {
		return fmt.Errorf("entry id must be positive, got %d", entryID)
	}

	path := fmt.Sprintf("/api/worklogs/%d", entryID)
	if err := c.doJSON(ctx, http.MethodPut, path, toWireRequest(req), nil); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func validateRequest(req worklog.EntryRequest) error {
	if strings.TrimSpace(req.TicketKey) == "" {
		return errors.New("ticket key is required")
	}
	if req.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be positive, got %ds", req.DurationSeconds)
	}
	return nil
}

func toWireRequest(req worklog.EntryRequest) writeEntryRequest {
	return writeEntryRequest{
		TicketKey:       strings.TrimSpace(req.TicketKey),
		Date:            FormatDay(req.Day),
		StartTime:       req.StartTime,
		DurationSeconds: req.DurationSeconds,
		Description:     strings.TrimSpace(req.Description),
	}
}

// FormatDay renders a day in the wire format.
func FormatDay(day time.Time) string {
	return day.Format(dayLayout)
}

// ParseDay parses a wire-format day in the local timezone.
func ParseDay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return parsed, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	requestURL := c.baseURL + endpointPath
	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
