package tempo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybook/worklog"
)

type fakeDoer struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.fn(req)
}

func jsonResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, doer httpDoer) *HTTPClient {
	t.Helper()

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://worklog.example.com/",
		APIToken:   "secret-token",
		UserAgent:  "daybook-test",
		HTTPClient: doer,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{BaseURL: ""})
	require.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "not a url"})
	require.Error(t, err)

	client, err := NewClient(ClientConfig{BaseURL: "https://worklog.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://worklog.example.com", client.baseURL)
}

func TestGetDayEntries(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	doer := &fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{
			"worklogs": [
				{"id": 11, "ticketKey": "ABC-1", "startTime": "09:00", "durationSeconds": 3600, "description": "standup"},
				{"id": 12, "ticketKey": "ABC-2", "startTime": "10:30", "durationSeconds": 1800, "description": ""}
			]
		}`), nil
	}}
	client := newTestClient(t, doer)

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)
	entries, err := client.GetDayEntries(context.Background(), day)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "https://worklog.example.com/api/worklogs?date=2026-03-04", captured.URL.String())
	assert.Equal(t, "Bearer secret-token", captured.Header.Get("Authorization"))
	assert.Equal(t, "daybook-test", captured.Header.Get("User-Agent"))

	require.Len(t, entries, 2)
	assert.Equal(t, worklog.CommittedEntry{
		ID:              11,
		TicketKey:       "ABC-1",
		StartTime:       "09:00",
		DurationSeconds: 3600,
		Description:     "standup",
	}, entries[0])
}

func TestGetDayEntriesWrapsFailures(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"error":"bad token"}`), nil
	}}
	client := newTestClient(t, doer)

	_, err := client.GetDayEntries(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateEntry(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	var capturedBody []byte
	doer := &fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		captured = req
		capturedBody, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusCreated, `{"id": 42}`), nil
	}}
	client := newTestClient(t, doer)

	id, err := client.CreateEntry(context.Background(), worklog.EntryRequest{
		TicketKey:       " ABC-7 ",
		Day:             time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local),
		StartTime:       "09:00",
		DurationSeconds: 1800,
		Description:     " code review ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://worklog.example.com/api/worklogs", captured.URL.String())
	assert.Equal(t, "application/json; charset=UTF-8", captured.Header.Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(capturedBody, &payload))
	assert.Equal(t, "ABC-7", payload["ticketKey"])
	assert.Equal(t, "2026-03-04", payload["date"])
	assert.Equal(t, "09:00", payload["startTime"])
	assert.Equal(t, float64(1800), payload["durationSeconds"])
	assert.Equal(t, "code review", payload["description"])
}

func TestCreateEntryValidatesRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		t.Fatal("request must not be sent")
		return nil, nil
	}})

	_, err := client.CreateEntry(context.Background(), worklog.EntryRequest{
		DurationSeconds: 1800,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticket key")

	_, err = client.CreateEntry(context.Background(), worklog.EntryRequest{
		TicketKey: "ABC-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration")
}

func TestCreateEntryWrapsServerErrors(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusConflict, `{"error":"overlapping worklog"}`), nil
	}}
	client := newTestClient(t, doer)

	_, err := client.CreateEntry(context.Background(), worklog.EntryRequest{
		TicketKey:       "ABC-1",
		Day:             time.Now(),
		StartTime:       "09:00",
		DurationSeconds: 1800,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Contains(t, err.Error(), "overlapping worklog")
}

func TestUpdateEntry(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	doer := &fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, ``), nil
	}}
	client := newTestClient(t, doer)

	err := client.UpdateEntry(context.Background(), 42, worklog.EntryRequest{
		TicketKey:       "ABC-1",
		Day:             time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local),
		StartTime:       "10:00",
		DurationSeconds: 900,
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "https://worklog.example.com/api/worklogs/42", captured.URL.String())
}

func TestUpdateEntryRejectsBadID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		t.Fatal("request must not be sent")
		return nil, nil
	}})

	err := client.UpdateEntry(context.Background(), 0, worklog.EntryRequest{
		TicketKey:       "ABC-1",
		DurationSeconds: 900,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry id")
}

func TestParseDayRoundTrip(t *testing.T) {
	t.Parallel()

	day, err := ParseDay(" 2026-03-04 ")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", FormatDay(day))

	_, err = ParseDay("04.03.2026")
	require.Error(t, err)
}
