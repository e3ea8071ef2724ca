// Package remote provides the client for the hosted goals/actuals API: a
// PostgREST-style read surface plus an edge-function write endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"goalboard/internal/model"
)

const (
	requestTimeout = 15 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnauthorized indicates the API key is missing, expired, or invalid.
	ErrUnauthorized = errors.New("remote: unauthorized (check API key)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("remote: rate limited")
)

// Client talks to the remote data service. It carries no engine state; all
// month/day state lives in month.Store.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// ListDayRecords reads one month of goal+actual rows for a location,
// ordered by date ascending. An empty result is returned as an empty slice;
// the caller decides whether that means "no forecast".
func (c *Client) ListDayRecords(ctx context.Context, locationID, yearMonth string) ([]model.DayRecord, error) {
	q := url.Values{}
	q.Set("location_id", "eq."+locationID)
	q.Set("month", "eq."+yearMonth)
	q.Set("order", "date.asc")

	body, err := c.get(ctx, "/rest/v1/v_calendar_month", q)
	if err != nil {
		return nil, err
	}

	var rows []dayRecordRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("remote: parsing month rows: %w", err)
	}

	records := make([]model.DayRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadDayActuals reads the recorded actuals for one (location, date) key.
// Used for post-write verification and prior-year comparison lookups. The
// second return is false when no row exists.
func (c *Client) ReadDayActuals(ctx context.Context, locationID string, date time.Time) (model.DayActuals, bool, error) {
	q := url.Values{}
	q.Set("select", "transactions,net_sales,gross_margin")
	q.Set("location_id", "eq."+locationID)
	q.Set("date", "eq."+date.Format(model.DateLayout))

	body, err := c.get(ctx, "/rest/v1/actual_daily", q)
	if err != nil {
		return model.DayActuals{}, false, err
	}

	var rows []actualsRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return model.DayActuals{}, false, fmt.Errorf("remote: parsing actuals: %w", err)
	}
	if len(rows) == 0 {
		return model.DayActuals{}, false, nil
	}
	return rows[0].toModel(), true, nil
}

// ListLocations returns the locations the signed-in operator may view.
func (c *Client) ListLocations(ctx context.Context) ([]model.Location, error) {
	body, err := c.get(ctx, "/rest/v1/v_user_locations", nil)
	if err != nil {
		return nil, err
	}

	var rows []locationRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("remote: parsing locations: %w", err)
	}

	locations := make([]model.Location, 0, len(rows))
	for _, r := range rows {
		locations = append(locations, model.Location{ID: r.ID, Name: r.Name})
	}
	return locations, nil
}

// UpsertActuals writes actual rows for a location through the edge
// function. The endpoint is idempotent per (location, date).
func (c *Client) UpsertActuals(ctx context.Context, locationID string, rows []model.ActualsRow) error {
	payload := upsertRequest{LocationID: locationID}
	for _, r := range rows {
		payload.Rows = append(payload.Rows, upsertRow{
			Date:         r.Date.Format(model.DateLayout),
			Transactions: r.Transactions,
			NetSales:     r.NetSales,
			GrossMargin:  r.GrossMargin,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("remote: encoding upsert: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/functions/v1/upsert-actuals", nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return err
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := errorMessage(body); msg != "" {
			return nil, fmt.Errorf("remote: status %d: %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

// errorMessage pulls a human-readable message out of an error body, which
// the API surfaces as either {"error": ...} or {"message": ...}.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
