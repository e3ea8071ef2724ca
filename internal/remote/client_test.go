package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/model"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(status int, body string, capture **http.Request) *Client {
	c := NewClient("https://example.test", "test-key")
	c.http = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if capture != nil {
				*capture = req
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	return c
}

func TestListDayRecords(t *testing.T) {
	var seen *http.Request
	c := newTestClient(http.StatusOK, `[
		{"date":"2025-06-01","version_id":"v1","txn_goal":40,"sales_goal":1000.50,"sales_actual":990},
		{"date":"2025-06-02","version_id":"v1","sales_goal":1000}
	]`, &seen)

	records, err := c.ListDayRecords(context.Background(), "loc-1", "2025-06")
	if err != nil {
		t.Fatalf("ListDayRecords() error: %v", err)
	}

	if seen.URL.Path != "/rest/v1/v_calendar_month" {
		t.Errorf("path = %q", seen.URL.Path)
	}
	q := seen.URL.Query()
	if q.Get("location_id") != "eq.loc-1" || q.Get("month") != "eq.2025-06" || q.Get("order") != "date.asc" {
		t.Errorf("query = %v", q)
	}
	if seen.Header.Get("apikey") != "test-key" {
		t.Errorf("apikey header = %q", seen.Header.Get("apikey"))
	}
	if seen.Header.Get("Authorization") != "Bearer test-key" {
		t.Errorf("Authorization header = %q", seen.Header.Get("Authorization"))
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	r0 := records[0]
	if r0.Key() != "2025-06-01" || r0.VersionID != "v1" {
		t.Errorf("record[0] = %+v", r0)
	}
	if r0.SalesGoal == nil || !r0.SalesGoal.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("SalesGoal = %v, want 1000.50", r0.SalesGoal)
	}
	if r0.TxnGoal == nil || *r0.TxnGoal != 40 {
		t.Errorf("TxnGoal = %v, want 40", r0.TxnGoal)
	}
	if records[1].SalesActual != nil {
		t.Errorf("absent sales_actual decoded as %v, want nil", records[1].SalesActual)
	}
}

func TestListDayRecordsEmpty(t *testing.T) {
	c := newTestClient(http.StatusOK, `[]`, nil)
	records, err := c.ListDayRecords(context.Background(), "loc-1", "2025-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestReadDayActuals(t *testing.T) {
	var seen *http.Request
	c := newTestClient(http.StatusOK, `[{"transactions":40,"net_sales":1200,"gross_margin":300}]`, &seen)

	date, _ := time.Parse(model.DateLayout, "2025-06-02")
	a, found, err := c.ReadDayActuals(context.Background(), "loc-1", date)
	if err != nil {
		t.Fatalf("ReadDayActuals() error: %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if seen.URL.Query().Get("date") != "eq.2025-06-02" {
		t.Errorf("date filter = %q", seen.URL.Query().Get("date"))
	}
	if a.Transactions == nil || *a.Transactions != 40 {
		t.Errorf("Transactions = %v, want 40", a.Transactions)
	}
	if a.NetSales == nil || !a.NetSales.Equal(decimal.RequireFromString("1200")) {
		t.Errorf("NetSales = %v, want 1200", a.NetSales)
	}
}

func TestReadDayActualsNotFound(t *testing.T) {
	c := newTestClient(http.StatusOK, `[]`, nil)
	date, _ := time.Parse(model.DateLayout, "2025-06-02")
	_, found, err := c.ReadDayActuals(context.Background(), "loc-1", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("found = true for empty result, want false")
	}
}

func TestUpsertActuals(t *testing.T) {
	var seen *http.Request
	var seenBody []byte
	c := NewClient("https://example.test", "test-key")
	c.http = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = req
			seenBody, _ = io.ReadAll(req.Body)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	date, _ := time.Parse(model.DateLayout, "2025-06-02")
	txn := int64(40)
	sales := decimal.RequireFromString("1200")
	err := c.UpsertActuals(context.Background(), "loc-1", []model.ActualsRow{
		{Date: date, DayActuals: model.DayActuals{Transactions: &txn, NetSales: &sales}},
	})
	if err != nil {
		t.Fatalf("UpsertActuals() error: %v", err)
	}

	if seen.Method != http.MethodPost || seen.URL.Path != "/functions/v1/upsert-actuals" {
		t.Errorf("request = %s %s", seen.Method, seen.URL.Path)
	}
	if ct := seen.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var payload struct {
		LocationID string `json:"locationId"`
		Rows       []struct {
			Date         string           `json:"date"`
			Transactions *int64           `json:"transactions"`
			NetSales     *decimal.Decimal `json:"net_sales"`
			GrossMargin  *decimal.Decimal `json:"gross_margin"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(seenBody, &payload); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
	if payload.LocationID != "loc-1" || len(payload.Rows) != 1 {
		t.Fatalf("payload = %+v", payload)
	}
	row := payload.Rows[0]
	if row.Date != "2025-06-02" || row.Transactions == nil || *row.Transactions != 40 {
		t.Errorf("row = %+v", row)
	}
	if row.GrossMargin != nil {
		t.Errorf("GrossMargin = %v, want null on the wire", row.GrossMargin)
	}
}

func TestUpsertActualsErrorMessage(t *testing.T) {
	c := newTestClient(http.StatusBadRequest, `{"error":"rows out of forecast range"}`, nil)
	date, _ := time.Parse(model.DateLayout, "2025-06-02")
	err := c.UpsertActuals(context.Background(), "loc-1", []model.ActualsRow{{Date: date}})
	if err == nil || !strings.Contains(err.Error(), "rows out of forecast range") {
		t.Fatalf("error = %v, want wrapped server message", err)
	}
}

func TestListLocations(t *testing.T) {
	c := newTestClient(http.StatusOK, `[{"id":"loc-1","name":"Downtown"},{"id":"loc-2","name":"Airport"}]`, nil)
	locations, err := c.ListLocations(context.Background())
	if err != nil {
		t.Fatalf("ListLocations() error: %v", err)
	}
	if len(locations) != 2 || locations[0].ID != "loc-1" || locations[1].Name != "Airport" {
		t.Errorf("locations = %+v", locations)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		c := newTestClient(tt.status, `{}`, nil)
		_, err := c.ListLocations(context.Background())
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d error = %v, want %v", tt.status, err, tt.want)
		}
	}
}
