package openaq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleBody = `{
  "results": [
    { "parameter": "pm25", "date": { "utc": "2023-10-18T00:00:00Z", "local": "2023-10-17T19:00:00-05:00" }, "value": 12.5 },
    { "parameter": "pm25", "date": { "utc": "2023-10-18T01:00:00Z" }, "value": 9.9 },
    { "parameter": "pm25", "date": { "local": "2023-10-17T21:00:00-05:00" }, "value": 3.1 },
    { "parameter": "pm25", "date": { "utc": "2023-10-18T03:00:00Z" } }
  ]
}`

func TestMeasurements_ExtractsPairs(t *testing.T) {
	var gotParameter, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/measurements" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		gotParameter = r.URL.Query().Get("parameter")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pm25", 100, srv.Client())
	got, err := c.Measurements(context.Background())
	if err != nil {
		t.Fatalf("Measurements: %v", err)
	}

	if gotParameter != "pm25" {
		t.Fatalf("expected parameter=pm25 query, got %q", gotParameter)
	}
	if gotLimit != "100" {
		t.Fatalf("expected limit=100 query, got %q", gotLimit)
	}

	// Entries missing date.utc or value are skipped.
	if len(got) != 2 {
		t.Fatalf("expected 2 measurements, got %d: %v", len(got), got)
	}
	if got[0].UTC != "2023-10-18T00:00:00Z" || got[0].Value != 12.5 {
		t.Fatalf("unexpected first measurement: %+v", got[0])
	}
	if got[1].UTC != "2023-10-18T01:00:00Z" || got[1].Value != 9.9 {
		t.Fatalf("unexpected second measurement: %+v", got[1])
	}
}

func TestMeasurements_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pm25", 100, srv.Client())
	if _, err := c.Measurements(context.Background()); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestMeasurements_EmptyBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Truncated body: decoding must fail rather than return garbage.
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pm25", 100, srv.Client())
	if _, err := c.Measurements(context.Background()); err == nil {
		t.Fatalf("expected decode error for empty body")
	}
}
