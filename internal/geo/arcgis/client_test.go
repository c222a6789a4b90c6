package arcgis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"constituent-clean/internal/httpx"
)

func fastRetry() httpx.RetryConfig {
	return httpx.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retry5xx:    true,
	}
}

func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.URL, "test-token")
	c.Retry = fastRetry()
	return c
}

func TestGeocodeSuccess(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/findAddressCandidates") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"candidates":[{"address":"123 Main St","score":98.5,"location":{"x":-83.74,"y":42.28}}]}`))
	}))
	defer srv.Close()

	lat, lng, err := newTestClient(srv).Geocode(context.Background(), "123 Main St, Ann Arbor, MI 48104, United States")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if lat != 42.28 || lng != -83.74 {
		t.Errorf("Geocode() = (%v, %v), want (42.28, -83.74)", lat, lng)
	}

	q, _ := http.NewRequest(http.MethodGet, "/?"+gotQuery, nil)
	if q.URL.Query().Get("token") != "test-token" {
		t.Error("expected token to be propagated")
	}
	if q.URL.Query().Get("f") != "json" {
		t.Error("expected f=json")
	}
	if q.URL.Query().Get("maxLocations") != "1" {
		t.Error("expected maxLocations=1")
	}
}

func TestGeocodeEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv).Geocode(context.Background(), "nowhere")
	if err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}

func TestGeocodeServiceErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ArcGIS reports auth failures as 200 + error object
		w.Write([]byte(`{"error":{"code":498,"message":"Invalid token"}}`))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv).Geocode(context.Background(), "somewhere")
	if err == nil || !strings.Contains(err.Error(), "Invalid token") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestGeocodeRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"candidates":[{"location":{"x":-83.0,"y":42.0}}]}`))
	}))
	defer srv.Close()

	lat, lng, err := newTestClient(srv).Geocode(context.Background(), "retry me")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if lat != 42.0 || lng != -83.0 {
		t.Errorf("Geocode() = (%v, %v)", lat, lng)
	}
}
