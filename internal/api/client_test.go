package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/greener/waterdesk/internal/model"
)

var testSession = model.Session{
	BusinessID: "biz-1",
	UserEmail:  "owner@greener.test",
	UserType:   model.UserTypeBusiness,
	Token:      "tok-123",
}

// fastRetry keeps the backoff out of test wall time.
var fastRetry = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   time.Millisecond,
	MaxDelay:    5 * time.Millisecond,
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testSession, 5*time.Second, fastRetry)
}

func TestIdentityHeadersStamped(t *testing.T) {
	var gotReq *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{"checklist":[],"totalCount":0,"needsWateringCount":0}`))
	})

	if _, err := c.GetWateringChecklist(context.Background()); err != nil {
		t.Fatalf("GetWateringChecklist: %v", err)
	}

	if got := gotReq.Header.Get("X-User-Email"); got != "owner@greener.test" {
		t.Errorf("X-User-Email = %q", got)
	}
	if got := gotReq.Header.Get("X-User-Type"); got != model.UserTypeBusiness {
		t.Errorf("X-User-Type = %q", got)
	}
	if got := gotReq.Header.Get("X-Business-ID"); got != "biz-1" {
		t.Errorf("X-Business-ID = %q", got)
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotReq.URL.Query().Get("businessId"); got != "biz-1" {
		t.Errorf("businessId query = %q", got)
	}
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"checklist":[]}`))
	}))
	defer srv.Close()

	anon := testSession
	anon.Token = ""
	c := NewClient(srv.URL, anon, 5*time.Second, fastRetry)

	if _, err := c.GetWateringChecklist(context.Background()); err != nil {
		t.Fatalf("GetWateringChecklist: %v", err)
	}
	if got := auth.Load().(string); got != "" {
		t.Errorf("Authorization header = %q, want unset", got)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"checklist":[{"id":"p1","name":"Monstera","needsWatering":true}],"totalCount":1,"needsWateringCount":1}`))
	})

	snap, err := c.GetWateringChecklist(context.Background())
	if err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if len(snap.Checklist) != 1 || snap.Checklist[0].ID != "p1" {
		t.Errorf("snapshot = %+v", snap.Checklist)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt should be stamped on fetch")
	}
}

func TestGetRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"checklist":[]}`))
	})

	if _, err := c.GetWateringChecklist(context.Background()); err != nil {
		t.Fatalf("expected retry after 429, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown business", http.StatusNotFound)
	})

	_, err := c.GetWateringChecklist(context.Background())
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error chain missing HTTPError: %v", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.Method != http.MethodGet {
		t.Errorf("Method = %q", httpErr.Method)
	}
	if !strings.Contains(httpErr.Path, "/business/watering-checklist") {
		t.Errorf("Path = %q", httpErr.Path)
	}
	if !strings.Contains(httpErr.Body, "unknown business") {
		t.Errorf("Body = %q", httpErr.Body)
	}
}

func TestRetryAfterCarriedOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	// Single attempt so the test never actually waits.
	c.retry.MaxAttempts = 1

	_, err := c.GetWateringChecklist(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error chain missing HTTPError: %v", err)
	}
	if httpErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", httpErr.RetryAfter)
	}
}

func TestGetGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := c.GetWateringChecklist(context.Background())
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if calls.Load() != int32(fastRetry.MaxAttempts) {
		t.Errorf("calls = %d, want %d", calls.Load(), fastRetry.MaxAttempts)
	}
}

func TestMarkPlantWateredSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	})

	_, err := c.MarkPlantWatered(
		context.Background(), "p1", model.MethodManual, nil,
	)
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (mutations never retry)", calls.Load())
	}
}

func TestMarkPlantWatered(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{
			"success": true,
			"plant": {"id":"p1","name":"Monstera","needsWatering":false,"completed":true}
		}`))
	})

	plant, err := c.MarkPlantWatered(
		context.Background(), "p1", model.MethodBarcode, nil,
	)
	if err != nil {
		t.Fatalf("MarkPlantWatered: %v", err)
	}
	if plant == nil || plant.ID != "p1" || !plant.Completed {
		t.Errorf("plant = %+v", plant)
	}
}

func TestMarkPlantWateredRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "plant not found"}`))
	})

	_, err := c.MarkPlantWatered(
		context.Background(), "ghost", model.MethodManual, nil,
	)
	if err == nil {
		t.Fatal("expected an error for success:false")
	}
	if !strings.Contains(err.Error(), "plant not found") {
		t.Errorf("error %q should carry the backend's message", err)
	}
}

func TestGetOptimizedRoutePreservesOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"route": [{"id":"p3"},{"id":"p1"},{"id":"p2"}],
			"totalPlants": 3,
			"estimatedTime": "12 min"
		}`))
	})

	route, err := c.GetOptimizedRoute(context.Background())
	if err != nil {
		t.Fatalf("GetOptimizedRoute: %v", err)
	}
	want := []string{"p3", "p1", "p2"}
	for i, step := range route.Route {
		if step.ID != want[i] {
			t.Errorf("route[%d] = %s, want %s (server order kept as-is)", i, step.ID, want[i])
		}
	}
	if route.EstimatedTime != "12 min" {
		t.Errorf("EstimatedTime = %q", route.EstimatedTime)
	}
}

func TestBarcodePDFURL(t *testing.T) {
	c := NewClient("https://api.greener.test/api/", testSession, 0, RetryPolicy{})

	got := c.BarcodePDFURL("plant 7")
	want := "https://api.greener.test/api/business/generate-barcode?businessId=biz-1&plantId=plant+7"
	if got != want {
		t.Errorf("BarcodePDFURL = %q, want %q", got, want)
	}
}
