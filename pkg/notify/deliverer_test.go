package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dictaflow/dictaflow/pkg/events"
)

func testConfig() DelivererConfig {
	return DelivererConfig{
		MaxRetries:        1,
		TimeoutSec:        2,
		BackoffInitialSec: 0,
		BackoffMaxSec:     0,
		CBFailThreshold:   5,
		CBResetTimeoutSec: 60,
	}
}

func testEnvelope() events.Envelope {
	return events.Envelope{
		ID:        "evt-1",
		Type:      events.TranscriptCreated,
		Source:    "test",
		Timestamp: time.Now().UTC(),
	}
}

func TestDeliverSignsAndPosts(t *testing.T) {
	type received struct {
		signature string
		eventType string
		delivery  string
		body      []byte
	}
	got := make(chan received, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			signature: r.Header.Get(SignatureHeader),
			eventType: r.Header.Get("X-Dictaflow-Event"),
			delivery:  r.Header.Get("X-Dictaflow-Delivery"),
			body:      body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDeliverer(nil, testConfig(), nil, AllowLocalTargets())
	ep := Endpoint{Name: "test", URL: server.URL, Secret: "endpoint-secret"}
	ep.ID = "ep-1"

	d.Deliver(context.Background(), ep, testEnvelope())

	select {
	case r := <-got:
		if !Verify("endpoint-secret", r.body, r.signature) {
			t.Error("delivered payload must carry a valid signature")
		}
		if r.eventType != string(events.TranscriptCreated) {
			t.Errorf("event header = %q", r.eventType)
		}
		if r.delivery != "evt-1" {
			t.Errorf("delivery header = %q", r.delivery)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no request received")
	}
}

func TestDeliverRetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		close(done)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 3
	d := NewDeliverer(nil, cfg, nil, AllowLocalTargets())
	ep := Endpoint{Name: "test", URL: server.URL, Secret: "s"}
	ep.ID = "ep-1"

	d.Deliver(context.Background(), ep, testEnvelope())

	select {
	case <-done:
		if n := calls.Load(); n != 2 {
			t.Errorf("calls = %d, want 2", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("retry never arrived, calls = %d", calls.Load())
	}
}

func TestDeliverStopsAtMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	d := NewDeliverer(nil, cfg, nil, AllowLocalTargets())
	ep := Endpoint{Name: "test", URL: server.URL, Secret: "s"}
	ep.ID = "ep-1"

	d.Deliver(context.Background(), ep, testEnvelope())

	// Give any stray retry time to land.
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want exactly MaxRetries", n)
	}
}

func TestDeliverCircuitBreakerSkipsCalls(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.CBFailThreshold = 1
	d := NewDeliverer(nil, cfg, nil, AllowLocalTargets())
	ep := Endpoint{Name: "test", URL: server.URL, Secret: "s"}
	ep.ID = "ep-1"

	d.Deliver(context.Background(), ep, testEnvelope())
	if n := calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}

	// The breaker is open now; the next delivery never reaches the wire.
	d.Deliver(context.Background(), ep, testEnvelope())
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, open breaker must skip the request", n)
	}
}

func TestDeliverRejectsNonHTTPURL(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	d := NewDeliverer(nil, testConfig(), nil, AllowLocalTargets())
	ep := Endpoint{Name: "test", URL: "ftp://example.com/hook", Secret: "s"}
	ep.ID = "ep-1"

	d.Deliver(context.Background(), ep, testEnvelope())
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, invalid URL must never be contacted", n)
	}
}

func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		opts    []URLCheckOption
		wantErr bool
	}{
		{"public https", "https://hooks.example.com/x", nil, false},
		{"public http", "http://hooks.example.com/x", nil, false},
		{"bad scheme", "ftp://example.com/x", nil, true},
		{"missing host", "https://", nil, true},
		{"localhost blocked", "http://localhost:9000/x", nil, true},
		{"loopback blocked", "http://127.0.0.1/x", nil, true},
		{"private blocked", "http://10.1.2.3/x", nil, true},
		{"localhost allowed with option", "http://localhost:9000/x", []URLCheckOption{AllowLocalTargets()}, false},
		{"loopback allowed with option", "http://127.0.0.1/x", []URLCheckOption{AllowLocalTargets()}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEndpointURL(tc.url, tc.opts...)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateEndpointURL(%q) = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
		})
	}
}
