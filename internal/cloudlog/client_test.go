package cloudlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adifpush/adifpush/internal/qso"
	"github.com/adifpush/adifpush/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func testRecord(t *testing.T) *qso.Record {
	t.Helper()
	rec, err := qso.Normalize(qso.Raw{
		Fields: map[string]string{
			"call": "W5ABC", "qso_date": "20240101", "time_on": "1200",
			"freq": "14.074", "mode": "FT8",
		},
		Text: "<call:5>W5ABC <qso_date:8>20240101 <time_on:4>1200 <freq:6>14.074 <mode:3>FT8 <eor>",
	})
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestSendSuccess(t *testing.T) {
	var got uploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/index.php/api/qso" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", "7", 5*time.Second, testLogger(t))
	if err := client.Send(context.Background(), testRecord(t)); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if got.Key != "secret" || got.StationProfileID != "7" {
		t.Errorf("credentials not attached: %+v", got)
	}
	if got.Type != "adif" {
		t.Errorf("expected type adif, got %q", got.Type)
	}
	if got.String == "" {
		t.Error("raw ADIF text missing from payload")
	}
}

func TestSendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad api key"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "wrong", "7", 5*time.Second, testLogger(t))
	err := client.Send(context.Background(), testRecord(t))

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", transport.StatusCode)
	}
	if transport.Reason != "bad api key" {
		t.Errorf("expected body as reason, got %q", transport.Reason)
	}
}

func TestSendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, "secret", "7", time.Second, testLogger(t))
	err := client.Send(context.Background(), testRecord(t))

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.StatusCode != 0 {
		t.Errorf("expected status 0 for transport failure, got %d", transport.StatusCode)
	}
}

func TestEndpointTrailingSlash(t *testing.T) {
	client := NewClient("https://log.example.com/", "k", "1", time.Second, testLogger(t))
	if client.Endpoint() != "https://log.example.com/index.php/api/qso" {
		t.Errorf("unexpected endpoint %s", client.Endpoint())
	}
}
