package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/adifpush/adifpush/pkg/logger"
)

func testStorage(t *testing.T) *UploadStorage {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatal(err)
	}
	storage, err := Open(filepath.Join(t.TempDir(), "uploads.db"), log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func sampleUpload(call, outcome string) *UploadRecord {
	return &UploadRecord{
		Callsign:    call,
		QSODate:     "20240101",
		TimeOn:      "1200",
		Freq:        "14.0740",
		Mode:        "FT8",
		Band:        "20M",
		Fingerprint: "f0f0",
		Outcome:     outcome,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestStoreAndGetRecent(t *testing.T) {
	storage := testStorage(t)

	for _, call := range []string{"W5ABC", "VE3DEF", "JA1XYZ"} {
		if _, err := storage.StoreUpload(sampleUpload(call, "delivered")); err != nil {
			t.Fatal(err)
		}
	}

	records, err := storage.GetRecentUploads(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Most recent first.
	if records[0].Callsign != "JA1XYZ" {
		t.Errorf("expected JA1XYZ first, got %s", records[0].Callsign)
	}
}

func TestGetUploadsByCallsign(t *testing.T) {
	storage := testStorage(t)

	if _, err := storage.StoreUpload(sampleUpload("W5ABC", "delivered")); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.StoreUpload(sampleUpload("VE3DEF", "failed")); err != nil {
		t.Fatal(err)
	}

	records, err := storage.GetUploadsByCallsign("W5ABC", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Callsign != "W5ABC" {
		t.Errorf("unexpected result %+v", records)
	}
}

func TestCountByOutcome(t *testing.T) {
	storage := testStorage(t)

	for _, outcome := range []string{"delivered", "delivered", "failed", "skipped"} {
		if _, err := storage.StoreUpload(sampleUpload("W5ABC", outcome)); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := storage.CountByOutcome()
	if err != nil {
		t.Fatal(err)
	}
	if counts["delivered"] != 2 || counts["failed"] != 1 || counts["skipped"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestErrorRoundTrip(t *testing.T) {
	storage := testStorage(t)

	rec := sampleUpload("W5ABC", "failed")
	rec.Error = "delivery failed: status 500"
	if _, err := storage.StoreUpload(rec); err != nil {
		t.Fatal(err)
	}

	records, err := storage.GetRecentUploads(1)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Error != "delivery failed: status 500" {
		t.Errorf("error not preserved: %q", records[0].Error)
	}
}
