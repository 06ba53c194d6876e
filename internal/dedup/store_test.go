package dedup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adifpush/adifpush/internal/qso"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "uploaded_qsos")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	defer store.Close()

	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

func TestAddAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded_qsos")
	store, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	fp := qso.Fingerprint("aabbcc")
	if store.Contains(fp) {
		t.Error("fresh store should not contain anything")
	}
	if err := store.Add(fp); err != nil {
		t.Fatal(err)
	}
	if !store.Contains(fp) {
		t.Error("expected fingerprint after Add")
	}

	// Adding twice must not duplicate the line.
	if err := store.Add(fp); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "aabbcc"); got != 1 {
		t.Errorf("expected 1 line for fingerprint, got %d", got)
	}
}

func TestDurabilityAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded_qsos")

	store, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Add(qso.Fingerprint("one")); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(qso.Fingerprint("two")); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reloaded.Close()

	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}
	if !reloaded.Contains("one") || !reloaded.Contains("two") {
		t.Error("reloaded store lost fingerprints")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded_qsos")
	store, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Add(qso.Fingerprint("one")); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 || store.Contains("one") {
		t.Error("store not empty after Clear")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("backing file not truncated, size %d", info.Size())
	}

	// The store must keep working after a clear.
	if err := store.Add(qso.Fingerprint("two")); err != nil {
		t.Fatal(err)
	}
	if !store.Contains("two") {
		t.Error("Add after Clear did not register")
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploaded_qsos")
	if err := os.WriteFile(path, []byte("one\n\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if store.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", store.Len())
	}
}
