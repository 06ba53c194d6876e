// Package dedup maintains the durable set of fingerprints of contacts
// that have already been delivered.
package dedup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adifpush/adifpush/internal/qso"
)

// Store is a persistent fingerprint set, one hex digest per line in the
// backing file. Appends are synced before Add returns so a crash after a
// successful delivery cannot forget that it happened. A crash between the
// remote delivery and the completed append can still cause one duplicate
// upload on the next run; that gap is accepted.
type Store struct {
	mu   sync.Mutex
	path string
	seen map[qso.Fingerprint]struct{}
	f    *os.File
}

// Load reads the fingerprint set at path. A missing file is an empty
// store, not an error; the parent directory is created on demand. The
// backing file is held open for append until Close.
func Load(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}

	seen := make(map[qso.Fingerprint]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seen[qso.Fingerprint(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	return &Store{path: path, seen: seen, f: f}, nil
}

// Contains reports whether fp has been recorded as delivered.
func (s *Store) Contains(fp qso.Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[fp]
	return ok
}

// Len returns the number of recorded fingerprints.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Add records fp as delivered. The appended line is flushed to stable
// storage before Add returns.
func (s *Store) Add(fp qso.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[fp]; ok {
		return nil
	}
	if _, err := s.f.WriteString(string(fp) + "\n"); err != nil {
		return fmt.Errorf("failed to append fingerprint: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync cache file: %w", err)
	}
	s.seen[fp] = struct{}{}
	return nil
}

// Clear truncates the backing file and empties the in-memory set. This is
// irreversible and intended for explicit operator use only.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate cache file: %w", err)
	}
	if _, err := s.f.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind cache file: %w", err)
	}
	s.seen = make(map[qso.Fingerprint]struct{})
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the backing file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
