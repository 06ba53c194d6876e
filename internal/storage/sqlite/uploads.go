// Package sqlite stores the upload history: every delivery attempt and
// its outcome, queryable by the status API and the history command.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adifpush/adifpush/pkg/logger"
)

// UploadStorage handles storage of upload history records
type UploadStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open opens (creating if necessary) the history database at path.
func Open(path string, log *logger.Logger) (*UploadStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	storage := &UploadStorage{
		db:     db,
		logger: log.Named("sqlite-uploads"),
	}
	if err := storage.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	return storage, nil
}

// initDB initializes the database tables
func (s *UploadStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS uploads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			callsign TEXT NOT NULL,
			qso_date TEXT NOT NULL,
			time_on TEXT NOT NULL,
			freq TEXT NOT NULL,
			mode TEXT NOT NULL,
			band TEXT,
			fingerprint TEXT NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create uploads table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_uploads_callsign ON uploads(callsign)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_fingerprint ON uploads(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_outcome ON uploads(outcome)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create uploads index: %w", err)
		}
	}
	return nil
}

// StoreUpload stores one delivery attempt.
func (s *UploadStorage) StoreUpload(record *UploadRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO uploads
		(callsign, qso_date, time_on, freq, mode, band, fingerprint, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Callsign,
		record.QSODate,
		record.TimeOn,
		record.Freq,
		record.Mode,
		record.Band,
		record.Fingerprint,
		record.Outcome,
		record.Error,
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert upload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetRecentUploads returns the most recent delivery attempts.
func (s *UploadStorage) GetRecentUploads(limit int) ([]*UploadRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, callsign, qso_date, time_on, freq, mode, band, fingerprint, outcome, error, created_at
		FROM uploads
		ORDER BY id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent uploads: %w", err)
	}
	defer rows.Close()

	return s.scanUploadRows(rows)
}

// GetUploadsByCallsign returns delivery attempts for one callsign.
func (s *UploadStorage) GetUploadsByCallsign(callsign string, limit int) ([]*UploadRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, callsign, qso_date, time_on, freq, mode, band, fingerprint, outcome, error, created_at
		FROM uploads
		WHERE callsign = ?
		ORDER BY id DESC
		LIMIT ?`,
		callsign, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads by callsign: %w", err)
	}
	defer rows.Close()

	return s.scanUploadRows(rows)
}

// CountByOutcome returns attempt counts grouped by outcome.
func (s *UploadStorage) CountByOutcome() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT outcome, COUNT(*) FROM uploads GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan upload count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (s *UploadStorage) Close() error {
	return s.db.Close()
}

// scanUploadRows scans database rows into UploadRecord structs
func (s *UploadStorage) scanUploadRows(rows *sql.Rows) ([]*UploadRecord, error) {
	var records []*UploadRecord
	for rows.Next() {
		var record UploadRecord
		var createdAt string
		var band, uploadErr sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.Callsign,
			&record.QSODate,
			&record.TimeOn,
			&record.Freq,
			&record.Mode,
			&band,
			&record.Fingerprint,
			&record.Outcome,
			&uploadErr,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}

		var err error
		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if band.Valid {
			record.Band = band.String
		}
		if uploadErr.Valid {
			record.Error = uploadErr.String
		}

		records = append(records, &record)
	}
	return records, rows.Err()
}
