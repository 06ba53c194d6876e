package sqlite

import "time"

// UploadRecord is one delivery attempt as stored in the uploads table.
type UploadRecord struct {
	ID          int64     `json:"id"`
	Callsign    string    `json:"callsign"`
	QSODate     string    `json:"qso_date"`
	TimeOn      string    `json:"time_on"`
	Freq        string    `json:"freq"`
	Mode        string    `json:"mode"`
	Band        string    `json:"band,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	Outcome     string    `json:"outcome"` // delivered, failed, skipped
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
