// Package qso defines the canonical contact record and its identity digest.
package qso

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// freqPrecision is the number of decimal places (in MHz) a frequency is
// canonicalized to before hashing. Changing it invalidates every existing
// dedup cache, so it is fixed.
const freqPrecision = 4

// Raw is a decoded but not yet validated contact: the lowercase ADIF field
// map plus the original ADIF text, which is forwarded verbatim on upload.
type Raw struct {
	Fields map[string]string
	Text   string
}

// Record is a normalized contact. The five identity fields (Call, Date,
// Time, Freq, Mode) determine the fingerprint; everything else rides along
// in Fields for forwarding.
type Record struct {
	Call string // uppercased callsign
	Date string // QSO date as logged (YYYYMMDD)
	Time string // time-on as logged (HHMMSS or HHMM)
	Freq string // frequency in MHz, fixed decimal precision
	Mode string
	Band string // optional

	// Fields holds every decoded ADIF field, lowercase keys, untouched
	// values. Not part of the identity.
	Fields map[string]string

	// Text is the original ADIF record text.
	Text string
}

// Fingerprint identifies a Record for dedup purposes. Rendered as a hex
// sha256 digest, one per line in the cache file.
type Fingerprint string

// MalformedError reports a record that is missing a required field or
// carries an unparseable value.
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed record: field %q: %s", e.Field, e.Reason)
}

// requiredFields are the ADIF fields a record must carry to be eligible
// for fingerprinting and delivery.
var requiredFields = []string{"call", "qso_date", "time_on", "freq", "mode"}

// Normalize validates a raw record and produces the canonical form:
// whitespace trimmed, callsign uppercased, frequency canonicalized so that
// textually different but numerically equal values collapse.
func Normalize(raw Raw) (*Record, error) {
	fields := make(map[string]string, len(raw.Fields))
	for k, v := range raw.Fields {
		fields[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	for _, name := range requiredFields {
		if fields[name] == "" {
			return nil, &MalformedError{Field: name, Reason: "missing or empty"}
		}
	}

	freq, err := strconv.ParseFloat(fields["freq"], 64)
	if err != nil {
		return nil, &MalformedError{Field: "freq", Reason: "not a decimal number"}
	}

	return &Record{
		Call:   strings.ToUpper(fields["call"]),
		Date:   fields["qso_date"],
		Time:   fields["time_on"],
		Freq:   strconv.FormatFloat(freq, 'f', freqPrecision, 64),
		Mode:   strings.ToUpper(fields["mode"]),
		Band:   strings.ToUpper(fields["band"]),
		Fields: fields,
		Text:   raw.Text,
	}, nil
}

// Fingerprint computes the identity digest: sha256 over the ordered
// identity fields joined by a pipe, which cannot survive normalization
// inside any field.
func (r *Record) Fingerprint() Fingerprint {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		r.Date, r.Time, r.Call, r.Freq, r.Mode,
	}, "|")))
	return Fingerprint(hex.EncodeToString(sum[:]))
}
