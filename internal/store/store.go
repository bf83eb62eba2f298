// Package store provides SQLite access to a measurement database for
// maintenance purposes. The database is produced by an external collector;
// this package only reads, deletes, and compacts.
package store

import (
	"encoding/json"
	"time"
)

// Measurement is a single recorded sample. Rows are created by the external
// producer and only ever destroyed here, never updated in place.
type Measurement struct {
	ID         int64   // Autoincrement primary key
	SessionID  string  // Owning session identifier
	RecordedAt int64   // Unix timestamp of the sample
	Channel    string  // Which metric this sample belongs to
	Value      float64 // The sample itself
}

// Session groups measurements taken in one collection run. Referential
// integrity with measurements is advisory only; orphaned sessions are
// removed by cleanup rather than prevented by a constraint.
type Session struct {
	SessionID string
	StartedAt int64
	Label     string
}

// DayCount is one bucket of the daily measurement histogram.
type DayCount struct {
	Day   string `json:"day"` // "2006-01-02"
	Count int64  `json:"count"`
}

// RecordedAtTime returns the sample timestamp as a time.Time in UTC.
func (m Measurement) RecordedAtTime() time.Time {
	return time.Unix(m.RecordedAt, 0).UTC()
}

// MarshalJSON encodes a value with indentation for human-readable CLI output.
// Use this instead of json.Marshal when the output will be displayed to users.
func MarshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
