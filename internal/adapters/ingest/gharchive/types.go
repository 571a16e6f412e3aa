package gharchive

import (
	"encoding/json"
	"fmt"
	"time"
)

// HourRef identifies a GH Archive hour (UTC)
type HourRef struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// NewHourRef creates an HourRef from a time.Time, converting to UTC
func NewHourRef(t time.Time) HourRef {
	ut := t.UTC()
	return HourRef{Year: ut.Year(), Month: int(ut.Month()), Day: ut.Day(), Hour: ut.Hour()}
}

// String renders the archive naming form YYYY-MM-DD-H, hour unpadded
func (h HourRef) String() string {
	return fmt.Sprintf("%04d-%02d-%02d-%d", h.Year, h.Month, h.Day, h.Hour)
}

// SortKey renders a lexicographically sortable form with the hour zero-padded.
// Archive filenames do not pad the hour, so sorting raw names would put
// 2024-01-01-10 before 2024-01-01-2
func (h HourRef) SortKey() string {
	return fmt.Sprintf("%04d-%02d-%02d-%02d", h.Year, h.Month, h.Day, h.Hour)
}

// UTC returns the time at the start of the hour
func (h HourRef) UTC() time.Time {
	return time.Date(h.Year, time.Month(h.Month), h.Day, h.Hour, 0, 0, 0, time.UTC)
}

// EventEnvelope is the outer per-line event format GH Archive stores.
// Only the fields extraction needs are modeled; Payload stays raw for
// type-specific decode
type EventEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Actor is the account that triggered the event
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Repo is the repository the event occurred in
type Repo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"` // owner/name
}
