// Package domain holds read-side types for the shard ledger API
package domain

import (
	"context"
	"time"
)

// ShardRow is one ledger entry as served over HTTP
type ShardRow struct {
	HourUTC    time.Time  `json:"hour_utc"`
	RunID      *string    `json:"run_id,omitempty"`
	Status     string     `json:"status"`
	Events     int64      `json:"events_scanned"`
	Malformed  int64      `json:"malformed"`
	Actors     int64      `json:"actors_written"`
	Repos      int64      `json:"repos_written"`
	Emails     int64      `json:"emails_written"`
	Bytes      int64      `json:"bytes_uncompressed"`
	ElapsedMS  int64      `json:"elapsed_ms"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ListInput filters the ledger listing
type ListInput struct {
	// Status filters by terminal state when non-empty
	Status string
	// Limit caps the result; <=0 or >500 -> 100
	Limit int
}

// ReaderPort is the query surface the API mounts
type ReaderPort interface {
	List(ctx context.Context, in ListInput) ([]ShardRow, error)
}
