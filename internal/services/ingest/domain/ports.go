package domain

import (
	"context"
	"io"

	"ghcensus/internal/adapters/ingest/gharchive"
)

// Source is a fetched hour that can be opened more than once
type Source = gharchive.Source

// Fetcher resolves an hour to a re-openable Source
type Fetcher = gharchive.Fetcher

// ReaderPort streams event envelopes out of one opened shard
type ReaderPort interface {
	Next() (EventEnvelope, error)
	Stats() (events, malformed int, bytes int64)
	Close() error
}

// ReaderFactory wraps a raw shard stream in a ReaderPort
type ReaderFactory interface {
	New(rc io.ReadCloser) (ReaderPort, error)
}

// RunnerPort is the ingest service surface mounted by the module
type RunnerPort interface {
	// RunLocal processes every archive file found under dir, oldest hour first
	RunLocal(ctx context.Context, dir string) (RunReport, error)

	// RunRange fetches and processes every hour between startDay and endDay
	// inclusive
	RunRange(ctx context.Context, startDay, endDay string) (RunReport, error)
}

// StorageRepo is the persistence seam for extracted entities and the shard
// ledger. All batch writes are idempotent upserts
type StorageRepo interface {
	UpsertActors(ctx context.Context, rows []Actor) error
	UpsertRepos(ctx context.Context, rows []Repo) error
	UpsertKnownEmails(ctx context.Context, rows []KnownEmail) error

	// LookupActorIDs maps logins to stored actor ids. Absent logins are
	// simply missing from the result
	LookupActorIDs(ctx context.Context, logins []string) (map[string]int64, error)

	StartShard(ctx context.Context, hour HourRef, runID string) error
	FinishShard(ctx context.Context, out ShardOutcome, runID string) error
}
