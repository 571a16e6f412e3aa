// Package domain holds the ingest service's entity and outcome types
package domain

import (
	"time"

	"ghcensus/internal/adapters/ingest/gharchive"
)

// EventEnvelope is re-exported so service and repo layers need not import the
// adapter package directly
type EventEnvelope = gharchive.EventEnvelope

// HourRef identifies one archive shard hour in UTC
type HourRef = gharchive.HourRef

// Actor is a stored account row keyed by the provider's stable id
type Actor struct {
	ID       int64
	Username string
}

// Repo is a stored repository row. OwnerID references an Actor that must
// already exist when the row is written
type Repo struct {
	ID      int64
	Name    string
	OwnerID int64
}

// KnownEmail is a commit-author identity keyed by (OwnerID, Email)
type KnownEmail struct {
	OwnerID   int64
	Email     string
	Name      string
	IsPrivate bool
}

// ShardStatus enumerates terminal states in the shard ledger
type ShardStatus string

const (
	ShardRunning   ShardStatus = "running"
	ShardProcessed ShardStatus = "processed"
	ShardSkipped   ShardStatus = "skipped"
	ShardFailed    ShardStatus = "failed"
)

// ShardOutcome summarizes one hour's processing for the run report and ledger
type ShardOutcome struct {
	Hour      HourRef
	Status    ShardStatus
	Events    int64
	Malformed int64
	Actors    int64
	Repos     int64
	Emails    int64
	Bytes     int64
	Elapsed   time.Duration
	Err       error
}

// RunReport aggregates shard outcomes for one invocation
type RunReport struct {
	RunID     string
	Processed int
	Skipped   int
	Failed    int
	Outcomes  []ShardOutcome
}

// Attempted returns the number of shards the run touched
func (r RunReport) Attempted() int { return r.Processed + r.Skipped + r.Failed }

// AllFailed reports whether every attempted shard failed. A run with nothing
// to do did not fail
func (r RunReport) AllFailed() bool {
	return r.Attempted() > 0 && r.Failed == r.Attempted()
}
