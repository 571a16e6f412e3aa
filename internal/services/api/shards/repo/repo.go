// Package repo provides postgres reads over the shard ledger
package repo

import (
	"context"
	"database/sql"

	"ghcensus/internal/modkit/repokit"
	pstr "ghcensus/internal/platform/strings"
	"ghcensus/internal/services/api/shards/domain"
)

type (
	// PG is a Postgres binder for domain.ReaderPort
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.ReaderPort
func NewPG() repokit.Binder[domain.ReaderPort] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.ReaderPort { return &queries{q: q} }

// List returns ledger rows newest hour first
func (r *queries) List(ctx context.Context, in domain.ListInput) ([]domain.ShardRow, error) {
	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.q.Query(ctx, `
		SELECT hour_utc, run_id, status,
		       events_scanned, malformed,
		       actors_written, repos_written, emails_written,
		       bytes_uncompressed, elapsed_ms,
		       error, started_at, finished_at
		FROM ingest_shards
		WHERE ($1 = '' OR status = $1)
		ORDER BY hour_utc DESC
		LIMIT $2
	`, in.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ShardRow
	for rows.Next() {
		var (
			sr       domain.ShardRow
			runID    sql.NullString
			errText  sql.NullString
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(
			&sr.HourUTC, &runID, &sr.Status,
			&sr.Events, &sr.Malformed,
			&sr.Actors, &sr.Repos, &sr.Emails,
			&sr.Bytes, &sr.ElapsedMS,
			&errText, &started, &finished,
		); err != nil {
			return nil, err
		}
		if runID.Valid {
			sr.RunID = pstr.Ptr(runID.String)
		}
		if errText.Valid {
			sr.Error = pstr.Ptr(errText.String)
		}
		if started.Valid {
			t := started.Time.UTC()
			sr.StartedAt = &t
		}
		if finished.Valid {
			t := finished.Time.UTC()
			sr.FinishedAt = &t
		}
		sr.HourUTC = sr.HourUTC.UTC()
		out = append(out, sr)
	}
	return out, rows.Err()
}
