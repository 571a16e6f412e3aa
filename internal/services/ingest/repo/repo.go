// Package repo provides postgres access for ingest writes
package repo

import (
	"context"

	"ghcensus/internal/modkit/repokit"
	"ghcensus/internal/services/ingest/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// UpsertActors writes one row per actor id, newest observation winning
func (r *queries) UpsertActors(ctx context.Context, rows []domain.Actor) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(rows))
	names := make([]string, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.ID)
		names = append(names, a.Username)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO gh_archive_users (id, username, created_at, updated_at)
		SELECT t.id, t.username, now(), now()
		FROM UNNEST($1::bigint[], $2::text[]) AS t(id, username)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = now()
	`, ids, names)
	return err
}

// UpsertRepos writes one row per repo id. Callers must have committed the
// owning actors first
func (r *queries) UpsertRepos(ctx context.Context, rows []domain.Repo) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(rows))
	names := make([]string, 0, len(rows))
	owners := make([]int64, 0, len(rows))
	for _, rp := range rows {
		ids = append(ids, rp.ID)
		names = append(names, rp.Name)
		owners = append(owners, rp.OwnerID)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO gh_archive_repos (id, name, gh_archive_user_id, created_at, updated_at)
		SELECT t.id, t.name, t.owner_id, now(), now()
		FROM UNNEST($1::bigint[], $2::text[], $3::bigint[]) AS t(id, name, owner_id)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    gh_archive_user_id = EXCLUDED.gh_archive_user_id,
		    updated_at = now()
	`, ids, names, owners)
	return err
}

// UpsertKnownEmails writes one row per (owner, email) pair
func (r *queries) UpsertKnownEmails(ctx context.Context, rows []domain.KnownEmail) error {
	if len(rows) == 0 {
		return nil
	}
	owners := make([]int64, 0, len(rows))
	emails := make([]string, 0, len(rows))
	names := make([]string, 0, len(rows))
	privs := make([]bool, 0, len(rows))
	for _, e := range rows {
		owners = append(owners, e.OwnerID)
		emails = append(emails, e.Email)
		names = append(names, e.Name)
		privs = append(privs, e.IsPrivate)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO gh_archive_known_emails
			(gh_archive_user_id, email, name, is_private_email, created_at, updated_at)
		SELECT t.owner_id, t.email, t.name, t.is_private, now(), now()
		FROM UNNEST($1::bigint[], $2::text[], $3::text[], $4::boolean[])
			AS t(owner_id, email, name, is_private)
		ON CONFLICT (gh_archive_user_id, email) DO UPDATE
		SET name = EXCLUDED.name,
		    is_private_email = EXCLUDED.is_private_email,
		    updated_at = now()
	`, owners, emails, names, privs)
	return err
}

// LookupActorIDs resolves logins to stored actor ids. Logins without a row
// are absent from the result
func (r *queries) LookupActorIDs(ctx context.Context, logins []string) (map[string]int64, error) {
	out := make(map[string]int64, len(logins))
	if len(logins) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT u.username, u.id
		FROM gh_archive_users u
		JOIN UNNEST($1::text[]) AS t(username) ON u.username = t.username
	`, logins)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var login string
		var id int64
		if err := rows.Scan(&login, &id); err != nil {
			return nil, err
		}
		out[login] = id
	}
	return out, rows.Err()
}

// StartShard marks the start of a shard hour (idempotent)
func (r *queries) StartShard(ctx context.Context, hour domain.HourRef, runID string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ingest_shards (hour_utc, run_id, started_at, status)
		VALUES ($1, $2, now(), 'running')
		ON CONFLICT (hour_utc) DO UPDATE
		SET run_id = $2, started_at = now(), status = 'running',
		    error = null, finished_at = null
	`, hour.UTC(), runID)
	return err
}

// FinishShard records the terminal state of a shard hour (idempotent)
func (r *queries) FinishShard(ctx context.Context, out domain.ShardOutcome, runID string) error {
	var errText string
	if out.Err != nil {
		errText = out.Err.Error()
	}
	_, err := r.q.Exec(ctx, `
		UPDATE ingest_shards SET
			finished_at = now(),
			status = $2,
			events_scanned = $3,
			malformed = $4,
			actors_written = $5,
			repos_written = $6,
			emails_written = $7,
			bytes_uncompressed = $8,
			elapsed_ms = $9,
			error = NULLIF($10,'')
		WHERE hour_utc = $1 AND run_id = $11
	`,
		out.Hour.UTC(), string(out.Status), out.Events, out.Malformed,
		out.Actors, out.Repos, out.Emails, out.Bytes,
		out.Elapsed.Milliseconds(), errText, runID,
	)
	return err
}
