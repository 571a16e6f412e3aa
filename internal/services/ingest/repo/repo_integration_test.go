//go:build integration

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ghcensus/internal/platform/logger"
	"ghcensus/internal/platform/store"
	"ghcensus/internal/services/ingest/domain"
)

func startPostgres(t *testing.T) (*store.Store, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ghcensus",
			"POSTGRES_PASSWORD": "ghcensus",
			"POSTGRES_DB":       "ghcensus_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := ctr.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}
	url := fmt.Sprintf("postgres://ghcensus:ghcensus@%s:%s/ghcensus_test?sslmode=disable", host, port.Port())

	if err := store.Migrate(url, "../../../../db/migrations", *logger.Get()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st, err := store.Open(ctx, store.Config{
		AppName: "repo-test",
		PG:      store.PGConfig{Enabled: true, URL: url, MaxConns: 4},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	return st, func() {
		_ = st.Close(ctx)
		_ = ctr.Terminate(ctx)
	}
}

func TestRepoRoundTrip(t *testing.T) {
	st, done := startPostgres(t)
	defer done()

	ctx := context.Background()
	r := NewPG().Bind(st.PG)

	// upsert twice, second observation wins
	if err := r.UpsertActors(ctx, []domain.Actor{{ID: 7, Username: "alice"}, {ID: 8, Username: "bob"}}); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertActors(ctx, []domain.Actor{{ID: 7, Username: "alice-renamed"}}); err != nil {
		t.Fatal(err)
	}

	ids, err := r.LookupActorIDs(ctx, []string{"alice-renamed", "bob", "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if ids["alice-renamed"] != 7 || ids["bob"] != 8 {
		t.Fatalf("lookup = %v", ids)
	}
	if _, ok := ids["ghost"]; ok {
		t.Fatalf("unknown login must be absent: %v", ids)
	}

	if err := r.UpsertRepos(ctx, []domain.Repo{{ID: 9, Name: "tool", OwnerID: 7}}); err != nil {
		t.Fatal(err)
	}
	// replay with a new name is idempotent on the key
	if err := r.UpsertRepos(ctx, []domain.Repo{{ID: 9, Name: "tool-v2", OwnerID: 7}}); err != nil {
		t.Fatal(err)
	}

	emails := []domain.KnownEmail{
		{OwnerID: 7, Email: "a@example.com", Name: "A", IsPrivate: false},
		{OwnerID: 7, Email: "7+alice@users.noreply.github.com", Name: "A", IsPrivate: true},
	}
	if err := r.UpsertKnownEmails(ctx, emails); err != nil {
		t.Fatal(err)
	}
	// same composite key again must update, not duplicate
	emails[0].Name = "A2"
	if err := r.UpsertKnownEmails(ctx, emails); err != nil {
		t.Fatal(err)
	}

	var n int
	row := st.PG.QueryRow(ctx, "SELECT count(*) FROM gh_archive_known_emails WHERE gh_archive_user_id = 7")
	if err := row.Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("emails = %d want 2", n)
	}

	hr := domain.HourRef{Year: 2024, Month: 1, Day: 1, Hour: 2}
	runID := "5f0c7f0a-cf09-4f35-9b2e-0d44a2b0a111"
	if err := r.StartShard(ctx, hr, runID); err != nil {
		t.Fatal(err)
	}
	out := domain.ShardOutcome{
		Hour: hr, Status: domain.ShardProcessed,
		Events: 3, Actors: 2, Repos: 1, Emails: 2,
		Elapsed: 1500 * time.Millisecond,
	}
	if err := r.FinishShard(ctx, out, runID); err != nil {
		t.Fatal(err)
	}

	var status string
	row = st.PG.QueryRow(ctx, "SELECT status FROM ingest_shards WHERE hour_utc = $1", hr.UTC())
	if err := row.Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "processed" {
		t.Fatalf("status = %q", status)
	}
}
