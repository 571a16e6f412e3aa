// Package service provides the ingest service implementation
package service

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"ghcensus/internal/adapters/ingest/extract"
	"ghcensus/internal/adapters/ingest/gharchive"
	"ghcensus/internal/modkit/repokit"
	perr "ghcensus/internal/platform/errors"
	"ghcensus/internal/platform/logger"
	"ghcensus/internal/services/ingest/domain"
	"ghcensus/internal/services/ingest/guardrails"
)

// defaultBatch is the production flush threshold per entity accumulator
const defaultBatch = 1000

// Config holds configuration options for the ingest service
type Config struct {
	// Batch is the accumulator flush threshold; <=0 -> defaultBatch
	Batch int

	// Flush retry
	MaxRetries int           // attempts per flush; <=0 -> 1
	RetryBase  time.Duration // base backoff between attempts; <=0 -> 250ms

	// Timeouts applied via guardrails
	HourTimeout  time.Duration
	FetchTimeout time.Duration
	ReadTimeout  time.Duration
	DBTimeout    time.Duration
}

// Service implements domain.RunnerPort. Shards are processed one at a time,
// oldest first; inside a shard the actor pass commits before the repo and
// email passes start
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Fetch  domain.Fetcher // remote fetcher, used by RunRange
	Reader domain.ReaderFactory
	Cfg    Config

	// Now is swappable for range-bound tests; nil means time.Now
	Now func() time.Time
}

// New constructs the ingest service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	f domain.Fetcher,
	rf domain.ReaderFactory,
	cfg Config,
) *Service {
	if db == nil {
		panic("ingest.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil Repo binder")
	}
	if rf == nil {
		panic("ingest.Service requires a non nil ReaderFactory")
	}
	return &Service{DB: db, Binder: binder, Fetch: f, Reader: rf, Cfg: cfg}
}

// RunLocal implements domain.RunnerPort
func (s *Service) RunLocal(ctx context.Context, dir string) (domain.RunReport, error) {
	shards, err := gharchive.ScanDir(dir)
	if err != nil {
		return domain.RunReport{}, err
	}
	hours := make([]domain.HourRef, 0, len(shards))
	for _, sh := range shards {
		hours = append(hours, sh.Hour)
	}
	return s.run(ctx, hours, &gharchive.LocalFetcher{Dir: dir})
}

// RunRange implements domain.RunnerPort
func (s *Service) RunRange(ctx context.Context, startDay, endDay string) (domain.RunReport, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	start, err := time.Parse("2006-01-02", startDay)
	if err != nil {
		return domain.RunReport{}, perr.InvalidArgf("ingest: bad start day %q", startDay)
	}
	end, err := time.Parse("2006-01-02", endDay)
	if err != nil {
		return domain.RunReport{}, perr.InvalidArgf("ingest: bad end day %q", endDay)
	}
	hours, err := gharchive.HoursInRange(start, end, now())
	if err != nil {
		return domain.RunReport{}, err
	}
	if s.Fetch == nil {
		return domain.RunReport{}, perr.Internalf("ingest: no fetcher configured for remote runs")
	}
	return s.run(ctx, hours, s.Fetch)
}

// run walks the hours in order. A canceled context stops the run between
// shards; the report covers whatever was attempted before the stop
func (s *Service) run(ctx context.Context, hours []domain.HourRef, f domain.Fetcher) (domain.RunReport, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	rep := domain.RunReport{RunID: runID}

	logger.C(ctx).Info().Int("hours", len(hours)).Msg("ingest: run start")
	for _, hr := range hours {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		out := s.runShard(ctx, hr, f, runID)
		rep.Outcomes = append(rep.Outcomes, out)
		switch out.Status {
		case domain.ShardProcessed:
			rep.Processed++
		case domain.ShardSkipped:
			rep.Skipped++
		default:
			rep.Failed++
			logger.C(ctx).Error().Str("hour", hr.String()).Err(out.Err).Msg("ingest: shard failed")
		}
	}
	logger.C(ctx).Info().
		Int("processed", rep.Processed).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Msg("ingest: run done")

	if rep.AllFailed() {
		return rep, perr.Internalf("ingest: every shard in the run failed")
	}
	return rep, nil
}

func (s *Service) runShard(ctx context.Context, hr domain.HourRef, f domain.Fetcher, runID string) (out domain.ShardOutcome) {
	out = domain.ShardOutcome{Hour: hr, Status: domain.ShardFailed}
	ctx = logger.WithShard(ctx, hr.String())
	tos := guardrails.Timeouts{
		Hour:  s.Cfg.HourTimeout,
		Fetch: s.Cfg.FetchTimeout,
		Read:  s.Cfg.ReadTimeout,
		DB:    s.Cfg.DBTimeout,
	}
	hrCtx, hrCancel := guardrails.WithHour(ctx, tos)
	defer hrCancel()
	startWall := time.Now()

	// Ledger open (best-effort)
	{
		dbCtx, dbCancel := guardrails.ForDB(hrCtx, tos)
		_ = s.DB.Tx(dbCtx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).StartShard(dbCtx, hr, runID)
		})
		dbCancel()
	}

	// Finish lands even when the hour budget expired, hence parent ctx
	defer func() {
		out.Elapsed = time.Since(startWall)
		dbCtx, dbCancel := guardrails.ForDB(ctx, tos)
		_ = s.DB.Tx(dbCtx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).FinishShard(dbCtx, out, runID)
		})
		dbCancel()
	}()

	fetchCtx, fetchCancel := guardrails.ForFetch(hrCtx, tos)
	src, err := f.Fetch(fetchCtx, hr)
	fetchCancel()
	if err != nil {
		if errors.Is(err, gharchive.ErrHourMissing) {
			out.Status = domain.ShardSkipped
			logger.C(ctx).Warn().Msg("ingest: hour not in archive, skipping")
			return out
		}
		out.Err = err
		return out
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && out.Err == nil {
			out.Err = cerr
		}
	}()

	// Pass one: actors must be fully committed before anything references them
	if err := s.passActors(hrCtx, tos, src, &out); err != nil {
		out.Err = err
		return out
	}

	// Pass two: repos and emails read the shard independently and in parallel
	var (
		wg       sync.WaitGroup
		repos    int64
		emails   int64
		repoErr  error
		emailErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		repos, repoErr = s.passRepos(hrCtx, tos, src)
	}()
	go func() {
		defer wg.Done()
		emails, emailErr = s.passEmails(hrCtx, tos, src)
	}()
	wg.Wait()
	out.Repos, out.Emails = repos, emails
	if repoErr != nil {
		out.Err = repoErr
		return out
	}
	if emailErr != nil {
		out.Err = emailErr
		return out
	}

	out.Status = domain.ShardProcessed
	logger.C(ctx).Info().
		Int64("events", out.Events).
		Int64("actors", out.Actors).
		Int64("repos", out.Repos).
		Int64("emails", out.Emails).
		Int64("malformed", out.Malformed).
		Dur("elapsed", time.Since(startWall)).
		Msg("ingest: shard processed")
	return out
}

func (s *Service) passActors(ctx context.Context, tos guardrails.Timeouts, src domain.Source, out *domain.ShardOutcome) error {
	rd, err := s.openReader(src)
	if err != nil {
		return err
	}
	defer func() { _ = rd.Close() }()

	var total int64
	acc := newAccum[int64, domain.Actor](s.Cfg.Batch, func(c context.Context, rows []domain.Actor) error {
		if ferr := s.withFlushRetry(c, tos, func(fc context.Context) error {
			return s.DB.Tx(fc, func(q repokit.Queryer) error {
				return s.Binder.Bind(q).UpsertActors(fc, rows)
			})
		}); ferr != nil {
			return ferr
		}
		total += int64(len(rows))
		return nil
	})

	readCtx, readCancel := guardrails.ForRead(ctx, tos)
	defer readCancel()
	for {
		if cerr := readCtx.Err(); cerr != nil {
			return cerr
		}
		env, e := rd.Next()
		if e == io.EOF {
			break
		}
		if e != nil {
			return e
		}
		a, ok := extract.ActorFrom(env)
		if !ok {
			continue
		}
		if aerr := acc.add(readCtx, a.ID, domain.Actor{ID: a.ID, Username: a.Username}); aerr != nil {
			return aerr
		}
	}
	if derr := acc.drain(readCtx); derr != nil {
		return derr
	}

	ev, mal, bytes := rd.Stats()
	out.Events, out.Malformed, out.Bytes = int64(ev), int64(mal), bytes
	out.Actors = total
	return nil
}

func (s *Service) passRepos(ctx context.Context, tos guardrails.Timeouts, src domain.Source) (int64, error) {
	rd, err := s.openReader(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rd.Close() }()

	var total int64
	acc := newAccum[int64, extract.RepoCandidate](s.Cfg.Batch, func(c context.Context, cands []extract.RepoCandidate) error {
		kept, ferr := s.flushRepos(c, tos, cands)
		if ferr != nil {
			return ferr
		}
		total += kept
		return nil
	})

	readCtx, readCancel := guardrails.ForRead(ctx, tos)
	defer readCancel()
	for {
		if cerr := readCtx.Err(); cerr != nil {
			return total, cerr
		}
		env, e := rd.Next()
		if e == io.EOF {
			break
		}
		if e != nil {
			return total, e
		}
		cand, ok := extract.RepoFrom(env)
		if !ok {
			continue
		}
		if aerr := acc.add(readCtx, cand.ID, cand); aerr != nil {
			return total, aerr
		}
	}
	if derr := acc.drain(readCtx); derr != nil {
		return total, derr
	}
	return total, nil
}

// flushRepos resolves owner logins to stored actor ids and upserts whatever
// resolved. Candidates whose owner never appeared as an event actor are
// dropped; a later shard that sees the owner will pick the repo up again
func (s *Service) flushRepos(ctx context.Context, tos guardrails.Timeouts, cands []extract.RepoCandidate) (int64, error) {
	logins := make([]string, 0, len(cands))
	seen := make(map[string]struct{}, len(cands))
	for _, cd := range cands {
		if _, ok := seen[cd.OwnerLogin]; ok {
			continue
		}
		seen[cd.OwnerLogin] = struct{}{}
		logins = append(logins, cd.OwnerLogin)
	}

	var kept int64
	err := s.withFlushRetry(ctx, tos, func(fc context.Context) error {
		kept = 0
		return s.DB.Tx(fc, func(q repokit.Queryer) error {
			r := s.Binder.Bind(q)
			ids, lerr := r.LookupActorIDs(fc, logins)
			if lerr != nil {
				return lerr
			}
			rows := make([]domain.Repo, 0, len(cands))
			for _, cd := range cands {
				oid, ok := ids[cd.OwnerLogin]
				if !ok {
					continue
				}
				rows = append(rows, domain.Repo{ID: cd.ID, Name: cd.Name, OwnerID: oid})
			}
			kept = int64(len(rows))
			if dropped := len(cands) - len(rows); dropped > 0 {
				logger.C(fc).Debug().Int("dropped", dropped).Msg("ingest: repos with unresolved owners")
			}
			if len(rows) == 0 {
				return nil
			}
			return r.UpsertRepos(fc, rows)
		})
	})
	return kept, err
}

func (s *Service) passEmails(ctx context.Context, tos guardrails.Timeouts, src domain.Source) (int64, error) {
	rd, err := s.openReader(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rd.Close() }()

	type emailKey struct {
		owner int64
		email string
	}

	var total int64
	acc := newAccum[emailKey, domain.KnownEmail](s.Cfg.Batch, func(c context.Context, rows []domain.KnownEmail) error {
		if ferr := s.withFlushRetry(c, tos, func(fc context.Context) error {
			return s.DB.Tx(fc, func(q repokit.Queryer) error {
				return s.Binder.Bind(q).UpsertKnownEmails(fc, rows)
			})
		}); ferr != nil {
			return ferr
		}
		total += int64(len(rows))
		return nil
	})

	readCtx, readCancel := guardrails.ForRead(ctx, tos)
	defer readCancel()
	for {
		if cerr := readCtx.Err(); cerr != nil {
			return total, cerr
		}
		env, e := rd.Next()
		if e == io.EOF {
			break
		}
		if e != nil {
			return total, e
		}
		for _, em := range extract.EmailsFrom(env) {
			row := domain.KnownEmail{
				OwnerID:   em.ActorID,
				Email:     em.Email,
				Name:      em.Name,
				IsPrivate: em.Private,
			}
			if aerr := acc.add(readCtx, emailKey{em.ActorID, em.Email}, row); aerr != nil {
				return total, aerr
			}
		}
	}
	if derr := acc.drain(readCtx); derr != nil {
		return total, derr
	}
	return total, nil
}

func (s *Service) openReader(src domain.Source) (domain.ReaderPort, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	rd, err := s.Reader.New(rc)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rd, nil
}

// withFlushRetry runs one flush with a DB-bounded context, retrying
// retryable failures with jittered backoff. Whole-batch retries only; the
// upserts are idempotent so replaying a batch is safe
func (s *Service) withFlushRetry(ctx context.Context, tos guardrails.Timeouts, do func(context.Context) error) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}

	var last error
	for i := range attempts {
		dbCtx, dbCancel := guardrails.ForDB(ctx, tos)
		err := do(dbCtx)
		dbCancel()
		if err == nil {
			return nil
		}
		last = err
		if !perr.Retryable(err) || i == attempts-1 {
			break
		}
		d := min(base<<i, 10*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)))
		if se := sleepCtx(ctx, j); se != nil {
			return se
		}
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
