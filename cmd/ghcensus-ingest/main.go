package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ghcensus/internal/modkit"
	"ghcensus/internal/platform/config"
	"ghcensus/internal/platform/logger"
	"ghcensus/internal/platform/store"

	"ghcensus/internal/services/ingest/domain"
	ingestmod "ghcensus/internal/services/ingest/module"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("ingest")

	var (
		fDir           = flag.String("dir", "", "ingest local archive files from this directory")
		fStart         = flag.String("start", "", "UTC start day YYYY-MM-DD (remote mode)")
		fEnd           = flag.String("end", "", "UTC end day YYYY-MM-DD inclusive (remote mode)")
		fMigrate       = flag.Bool("migrate", false, "apply pending schema migrations before ingesting")
		fMigrationsDir = flag.String("migrations-dir", "db/migrations", "directory of schema migrations")
	)
	flag.Parse()

	local := *fDir != ""
	remote := *fStart != "" || *fEnd != ""
	if local == remote {
		l.Fatal().Msg("provide either -dir or both -start and -end")
	}
	if remote && (*fStart == "" || *fEnd == "") {
		l.Fatal().Msg("remote mode needs both -start and -end")
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	dbURL := pgCfg.MustString("DBURL")

	if *fMigrate {
		if err := store.Migrate(dbURL, *fMigrationsDir, *l); err != nil {
			l.Fatal().Err(err).Msg("migrations failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "ghcensus-ingest",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbURL,
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if cerr := st.Close(context.Background()); cerr != nil {
			l.Error().Err(cerr).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Log: *l,
		Cfg: root,
		PG:  st.PG,
	}

	im := ingestmod.New(deps)
	runner := im.Ports().(ingestmod.Ports).Runner

	var (
		rep  domain.RunReport
		rerr error
	)
	if local {
		rep, rerr = runner.RunLocal(ctx, *fDir)
	} else {
		rep, rerr = runner.RunRange(ctx, *fStart, *fEnd)
	}
	l.Info().
		Str("run_id", rep.RunID).
		Int("processed", rep.Processed).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Msg("ingest run complete")
	if rerr != nil {
		l.Fatal().Err(rerr).Msg("ingest run failed")
	}
}
