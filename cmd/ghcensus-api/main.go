package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"ghcensus/internal/platform/config"
	"ghcensus/internal/platform/logger"
	"ghcensus/internal/platform/store"
	"ghcensus/internal/services/api"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("api")

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	apiCfg := root.Prefix("SERVICE_API_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "ghcensus-api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
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

	r := chi.NewRouter()
	api.Mount(r, api.Options{
		Config: root,
		Store:  st,
		Logger: l,
	})

	srv := &stdhttp.Server{
		Addr:              apiCfg.MayString("ADDR", ":8087"),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	l.Info().Str("addr", srv.Addr).Msg("api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		l.Fatal().Err(err).Msg("api server failed")
	}
}
