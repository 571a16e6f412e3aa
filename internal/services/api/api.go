// Package api composes the HTTP surface over the ingest ledger
package api

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ghcensus/internal/modkit"
	"ghcensus/internal/platform/config"
	"ghcensus/internal/platform/logger"
	phttp "ghcensus/internal/platform/net/http"
	"ghcensus/internal/platform/store"

	shardsmod "ghcensus/internal/services/api/shards/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger
}

// Mount wires the modules and mounts them under /v1 with a common stack
func Mount(r chi.Router, opt Options) {
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	mods := []modkit.Module{
		shardsmod.New(deps),
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		if err := opt.Store.Guard(req.Context()); err != nil {
			phttp.RespondError(w, err)
			return
		}
		phttp.RespondOK(w, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(v1 chi.Router) {
		for _, m := range mods {
			m.MountRoutes(v1)
		}
	})
}
