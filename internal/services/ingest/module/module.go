// Package module provides the ingest module implementation
package module

import (
	"io"

	"github.com/go-chi/chi/v5"

	"ghcensus/internal/adapters/ingest/gharchive"
	"ghcensus/internal/modkit"
	"ghcensus/internal/services/ingest/domain"
	"ghcensus/internal/services/ingest/repo"
	"ghcensus/internal/services/ingest/service"
)

// Ports defines the ingest module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingest module. It mounts no routes; the runner is
// driven from the command layer
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New wires the adapters and service using config from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	storeBinder := repo.NewPG()
	fetch := gharchive.NewHTTPFetcher(opts.BaseURL, opts.TmpDir, opts.HTTPTimeout)

	svc := service.New(
		deps.PG, storeBinder,
		fetch, readerFactory{},
		service.Config{
			Batch:        opts.Batch,
			MaxRetries:   opts.MaxRetries,
			RetryBase:    opts.RetryBase,
			HourTimeout:  opts.HourTimeout,
			FetchTimeout: opts.FetchTimeout,
			ReadTimeout:  opts.ReadTimeout,
			DBTimeout:    opts.DBTimeout,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as ingest has no HTTP surface
func (m *Module) MountRoutes(_ chi.Router) {}

// readerFactory adapts the gzip ndjson reader to the domain port
type readerFactory struct{}

func (readerFactory) New(rc io.ReadCloser) (domain.ReaderPort, error) {
	return gharchive.NewReader(rc)
}
