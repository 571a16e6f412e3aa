// Package module provides the shards API module implementation
package module

import (
	"github.com/go-chi/chi/v5"

	"ghcensus/internal/modkit"
	"ghcensus/internal/services/api/shards/domain"
	shardshttp "ghcensus/internal/services/api/shards/http"
	"ghcensus/internal/services/api/shards/repo"
	"ghcensus/internal/services/api/shards/service"
)

// Ports defines the shards module ports
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements the shards API module
type Module struct {
	deps  modkit.Deps
	svc   service.Service
	ports Ports
}

// New constructs the shards module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG())
	return &Module{deps: deps, svc: svc, ports: Ports{Reader: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "shards" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes mounts the ledger endpoints
func (m *Module) MountRoutes(r chi.Router) { shardshttp.Register(r, m.svc) }
