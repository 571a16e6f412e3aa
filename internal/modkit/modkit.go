// Package modkit provides module wiring and shared deps
package modkit

import (
	"ghcensus/internal/modkit/repokit"
	"ghcensus/internal/platform/config"
	"ghcensus/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Deps holds core dependencies passed to modules; wiring only
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// Module is the common surface for modules that expose ports and
// optionally mount HTTP routes
type Module interface {
	// MountRoutes mounts HTTP routes on the given router; no-op for job modules
	MountRoutes(r chi.Router)

	// Ports returns a module-specific port set for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}
