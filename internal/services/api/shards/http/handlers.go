// Package http provides http transport for the shard ledger
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	phttp "ghcensus/internal/platform/net/http"
	"ghcensus/internal/services/api/shards/domain"
	svc "ghcensus/internal/services/api/shards/service"
)

// Register mounts shard ledger endpoints on the given router
func Register(r chi.Router, s svc.Service) {
	h := &handlers{svc: s}
	r.Get("/shards", h.list)
}

type handlers struct{ svc svc.Service }

func (h *handlers) list(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in := domain.ListInput{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			phttp.JSON(w, stdhttp.StatusBadRequest, phttp.Envelope{
				StatusCode: stdhttp.StatusBadRequest,
				Status:     stdhttp.StatusText(stdhttp.StatusBadRequest),
				Error:      "limit must be an integer",
			})
			return
		}
		in.Limit = n
	}
	rows, err := h.svc.List(r.Context(), in)
	if err != nil {
		phttp.RespondError(w, err)
		return
	}
	phttp.RespondOK(w, rows)
}
