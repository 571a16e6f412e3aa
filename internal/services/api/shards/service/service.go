// Package service provides the shard ledger read service
package service

import (
	"context"

	"ghcensus/internal/modkit/repokit"
	perr "ghcensus/internal/platform/errors"
	"ghcensus/internal/services/api/shards/domain"
)

// Service answers ledger queries; reads run in a single short transaction
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.ReaderPort]
}

// New constructs the shards service
func New(db repokit.TxRunner, binder repokit.Binder[domain.ReaderPort]) Service {
	if db == nil {
		panic("shards.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("shards.Service requires a non nil Repo binder")
	}
	return Service{DB: db, Binder: binder}
}

var validStatuses = map[string]struct{}{
	"": {}, "running": {}, "processed": {}, "skipped": {}, "failed": {},
}

// List implements domain.ReaderPort
func (s Service) List(ctx context.Context, in domain.ListInput) ([]domain.ShardRow, error) {
	if _, ok := validStatuses[in.Status]; !ok {
		return nil, perr.InvalidArgf("unknown status %q", in.Status)
	}
	var out []domain.ShardRow
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		rows, e := s.Binder.Bind(q).List(ctx, in)
		if e != nil {
			return e
		}
		out = rows
		return nil
	})
	return out, err
}
