package service

import "context"

// accum buffers keyed rows and flushes once the batch limit is reached.
// A later row under the same key replaces the earlier one, so each flush
// carries at most one row per key
type accum[K comparable, V any] struct {
	limit int
	rows  map[K]V
	flush func(ctx context.Context, rows []V) error
}

func newAccum[K comparable, V any](limit int, flush func(context.Context, []V) error) *accum[K, V] {
	if limit <= 0 {
		limit = defaultBatch
	}
	return &accum[K, V]{
		limit: limit,
		rows:  make(map[K]V, limit),
		flush: flush,
	}
}

func (a *accum[K, V]) add(ctx context.Context, key K, row V) error {
	a.rows[key] = row
	if len(a.rows) >= a.limit {
		return a.drain(ctx)
	}
	return nil
}

// drain flushes whatever is buffered, including a final partial batch
func (a *accum[K, V]) drain(ctx context.Context) error {
	if len(a.rows) == 0 {
		return nil
	}
	xs := make([]V, 0, len(a.rows))
	for _, v := range a.rows {
		xs = append(xs, v)
	}
	a.rows = make(map[K]V, a.limit)
	return a.flush(ctx, xs)
}
