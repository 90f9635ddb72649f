package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequence numbers one event stream. The counter lives in the kv table under
// key, so numbering keeps growing after old events are pruned.
type sequence struct {
	mu  sync.Mutex
	drv *entsql.Driver
	key string
}

const nextSequenceSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, '1', ?)
	ON CONFLICT (key) DO UPDATE SET value = CAST(value AS INTEGER) + 1, updated_at = excluded.updated_at
	RETURNING CAST(value AS INTEGER)`

func newSequence(drv *entsql.Driver, stream string) *sequence {
	return &sequence{drv: drv, key: "seq:" + stream}
}

// Next returns the next number, starting at 1.
func (s *sequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, nextSequenceSQL, []any{s.key, time.Now().UnixMilli()}, rows); err != nil {
		return 0, fmt.Errorf("advance %s: %w", s.key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("advance %s: no row returned", s.key)
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, fmt.Errorf("scan %s: %w", s.key, err)
	}
	return n, nil
}
