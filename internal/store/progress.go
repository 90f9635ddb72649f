package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo backs the relay's sqlite user store.
type progressRepo struct {
	drv *entsql.Driver
}

func (r *progressRepo) Find(ctx context.Context, username string) ([]byte, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(tableProgressRecord)).
		Where(entsql.EQ("username", username)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("query progress record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var data string
	if err := rows.Scan(&data); err != nil {
		return nil, false, fmt.Errorf("scan progress record: %w", err)
	}
	return []byte(data), true, nil
}

func (r *progressRepo) Upsert(ctx context.Context, username string, data []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableProgressRecord).
		Columns("username", "data", "updated_at").
		Values(username, string(data), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("username"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert progress record: %w", err)
	}
	return nil
}
