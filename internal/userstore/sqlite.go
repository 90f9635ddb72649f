package userstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/store"
)

// SQLite keeps records as JSON documents in the local store.
type SQLite struct {
	repo store.ProgressRepo
}

func NewSQLite(repo store.ProgressRepo) *SQLite {
	return &SQLite{repo: repo}
}

func (s *SQLite) Find(ctx context.Context, username string) (*progress.Record, error) {
	data, ok, err := s.repo.Find(ctx, username)
	if err != nil || !ok {
		return nil, err
	}
	return decodeRecord(data)
}

func (s *SQLite) Upsert(ctx context.Context, r progress.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.repo.Upsert(ctx, r.Username, data)
}
