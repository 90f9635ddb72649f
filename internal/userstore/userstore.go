// Package userstore holds the relay's per-user progress records.
package userstore

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/thanhdat24/code-learning/internal/config"
	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/store"
)

// Repository stores one record per username.
type Repository interface {
	// Find returns nil, nil when the user has no record.
	Find(ctx context.Context, username string) (*progress.Record, error)
	Upsert(ctx context.Context, record progress.Record) error
}

// CloseFunc releases a backend's connections.
type CloseFunc func(context.Context) error

func noopClose(context.Context) error { return nil }

// Open builds the backend named by cfg.Backend. dbPath is used by the
// sqlite backend.
func Open(ctx context.Context, cfg config.ServerConfig, dbPath string, logger *zap.Logger) (Repository, CloseFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case "memory":
		return NewMemory(), noopClose, nil

	case "", "sqlite":
		if err := store.EnsureDir(dbPath); err != nil {
			return nil, nil, err
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("using sqlite user store", zap.String("path", dbPath))
		return NewSQLite(s.ProgressRepo()), func(context.Context) error { return s.Close() }, nil

	case "redis":
		r, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis user store", zap.String("addr", cfg.RedisAddr))
		return r, func(context.Context) error { return r.Close() }, nil

	case "mongo":
		m, err := DialMongo(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using mongo user store",
			zap.String("db", cfg.MongoDB),
			zap.String("collection", cfg.MongoCollection))
		return m, m.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q (want sqlite, mongo, redis or memory)", cfg.Backend)
}

func decodeRecord(data []byte) (*progress.Record, error) {
	var r progress.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	r.Normalize()
	return &r, nil
}
