package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thanhdat24/code-learning/internal/app"
	"github.com/thanhdat24/code-learning/internal/catalog"
	"github.com/thanhdat24/code-learning/internal/config"
	"github.com/thanhdat24/code-learning/internal/judge"
	"github.com/thanhdat24/code-learning/internal/llm"
	"github.com/thanhdat24/code-learning/internal/logging"
	"github.com/thanhdat24/code-learning/internal/remote"
	"github.com/thanhdat24/code-learning/internal/session"
	"github.com/thanhdat24/code-learning/internal/store"
	"github.com/thanhdat24/code-learning/internal/syncer"
)

// errNoJudge is returned by submit when no LLM provider is configured.
var errNoJudge = errors.New("no LLM provider configured: set CODEMASTER_LLM_PROVIDER and its API key, or GEMINI_API_KEY")

// runtime bundles what every client command opens.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
}

// openRuntime loads configuration, applies flag overrides and opens the
// local store.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg := config.Load()
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.APIURL = api
	}
	level := "warn"
	if _, ok := os.LookupEnv("CODEMASTER_LOG_LEVEL"); ok {
		level = cfg.LogLevel
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}

	logger, err := logging.New(logging.Options{Level: level, Release: cfg.Release})
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, store: s}, nil
}

func (rt *runtime) Close() {
	_ = rt.logger.Sync()
	_ = rt.store.Close()
}

func (rt *runtime) catalog() (*catalog.Catalog, error) {
	if rt.cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(rt.cfg.CatalogPath)
}

// judge builds the LLM-backed judge. The bool is false when no provider
// is configured.
func (rt *runtime) judge(ctx context.Context) (judge.Evaluator, bool, error) {
	cfg, ok := llm.Resolve()
	if !ok {
		return unconfiguredJudge{}, false, nil
	}
	provider, err := llm.NewProvider(ctx, cfg, rt.store.EventRepo(), rt.logger)
	if err != nil {
		return nil, false, fmt.Errorf("create LLM provider: %w", err)
	}
	return judge.New(provider, judge.DefaultConfig(), rt.logger), true, nil
}

// engine builds and boots the engine. The caller must Close it.
func (rt *runtime) engine(ctx context.Context, j judge.Evaluator) (*app.Engine, error) {
	cat, err := rt.catalog()
	if err != nil {
		return nil, err
	}
	if j == nil {
		j = unconfiguredJudge{}
	}
	e, err := app.New(app.Options{
		Catalog:  cat,
		Remote:   remote.New(rt.cfg.APIURL),
		Identity: session.KVIdentity{KV: rt.store.KVRepo()},
		Judge:    j,
		Sync:     syncer.Config{Delay: rt.cfg.SyncDelay},
		Logger:   rt.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := e.Boot(ctx); err != nil {
		_ = e.Close(ctx)
		return nil, err
	}
	return e, nil
}

// unconfiguredJudge degrades every evaluation. Commands that never
// submit use it.
type unconfiguredJudge struct{}

func (unconfiguredJudge) Evaluate(context.Context, *catalog.Problem, string) judge.Verdict {
	return judge.Degraded()
}
