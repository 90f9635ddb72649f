package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thanhdat24/code-learning/internal/config"
	"github.com/thanhdat24/code-learning/internal/logging"
	"github.com/thanhdat24/code-learning/internal/relay"
	"github.com/thanhdat24/code-learning/internal/userstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay that stores user progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = ":" + cfg.Server.Port
		}
		return serve(cmd, cfg, addr)
	},
}

func serve(cmd *cobra.Command, cfg config.Config, addr string) error {
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Server.Backend = b
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.LogLevel = l
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Release: cfg.Release})
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := ""
	if cfg.Server.Backend == "sqlite" || cfg.Server.Backend == "" {
		if dbPath, err = resolveDBPath(cmd); err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}
	repo, closeRepo, err := userstore.Open(ctx, cfg.Server, dbPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(context.Background()); err != nil {
			logger.Warn("close user store", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := relay.New(relay.Options{
		Repo:        repo,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.Serve(ctx, lis)
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return nil
	})
	logger.Info("relay started",
		zap.String("addr", lis.Addr().String()),
		zap.String("backend", cfg.Server.Backend))
	err = eg.Wait()
	logger.Info("shutdown finished", zap.Error(err))
	return err
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :$PORT, 3001)")
	serveCmd.Flags().String("backend", "", "User store backend: sqlite, mongo, redis, memory (overrides CODEMASTER_STORE_BACKEND)")
}
