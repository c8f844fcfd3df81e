package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtcodec/internal/config"
	"github.com/cybergodev/jwtcodec/internal/logger"
	"github.com/cybergodev/jwtcodec/internal/server"
	"github.com/cybergodev/jwtcodec/internal/workspace"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codec and editor workspaces over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	config.BindServeFlags(cmd, a.v)
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	store, err := a.newStore(ctx)
	if err != nil {
		return err
	}

	manager := workspace.NewManager(store, a.codec, workspace.Config{
		TTL:             a.cfg.Workspace.TTL,
		CleanupInterval: a.cfg.Workspace.CleanupInterval,
	}, a.log)
	defer func() {
		if err := manager.Close(); err != nil {
			a.log.Error("failed to close workspace manager", "error", err)
		}
	}()

	srv := server.New(a.codec, manager, server.Options{
		Addr:         a.cfg.Server.Addr(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		RateLimit:    a.cfg.Server.RateLimit,
		RateWindow:   a.cfg.Server.RateWindow,
	}, a.log)

	a.log.Info("starting server",
		"addr", a.cfg.Server.Addr(),
		"algorithm", a.codec.Algorithm(),
		"store", a.cfg.Workspace.Store,
	)
	return srv.ListenAndServe(ctx)
}

func (a *app) newStore(ctx context.Context) (workspace.Store, error) {
	storeLog := a.log.For(logger.ComponentStore)

	switch a.cfg.Workspace.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
		}
		storeLog.Info("using redis workspace store", "addr", a.cfg.Redis.Addr, "prefix", a.cfg.Redis.Prefix)
		return workspace.NewRedisStore(client, a.cfg.Redis.Prefix), nil
	default:
		storeLog.Info("using in-memory workspace store", "max_size", a.cfg.Workspace.MaxSize)
		return workspace.NewMemoryStore(a.cfg.Workspace.MaxSize), nil
	}
}
