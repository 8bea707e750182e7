package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"logistica/frontend/login"
	"logistica/infrastructure/cache"
	httpserver "logistica/infrastructure/http"
	"logistica/infrastructure/rbac"
	"logistica/infrastructure/sqlite"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, store, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if cfg.Admin.Password != "" {
				if err := login.UpsertUserPasswordHash(ctx, db, cfg.Admin.Username, rbac.RoleAdmin, cfg.Admin.Password); err != nil {
					return fmt.Errorf("seed admin: %w", err)
				}
				slog.Info("admin account ensured", slog.String("username", cfg.Admin.Username))
			}

			sessionCache := cache.NewUserSessionCache()
			scheduler, err := startSessionPurge(ctx, db, sessionCache, cfg.Session.PurgeInterval)
			if err != nil {
				return err
			}
			defer func() {
				if err := scheduler.Shutdown(); err != nil {
					slog.Error("scheduler shutdown failed", slog.Any("err", err))
				}
			}()

			server := httpserver.NewServer(cfg, db, store, sessionCache, cache.NewUserCache())
			if err := server.Start(); err != nil {
				return fmt.Errorf("start server: %w", err)
			}
			slog.Info("logistica started",
				slog.String("environment", cfg.Environment),
				slog.String("data_dir", cfg.Storage.DataDir),
			)

			<-ctx.Done()
			slog.Info("shutting down")
			if err := server.Stop(); err != nil {
				slog.Error("graceful shutdown error", slog.Any("err", err))
			}
			return nil
		},
	}
}

// startSessionPurge schedules removal of expired sessions from sqlite and
// from the in-memory cache.
func startSessionPurge(ctx context.Context, db *sqlite.DB, sessions *cache.UserSessionCache, every time.Duration) (gocron.Scheduler, error) {
	if every <= 0 {
		every = time.Hour
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { purgeExpiredSessions(ctx, db, sessions, time.Now()) }),
		gocron.WithName("purge-expired-sessions"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule session purge: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

func purgeExpiredSessions(ctx context.Context, db *sqlite.DB, sessions *cache.UserSessionCache, now time.Time) {
	removed, err := login.DeleteExpiredSessions(ctx, db, now)
	if err != nil {
		slog.Error("purge expired sessions failed", slog.Any("err", err))
		return
	}
	cached := sessions.DeleteExpired(now)
	if removed > 0 || cached > 0 {
		slog.Info("expired sessions purged", slog.Int64("db", removed), slog.Int("cache", cached))
	}
}
