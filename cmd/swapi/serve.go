package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/swapi-client/internal/config"
	"github.com/Sternrassler/swapi-client/internal/server"
	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/dashboard"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the character and planet tables over HTTP",
		Long: `Serve the dashboard web page on PORT.

When REDIS_URL is set the current page is kept in Redis and shared by all
replicas; otherwise it is kept in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

// newStore returns the page store selected by cfg and a function releasing it.
func newStore(ctx context.Context, cfg *config.Config) (pagination.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("Using in-memory page store")
		return pagination.NewMemoryStore(), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	return pagination.NewRedisStore(redisClient, cfg.Redis.PageTTL), func() { redisClient.Close() }, nil
}

func newDashboard(ctx context.Context, cfg *config.Config) (*dashboard.Dashboard, func(), error) {
	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create SWAPI client: %w", err)
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	nav := pagination.NewNavigator(store, pagination.DefaultSession)
	return dashboard.New(c, nav, render.NewDocument(), cfg.DashboardConfig()), closeStore, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dash, closeStore, err := newDashboard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.New(dash, server.Options{AllowedOrigins: cfg.Server.AllowedOrigins}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_url", cfg.API.BaseURL).
			Str("user_agent", cfg.API.UserAgent).
			Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
