package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/layer-3/walletgate/adapters/events"
	"github.com/layer-3/walletgate/adapters/store/sqlite"
	"github.com/layer-3/walletgate/adapters/verifier"
	"github.com/layer-3/walletgate/config"
	"github.com/layer-3/walletgate/ports"
	"github.com/layer-3/walletgate/service"
	transport "github.com/layer-3/walletgate/transport/http"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := watermill.NewStdLogger(cfg.Debug, cfg.Debug)

	store, err := sqlite.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	eventPub, closeEvents, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	lookup := service.NewStoreAuthorizationLookup(store, logger)
	authenticator := service.NewAuthenticator(
		verifier.New(),
		lookup,
		store,
		eventPub,
		logger,
		service.WithTimestampWindow(cfg.TimestampWindow),
	)

	router := transport.SetupRouter(transport.RouterConfig{
		Authenticator:  authenticator,
		Handlers:       transport.NewHandlers(store, lookup, cfg.RPC, logger),
		Metrics:        transport.NewMetrics(),
		AllowedOrigins: cfg.AllowedOrigins,
		Debug:          cfg.Debug,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", watermill.LogFields{"addr": cfg.HTTPAddr, "network": string(cfg.RPC.Network)})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newEventPublisher publishes auth events to a Redis stream when Redis is
// configured and drops them otherwise.
func newEventPublisher(cfg config.Config, logger watermill.LoggerAdapter) (ports.EventPublisher, func(), error) {
	if cfg.RedisURL == "" {
		return events.NopPublisher{}, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}

	closeFn := func() {
		_ = publisher.Close()
		_ = redisClient.Close()
	}
	return events.NewWatermillPublisher(publisher, cfg.EventTopic), closeFn, nil
}
