package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/karigarhub/internal/auth"
	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/db"
	"github.com/geocoder89/karigarhub/internal/email"
	httpx "github.com/geocoder89/karigarhub/internal/http"
	"github.com/geocoder89/karigarhub/internal/notifications"
	"github.com/geocoder89/karigarhub/internal/observability"
	"github.com/geocoder89/karigarhub/internal/queue/redisclient"
	"github.com/geocoder89/karigarhub/internal/realtime"
	"github.com/geocoder89/karigarhub/internal/repo/mongodb"
	"github.com/geocoder89/karigarhub/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	// tracing is optional; a missing endpoint just skips it
	if cfg.OtelEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "karigarhub-api", cfg.OtelEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	// mongo
	client, err := db.Connect(cfg.MongoURI)

	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	database := client.Database(cfg.MongoDB)

	startupCtx, cancelStartup := config.WithTimeout(30 * time.Second)

	defer cancelStartup()

	err = db.EnsureIndexes(startupCtx, database)

	if err != nil {
		log.Error("index setup failed", "err", err)
		os.Exit(1)
	}

	err = db.EnsureAdminUser(startupCtx, database, cfg)

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// redis backs the push queue and the booking event channel
	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer redisClient.Close()

	err = redisClient.Ping(startupCtx)

	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	// metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(registry)

	// email: fall back to log-only delivery in dev when no key is set
	var sender email.Sender = email.NewLogSender(log)
	if cfg.SendgridKey != "" {
		sender = email.NewSendgridSender(cfg.SendgridKey, cfg.EmailFromName, cfg.EmailFrom)
	}

	// uploads: S3 when configured, local tmp dir otherwise
	var uploader storage.Uploader
	if cfg.S3Bucket != "" {
		uploader, err = storage.NewS3Uploader(startupCtx, cfg.AWSRegion, cfg.S3Bucket)

		if err != nil {
			log.Error("s3 init failed", "err", err)
			os.Exit(1)
		}
	} else {
		uploader = storage.NewLocalUploader(os.TempDir())
	}

	usersRepo := mongodb.NewUsersRepo(database)
	pendingRepo := mongodb.NewPendingRepo(database)
	postingsRepo := mongodb.NewPostingsRepo(database)
	bookingsRepo := mongodb.NewBookingsRepo(database)
	reviewsRepo := mongodb.NewReviewsRepo(database)

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		if err := client.Ping(ctx, nil); err != nil {
			return err
		}

		return redisClient.Ping(ctx)
	}

	router := httpx.NewRouter(cfg, log, httpx.Deps{
		Users:    usersRepo,
		Pending:  pendingRepo,
		Postings: postingsRepo,
		Bookings: bookingsRepo,
		Reviews:  reviewsRepo,
		Purger:   mongodb.NewPurger(postingsRepo, bookingsRepo, reviewsRepo),

		Sender:    sender,
		Uploader:  uploader,
		JWT:       auth.NewManager(cfg.JWTSecret, cfg.SessionTTL),
		Pushes:    notifications.NewQueue(redisClient.Raw()),
		Publisher: realtime.NewPublisher(redisClient.Raw()),

		Prom:    prom,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Ping:    ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
