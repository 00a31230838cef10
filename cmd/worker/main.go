package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/notifications"
	"github.com/geocoder89/karigarhub/internal/observability"
	"github.com/geocoder89/karigarhub/internal/queue/redisclient"
	"github.com/geocoder89/karigarhub/internal/queue/worker"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer redisClient.Close()

	err := redisClient.Ping(ctx)

	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.NewRegistry())

	// wrap the notifier in the breaker so a flapping push provider
	// trips open instead of stalling the queue
	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	w := worker.New(worker.Config{
		BlockTimeout: 1 * time.Second,
	}, redisClient.Raw(), notifier, log, prom)

	log.Info("push worker starting", "queue", notifications.PushQueueKey)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}
