package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/karigarhub/internal/notifications"
	"github.com/geocoder89/karigarhub/internal/observability"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	// how long each BRPOP blocks before looping back to check ctx
	BlockTimeout time.Duration
}

// Worker drains the push queue and hands each message to the
// notifier. Delivery is at-most-once: a failed send is logged,
// counted and dropped.
type Worker struct {
	cfg      Config
	redisdb  *redis.Client
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
}

func New(cfg Config, redisdb *redis.Client, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 1 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		redisdb:  redisdb,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	consecutiveErrs := 0

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil
		default:
		}

		res, err := w.redisdb.BRPop(ctx, w.cfg.BlockTimeout, notifications.PushQueueKey).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				consecutiveErrs = 0
				continue
			}

			if errors.Is(err, context.Canceled) {
				return nil
			}

			w.log.Error("queue pop failed", "err", err)

			// back off so a down redis doesn't spin the loop
			select {
			case <-time.After(RetryBackoff(consecutiveErrs)):
			case <-ctx.Done():
				return nil
			}
			consecutiveErrs++
			continue
		}

		consecutiveErrs = 0

		// BRPOP returns [key, value]
		if len(res) != 2 {
			continue
		}

		w.ProcessOne(ctx, []byte(res[1]))
	}
}

// ProcessOne decodes and delivers a single queued message. Split out
// so tests can feed raw payloads without a live redis.
func (w *Worker) ProcessOne(ctx context.Context, raw []byte) {
	var msg notifications.PushMessage

	err := json.Unmarshal(raw, &msg)

	if err != nil {
		w.log.Error("dropping undecodable push message", "err", err)
		if w.prom != nil {
			w.prom.PushResults.WithLabelValues("unknown", "failed").Inc()
		}
		return
	}

	start := time.Now()

	err = w.notifier.SendPush(ctx, msg)

	result := "done"
	if err != nil {
		result = "failed"
		w.log.Error("push delivery failed", "user", msg.UserID, "kind", msg.Kind, "err", err)
	} else {
		w.log.Debug("push delivered", "user", msg.UserID, "kind", msg.Kind)
	}

	if w.prom != nil {
		w.prom.PushDuration.WithLabelValues(msg.Kind, result).Observe(time.Since(start).Seconds())
		w.prom.PushResults.WithLabelValues(msg.Kind, result).Inc()
	}
}
