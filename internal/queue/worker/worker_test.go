package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/karigarhub/internal/notifications"
)

type fakeNotifier struct {
	sendFn func(ctx context.Context, msg notifications.PushMessage) error
	sent   []notifications.PushMessage
}

func (f *fakeNotifier) SendPush(ctx context.Context, msg notifications.PushMessage) error {
	f.sent = append(f.sent, msg)
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessOneDeliversMessage(t *testing.T) {
	notifier := &fakeNotifier{}

	w := New(Config{}, nil, notifier, quietLogger(), nil)

	raw, err := json.Marshal(notifications.PushMessage{
		UserID:    "user-1",
		Kind:      notifications.KindBookingCreated,
		Title:     "New booking request",
		BookingID: "booking-1",
	})
	if err != nil {
		t.Fatalf("marshal setup failed: %v", err)
	}

	w.ProcessOne(context.Background(), raw)

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(notifier.sent))
	}

	if notifier.sent[0].UserID != "user-1" || notifier.sent[0].BookingID != "booking-1" {
		t.Fatalf("delivered wrong message: %+v", notifier.sent[0])
	}
}

func TestProcessOneDropsUndecodablePayload(t *testing.T) {
	notifier := &fakeNotifier{}

	w := New(Config{}, nil, notifier, quietLogger(), nil)

	w.ProcessOne(context.Background(), []byte("{not json"))

	if len(notifier.sent) != 0 {
		t.Fatalf("undecodable payload must not reach the notifier, got %d sends", len(notifier.sent))
	}
}

// at-most-once: a failed send is logged and dropped, never retried

func TestProcessOneDoesNotRetryFailedSend(t *testing.T) {
	notifier := &fakeNotifier{
		sendFn: func(ctx context.Context, msg notifications.PushMessage) error {
			return errors.New("provider down")
		},
	}

	w := New(Config{}, nil, notifier, quietLogger(), nil)

	raw, _ := json.Marshal(notifications.PushMessage{UserID: "user-1", Kind: notifications.KindBookingStatus})

	w.ProcessOne(context.Background(), raw)

	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", len(notifier.sent))
	}
}

func TestRetryBackoffGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)

	for i := 0; i < 10; i++ {
		d := RetryBackoff(i)

		if d <= 0 {
			t.Fatalf("backoff %d must be positive, got %v", i, d)
		}

		// cap plus jitter headroom
		if d > 31*time.Second {
			t.Fatalf("backoff %d exceeds cap: %v", i, d)
		}

		if i > 0 && i < 5 && d < prev/4 {
			t.Fatalf("backoff should broadly grow, got %v after %v", d, prev)
		}
		prev = d
	}
}
