package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// BookingChannel carries booking lifecycle events for any realtime
// consumer (websocket gateways, dashboards) subscribed to it.
const BookingChannel = "bookings.events"

type BookingEvent struct {
	Type       string    `json:"type"` // booking.created | booking.status
	BookingID  string    `json:"bookingId"`
	PostingID  string    `json:"postingId"`
	ClientID   string    `json:"clientId"`
	ProviderID string    `json:"providerId"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}

type Publisher struct {
	redisdb *redis.Client
}

func NewPublisher(redisdb *redis.Client) *Publisher {
	return &Publisher{redisdb: redisdb}
}

func (p *Publisher) PublishBookingEvent(ctx context.Context, ev BookingEvent) error {
	raw, err := json.Marshal(ev)

	if err != nil {
		return err
	}

	return p.redisdb.Publish(ctx, BookingChannel, raw).Err()
}
