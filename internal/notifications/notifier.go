package notifications

import "context"



// Push kinds carried on the queue.
const (
	KindBookingCreated = "booking.created"
	KindBookingStatus  = "booking.status"
)

type PushMessage struct {
	UserID    string `json:"userId"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	BookingID string `json:"bookingId,omitempty"`
}

type Notifier interface {
	SendPush(ctx context.Context, msg PushMessage) error
}
