package booking

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrAlreadyBooked     = errors.New("provider already booked this posting")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
)

type Booking struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	PostingID  string    `bson:"postingId" json:"postingId"`
	ClientID   string    `bson:"clientId" json:"clientId"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Status     string    `bson:"status" json:"status"`
	Note       string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CanTransition encodes the allowed lifecycle:
// pending -> accepted|declined, accepted -> completed.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusDeclined
	case StatusAccepted:
		return to == StatusCompleted
	}
	return false
}

type CreateBookingRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted declined completed"`
}
