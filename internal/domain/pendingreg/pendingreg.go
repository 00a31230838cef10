package pendingreg

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("pending registration not found")
	ErrExpired  = errors.New("code invalid or expired")
)

// PendingRegistration bridges the OTP step and the final register
// commit. At most one exists per email; the collection carries a TTL
// index on expiresAt so abandoned rows age out on their own.
type PendingRegistration struct {
	ID        string    `bson:"_id,omitempty" json:"tempUserId"`
	Email     string    `bson:"email" json:"email"`
	Code      string    `bson:"code" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	Verified  bool      `bson:"verified" json:"verified"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Accepts reports whether the supplied code proves control of the
// claimed email right now.
func (p PendingRegistration) Accepts(code string, now time.Time) bool {
	return p.Code == code && now.Before(p.ExpiresAt)
}
