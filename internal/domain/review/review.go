package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("booking already reviewed")
)

type Review struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	BookingID  string    `bson:"bookingId" json:"bookingId"`
	PostingID  string    `bson:"postingId" json:"postingId"`
	AuthorID   string    `bson:"authorId" json:"authorId"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Rating     int       `bson:"rating" json:"rating"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}
