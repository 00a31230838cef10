package mongodb

import "context"

// Purger groups the per-collection cascade deletes behind the admin
// account-removal flow.
type Purger struct {
	postings *PostingsRepo
	bookings *BookingsRepo
	reviews  *ReviewsRepo
}

func NewPurger(postings *PostingsRepo, bookings *BookingsRepo, reviews *ReviewsRepo) *Purger {
	return &Purger{postings: postings, bookings: bookings, reviews: reviews}
}

func (p *Purger) DeletePostingsByOwner(ctx context.Context, ownerID string) error {
	return p.postings.DeleteByOwner(ctx, ownerID)
}

func (p *Purger) DeleteBookingsByUser(ctx context.Context, userID string) error {
	return p.bookings.DeleteByUser(ctx, userID)
}

func (p *Purger) DeleteReviewsByUser(ctx context.Context, userID string) error {
	return p.reviews.DeleteByUser(ctx, userID)
}
