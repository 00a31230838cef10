package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/booking"
	"github.com/geocoder89/karigarhub/internal/domain/review"
	"github.com/geocoder89/karigarhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ReviewStore interface {
	Create(ctx context.Context, rv review.Review) (review.Review, error)
	ListForProvider(ctx context.Context, providerID string) ([]review.Review, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
}

type ReviewsHandler struct {
	repo     ReviewStore
	bookings BookingReader
}

func NewReviewsHandler(repo ReviewStore, bookings BookingReader) *ReviewsHandler {
	return &ReviewsHandler{repo: repo, bookings: bookings}
}

// CreateReview lets the client behind a completed booking rate the
// provider. One review per booking, enforced by a unique index.
func (h *ReviewsHandler) CreateReview(ctx *gin.Context) {
	bookingID := ctx.Param("id")

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req review.CreateReviewRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	b, err := h.bookings.GetByID(cctx, bookingID)

	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			RespondNotFound(ctx, "Booking not found")
			return
		}

		RespondInternal(ctx, "Could not create review")
		return
	}

	if b.ClientID != userID {
		RespondForbidden(ctx, "Only the posting owner can review this booking")
		return
	}

	if b.Status != booking.StatusCompleted {
		RespondConflict(ctx, "not_completed", "Only completed bookings can be reviewed.")
		return
	}

	rv, err := h.repo.Create(cctx, review.Review{
		BookingID:  b.ID,
		PostingID:  b.PostingID,
		AuthorID:   userID,
		ProviderID: b.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})

	if err != nil {
		if errors.Is(err, review.ErrAlreadyReviewed) {
			RespondConflict(ctx, "already_reviewed", "This booking has already been reviewed.")
			return
		}

		RespondInternal(ctx, "Could not create review")
		return
	}

	ctx.JSON(http.StatusCreated, rv)
}

// ListProviderReviews is public: anyone browsing providers can read
// their review history.
func (h *ReviewsHandler) ListProviderReviews(ctx *gin.Context) {
	providerID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	reviews, err := h.repo.ListForProvider(cctx, providerID)

	if err != nil {
		RespondInternal(ctx, "Could not list reviews")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":   len(reviews),
		"reviews": reviews,
	})
}
