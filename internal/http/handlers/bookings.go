package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/booking"
	"github.com/geocoder89/karigarhub/internal/domain/posting"
	"github.com/geocoder89/karigarhub/internal/http/middlewares"
	"github.com/geocoder89/karigarhub/internal/notifications"
	"github.com/geocoder89/karigarhub/internal/realtime"
	"github.com/gin-gonic/gin"
)

type BookingStore interface {
	Create(ctx context.Context, b booking.Booking) (booking.Booking, error)
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	UpdateStatus(ctx context.Context, id, from, to string) (booking.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]booking.Booking, error)
}

type PostingReader interface {
	GetByID(ctx context.Context, id string) (posting.Posting, error)
}

type PushEnqueuer interface {
	Enqueue(ctx context.Context, msg notifications.PushMessage) error
}

type BookingEventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev realtime.BookingEvent) error
}

type BookingsHandler struct {
	repo      BookingStore
	postings  PostingReader
	pushes    PushEnqueuer
	publisher BookingEventPublisher
}

func NewBookingsHandler(repo BookingStore, postings PostingReader, pushes PushEnqueuer, publisher BookingEventPublisher) *BookingsHandler {
	return &BookingsHandler{
		repo:      repo,
		postings:  postings,
		pushes:    pushes,
		publisher: publisher,
	}
}

// CreateBooking lets a provider offer themselves for a posting. The
// queued push and the pub/sub event are fire-and-forget: the booking
// write has already committed.
func (h *BookingsHandler) CreateBooking(ctx *gin.Context) {
	postingID := ctx.Param("id")

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req booking.CreateBookingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	p, err := h.postings.GetByID(cctx, postingID)

	if err != nil {
		if errors.Is(err, posting.ErrNotFound) {
			RespondNotFound(ctx, "Posting not found")
			return
		}

		RespondInternal(ctx, "Could not create booking")
		return
	}

	if p.Status != posting.StatusOpen {
		RespondConflict(ctx, "posting_closed", "This posting is no longer open.")
		return
	}

	if p.OwnerID == userID {
		RespondBadRequest(ctx, "own_posting", "You cannot book your own posting.")
		return
	}

	b, err := h.repo.Create(cctx, booking.Booking{
		PostingID:  p.ID,
		ClientID:   p.OwnerID,
		ProviderID: userID,
		Note:       req.Note,
	})

	if err != nil {
		if errors.Is(err, booking.ErrAlreadyBooked) {
			RespondConflict(ctx, "already_booked", "You already have a booking for this posting.")
			return
		}

		RespondInternal(ctx, "Could not create booking")
		return
	}

	h.notify(cctx, b, notifications.KindBookingCreated, p.OwnerID,
		"New booking request", "A provider offered to take your posting.")

	ctx.JSON(http.StatusCreated, b)
}

// UpdateStatus drives the booking lifecycle. Only the posting owner
// may accept or decline; only the provider may mark completed.
func (h *BookingsHandler) UpdateStatus(ctx *gin.Context) {
	bookingID := ctx.Param("id")

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req booking.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	b, err := h.repo.GetByID(cctx, bookingID)

	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			RespondNotFound(ctx, "Booking not found")
			return
		}

		RespondInternal(ctx, "Could not update booking")
		return
	}

	switch req.Status {
	case booking.StatusAccepted, booking.StatusDeclined:
		if b.ClientID != userID {
			RespondForbidden(ctx, "Only the posting owner can accept or decline")
			return
		}
	case booking.StatusCompleted:
		if b.ProviderID != userID {
			RespondForbidden(ctx, "Only the provider can mark a booking completed")
			return
		}
	}

	if !booking.CanTransition(b.Status, req.Status) {
		RespondConflict(ctx, "invalid_transition", "Booking cannot move from "+b.Status+" to "+req.Status+".")
		return
	}

	updated, err := h.repo.UpdateStatus(cctx, b.ID, b.Status, req.Status)

	if err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) {
			// a concurrent writer got there first
			RespondConflict(ctx, "invalid_transition", "Booking status changed concurrently.")
			return
		}

		RespondInternal(ctx, "Could not update booking")
		return
	}

	// notify the other party
	target := updated.ProviderID
	if userID == updated.ProviderID {
		target = updated.ClientID
	}

	h.notify(cctx, updated, notifications.KindBookingStatus, target,
		"Booking "+updated.Status, "Your booking is now "+updated.Status+".")

	ctx.JSON(http.StatusOK, updated)
}

func (h *BookingsHandler) ListMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	bookings, err := h.repo.ListForUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list bookings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":    len(bookings),
		"bookings": bookings,
	})
}

func (h *BookingsHandler) notify(ctx context.Context, b booking.Booking, kind, targetUserID, title, body string) {
	if h.pushes != nil {
		_ = h.pushes.Enqueue(ctx, notifications.PushMessage{
			UserID:    targetUserID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			BookingID: b.ID,
		})
	}

	if h.publisher != nil {
		_ = h.publisher.PublishBookingEvent(ctx, realtime.BookingEvent{
			Type:       kind,
			BookingID:  b.ID,
			PostingID:  b.PostingID,
			ClientID:   b.ClientID,
			ProviderID: b.ProviderID,
			Status:     b.Status,
			At:         time.Now().UTC(),
		})
	}
}
