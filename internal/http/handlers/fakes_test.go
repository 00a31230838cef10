package handlers_test

import (
	"context"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/booking"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/domain/pendingreg"
	"github.com/geocoder89/karigarhub/internal/domain/posting"
	"github.com/geocoder89/karigarhub/internal/domain/review"
	"github.com/geocoder89/karigarhub/internal/email"
	"github.com/geocoder89/karigarhub/internal/http/middlewares"
	"github.com/geocoder89/karigarhub/internal/notifications"
	"github.com/geocoder89/karigarhub/internal/realtime"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

// same, but with an identity already on the context

func setupAuthedRouter(method, path, userID, role string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		middlewares.SetIdentity(c, userID, role)
		c.Next()
	}, h)

	return r
}

// Fake repository implementations of the handler-site interfaces.
// One fake per store; every method delegates to an optional fn field.

type fakeUsersRepo struct {
	getByIDFn          func(ctx context.Context, id string) (identity.User, error)
	getByEmailFn       func(ctx context.Context, email string) (identity.User, error)
	getByPhoneFn       func(ctx context.Context, phone string) (identity.User, error)
	getByIdentifierFn  func(ctx context.Context, identifier string) (identity.User, error)
	createFn           func(ctx context.Context, u identity.User) (identity.User, error)
	overwritePhoneFn   func(ctx context.Context, id, name, role, passwordHash string) (identity.User, error)
	updateProfileFn    func(ctx context.Context, id string, req identity.UpdateProfileRequest) (identity.User, error)
	setAvatarFn        func(ctx context.Context, id, url string) (identity.User, error)
	setVerificationFn  func(ctx context.Context, id string, v identity.Verification) (identity.User, error)
	setVerifStatusFn   func(ctx context.Context, id, status string) (identity.User, error)
	setResetCodeFn     func(ctx context.Context, id, code string, expires time.Time) error
	markResetFn        func(ctx context.Context, id string) error
	resetPasswordFn    func(ctx context.Context, id, passwordHash string) error
	clearResetCodeFn   func(ctx context.Context, id string) error
	listFn             func(ctx context.Context, filter identity.ListFilter) ([]identity.User, error)
	deleteFn           func(ctx context.Context, id string) error
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (identity.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return identity.User{}, identity.ErrNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return identity.User{}, identity.ErrNotFound
}

func (f *fakeUsersRepo) GetByPhone(ctx context.Context, phone string) (identity.User, error) {
	if f.getByPhoneFn != nil {
		return f.getByPhoneFn(ctx, phone)
	}
	return identity.User{}, identity.ErrNotFound
}

func (f *fakeUsersRepo) GetByIdentifier(ctx context.Context, identifier string) (identity.User, error) {
	if f.getByIdentifierFn != nil {
		return f.getByIdentifierFn(ctx, identifier)
	}
	return identity.User{}, identity.ErrNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, u identity.User) (identity.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	u.ID = "user-1"
	return u, nil
}

func (f *fakeUsersRepo) OverwritePhoneRegistration(ctx context.Context, id, name, role, passwordHash string) (identity.User, error) {
	if f.overwritePhoneFn != nil {
		return f.overwritePhoneFn(ctx, id, name, role, passwordHash)
	}
	return identity.User{}, identity.ErrNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id string, req identity.UpdateProfileRequest) (identity.User, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, id, req)
	}
	return identity.User{ID: id, Name: req.Name}, nil
}

func (f *fakeUsersRepo) SetAvatar(ctx context.Context, id, url string) (identity.User, error) {
	if f.setAvatarFn != nil {
		return f.setAvatarFn(ctx, id, url)
	}
	return identity.User{ID: id, AvatarURL: url}, nil
}

func (f *fakeUsersRepo) SetVerification(ctx context.Context, id string, v identity.Verification) (identity.User, error) {
	if f.setVerificationFn != nil {
		return f.setVerificationFn(ctx, id, v)
	}
	return identity.User{ID: id, Verification: &v}, nil
}

func (f *fakeUsersRepo) SetVerificationStatus(ctx context.Context, id, status string) (identity.User, error) {
	if f.setVerifStatusFn != nil {
		return f.setVerifStatusFn(ctx, id, status)
	}
	return identity.User{}, identity.ErrNotFound
}

func (f *fakeUsersRepo) SetResetCode(ctx context.Context, id, code string, expires time.Time) error {
	if f.setResetCodeFn != nil {
		return f.setResetCodeFn(ctx, id, code, expires)
	}
	return nil
}

func (f *fakeUsersRepo) MarkResetVerified(ctx context.Context, id string) error {
	if f.markResetFn != nil {
		return f.markResetFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersRepo) ResetPassword(ctx context.Context, id, passwordHash string) error {
	if f.resetPasswordFn != nil {
		return f.resetPasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (f *fakeUsersRepo) ClearResetCode(ctx context.Context, id string) error {
	if f.clearResetCodeFn != nil {
		return f.clearResetCodeFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersRepo) List(ctx context.Context, filter identity.ListFilter) ([]identity.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []identity.User{}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakePendingRepo struct {
	replaceFn      func(ctx context.Context, email, code string, expiresAt time.Time) (pendingreg.PendingRegistration, error)
	getFn          func(ctx context.Context, id string) (pendingreg.PendingRegistration, error)
	markVerifiedFn func(ctx context.Context, id string) error
	deleteFn       func(ctx context.Context, id string) error
}

func (f *fakePendingRepo) Replace(ctx context.Context, email, code string, expiresAt time.Time) (pendingreg.PendingRegistration, error) {
	if f.replaceFn != nil {
		return f.replaceFn(ctx, email, code, expiresAt)
	}
	return pendingreg.PendingRegistration{ID: "pending-1", Email: email, Code: code, ExpiresAt: expiresAt}, nil
}

func (f *fakePendingRepo) GetByID(ctx context.Context, id string) (pendingreg.PendingRegistration, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return pendingreg.PendingRegistration{}, pendingreg.ErrNotFound
}

func (f *fakePendingRepo) MarkVerified(ctx context.Context, id string) error {
	if f.markVerifiedFn != nil {
		return f.markVerifiedFn(ctx, id)
	}
	return nil
}

func (f *fakePendingRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeSender struct {
	sendFn func(ctx context.Context, msg email.Message) error
	sent   []email.Message
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakePostingsRepo struct {
	createFn func(ctx context.Context, ownerID string, req posting.CreatePostingRequest) (posting.Posting, error)
	getFn    func(ctx context.Context, id string) (posting.Posting, error)
	listFn   func(ctx context.Context, limit int64) ([]posting.Posting, error)
	updateFn func(ctx context.Context, id string, req posting.UpdatePostingRequest) (posting.Posting, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakePostingsRepo) Create(ctx context.Context, ownerID string, req posting.CreatePostingRequest) (posting.Posting, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, req)
	}
	return posting.Posting{ID: "posting-1", OwnerID: ownerID, Title: req.Title, Status: posting.StatusOpen}, nil
}

func (f *fakePostingsRepo) GetByID(ctx context.Context, id string) (posting.Posting, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return posting.Posting{}, posting.ErrNotFound
}

func (f *fakePostingsRepo) ListOpen(ctx context.Context, limit int64) ([]posting.Posting, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return []posting.Posting{}, nil
}

func (f *fakePostingsRepo) Update(ctx context.Context, id string, req posting.UpdatePostingRequest) (posting.Posting, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return posting.Posting{}, posting.ErrNotFound
}

func (f *fakePostingsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeBookingsRepo struct {
	createFn       func(ctx context.Context, b booking.Booking) (booking.Booking, error)
	getFn          func(ctx context.Context, id string) (booking.Booking, error)
	updateStatusFn func(ctx context.Context, id, from, to string) (booking.Booking, error)
	listFn         func(ctx context.Context, userID string) ([]booking.Booking, error)
}

func (f *fakeBookingsRepo) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	b.ID = "booking-1"
	b.Status = booking.StatusPending
	return b, nil
}

func (f *fakeBookingsRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return booking.Booking{}, booking.ErrNotFound
}

func (f *fakeBookingsRepo) UpdateStatus(ctx context.Context, id, from, to string) (booking.Booking, error) {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, from, to)
	}
	return booking.Booking{}, booking.ErrNotFound
}

func (f *fakeBookingsRepo) ListForUser(ctx context.Context, userID string) ([]booking.Booking, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []booking.Booking{}, nil
}

type fakeReviewsRepo struct {
	createFn func(ctx context.Context, rv review.Review) (review.Review, error)
	listFn   func(ctx context.Context, providerID string) ([]review.Review, error)
}

func (f *fakeReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	if f.createFn != nil {
		return f.createFn(ctx, rv)
	}
	rv.ID = "review-1"
	return rv, nil
}

func (f *fakeReviewsRepo) ListForProvider(ctx context.Context, providerID string) ([]review.Review, error) {
	if f.listFn != nil {
		return f.listFn(ctx, providerID)
	}
	return []review.Review{}, nil
}

// fakePushQueue and fakePublisher record what the booking handler
// emits alongside its writes.

type fakePushQueue struct {
	enqueued []notifications.PushMessage
}

func (f *fakePushQueue) Enqueue(ctx context.Context, msg notifications.PushMessage) error {
	f.enqueued = append(f.enqueued, msg)
	return nil
}

type fakePublisher struct {
	published []realtime.BookingEvent
}

func (f *fakePublisher) PublishBookingEvent(ctx context.Context, ev realtime.BookingEvent) error {
	f.published = append(f.published, ev)
	return nil
}

type fakePurger struct {
	postingsDeleted []string
	bookingsDeleted []string
	reviewsDeleted  []string
}

func (f *fakePurger) DeletePostingsByOwner(ctx context.Context, ownerID string) error {
	f.postingsDeleted = append(f.postingsDeleted, ownerID)
	return nil
}

func (f *fakePurger) DeleteBookingsByUser(ctx context.Context, userID string) error {
	f.bookingsDeleted = append(f.bookingsDeleted, userID)
	return nil
}

func (f *fakePurger) DeleteReviewsByUser(ctx context.Context, userID string) error {
	f.reviewsDeleted = append(f.reviewsDeleted, userID)
	return nil
}
