package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/domain/pendingreg"
	"github.com/geocoder89/karigarhub/internal/email"
	"github.com/geocoder89/karigarhub/internal/http/handlers"
)

func newOTPHandler(users *fakeUsersRepo, pending *fakePendingRepo, sender *fakeSender) *handlers.OTPHandler {
	return handlers.NewOTPHandler(users, pending, sender, 10*time.Minute)
}

func TestSendEmailOTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		usersSetup     func(*fakeUsersRepo)
		senderSetup    func(*fakeSender)
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"email": "new@example.com"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name: "email_already_registered",
			body: `{"email": "taken@example.com"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid_email",
			body:           `{"email": "not-an-email"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "sender_failure_returns_500",
			body: `{"email": "new@example.com"}`,
			senderSetup: func(f *fakeSender) {
				f.sendFn = func(ctx context.Context, msg email.Message) error {
					return context.DeadlineExceeded
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsersRepo{}
			pending := &fakePendingRepo{}
			sender := &fakeSender{}

			if tt.usersSetup != nil {
				tt.usersSetup(users)
			}
			if tt.senderSetup != nil {
				tt.senderSetup(sender)
			}

			h := newOTPHandler(users, pending, sender)

			r := setupRouter(http.MethodPost, "/send-email-otp", h.SendEmailOTP)

			req := httptest.NewRequest(http.MethodPost, "/send-email-otp", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// a failed dispatch must delete the pending row it just created

func TestSendEmailOTPCompensatesFailedDispatch(t *testing.T) {
	users := &fakeUsersRepo{}

	deleted := []string{}

	pending := &fakePendingRepo{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}

	sender := &fakeSender{
		sendFn: func(ctx context.Context, msg email.Message) error {
			return context.DeadlineExceeded
		},
	}

	h := newOTPHandler(users, pending, sender)

	r := setupRouter(http.MethodPost, "/send-email-otp", h.SendEmailOTP)

	req := httptest.NewRequest(http.MethodPost, "/send-email-otp", bytes.NewBufferString(`{"email": "new@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}

	if len(deleted) != 1 || deleted[0] != "pending-1" {
		t.Fatalf("expected pending row to be deleted after failed dispatch, got %v", deleted)
	}
}

func TestVerifyEmailOTP(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		pendingSetup   func(*fakePendingRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"tempUserId": "pending-1", "code": "123456"}`,
			pendingSetup: func(f *fakePendingRepo) {
				f.getFn = func(ctx context.Context, id string) (pendingreg.PendingRegistration, error) {
					return pendingreg.PendingRegistration{
						ID:        id,
						Email:     "new@example.com",
						Code:      "123456",
						ExpiresAt: now.Add(5 * time.Minute),
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "wrong_code",
			body: `{"tempUserId": "pending-1", "code": "654321"}`,
			pendingSetup: func(f *fakePendingRepo) {
				f.getFn = func(ctx context.Context, id string) (pendingreg.PendingRegistration, error) {
					return pendingreg.PendingRegistration{
						ID:        id,
						Code:      "123456",
						ExpiresAt: now.Add(5 * time.Minute),
					}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "expired_code",
			body: `{"tempUserId": "pending-1", "code": "123456"}`,
			pendingSetup: func(f *fakePendingRepo) {
				f.getFn = func(ctx context.Context, id string) (pendingreg.PendingRegistration, error) {
					return pendingreg.PendingRegistration{
						ID:        id,
						Code:      "123456",
						ExpiresAt: now.Add(-1 * time.Minute),
					}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_temp_user",
			body:           `{"tempUserId": "nope", "code": "123456"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_code",
			body:           `{"tempUserId": "pending-1"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			pending := &fakePendingRepo{}

			if tt.pendingSetup != nil {
				tt.pendingSetup(pending)
			}

			h := newOTPHandler(&fakeUsersRepo{}, pending, &fakeSender{})

			r := setupRouter(http.MethodPost, "/verify-email-otp", h.VerifyEmailOTP)

			req := httptest.NewRequest(http.MethodPost, "/verify-email-otp", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name:           "email_available",
			body:           `{"email": "free@example.com"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "phone_available",
			body:           `{"phone": "9876543210"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name: "phone_taken",
			body: `{"phone": "9876543210"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByPhoneFn = func(ctx context.Context, p string) (identity.User, error) {
					return identity.User{ID: "user-1", Phone: p}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "both_set_is_ambiguous",
			body:           `{"email": "a@b.com", "phone": "9876543210"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "neither_set_is_ambiguous",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsersRepo{}

			if tt.usersSetup != nil {
				tt.usersSetup(users)
			}

			h := newOTPHandler(users, &fakePendingRepo{}, &fakeSender{})

			r := setupRouter(http.MethodPost, "/validate-user", h.ValidateUser)

			req := httptest.NewRequest(http.MethodPost, "/validate-user", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
