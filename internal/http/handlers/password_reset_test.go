package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/email"
	"github.com/geocoder89/karigarhub/internal/http/handlers"
)

func newResetHandler(users *fakeUsersRepo, sender *fakeSender) *handlers.PasswordResetHandler {
	return handlers.NewPasswordResetHandler(users, sender, 10*time.Minute)
}

func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		usersSetup     func(*fakeUsersRepo)
		senderSetup    func(*fakeSender)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"email": "asha@example.com"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e, Name: "Asha"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "ghost@example.com"}`,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "sender_failure_returns_500",
			body: `{"email": "asha@example.com"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e}, nil
				}
			},
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
			sender := &fakeSender{}

			if tt.usersSetup != nil {
				tt.usersSetup(users)
			}
			if tt.senderSetup != nil {
				tt.senderSetup(sender)
			}

			h := newResetHandler(users, sender)

			r := setupRouter(http.MethodPost, "/forgot-password", h.ForgotPassword)

			req := httptest.NewRequest(http.MethodPost, "/forgot-password", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// a failed dispatch must clear the reset code it just stored

func TestForgotPasswordCompensatesFailedDispatch(t *testing.T) {
	cleared := []string{}

	users := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, e string) (identity.User, error) {
			return identity.User{ID: "user-1", Email: e}, nil
		},
		clearResetCodeFn: func(ctx context.Context, id string) error {
			cleared = append(cleared, id)
			return nil
		},
	}

	sender := &fakeSender{
		sendFn: func(ctx context.Context, msg email.Message) error {
			return context.DeadlineExceeded
		},
	}

	h := newResetHandler(users, sender)

	r := setupRouter(http.MethodPost, "/forgot-password", h.ForgotPassword)

	req := httptest.NewRequest(http.MethodPost, "/forgot-password", bytes.NewBufferString(`{"email": "asha@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}

	if len(cleared) != 1 || cleared[0] != "user-1" {
		t.Fatalf("expected reset code to be cleared after failed dispatch, got %v", cleared)
	}
}

func TestVerifyResetCode(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(5 * time.Minute)
	past := now.Add(-5 * time.Minute)

	withReset := func(code string, expires time.Time) func(*fakeUsersRepo) {
		return func(f *fakeUsersRepo) {
			f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
				return identity.User{ID: "user-1", Email: e, ResetCode: code, ResetCodeExpires: &expires}, nil
			}
		}
	}

	tests := []struct {
		name           string
		body           string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"email": "asha@example.com", "code": "123456"}`,
			usersSetup:     withReset("123456", future),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "wrong_code",
			body:           `{"email": "asha@example.com", "code": "654321"}`,
			usersSetup:     withReset("123456", future),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "expired_code",
			body:           `{"email": "asha@example.com", "code": "123456"}`,
			usersSetup:     withReset("123456", past),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "no_reset_in_progress",
			body: `{"email": "asha@example.com", "code": "123456"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "ghost@example.com", "code": "123456"}`,
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

			h := newResetHandler(users, &fakeSender{})

			r := setupRouter(http.MethodPost, "/verify-reset-code", h.VerifyResetCode)

			req := httptest.NewRequest(http.MethodPost, "/verify-reset-code", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success_after_verification",
			body: `{"email": "asha@example.com", "password": "newpass99"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e, ResetVerified: true}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "rejected_before_verification",
			body: `{"email": "asha@example.com", "password": "newpass99"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e, ResetCode: "123456"}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "ghost@example.com", "password": "newpass99"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "short_password",
			body: `{"email": "asha@example.com", "password": "abc"}`,
			usersSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, e string) (identity.User, error) {
					return identity.User{ID: "user-1", Email: e, ResetVerified: true}, nil
				}
			},
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

			h := newResetHandler(users, &fakeSender{})

			r := setupRouter(http.MethodPost, "/reset-password", h.ResetPassword)

			req := httptest.NewRequest(http.MethodPost, "/reset-password", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
