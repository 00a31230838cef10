package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/email"
	"github.com/geocoder89/karigarhub/internal/security"
	"github.com/gin-gonic/gin"
)

type ResetStore interface {
	GetByEmail(ctx context.Context, email string) (identity.User, error)
	SetResetCode(ctx context.Context, id, code string, expires time.Time) error
	MarkResetVerified(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	ClearResetCode(ctx context.Context, id string) error
}

// PasswordResetHandler drives the Requested -> CodeVerified -> Reset
// state machine stored as flags on the identity record itself.
type PasswordResetHandler struct {
	users  ResetStore
	sender email.Sender
	ttl    time.Duration
}

func NewPasswordResetHandler(users ResetStore, sender email.Sender, ttl time.Duration) *PasswordResetHandler {
	return &PasswordResetHandler{
		users:  users,
		sender: sender,
		ttl:    ttl,
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *PasswordResetHandler) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "No account with this email")
			return
		}

		RespondInternal(ctx, "Could not start password reset")
		return
	}

	code, err := security.GenerateOTP()

	if err != nil {
		RespondInternal(ctx, "Could not start password reset")
		return
	}

	expires := time.Now().UTC().Add(h.ttl)

	err = h.users.SetResetCode(cctx, u.ID, code, expires)

	if err != nil {
		RespondInternal(ctx, "Could not start password reset")
		return
	}

	err = h.sender.Send(cctx, email.Message{
		ToName:  u.Name,
		ToEmail: req.Email,
		Subject: "Your KarigarHub password reset code",
		Text:    "Your password reset code is " + code + ". It expires in 10 minutes.",
	})

	if err != nil {
		// compensate: clear the code so the record stays neutral
		_ = h.users.ClearResetCode(cctx, u.ID)
		RespondInternal(ctx, "Could not send reset email")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password reset code sent"})
}

func (h *PasswordResetHandler) VerifyResetCode(ctx *gin.Context) {
	var req VerifyResetCodeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		RespondBadRequest(ctx, "invalid_or_expired", "Code is invalid or has expired.")
		return
	}

	now := time.Now().UTC()

	if u.ResetCode == "" || u.ResetCode != req.Code || u.ResetCodeExpires == nil || !now.Before(*u.ResetCodeExpires) {
		RespondBadRequest(ctx, "invalid_or_expired", "Code is invalid or has expired.")
		return
	}

	err = h.users.MarkResetVerified(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not verify reset code")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Reset code verified"})
}

func (h *PasswordResetHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		RespondBadRequest(ctx, "not_verified", "Reset code has not been verified.")
		return
	}

	if !u.ResetVerified {
		RespondBadRequest(ctx, "not_verified", "Reset code has not been verified.")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not reset password")
		return
	}

	// stores the hash and clears code/expiry/verified in one write
	err = h.users.ResetPassword(cctx, u.ID, hash)

	if err != nil {
		RespondInternal(ctx, "Could not reset password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
