package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/domain/pendingreg"
	"github.com/geocoder89/karigarhub/internal/email"
	"github.com/geocoder89/karigarhub/internal/security"
	"github.com/gin-gonic/gin"
)

type PendingStore interface {
	Replace(ctx context.Context, email, code string, expiresAt time.Time) (pendingreg.PendingRegistration, error)
	GetByID(ctx context.Context, id string) (pendingreg.PendingRegistration, error)
	MarkVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type IdentityLookup interface {
	GetByEmail(ctx context.Context, email string) (identity.User, error)
	GetByPhone(ctx context.Context, phone string) (identity.User, error)
}

type OTPHandler struct {
	users   IdentityLookup
	pending PendingStore
	sender  email.Sender
	otpTTL  time.Duration
}

func NewOTPHandler(users IdentityLookup, pending PendingStore, sender email.Sender, otpTTL time.Duration) *OTPHandler {
	return &OTPHandler{
		users:   users,
		pending: pending,
		sender:  sender,
		otpTTL:  otpTTL,
	}
}

type SendEmailOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyEmailOTPRequest struct {
	TempUserID string `json:"tempUserId" binding:"required"`
	Code       string `json:"code" binding:"required,len=6"`
}

type ValidateUserRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,min=7,max=15"`
}

// SendEmailOTP starts an email registration: refuses claimed emails,
// replaces any earlier pending code, dispatches the fresh one.
func (h *OTPHandler) SendEmailOTP(ctx *gin.Context) {
	var req SendEmailOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	claim, err := identity.ResolveClaim(req.Email, "")

	if err != nil {
		RespondBadRequest(ctx, "claim_invalid", "A valid email is required.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	_, err = h.users.GetByEmail(cctx, claim.Value)

	if err == nil {
		RespondBadRequest(ctx, "email_exists", "An account with this email already exists.")
		return
	}

	if !errors.Is(err, identity.ErrNotFound) {
		RespondInternal(ctx, "Could not start registration")
		return
	}

	code, err := security.GenerateOTP()

	if err != nil {
		RespondInternal(ctx, "Could not start registration")
		return
	}

	expiresAt := time.Now().UTC().Add(h.otpTTL)

	p, err := h.pending.Replace(cctx, claim.Value, code, expiresAt)

	if err != nil {
		RespondInternal(ctx, "Could not start registration")
		return
	}

	err = h.sender.Send(cctx, email.Message{
		ToEmail: claim.Value,
		Subject: "Your KarigarHub verification code",
		Text:    "Your verification code is " + code + ". It expires in 10 minutes.",
	})

	if err != nil {
		// compensate: do not leave an unsendable code behind
		_ = h.pending.Delete(cctx, p.ID)
		RespondInternal(ctx, "Could not send verification email")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Verification code sent",
		"tempUserId": p.ID,
	})
}

// VerifyEmailOTP proves control of the claimed email. It only flips
// the verified flag; the account is committed later by /register so
// the client can still abandon the flow.
func (h *OTPHandler) VerifyEmailOTP(ctx *gin.Context) {
	var req VerifyEmailOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	p, err := h.pending.GetByID(cctx, req.TempUserID)

	if err != nil {
		if errors.Is(err, pendingreg.ErrNotFound) {
			RespondBadRequest(ctx, "invalid_or_expired", "Code is invalid or has expired.")
			return
		}

		RespondInternal(ctx, "Could not verify code")
		return
	}

	if !p.Accepts(req.Code, time.Now().UTC()) {
		RespondBadRequest(ctx, "invalid_or_expired", "Code is invalid or has expired.")
		return
	}

	err = h.pending.MarkVerified(cctx, p.ID)

	if err != nil {
		RespondInternal(ctx, "Could not verify code")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Email verified",
		"tempUserId": p.ID,
	})
}

// ValidateUser is the availability probe the client calls before
// starting a registration.
func (h *OTPHandler) ValidateUser(ctx *gin.Context) {
	var req ValidateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	claim, err := identity.ResolveClaim(req.Email, req.Phone)

	if err != nil {
		RespondBadRequest(ctx, "claim_invalid", "Provide exactly one of email or phone.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	switch claim.Kind {
	case identity.ClaimEmail:
		_, err = h.users.GetByEmail(cctx, claim.Value)
	case identity.ClaimPhone:
		_, err = h.users.GetByPhone(cctx, claim.Value)
	}

	if err == nil {
		RespondBadRequest(ctx, "identifier_taken", "An account with this identifier already exists.")
		return
	}

	if !errors.Is(err, identity.ErrNotFound) {
		RespondInternal(ctx, "Could not validate identifier")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Identifier is available"})
}
