package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/karigarhub/internal/auth"
	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/domain/pendingreg"
	"github.com/geocoder89/karigarhub/internal/security"
	"github.com/gin-gonic/gin"
)

type IdentityStore interface {
	IdentityLookup
	GetByIdentifier(ctx context.Context, identifier string) (identity.User, error)
	Create(ctx context.Context, u identity.User) (identity.User, error)
	OverwritePhoneRegistration(ctx context.Context, id, name, role, passwordHash string) (identity.User, error)
}

type AuthHandler struct {
	users   IdentityStore
	pending PendingStore
	jwt     *auth.Manager
}

func NewAuthHandler(users IdentityStore, pending PendingStore, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:   users,
		pending: pending,
		jwt:     jwtManager,
	}
}

type RegisterRequest struct {
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone" binding:"omitempty,min=7,max=15"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"required,oneof=client worker thekedar consultant"`
	TempUserID string `json:"tempUserId"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Register commits an account. Email path requires a verified pending
// registration; phone path is trust-on-claim (deliberately weaker).
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	claim, err := identity.ResolveClaim(req.Email, req.Phone)

	if err != nil {
		RespondBadRequest(ctx, "claim_invalid", "Provide exactly one of email or phone.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	var u identity.User

	switch claim.Kind {
	case identity.ClaimEmail:
		u, err = h.registerWithEmail(cctx, claim.Value, req, hash)
	case identity.ClaimPhone:
		u, err = h.registerWithPhone(cctx, claim.Value, req, hash)
	}

	if err != nil {
		switch {
		case errors.Is(err, pendingreg.ErrNotFound), errors.Is(err, pendingreg.ErrExpired):
			RespondBadRequest(ctx, "invalid_or_expired", "Email is not verified. Request a new code.")
		case errors.Is(err, identity.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Email is already in use.")
		case errors.Is(err, identity.ErrPhoneTaken):
			RespondBadRequest(ctx, "phone_taken", "An account with this phone already exists. Please log in.")
		default:
			RespondInternal(ctx, "Could not create account")
		}
		return
	}

	token, err := h.jwt.GenerateSessionToken(u.ID, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Registration successful",
		"token":      token,
		"userId":     u.ID,
		"name":       u.Name,
		"role":       u.Role,
		"isVerified": u.Verified,
	})
}

func (h *AuthHandler) registerWithEmail(ctx context.Context, emailAddr string, req RegisterRequest, hash string) (identity.User, error) {
	if req.TempUserID == "" {
		return identity.User{}, pendingreg.ErrNotFound
	}

	p, err := h.pending.GetByID(ctx, req.TempUserID)

	if err != nil {
		return identity.User{}, err
	}

	// the pending record must be the verified one for this exact email
	if !p.Verified || p.Email != emailAddr {
		return identity.User{}, pendingreg.ErrExpired
	}

	u, err := h.users.Create(ctx, identity.User{
		Email:        emailAddr,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
		Verified:     true,
	})

	if err != nil {
		return identity.User{}, err
	}

	// consumed; best effort, the TTL index mops up stragglers
	_ = h.pending.Delete(ctx, p.ID)

	return u, nil
}

func (h *AuthHandler) registerWithPhone(ctx context.Context, phone string, req RegisterRequest, hash string) (identity.User, error) {
	existing, err := h.users.GetByPhone(ctx, phone)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return h.users.Create(ctx, identity.User{
				Phone:        phone,
				Name:         req.Name,
				Role:         req.Role,
				PasswordHash: hash,
				Verified:     true,
			})
		}

		return identity.User{}, err
	}

	// A verified account is never overwritten on re-claim; only an
	// abandoned unverified registration may be retaken.
	if existing.Verified {
		return identity.User{}, identity.ErrPhoneTaken
	}

	return h.users.OverwritePhoneRegistration(ctx, existing.ID, req.Name, req.Role, hash)
}

// Login accepts an email or phone as the identifier. All failure
// modes return the same envelope so callers cannot probe for
// accounts.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByIdentifier(cctx, req.Identifier)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Identifier or password is incorrect.")
		return
	}

	if !foundUser.HasLocalCredential() {
		RespondUnAuthorized(ctx, "invalid_credentials", "Identifier or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Identifier or password is incorrect.")
		return
	}

	if !foundUser.Verified {
		RespondUnAuthorized(ctx, "invalid_credentials", "Identifier or password is incorrect.")
		return
	}

	token, err := h.jwt.GenerateSessionToken(foundUser.ID, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token,
		"userId":     foundUser.ID,
		"name":       foundUser.Name,
		"role":       foundUser.Role,
		"isVerified": foundUser.Verified,
	})
}
