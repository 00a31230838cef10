package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

type AdminUserStore interface {
	GetByID(ctx context.Context, id string) (identity.User, error)
	List(ctx context.Context, filter identity.ListFilter) ([]identity.User, error)
	SetVerificationStatus(ctx context.Context, id, status string) (identity.User, error)
	Delete(ctx context.Context, id string) error
}

// UserDataPurger removes everything a deleted account owns.
type UserDataPurger interface {
	DeletePostingsByOwner(ctx context.Context, ownerID string) error
	DeleteBookingsByUser(ctx context.Context, userID string) error
	DeleteReviewsByUser(ctx context.Context, userID string) error
}

type AdminHandler struct {
	users  AdminUserStore
	purger UserDataPurger
}

func NewAdminHandler(users AdminUserStore, purger UserDataPurger) *AdminHandler {
	return &AdminHandler{users: users, purger: purger}
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	var filter identity.ListFilter

	if role := ctx.Query("role"); role != "" {
		filter.Role = &role
	}

	if vs := ctx.Query("verification"); vs != "" {
		filter.VerificationStatus = &vs
	}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)

		if err != nil || n <= 0 {
			RespondBadRequest(ctx, "invalid_limit", "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": users,
	})
}

type VerifyUserRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// VerifyUser resolves a pending provider verification request.
func (h *AdminHandler) VerifyUser(ctx *gin.Context) {
	id := ctx.Param("id")

	var req VerifyUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	status := identity.VerificationApproved
	if req.Action == "reject" {
		status = identity.VerificationRejected
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.SetVerificationStatus(cctx, id, status)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "No verification request for this user")
			return
		}

		RespondInternal(ctx, "Could not update verification")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Verification " + status,
		"verification": u.Verification,
	})
}

// DeleteUser removes the account and purges its postings, bookings and
// reviews. The purge steps run after the account delete; a crash in
// between leaves orphans that a cleanup job can sweep, which beats
// leaving a live account with half its data gone.
func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "Account not found")
			return
		}

		RespondInternal(ctx, "Could not delete account")
		return
	}

	if u.Role == identity.RoleAdmin {
		RespondForbidden(ctx, "Admin accounts cannot be deleted through the API")
		return
	}

	err = h.users.Delete(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not delete account")
		return
	}

	if err := h.purger.DeletePostingsByOwner(cctx, id); err != nil {
		RespondInternal(ctx, "Account deleted but cleanup failed")
		return
	}

	if err := h.purger.DeleteBookingsByUser(cctx, id); err != nil {
		RespondInternal(ctx, "Account deleted but cleanup failed")
		return
	}

	if err := h.purger.DeleteReviewsByUser(cctx, id); err != nil {
		RespondInternal(ctx, "Account deleted but cleanup failed")
		return
	}

	ctx.Status(http.StatusNoContent)
}
