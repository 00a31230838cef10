package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/domain/posting"
	"github.com/geocoder89/karigarhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PostingStore interface {
	Create(ctx context.Context, ownerID string, req posting.CreatePostingRequest) (posting.Posting, error)
	GetByID(ctx context.Context, id string) (posting.Posting, error)
	ListOpen(ctx context.Context, limit int64) ([]posting.Posting, error)
	Update(ctx context.Context, id string, req posting.UpdatePostingRequest) (posting.Posting, error)
	Delete(ctx context.Context, id string) error
}

type PostingsHandler struct {
	repo PostingStore
}

func NewPostingsHandler(repo PostingStore) *PostingsHandler {
	return &PostingsHandler{repo: repo}
}

func (h *PostingsHandler) CreatePosting(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req posting.CreatePostingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	p, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create posting")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PostingsHandler) ListPostings(ctx *gin.Context) {
	limit := int64(50)

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)

		if err != nil || n <= 0 {
			RespondBadRequest(ctx, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	postings, err := h.repo.ListOpen(cctx, limit)

	if err != nil {
		RespondInternal(ctx, "Could not list postings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":    len(postings),
		"postings": postings,
	})
}

func (h *PostingsHandler) GetPostingById(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, posting.ErrNotFound) {
			RespondNotFound(ctx, "Posting not found")
			return
		}

		RespondInternal(ctx, "Could not load posting")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PostingsHandler) UpdatePosting(ctx *gin.Context) {
	id := ctx.Param("id")

	var req posting.UpdatePostingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !h.authorizeOwner(ctx, id) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, posting.ErrNotFound) {
			RespondNotFound(ctx, "Posting not found")
			return
		}

		RespondInternal(ctx, "Could not update posting")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PostingsHandler) DeletePosting(ctx *gin.Context) {
	id := ctx.Param("id")

	if !h.authorizeOwner(ctx, id) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, posting.ErrNotFound) {
			RespondNotFound(ctx, "Posting not found")
			return
		}

		RespondInternal(ctx, "Could not delete posting")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// authorizeOwner loads the posting and checks ownership (admin
// override). Writes the error response itself; callers just bail on
// false.
func (h *PostingsHandler) authorizeOwner(ctx *gin.Context, postingID string) bool {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return false
	}

	role, _ := middlewares.RoleFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, postingID)

	if err != nil {
		if errors.Is(err, posting.ErrNotFound) {
			RespondNotFound(ctx, "Posting not found")
			return false
		}

		RespondInternal(ctx, "Could not load posting")
		return false
	}

	if role != identity.RoleAdmin && p.OwnerID != userID {
		RespondForbidden(ctx, "You can only modify your own postings")
		return false
	}

	return true
}
