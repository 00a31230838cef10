package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/http/middlewares"
	"github.com/geocoder89/karigarhub/internal/storage"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 5 << 20 // 5 MiB per file

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (identity.User, error)
	UpdateProfile(ctx context.Context, id string, req identity.UpdateProfileRequest) (identity.User, error)
	SetAvatar(ctx context.Context, id, url string) (identity.User, error)
	SetVerification(ctx context.Context, id string, v identity.Verification) (identity.User, error)
}

type ProfileHandler struct {
	users    ProfileStore
	uploader storage.Uploader
}

func NewProfileHandler(users ProfileStore, uploader storage.Uploader) *ProfileHandler {
	return &ProfileHandler{users: users, uploader: uploader}
}

func (h *ProfileHandler) GetMe(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "Account not found")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *ProfileHandler) UpdateMe(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req identity.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, userID, req)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "Account not found")
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// UploadAvatar accepts a multipart "file" field, stores it in S3 and
// records the object URL on the user.
func (h *ProfileHandler) UploadAvatar(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		RespondBadRequest(ctx, "invalid_upload", "A multipart 'file' field is required.")
		return
	}

	if fileHeader.Size > maxUploadBytes {
		RespondBadRequest(ctx, "file_too_large", "File exceeds the 5MB limit.")
		return
	}

	f, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	defer f.Close()

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	key := storage.ObjectKey("avatars", userID, fileHeader.Filename)

	url, err := h.uploader.Upload(cctx, key, f, fileHeader.Header.Get("Content-Type"))

	if err != nil {
		RespondInternal(ctx, "Could not store upload")
		return
	}

	u, err := h.users.SetAvatar(cctx, userID, url)

	if err != nil {
		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":   "Avatar updated",
		"avatarUrl": u.AvatarURL,
	})
}

// SubmitVerification lets a provider upload an identity document,
// creating or refreshing the embedded verification request for admin
// review.
func (h *ProfileHandler) SubmitVerification(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	role, _ := middlewares.RoleFromContext(ctx)

	if !identity.IsProviderRole(role) {
		RespondForbidden(ctx, "Only provider accounts can request verification")
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		RespondBadRequest(ctx, "invalid_upload", "A multipart 'file' field is required.")
		return
	}

	if fileHeader.Size > maxUploadBytes {
		RespondBadRequest(ctx, "file_too_large", "File exceeds the 5MB limit.")
		return
	}

	f, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	defer f.Close()

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	key := storage.ObjectKey("verification", userID, fileHeader.Filename)

	url, err := h.uploader.Upload(cctx, key, f, fileHeader.Header.Get("Content-Type"))

	if err != nil {
		RespondInternal(ctx, "Could not store upload")
		return
	}

	u, err := h.users.SetVerification(cctx, userID, identity.Verification{
		DocumentURL: url,
		Status:      identity.VerificationPending,
		SubmittedAt: time.Now().UTC(),
	})

	if err != nil {
		RespondInternal(ctx, "Could not submit verification request")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Verification request submitted",
		"verification": u.Verification,
	})
}
