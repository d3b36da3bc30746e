package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/geocoder89/portal/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type OwnedAssetsLister interface {
	ListForUser(ctx context.Context, userID int64) ([]asset.Asset, error)
}

// ProfileHandler serves the caller's own data. The subject is always the
// token identity, never a path or query parameter.
type ProfileHandler struct {
	users  UserGetter
	assets OwnedAssetsLister
}

func NewProfileHandler(users UserGetter, assets OwnedAssetsLister) *ProfileHandler {
	return &ProfileHandler{users: users, assets: assets}
}

func callerID(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return 0, false
	}
	return id.UserID, true
}

func (h *ProfileHandler) Profile(ctx *gin.Context) {
	uid, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, uid)
	if err != nil {
		respondStoreError(ctx, err, "Could not load profile")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *ProfileHandler) MyAssets(ctx *gin.Context) {
	uid, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.assets.ListForUser(cctx, uid)
	if err != nil {
		respondStoreError(ctx, err, "Could not load assets")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}
