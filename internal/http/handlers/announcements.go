package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/domain/announcement"
	"github.com/gin-gonic/gin"
)

type AnnouncementsStore interface {
	Create(ctx context.Context, message string, createdBy int64) (announcement.Announcement, error)
	List(ctx context.Context) ([]announcement.Announcement, error)
}

type AnnouncementsHandler struct {
	repo AnnouncementsStore
}

func NewAnnouncementsHandler(repo AnnouncementsStore) *AnnouncementsHandler {
	return &AnnouncementsHandler{repo: repo}
}

func (h *AnnouncementsHandler) ListAnnouncements(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)
	if err != nil {
		respondStoreError(ctx, err, "Could not list announcements")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *AnnouncementsHandler) CreateAnnouncement(ctx *gin.Context) {
	uid, ok := callerID(ctx)
	if !ok {
		return
	}

	var req announcement.CreateAnnouncementRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	a, err := h.repo.Create(cctx, req.Message, uid)
	if err != nil {
		respondStoreError(ctx, err, "Could not publish announcement")
		return
	}

	ctx.JSON(http.StatusCreated, a)
}
