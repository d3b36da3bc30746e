package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/export"
	"github.com/gin-gonic/gin"
)

type AssetsStore interface {
	Create(ctx context.Context, req asset.CreateAssetRequest) (asset.Asset, error)
	List(ctx context.Context) ([]asset.WithOwner, error)
	Update(ctx context.Context, id int64, req asset.UpdateAssetRequest) (asset.Asset, error)
	Delete(ctx context.Context, id int64) error
}

type AssetsHandler struct {
	repo AssetsStore
}

func NewAssetsHandler(repo AssetsStore) *AssetsHandler {
	return &AssetsHandler{repo: repo}
}

func (h *AssetsHandler) ListAssets(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)
	if err != nil {
		respondStoreError(ctx, err, "Could not list assets")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// ExportAssets streams the full inventory as an xlsx workbook.
func (h *AssetsHandler) ExportAssets(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)
	if err != nil {
		respondStoreError(ctx, err, "Could not export assets")
		return
	}

	buf, err := export.AssetsWorkbook(items)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not export assets")
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+export.AssetsFilename(time.Now())+`"`)
	ctx.Data(http.StatusOK, export.XLSXContentType, buf.Bytes())
}

func (h *AssetsHandler) CreateAsset(ctx *gin.Context) {
	var req asset.CreateAssetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	a, err := h.repo.Create(cctx, req)
	if err != nil {
		respondStoreError(ctx, err, "Could not create asset")
		return
	}

	ctx.JSON(http.StatusCreated, a)
}

func (h *AssetsHandler) UpdateAsset(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req asset.UpdateAssetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	a, err := h.repo.Update(cctx, id, req)
	if err != nil {
		respondStoreError(ctx, err, "Could not update asset")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AssetsHandler) DeleteAsset(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		respondStoreError(ctx, err, "Could not delete asset")
		return
	}

	ctx.Status(http.StatusNoContent)
}
