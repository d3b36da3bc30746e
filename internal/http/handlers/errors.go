package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// respondStoreError maps domain errors to HTTP. Anything unrecognised is
// logged and reported as a 500 with fallback as the message.
func respondStoreError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, asset.ErrNotFound):
		RespondNotFound(ctx, "Asset not found")
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, user.ErrEmpIDTaken):
		RespondConflict(ctx, "emp_id_taken", "Employee id is already in use.")
	case errors.Is(err, asset.ErrSerialTaken):
		RespondConflict(ctx, "serial_taken", "Serial number is already in use.")
	case errors.Is(err, asset.ErrOwnerNotFound):
		RespondConflict(ctx, "owner_not_found", "Assigned user does not exist.")
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{
			{Field: "password", Rule: "maxbytes", Param: "72", Message: validationMessage("maxbytes", "72")},
		}})
	case errors.Is(err, context.DeadlineExceeded):
		_ = ctx.Error(err)
		RespondError(ctx, http.StatusInternalServerError, "store_unavailable", "The database did not respond in time.", nil)
	default:
		_ = ctx.Error(err)
		slog.ErrorContext(ctx.Request.Context(), "store failure",
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
		RespondInternal(ctx, fallback)
	}
}

// parseID reads a positive numeric path parameter, writing a 400 otherwise.
func parseID(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		RespondBadRequest(ctx, "Invalid id", gin.H{"param": name, "value": raw})
		return 0, false
	}

	return id, true
}
