package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/portal/internal/auth"
	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
}

type AuthHandler struct {
	auth Authenticator
	prom *observability.Prom
}

func NewAuthHandler(a Authenticator, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{auth: a, prom: prom}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,maxbytes=72"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// lookup plus one bcrypt comparison
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.auth.Login(cctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.prom.ObserveLogin("invalid")
			RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		case errors.Is(err, auth.ErrAccountLocked):
			h.prom.ObserveLogin("locked")
			RespondForbidden(ctx, "account_locked", "This account has been locked. Contact an administrator.")
		default:
			h.prom.ObserveLogin("error")
			respondStoreError(ctx, err, "Could not sign in")
		}
		return
	}

	h.prom.ObserveLogin("ok")
	ctx.JSON(http.StatusOK, res)
}
