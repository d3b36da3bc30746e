package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/portal/internal/auth"
	"github.com/geocoder89/portal/internal/domain/announcement"
	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/geocoder89/portal/internal/http/handlers"
	"github.com/geocoder89/portal/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

func ptr[T any](v T) *T { return &v }

// fakes with function fields, one per store method

type fakeUsersRepo struct {
	createFn func(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	listFn   func(ctx context.Context) ([]user.User, error)
	getFn    func(ctx context.Context, id int64) (user.User, error)
	updateFn func(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error)
	lockFn   func(ctx context.Context, id int64) (user.User, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (f *fakeUsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []user.User{}, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) ToggleLock(ctx context.Context, id int64) (user.User, error) {
	if f.lockFn != nil {
		return f.lockFn(ctx, id)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeAssetsRepo struct {
	createFn      func(ctx context.Context, req asset.CreateAssetRequest) (asset.Asset, error)
	listFn        func(ctx context.Context) ([]asset.WithOwner, error)
	listForUserFn func(ctx context.Context, userID int64) ([]asset.Asset, error)
	updateFn      func(ctx context.Context, id int64, req asset.UpdateAssetRequest) (asset.Asset, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (f *fakeAssetsRepo) Create(ctx context.Context, req asset.CreateAssetRequest) (asset.Asset, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return asset.Asset{}, nil
}

func (f *fakeAssetsRepo) List(ctx context.Context) ([]asset.WithOwner, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []asset.WithOwner{}, nil
}

func (f *fakeAssetsRepo) ListForUser(ctx context.Context, userID int64) ([]asset.Asset, error) {
	if f.listForUserFn != nil {
		return f.listForUserFn(ctx, userID)
	}
	return []asset.Asset{}, nil
}

func (f *fakeAssetsRepo) Update(ctx context.Context, id int64, req asset.UpdateAssetRequest) (asset.Asset, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return asset.Asset{}, nil
}

func (f *fakeAssetsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeAnnouncementsRepo struct {
	items []announcement.Announcement
}

func (f *fakeAnnouncementsRepo) Create(_ context.Context, message string, createdBy int64) (announcement.Announcement, error) {
	a := announcement.Announcement{
		ID:        int64(len(f.items) + 1),
		Message:   message,
		CreatedBy: &createdBy,
		CreatedAt: time.Now().UTC(),
	}
	f.items = append(f.items, a)
	return a, nil
}

func (f *fakeAnnouncementsRepo) List(context.Context) ([]announcement.Announcement, error) {
	return f.items, nil
}

type fakeAuthenticator struct {
	loginFn func(ctx context.Context, email, password string) (auth.LoginResult, error)
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (auth.LoginResult, error) {
	return f.loginFn(ctx, email, password)
}

// staticVerifier maps a raw token to an identity.
type staticVerifier map[string]auth.Identity

func (v staticVerifier) VerifyToken(token string) (auth.Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return auth.Identity{}, auth.ErrInvalidToken
}

var testTokens = staticVerifier{
	"admin": {UserID: 1, IsAdmin: true},
	"alice": {UserID: 2},
	"bob":   {UserID: 3},
}

// small helper function which returns the gin engine to mount one handler per test
func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

// setupAuthedRouter mounts h behind RequireAuth so handlers see an identity.
func setupAuthedRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	m := middlewares.NewAuthMiddleware(testTokens, nil)

	r := gin.New()
	r.Handle(method, path, m.RequireAuth(), h)

	return r
}

func doRequest(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error handlers.APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error body: %v body=%s", err, w.Body.String())
	}
	return resp.Error.Code
}

func assertNoPasswordHash(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	body := w.Body.String()
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Fatalf("response leaks password material: %s", body)
	}
}

var errBoom = errors.New("connection reset by peer")
