package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/geocoder89/portal/internal/http/handlers"
	"golang.org/x/crypto/bcrypt"
)

func sampleUser(id int64) user.User {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return user.User{
		ID:           id,
		Email:        "ada@portal.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		EmpID:        "E-100",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing emp_id",
			body:       `{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "malformed email",
			body:       `{"email":"ada","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "duplicate email",
			body:       `{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`,
			createErr:  user.ErrEmailTaken,
			wantStatus: http.StatusConflict,
			wantCode:   "email_taken",
		},
		{
			name:       "duplicate emp_id",
			body:       `{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`,
			createErr:  user.ErrEmpIDTaken,
			wantStatus: http.StatusConflict,
			wantCode:   "emp_id_taken",
		},
		{
			name:       "store failure is not leaked",
			body:       `{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`,
			createErr:  errBoom,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{
				createFn: func(_ context.Context, req user.CreateUserRequest) (user.User, error) {
					if tc.createErr != nil {
						return user.User{}, tc.createErr
					}
					u := sampleUser(5)
					u.Email = req.Email
					return u, nil
				},
			}
			h := handlers.NewUsersHandler(repo)
			r := setupRouter(http.MethodPost, "/users", h.CreateUser)

			w := doRequest(r, http.MethodPost, "/users", "", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantCode != "" {
				if got := errorCode(t, w); got != tc.wantCode {
					t.Fatalf("got code %q, want %q", got, tc.wantCode)
				}
			}
			if tc.createErr == errBoom && strings.Contains(w.Body.String(), errBoom.Error()) {
				t.Fatalf("raw store error leaked: %s", w.Body.String())
			}
			assertNoPasswordHash(t, w)
		})
	}
}

func TestListUsersHandler_OmitsHashes(t *testing.T) {
	repo := &fakeUsersRepo{
		listFn: func(context.Context) ([]user.User, error) {
			admin := sampleUser(1)
			admin.IsAdmin = true
			return []user.User{admin, sampleUser(2)}, nil
		},
	}
	h := handlers.NewUsersHandler(repo)
	r := setupRouter(http.MethodGet, "/users", h.ListUsers)

	w := doRequest(r, http.MethodGet, "/users", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	assertNoPasswordHash(t, w)

	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0]["is_admin"] != true {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestUpdateUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		updateErr  error
		wantStatus int
	}{
		{"ok", "/users/5", `{"designation":"Engineer"}`, nil, http.StatusOK},
		{"non numeric id", "/users/abc", `{"designation":"Engineer"}`, nil, http.StatusBadRequest},
		{"zero id", "/users/0", `{"designation":"Engineer"}`, nil, http.StatusBadRequest},
		{"empty emp_id", "/users/5", `{"emp_id":""}`, nil, http.StatusBadRequest},
		{"not found", "/users/99", `{"designation":"Engineer"}`, user.ErrNotFound, http.StatusNotFound},
		{"email clash", "/users/5", `{"email":"taken@portal.com"}`, user.ErrEmailTaken, http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotID int64
			repo := &fakeUsersRepo{
				updateFn: func(_ context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
					gotID = id
					if tc.updateErr != nil {
						return user.User{}, tc.updateErr
					}
					u := sampleUser(id)
					if req.Designation != nil {
						u.Designation = *req.Designation
					}
					return u, nil
				},
			}
			h := handlers.NewUsersHandler(repo)
			r := setupRouter(http.MethodPut, "/users/:id", h.UpdateUser)

			w := doRequest(r, http.MethodPut, tc.path, "", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if w.Code == http.StatusBadRequest && gotID != 0 {
				t.Fatalf("store should not be called on bad input")
			}
			assertNoPasswordHash(t, w)
		})
	}
}

func TestToggleLockHandler(t *testing.T) {
	locked := false
	repo := &fakeUsersRepo{
		lockFn: func(_ context.Context, id int64) (user.User, error) {
			locked = !locked
			u := sampleUser(id)
			u.IsLocked = locked
			return u, nil
		},
	}
	h := handlers.NewUsersHandler(repo)
	r := setupRouter(http.MethodPut, "/users/:id/lock", h.ToggleLock)

	for _, want := range []bool{true, false} {
		w := doRequest(r, http.MethodPut, "/users/5/lock", "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", w.Code)
		}

		var got user.User
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.IsLocked != want {
			t.Fatalf("is_locked = %v, want %v", got.IsLocked, want)
		}
	}
}

func TestDeleteUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		deleteErr  error
		wantStatus int
	}{
		{"deleted", "/users/5", nil, http.StatusNoContent},
		{"missing", "/users/5", user.ErrNotFound, http.StatusNotFound},
		{"bad id", "/users/x5", nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{
				deleteFn: func(context.Context, int64) error { return tc.deleteErr },
			}
			h := handlers.NewUsersHandler(repo)
			r := setupRouter(http.MethodDelete, "/users/:id", h.DeleteUser)

			w := doRequest(r, http.MethodDelete, tc.path, "", "")
			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestUserPasswordLimitCountsBytes(t *testing.T) {
	tooLong := strings.Repeat("é", 40) // 40 characters, 80 bytes
	fits := strings.Repeat("é", 36)    // 72 bytes

	var created []string
	repo := &fakeUsersRepo{
		createFn: func(_ context.Context, req user.CreateUserRequest) (user.User, error) {
			created = append(created, req.Password)
			return sampleUser(5), nil
		},
		updateFn: func(context.Context, int64, user.UpdateUserRequest) (user.User, error) {
			t.Fatalf("update must not reach the store")
			return user.User{}, nil
		},
	}
	h := handlers.NewUsersHandler(repo)

	r := setupRouter(http.MethodPost, "/users", h.CreateUser)
	r.PUT("/users/:id", h.UpdateUser)

	body := func(pw string) string {
		return `{"email":"ada@portal.com","password":"` + pw + `","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`
	}

	w := doRequest(r, http.MethodPost, "/users", "", body(tooLong))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create: got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"rule":"maxbytes"`) {
		t.Fatalf("create: expected maxbytes rule, body=%s", w.Body.String())
	}

	w = doRequest(r, http.MethodPut, "/users/5", "", `{"password":"`+tooLong+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("update: got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodPost, "/users", "", body(fits))
	if w.Code != http.StatusCreated {
		t.Fatalf("72 byte password: got status %d, want 201, body=%s", w.Code, w.Body.String())
	}
	if len(created) != 1 {
		t.Fatalf("expected exactly one store call, got %d", len(created))
	}
}

func TestCreateUserHandler_HasherRejectsLongPassword(t *testing.T) {
	repo := &fakeUsersRepo{
		createFn: func(context.Context, user.CreateUserRequest) (user.User, error) {
			return user.User{}, fmt.Errorf("create user: hash password: %w", bcrypt.ErrPasswordTooLong)
		},
	}
	h := handlers.NewUsersHandler(repo)
	r := setupRouter(http.MethodPost, "/users", h.CreateUser)

	w := doRequest(r, http.MethodPost, "/users", "",
		`{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"E-100"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
	if got := errorCode(t, w); got != "invalid_request" {
		t.Fatalf("got code %q, want invalid_request", got)
	}
}

func TestUserNamesAndEmpIDMustNotBeBlank(t *testing.T) {
	repo := &fakeUsersRepo{
		createFn: func(context.Context, user.CreateUserRequest) (user.User, error) {
			t.Fatalf("create must not reach the store")
			return user.User{}, nil
		},
		updateFn: func(context.Context, int64, user.UpdateUserRequest) (user.User, error) {
			t.Fatalf("update must not reach the store")
			return user.User{}, nil
		},
	}
	h := handlers.NewUsersHandler(repo)

	r := setupRouter(http.MethodPost, "/users", h.CreateUser)
	r.PUT("/users/:id", h.UpdateUser)

	for _, body := range []string{
		`{"email":"ada@portal.com","password":"s3cretpass","first_name":"Ada","last_name":"Lovelace","emp_id":"   "}`,
		`{"email":"ada@portal.com","password":"s3cretpass","first_name":" \t","last_name":"Lovelace","emp_id":"E-1"}`,
	} {
		w := doRequest(r, http.MethodPost, "/users", "", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("create %s: got status %d, want 400", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"rule":"notblank"`) {
			t.Fatalf("create %s: expected notblank rule, body=%s", body, w.Body.String())
		}
	}

	w := doRequest(r, http.MethodPut, "/users/5", "", `{"emp_id":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("update: got status %d, want 400", w.Code)
	}
}
