package user

import (
	"errors"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	EmpID        string    `json:"emp_id"`
	Designation  string    `json:"designation"`
	IsAdmin      bool      `json:"is_admin"`
	IsLocked     bool      `json:"is_locked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the minimal view returned alongside a login token.
type Profile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	EmpID       string `json:"emp_id"`
	Designation string `json:"designation"`
	IsAdmin     bool   `json:"is_admin"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		EmpID:       u.EmpID,
		Designation: u.Designation,
		IsAdmin:     u.IsAdmin,
	}
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
	ErrEmpIDTaken = errors.New("employee id already in use")
)

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,maxbytes=72"` // bcrypt input limit is in bytes
	FirstName   string `json:"first_name" binding:"required,notblank,max=100"`
	LastName    string `json:"last_name" binding:"required,notblank,max=100"`
	EmpID       string `json:"emp_id" binding:"required,notblank,max=64"`
	Designation string `json:"designation" binding:"omitempty,max=120"`
	IsAdmin     bool   `json:"is_admin"`
}

// UpdateUserRequest is a partial update: nil fields are left untouched.
// Password is re-hashed only when present.
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email,max=254"`
	Password    *string `json:"password" binding:"omitempty,min=8,maxbytes=72"`
	FirstName   *string `json:"first_name" binding:"omitempty,notblank,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,notblank,max=100"`
	EmpID       *string `json:"emp_id" binding:"omitempty,notblank,max=64"`
	Designation *string `json:"designation" binding:"omitempty,max=120"`
	IsAdmin     *bool   `json:"is_admin"`
}
