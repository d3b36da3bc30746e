package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/geocoder89/portal/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
)

type CredentialReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type PasswordChecker interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}

type LoginResult struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

type Service struct {
	users     CredentialReader
	passwords PasswordChecker
	tokens    *Manager
	dummyHash string
}

func NewService(users CredentialReader, passwords PasswordChecker, tokens *Manager) (*Service, error) {
	// Unknown emails are checked against this hash so both failure paths
	// pay for one bcrypt comparison.
	dummy, err := passwords.Hash("portal-unknown-account-placeholder")
	if err != nil {
		return nil, fmt.Errorf("auth: build dummy hash: %w", err)
	}

	return &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		dummyHash: dummy,
	}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("login: lookup user: %w", err)
		}

		_ = s.passwords.Check(s.dummyHash, password)
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.passwords.Check(found.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("login: check password: %w", err)
	}

	if found.IsLocked {
		return LoginResult{}, ErrAccountLocked
	}

	token, err := s.tokens.IssueToken(found.ID, found.IsAdmin)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: issue token: %w", err)
	}

	return LoginResult{Token: token, User: found.Profile()}, nil
}

func (s *Service) VerifyToken(token string) (Identity, error) {
	return s.tokens.VerifyToken(token)
}
