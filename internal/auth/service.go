// Package auth implements credential checks and bearer-token sessions.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// ErrInvalidCredentials indicates a failed login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Credentials is the account slice auth needs for a login check.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
	Role         core.Role
	Active       bool
}

// CredentialStore resolves login credentials; the users repository
// implements it.
type CredentialStore interface {
	FindCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
}

// Service authenticates callers and manages their tokens.
type Service struct {
	store  CredentialStore
	tokens *TokenManager
}

// NewService builds the auth service.
func NewService(store CredentialStore, tokens *TokenManager) *Service {
	return &Service{store: store, tokens: tokens}
}

// Login verifies the password and issues a bearer token carrying the
// actor's role and default permission set.
func (s *Service) Login(ctx context.Context, email, password string) (string, core.Actor, error) {
	creds, err := s.store.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return "", core.Actor{}, err
	}
	if creds == nil || !creds.Active {
		return "", core.Actor{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", core.Actor{}, ErrInvalidCredentials
	}
	actor := core.Actor{
		ID:          creds.UserID,
		Role:        creds.Role,
		Permissions: shared.DefaultPermissions(creds.Role),
	}
	token, err := s.tokens.Issue(ctx, actor)
	if err != nil {
		return "", core.Actor{}, err
	}
	return token, actor, nil
}

// Logout revokes the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Resolve rebuilds the actor for a bearer token.
func (s *Service) Resolve(ctx context.Context, token string) (core.Actor, error) {
	return s.tokens.Resolve(ctx, token)
}
