package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lodgelist/lodgelist/internal/auth"
	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
	_ "github.com/lodgelist/lodgelist/testing"
)

type stubStore struct {
	creds *auth.Credentials
}

func (s *stubStore) FindCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	if s.creds == nil || s.creds.Email != email {
		return nil, nil
	}
	return s.creds, nil
}

func newAuthService(t *testing.T, store auth.CredentialStore) *auth.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return auth.NewService(store, auth.NewTokenManager(client, time.Hour))
}

func hostCredentials(t *testing.T) *auth.Credentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.Credentials{
		UserID:       "u-host-1",
		Email:        "host@test.local",
		PasswordHash: string(hash),
		Role:         core.RoleHost,
		Active:       true,
	}
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc := newAuthService(t, &stubStore{creds: hostCredentials(t)})
	ctx := context.Background()

	token, actor, err := svc.Login(ctx, "host@test.local", "correctpass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "u-host-1", actor.ID)
	assert.Equal(t, core.RoleHost, actor.Role)
	assert.ElementsMatch(t, shared.DefaultPermissions(core.RoleHost), actor.Permissions)

	resolved, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, resolved.ID)
	assert.Equal(t, actor.Role, resolved.Role)
	assert.ElementsMatch(t, actor.Permissions, resolved.Permissions)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t, &stubStore{creds: hostCredentials(t)})

	_, _, err := svc.Login(context.Background(), "host@test.local", "wrongpass")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(t, &stubStore{})

	_, _, err := svc.Login(context.Background(), "nobody@test.local", "whatever1")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestLoginInactiveAccount(t *testing.T) {
	creds := hostCredentials(t)
	creds.Active = false
	svc := newAuthService(t, &stubStore{creds: creds})

	_, _, err := svc.Login(context.Background(), "host@test.local", "correctpass")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newAuthService(t, &stubStore{creds: hostCredentials(t)})
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "host@test.local", "correctpass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Resolve(ctx, token)
	assert.True(t, errors.Is(err, auth.ErrTokenUnknown))
}
