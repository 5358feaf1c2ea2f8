package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserStore, *fakeSessionStore, *fakeProfileStore) {
	t.Helper()
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	profiles := newFakeProfileStore()
	return NewAuthService(users, sessions, profiles, zap.NewNop()), users, sessions, profiles
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	user, session, err := svc.Register(context.Background(), "Jane@Example.com", "supersecret", "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Token)

	_, _, err = svc.Login(context.Background(), "jane@example.com", "supersecret")
	assert.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jane@example.com", "wrongpass")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "supersecret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, _, err := svc.Register(context.Background(), "not-an-email", "supersecret", "")
	assert.Error(t, err)

	_, _, err = svc.Register(context.Background(), "jane@example.com", "short", "")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, _, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "Jane")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "JANE@example.com", "othersecret", "Other")
	assert.True(t, errors.Is(err, ErrEmailTaken))
}

func TestValidateSession(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService(t)

	user, session, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "Jane")
	require.NoError(t, err)

	resolved, err := svc.ValidateSession(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.ValidateSession(context.Background(), "")
	assert.True(t, errors.Is(err, ErrSessionInvalid))

	_, err = svc.ValidateSession(context.Background(), "unknown-token")
	assert.True(t, errors.Is(err, ErrSessionInvalid))

	// Expired sessions are rejected and removed.
	sessions.sessions[session.Token].ExpiresAt = time.Now().Add(-time.Hour)
	_, err = svc.ValidateSession(context.Background(), session.Token)
	assert.True(t, errors.Is(err, ErrSessionInvalid))
	_, ok := sessions.sessions[session.Token]
	assert.False(t, ok, "expired session should be deleted")
}

func TestLogout(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService(t)

	_, session, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "Jane")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.Token))
	_, ok := sessions.sessions[session.Token]
	assert.False(t, ok)
}

func TestClaimProfile(t *testing.T) {
	svc, _, _, profiles := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "Jane")
	require.NoError(t, err)

	seedProfile(t, profiles, "tok-anon", nil, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	require.NoError(t, svc.ClaimProfile(context.Background(), "tok-anon", user.ID))
	stored, err := profiles.GetByToken(context.Background(), "tok-anon")
	require.NoError(t, err)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, user.ID, *stored.UserID)

	// Claiming again by the same owner is a no-op.
	assert.NoError(t, svc.ClaimProfile(context.Background(), "tok-anon", user.ID))

	// Another account cannot take it over.
	err = svc.ClaimProfile(context.Background(), "tok-anon", uuid.New())
	assert.True(t, errors.Is(err, ErrAccessDenied))

	err = svc.ClaimProfile(context.Background(), "no-such-token", user.ID)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestEnsureSlug(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "Jane Doe")
	require.NoError(t, err)

	slug, err := svc.EnsureSlug(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "jane-doe-"), "slug %q should derive from the name", slug)

	// Slugs are immutable: a second call returns the same value.
	again, err := svc.EnsureSlug(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, slug, again)
}

func TestEnsureSlugEmptyName(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "")
	require.NoError(t, err)

	slug, err := svc.EnsureSlug(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "profile-"), "slug %q should fall back to a neutral base", slug)
}

func TestDeleteAccountRemovesProfiles(t *testing.T) {
	svc, users, _, profiles := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), "jane@example.com", "supersecret", "Jane")
	require.NoError(t, err)

	seedProfile(t, profiles, "tok-1", &user.ID, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID))

	_, err = users.GetByID(context.Background(), user.ID)
	assert.Error(t, err)
	_, err = profiles.GetByToken(context.Background(), "tok-1")
	assert.Error(t, err)
}
