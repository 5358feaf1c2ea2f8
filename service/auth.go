package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// sessionTTL bounds how long a login session stays valid
const sessionTTL = 24 * time.Hour

// AuthService handles accounts, sessions, profile claiming and public slugs
type AuthService struct {
	users    UserStore
	sessions SessionStore
	profiles ProfileStore
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, sessions SessionStore, profiles ProfileStore, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		profiles: profiles,
		logger:   log,
	}
}

// Register creates a new account and opens a session for it
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return nil, nil, fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, session, nil
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout closes a session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	return s.sessions.Delete(ctx, sessionToken)
}

// ValidateSession resolves a session token to its user. Expired sessions are
// deleted on sight.
func (s *AuthService) ValidateSession(ctx context.Context, sessionToken string) (*models.User, error) {
	if sessionToken == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessions.GetByToken(ctx, sessionToken)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	if session.Expired(time.Now()) {
		_ = s.sessions.Delete(ctx, sessionToken)
		return nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	return user, nil
}

// ClaimProfile assigns an anonymous profile token to a user. Claiming a
// profile the user already owns succeeds; claiming another account's
// profile does not.
func (s *AuthService) ClaimProfile(ctx context.Context, token string, userID uuid.UUID) error {
	claimed, err := s.profiles.Claim(ctx, token, userID)
	if err != nil {
		return fmt.Errorf("failed to claim profile: %w", err)
	}
	if claimed {
		return nil
	}

	profile, err := s.profiles.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, token)
	}
	if profile.UserID != nil && *profile.UserID == userID {
		return nil
	}
	return fmt.Errorf("%w: token belongs to another account", ErrAccessDenied)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// EnsureSlug returns the user's public slug, lazily assigning one on first
// use. Slugs are immutable once assigned.
func (s *AuthService) EnsureSlug(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: user", ErrNotFound)
	}
	if user.PublicSlug != nil {
		return *user.PublicSlug, nil
	}

	base := slugStrip.ReplaceAllString(strings.ToLower(user.Name), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "profile"
	}

	// A short random suffix keeps slugs unique without exposing the user ID.
	for attempt := 0; attempt < 3; attempt++ {
		slug := fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		assigned, err := s.users.AssignSlug(ctx, userID, slug)
		if err != nil {
			continue // unique collision, retry with a new suffix
		}
		if !assigned {
			// Another request won the race; return the slug it assigned.
			user, err := s.users.GetByID(ctx, userID)
			if err != nil || user.PublicSlug == nil {
				return "", fmt.Errorf("failed to resolve assigned slug")
			}
			return *user.PublicSlug, nil
		}
		return slug, nil
	}

	return "", fmt.Errorf("failed to assign public slug")
}

// DeleteAccount removes the user, their sessions and all owned profiles
// with their evidence. The only hard-delete path in the system.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.profiles.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profiles: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) openSession(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}
