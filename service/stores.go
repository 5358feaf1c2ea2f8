package service

import (
	"context"

	"cvchat-backend/models"

	"github.com/google/uuid"
)

// ProfileStore is the persistence contract for profiles and their meta
// projection. Implemented by repository.ProfileRepository.
type ProfileStore interface {
	CreateWithMeta(ctx context.Context, profile *models.Profile, meta *models.ProfileMeta) error
	GetByToken(ctx context.Context, token string) (*models.Profile, error)
	GetByShareToken(ctx context.Context, shareToken string) (*models.Profile, error)
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetMetaByToken(ctx context.Context, token string) (*models.ProfileMeta, error)
	UpdateMetaSummary(ctx context.Context, token, summary string) error
	UpdatePublication(ctx context.Context, profile *models.Profile) error
	Claim(ctx context.Context, token string, userID uuid.UUID) (bool, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// CertificateStore is the persistence contract for certificate evidence.
type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	ListByToken(ctx context.Context, token string) ([]*models.Certificate, error)
}

// ReferenceStore is the persistence contract for free-text evidence.
type ReferenceStore interface {
	Create(ctx context.Context, ref *models.Reference) error
	ListByToken(ctx context.Context, token string) ([]*models.Reference, error)
}

// UserStore is the persistence contract for user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetBySlug(ctx context.Context, slug string) (*models.User, error)
	AssignSlug(ctx context.Context, id uuid.UUID, slug string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionStore is the persistence contract for login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}
