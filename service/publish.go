package service

import (
	"context"
	"fmt"
	"time"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublishService manages the publication lifecycle of a profile: the frozen
// snapshot, the publication flags and the rotating share token
type PublishService struct {
	profiles ProfileStore
	certs    CertificateStore
	refs     ReferenceStore
	logger   *zap.Logger
}

// NewPublishService creates a new publish service
func NewPublishService(profiles ProfileStore, certs CertificateStore, refs ReferenceStore, log *zap.Logger) *PublishService {
	return &PublishService{
		profiles: profiles,
		certs:    certs,
		refs:     refs,
		logger:   log,
	}
}

// loadWritable loads a profile and enforces write access: owned profiles are
// writable by their owner only, anonymous profiles by any bearer of the
// token.
func (s *PublishService) loadWritable(ctx context.Context, token string, requester *uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, token)
	}

	if profile.UserID != nil {
		if requester == nil || *requester != *profile.UserID {
			return nil, fmt.Errorf("%w: token belongs to another account", ErrAccessDenied)
		}
	}

	return profile, nil
}

// Publish freezes the current profile + evidence into a snapshot, sets both
// publication flags and ensures a share token exists. Re-publishing replaces
// the previous snapshot.
func (s *PublishService) Publish(ctx context.Context, token string, requester *uuid.UUID) (*models.Profile, error) {
	profile, err := s.loadWritable(ctx, token, requester)
	if err != nil {
		return nil, err
	}

	meta, err := s.profiles.GetMetaByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: incomplete record %s", ErrProfileNotFound, token)
	}

	certs, err := s.certs.ListByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}
	certDocs := make([]models.CertificateDocument, 0, len(certs))
	for _, cert := range certs {
		certDocs = append(certDocs, cert.Document)
	}

	refs, err := s.refs.ListByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference texts: %w", err)
	}
	texts := make([]string, 0, len(refs))
	for _, ref := range refs {
		texts = append(texts, ref.Text)
	}

	now := time.Now().UTC()
	profile.Snapshot = &models.PublishedSnapshot{
		Meta:            *meta,
		Document:        profile.Document,
		Certificates:    certDocs,
		AdditionalTexts: texts,
		TakenAt:         now,
	}
	profile.IsPublished = true
	profile.ShareEnabled = true
	profile.PublishedAt = &now

	if profile.ShareToken == nil {
		shareToken := uuid.NewString()
		profile.ShareToken = &shareToken
	}

	if err := s.profiles.UpdatePublication(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to publish profile: %w", err)
	}

	s.logger.Info("profile published",
		zap.String("token", token),
		zap.Int("certificates", len(certDocs)),
		zap.Int("additional_texts", len(texts)),
	)

	return profile, nil
}

// Unpublish clears both publication flags, revoking the share link. The last
// snapshot and its timestamp are preserved. Idempotent: unpublishing an
// unpublished profile succeeds with the same result.
func (s *PublishService) Unpublish(ctx context.Context, token string, requester *uuid.UUID) (*models.Profile, error) {
	profile, err := s.loadWritable(ctx, token, requester)
	if err != nil {
		return nil, err
	}

	profile.IsPublished = false
	profile.ShareEnabled = false

	if err := s.profiles.UpdatePublication(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to unpublish profile: %w", err)
	}

	return profile, nil
}

// RegenerateShareToken rotates the share token. Previously issued share
// links stop resolving immediately.
func (s *PublishService) RegenerateShareToken(ctx context.Context, token string, requester *uuid.UUID) (string, error) {
	profile, err := s.loadWritable(ctx, token, requester)
	if err != nil {
		return "", err
	}

	shareToken := uuid.NewString()
	profile.ShareToken = &shareToken

	if err := s.profiles.UpdatePublication(ctx, profile); err != nil {
		return "", fmt.Errorf("failed to rotate share token: %w", err)
	}

	return shareToken, nil
}

// SharedSnapshot serves the frozen snapshot behind a share token. Any
// precondition miss (unknown token, unpublished, sharing disabled, no
// snapshot) uniformly reads as not found so state is never leaked.
func (s *PublishService) SharedSnapshot(ctx context.Context, shareToken string) (*models.PublishedSnapshot, error) {
	profile, err := s.profiles.GetByShareToken(ctx, shareToken)
	if err != nil {
		return nil, ErrNotFound
	}

	if !profile.IsPublished || !profile.ShareEnabled || profile.Snapshot == nil {
		return nil, ErrNotFound
	}

	return profile.Snapshot, nil
}
