package repository

import (
	"context"
	"fmt"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for profiles and their meta
// projection
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateWithMeta creates a profile and its meta projection in one
// transaction. A profile must never exist without its meta row; both come
// from the same parse result, so they are written together.
func (r *ProfileRepository) CreateWithMeta(ctx context.Context, profile *models.Profile, meta *models.ProfileMeta) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO profiles (token, user_id, document, is_published, share_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(
		ctx, query,
		profile.Token,
		profile.UserID,
		profile.Document,
		profile.IsPublished,
		profile.ShareEnabled,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return err
	}

	metaQuery := `
		INSERT INTO profile_meta (token, name, position, summary, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING updated_at`

	err = tx.QueryRow(
		ctx, metaQuery,
		meta.Token,
		meta.Name,
		meta.Position,
		meta.Summary,
		meta.ImageURL,
	).Scan(&meta.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByToken retrieves a profile by its opaque token
func (r *ProfileRepository) GetByToken(ctx context.Context, token string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, token, user_id, document, is_published, share_enabled,
			share_token, published_snapshot, published_at, created_at, updated_at
		FROM profiles
		WHERE token = $1`

	err := r.db.QueryRow(ctx, query, token).Scan(
		&profile.ID,
		&profile.Token,
		&profile.UserID,
		&profile.Document,
		&profile.IsPublished,
		&profile.ShareEnabled,
		&profile.ShareToken,
		&profile.Snapshot,
		&profile.PublishedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// GetByShareToken retrieves a profile by its rotating share token
func (r *ProfileRepository) GetByShareToken(ctx context.Context, shareToken string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, token, user_id, document, is_published, share_enabled,
			share_token, published_snapshot, published_at, created_at, updated_at
		FROM profiles
		WHERE share_token = $1`

	err := r.db.QueryRow(ctx, query, shareToken).Scan(
		&profile.ID,
		&profile.Token,
		&profile.UserID,
		&profile.Document,
		&profile.IsPublished,
		&profile.ShareEnabled,
		&profile.ShareToken,
		&profile.Snapshot,
		&profile.PublishedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// GetLatestByUserID retrieves the most-recently-updated profile owned by a
// user. The public slug resolves through this; one slug exposes exactly the
// latest profile.
func (r *ProfileRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, token, user_id, document, is_published, share_enabled,
			share_token, published_snapshot, published_at, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Token,
		&profile.UserID,
		&profile.Document,
		&profile.IsPublished,
		&profile.ShareEnabled,
		&profile.ShareToken,
		&profile.Snapshot,
		&profile.PublishedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// GetMetaByToken retrieves the meta projection for a profile token
func (r *ProfileRepository) GetMetaByToken(ctx context.Context, token string) (*models.ProfileMeta, error) {
	meta := &models.ProfileMeta{}
	query := `
		SELECT token, name, position, summary, image_url, updated_at
		FROM profile_meta
		WHERE token = $1`

	err := r.db.QueryRow(ctx, query, token).Scan(
		&meta.Token,
		&meta.Name,
		&meta.Position,
		&meta.Summary,
		&meta.ImageURL,
		&meta.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// UpdateMetaSummary updates only the editable summary of the meta projection
func (r *ProfileRepository) UpdateMetaSummary(ctx context.Context, token, summary string) error {
	query := `
		UPDATE profile_meta SET
			summary = $2,
			updated_at = NOW()
		WHERE token = $1`

	tag, err := r.db.Exec(ctx, query, token, summary)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no meta row for token %s", token)
	}
	return nil
}

// UpdatePublication updates the publication flags, share token and snapshot
// of a profile. Last write wins; there is no optimistic concurrency check.
func (r *ProfileRepository) UpdatePublication(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles SET
			is_published = $2,
			share_enabled = $3,
			share_token = $4,
			published_snapshot = $5,
			published_at = $6,
			updated_at = NOW()
		WHERE token = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		profile.Token,
		profile.IsPublished,
		profile.ShareEnabled,
		profile.ShareToken,
		profile.Snapshot,
		profile.PublishedAt,
	).Scan(&profile.UpdatedAt)

	return err
}

// Claim assigns an anonymous profile to a user. Returns false when the
// profile does not exist or is already owned.
func (r *ProfileRepository) Claim(ctx context.Context, token string, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE profiles SET
			user_id = $2,
			updated_at = NOW()
		WHERE token = $1 AND user_id IS NULL`

	tag, err := r.db.Exec(ctx, query, token, userID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// ListByUserID retrieves all profiles for a user, newest first
func (r *ProfileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT id, token, user_id, document, is_published, share_enabled,
			share_token, published_snapshot, published_at, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile := &models.Profile{}
		err := rows.Scan(
			&profile.ID,
			&profile.Token,
			&profile.UserID,
			&profile.Document,
			&profile.IsPublished,
			&profile.ShareEnabled,
			&profile.ShareToken,
			&profile.Snapshot,
			&profile.PublishedAt,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

// DeleteByUserID deletes all profiles owned by a user. Evidence rows go with
// them via ON DELETE CASCADE on the token foreign keys.
func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM profiles WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
