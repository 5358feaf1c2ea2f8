package repository

import (
	"context"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Email is stored lowercase; the unique index
// enforces case-insensitive uniqueness.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByEmail retrieves a user by lowercase email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, name, public_slug, created_at, updated_at
		FROM users
		WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PublicSlug,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, name, public_slug, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PublicSlug,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetBySlug retrieves a user by public slug
func (r *UserRepository) GetBySlug(ctx context.Context, slug string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, name, public_slug, created_at, updated_at
		FROM users
		WHERE public_slug = $1`

	err := r.db.QueryRow(ctx, query, slug).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PublicSlug,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// AssignSlug sets the public slug for a user that has none yet. Returns
// false when the user already carries a slug; slugs are immutable once set.
func (r *UserRepository) AssignSlug(ctx context.Context, id uuid.UUID, slug string) (bool, error) {
	query := `
		UPDATE users SET
			public_slug = $2,
			updated_at = NOW()
		WHERE id = $1 AND public_slug IS NULL`

	tag, err := r.db.Exec(ctx, query, id, slug)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// Delete deletes a user account
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
