package repository

import (
	"context"

	"cvchat-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceRepository handles database operations for free-text evidence
type ReferenceRepository struct {
	db *pgxpool.Pool
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Create creates a new reference text record
func (r *ReferenceRepository) Create(ctx context.Context, ref *models.Reference) error {
	query := `
		INSERT INTO reference_texts (token, text)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		ref.Token,
		ref.Text,
	).Scan(&ref.ID, &ref.CreatedAt)
}

// ListByToken retrieves all reference texts for a profile token, oldest first
func (r *ReferenceRepository) ListByToken(ctx context.Context, token string) ([]*models.Reference, error) {
	query := `
		SELECT id, token, text, created_at
		FROM reference_texts
		WHERE token = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.Reference
	for rows.Next() {
		ref := &models.Reference{}
		err := rows.Scan(
			&ref.ID,
			&ref.Token,
			&ref.Text,
			&ref.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}
