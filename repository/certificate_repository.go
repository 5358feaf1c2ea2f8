package repository

import (
	"context"

	"cvchat-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CertificateRepository handles database operations for certificates
type CertificateRepository struct {
	db *pgxpool.Pool
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create creates a new certificate record
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	query := `
		INSERT INTO certificates (token, document, raw_text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		cert.Token,
		cert.Document,
		cert.RawText,
	).Scan(&cert.ID, &cert.CreatedAt)
}

// ListByToken retrieves all certificates for a profile token, oldest first
func (r *CertificateRepository) ListByToken(ctx context.Context, token string) ([]*models.Certificate, error) {
	query := `
		SELECT id, token, document, raw_text, created_at
		FROM certificates
		WHERE token = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []*models.Certificate
	for rows.Next() {
		cert := &models.Certificate{}
		err := rows.Scan(
			&cert.ID,
			&cert.Token,
			&cert.Document,
			&cert.RawText,
			&cert.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	return certs, rows.Err()
}
