package service

import (
	"context"
	"errors"
	"fmt"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadService runs the document-to-profile ingestion pipeline
type UploadService struct {
	extractor TextExtractor
	parser    DocumentParser
	profiles  ProfileStore
	certs     CertificateStore
	refs      ReferenceStore
	logger    *zap.Logger
}

// TextExtractor converts a PDF payload to plain text
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// DocumentParser turns extracted text into structured documents
type DocumentParser interface {
	ParseCV(ctx context.Context, text string) (models.ProfileDocument, error)
	ParseCertificate(ctx context.Context, text string) (models.CertificateDocument, error)
}

// UploadServiceOption is a functional option for UploadService
type UploadServiceOption func(*UploadService)

// UploadWithExtractor sets the document extractor
func UploadWithExtractor(extractor TextExtractor) UploadServiceOption {
	return func(s *UploadService) {
		s.extractor = extractor
	}
}

// UploadWithParser sets the document parser
func UploadWithParser(parser DocumentParser) UploadServiceOption {
	return func(s *UploadService) {
		s.parser = parser
	}
}

// UploadWithProfileStore sets the profile store
func UploadWithProfileStore(store ProfileStore) UploadServiceOption {
	return func(s *UploadService) {
		s.profiles = store
	}
}

// UploadWithCertificateStore sets the certificate store
func UploadWithCertificateStore(store CertificateStore) UploadServiceOption {
	return func(s *UploadService) {
		s.certs = store
	}
}

// UploadWithReferenceStore sets the reference store
func UploadWithReferenceStore(store ReferenceStore) UploadServiceOption {
	return func(s *UploadService) {
		s.refs = store
	}
}

// UploadWithLogger sets the logger
func UploadWithLogger(log *zap.Logger) UploadServiceOption {
	return func(s *UploadService) {
		s.logger = log
	}
}

// NewUploadService creates a new upload service
func NewUploadService(opts ...UploadServiceOption) *UploadService {
	s := &UploadService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadRequest represents one upload submission
type UploadRequest struct {
	UserID       *uuid.UUID
	CV           []byte
	Certificates [][]byte
	ImageURL     string
	ExtraText    string
}

// UploadResult represents the outcome of a successful upload
type UploadResult struct {
	Token string
	Meta  *models.ProfileMeta
}

// Upload extracts and parses the CV, creates the profile together with its
// meta projection, then writes the certificate and free-text evidence.
//
// Certificates are processed fail-fast: the first failure aborts the
// remaining ones and surfaces an error, but already-committed rows and the
// profile itself stay in place. This is an intentional
// at-least-partial-completion policy, not an idempotent retry contract.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if s.extractor == nil || s.parser == nil {
		return nil, errors.New("extractor or parser not set")
	}
	if s.profiles == nil {
		return nil, errors.New("profile store not set")
	}

	text, err := s.extractor.ExtractText(req.CV)
	if err != nil {
		return nil, err
	}

	document, err := s.parser.ParseCV(ctx, text)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	profile := &models.Profile{
		Token:    token,
		UserID:   req.UserID,
		Document: document,
	}

	person := asMap(document["person"])
	meta := &models.ProfileMeta{
		Token:    token,
		Name:     asString(person["name"]),
		Position: asString(person["title"]),
		Summary:  asString(person["summary"]),
		ImageURL: req.ImageURL,
	}

	if err := s.profiles.CreateWithMeta(ctx, profile, meta); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("profile created",
		zap.String("token", token),
		zap.Int("cv_text_length", len(text)),
		zap.Int("certificates", len(req.Certificates)),
	)

	for i, payload := range req.Certificates {
		certText, err := s.extractor.ExtractText(payload)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i+1, err)
		}

		certDoc, err := s.parser.ParseCertificate(ctx, certText)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i+1, err)
		}

		cert := &models.Certificate{
			Token:    token,
			Document: certDoc,
			RawText:  certText,
		}
		if err := s.certs.Create(ctx, cert); err != nil {
			return nil, fmt.Errorf("certificate %d: failed to store: %w", i+1, err)
		}
	}

	if req.ExtraText != "" {
		ref := &models.Reference{
			Token: token,
			Text:  req.ExtraText,
		}
		if err := s.refs.Create(ctx, ref); err != nil {
			return nil, fmt.Errorf("failed to store additional text: %w", err)
		}
	}

	return &UploadResult{Token: token, Meta: meta}, nil
}
