package service

import (
	"context"
	"errors"
	"sync"

	"cvchat-backend/models"

	"github.com/google/uuid"
)

var errFakeNotFound = errors.New("no rows in result set")

type completionCall struct {
	system string
	prompt string
}

// stubCompletion records every call and plays back a fixed response.
type stubCompletion struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []completionCall
}

func (s *stubCompletion) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, completionCall{system: system, prompt: prompt})
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// fakeProfileStore is an in-memory ProfileStore.
type fakeProfileStore struct {
	profiles map[string]*models.Profile
	meta     map[string]*models.ProfileMeta
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: make(map[string]*models.Profile),
		meta:     make(map[string]*models.ProfileMeta),
	}
}

func (f *fakeProfileStore) CreateWithMeta(ctx context.Context, profile *models.Profile, meta *models.ProfileMeta) error {
	profile.ID = uuid.New()
	f.profiles[profile.Token] = profile
	f.meta[meta.Token] = meta
	return nil
}

func (f *fakeProfileStore) GetByToken(ctx context.Context, token string) (*models.Profile, error) {
	profile, ok := f.profiles[token]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfileStore) GetByShareToken(ctx context.Context, shareToken string) (*models.Profile, error) {
	for _, profile := range f.profiles {
		if profile.ShareToken != nil && *profile.ShareToken == shareToken {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeProfileStore) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var latest *models.Profile
	for _, profile := range f.profiles {
		if profile.UserID == nil || *profile.UserID != userID {
			continue
		}
		if latest == nil || profile.UpdatedAt.After(latest.UpdatedAt) {
			latest = profile
		}
	}
	if latest == nil {
		return nil, errFakeNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeProfileStore) GetMetaByToken(ctx context.Context, token string) (*models.ProfileMeta, error) {
	meta, ok := f.meta[token]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *meta
	return &copied, nil
}

func (f *fakeProfileStore) UpdateMetaSummary(ctx context.Context, token, summary string) error {
	meta, ok := f.meta[token]
	if !ok {
		return errFakeNotFound
	}
	meta.Summary = summary
	return nil
}

func (f *fakeProfileStore) UpdatePublication(ctx context.Context, profile *models.Profile) error {
	stored, ok := f.profiles[profile.Token]
	if !ok {
		return errFakeNotFound
	}
	stored.IsPublished = profile.IsPublished
	stored.ShareEnabled = profile.ShareEnabled
	stored.ShareToken = profile.ShareToken
	stored.Snapshot = profile.Snapshot
	stored.PublishedAt = profile.PublishedAt
	return nil
}

func (f *fakeProfileStore) Claim(ctx context.Context, token string, userID uuid.UUID) (bool, error) {
	profile, ok := f.profiles[token]
	if !ok || profile.UserID != nil {
		return false, nil
	}
	profile.UserID = &userID
	return true, nil
}

func (f *fakeProfileStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, profile := range f.profiles {
		if profile.UserID != nil && *profile.UserID == userID {
			copied := *profile
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	for token, profile := range f.profiles {
		if profile.UserID != nil && *profile.UserID == userID {
			delete(f.profiles, token)
			delete(f.meta, token)
		}
	}
	return nil
}

// fakeCertificateStore is an in-memory CertificateStore.
type fakeCertificateStore struct {
	certs   []*models.Certificate
	failing bool
}

func (f *fakeCertificateStore) Create(ctx context.Context, cert *models.Certificate) error {
	if f.failing {
		return errors.New("store unavailable")
	}
	cert.ID = uuid.New()
	f.certs = append(f.certs, cert)
	return nil
}

func (f *fakeCertificateStore) ListByToken(ctx context.Context, token string) ([]*models.Certificate, error) {
	var out []*models.Certificate
	for _, cert := range f.certs {
		if cert.Token == token {
			out = append(out, cert)
		}
	}
	return out, nil
}

// fakeReferenceStore is an in-memory ReferenceStore.
type fakeReferenceStore struct {
	refs []*models.Reference
}

func (f *fakeReferenceStore) Create(ctx context.Context, ref *models.Reference) error {
	ref.ID = uuid.New()
	f.refs = append(f.refs, ref)
	return nil
}

func (f *fakeReferenceStore) ListByToken(ctx context.Context, token string) ([]*models.Reference, error) {
	var out []*models.Reference
	for _, ref := range f.refs {
		if ref.Token == token {
			out = append(out, ref)
		}
	}
	return out, nil
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetBySlug(ctx context.Context, slug string) (*models.User, error) {
	for _, user := range f.users {
		if user.PublicSlug != nil && *user.PublicSlug == slug {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeUserStore) AssignSlug(ctx context.Context, id uuid.UUID, slug string) (bool, error) {
	user, ok := f.users[id]
	if !ok {
		return false, errFakeNotFound
	}
	if user.PublicSlug != nil {
		return false, nil
	}
	user.PublicSlug = &slug
	return true, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	sessions map[string]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *models.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionStore) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}
