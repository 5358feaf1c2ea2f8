package service

import (
	"context"
	"errors"
	"testing"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPublishService(t *testing.T) (*PublishService, *fakeProfileStore, *fakeCertificateStore, *fakeReferenceStore) {
	t.Helper()
	profiles := newFakeProfileStore()
	certs := &fakeCertificateStore{}
	refs := &fakeReferenceStore{}
	return NewPublishService(profiles, certs, refs, zap.NewNop()), profiles, certs, refs
}

func TestPublishFreezesSnapshot(t *testing.T) {
	svc, profiles, certs, refs := newTestPublishService(t)

	doc := models.ProfileDocument{"person": map[string]interface{}{"name": "Jane Doe", "summary": "parsed"}}
	seedProfile(t, profiles, "tok-1", nil, doc)
	require.NoError(t, certs.Create(context.Background(), &models.Certificate{
		Token:    "tok-1",
		Document: models.CertificateDocument{"title": "Cert A"},
	}))
	require.NoError(t, refs.Create(context.Background(), &models.Reference{Token: "tok-1", Text: "note"}))

	profile, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)

	assert.True(t, profile.IsPublished)
	assert.True(t, profile.ShareEnabled)
	require.NotNil(t, profile.ShareToken)
	require.NotNil(t, profile.PublishedAt)

	require.NotNil(t, profile.Snapshot)
	assert.Equal(t, "Jane Doe", profile.Snapshot.Meta.Name)
	require.Len(t, profile.Snapshot.Certificates, 1)
	assert.Equal(t, []string{"note"}, profile.Snapshot.AdditionalTexts)
}

func TestPublishedSnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	svc, profiles, _, _ := newTestPublishService(t)

	seedProfile(t, profiles, "tok-1", nil, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	published, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	require.NotNil(t, published.ShareToken)

	// Edit the live summary after publishing.
	require.NoError(t, profiles.UpdateMetaSummary(context.Background(), "tok-1", "new live summary"))

	snapshot, err := svc.SharedSnapshot(context.Background(), *published.ShareToken)
	require.NoError(t, err)
	assert.NotEqual(t, "new live summary", snapshot.Meta.Summary)
}

func TestRepublishReplacesSnapshot(t *testing.T) {
	svc, profiles, _, _ := newTestPublishService(t)

	seedProfile(t, profiles, "tok-1", nil, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	first, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)

	require.NoError(t, profiles.UpdateMetaSummary(context.Background(), "tok-1", "updated summary"))

	second, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "updated summary", second.Snapshot.Meta.Summary)
	assert.Equal(t, *first.ShareToken, *second.ShareToken, "share token survives re-publish")
}

func TestUnpublishIsIdempotentAndKeepsSnapshot(t *testing.T) {
	svc, profiles, _, _ := newTestPublishService(t)

	seedProfile(t, profiles, "tok-1", nil, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	published, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	shareToken := *published.ShareToken

	for i := 0; i < 2; i++ {
		profile, err := svc.Unpublish(context.Background(), "tok-1", nil)
		require.NoError(t, err)
		assert.False(t, profile.IsPublished)
		assert.False(t, profile.ShareEnabled)
		assert.NotNil(t, profile.Snapshot, "snapshot is preserved")
		assert.NotNil(t, profile.PublishedAt)
	}

	// The share link stops resolving.
	_, err = svc.SharedSnapshot(context.Background(), shareToken)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegenerateShareTokenRevokesOldLink(t *testing.T) {
	svc, profiles, _, _ := newTestPublishService(t)

	seedProfile(t, profiles, "tok-1", nil, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	published, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	oldToken := *published.ShareToken

	newToken, err := svc.RegenerateShareToken(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	_, err = svc.SharedSnapshot(context.Background(), oldToken)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.SharedSnapshot(context.Background(), newToken)
	assert.NoError(t, err)
}

func TestSharedSnapshotUniformNotFound(t *testing.T) {
	svc, profiles, _, _ := newTestPublishService(t)

	// Published but share-disabled profile.
	seedProfile(t, profiles, "tok-1", nil, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})
	published, err := svc.Publish(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	shareToken := *published.ShareToken
	_, err = svc.Unpublish(context.Background(), "tok-1", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "unknown token", token: "does-not-exist"},
		{name: "revoked token", token: shareToken},
		{name: "empty token", token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SharedSnapshot(context.Background(), tt.token)
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestPublishOwnership(t *testing.T) {
	svc, profiles, _, _ := newTestPublishService(t)

	ownerID := uuid.New()
	seedProfile(t, profiles, "tok-owned", &ownerID, models.ProfileDocument{
		"person": map[string]interface{}{"name": "Jane Doe"},
	})

	t.Run("anonymous requester is rejected", func(t *testing.T) {
		_, err := svc.Publish(context.Background(), "tok-owned", nil)
		assert.True(t, errors.Is(err, ErrAccessDenied))
	})

	t.Run("other account is rejected", func(t *testing.T) {
		otherID := uuid.New()
		_, err := svc.Publish(context.Background(), "tok-owned", &otherID)
		assert.True(t, errors.Is(err, ErrAccessDenied))
	})

	t.Run("owner may publish", func(t *testing.T) {
		_, err := svc.Publish(context.Background(), "tok-owned", &ownerID)
		assert.NoError(t, err)
	})
}

func TestPublishUnknownProfile(t *testing.T) {
	svc, _, _, _ := newTestPublishService(t)

	_, err := svc.Publish(context.Background(), "missing", nil)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}
