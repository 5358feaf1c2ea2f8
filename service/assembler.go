package service

import (
	"context"
	"fmt"

	"cvchat-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Person holds the normalized person fields of an evidence context
type Person struct {
	Name     string
	Title    string
	Location string
	Summary  string
}

// ExperienceEntry is one normalized work experience item
type ExperienceEntry struct {
	Organization string
	Role         string
	Start        string
	End          string
	Tasks        []string
	Keywords     []string
}

// ProjectEntry is one normalized project item
type ProjectEntry struct {
	Name      string
	Role      string
	Summary   string
	Impact    string
	TechStack []string
	Links     []string
}

// EducationEntry is one normalized education item
type EducationEntry struct {
	Institution string
	Degree      string
	Start       string
	End         string
}

// LanguageEntry is one normalized language item
type LanguageEntry struct {
	Name  string
	Level string
}

// CertificateEntry is one normalized certificate item
type CertificateEntry struct {
	Title  string
	Issuer string
	Date   string
}

// EvidenceContext is the unified, shape-stable view of all evidence for one
// profile token. It is the only input the answering engine sees; whatever
// irregularities the stored documents carry stop here.
type EvidenceContext struct {
	Token   string
	OwnerID *uuid.UUID

	Person          Person
	Skills          []string
	Experience      []ExperienceEntry
	Projects        []ProjectEntry
	Education       []EducationEntry
	Languages       []LanguageEntry
	Certificates    []CertificateEntry
	AdditionalTexts []string
}

// ContextAssembler gathers all evidence rows for a token into one
// EvidenceContext
type ContextAssembler struct {
	profiles ProfileStore
	certs    CertificateStore
	refs     ReferenceStore
	users    UserStore
	logger   *zap.Logger
}

// NewContextAssembler creates a new context assembler
func NewContextAssembler(profiles ProfileStore, certs CertificateStore, refs ReferenceStore, users UserStore, log *zap.Logger) *ContextAssembler {
	return &ContextAssembler{
		profiles: profiles,
		certs:    certs,
		refs:     refs,
		users:    users,
		logger:   log,
	}
}

// AssembleByToken builds the evidence context for a profile token
func (a *ContextAssembler) AssembleByToken(ctx context.Context, token string) (*EvidenceContext, error) {
	profile, err := a.profiles.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, token)
	}

	return a.assemble(ctx, profile)
}

// AssembleBySlug builds the evidence context for a public slug, resolving to
// the most-recently-updated profile owned by that slug's user.
func (a *ContextAssembler) AssembleBySlug(ctx context.Context, slug string) (*EvidenceContext, error) {
	user, err := a.users.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: slug %s", ErrProfileNotFound, slug)
	}

	profile, err := a.profiles.GetLatestByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: no profile for slug %s", ErrProfileNotFound, slug)
	}

	return a.assemble(ctx, profile)
}

func (a *ContextAssembler) assemble(ctx context.Context, profile *models.Profile) (*EvidenceContext, error) {
	// Meta must exist for any parsed profile; its absence signals an
	// incomplete or corrupt record.
	meta, err := a.profiles.GetMetaByToken(ctx, profile.Token)
	if err != nil {
		a.logger.Warn("profile has no meta projection", zap.String("token", profile.Token))
		return nil, fmt.Errorf("%w: incomplete record %s", ErrProfileNotFound, profile.Token)
	}

	ec := &EvidenceContext{
		Token:   profile.Token,
		OwnerID: profile.UserID,
	}
	a.normalizeDocument(ec, profile.Document)

	// The meta summary is independently editable; when set it supersedes the
	// summary parsed from the source document.
	if meta.Summary != "" {
		ec.Person.Summary = meta.Summary
	}
	if ec.Person.Name == "" {
		ec.Person.Name = meta.Name
	}

	certs, err := a.certs.ListByToken(ctx, profile.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}
	for _, cert := range certs {
		ec.Certificates = append(ec.Certificates, CertificateEntry{
			Title:  asString(cert.Document["title"]),
			Issuer: asString(cert.Document["issuer"]),
			Date:   asString(cert.Document["date"]),
		})
	}

	refs, err := a.refs.ListByToken(ctx, profile.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference texts: %w", err)
	}
	for _, ref := range refs {
		if ref.Text != "" {
			ec.AdditionalTexts = append(ec.AdditionalTexts, ref.Text)
		}
	}

	return ec, nil
}

// normalizeDocument coerces every field of the stored document to its
// expected shape. The document came from a language model and may not match
// the current schema.
func (a *ContextAssembler) normalizeDocument(ec *EvidenceContext, doc models.ProfileDocument) {
	person := asMap(doc["person"])
	ec.Person = Person{
		Name:     asString(person["name"]),
		Title:    asString(person["title"]),
		Location: asString(person["location"]),
		Summary:  asString(person["summary"]),
	}

	ec.Skills = asStringSlice(doc["skills"])

	for _, item := range asMapSlice(doc["experience"]) {
		ec.Experience = append(ec.Experience, ExperienceEntry{
			Organization: asString(item["organization"]),
			Role:         asString(item["role"]),
			Start:        asString(item["start"]),
			End:          asString(item["end"]),
			Tasks:        asStringSlice(item["tasks"]),
			Keywords:     asStringSlice(item["keywords"]),
		})
	}

	for _, item := range asMapSlice(doc["projects"]) {
		ec.Projects = append(ec.Projects, ProjectEntry{
			Name:      asString(item["name"]),
			Role:      asString(item["role"]),
			Summary:   asString(item["summary"]),
			Impact:    asString(item["impact"]),
			TechStack: asStringSlice(item["techStack"]),
			Links:     asStringSlice(item["links"]),
		})
	}

	for _, item := range asMapSlice(doc["education"]) {
		ec.Education = append(ec.Education, EducationEntry{
			Institution: asString(item["institution"]),
			Degree:      asString(item["degree"]),
			Start:       asString(item["start"]),
			End:         asString(item["end"]),
		})
	}

	for _, item := range asMapSlice(doc["languages"]) {
		ec.Languages = append(ec.Languages, LanguageEntry{
			Name:  asString(item["name"]),
			Level: asString(item["level"]),
		})
	}

	// Certificates embedded in the CV itself are evidence too, alongside the
	// separately uploaded certificate documents.
	for _, item := range asMapSlice(doc["certificates"]) {
		ec.Certificates = append(ec.Certificates, CertificateEntry{
			Title:  asString(item["title"]),
			Issuer: asString(item["issuer"]),
			Date:   asString(item["date"]),
		})
	}
}
