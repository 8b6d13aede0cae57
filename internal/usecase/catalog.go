// Package usecase addresses sources, concepts and mappings by URI for the
// operator surfaces and forwards to the services layer.
package usecase

import (
	"context"

	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/services"
	"github.com/termvault/termvault/internal/terminology"
)

type Catalog struct {
	svc   *services.Services
	actor string
}

// NewCatalog returns a Catalog recording actor on every write.
func NewCatalog(svc *services.Services, actor string) *Catalog {
	return &Catalog{svc: svc, actor: actor}
}

// Actor returns the user recorded on writes.
func (u *Catalog) Actor() string {
	return u.actor
}

func (u *Catalog) CreateSource(ctx context.Context, in services.SourceInput) (*terminology.Source, error) {
	return u.svc.Sources.Create(ctx, in, u.actor)
}

// SnapshotSource creates a labelled version of the HEAD source at sourceURI.
func (u *Catalog) SnapshotSource(ctx context.Context, sourceURI, version string, released bool) (*terminology.Source, error) {
	head, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Sources.CreateVersion(ctx, head, version, released, u.actor)
}

func (u *Catalog) SetCanonicalURL(ctx context.Context, sourceURI, url string) (*terminology.Source, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Sources.SetCanonicalURL(ctx, src.ID, url, u.actor)
}

// SourceVersions lists every version of the source at sourceURI, HEAD first.
func (u *Catalog) SourceVersions(ctx context.Context, sourceURI string) ([]*terminology.Source, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Sources.Versions(ctx, src.OwnerType, src.Owner, src.Mnemonic)
}

type ConceptInput struct {
	Source       string
	ID           string
	ConceptClass string
	Datatype     string
	ExternalID   string
	Comment      string
	Names        []terminology.NameInput
	Descriptions []terminology.DescriptionInput
}

// CreateConcept stores a new concept and returns its first version.
func (u *Catalog) CreateConcept(ctx context.Context, in ConceptInput) (*terminology.Concept, error) {
	src, err := u.svc.Sources.GetByURI(ctx, in.Source)
	if err != nil {
		return nil, err
	}

	c := &terminology.Concept{
		Mnemonic:     in.ID,
		ParentID:     src.ID,
		Parent:       src,
		ConceptClass: in.ConceptClass,
		Datatype:     in.Datatype,
		ExternalID:   in.ExternalID,
		Comment:      in.Comment,
		Names:        terminology.NewNames(in.Names),
		Descriptions: terminology.NewDescriptions(in.Descriptions),
	}
	if err := u.svc.Concepts.PersistNew(ctx, c, u.actor); err != nil {
		return nil, err
	}
	return u.svc.Concepts.Get(ctx, src.ID, in.ID)
}

func (u *Catalog) UpdateConcept(ctx context.Context, sourceURI, id string, update terminology.ConceptUpdate) (*terminology.Concept, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Concepts.Update(ctx, src.ID, id, update, u.actor)
}

// RetireConcept retires the concept, or un-retires it when retired is false.
func (u *Catalog) RetireConcept(ctx context.Context, sourceURI, id string, retired bool, comment string) (*terminology.Concept, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	if retired {
		return u.svc.Concepts.Retire(ctx, src.ID, id, comment, u.actor)
	}
	return u.svc.Concepts.Unretire(ctx, src.ID, id, comment, u.actor)
}

// GetConcept returns the latest version of a concept, or the labelled one
// when version is set.
func (u *Catalog) GetConcept(ctx context.Context, sourceURI, id, version string) (*terminology.Concept, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	if version != "" {
		return u.svc.Concepts.GetVersion(ctx, src.ID, id, version)
	}
	return u.svc.Concepts.Get(ctx, src.ID, id)
}

func (u *Catalog) ConceptVersions(ctx context.Context, sourceURI, id string) ([]database.VersionRecord, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Concepts.Versions(ctx, src.ID, id)
}

// ConceptSources lists the source versions holding the selected version of a
// concept.
func (u *Catalog) ConceptSources(ctx context.Context, sourceURI, id, version string) ([]*terminology.Source, error) {
	c, err := u.GetConcept(ctx, sourceURI, id, version)
	if err != nil {
		return nil, err
	}
	return u.svc.Concepts.Sources(ctx, c.ID)
}

type MappingInput struct {
	Source     string
	ID         string
	MapType    string
	From       terminology.EndpointInput
	To         terminology.EndpointInput
	ExternalID string
	Comment    string
}

// CreateMapping stores a new mapping and returns its first version.
func (u *Catalog) CreateMapping(ctx context.Context, in MappingInput) (*terminology.Mapping, error) {
	src, err := u.svc.Sources.GetByURI(ctx, in.Source)
	if err != nil {
		return nil, err
	}
	return u.svc.Mappings.PersistNew(ctx, services.MappingInput{
		ParentID:   src.ID,
		Mnemonic:   in.ID,
		MapType:    in.MapType,
		From:       in.From,
		To:         in.To,
		ExternalID: in.ExternalID,
		Comment:    in.Comment,
	}, u.actor)
}

func (u *Catalog) GetMapping(ctx context.Context, sourceURI, id string) (*terminology.Mapping, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Mappings.Get(ctx, src.ID, id)
}

func (u *Catalog) MappingVersions(ctx context.Context, sourceURI, id string) ([]database.VersionRecord, error) {
	src, err := u.svc.Sources.GetByURI(ctx, sourceURI)
	if err != nil {
		return nil, err
	}
	return u.svc.Mappings.Versions(ctx, src.ID, id)
}

// MappingSources lists the source versions holding the latest version of a
// mapping.
func (u *Catalog) MappingSources(ctx context.Context, sourceURI, id string) ([]*terminology.Source, error) {
	m, err := u.GetMapping(ctx, sourceURI, id)
	if err != nil {
		return nil, err
	}
	return u.svc.Mappings.Sources(ctx, m.ID)
}
