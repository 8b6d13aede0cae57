// Package services implements the write protocol for versioned concepts and
// mappings on top of the database package.
package services

import "github.com/termvault/termvault/internal/database"

// Services bundles the entity services sharing one database and one set of
// collaborators.
type Services struct {
	Sources  *SourceService
	Concepts *ConceptService
	Mappings *MappingService
	Resolver *Resolver
}

func New(dbCtx *database.Context, opts Options) *Services {
	opts = opts.withDefaults()
	return &Services{
		Sources:  NewSourceService(dbCtx, opts),
		Concepts: NewConceptService(dbCtx, opts),
		Mappings: NewMappingService(dbCtx, opts),
		Resolver: NewResolver(dbCtx, opts),
	}
}
