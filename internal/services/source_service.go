package services

import (
	"context"
	"fmt"
	"time"

	"github.com/termvault/termvault/internal/database"
	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/indexing"
	"github.com/termvault/termvault/internal/terminology"
)

// SourceInput describes a new source.
type SourceInput struct {
	OwnerType        string
	Owner            string
	Mnemonic         string
	CanonicalURL     string
	DefaultLocale    string
	SupportedLocales []string
}

// SourceService manages sources and their released versions.
type SourceService struct {
	runner
	validator     Validator
	resolver      *Resolver
	defaultLocale string
}

func NewSourceService(dbCtx *database.Context, opts Options) *SourceService {
	opts = opts.withDefaults()
	return &SourceService{
		runner: runner{
			ctx:     dbCtx,
			indexer: opts.Indexer,
			log:     opts.Logger.ServiceLogger(terminology.KindSource),
			metrics: opts.Metrics,
		},
		validator:     opts.Validator,
		resolver:      NewResolver(dbCtx, opts),
		defaultLocale: opts.DefaultLocale,
	}
}

func (s *SourceService) repository() *database.SourceRepository {
	return database.NewSourceRepository(s.ctx)
}

// Create stores the HEAD version of a new source and binds mappings that
// already refer to it by URL.
func (s *SourceService) Create(ctx context.Context, in SourceInput, actor string) (*terminology.Source, error) {
	if actor == "" {
		return nil, missingActor(terminology.MsgSourceSpecifyUser)
	}

	src := &terminology.Source{
		OwnerType:        in.OwnerType,
		Owner:            in.Owner,
		Mnemonic:         in.Mnemonic,
		Version:          terminology.HEAD,
		CanonicalURL:     in.CanonicalURL,
		DefaultLocale:    in.DefaultLocale,
		SupportedLocales: in.SupportedLocales,
		IsLatestVersion:  false,
		CreatedBy:        actor,
		UpdatedBy:        actor,
	}
	if src.OwnerType == "" {
		src.OwnerType = terminology.OwnerOrganization
	}
	if src.DefaultLocale == "" {
		src.DefaultLocale = s.defaultLocale
	}
	src.URI = terminology.SourceURI(src.OwnerType, src.Owner, src.Mnemonic, terminology.HEAD)

	if errs := s.validator.ValidateSource(ctx, src); !errs.Empty() {
		return nil, errs
	}

	err := s.persist(ctx, terminology.KindSource, "create", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		id, err := s.repository().WithQueries(q).Create(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to insert source: %w", err)
		}
		src.ID = id
		if _, err := s.resolver.ReresolveOnSourceIdentified(ctx, q, src); err != nil {
			return nil, err
		}
		return ref(terminology.KindSource, id), nil
	})
	if err != nil {
		src.ID = 0
		return nil, asErrorSet(err)
	}

	s.log.Info().Str("uri", src.URI).Int64("source_id", src.ID).Msg("Source created")
	return src, nil
}

// CreateVersion snapshots HEAD as a labelled version. The new version
// contains the latest version of every concept and mapping in HEAD and
// becomes the latest version of the source.
func (s *SourceService) CreateVersion(ctx context.Context, head *terminology.Source, version string, released bool, actor string) (*terminology.Source, error) {
	if actor == "" {
		return nil, missingActor(terminology.MsgSourceSpecifyUser)
	}
	if !head.IsHead() {
		return nil, terminology.FieldError(terminology.ErrValidation, terminology.AllFields, "Versions can only be created from HEAD.")
	}

	v := &terminology.Source{
		OwnerType:        head.OwnerType,
		Owner:            head.Owner,
		Mnemonic:         head.Mnemonic,
		Version:          version,
		URI:              terminology.SourceURI(head.OwnerType, head.Owner, head.Mnemonic, version),
		CanonicalURL:     head.CanonicalURL,
		DefaultLocale:    head.DefaultLocale,
		SupportedLocales: head.SupportedLocales,
		Released:         released,
		IsLatestVersion:  true,
		CreatedBy:        actor,
		UpdatedBy:        actor,
	}
	if version == terminology.HEAD {
		return nil, terminology.FieldError(terminology.ErrValidation, "version", "HEAD is reserved for the working copy.")
	}
	if errs := s.validator.ValidateSource(ctx, v); !errs.Empty() {
		return nil, errs
	}

	start := time.Now()
	var concepts, mappings int64
	err := s.persist(ctx, terminology.KindSource, "version", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		if err := q.ClearLatestSourceVersion(ctx, sqldb.ClearLatestSourceVersionParams{
			OwnerType: head.OwnerType,
			Owner:     head.Owner,
			Mnemonic:  head.Mnemonic,
		}); err != nil {
			return nil, fmt.Errorf("failed to clear latest source version: %w", err)
		}

		id, err := s.repository().WithQueries(q).Create(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("failed to insert source version: %w", err)
		}
		v.ID = id

		copyParams := sqldb.CopyMembershipsParams{TargetSourceID: id, FromSourceID: head.ID}
		if concepts, err = q.CopyConceptMemberships(ctx, copyParams); err != nil {
			return nil, fmt.Errorf("failed to copy concepts into version: %w", err)
		}
		if mappings, err = q.CopyMappingMemberships(ctx, copyParams); err != nil {
			return nil, fmt.Errorf("failed to copy mappings into version: %w", err)
		}
		return ref(terminology.KindSource, id), nil
	})
	if err != nil {
		v.ID = 0
		return nil, asErrorSet(err)
	}

	s.log.Info().
		Str("uri", v.URI).
		Int64("concepts", concepts).
		Int64("mappings", mappings).
		Dur("duration_ms", time.Since(start)).
		Msg("Source version created")
	return v, nil
}

// SetCanonicalURL records the canonical URL of a HEAD source and binds
// mappings that refer to the source by that URL.
func (s *SourceService) SetCanonicalURL(ctx context.Context, sourceID int64, url, actor string) (*terminology.Source, error) {
	if actor == "" {
		return nil, missingActor(terminology.MsgSourceSpecifyUser)
	}

	var updated *terminology.Source
	err := s.persist(ctx, terminology.KindSource, "canonical_url", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		sources := s.repository().WithQueries(q)
		current, err := sources.FindByID(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source: %w", err)
		}
		if current == nil {
			return nil, notFound("source %d", sourceID)
		}

		current.CanonicalURL = url
		if errs := s.validator.ValidateSource(ctx, current); !errs.Empty() {
			return nil, errs
		}

		if _, err := sources.SetCanonicalURL(ctx, sourceID, url, actor); err != nil {
			return nil, fmt.Errorf("failed to update canonical url: %w", err)
		}
		if updated, err = sources.FindByID(ctx, sourceID); err != nil {
			return nil, fmt.Errorf("failed to reload source: %w", err)
		}
		if updated.IsHead() {
			if _, err := s.resolver.ReresolveOnSourceIdentified(ctx, q, updated); err != nil {
				return nil, err
			}
		}
		return ref(terminology.KindSource, sourceID), nil
	})
	if err != nil {
		return nil, asErrorSet(err)
	}
	return updated, nil
}

// Get returns a version of a source. An empty version means HEAD.
func (s *SourceService) Get(ctx context.Context, ownerType, owner, mnemonic, version string) (*terminology.Source, error) {
	src, err := s.repository().FindVersion(ctx, ownerType, owner, mnemonic, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load source %s: %w", mnemonic, err)
	}
	if src == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Source %s not found.", mnemonic))
	}
	return src, nil
}

// GetByURI returns the source version stored under uri.
func (s *SourceService) GetByURI(ctx context.Context, uri string) (*terminology.Source, error) {
	src, err := s.repository().FindByURI(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to load source %s: %w", uri, err)
	}
	if src == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Source %s not found.", uri))
	}
	return src, nil
}

// Versions lists every version of a source, HEAD first.
func (s *SourceService) Versions(ctx context.Context, ownerType, owner, mnemonic string) ([]*terminology.Source, error) {
	return s.repository().ListVersions(ctx, ownerType, owner, mnemonic)
}

// Concepts lists the concept rows contained in a source version.
func (s *SourceService) Concepts(ctx context.Context, sourceID int64) ([]*terminology.Concept, error) {
	return database.NewConceptRepository(s.ctx).ListInSource(ctx, sourceID)
}

// Mappings lists the mapping rows contained in a source version.
func (s *SourceService) Mappings(ctx context.Context, sourceID int64) ([]*terminology.Mapping, error) {
	return database.NewMappingRepository(s.ctx, s.defaultLocale).ListInSource(ctx, sourceID)
}
