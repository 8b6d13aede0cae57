package services

import (
	"context"
	"fmt"

	"github.com/termvault/termvault/internal/database"
	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/logger"
	"github.com/termvault/termvault/internal/metrics"
	"github.com/termvault/termvault/internal/terminology"
)

// Resolver binds mapping endpoints to stored concepts and sources. Mappings
// may be written before their targets exist; the Reresolve methods attach the
// pointers once the target shows up.
type Resolver struct {
	dbCtx         *database.Context
	defaultLocale string
	log           *logger.Logger
	metrics       *metrics.Metrics
}

func NewResolver(dbCtx *database.Context, opts Options) *Resolver {
	opts = opts.withDefaults()
	return &Resolver{
		dbCtx:         dbCtx,
		defaultLocale: opts.DefaultLocale,
		log:           opts.Logger.ServiceLogger("resolver"),
		metrics:       opts.Metrics,
	}
}

// ResolveEndpoint turns the textual description of an endpoint into an
// Endpoint. Lookups that find nothing leave the endpoint unresolved; only
// storage failures are returned.
func (r *Resolver) ResolveEndpoint(ctx context.Context, q *sqldb.Queries, in terminology.EndpointInput) (terminology.Endpoint, error) {
	concepts := database.NewConceptRepository(r.dbCtx).WithQueries(q)
	sources := database.NewSourceRepository(r.dbCtx).WithQueries(q)

	ep := terminology.Endpoint{
		SourceURL:     in.SourceURL,
		SourceVersion: in.SourceVersion,
		Code:          in.Code,
		Name:          in.Name,
	}

	if in.ConceptURL != "" {
		c, err := concepts.FindByURI(ctx, in.ConceptURL)
		if err != nil {
			return ep, fmt.Errorf("failed to look up concept %s: %w", in.ConceptURL, err)
		}
		if c != nil {
			ep.Concept = c.Ref(r.defaultLocale)
			// Endpoints point at the versioned object, never a version row.
			if c.VersionedObjectID != 0 {
				ep.Concept.ID = c.VersionedObjectID
			}
		}
		if ep.Code == "" {
			ep.Code = terminology.CodeFromConceptURL(in.ConceptURL)
		}
		if ep.SourceURL == "" {
			ep.SourceURL = terminology.ToParentURI(in.ConceptURL)
		}
	}

	if version, versionless := terminology.SeparateVersion(ep.SourceURL); version != "" {
		ep.SourceURL = versionless
		if ep.SourceVersion == "" {
			ep.SourceVersion = version
		}
	}

	source, err := sources.FindHeadByURL(ctx, ep.SourceURL)
	if err != nil {
		return ep, fmt.Errorf("failed to look up source %s: %w", ep.SourceURL, err)
	}
	ep.Source = source

	if ep.Concept == nil && source != nil && ep.Code != "" {
		root, err := concepts.FindRoot(ctx, source.ID, ep.Code)
		if err != nil {
			return ep, fmt.Errorf("failed to look up concept %s in %s: %w", ep.Code, source.URI, err)
		}
		if root != nil && root.IsActive {
			ep.Concept = root.Ref(r.defaultLocale)
		}
	}

	return ep, nil
}

// ReresolveOnConceptCreated points unresolved mapping endpoints that name c
// at c. It returns the number of endpoints updated; calling it again for the
// same concept updates nothing.
func (r *Resolver) ReresolveOnConceptCreated(ctx context.Context, q *sqldb.Queries, c *terminology.Concept) (int64, error) {
	parent := c.Parent
	if parent == nil {
		found, err := database.NewSourceRepository(r.dbCtx).WithQueries(q).FindByID(ctx, c.ParentID)
		if err != nil {
			return 0, fmt.Errorf("failed to load concept parent: %w", err)
		}
		if found == nil {
			return 0, notFound("source %d", c.ParentID)
		}
		parent = found
	}

	conceptID := c.VersionedObjectID
	if conceptID == 0 {
		conceptID = c.ID
	}

	sourceURL, canonicalURL := identifyingPair(parent)
	params := sqldb.ResolveConceptParams{
		ConceptID:    conceptID,
		Code:         c.Mnemonic,
		SourceUrl:    sourceURL,
		CanonicalUrl: canonicalURL,
	}

	to, err := q.ResolveMappingsToConcept(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve mappings to concept: %w", err)
	}
	from, err := q.ResolveMappingsFromConcept(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve mappings from concept: %w", err)
	}

	total := to + from
	r.metrics.RecordResolutions(terminology.KindConcept, total)
	if total > 0 {
		r.log.Debug().
			Int64("concept_id", conceptID).
			Str("code", c.Mnemonic).
			Int64("endpoints", total).
			Msg("Resolved pending mapping endpoints")
	}
	return total, nil
}

// ReresolveOnSourceIdentified points unresolved source pointers that name s
// at s, then resolves pending concept endpoints for every concept of s. It is
// used when a source is created or learns its canonical URL.
func (r *Resolver) ReresolveOnSourceIdentified(ctx context.Context, q *sqldb.Queries, s *terminology.Source) (int64, error) {
	sourceURL, canonicalURL := identifyingPair(s)
	params := sqldb.ResolveSourceParams{
		SourceID:     s.ID,
		SourceUrl:    sourceURL,
		CanonicalUrl: canonicalURL,
	}

	to, err := q.ResolveMappingsToSource(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve mappings to source: %w", err)
	}
	from, err := q.ResolveMappingsFromSource(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve mappings from source: %w", err)
	}
	total := to + from
	r.metrics.RecordResolutions(terminology.KindSource, total)

	roots, err := database.NewConceptRepository(r.dbCtx).WithQueries(q).ListRoots(ctx, s.ID)
	if err != nil {
		return total, fmt.Errorf("failed to list concepts of %s: %w", s.URI, err)
	}
	for _, root := range roots {
		root.Parent = s
		n, err := r.ReresolveOnConceptCreated(ctx, q, root)
		if err != nil {
			return total, err
		}
		total += n
	}

	if total > 0 {
		r.log.Debug().
			Int64("source_id", s.ID).
			Str("uri", s.URI).
			Int64("endpoints", total).
			Msg("Resolved pending mapping sources")
	}
	return total, nil
}

// identifyingPair returns the versionless URI of s and its canonical URL,
// falling back to the URI when no canonical URL is known.
func identifyingPair(s *terminology.Source) (string, string) {
	urls := s.IdentifyingURLs()
	if len(urls) == 0 {
		return "", ""
	}
	if len(urls) == 1 {
		return urls[0], urls[0]
	}
	return urls[0], urls[1]
}
