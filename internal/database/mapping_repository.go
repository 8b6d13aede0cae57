package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/terminology"
)

// MappingRepository loads mapping rows with their endpoints resolved to the
// stored concept and source rows they point at.
type MappingRepository struct {
	ctx           *Context
	q             *sqldb.Queries
	defaultLocale string
}

// NewMappingRepository creates a repository. defaultLocale is used to pick
// the display names of endpoint concepts.
func NewMappingRepository(dbCtx *Context, defaultLocale string) *MappingRepository {
	return &MappingRepository{ctx: dbCtx, defaultLocale: defaultLocale}
}

// WithQueries returns a copy bound to q, typically a transaction.
func (r *MappingRepository) WithQueries(q *sqldb.Queries) *MappingRepository {
	return &MappingRepository{ctx: r.ctx, q: q, defaultLocale: r.defaultLocale}
}

func (r *MappingRepository) queries() (*sqldb.Queries, error) {
	if r.q != nil {
		return r.q, nil
	}
	if queries := queriesFromContext(r.ctx); queries != nil {
		return queries, nil
	}
	return nil, fmt.Errorf("mapping repository: missing database context")
}

func (r *MappingRepository) one(ctx context.Context, q *sqldb.Queries, row sqldb.Mapping, err error) (*terminology.Mapping, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r.load(ctx, q, row)
}

func (r *MappingRepository) many(ctx context.Context, q *sqldb.Queries, rows []sqldb.Mapping) ([]*terminology.Mapping, error) {
	result := make([]*terminology.Mapping, 0, len(rows))
	for _, row := range rows {
		m, err := r.load(ctx, q, row)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *MappingRepository) load(ctx context.Context, q *sqldb.Queries, row sqldb.Mapping) (*terminology.Mapping, error) {
	m := MappingFromRow(row)

	parent, err := q.FindSourceByID(ctx, m.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping parent: %w", err)
	}
	m.Parent = SourceFromRow(parent)

	concepts := NewConceptRepository(r.ctx).WithQueries(q)
	sources := NewSourceRepository(r.ctx).WithQueries(q)

	if m.From.Concept, err = r.conceptRef(ctx, concepts, row.FromConceptID); err != nil {
		return nil, err
	}
	if m.To.Concept, err = r.conceptRef(ctx, concepts, row.ToConceptID); err != nil {
		return nil, err
	}
	if m.From.Source, err = sourceRef(ctx, sources, row.FromSourceID); err != nil {
		return nil, err
	}
	if m.To.Source, err = sourceRef(ctx, sources, row.ToSourceID); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *MappingRepository) conceptRef(ctx context.Context, concepts *ConceptRepository, id sql.NullInt64) (*terminology.ConceptRef, error) {
	if !id.Valid {
		return nil, nil
	}
	c, err := concepts.FindByID(ctx, id.Int64)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping endpoint concept: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	return c.Ref(r.defaultLocale), nil
}

func sourceRef(ctx context.Context, sources *SourceRepository, id sql.NullInt64) (*terminology.Source, error) {
	if !id.Valid {
		return nil, nil
	}
	s, err := sources.FindByID(ctx, id.Int64)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping endpoint source: %w", err)
	}
	return s, nil
}

func (r *MappingRepository) FindByID(ctx context.Context, id int64) (*terminology.Mapping, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.FindMappingByID(ctx, id)
	return r.one(ctx, q, row, err)
}

// FindRoot returns the versioned object with mnemonic under parentID.
func (r *MappingRepository) FindRoot(ctx context.Context, parentID int64, mnemonic string) (*terminology.Mapping, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.FindMappingRoot(ctx, sqldb.FindMappingRootParams{ParentID: parentID, Mnemonic: mnemonic})
	return r.one(ctx, q, row, err)
}

// ExistsActive reports whether an active mapping row with mnemonic exists
// under parentID, ignoring case.
func (r *MappingRepository) ExistsActive(ctx context.Context, parentID int64, mnemonic string) (bool, error) {
	q, err := r.queries()
	if err != nil {
		return false, err
	}
	count, err := q.CountActiveMappingsByMnemonic(ctx, sqldb.CountByMnemonicParams{ParentID: parentID, Mnemonic: mnemonic})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindLatest returns the latest version of a versioned object.
func (r *MappingRepository) FindLatest(ctx context.Context, versionedObjectID int64) (*terminology.Mapping, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	row, err := q.FindLatestMappingVersion(ctx, versionedObjectID)
	latest, err := r.one(ctx, q, row, err)
	r.ctx.logger("find_latest_mapping").LogDbOperation(time.Since(start), found(latest != nil), err)
	return latest, err
}

// ListVersions returns every version of a versioned object, newest first.
func (r *MappingRepository) ListVersions(ctx context.Context, versionedObjectID int64) ([]*terminology.Mapping, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListMappingVersions(ctx, versionedObjectID)
	if err != nil {
		return nil, err
	}
	return r.many(ctx, q, rows)
}

// ListInSource returns the mapping rows attached to a source version.
func (r *MappingRepository) ListInSource(ctx context.Context, sourceID int64) ([]*terminology.Mapping, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListMappingsInSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return r.many(ctx, q, rows)
}

// DuplicateExists reports whether another active, unretired latest mapping
// in the same parent shares the map type and both endpoints of m. Resolved
// endpoints compare by concept or source identity, so a source reached by its
// canonical URL and by its URI is the same target. Unresolved endpoints
// compare by text.
func (r *MappingRepository) DuplicateExists(ctx context.Context, m *terminology.Mapping) (bool, error) {
	q, err := r.queries()
	if err != nil {
		return false, err
	}
	count, err := q.CountDuplicateMappings(ctx, sqldb.CountDuplicateMappingsParams{
		ParentID:                 m.ParentID,
		MapType:                  m.MapType,
		ExcludeVersionedObjectID: m.VersionedObjectID,
		FromConceptID:            m.From.ConceptID(),
		FromConceptCode:          m.From.Code,
		FromSourceUrl:            m.From.SourceURL,
		ToConceptID:              m.To.ConceptID(),
		ToSourceID:               m.To.SourceID(),
		ToSourceUrl:              m.To.SourceURL,
		ToConceptCode:            m.To.Code,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
