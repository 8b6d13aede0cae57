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

// ConceptRepository loads concept rows together with their names,
// descriptions and parent source.
type ConceptRepository struct {
	ctx *Context
	q   *sqldb.Queries
}

func NewConceptRepository(dbCtx *Context) *ConceptRepository {
	return &ConceptRepository{ctx: dbCtx}
}

// WithQueries returns a copy bound to q, typically a transaction.
func (r *ConceptRepository) WithQueries(q *sqldb.Queries) *ConceptRepository {
	return &ConceptRepository{ctx: r.ctx, q: q}
}

func (r *ConceptRepository) queries() (*sqldb.Queries, error) {
	if r.q != nil {
		return r.q, nil
	}
	if queries := queriesFromContext(r.ctx); queries != nil {
		return queries, nil
	}
	return nil, fmt.Errorf("concept repository: missing database context")
}

func (r *ConceptRepository) one(ctx context.Context, q *sqldb.Queries, row sqldb.Concept, err error) (*terminology.Concept, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r.load(ctx, q, row, map[int64]*terminology.Source{})
}

func (r *ConceptRepository) many(ctx context.Context, q *sqldb.Queries, rows []sqldb.Concept) ([]*terminology.Concept, error) {
	parents := map[int64]*terminology.Source{}
	result := make([]*terminology.Concept, 0, len(rows))
	for _, row := range rows {
		c, err := r.load(ctx, q, row, parents)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

func (r *ConceptRepository) load(ctx context.Context, q *sqldb.Queries, row sqldb.Concept, parents map[int64]*terminology.Source) (*terminology.Concept, error) {
	c := ConceptFromRow(row)

	names, err := q.ListConceptNames(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept names: %w", err)
	}
	c.Names = LocalizedTextsFromRows(names)

	descriptions, err := q.ListConceptDescriptions(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept descriptions: %w", err)
	}
	c.Descriptions = LocalizedTextsFromRows(descriptions)

	parent, ok := parents[c.ParentID]
	if !ok {
		parentRow, err := q.FindSourceByID(ctx, c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load concept parent: %w", err)
		}
		parent = SourceFromRow(parentRow)
		parents[c.ParentID] = parent
	}
	c.Parent = parent

	return c, nil
}

func (r *ConceptRepository) FindByID(ctx context.Context, id int64) (*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.FindConceptByID(ctx, id)
	return r.one(ctx, q, row, err)
}

// FindByURI returns the concept row stored under uri: the versioned object
// for a versionless URI, a specific version otherwise.
func (r *ConceptRepository) FindByURI(ctx context.Context, uri string) (*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.FindConceptByUri(ctx, uri)
	return r.one(ctx, q, row, err)
}

// FindRoot returns the versioned object with mnemonic under parentID.
func (r *ConceptRepository) FindRoot(ctx context.Context, parentID int64, mnemonic string) (*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.FindConceptRoot(ctx, sqldb.FindConceptRootParams{ParentID: parentID, Mnemonic: mnemonic})
	return r.one(ctx, q, row, err)
}

// ExistsActive reports whether an active concept row with mnemonic exists
// under parentID, ignoring case.
func (r *ConceptRepository) ExistsActive(ctx context.Context, parentID int64, mnemonic string) (bool, error) {
	q, err := r.queries()
	if err != nil {
		return false, err
	}
	count, err := q.CountActiveConceptsByMnemonic(ctx, sqldb.CountByMnemonicParams{ParentID: parentID, Mnemonic: mnemonic})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindLatest returns the latest version of a versioned object.
func (r *ConceptRepository) FindLatest(ctx context.Context, versionedObjectID int64) (*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	row, err := q.FindLatestConceptVersion(ctx, versionedObjectID)
	latest, err := r.one(ctx, q, row, err)
	r.ctx.logger("find_latest_concept").LogDbOperation(time.Since(start), found(latest != nil), err)
	return latest, err
}

func (r *ConceptRepository) FindVersion(ctx context.Context, versionedObjectID int64, version string) (*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	row, err := q.FindConceptVersion(ctx, sqldb.FindVersionParams{VersionedObjectID: versionedObjectID, Version: version})
	return r.one(ctx, q, row, err)
}

// ListVersions returns every version of a versioned object, newest first.
func (r *ConceptRepository) ListVersions(ctx context.Context, versionedObjectID int64) ([]*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListConceptVersions(ctx, versionedObjectID)
	if err != nil {
		return nil, err
	}
	return r.many(ctx, q, rows)
}

// ListInSource returns the concept rows attached to a source version.
func (r *ConceptRepository) ListInSource(ctx context.Context, sourceID int64) ([]*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListConceptsInSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return r.many(ctx, q, rows)
}

// ListRoots returns the active versioned objects owned by parentID.
func (r *ConceptRepository) ListRoots(ctx context.Context, parentID int64) ([]*terminology.Concept, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListConceptRootsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return r.many(ctx, q, rows)
}
