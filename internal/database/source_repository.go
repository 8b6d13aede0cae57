package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/terminology"
)

type SourceRepository struct {
	ctx *Context
	q   *sqldb.Queries
}

func NewSourceRepository(dbCtx *Context) *SourceRepository {
	return &SourceRepository{ctx: dbCtx}
}

// WithQueries returns a copy bound to q, typically a transaction.
func (r *SourceRepository) WithQueries(q *sqldb.Queries) *SourceRepository {
	return &SourceRepository{ctx: r.ctx, q: q}
}

func (r *SourceRepository) queries() (*sqldb.Queries, error) {
	if r.q != nil {
		return r.q, nil
	}
	if queries := queriesFromContext(r.ctx); queries != nil {
		return queries, nil
	}
	return nil, fmt.Errorf("source repository: missing database context")
}

func (r *SourceRepository) one(row sqldb.Source, err error) (*terminology.Source, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return SourceFromRow(row), nil
}

func (r *SourceRepository) FindByID(ctx context.Context, id int64) (*terminology.Source, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	return r.one(q.FindSourceByID(ctx, id))
}

func (r *SourceRepository) FindByURI(ctx context.Context, uri string) (*terminology.Source, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	return r.one(q.FindSourceByUri(ctx, uri))
}

// FindVersion returns one version of a source. An empty version means HEAD.
func (r *SourceRepository) FindVersion(ctx context.Context, ownerType, owner, mnemonic, version string) (*terminology.Source, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = terminology.HEAD
	}
	return r.one(q.FindSourceVersion(ctx, sqldb.FindSourceVersionParams{
		OwnerType: ownerType,
		Owner:     owner,
		Mnemonic:  mnemonic,
		Version:   version,
	}))
}

// FindHead returns the HEAD version belonging to the same source as s.
func (r *SourceRepository) FindHead(ctx context.Context, s *terminology.Source) (*terminology.Source, error) {
	if s.IsHead() {
		return s, nil
	}
	return r.FindVersion(ctx, s.OwnerType, s.Owner, s.Mnemonic, terminology.HEAD)
}

// FindHeadByURL returns the HEAD source whose URI or canonical URL is url.
func (r *SourceRepository) FindHeadByURL(ctx context.Context, url string) (*terminology.Source, error) {
	if url == "" {
		return nil, nil
	}
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	return r.one(q.FindHeadSourceByUrl(ctx, url))
}

func (r *SourceRepository) ListVersions(ctx context.Context, ownerType, owner, mnemonic string) ([]*terminology.Source, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSourceVersions(ctx, sqldb.ListSourceVersionsParams{
		OwnerType: ownerType,
		Owner:     owner,
		Mnemonic:  mnemonic,
	})
	if err != nil {
		return nil, err
	}
	return sourcesFromRows(rows), nil
}

// ListForConcept returns the sources a concept row is attached to.
func (r *SourceRepository) ListForConcept(ctx context.Context, conceptID int64) ([]*terminology.Source, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSourcesForConcept(ctx, conceptID)
	if err != nil {
		return nil, err
	}
	return sourcesFromRows(rows), nil
}

// ListForMapping returns the sources a mapping row is attached to.
func (r *SourceRepository) ListForMapping(ctx context.Context, mappingID int64) ([]*terminology.Source, error) {
	q, err := r.queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListSourcesForMapping(ctx, mappingID)
	if err != nil {
		return nil, err
	}
	return sourcesFromRows(rows), nil
}

func (r *SourceRepository) Create(ctx context.Context, s *terminology.Source) (int64, error) {
	q, err := r.queries()
	if err != nil {
		return 0, err
	}
	res, err := q.InsertSource(ctx, SourceInsertParams(s))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SourceRepository) SetCanonicalURL(ctx context.Context, id int64, url, actor string) (bool, error) {
	q, err := r.queries()
	if err != nil {
		return false, err
	}
	affected, err := q.UpdateSourceCanonicalUrl(ctx, sqldb.UpdateSourceCanonicalUrlParams{
		CanonicalUrl: nullString(url),
		UpdatedBy:    actor,
		UpdatedAt:    Now(),
		ID:           id,
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func sourcesFromRows(rows []sqldb.Source) []*terminology.Source {
	result := make([]*terminology.Source, 0, len(rows))
	for _, row := range rows {
		result = append(result, SourceFromRow(row))
	}
	return result
}
