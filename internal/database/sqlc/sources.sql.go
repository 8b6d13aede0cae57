package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const insertSource = `-- name: InsertSource :execresult
INSERT INTO sources (
    owner_type, owner, mnemonic, version, uri, canonical_url, default_locale,
    supported_locales, released, is_latest_version, created_by, updated_by,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertSourceParams struct {
	OwnerType        string
	Owner            string
	Mnemonic         string
	Version          string
	Uri              string
	CanonicalUrl     sql.NullString
	DefaultLocale    string
	SupportedLocales string
	Released         int64
	IsLatestVersion  int64
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (q *Queries) InsertSource(ctx context.Context, arg InsertSourceParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertSource,
		arg.OwnerType,
		arg.Owner,
		arg.Mnemonic,
		arg.Version,
		arg.Uri,
		arg.CanonicalUrl,
		arg.DefaultLocale,
		arg.SupportedLocales,
		arg.Released,
		arg.IsLatestVersion,
		arg.CreatedBy,
		arg.UpdatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
}

const sourceColumns = `id, owner_type, owner, mnemonic, version, uri, canonical_url, default_locale,
    supported_locales, released, is_latest_version, created_by, updated_by,
    created_at, updated_at`

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var i Source
	err := row.Scan(
		&i.ID,
		&i.OwnerType,
		&i.Owner,
		&i.Mnemonic,
		&i.Version,
		&i.Uri,
		&i.CanonicalUrl,
		&i.DefaultLocale,
		&i.SupportedLocales,
		&i.Released,
		&i.IsLatestVersion,
		&i.CreatedBy,
		&i.UpdatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listSources(ctx context.Context, query string, args ...any) ([]Source, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Source
	for rows.Next() {
		i, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findSourceByID = `-- name: FindSourceByID :one
SELECT ` + sourceColumns + ` FROM sources WHERE id = ?
`

func (q *Queries) FindSourceByID(ctx context.Context, id int64) (Source, error) {
	return scanSource(q.db.QueryRowContext(ctx, findSourceByID, id))
}

const findSourceByUri = `-- name: FindSourceByUri :one
SELECT ` + sourceColumns + ` FROM sources WHERE uri = ?
`

func (q *Queries) FindSourceByUri(ctx context.Context, uri string) (Source, error) {
	return scanSource(q.db.QueryRowContext(ctx, findSourceByUri, uri))
}

const findSourceVersion = `-- name: FindSourceVersion :one
SELECT ` + sourceColumns + ` FROM sources
WHERE owner_type = ? AND owner = ? AND mnemonic = ? AND version = ?
`

type FindSourceVersionParams struct {
	OwnerType string
	Owner     string
	Mnemonic  string
	Version   string
}

func (q *Queries) FindSourceVersion(ctx context.Context, arg FindSourceVersionParams) (Source, error) {
	return scanSource(q.db.QueryRowContext(ctx, findSourceVersion, arg.OwnerType, arg.Owner, arg.Mnemonic, arg.Version))
}

const findHeadSourceByUrl = `-- name: FindHeadSourceByUrl :one
SELECT ` + sourceColumns + ` FROM sources
WHERE version = 'HEAD' AND (uri = ?1 OR canonical_url = ?1)
ORDER BY id
LIMIT 1
`

func (q *Queries) FindHeadSourceByUrl(ctx context.Context, url string) (Source, error) {
	return scanSource(q.db.QueryRowContext(ctx, findHeadSourceByUrl, url))
}

const listSourceVersions = `-- name: ListSourceVersions :many
SELECT ` + sourceColumns + ` FROM sources
WHERE owner_type = ? AND owner = ? AND mnemonic = ?
ORDER BY id
`

type ListSourceVersionsParams struct {
	OwnerType string
	Owner     string
	Mnemonic  string
}

func (q *Queries) ListSourceVersions(ctx context.Context, arg ListSourceVersionsParams) ([]Source, error) {
	return q.listSources(ctx, listSourceVersions, arg.OwnerType, arg.Owner, arg.Mnemonic)
}

const listSourcesForConcept = `-- name: ListSourcesForConcept :many
SELECT ` + sourceColumns + ` FROM sources
WHERE id IN (SELECT source_id FROM concept_sources WHERE concept_id = ?)
ORDER BY id
`

func (q *Queries) ListSourcesForConcept(ctx context.Context, conceptID int64) ([]Source, error) {
	return q.listSources(ctx, listSourcesForConcept, conceptID)
}

const listSourcesForMapping = `-- name: ListSourcesForMapping :many
SELECT ` + sourceColumns + ` FROM sources
WHERE id IN (SELECT source_id FROM mapping_sources WHERE mapping_id = ?)
ORDER BY id
`

func (q *Queries) ListSourcesForMapping(ctx context.Context, mappingID int64) ([]Source, error) {
	return q.listSources(ctx, listSourcesForMapping, mappingID)
}

const updateSourceCanonicalUrl = `-- name: UpdateSourceCanonicalUrl :execrows
UPDATE sources SET canonical_url = ?, updated_by = ?, updated_at = ? WHERE id = ?
`

type UpdateSourceCanonicalUrlParams struct {
	CanonicalUrl sql.NullString
	UpdatedBy    string
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdateSourceCanonicalUrl(ctx context.Context, arg UpdateSourceCanonicalUrlParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateSourceCanonicalUrl, arg.CanonicalUrl, arg.UpdatedBy, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const clearLatestSourceVersion = `-- name: ClearLatestSourceVersion :exec
UPDATE sources SET is_latest_version = 0
WHERE owner_type = ? AND owner = ? AND mnemonic = ? AND version != 'HEAD' AND is_latest_version = 1
`

type ClearLatestSourceVersionParams struct {
	OwnerType string
	Owner     string
	Mnemonic  string
}

func (q *Queries) ClearLatestSourceVersion(ctx context.Context, arg ClearLatestSourceVersionParams) error {
	_, err := q.db.ExecContext(ctx, clearLatestSourceVersion, arg.OwnerType, arg.Owner, arg.Mnemonic)
	return err
}

const copyConceptMemberships = `-- name: CopyConceptMemberships :execrows
INSERT OR IGNORE INTO concept_sources (concept_id, source_id)
SELECT c.id, ?1 FROM concepts c
JOIN concept_sources cs ON cs.concept_id = c.id
WHERE cs.source_id = ?2 AND c.is_latest_version = 1 AND c.id != c.versioned_object_id
`

type CopyMembershipsParams struct {
	TargetSourceID int64
	FromSourceID   int64
}

func (q *Queries) CopyConceptMemberships(ctx context.Context, arg CopyMembershipsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, copyConceptMemberships, arg.TargetSourceID, arg.FromSourceID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const copyMappingMemberships = `-- name: CopyMappingMemberships :execrows
INSERT OR IGNORE INTO mapping_sources (mapping_id, source_id)
SELECT m.id, ?1 FROM mappings m
JOIN mapping_sources ms ON ms.mapping_id = m.id
WHERE ms.source_id = ?2 AND m.is_latest_version = 1 AND m.id != m.versioned_object_id
`

func (q *Queries) CopyMappingMemberships(ctx context.Context, arg CopyMembershipsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, copyMappingMemberships, arg.TargetSourceID, arg.FromSourceID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
