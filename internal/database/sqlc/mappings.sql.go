package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const insertMapping = `-- name: InsertMapping :execresult
INSERT INTO mappings (
    mnemonic, version, parent_id, versioned_object_id, uri, map_type,
    from_concept_id, to_concept_id, from_source_id, to_source_id,
    from_concept_code, from_concept_name, from_source_url, from_source_version,
    to_concept_code, to_concept_name, to_source_url, to_source_version,
    external_id, comment, extras, retired, released, is_latest_version, is_active,
    created_by, updated_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertMappingParams struct {
	Mnemonic          string
	Version           string
	ParentID          int64
	VersionedObjectID sql.NullInt64
	Uri               string
	MapType           string
	FromConceptID     sql.NullInt64
	ToConceptID       sql.NullInt64
	FromSourceID      sql.NullInt64
	ToSourceID        sql.NullInt64
	FromConceptCode   sql.NullString
	FromConceptName   sql.NullString
	FromSourceUrl     sql.NullString
	FromSourceVersion sql.NullString
	ToConceptCode     sql.NullString
	ToConceptName     sql.NullString
	ToSourceUrl       sql.NullString
	ToSourceVersion   sql.NullString
	ExternalID        sql.NullString
	Comment           sql.NullString
	Extras            string
	Retired           int64
	Released          int64
	IsLatestVersion   int64
	IsActive          int64
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (q *Queries) InsertMapping(ctx context.Context, arg InsertMappingParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertMapping,
		arg.Mnemonic,
		arg.Version,
		arg.ParentID,
		arg.VersionedObjectID,
		arg.Uri,
		arg.MapType,
		arg.FromConceptID,
		arg.ToConceptID,
		arg.FromSourceID,
		arg.ToSourceID,
		arg.FromConceptCode,
		arg.FromConceptName,
		arg.FromSourceUrl,
		arg.FromSourceVersion,
		arg.ToConceptCode,
		arg.ToConceptName,
		arg.ToSourceUrl,
		arg.ToSourceVersion,
		arg.ExternalID,
		arg.Comment,
		arg.Extras,
		arg.Retired,
		arg.Released,
		arg.IsLatestVersion,
		arg.IsActive,
		arg.CreatedBy,
		arg.UpdatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
}

const mappingColumns = `id, mnemonic, version, parent_id, versioned_object_id, uri, map_type,
    from_concept_id, to_concept_id, from_source_id, to_source_id,
    from_concept_code, from_concept_name, from_source_url, from_source_version,
    to_concept_code, to_concept_name, to_source_url, to_source_version,
    external_id, comment, extras, retired, released, is_latest_version, is_active,
    created_by, updated_by, created_at, updated_at`

func scanMapping(row interface{ Scan(...any) error }) (Mapping, error) {
	var i Mapping
	err := row.Scan(
		&i.ID,
		&i.Mnemonic,
		&i.Version,
		&i.ParentID,
		&i.VersionedObjectID,
		&i.Uri,
		&i.MapType,
		&i.FromConceptID,
		&i.ToConceptID,
		&i.FromSourceID,
		&i.ToSourceID,
		&i.FromConceptCode,
		&i.FromConceptName,
		&i.FromSourceUrl,
		&i.FromSourceVersion,
		&i.ToConceptCode,
		&i.ToConceptName,
		&i.ToSourceUrl,
		&i.ToSourceVersion,
		&i.ExternalID,
		&i.Comment,
		&i.Extras,
		&i.Retired,
		&i.Released,
		&i.IsLatestVersion,
		&i.IsActive,
		&i.CreatedBy,
		&i.UpdatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listMappings(ctx context.Context, query string, args ...any) ([]Mapping, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Mapping
	for rows.Next() {
		i, err := scanMapping(rows)
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

const findMappingByID = `-- name: FindMappingByID :one
SELECT ` + mappingColumns + ` FROM mappings WHERE id = ?
`

func (q *Queries) FindMappingByID(ctx context.Context, id int64) (Mapping, error) {
	return scanMapping(q.db.QueryRowContext(ctx, findMappingByID, id))
}

const findMappingRoot = `-- name: FindMappingRoot :one
SELECT ` + mappingColumns + ` FROM mappings
WHERE parent_id = ? AND mnemonic = ? AND id = versioned_object_id
`

type FindMappingRootParams struct {
	ParentID int64
	Mnemonic string
}

func (q *Queries) FindMappingRoot(ctx context.Context, arg FindMappingRootParams) (Mapping, error) {
	return scanMapping(q.db.QueryRowContext(ctx, findMappingRoot, arg.ParentID, arg.Mnemonic))
}

const countActiveMappingsByMnemonic = `-- name: CountActiveMappingsByMnemonic :one
SELECT COUNT(*) FROM mappings
WHERE parent_id = ? AND mnemonic = ? COLLATE NOCASE AND is_active = 1
`

func (q *Queries) CountActiveMappingsByMnemonic(ctx context.Context, arg CountByMnemonicParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveMappingsByMnemonic, arg.ParentID, arg.Mnemonic)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const findLatestMappingVersion = `-- name: FindLatestMappingVersion :one
SELECT ` + mappingColumns + ` FROM mappings
WHERE versioned_object_id = ? AND id != versioned_object_id AND is_latest_version = 1
`

func (q *Queries) FindLatestMappingVersion(ctx context.Context, versionedObjectID int64) (Mapping, error) {
	return scanMapping(q.db.QueryRowContext(ctx, findLatestMappingVersion, versionedObjectID))
}

const listMappingVersions = `-- name: ListMappingVersions :many
SELECT ` + mappingColumns + ` FROM mappings
WHERE versioned_object_id = ? AND id != versioned_object_id
ORDER BY id DESC
`

func (q *Queries) ListMappingVersions(ctx context.Context, versionedObjectID int64) ([]Mapping, error) {
	return q.listMappings(ctx, listMappingVersions, versionedObjectID)
}

const listMappingsInSource = `-- name: ListMappingsInSource :many
SELECT ` + mappingColumns + ` FROM mappings
WHERE id IN (SELECT mapping_id FROM mapping_sources WHERE source_id = ?)
ORDER BY id
`

func (q *Queries) ListMappingsInSource(ctx context.Context, sourceID int64) ([]Mapping, error) {
	return q.listMappings(ctx, listMappingsInSource, sourceID)
}

const touchMapping = `-- name: TouchMapping :execrows
UPDATE mappings SET updated_at = ? WHERE id = ?
`

func (q *Queries) TouchMapping(ctx context.Context, updatedAt time.Time, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, touchMapping, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const clearLatestMappingVersion = `-- name: ClearLatestMappingVersion :execrows
UPDATE mappings SET is_latest_version = 0
WHERE versioned_object_id = ? AND id != versioned_object_id AND is_latest_version = 1
`

func (q *Queries) ClearLatestMappingVersion(ctx context.Context, versionedObjectID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, clearLatestMappingVersion, versionedObjectID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const finalizeMapping = `-- name: FinalizeMapping :exec
UPDATE mappings SET versioned_object_id = ?, version = ?, uri = ?, is_latest_version = ? WHERE id = ?
`

func (q *Queries) FinalizeMapping(ctx context.Context, arg FinalizeParams) error {
	_, err := q.db.ExecContext(ctx, finalizeMapping, arg.VersionedObjectID, arg.Version, arg.Uri, arg.IsLatestVersion, arg.ID)
	return err
}

const setMappingMnemonic = `-- name: SetMappingMnemonic :exec
UPDATE mappings SET mnemonic = ? WHERE id = ?
`

func (q *Queries) SetMappingMnemonic(ctx context.Context, mnemonic string, id int64) error {
	_, err := q.db.ExecContext(ctx, setMappingMnemonic, mnemonic, id)
	return err
}

const updateMappingRoot = `-- name: UpdateMappingRoot :execrows
UPDATE mappings
SET map_type = ?, retired = ?, extras = ?, external_id = ?,
    from_concept_id = ?, to_concept_id = ?, from_source_id = ?, to_source_id = ?,
    from_concept_code = ?, from_concept_name = ?, from_source_url = ?, from_source_version = ?,
    to_concept_code = ?, to_concept_name = ?, to_source_url = ?, to_source_version = ?,
    updated_by = ?, updated_at = ?
WHERE id = ? AND id = versioned_object_id
`

type UpdateMappingRootParams struct {
	MapType           string
	Retired           int64
	Extras            string
	ExternalID        sql.NullString
	FromConceptID     sql.NullInt64
	ToConceptID       sql.NullInt64
	FromSourceID      sql.NullInt64
	ToSourceID        sql.NullInt64
	FromConceptCode   sql.NullString
	FromConceptName   sql.NullString
	FromSourceUrl     sql.NullString
	FromSourceVersion sql.NullString
	ToConceptCode     sql.NullString
	ToConceptName     sql.NullString
	ToSourceUrl       sql.NullString
	ToSourceVersion   sql.NullString
	UpdatedBy         string
	UpdatedAt         time.Time
	ID                int64
}

func (q *Queries) UpdateMappingRoot(ctx context.Context, arg UpdateMappingRootParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateMappingRoot,
		arg.MapType,
		arg.Retired,
		arg.Extras,
		arg.ExternalID,
		arg.FromConceptID,
		arg.ToConceptID,
		arg.FromSourceID,
		arg.ToSourceID,
		arg.FromConceptCode,
		arg.FromConceptName,
		arg.FromSourceUrl,
		arg.FromSourceVersion,
		arg.ToConceptCode,
		arg.ToConceptName,
		arg.ToSourceUrl,
		arg.ToSourceVersion,
		arg.UpdatedBy,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countDuplicateMappings = `-- name: CountDuplicateMappings :one
SELECT COUNT(*) FROM mappings
WHERE parent_id = ?1 AND map_type = ?2
  AND is_latest_version = 1 AND is_active = 1 AND retired = 0
  AND id != versioned_object_id AND versioned_object_id != ?3
  AND (
    (?4 != 0 AND from_concept_id = ?4)
    OR (?4 = 0 AND from_concept_id IS NULL
        AND COALESCE(from_concept_code, '') = ?5 AND COALESCE(from_source_url, '') = ?6)
  )
  AND (
    (?7 != 0 AND to_concept_id = ?7)
    OR (?7 = 0 AND ?8 != 0 AND to_concept_id IS NULL AND to_source_id = ?8
        AND COALESCE(to_concept_code, '') = ?10)
    OR (?7 = 0 AND ?8 = 0 AND to_concept_id IS NULL AND to_source_id IS NULL
        AND COALESCE(to_source_url, '') = ?9 AND COALESCE(to_concept_code, '') = ?10)
  )
`

// CountDuplicateMappingsParams identifies an edge. A non-zero ID wins over
// the textual fields of the same endpoint.
type CountDuplicateMappingsParams struct {
	ParentID                 int64
	MapType                  string
	ExcludeVersionedObjectID int64
	FromConceptID            int64
	FromConceptCode          string
	FromSourceUrl            string
	ToConceptID              int64
	ToSourceID               int64
	ToSourceUrl              string
	ToConceptCode            string
}

func (q *Queries) CountDuplicateMappings(ctx context.Context, arg CountDuplicateMappingsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countDuplicateMappings,
		arg.ParentID,
		arg.MapType,
		arg.ExcludeVersionedObjectID,
		arg.FromConceptID,
		arg.FromConceptCode,
		arg.FromSourceUrl,
		arg.ToConceptID,
		arg.ToSourceID,
		arg.ToSourceUrl,
		arg.ToConceptCode,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const resolveMappingsToConcept = `-- name: ResolveMappingsToConcept :execrows
UPDATE mappings SET to_concept_id = ?1
WHERE to_concept_id IS NULL AND to_concept_code = ?2 AND to_source_url IN (?3, ?4)
`

type ResolveConceptParams struct {
	ConceptID    int64
	Code         string
	SourceUrl    string
	CanonicalUrl string
}

func (q *Queries) ResolveMappingsToConcept(ctx context.Context, arg ResolveConceptParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, resolveMappingsToConcept, arg.ConceptID, arg.Code, arg.SourceUrl, arg.CanonicalUrl)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const resolveMappingsFromConcept = `-- name: ResolveMappingsFromConcept :execrows
UPDATE mappings SET from_concept_id = ?1
WHERE from_concept_id IS NULL AND from_concept_code = ?2 AND from_source_url IN (?3, ?4)
`

func (q *Queries) ResolveMappingsFromConcept(ctx context.Context, arg ResolveConceptParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, resolveMappingsFromConcept, arg.ConceptID, arg.Code, arg.SourceUrl, arg.CanonicalUrl)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const resolveMappingsToSource = `-- name: ResolveMappingsToSource :execrows
UPDATE mappings SET to_source_id = ?1
WHERE to_source_id IS NULL AND to_source_url IN (?2, ?3)
`

type ResolveSourceParams struct {
	SourceID     int64
	SourceUrl    string
	CanonicalUrl string
}

func (q *Queries) ResolveMappingsToSource(ctx context.Context, arg ResolveSourceParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, resolveMappingsToSource, arg.SourceID, arg.SourceUrl, arg.CanonicalUrl)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const resolveMappingsFromSource = `-- name: ResolveMappingsFromSource :execrows
UPDATE mappings SET from_source_id = ?1
WHERE from_source_id IS NULL AND from_source_url IN (?2, ?3)
`

func (q *Queries) ResolveMappingsFromSource(ctx context.Context, arg ResolveSourceParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, resolveMappingsFromSource, arg.SourceID, arg.SourceUrl, arg.CanonicalUrl)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const addMappingSource = `-- name: AddMappingSource :exec
INSERT OR IGNORE INTO mapping_sources (mapping_id, source_id) VALUES (?, ?)
`

func (q *Queries) AddMappingSource(ctx context.Context, mappingID, sourceID int64) error {
	_, err := q.db.ExecContext(ctx, addMappingSource, mappingID, sourceID)
	return err
}
