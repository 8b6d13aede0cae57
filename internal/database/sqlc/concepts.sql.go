package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const insertConcept = `-- name: InsertConcept :execresult
INSERT INTO concepts (
    mnemonic, version, parent_id, versioned_object_id, uri, concept_class,
    datatype, external_id, comment, extras, retired, released,
    is_latest_version, is_active, created_by, updated_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertConceptParams struct {
	Mnemonic          string
	Version           string
	ParentID          int64
	VersionedObjectID sql.NullInt64
	Uri               string
	ConceptClass      string
	Datatype          string
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

func (q *Queries) InsertConcept(ctx context.Context, arg InsertConceptParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertConcept,
		arg.Mnemonic,
		arg.Version,
		arg.ParentID,
		arg.VersionedObjectID,
		arg.Uri,
		arg.ConceptClass,
		arg.Datatype,
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

const conceptColumns = `id, mnemonic, version, parent_id, versioned_object_id, uri, concept_class,
    datatype, external_id, comment, extras, retired, released,
    is_latest_version, is_active, created_by, updated_by, created_at, updated_at`

func scanConcept(row interface{ Scan(...any) error }) (Concept, error) {
	var i Concept
	err := row.Scan(
		&i.ID,
		&i.Mnemonic,
		&i.Version,
		&i.ParentID,
		&i.VersionedObjectID,
		&i.Uri,
		&i.ConceptClass,
		&i.Datatype,
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

func (q *Queries) listConcepts(ctx context.Context, query string, args ...any) ([]Concept, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Concept
	for rows.Next() {
		i, err := scanConcept(rows)
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

const findConceptByID = `-- name: FindConceptByID :one
SELECT ` + conceptColumns + ` FROM concepts WHERE id = ?
`

func (q *Queries) FindConceptByID(ctx context.Context, id int64) (Concept, error) {
	return scanConcept(q.db.QueryRowContext(ctx, findConceptByID, id))
}

const findConceptByUri = `-- name: FindConceptByUri :one
SELECT ` + conceptColumns + ` FROM concepts WHERE uri = ? ORDER BY id LIMIT 1
`

func (q *Queries) FindConceptByUri(ctx context.Context, uri string) (Concept, error) {
	return scanConcept(q.db.QueryRowContext(ctx, findConceptByUri, uri))
}

const findConceptRoot = `-- name: FindConceptRoot :one
SELECT ` + conceptColumns + ` FROM concepts
WHERE parent_id = ? AND mnemonic = ? AND id = versioned_object_id
`

type FindConceptRootParams struct {
	ParentID int64
	Mnemonic string
}

func (q *Queries) FindConceptRoot(ctx context.Context, arg FindConceptRootParams) (Concept, error) {
	return scanConcept(q.db.QueryRowContext(ctx, findConceptRoot, arg.ParentID, arg.Mnemonic))
}

const countActiveConceptsByMnemonic = `-- name: CountActiveConceptsByMnemonic :one
SELECT COUNT(*) FROM concepts
WHERE parent_id = ? AND mnemonic = ? COLLATE NOCASE AND is_active = 1
`

type CountByMnemonicParams struct {
	ParentID int64
	Mnemonic string
}

func (q *Queries) CountActiveConceptsByMnemonic(ctx context.Context, arg CountByMnemonicParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveConceptsByMnemonic, arg.ParentID, arg.Mnemonic)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const findLatestConceptVersion = `-- name: FindLatestConceptVersion :one
SELECT ` + conceptColumns + ` FROM concepts
WHERE versioned_object_id = ? AND id != versioned_object_id AND is_latest_version = 1
`

func (q *Queries) FindLatestConceptVersion(ctx context.Context, versionedObjectID int64) (Concept, error) {
	return scanConcept(q.db.QueryRowContext(ctx, findLatestConceptVersion, versionedObjectID))
}

const findConceptVersion = `-- name: FindConceptVersion :one
SELECT ` + conceptColumns + ` FROM concepts
WHERE versioned_object_id = ? AND id != versioned_object_id AND version = ?
`

type FindVersionParams struct {
	VersionedObjectID int64
	Version           string
}

func (q *Queries) FindConceptVersion(ctx context.Context, arg FindVersionParams) (Concept, error) {
	return scanConcept(q.db.QueryRowContext(ctx, findConceptVersion, arg.VersionedObjectID, arg.Version))
}

const listConceptVersions = `-- name: ListConceptVersions :many
SELECT ` + conceptColumns + ` FROM concepts
WHERE versioned_object_id = ? AND id != versioned_object_id
ORDER BY id DESC
`

func (q *Queries) ListConceptVersions(ctx context.Context, versionedObjectID int64) ([]Concept, error) {
	return q.listConcepts(ctx, listConceptVersions, versionedObjectID)
}

const listConceptRootsByParent = `-- name: ListConceptRootsByParent :many
SELECT ` + conceptColumns + ` FROM concepts
WHERE parent_id = ? AND id = versioned_object_id AND is_active = 1
ORDER BY id
`

func (q *Queries) ListConceptRootsByParent(ctx context.Context, parentID int64) ([]Concept, error) {
	return q.listConcepts(ctx, listConceptRootsByParent, parentID)
}

const listConceptsInSource = `-- name: ListConceptsInSource :many
SELECT ` + conceptColumns + ` FROM concepts
WHERE id IN (SELECT concept_id FROM concept_sources WHERE source_id = ?)
ORDER BY mnemonic, id
`

func (q *Queries) ListConceptsInSource(ctx context.Context, sourceID int64) ([]Concept, error) {
	return q.listConcepts(ctx, listConceptsInSource, sourceID)
}

const touchConcept = `-- name: TouchConcept :execrows
UPDATE concepts SET updated_at = ? WHERE id = ?
`

func (q *Queries) TouchConcept(ctx context.Context, updatedAt time.Time, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, touchConcept, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const clearLatestConceptVersion = `-- name: ClearLatestConceptVersion :execrows
UPDATE concepts SET is_latest_version = 0
WHERE versioned_object_id = ? AND id != versioned_object_id AND is_latest_version = 1
`

func (q *Queries) ClearLatestConceptVersion(ctx context.Context, versionedObjectID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, clearLatestConceptVersion, versionedObjectID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const finalizeConcept = `-- name: FinalizeConcept :exec
UPDATE concepts SET versioned_object_id = ?, version = ?, uri = ?, is_latest_version = ? WHERE id = ?
`

type FinalizeParams struct {
	VersionedObjectID int64
	Version           string
	Uri               string
	IsLatestVersion   int64
	ID                int64
}

func (q *Queries) FinalizeConcept(ctx context.Context, arg FinalizeParams) error {
	_, err := q.db.ExecContext(ctx, finalizeConcept, arg.VersionedObjectID, arg.Version, arg.Uri, arg.IsLatestVersion, arg.ID)
	return err
}

const updateConceptRoot = `-- name: UpdateConceptRoot :execrows
UPDATE concepts
SET concept_class = ?, datatype = ?, retired = ?, extras = ?, external_id = ?,
    updated_by = ?, updated_at = ?
WHERE id = ? AND id = versioned_object_id
`

type UpdateConceptRootParams struct {
	ConceptClass string
	Datatype     string
	Retired      int64
	Extras       string
	ExternalID   sql.NullString
	UpdatedBy    string
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdateConceptRoot(ctx context.Context, arg UpdateConceptRootParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateConceptRoot,
		arg.ConceptClass,
		arg.Datatype,
		arg.Retired,
		arg.Extras,
		arg.ExternalID,
		arg.UpdatedBy,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const addConceptSource = `-- name: AddConceptSource :exec
INSERT OR IGNORE INTO concept_sources (concept_id, source_id) VALUES (?, ?)
`

func (q *Queries) AddConceptSource(ctx context.Context, conceptID, sourceID int64) error {
	_, err := q.db.ExecContext(ctx, addConceptSource, conceptID, sourceID)
	return err
}
