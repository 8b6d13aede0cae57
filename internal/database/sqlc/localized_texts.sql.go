package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const insertLocalizedText = `-- name: InsertLocalizedText :execresult
INSERT INTO localized_texts (
    internal_reference_id, external_id, name, type, locale, locale_preferred, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
`

type InsertLocalizedTextParams struct {
	InternalReferenceID sql.NullString
	ExternalID          sql.NullString
	Name                string
	Type                sql.NullString
	Locale              string
	LocalePreferred     int64
	CreatedAt           time.Time
}

func (q *Queries) InsertLocalizedText(ctx context.Context, arg InsertLocalizedTextParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertLocalizedText,
		arg.InternalReferenceID,
		arg.ExternalID,
		arg.Name,
		arg.Type,
		arg.Locale,
		arg.LocalePreferred,
		arg.CreatedAt,
	)
}

const setLocalizedTextReference = `-- name: SetLocalizedTextReference :exec
UPDATE localized_texts SET internal_reference_id = ? WHERE id = ?
`

func (q *Queries) SetLocalizedTextReference(ctx context.Context, reference string, id int64) error {
	_, err := q.db.ExecContext(ctx, setLocalizedTextReference, reference, id)
	return err
}

const addConceptName = `-- name: AddConceptName :exec
INSERT INTO concept_names (concept_id, localized_text_id) VALUES (?, ?)
`

func (q *Queries) AddConceptName(ctx context.Context, conceptID, localizedTextID int64) error {
	_, err := q.db.ExecContext(ctx, addConceptName, conceptID, localizedTextID)
	return err
}

const addConceptDescription = `-- name: AddConceptDescription :exec
INSERT INTO concept_descriptions (concept_id, localized_text_id) VALUES (?, ?)
`

func (q *Queries) AddConceptDescription(ctx context.Context, conceptID, localizedTextID int64) error {
	_, err := q.db.ExecContext(ctx, addConceptDescription, conceptID, localizedTextID)
	return err
}

func (q *Queries) listLocalizedTexts(ctx context.Context, query string, args ...any) ([]LocalizedText, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LocalizedText
	for rows.Next() {
		var i LocalizedText
		if err := rows.Scan(
			&i.ID,
			&i.InternalReferenceID,
			&i.ExternalID,
			&i.Name,
			&i.Type,
			&i.Locale,
			&i.LocalePreferred,
			&i.CreatedAt,
		); err != nil {
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

const listConceptNames = `-- name: ListConceptNames :many
SELECT lt.id, lt.internal_reference_id, lt.external_id, lt.name, lt.type, lt.locale,
    lt.locale_preferred, lt.created_at
FROM localized_texts lt
JOIN concept_names cn ON cn.localized_text_id = lt.id
WHERE cn.concept_id = ?
ORDER BY lt.id
`

func (q *Queries) ListConceptNames(ctx context.Context, conceptID int64) ([]LocalizedText, error) {
	return q.listLocalizedTexts(ctx, listConceptNames, conceptID)
}

const listConceptDescriptions = `-- name: ListConceptDescriptions :many
SELECT lt.id, lt.internal_reference_id, lt.external_id, lt.name, lt.type, lt.locale,
    lt.locale_preferred, lt.created_at
FROM localized_texts lt
JOIN concept_descriptions cd ON cd.localized_text_id = lt.id
WHERE cd.concept_id = ?
ORDER BY lt.id
`

func (q *Queries) ListConceptDescriptions(ctx context.Context, conceptID int64) ([]LocalizedText, error) {
	return q.listLocalizedTexts(ctx, listConceptDescriptions, conceptID)
}

const deleteConceptNames = `-- name: DeleteConceptNames :execrows
DELETE FROM localized_texts
WHERE id IN (SELECT localized_text_id FROM concept_names WHERE concept_id = ?)
`

func (q *Queries) DeleteConceptNames(ctx context.Context, conceptID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteConceptNames, conceptID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteConceptDescriptions = `-- name: DeleteConceptDescriptions :execrows
DELETE FROM localized_texts
WHERE id IN (SELECT localized_text_id FROM concept_descriptions WHERE concept_id = ?)
`

func (q *Queries) DeleteConceptDescriptions(ctx context.Context, conceptID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteConceptDescriptions, conceptID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
