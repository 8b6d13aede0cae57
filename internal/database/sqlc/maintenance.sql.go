package sqldb

import "context"

const deleteAllMappings = `DELETE FROM mappings`

func (q *Queries) DeleteAllMappings(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllMappings)
	return err
}

const deleteAllConcepts = `DELETE FROM concepts`

func (q *Queries) DeleteAllConcepts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllConcepts)
	return err
}

const deleteAllLocalizedTexts = `DELETE FROM localized_texts`

func (q *Queries) DeleteAllLocalizedTexts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllLocalizedTexts)
	return err
}

const deleteAllSources = `DELETE FROM sources`

func (q *Queries) DeleteAllSources(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllSources)
	return err
}
