package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/termvault/termvault/internal/database"
	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/indexing"
	"github.com/termvault/termvault/internal/logger"
	"github.com/termvault/termvault/internal/metrics"
	"github.com/termvault/termvault/internal/terminology"
	"github.com/termvault/termvault/internal/validation"
)

// Validator checks drafts. Every persist operation calls it twice: once on
// the in-memory draft and once after the draft and its children are written.
type Validator interface {
	ValidateConcept(ctx context.Context, c *terminology.Concept) *terminology.ErrorSet
	ValidateMapping(ctx context.Context, m *terminology.Mapping, lookup validation.MappingLookup) *terminology.ErrorSet
	ValidateSource(ctx context.Context, s *terminology.Source) *terminology.ErrorSet
}

// Options wires the collaborators shared by all services. Zero values fall
// back to a LogIndexer, the default validator, a no-op logger and no metrics.
type Options struct {
	Indexer       indexing.Indexer
	Validator     Validator
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
	DefaultLocale string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Indexer == nil {
		o.Indexer = indexing.LogIndexer{Log: o.Logger}
	}
	if o.Validator == nil {
		o.Validator = validation.New()
	}
	if o.DefaultLocale == "" {
		o.DefaultLocale = terminology.DefaultLocale
	}
	return o
}

// runner owns the transaction protocol shared by the entity services.
type runner struct {
	ctx     *database.Context
	indexer indexing.Indexer
	log     *logger.Logger
	metrics *metrics.Metrics
}

func (r *runner) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	if r.ctx == nil || r.ctx.DB == nil {
		return fmt.Errorf("persist: missing database context")
	}

	tx, err := r.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := sqldb.New(tx)

	if err := fn(ctx, queries); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *runner) queries() (*sqldb.Queries, error) {
	if r.ctx == nil {
		return nil, fmt.Errorf("persist: missing database context")
	}
	if r.ctx.Queries == nil {
		if r.ctx.DB == nil {
			return nil, fmt.Errorf("persist: database handle not initialised")
		}
		r.ctx.Queries = sqldb.New(r.ctx.DB)
	}
	return r.ctx.Queries, nil
}

// persist runs fn in one transaction with indexing suspended for the request.
// The refs fn returns are queued only once the transaction has committed and
// are flushed when the outermost persist of the request returns.
func (r *runner) persist(ctx context.Context, entity, operation string, fn func(context.Context, *sqldb.Queries) ([]indexing.Ref, error)) error {
	start := time.Now()
	ctx, batch := indexing.Suspend(ctx, r.indexer)
	defer r.resume(ctx, batch)

	var refs []indexing.Ref
	err := r.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		var err error
		refs, err = fn(txCtx, q)
		return err
	})

	elapsed := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeRolledBack
		if errors.Is(err, terminology.ErrValidation) || errors.Is(err, terminology.ErrAlreadyExists) {
			outcome = metrics.OutcomeRejected
		}
		r.metrics.RecordPersist(entity, operation, outcome, elapsed.Seconds())
		return err
	}

	batch.Enqueue(refs...)
	r.metrics.RecordPersist(entity, operation, metrics.OutcomeCommitted, elapsed.Seconds())
	return nil
}

func (r *runner) resume(ctx context.Context, batch *indexing.Batch) {
	pending := batch.Pending()
	n, err := batch.Resume(ctx)
	if err != nil {
		r.metrics.RecordReindex("", 0, err)
		r.log.Error().Err(err).Int("refs", len(pending)).Msg("Index flush failed")
		return
	}
	if n == 0 {
		return
	}
	counts := map[string]int{}
	for _, ref := range pending {
		counts[ref.Kind]++
	}
	for kind, count := range counts {
		r.metrics.RecordReindex(kind, count, nil)
	}
}

// asErrorSet converts any failure of a write into an error set. Storage
// constraint failures become integrity errors, anything else is kept as the
// cause so callers can still unwrap it.
func asErrorSet(err error) *terminology.ErrorSet {
	if set, ok := terminology.AsErrorSet(err); ok {
		return set
	}
	if database.IsIntegrityViolation(err) {
		return terminology.FieldError(terminology.ErrIntegrity, terminology.AllFields, err.Error()).WithCause(err)
	}
	if errors.Is(err, terminology.ErrNotFound) {
		return terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, err.Error()).WithCause(err)
	}
	return terminology.NewErrorSet().Add(terminology.AllFields, err.Error()).WithCause(err)
}

// cloneFailure marks err as a failed persist-clone.
func cloneFailure(err error) *terminology.ErrorSet {
	set := asErrorSet(err)
	if !set.Has(terminology.NonFieldErrors, terminology.MsgPersistCloneError) {
		set.Add(terminology.NonFieldErrors, terminology.MsgPersistCloneError)
	}
	return set.Mark(terminology.ErrPersistClone)
}

func missingActor(msg string) *terminology.ErrorSet {
	return terminology.FieldError(terminology.ErrMissingActor, terminology.VersionCreatedBy, msg)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), terminology.ErrNotFound)
}

func lastInsertID(res interface{ LastInsertId() (int64, error) }) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("write returned no identifier")
	}
	return id, nil
}

func ref(kind string, ids ...int64) []indexing.Ref {
	refs := make([]indexing.Ref, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			refs = append(refs, indexing.Ref{Kind: kind, ID: id})
		}
	}
	return refs
}

// sourcesFor returns the parent and, when different, its HEAD version.
func sourcesFor(ctx context.Context, sources *database.SourceRepository, parent *terminology.Source) ([]int64, error) {
	head, err := sources.FindHead(ctx, parent)
	if err != nil {
		return nil, err
	}
	ids := []int64{parent.ID}
	if head != nil && head.ID != parent.ID {
		ids = append(ids, head.ID)
	}
	return ids, nil
}
