package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termvault/termvault/internal/indexing"
	"github.com/termvault/termvault/internal/metrics"
	"github.com/termvault/termvault/internal/terminology"
)

func TestPersistFlushesIndexAfterCommit(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	src := e.source(t, "WHO", "ICPC-2")
	e.concept(t, src, "A01")
	latest, err := e.svc.Concepts.Get(ctx, src.ID, "A01")
	require.NoError(t, err)

	calls := len(e.indexer.Calls())
	next, err := e.svc.Concepts.CreateNewVersion(ctx, latest, terminology.ConceptUpdate{}, testActor)
	require.NoError(t, err)

	all := e.indexer.Calls()
	require.Len(t, all, calls+1)
	flushed := all[len(all)-1]
	assert.Contains(t, flushed, indexing.Ref{Kind: terminology.KindConcept, ID: next.ID})
	assert.Contains(t, flushed, indexing.Ref{Kind: terminology.KindConcept, ID: latest.ID})
	assert.Contains(t, flushed, indexing.Ref{Kind: terminology.KindConcept, ID: latest.VersionedObjectID})
}

func TestPersistDefersIndexToOutermostRequest(t *testing.T) {
	e := setupEnv(t, Options{})
	src := e.source(t, "WHO", "ICPC-2")
	calls := len(e.indexer.Calls())

	ctx, batch := indexing.Suspend(context.Background(), e.indexer)
	a := e.conceptWithContext(t, ctx, src, "A01")
	b := e.conceptWithContext(t, ctx, src, "A02")
	assert.Len(t, e.indexer.Calls(), calls)
	assert.Contains(t, batch.Pending(), indexing.Ref{Kind: terminology.KindConcept, ID: a.ID})

	n, err := batch.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all := e.indexer.Calls()
	require.Len(t, all, calls+1)
	assert.Contains(t, all[len(all)-1], indexing.Ref{Kind: terminology.KindConcept, ID: b.ID})
}

func TestPersistIndexFailureKeepsCommit(t *testing.T) {
	m := metrics.NewMetrics()
	e := setupEnv(t, Options{Metrics: m})
	e.indexer.FailWith(errors.New("index unavailable"))
	src := e.source(t, "WHO", "ICPC-2")

	c := e.concept(t, src, "A01")
	assert.NotZero(t, c.ID)

	_, err := e.svc.Concepts.Get(context.Background(), src.ID, "A01")
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReindexErrorsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PersistTotal.WithLabelValues(terminology.KindConcept, "create", metrics.OutcomeCommitted)))
}

func TestPersistRecordsOutcomes(t *testing.T) {
	m := metrics.NewMetrics()
	e := setupEnv(t, Options{Metrics: m})
	ctx := context.Background()
	src := e.source(t, "WHO", "ICPC-2")
	e.concept(t, src, "A01")
	latest, err := e.svc.Concepts.Get(ctx, src.ID, "A01")
	require.NoError(t, err)

	draft := latest.Clone()
	draft.Version = latest.Version
	require.Error(t, e.svc.Concepts.PersistClone(ctx, draft, testActor))

	draft = latest.Clone()
	draft.Names = nil
	require.Error(t, e.svc.Concepts.PersistClone(ctx, draft, testActor))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PersistTotal.WithLabelValues(terminology.KindConcept, "clone", metrics.OutcomeRolledBack)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RollbacksTotal.WithLabelValues(terminology.KindConcept)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReindexRefsTotal.WithLabelValues(terminology.KindConcept)))
}

func TestAsErrorSet(t *testing.T) {
	set := asErrorSet(errors.New("disk full"))
	assert.Equal(t, []string{"disk full"}, set.Messages(terminology.AllFields))
	assert.EqualError(t, errors.Unwrap(set), "disk full")

	existing := terminology.FieldError(terminology.ErrValidation, "names", "bad")
	assert.Same(t, existing, asErrorSet(existing))

	marked := cloneFailure(notFound("concept 7"))
	assert.ErrorIs(t, marked, terminology.ErrNotFound)
	assert.ErrorIs(t, marked, terminology.ErrPersistClone)
	assert.True(t, marked.Has(terminology.NonFieldErrors, terminology.MsgPersistCloneError))
}
