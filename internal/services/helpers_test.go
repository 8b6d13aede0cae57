package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/indexing"
	"github.com/termvault/termvault/internal/terminology"
	"github.com/termvault/termvault/internal/validation"
)

const testActor = "tester"

type env struct {
	db      *database.Context
	svc     *Services
	indexer *indexing.MemoryIndexer
}

func setupEnv(t *testing.T, opts Options) *env {
	t.Helper()

	dbCtx, err := database.Open(database.Options{Path: filepath.Join(t.TempDir(), "termvault.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.CloseDatabase(dbCtx))
	})

	indexer := &indexing.MemoryIndexer{}
	if opts.Indexer == nil {
		opts.Indexer = indexer
	}
	return &env{db: dbCtx, svc: New(dbCtx, opts), indexer: indexer}
}

func (e *env) source(t *testing.T, owner, mnemonic string) *terminology.Source {
	t.Helper()
	src, err := e.svc.Sources.Create(context.Background(), SourceInput{
		OwnerType: terminology.OwnerOrganization,
		Owner:     owner,
		Mnemonic:  mnemonic,
	}, testActor)
	require.NoError(t, err)
	return src
}

func (e *env) concept(t *testing.T, parent *terminology.Source, mnemonic string, names ...terminology.NameInput) *terminology.Concept {
	t.Helper()
	if len(names) == 0 {
		names = []terminology.NameInput{{Name: mnemonic + " name", Locale: "en", LocalePreferred: true}}
	}
	c := &terminology.Concept{
		Mnemonic:     mnemonic,
		ParentID:     parent.ID,
		ConceptClass: "Diagnosis",
		Datatype:     "N/A",
		Names:        terminology.NewNames(names),
	}
	require.NoError(t, e.svc.Concepts.PersistNew(context.Background(), c, testActor))
	return c
}

func (e *env) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.DB.QueryRow(query, args...).Scan(&n))
	return n
}

// snapshot counts every table a persist operation writes to.
func (e *env) snapshot(t *testing.T) map[string]int {
	t.Helper()
	tables := []string{"sources", "concepts", "localized_texts", "concept_names", "concept_descriptions", "concept_sources", "mappings", "mapping_sources"}
	out := make(map[string]int, len(tables))
	for _, table := range tables {
		out[table] = e.count(t, "SELECT COUNT(*) FROM "+table)
	}
	return out
}

func (e *env) latestCount(t *testing.T, table string, versionedObjectID int64) int {
	t.Helper()
	return e.count(t, "SELECT COUNT(*) FROM "+table+" WHERE versioned_object_id = ? AND id != versioned_object_id AND is_latest_version = 1", versionedObjectID)
}

// scriptedValidator delegates to the real validator and fails the n-th
// concept or mapping check.
type scriptedValidator struct {
	*validation.Validator

	mu          sync.Mutex
	calls       int
	failOn      int
	failMessage string
}

func newScriptedValidator() *scriptedValidator {
	return &scriptedValidator{Validator: validation.New(), failMessage: "rejected by test"}
}

func (v *scriptedValidator) failNext(offset int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failOn = v.calls + offset
}

func (v *scriptedValidator) tick() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.failOn != 0 && v.calls == v.failOn
}

func (v *scriptedValidator) ValidateConcept(ctx context.Context, c *terminology.Concept) *terminology.ErrorSet {
	if v.tick() {
		return terminology.FieldError(terminology.ErrValidation, "names", v.failMessage)
	}
	return v.Validator.ValidateConcept(ctx, c)
}

func (v *scriptedValidator) ValidateMapping(ctx context.Context, m *terminology.Mapping, lookup validation.MappingLookup) *terminology.ErrorSet {
	if v.tick() {
		return terminology.FieldError(terminology.ErrValidation, "map_type", v.failMessage)
	}
	return v.Validator.ValidateMapping(ctx, m, lookup)
}

func (e *env) conceptWithContext(t *testing.T, ctx context.Context, parent *terminology.Source, mnemonic string) *terminology.Concept {
	t.Helper()
	c := &terminology.Concept{
		Mnemonic:     mnemonic,
		ParentID:     parent.ID,
		ConceptClass: "Diagnosis",
		Names:        terminology.NewNames([]terminology.NameInput{{Name: mnemonic, Locale: "en"}}),
	}
	require.NoError(t, e.svc.Concepts.PersistNew(ctx, c, testActor))
	return c
}
