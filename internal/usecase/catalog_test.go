package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/indexing"
	"github.com/termvault/termvault/internal/services"
	"github.com/termvault/termvault/internal/terminology"
)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	dbCtx, err := database.Open(database.Options{Path: filepath.Join(t.TempDir(), "termvault.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	svc := services.New(dbCtx, services.Options{Indexer: &indexing.MemoryIndexer{}})
	return NewCatalog(svc, "tester")
}

func TestCatalogConceptLifecycle(t *testing.T) {
	ctx := context.Background()
	uc := setupCatalog(t)

	src, err := uc.CreateSource(ctx, services.SourceInput{Owner: "CIEL", Mnemonic: "CIEL"})
	require.NoError(t, err)

	created, err := uc.CreateConcept(ctx, ConceptInput{
		Source:       src.URI,
		ID:           "1",
		ConceptClass: "Diagnosis",
		Names:        []terminology.NameInput{{Name: "Malaria", Locale: "en", LocalePreferred: true}},
	})
	require.NoError(t, err)
	assert.False(t, created.IsVersionedObject())
	assert.True(t, created.IsLatestVersion)
	assert.Equal(t, "tester", created.CreatedBy)

	retired, err := uc.RetireConcept(ctx, src.URI, "1", true, "")
	require.NoError(t, err)
	assert.True(t, retired.Retired)

	unretired, err := uc.RetireConcept(ctx, src.URI, "1", false, "")
	require.NoError(t, err)
	assert.False(t, unretired.Retired)

	first, err := uc.GetConcept(ctx, src.URI, "1", created.Version)
	require.NoError(t, err)
	assert.Equal(t, created.ID, first.ID)

	versions, err := uc.ConceptVersions(ctx, src.URI, "1")
	require.NoError(t, err)
	assert.Len(t, versions, 3)
}

func TestCatalogUnknownSource(t *testing.T) {
	ctx := context.Background()
	uc := setupCatalog(t)

	_, err := uc.GetConcept(ctx, "/orgs/NOPE/sources/NOPE/", "1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, terminology.ErrNotFound)
}

func TestCatalogSnapshotAndCanonicalURL(t *testing.T) {
	ctx := context.Background()
	uc := setupCatalog(t)

	src, err := uc.CreateSource(ctx, services.SourceInput{Owner: "WHO", Mnemonic: "ICD-10"})
	require.NoError(t, err)

	v, err := uc.SnapshotSource(ctx, src.URI, "2019", true)
	require.NoError(t, err)
	assert.Equal(t, "/orgs/WHO/sources/ICD-10/2019/", v.URI)

	updated, err := uc.SetCanonicalURL(ctx, src.URI, "http://hl7.org/fhir/sid/icd-10")
	require.NoError(t, err)
	assert.Equal(t, "http://hl7.org/fhir/sid/icd-10", updated.CanonicalURL)

	versions, err := uc.SourceVersions(ctx, src.URI)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].IsHead())
}

func TestCatalogMembershipFollowsSnapshots(t *testing.T) {
	ctx := context.Background()
	uc := setupCatalog(t)

	src, err := uc.CreateSource(ctx, services.SourceInput{Owner: "WHO", Mnemonic: "ICD-10"})
	require.NoError(t, err)
	for _, id := range []string{"A01", "B01"} {
		_, err := uc.CreateConcept(ctx, ConceptInput{
			Source:       src.URI,
			ID:           id,
			ConceptClass: "Diagnosis",
			Names:        []terminology.NameInput{{Name: id, Locale: "en"}},
		})
		require.NoError(t, err)
	}
	m, err := uc.CreateMapping(ctx, MappingInput{
		Source:  src.URI,
		MapType: "SAME-AS",
		From:    terminology.EndpointInput{ConceptURL: src.URI + "concepts/A01/"},
		To:      terminology.EndpointInput{ConceptURL: src.URI + "concepts/B01/"},
	})
	require.NoError(t, err)

	before, err := uc.ConceptSources(ctx, src.URI, "A01", "")
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, src.URI, before[0].URI)

	_, err = uc.SnapshotSource(ctx, src.URI, "2019", false)
	require.NoError(t, err)

	conceptSources, err := uc.ConceptSources(ctx, src.URI, "A01", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{src.URI, "/orgs/WHO/sources/ICD-10/2019/"}, sourceURIs(conceptSources))

	mappingSources, err := uc.MappingSources(ctx, src.URI, m.Mnemonic)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{src.URI, "/orgs/WHO/sources/ICD-10/2019/"}, sourceURIs(mappingSources))
}

func sourceURIs(sources []*terminology.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.URI)
	}
	return out
}
