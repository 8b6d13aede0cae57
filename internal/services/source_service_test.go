package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termvault/termvault/internal/terminology"
)

func TestSourceCreate(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()

	src, err := e.svc.Sources.Create(ctx, SourceInput{Owner: "WHO", Mnemonic: "ICPC-2", CanonicalURL: "http://who.int/icpc2"}, testActor)
	require.NoError(t, err)

	assert.NotZero(t, src.ID)
	assert.Equal(t, terminology.HEAD, src.Version)
	assert.Equal(t, terminology.OwnerOrganization, src.OwnerType)
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", src.URI)
	assert.Equal(t, terminology.DefaultLocale, src.DefaultLocale)

	got, err := e.svc.Sources.GetByURI(ctx, "/orgs/WHO/sources/ICPC-2/")
	require.NoError(t, err)
	assert.Equal(t, src.ID, got.ID)
	assert.Equal(t, "http://who.int/icpc2", got.CanonicalURL)

	_, err = e.svc.Sources.Create(ctx, SourceInput{Owner: "WHO", Mnemonic: "ICPC-2"}, testActor)
	assert.ErrorIs(t, err, terminology.ErrIntegrity)
}

func TestSourceCreateValidation(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	before := e.snapshot(t)

	_, err := e.svc.Sources.Create(ctx, SourceInput{Owner: "WHO", Mnemonic: "ICPC 2"}, testActor)
	assert.ErrorIs(t, err, terminology.ErrValidation)

	_, err = e.svc.Sources.Create(ctx, SourceInput{Owner: "WHO", Mnemonic: "ICPC-2"}, "")
	assert.ErrorIs(t, err, terminology.ErrMissingActor)

	assert.Equal(t, before, e.snapshot(t))
}

func TestSourceVersionSnapshotsLatestMembers(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	e.concept(t, who, "A01")
	first, err := e.svc.Concepts.Get(ctx, who.ID, "A01")
	require.NoError(t, err)

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: first.URI},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}, testActor)
	require.NoError(t, err)

	v1, err := e.svc.Sources.CreateVersion(ctx, who, "v1", true, testActor)
	require.NoError(t, err)
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/v1/", v1.URI)
	assert.True(t, v1.IsLatestVersion)
	assert.True(t, v1.Released)

	class := "Symptom"
	second, err := e.svc.Concepts.CreateNewVersion(ctx, first, terminology.ConceptUpdate{ConceptClass: &class}, testActor)
	require.NoError(t, err)

	inV1, err := e.svc.Sources.Concepts(ctx, v1.ID)
	require.NoError(t, err)
	require.Len(t, inV1, 1)
	assert.Equal(t, first.ID, inV1[0].ID)

	mappingsInV1, err := e.svc.Sources.Mappings(ctx, v1.ID)
	require.NoError(t, err)
	require.Len(t, mappingsInV1, 1)
	assert.Equal(t, m.ID, mappingsInV1[0].ID)

	inHead, err := e.svc.Sources.Concepts(ctx, who.ID)
	require.NoError(t, err)
	assert.Len(t, inHead, 3)

	v2, err := e.svc.Sources.CreateVersion(ctx, who, "v2", false, testActor)
	require.NoError(t, err)
	inV2, err := e.svc.Sources.Concepts(ctx, v2.ID)
	require.NoError(t, err)
	require.Len(t, inV2, 1)
	assert.Equal(t, second.ID, inV2[0].ID)

	reloaded, err := e.svc.Sources.Get(ctx, terminology.OwnerOrganization, "WHO", "ICPC-2", "v1")
	require.NoError(t, err)
	assert.False(t, reloaded.IsLatestVersion)

	versions, err := e.svc.Sources.Versions(ctx, terminology.OwnerOrganization, "WHO", "ICPC-2")
	require.NoError(t, err)
	assert.Len(t, versions, 3)
}

func TestSourceCreateVersionRequiresHead(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")

	v1, err := e.svc.Sources.CreateVersion(ctx, who, "v1", false, testActor)
	require.NoError(t, err)

	_, err = e.svc.Sources.CreateVersion(ctx, v1, "v2", false, testActor)
	assert.ErrorIs(t, err, terminology.ErrValidation)

	_, err = e.svc.Sources.CreateVersion(ctx, who, terminology.HEAD, false, testActor)
	assert.ErrorIs(t, err, terminology.ErrValidation)
}

func TestSourceCanonicalURLResolvesPendingMappings(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	icd := e.source(t, "WHO", "ICD-10")
	r05 := e.concept(t, icd, "R05")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{SourceURL: who.URI, Code: "A01"},
		To:       terminology.EndpointInput{SourceURL: "http://hl7.org/fhir/sid/icd-10", Code: "R05"},
	}, testActor)
	require.NoError(t, err)
	assert.Nil(t, m.To.Source)
	assert.Equal(t, terminology.Unresolved, m.To.State())

	updated, err := e.svc.Sources.SetCanonicalURL(ctx, icd.ID, "http://hl7.org/fhir/sid/icd-10", testActor)
	require.NoError(t, err)
	assert.Equal(t, "http://hl7.org/fhir/sid/icd-10", updated.CanonicalURL)

	got, err := e.svc.Mappings.Get(ctx, who.ID, m.Mnemonic)
	require.NoError(t, err)
	require.NotNil(t, got.To.Source)
	assert.Equal(t, icd.ID, got.To.Source.ID)
	assert.Equal(t, r05.ID, got.To.ConceptID())
}
