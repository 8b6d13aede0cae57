package services

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/terminology"
)

func TestMappingUnresolvedThenResolved(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	icd := e.source(t, "WHO", "ICD-10")
	a01 := e.concept(t, who, "A01")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: icd.URI, Code: "R05", Name: "Cough"},
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, terminology.Resolved, m.From.State())
	assert.Equal(t, a01.ID, m.From.ConceptID())
	assert.Equal(t, "A01", m.From.Code)
	assert.Equal(t, who.URI, m.From.SourceURL)
	assert.Equal(t, terminology.Unresolved, m.To.State())
	require.NotNil(t, m.To.Source)
	assert.Equal(t, icd.ID, m.To.Source.ID)

	r05 := e.concept(t, icd, "R05")

	got, err := e.svc.Mappings.Get(ctx, who.ID, m.Mnemonic)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, terminology.Resolved, got.To.State())
	assert.Equal(t, r05.ID, got.To.ConceptID())
	assert.Equal(t, "Cough", got.To.DisplayName())
	assert.Equal(t, icd.ID, got.To.EffectiveSource().ID)

	root, err := database.NewMappingRepository(e.db, terminology.DefaultLocale).FindByID(ctx, m.VersionedObjectID)
	require.NoError(t, err)
	assert.Equal(t, r05.ID, root.To.ConceptID())

	again, err := e.svc.Resolver.ReresolveOnConceptCreated(ctx, e.db.Queries, r05)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestMappingPersistNewNamesMappingAfterID(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	a01 := e.concept(t, who, "A01")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, strconv.FormatInt(m.VersionedObjectID, 10), m.Mnemonic)
	assert.Equal(t, strconv.FormatInt(m.ID, 10), m.Version)
	assert.Equal(t, fmt.Sprintf("/orgs/WHO/sources/ICPC-2/mappings/%s/%d/", m.Mnemonic, m.ID), m.URI)
	assert.True(t, m.IsLatestVersion)
	assert.False(t, m.Released)
	assert.Equal(t, 1, e.latestCount(t, "mappings", m.VersionedObjectID))

	sources, err := database.NewSourceRepository(e.db).ListForMapping(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, who.ID, sources[0].ID)
}

func TestMappingRejectsSelfMapping(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	a01 := e.concept(t, who, "A01")
	before := e.snapshot(t)

	_, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{ConceptURL: a01.URI},
	}, testActor)

	require.Error(t, err)
	assert.ErrorIs(t, err, terminology.ErrValidation)
	set, _ := terminology.AsErrorSet(err)
	assert.Contains(t, set.Messages(terminology.AllFields), terminology.MsgCannotMapConceptToSelf)
	assert.Equal(t, before, e.snapshot(t))
}

func TestMappingRejectsDuplicate(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	a01 := e.concept(t, who, "A01")

	input := MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}
	_, err := e.svc.Mappings.PersistNew(ctx, input, testActor)
	require.NoError(t, err)
	before := e.snapshot(t)

	_, err = e.svc.Mappings.PersistNew(ctx, input, testActor)
	require.Error(t, err)
	set, _ := terminology.AsErrorSet(err)
	assert.Contains(t, set.Messages(terminology.AllFields), terminology.MsgMappingNotUnique)
	assert.Equal(t, before, e.snapshot(t))

	input.MapType = "NARROWER-THAN"
	_, err = e.svc.Mappings.PersistNew(ctx, input, testActor)
	assert.NoError(t, err)
}

func TestMappingRejectsExistingMnemonic(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")

	input := MappingInput{
		ParentID: who.ID,
		Mnemonic: "m-1",
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{SourceURL: who.URI, Code: "A01"},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}
	m, err := e.svc.Mappings.PersistNew(ctx, input, testActor)
	require.NoError(t, err)
	assert.Equal(t, "m-1", m.Mnemonic)

	input.To.Code = "R06"
	_, err = e.svc.Mappings.PersistNew(ctx, input, testActor)
	assert.ErrorIs(t, err, terminology.ErrAlreadyExists)
}

func TestMappingRequiresActor(t *testing.T) {
	e := setupEnv(t, Options{})
	who := e.source(t, "WHO", "ICPC-2")

	_, err := e.svc.Mappings.PersistNew(context.Background(), MappingInput{ParentID: who.ID, MapType: "SAME-AS"}, "")

	assert.ErrorIs(t, err, terminology.ErrMissingActor)
	set, _ := terminology.AsErrorSet(err)
	assert.Equal(t, []string{terminology.MsgMappingSpecifyUser}, set.Messages(terminology.VersionCreatedBy))
}

func TestMappingPersistNewRollsBackOnPostValidation(t *testing.T) {
	v := newScriptedValidator()
	e := setupEnv(t, Options{Validator: v})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	a01 := e.concept(t, who, "A01")
	before := e.snapshot(t)

	v.failNext(2)
	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}, testActor)

	require.Error(t, err)
	assert.Zero(t, m.ID)
	assert.Empty(t, m.Mnemonic)
	assert.Equal(t, before, e.snapshot(t))
}

func TestMappingCreateNewVersion(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")
	icd := e.source(t, "WHO", "ICD-10")
	a01 := e.concept(t, who, "A01")
	r05 := e.concept(t, icd, "R05")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: icd.URI, Code: "R06"},
	}, testActor)
	require.NoError(t, err)

	mapType := "NARROWER-THAN"
	next, err := e.svc.Mappings.CreateNewVersion(ctx, m, terminology.MappingUpdate{
		MapType: &mapType,
		To:      terminology.EndpointInput{ConceptURL: r05.URI},
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, m.Mnemonic, next.Mnemonic)
	assert.Equal(t, terminology.Resolved, next.To.State())
	assert.Equal(t, "R05", next.To.Code)
	assert.Equal(t, 1, e.latestCount(t, "mappings", m.VersionedObjectID))

	root, err := database.NewMappingRepository(e.db, terminology.DefaultLocale).FindByID(ctx, m.VersionedObjectID)
	require.NoError(t, err)
	assert.Equal(t, "NARROWER-THAN", root.MapType)
	assert.Equal(t, r05.ID, root.To.ConceptID())

	previous, err := database.NewMappingRepository(e.db, terminology.DefaultLocale).FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, previous.IsLatestVersion)
	assert.Equal(t, "SAME-AS", previous.MapType)

	records, err := e.svc.Mappings.Versions(ctx, who.ID, m.Mnemonic)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMappingRetireAndUnretire(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{SourceURL: who.URI, Code: "A01"},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}, testActor)
	require.NoError(t, err)

	retired, err := e.svc.Mappings.Retire(ctx, who.ID, m.Mnemonic, "", testActor)
	require.NoError(t, err)
	assert.True(t, retired.Retired)
	assert.Equal(t, terminology.MsgMappingWasRetired, retired.Comment)

	_, err = e.svc.Mappings.Retire(ctx, who.ID, m.Mnemonic, "", testActor)
	set, _ := terminology.AsErrorSet(err)
	assert.Equal(t, []string{terminology.MsgMappingAlreadyRetired}, set.Messages(terminology.AllFields))

	restored, err := e.svc.Mappings.Unretire(ctx, who.ID, m.Mnemonic, "", testActor)
	require.NoError(t, err)
	assert.False(t, restored.Retired)
	assert.Equal(t, terminology.MsgMappingWasUnretired, restored.Comment)
	assert.Equal(t, 1, e.latestCount(t, "mappings", m.VersionedObjectID))
}

func TestMappingResolvedWhenSourceCreated(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{SourceURL: who.URI, Code: "A01"},
		To:       terminology.EndpointInput{SourceURL: "/orgs/CIEL/sources/CIEL/", Code: "143264"},
	}, testActor)
	require.NoError(t, err)
	assert.Nil(t, m.To.Source)

	ciel := e.source(t, "CIEL", "CIEL")
	got, err := e.svc.Mappings.Get(ctx, who.ID, m.Mnemonic)
	require.NoError(t, err)
	require.NotNil(t, got.To.Source)
	assert.Equal(t, ciel.ID, got.To.Source.ID)
	assert.Equal(t, terminology.Unresolved, got.To.State())

	concept := e.concept(t, ciel, "143264")
	got, err = e.svc.Mappings.Get(ctx, who.ID, m.Mnemonic)
	require.NoError(t, err)
	assert.Equal(t, concept.ID, got.To.ConceptID())
}

func TestMappingRejectsDuplicateThroughCanonicalURL(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	icd, err := e.svc.Sources.Create(ctx, SourceInput{
		OwnerType:    terminology.OwnerOrganization,
		Owner:        "WHO",
		Mnemonic:     "ICD-10",
		CanonicalURL: "http://x.org/S",
	}, testActor)
	require.NoError(t, err)
	a01 := e.concept(t, icd, "A01")
	e.concept(t, icd, "B01")

	first, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: icd.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: "http://x.org/S", Code: "B01"},
	}, testActor)
	require.NoError(t, err)
	require.Equal(t, terminology.Resolved, first.To.State())
	before := e.snapshot(t)

	_, err = e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: icd.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{ConceptURL: a01.URI},
		To:       terminology.EndpointInput{SourceURL: icd.URI, Code: "B01"},
	}, testActor)

	require.Error(t, err)
	set, _ := terminology.AsErrorSet(err)
	assert.Contains(t, set.Messages(terminology.AllFields), terminology.MsgMappingNotUnique)
	assert.Equal(t, before, e.snapshot(t))
}

func TestMappingRecreatedAfterRetire(t *testing.T) {
	e := setupEnv(t, Options{})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")

	input := MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{SourceURL: who.URI, Code: "A01"},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}
	m, err := e.svc.Mappings.PersistNew(ctx, input, testActor)
	require.NoError(t, err)
	_, err = e.svc.Mappings.Retire(ctx, who.ID, m.Mnemonic, "", testActor)
	require.NoError(t, err)

	again, err := e.svc.Mappings.PersistNew(ctx, input, testActor)
	require.NoError(t, err)
	assert.NotEqual(t, m.VersionedObjectID, again.VersionedObjectID)

	_, err = e.svc.Mappings.Unretire(ctx, who.ID, m.Mnemonic, "", testActor)
	require.Error(t, err)
	set, _ := terminology.AsErrorSet(err)
	assert.Contains(t, set.Messages(terminology.AllFields), terminology.MsgMappingNotUnique)
}

func TestMappingPersistCloneRollsBackEveryWrite(t *testing.T) {
	v := newScriptedValidator()
	e := setupEnv(t, Options{Validator: v})
	ctx := context.Background()
	who := e.source(t, "WHO", "ICPC-2")

	m, err := e.svc.Mappings.PersistNew(ctx, MappingInput{
		ParentID: who.ID,
		MapType:  "SAME-AS",
		From:     terminology.EndpointInput{SourceURL: who.URI, Code: "A01"},
		To:       terminology.EndpointInput{SourceURL: "/orgs/WHO/sources/ICD-10/", Code: "R05"},
	}, testActor)
	require.NoError(t, err)

	before := e.snapshot(t)
	calls := len(e.indexer.Calls())

	v.failNext(2)
	draft := m.Clone()
	draft.MapType = "NARROWER-THAN"
	draft.Version = "2024-release"
	err = e.svc.Mappings.PersistClone(ctx, draft, testActor)

	require.Error(t, err)
	assert.ErrorIs(t, err, terminology.ErrPersistClone)
	assert.ErrorIs(t, err, terminology.ErrValidation)
	assert.Zero(t, draft.ID)
	assert.Equal(t, "2024-release", draft.Version)
	assert.Equal(t, before, e.snapshot(t))
	assert.Len(t, e.indexer.Calls(), calls)
	assert.Equal(t, 1, e.latestCount(t, "mappings", m.VersionedObjectID))

	root, err := database.NewMappingRepository(e.db, terminology.DefaultLocale).FindByID(ctx, m.VersionedObjectID)
	require.NoError(t, err)
	assert.Equal(t, "SAME-AS", root.MapType)

	require.NoError(t, e.svc.Mappings.PersistClone(ctx, draft, testActor))
	assert.Equal(t, "2024-release", draft.Version)
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/mappings/"+m.Mnemonic+"/2024-release/", draft.URI)
}
