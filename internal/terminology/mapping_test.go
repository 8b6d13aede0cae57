package terminology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointUnresolved(t *testing.T) {
	e := Endpoint{SourceURL: "/orgs/WHO/sources/ICPC-2/", Code: "A01", Name: "Cough"}

	assert.Equal(t, Unresolved, e.State())
	assert.Nil(t, e.EffectiveSource())
	assert.Equal(t, "/orgs/WHO/sources/ICPC-2/", e.EffectiveSourceURL())
	assert.Equal(t, "Cough", e.DisplayName())
	assert.Equal(t, "A01", e.EffectiveCode())
	assert.Zero(t, e.ConceptID())
}

func TestEndpointEffectiveSourcePriority(t *testing.T) {
	conceptParent := &Source{ID: 1, URI: "/orgs/WHO/sources/ICPC-2/v11/"}
	pointer := &Source{ID: 2, URI: "/orgs/WHO/sources/ICPC-2/"}

	e := Endpoint{Source: pointer, SourceURL: "http://who.int/icpc2"}
	assert.Equal(t, pointer, e.EffectiveSource())
	assert.Equal(t, pointer.URI, e.EffectiveSourceURL())

	e.Concept = &ConceptRef{ID: 5, Mnemonic: "A01", Parent: conceptParent, DisplayName: "Cough"}
	assert.Equal(t, Resolved, e.State())
	assert.Equal(t, conceptParent, e.EffectiveSource())
	assert.Equal(t, "Cough", e.DisplayName())
	assert.Equal(t, "A01", e.EffectiveCode())
}

func TestIsFromSameAsTo(t *testing.T) {
	m := &Mapping{
		From: Endpoint{Concept: &ConceptRef{ID: 4, VersionedObjectID: 3}},
		To:   Endpoint{Concept: &ConceptRef{ID: 3, VersionedObjectID: 3}},
	}
	assert.True(t, m.IsFromSameAsTo())

	m.To.Concept = &ConceptRef{ID: 9, VersionedObjectID: 8}
	assert.False(t, m.IsFromSameAsTo())

	textual := &Mapping{
		From: Endpoint{SourceURL: "/orgs/WHO/sources/ICPC-2/", Code: "A01"},
		To:   Endpoint{SourceURL: "/orgs/WHO/sources/ICPC-2/", Code: "A01"},
	}
	assert.True(t, textual.IsFromSameAsTo())

	textual.To.SourceURL = "/orgs/WHO/sources/ICD-10/"
	assert.False(t, textual.IsFromSameAsTo())
}

func TestMappingCloneAndInitialVersion(t *testing.T) {
	root := &Mapping{ID: 10, VersionedObjectID: 10, Mnemonic: "10", MapType: "SAME-AS", Extras: map[string]any{"k": "v"}, CreatedBy: "bob"}
	draft := root.Clone()
	assert.Zero(t, draft.ID)
	assert.True(t, IsTempVersion(draft.Version))
	draft.Extras["k"] = "changed"
	assert.Equal(t, "v", root.Extras["k"])

	v := InitialMappingVersionOf(root)
	assert.Equal(t, int64(10), v.VersionedObjectID)
	assert.False(t, v.Released)
	assert.True(t, v.IsLatestVersion)
	assert.Equal(t, "bob", v.CreatedBy)
}

func TestMappingApply(t *testing.T) {
	m := &Mapping{MapType: "SAME-AS", ExternalID: "x1", Comment: "old"}
	mapType := "NARROWER-THAN"
	retired := true

	m.Apply(MappingUpdate{MapType: &mapType, Retired: &retired, Extras: map[string]any{"a": 1}})

	assert.Equal(t, "NARROWER-THAN", m.MapType)
	assert.Equal(t, "x1", m.ExternalID)
	assert.True(t, m.Retired)
	assert.Equal(t, map[string]any{"a": 1}, m.Extras)
	assert.Empty(t, m.Comment)
}
