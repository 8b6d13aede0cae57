package terminology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedConcept() *Concept {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Concept{
		ID:                7,
		VersionedObjectID: 3,
		Mnemonic:          "A01",
		Version:           "7",
		ParentID:          1,
		ConceptClass:      "Symptom",
		Datatype:          "N/A",
		Extras:            map[string]any{"icd": "R05"},
		IsLatestVersion:   true,
		Names: []LocalizedText{
			{ID: 11, InternalReferenceID: "11", Name: "Cough", Locale: "en", LocalePreferred: true, Type: "FULLY_SPECIFIED", CreatedAt: created},
		},
		Descriptions: []LocalizedText{
			{ID: 12, InternalReferenceID: "12", Name: "Expulsion of air", Locale: "en", CreatedAt: created},
		},
		Comment: "initial",
	}
}

func TestConceptCloneIndependence(t *testing.T) {
	src := storedConcept()
	draft := src.Clone()

	assert.Zero(t, draft.ID)
	assert.True(t, IsTempVersion(draft.Version))
	assert.Equal(t, src.VersionedObjectID, draft.VersionedObjectID)
	assert.Equal(t, src.ConceptClass, draft.ConceptClass)
	assert.Empty(t, draft.Comment)
	require.Len(t, draft.Names, 1)
	assert.Zero(t, draft.Names[0].ID)
	assert.Empty(t, draft.Names[0].InternalReferenceID)
	assert.Equal(t, src.Names[0].CreatedAt, draft.Names[0].CreatedAt)

	draft.Names[0].Name = "Changed"
	draft.Extras["icd"] = "X"
	assert.Equal(t, "Cough", src.Names[0].Name)
	assert.Equal(t, "R05", src.Extras["icd"])
}

func TestInitialVersionOf(t *testing.T) {
	root := storedConcept()
	root.ID = 3
	root.CreatedBy = "alice"
	v := InitialVersionOf(root)

	assert.Equal(t, int64(3), v.VersionedObjectID)
	assert.True(t, v.Released)
	assert.True(t, v.IsLatestVersion)
	assert.Equal(t, "alice", v.CreatedBy)
	assert.Equal(t, "initial", v.Comment)
}

func TestConceptApply(t *testing.T) {
	draft := storedConcept().Clone()
	class := "Diagnosis"
	retired := true
	draft.Apply(ConceptUpdate{
		ConceptClass: &class,
		Retired:      &retired,
		Comment:      "reclassified",
		Names:        []NameInput{{Name: "Toux", Locale: "fr"}},
	})

	assert.Equal(t, "Diagnosis", draft.ConceptClass)
	assert.Equal(t, "N/A", draft.Datatype)
	assert.True(t, draft.Retired)
	assert.Equal(t, "reclassified", draft.Comment)
	require.Len(t, draft.Names, 1)
	assert.Equal(t, "Toux", draft.Names[0].Name)
	assert.Len(t, draft.Descriptions, 1, "descriptions are kept when none are supplied")

	draft.Apply(ConceptUpdate{ReplaceDescriptions: true})
	assert.Empty(t, draft.Descriptions)
}

func TestLocalizedTextBuilders(t *testing.T) {
	n := NewName(NameInput{Name: "Cough", Locale: "en", Type: "SHORT", NameType: "ConceptName"})
	assert.Equal(t, "SHORT", n.Type)
	assert.True(t, n.IsShort())

	n = NewName(NameInput{Name: "Cough", Type: "SHORT", NameType: "FULLY_SPECIFIED"})
	assert.True(t, n.IsFullySpecified())

	d := NewDescription(DescriptionInput{Name: "fallback", Type: "Definition", DescriptionType: "ConceptDescription"})
	assert.Equal(t, "fallback", d.Name)
	assert.Equal(t, "Definition", d.Type)

	d = NewDescription(DescriptionInput{Description: "text", Name: "ignored", DescriptionType: "INDEX_TERM"})
	assert.Equal(t, "text", d.Name)
	assert.True(t, d.IsSearchIndexTerm())
}
