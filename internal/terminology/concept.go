package terminology

import "time"

// Concept is one row of a concept's version chain. The row whose ID equals
// VersionedObjectID is the versioned object itself; it mirrors the state of
// the latest version.
type Concept struct {
	ID                int64
	VersionedObjectID int64
	Mnemonic          string
	Version           string
	URI               string
	ParentID          int64
	Parent            *Source
	ConceptClass      string
	Datatype          string
	ExternalID        string
	Comment           string
	Extras            map[string]any
	Retired           bool
	Released          bool
	IsLatestVersion   bool
	IsActive          bool
	Names             []LocalizedText
	Descriptions      []LocalizedText
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsVersionedObject reports whether c is the root of its chain.
func (c *Concept) IsVersionedObject() bool {
	return c.ID != 0 && c.ID == c.VersionedObjectID
}

// Clone returns an unsaved draft carrying the domain fields of c. Names and
// descriptions are copied as fresh unsaved rows.
func (c *Concept) Clone() *Concept {
	return &Concept{
		VersionedObjectID: c.VersionedObjectID,
		Mnemonic:          c.Mnemonic,
		Version:           NewTempVersion(),
		ParentID:          c.ParentID,
		Parent:            c.Parent,
		ConceptClass:      c.ConceptClass,
		Datatype:          c.Datatype,
		ExternalID:        c.ExternalID,
		Extras:            cloneExtras(c.Extras),
		Retired:           c.Retired,
		Released:          c.Released,
		IsLatestVersion:   c.IsLatestVersion,
		IsActive:          true,
		Names:             cloneTexts(c.Names),
		Descriptions:      cloneTexts(c.Descriptions),
	}
}

// InitialVersionOf builds the draft of the first version of a freshly
// created root.
func InitialVersionOf(root *Concept) *Concept {
	v := root.Clone()
	v.VersionedObjectID = root.ID
	v.CreatedBy = root.CreatedBy
	v.UpdatedBy = root.UpdatedBy
	v.Comment = root.Comment
	v.Released = true
	v.IsLatestVersion = true
	return v
}

// ConceptUpdate carries the changes for a new concept version. Nil fields
// keep the value of the version being cloned.
type ConceptUpdate struct {
	ConceptClass *string
	Datatype     *string
	ExternalID   *string
	Extras       map[string]any
	Retired      *bool
	Comment      string
	Names        []NameInput
	Descriptions []DescriptionInput
	// ReplaceNames and ReplaceDescriptions replace the cloned texts with the
	// supplied ones, even when the supplied list is empty.
	ReplaceNames        bool
	ReplaceDescriptions bool
}

// Apply mutates the draft according to u.
func (c *Concept) Apply(u ConceptUpdate) {
	if u.ConceptClass != nil {
		c.ConceptClass = *u.ConceptClass
	}
	if u.Datatype != nil {
		c.Datatype = *u.Datatype
	}
	if u.ExternalID != nil {
		c.ExternalID = *u.ExternalID
	}
	if u.Extras != nil {
		c.Extras = cloneExtras(u.Extras)
	}
	if u.Retired != nil {
		c.Retired = *u.Retired
	}
	c.Comment = u.Comment
	if u.ReplaceNames || len(u.Names) > 0 {
		c.Names = NewNames(u.Names)
	}
	if u.ReplaceDescriptions || len(u.Descriptions) > 0 {
		c.Descriptions = NewDescriptions(u.Descriptions)
	}
}

// DisplayName returns the name chosen by PreferredLocale, or "".
func (c *Concept) DisplayName(systemDefault string) string {
	if t, ok := PreferredLocale(c.Names, c.Parent, systemDefault); ok {
		return t.Name
	}
	return ""
}

// DisplayLocale returns the locale of the display name, or "".
func (c *Concept) DisplayLocale(systemDefault string) string {
	if t, ok := PreferredLocale(c.Names, c.Parent, systemDefault); ok {
		return t.Locale
	}
	return ""
}

func cloneExtras(extras map[string]any) map[string]any {
	out := make(map[string]any, len(extras))
	for k, v := range extras {
		out[k] = v
	}
	return out
}

// Ref returns the reference a mapping endpoint keeps to c.
func (c *Concept) Ref(systemDefault string) *ConceptRef {
	return &ConceptRef{
		ID:                c.ID,
		VersionedObjectID: c.VersionedObjectID,
		Mnemonic:          c.Mnemonic,
		URI:               c.URI,
		Parent:            c.Parent,
		DisplayName:       c.DisplayName(systemDefault),
	}
}
