package terminology

import "time"

// Generic placeholder types sent by clients that carry no information of
// their own.
const (
	genericNameType        = "ConceptName"
	genericDescriptionType = "ConceptDescription"
)

var (
	fullySpecifiedTypes  = map[string]bool{"FULLY_SPECIFIED": true, "Fully Specified": true}
	shortTypes           = map[string]bool{"SHORT": true, "Short": true}
	searchIndexTermTypes = map[string]bool{"INDEX_TERM": true, "Index Term": true}
)

// LocalizedText is a name or description of a concept in one locale. A row
// belongs to exactly one concept row; versions own independent copies.
type LocalizedText struct {
	ID                  int64
	InternalReferenceID string
	ExternalID          string
	Name                string
	Type                string
	Locale              string
	LocalePreferred     bool
	CreatedAt           time.Time
}

// NameInput describes a concept name as supplied by a caller.
type NameInput struct {
	Name            string
	Locale          string
	LocalePreferred bool
	Type            string
	NameType        string
	ExternalID      string
}

// DescriptionInput describes a concept description as supplied by a caller.
type DescriptionInput struct {
	Description     string
	Name            string
	Locale          string
	LocalePreferred bool
	Type            string
	DescriptionType string
	ExternalID      string
}

// NewName builds an unsaved name. NameType wins over Type unless it is empty
// or the generic placeholder.
func NewName(in NameInput) LocalizedText {
	nameType := in.NameType
	if nameType == "" || nameType == genericNameType {
		nameType = in.Type
	}
	return LocalizedText{
		ExternalID:      in.ExternalID,
		Name:            in.Name,
		Type:            nameType,
		Locale:          in.Locale,
		LocalePreferred: in.LocalePreferred,
	}
}

// NewDescription builds an unsaved description. Description falls back to
// Name, DescriptionType falls back to Type.
func NewDescription(in DescriptionInput) LocalizedText {
	descriptionType := in.DescriptionType
	if descriptionType == "" || descriptionType == genericDescriptionType {
		descriptionType = in.Type
	}
	text := in.Description
	if text == "" {
		text = in.Name
	}
	return LocalizedText{
		ExternalID:      in.ExternalID,
		Name:            text,
		Type:            descriptionType,
		Locale:          in.Locale,
		LocalePreferred: in.LocalePreferred,
	}
}

// NewNames builds unsaved names for every input.
func NewNames(inputs []NameInput) []LocalizedText {
	out := make([]LocalizedText, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, NewName(in))
	}
	return out
}

// NewDescriptions builds unsaved descriptions for every input.
func NewDescriptions(inputs []DescriptionInput) []LocalizedText {
	out := make([]LocalizedText, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, NewDescription(in))
	}
	return out
}

// Clone returns an unsaved copy. Creation time is kept so that display name
// resolution stays stable across versions.
func (t LocalizedText) Clone() LocalizedText {
	return LocalizedText{
		ExternalID:      t.ExternalID,
		Name:            t.Name,
		Type:            t.Type,
		Locale:          t.Locale,
		LocalePreferred: t.LocalePreferred,
		CreatedAt:       t.CreatedAt,
	}
}

// IsFullySpecified reports whether the text is a fully specified name.
func (t LocalizedText) IsFullySpecified() bool { return fullySpecifiedTypes[t.Type] }

// IsShort reports whether the text is a short name.
func (t LocalizedText) IsShort() bool { return shortTypes[t.Type] }

// IsSearchIndexTerm reports whether the text is an index term.
func (t LocalizedText) IsSearchIndexTerm() bool { return searchIndexTermTypes[t.Type] }

func cloneTexts(texts []LocalizedText) []LocalizedText {
	if texts == nil {
		return nil
	}
	out := make([]LocalizedText, 0, len(texts))
	for _, t := range texts {
		out = append(out, t.Clone())
	}
	return out
}
