package terminology

import "time"

// EndpointState tells whether an endpoint points at a stored concept.
type EndpointState int

const (
	Unresolved EndpointState = iota
	Resolved
)

func (s EndpointState) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "unresolved"
}

// ConceptRef is the part of a concept a mapping endpoint needs.
type ConceptRef struct {
	ID                int64
	VersionedObjectID int64
	Mnemonic          string
	URI               string
	Parent            *Source
	DisplayName       string
}

// Endpoint is one side of a mapping. The textual fields are always kept, so
// an unresolved endpoint can be resolved later when its concept appears.
type Endpoint struct {
	Concept       *ConceptRef
	Source        *Source
	SourceURL     string
	SourceVersion string
	Code          string
	Name          string
}

// State reports whether the endpoint is bound to a stored concept.
func (e Endpoint) State() EndpointState {
	if e.Concept != nil && e.Concept.ID != 0 {
		return Resolved
	}
	return Unresolved
}

// EffectiveSource returns the resolved concept's parent, else the resolved
// source pointer.
func (e Endpoint) EffectiveSource() *Source {
	if e.State() == Resolved && e.Concept.Parent != nil {
		return e.Concept.Parent
	}
	return e.Source
}

// EffectiveSourceURL returns the URI of EffectiveSource, else the raw URL.
func (e Endpoint) EffectiveSourceURL() string {
	if s := e.EffectiveSource(); s != nil {
		return s.URI
	}
	return e.SourceURL
}

// DisplayName returns the stored name, else the resolved concept's display
// name.
func (e Endpoint) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.State() == Resolved {
		return e.Concept.DisplayName
	}
	return ""
}

// EffectiveCode returns the stored code, else the resolved concept mnemonic.
func (e Endpoint) EffectiveCode() string {
	if e.Code != "" {
		return e.Code
	}
	if e.State() == Resolved {
		return e.Concept.Mnemonic
	}
	return ""
}

// ConceptID returns the resolved concept row ID or 0.
func (e Endpoint) ConceptID() int64 {
	if e.State() == Resolved {
		return e.Concept.ID
	}
	return 0
}

// SourceID returns the resolved source pointer ID or 0.
func (e Endpoint) SourceID() int64 {
	if e.Source != nil {
		return e.Source.ID
	}
	return 0
}

// Mapping is one row of a mapping's version chain.
type Mapping struct {
	ID                int64
	VersionedObjectID int64
	Mnemonic          string
	Version           string
	URI               string
	ParentID          int64
	Parent            *Source
	MapType           string
	From              Endpoint
	To                Endpoint
	ExternalID        string
	Comment           string
	Extras            map[string]any
	Retired           bool
	Released          bool
	IsLatestVersion   bool
	IsActive          bool
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsVersionedObject reports whether m is the root of its chain.
func (m *Mapping) IsVersionedObject() bool {
	return m.ID != 0 && m.ID == m.VersionedObjectID
}

// Clone returns an unsaved draft carrying the domain fields of m.
func (m *Mapping) Clone() *Mapping {
	return &Mapping{
		VersionedObjectID: m.VersionedObjectID,
		Mnemonic:          m.Mnemonic,
		Version:           NewTempVersion(),
		ParentID:          m.ParentID,
		Parent:            m.Parent,
		MapType:           m.MapType,
		From:              m.From,
		To:                m.To,
		ExternalID:        m.ExternalID,
		Extras:            cloneExtras(m.Extras),
		Retired:           m.Retired,
		Released:          m.Released,
		IsLatestVersion:   m.IsLatestVersion,
		IsActive:          true,
	}
}

// InitialMappingVersionOf builds the draft of the first version of a freshly
// created mapping root. Initial mapping versions are not released.
func InitialMappingVersionOf(root *Mapping) *Mapping {
	v := root.Clone()
	v.VersionedObjectID = root.ID
	v.CreatedBy = root.CreatedBy
	v.UpdatedBy = root.UpdatedBy
	v.Comment = root.Comment
	v.Released = false
	v.IsLatestVersion = true
	return v
}

// IsFromSameAsTo reports whether both endpoints denote the same concept.
func (m *Mapping) IsFromSameAsTo() bool {
	if m.From.State() == Resolved && m.To.State() == Resolved {
		from, to := m.From.Concept.VersionedObjectID, m.To.Concept.VersionedObjectID
		if from == 0 {
			from = m.From.Concept.ID
		}
		if to == 0 {
			to = m.To.Concept.ID
		}
		if from == to {
			return true
		}
	}
	return m.From.Code != "" && m.From.Code == m.To.Code && m.From.SourceURL == m.To.SourceURL
}

// EndpointInput is the textual description of a mapping endpoint.
type EndpointInput struct {
	ConceptURL    string
	SourceURL     string
	SourceVersion string
	Code          string
	Name          string
}

// IsZero reports whether no field was supplied.
func (in EndpointInput) IsZero() bool {
	return in == EndpointInput{}
}

// MappingUpdate carries the changes for a new mapping version. Zero endpoint
// inputs keep the endpoint of the version being cloned; non-zero ones are
// resolved again by the caller.
type MappingUpdate struct {
	MapType    *string
	ExternalID *string
	Extras     map[string]any
	Retired    *bool
	Comment    string
	From       EndpointInput
	To         EndpointInput
}

// Apply mutates the draft according to the scalar fields of u.
func (m *Mapping) Apply(u MappingUpdate) {
	if u.MapType != nil {
		m.MapType = *u.MapType
	}
	if u.ExternalID != nil {
		m.ExternalID = *u.ExternalID
	}
	if u.Extras != nil {
		m.Extras = cloneExtras(u.Extras)
	}
	if u.Retired != nil {
		m.Retired = *u.Retired
	}
	m.Comment = u.Comment
}
