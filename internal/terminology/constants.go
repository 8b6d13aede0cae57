package terminology

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// HEAD is the version label of the mutable working copy of a source.
	HEAD = "HEAD"

	// TempVersionPrefix marks a version label that has not been replaced by a
	// persistent identifier yet.
	TempVersionPrefix = "--TEMP--"

	// DefaultLocale is used when no system default locale is configured.
	DefaultLocale = "en"
)

// Owner types used in resource URIs.
const (
	OwnerOrganization = "orgs"
	OwnerUser         = "users"
)

// Entity kinds, also used as index reference kinds.
const (
	KindSource  = "source"
	KindConcept = "concept"
	KindMapping = "mapping"
)

const (
	MsgPersistCloneError            = "An error occurred while saving new version."
	MsgConceptSpecifyUser           = "Must specify which user is attempting to create a new concept version."
	MsgMappingSpecifyUser           = "Must specify which user is attempting to create a new mapping version."
	MsgSourceSpecifyUser            = "Must specify which user is attempting to modify the source."
	MsgAlreadyExists                = "Concept ID must be unique within a source."
	MsgMappingAlreadyExists         = "Mapping ID must be unique within a source."
	MsgConceptAlreadyRetired        = "Concept is already retired."
	MsgConceptAlreadyNotRetired     = "Concept is already not retired."
	MsgConceptWasRetired            = "Concept was retired"
	MsgConceptWasUnretired          = "Concept was un-retired"
	MsgMappingAlreadyRetired        = "Mapping is already retired."
	MsgMappingAlreadyNotRetired     = "Mapping is already not retired."
	MsgMappingWasRetired            = "Mapping was retired"
	MsgMappingWasUnretired          = "Mapping was un-retired"
	MsgCannotMapConceptToSelf       = "Cannot map concept to itself."
	MsgMustSpecifyFromConcept       = "Must specify a 'from_concept'."
	MsgMustSpecifyToConcept         = "Must specify either 'to_concept' or 'to_source' & 'to_concept_code'."
	MsgMappingNotUnique             = "Parent, map_type, from_concept, to_source, to_concept_code must be unique."
	MsgConceptNameRequired          = "A concept must have at least one name."
	MsgConceptOnePreferredPerLocale = "A concept may not have more than one preferred name per locale."
)

// NamespacePattern is the set of characters allowed in mnemonics.
var NamespacePattern = regexp.MustCompile(`^[a-zA-Z0-9._@-]+$`)

// NewTempVersion returns a placeholder version label for a row that has not
// been persisted yet.
func NewTempVersion() string {
	return TempVersionPrefix + "-" + uuid.NewString()[:8]
}

// IsTempVersion reports whether a version label is still a placeholder.
func IsTempVersion(version string) bool {
	return version == "" || strings.HasPrefix(version, TempVersionPrefix)
}
