// Package terminology holds the domain model of the versioned terminology
// store: sources, concepts with their localized texts, and mappings between
// concepts. Every resource is a versioned object backed by an append-only
// chain of versions, exactly one of which is flagged as the latest.
//
// The package is storage agnostic. Persistence, indexing and validation live
// in internal/database, internal/indexing and internal/validation and are
// orchestrated by internal/services.
package terminology
