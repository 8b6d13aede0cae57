package sqldb

import (
	"database/sql"
	"time"
)

type Source struct {
	ID               int64
	OwnerType        string
	Owner            string
	Mnemonic         string
	Version          string
	Uri              string
	CanonicalUrl     sql.NullString
	DefaultLocale    string
	SupportedLocales string
	Released         int64
	IsLatestVersion  int64
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Concept struct {
	ID                int64
	Mnemonic          string
	Version           string
	ParentID          int64
	VersionedObjectID sql.NullInt64
	Uri               string
	ConceptClass      string
	Datatype          string
	ExternalID        sql.NullString
	Comment           sql.NullString
	Extras            string
	Retired           int64
	Released          int64
	IsLatestVersion   int64
	IsActive          int64
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type LocalizedText struct {
	ID                  int64
	InternalReferenceID sql.NullString
	ExternalID          sql.NullString
	Name                string
	Type                sql.NullString
	Locale              string
	LocalePreferred     int64
	CreatedAt           time.Time
}

type Mapping struct {
	ID                int64
	Mnemonic          string
	Version           string
	ParentID          int64
	VersionedObjectID sql.NullInt64
	Uri               string
	MapType           string
	FromConceptID     sql.NullInt64
	ToConceptID       sql.NullInt64
	FromSourceID      sql.NullInt64
	ToSourceID        sql.NullInt64
	FromConceptCode   sql.NullString
	FromConceptName   sql.NullString
	FromSourceUrl     sql.NullString
	FromSourceVersion sql.NullString
	ToConceptCode     sql.NullString
	ToConceptName     sql.NullString
	ToSourceUrl       sql.NullString
	ToSourceVersion   sql.NullString
	ExternalID        sql.NullString
	Comment           sql.NullString
	Extras            string
	Retired           int64
	Released          int64
	IsLatestVersion   int64
	IsActive          int64
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
