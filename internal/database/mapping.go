package database

import (
	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/terminology"
)

// SourceFromRow converts a database source row to a Source.
func SourceFromRow(row sqldb.Source) *terminology.Source {
	return &terminology.Source{
		ID:               row.ID,
		OwnerType:        row.OwnerType,
		Owner:            row.Owner,
		Mnemonic:         row.Mnemonic,
		Version:          row.Version,
		URI:              row.Uri,
		CanonicalURL:     optionalString(row.CanonicalUrl),
		DefaultLocale:    row.DefaultLocale,
		SupportedLocales: decodeLocales(row.SupportedLocales),
		Released:         row.Released != 0,
		IsLatestVersion:  row.IsLatestVersion != 0,
		CreatedBy:        row.CreatedBy,
		UpdatedBy:        row.UpdatedBy,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// SourceInsertParams creates insert parameters from a source.
func SourceInsertParams(s *terminology.Source) sqldb.InsertSourceParams {
	created := orNow(s.CreatedAt)
	return sqldb.InsertSourceParams{
		OwnerType:        s.OwnerType,
		Owner:            s.Owner,
		Mnemonic:         s.Mnemonic,
		Version:          s.Version,
		Uri:              s.URI,
		CanonicalUrl:     nullString(s.CanonicalURL),
		DefaultLocale:    s.DefaultLocale,
		SupportedLocales: encodeLocales(s.SupportedLocales),
		Released:         boolToInt64(s.Released),
		IsLatestVersion:  boolToInt64(s.IsLatestVersion),
		CreatedBy:        s.CreatedBy,
		UpdatedBy:        s.UpdatedBy,
		CreatedAt:        created,
		UpdatedAt:        orNow(s.UpdatedAt),
	}
}

// ConceptFromRow converts a concept row. Names, descriptions and the parent
// are loaded separately.
func ConceptFromRow(row sqldb.Concept) *terminology.Concept {
	return &terminology.Concept{
		ID:                row.ID,
		VersionedObjectID: optionalInt64(row.VersionedObjectID),
		Mnemonic:          row.Mnemonic,
		Version:           row.Version,
		URI:               row.Uri,
		ParentID:          row.ParentID,
		ConceptClass:      row.ConceptClass,
		Datatype:          row.Datatype,
		ExternalID:        optionalString(row.ExternalID),
		Comment:           optionalString(row.Comment),
		Extras:            decodeExtras(row.Extras),
		Retired:           row.Retired != 0,
		Released:          row.Released != 0,
		IsLatestVersion:   row.IsLatestVersion != 0,
		IsActive:          row.IsActive != 0,
		CreatedBy:         row.CreatedBy,
		UpdatedBy:         row.UpdatedBy,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// ConceptInsertParams creates insert parameters from a concept draft.
func ConceptInsertParams(c *terminology.Concept) (sqldb.InsertConceptParams, error) {
	extras, err := encodeExtras(c.Extras)
	if err != nil {
		return sqldb.InsertConceptParams{}, err
	}
	return sqldb.InsertConceptParams{
		Mnemonic:          c.Mnemonic,
		Version:           c.Version,
		ParentID:          c.ParentID,
		VersionedObjectID: nullInt64(c.VersionedObjectID),
		Uri:               c.URI,
		ConceptClass:      c.ConceptClass,
		Datatype:          c.Datatype,
		ExternalID:        nullString(c.ExternalID),
		Comment:           nullString(c.Comment),
		Extras:            extras,
		Retired:           boolToInt64(c.Retired),
		Released:          boolToInt64(c.Released),
		IsLatestVersion:   boolToInt64(c.IsLatestVersion),
		IsActive:          boolToInt64(c.IsActive),
		CreatedBy:         c.CreatedBy,
		UpdatedBy:         c.UpdatedBy,
		CreatedAt:         orNow(c.CreatedAt),
		UpdatedAt:         orNow(c.UpdatedAt),
	}, nil
}

// ConceptRootParams creates the parameters that mirror a version onto its
// versioned object.
func ConceptRootParams(rootID int64, latest *terminology.Concept, external string) (sqldb.UpdateConceptRootParams, error) {
	extras, err := encodeExtras(latest.Extras)
	if err != nil {
		return sqldb.UpdateConceptRootParams{}, err
	}
	return sqldb.UpdateConceptRootParams{
		ConceptClass: latest.ConceptClass,
		Datatype:     latest.Datatype,
		Retired:      boolToInt64(latest.Retired),
		Extras:       extras,
		ExternalID:   nullString(external),
		UpdatedBy:    latest.UpdatedBy,
		UpdatedAt:    Now(),
		ID:           rootID,
	}, nil
}

// LocalizedTextFromRow converts a localized text row.
func LocalizedTextFromRow(row sqldb.LocalizedText) terminology.LocalizedText {
	return terminology.LocalizedText{
		ID:                  row.ID,
		InternalReferenceID: optionalString(row.InternalReferenceID),
		ExternalID:          optionalString(row.ExternalID),
		Name:                row.Name,
		Type:                optionalString(row.Type),
		Locale:              row.Locale,
		LocalePreferred:     row.LocalePreferred != 0,
		CreatedAt:           row.CreatedAt,
	}
}

// LocalizedTextsFromRows converts localized text rows.
func LocalizedTextsFromRows(rows []sqldb.LocalizedText) []terminology.LocalizedText {
	out := make([]terminology.LocalizedText, 0, len(rows))
	for _, row := range rows {
		out = append(out, LocalizedTextFromRow(row))
	}
	return out
}

// LocalizedTextInsertParams creates insert parameters from an unsaved text.
func LocalizedTextInsertParams(t terminology.LocalizedText) sqldb.InsertLocalizedTextParams {
	return sqldb.InsertLocalizedTextParams{
		ExternalID:      nullString(t.ExternalID),
		Name:            t.Name,
		Type:            nullString(t.Type),
		Locale:          t.Locale,
		LocalePreferred: boolToInt64(t.LocalePreferred),
		CreatedAt:       orNow(t.CreatedAt),
	}
}

// MappingFromRow converts a mapping row. Endpoint concept and source pointers
// are loaded separately.
func MappingFromRow(row sqldb.Mapping) *terminology.Mapping {
	return &terminology.Mapping{
		ID:                row.ID,
		VersionedObjectID: optionalInt64(row.VersionedObjectID),
		Mnemonic:          row.Mnemonic,
		Version:           row.Version,
		URI:               row.Uri,
		ParentID:          row.ParentID,
		MapType:           row.MapType,
		From: terminology.Endpoint{
			SourceURL:     optionalString(row.FromSourceUrl),
			SourceVersion: optionalString(row.FromSourceVersion),
			Code:          optionalString(row.FromConceptCode),
			Name:          optionalString(row.FromConceptName),
		},
		To: terminology.Endpoint{
			SourceURL:     optionalString(row.ToSourceUrl),
			SourceVersion: optionalString(row.ToSourceVersion),
			Code:          optionalString(row.ToConceptCode),
			Name:          optionalString(row.ToConceptName),
		},
		ExternalID:      optionalString(row.ExternalID),
		Comment:         optionalString(row.Comment),
		Extras:          decodeExtras(row.Extras),
		Retired:         row.Retired != 0,
		Released:        row.Released != 0,
		IsLatestVersion: row.IsLatestVersion != 0,
		IsActive:        row.IsActive != 0,
		CreatedBy:       row.CreatedBy,
		UpdatedBy:       row.UpdatedBy,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// MappingInsertParams creates insert parameters from a mapping draft.
func MappingInsertParams(m *terminology.Mapping) (sqldb.InsertMappingParams, error) {
	extras, err := encodeExtras(m.Extras)
	if err != nil {
		return sqldb.InsertMappingParams{}, err
	}
	return sqldb.InsertMappingParams{
		Mnemonic:          m.Mnemonic,
		Version:           m.Version,
		ParentID:          m.ParentID,
		VersionedObjectID: nullInt64(m.VersionedObjectID),
		Uri:               m.URI,
		MapType:           m.MapType,
		FromConceptID:     nullInt64(m.From.ConceptID()),
		ToConceptID:       nullInt64(m.To.ConceptID()),
		FromSourceID:      nullInt64(m.From.SourceID()),
		ToSourceID:        nullInt64(m.To.SourceID()),
		FromConceptCode:   nullString(m.From.Code),
		FromConceptName:   nullString(m.From.Name),
		FromSourceUrl:     nullString(m.From.SourceURL),
		FromSourceVersion: nullString(m.From.SourceVersion),
		ToConceptCode:     nullString(m.To.Code),
		ToConceptName:     nullString(m.To.Name),
		ToSourceUrl:       nullString(m.To.SourceURL),
		ToSourceVersion:   nullString(m.To.SourceVersion),
		ExternalID:        nullString(m.ExternalID),
		Comment:           nullString(m.Comment),
		Extras:            extras,
		Retired:           boolToInt64(m.Retired),
		Released:          boolToInt64(m.Released),
		IsLatestVersion:   boolToInt64(m.IsLatestVersion),
		IsActive:          boolToInt64(m.IsActive),
		CreatedBy:         m.CreatedBy,
		UpdatedBy:         m.UpdatedBy,
		CreatedAt:         orNow(m.CreatedAt),
		UpdatedAt:         orNow(m.UpdatedAt),
	}, nil
}

// MappingRootParams creates the parameters that mirror a version onto its
// versioned object.
func MappingRootParams(rootID int64, latest *terminology.Mapping) (sqldb.UpdateMappingRootParams, error) {
	extras, err := encodeExtras(latest.Extras)
	if err != nil {
		return sqldb.UpdateMappingRootParams{}, err
	}
	return sqldb.UpdateMappingRootParams{
		MapType:           latest.MapType,
		Retired:           boolToInt64(latest.Retired),
		Extras:            extras,
		ExternalID:        nullString(latest.ExternalID),
		FromConceptID:     nullInt64(latest.From.ConceptID()),
		ToConceptID:       nullInt64(latest.To.ConceptID()),
		FromSourceID:      nullInt64(latest.From.SourceID()),
		ToSourceID:        nullInt64(latest.To.SourceID()),
		FromConceptCode:   nullString(latest.From.Code),
		FromConceptName:   nullString(latest.From.Name),
		FromSourceUrl:     nullString(latest.From.SourceURL),
		FromSourceVersion: nullString(latest.From.SourceVersion),
		ToConceptCode:     nullString(latest.To.Code),
		ToConceptName:     nullString(latest.To.Name),
		ToSourceUrl:       nullString(latest.To.SourceURL),
		ToSourceVersion:   nullString(latest.To.SourceVersion),
		UpdatedBy:         latest.UpdatedBy,
		UpdatedAt:         Now(),
		ID:                rootID,
	}, nil
}

// VersionRecordFromConcept summarises a concept version.
func VersionRecordFromConcept(c *terminology.Concept) VersionRecord {
	return VersionRecord{
		ID:              c.ID,
		Version:         c.Version,
		URI:             c.URI,
		IsLatestVersion: c.IsLatestVersion,
		Retired:         c.Retired,
		Released:        c.Released,
		Comment:         c.Comment,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
	}
}

// VersionRecordFromMapping summarises a mapping version.
func VersionRecordFromMapping(m *terminology.Mapping) VersionRecord {
	return VersionRecord{
		ID:              m.ID,
		Version:         m.Version,
		URI:             m.URI,
		IsLatestVersion: m.IsLatestVersion,
		Retired:         m.Retired,
		Released:        m.Released,
		Comment:         m.Comment,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}
