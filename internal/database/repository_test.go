package database

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/termvault/termvault/internal/logger"
	"github.com/termvault/termvault/internal/terminology"
)

func createSource(t *testing.T, dbCtx *Context, mnemonic string) *terminology.Source {
	t.Helper()
	repo := NewSourceRepository(dbCtx)
	src := &terminology.Source{
		OwnerType:        terminology.OwnerOrganization,
		Owner:            "WHO",
		Mnemonic:         mnemonic,
		Version:          terminology.HEAD,
		URI:              terminology.SourceURI(terminology.OwnerOrganization, "WHO", mnemonic, terminology.HEAD),
		DefaultLocale:    "en",
		SupportedLocales: []string{"en", "fr"},
		CreatedBy:        "tester",
		UpdatedBy:        "tester",
	}
	id, err := repo.Create(context.Background(), src)
	if err != nil {
		t.Fatalf("source create failed: %v", err)
	}
	got, err := repo.FindByID(context.Background(), id)
	if err != nil || got == nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	return got
}

func TestSourceRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewSourceRepository(dbCtx)

	src := createSource(t, dbCtx, "ICPC-2")
	if src.URI != "/orgs/WHO/sources/ICPC-2/" {
		t.Fatalf("unexpected uri %q", src.URI)
	}
	if len(src.SupportedLocales) != 2 || src.SupportedLocales[1] != "fr" {
		t.Fatalf("unexpected supported locales %v", src.SupportedLocales)
	}

	byURL, err := repo.FindHeadByURL(ctx, src.URI)
	if err != nil || byURL == nil || byURL.ID != src.ID {
		t.Fatalf("FindHeadByURL by uri failed: %v %#v", err, byURL)
	}

	missing, err := repo.FindHeadByURL(ctx, "http://who.int/icpc2")
	if err != nil {
		t.Fatalf("FindHeadByURL error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no source for unknown canonical url")
	}

	updated, err := repo.SetCanonicalURL(ctx, src.ID, "http://who.int/icpc2", "tester")
	if err != nil || !updated {
		t.Fatalf("SetCanonicalURL failed: %v updated=%v", err, updated)
	}

	byCanonical, err := repo.FindHeadByURL(ctx, "http://who.int/icpc2")
	if err != nil || byCanonical == nil || byCanonical.ID != src.ID {
		t.Fatalf("FindHeadByURL by canonical url failed: %v %#v", err, byCanonical)
	}

	head, err := repo.FindVersion(ctx, src.OwnerType, src.Owner, src.Mnemonic, "")
	if err != nil || head == nil || head.ID != src.ID {
		t.Fatalf("FindVersion HEAD failed: %v", err)
	}

	versions, err := repo.ListVersions(ctx, src.OwnerType, src.Owner, src.Mnemonic)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions))
	}

	none, err := repo.FindByID(ctx, 9999)
	if err != nil || none != nil {
		t.Fatalf("expected nil for missing source, got %#v err=%v", none, err)
	}
}

func TestConceptRepositoryLoadsNamesAndParent(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	src := createSource(t, dbCtx, "ICPC-2")

	rootID := insertConcept(t, dbCtx.DB, src.ID, "A01", 0, false)
	versionID := insertConcept(t, dbCtx.DB, src.ID, "A01", rootID, true)

	q := queriesFromContext(dbCtx)
	res, err := q.InsertLocalizedText(ctx, LocalizedTextInsertParams(terminology.NewName(terminology.NameInput{Name: "Cough", Locale: "en", LocalePreferred: true})))
	if err != nil {
		t.Fatalf("InsertLocalizedText failed: %v", err)
	}
	textID, _ := res.LastInsertId()
	if err := q.AddConceptName(ctx, versionID, textID); err != nil {
		t.Fatalf("AddConceptName failed: %v", err)
	}

	repo := NewConceptRepository(dbCtx)
	latest, err := repo.FindLatest(ctx, rootID)
	if err != nil || latest == nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if latest.ID != versionID || !latest.IsLatestVersion {
		t.Fatalf("unexpected latest version %#v", latest)
	}
	if latest.Parent == nil || latest.Parent.ID != src.ID {
		t.Fatalf("expected parent to be loaded")
	}
	if len(latest.Names) != 1 || latest.Names[0].Name != "Cough" {
		t.Fatalf("expected names to be loaded, got %#v", latest.Names)
	}
	if latest.DisplayName("en") != "Cough" {
		t.Fatalf("unexpected display name %q", latest.DisplayName("en"))
	}

	root, err := repo.FindRoot(ctx, src.ID, "A01")
	if err != nil || root == nil || !root.IsVersionedObject() {
		t.Fatalf("FindRoot failed: %v %#v", err, root)
	}

	exists, err := repo.ExistsActive(ctx, src.ID, "a01")
	if err != nil || !exists {
		t.Fatalf("expected case-insensitive mnemonic match: %v", err)
	}

	versions, err := repo.ListVersions(ctx, rootID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("ListVersions failed: %v len=%d", err, len(versions))
	}
}

func TestMappingRepositoryDuplicateExists(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	src := createSource(t, dbCtx, "ICPC-2")

	versionID := insertMapping(t, dbCtx.DB, src.ID, "m1", "A01", "B02")

	repo := NewMappingRepository(dbCtx, "en")
	stored, err := repo.FindByID(ctx, versionID)
	if err != nil || stored == nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.From.Code != "A01" || stored.To.Code != "B02" {
		t.Fatalf("unexpected endpoints %#v %#v", stored.From, stored.To)
	}
	if stored.To.State() != terminology.Unresolved {
		t.Fatalf("expected unresolved endpoint")
	}

	candidate := &terminology.Mapping{
		ParentID: src.ID,
		MapType:  "SAME-AS",
		From:     terminology.Endpoint{Code: "A01"},
		To:       terminology.Endpoint{Code: "B02"},
	}
	dup, err := repo.DuplicateExists(ctx, candidate)
	if err != nil || !dup {
		t.Fatalf("expected duplicate: %v", err)
	}

	candidate.VersionedObjectID = stored.VersionedObjectID
	dup, err = repo.DuplicateExists(ctx, candidate)
	if err != nil || dup {
		t.Fatalf("a mapping does not duplicate itself: %v", err)
	}

	candidate.VersionedObjectID = 0
	candidate.MapType = "NARROWER-THAN"
	dup, err = repo.DuplicateExists(ctx, candidate)
	if err != nil || dup {
		t.Fatalf("different map type is not a duplicate: %v", err)
	}
	candidate.MapType = "SAME-AS"
	if _, err := dbCtx.DB.Exec(`UPDATE mappings SET retired = 1 WHERE id = ?`, versionID); err != nil {
		t.Fatalf("retire update failed: %v", err)
	}
	dup, err = repo.DuplicateExists(ctx, candidate)
	if err != nil || dup {
		t.Fatalf("a retired mapping is not a duplicate: %v", err)
	}
}

func TestFindLatestLogsDatabaseOperation(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	var buf bytes.Buffer
	dbCtx.Log = logger.NewLogger(logger.Config{Level: "debug", Output: &buf})

	src := createSource(t, dbCtx, "ICPC-2")
	rootID := insertConcept(t, dbCtx.DB, src.ID, "A01", 0, false)
	insertConcept(t, dbCtx.DB, src.ID, "A01", rootID, true)

	if _, err := NewConceptRepository(dbCtx).FindLatest(ctx, rootID); err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"operation":"find_latest_concept"`) || !strings.Contains(out, `"record_count":1`) {
		t.Fatalf("expected find_latest_concept log entry, got %s", out)
	}
}
