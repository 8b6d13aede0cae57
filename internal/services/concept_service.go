package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/termvault/termvault/internal/database"
	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/indexing"
	"github.com/termvault/termvault/internal/terminology"
)

// DefaultDatatype is stored when a concept is created without a datatype.
const DefaultDatatype = "None"

// ConceptService creates concepts and new versions of them.
type ConceptService struct {
	runner
	validator     Validator
	resolver      *Resolver
	defaultLocale string
}

func NewConceptService(dbCtx *database.Context, opts Options) *ConceptService {
	opts = opts.withDefaults()
	return &ConceptService{
		runner: runner{
			ctx:     dbCtx,
			indexer: opts.Indexer,
			log:     opts.Logger.ServiceLogger(terminology.KindConcept),
			metrics: opts.Metrics,
		},
		validator:     opts.Validator,
		resolver:      NewResolver(dbCtx, opts),
		defaultLocale: opts.DefaultLocale,
	}
}

func (s *ConceptService) repository() *database.ConceptRepository {
	return database.NewConceptRepository(s.ctx)
}

// PersistNew stores a new concept: the versioned object, its names and
// descriptions, and its first version. Mappings waiting for the concept are
// resolved in the same transaction.
func (s *ConceptService) PersistNew(ctx context.Context, c *terminology.Concept, actor string) error {
	if actor == "" {
		return missingActor(terminology.MsgConceptSpecifyUser)
	}
	if c.ParentID == 0 && c.Parent != nil {
		c.ParentID = c.Parent.ID
	}
	c.CreatedBy = actor
	c.UpdatedBy = actor
	c.IsActive = true
	c.IsLatestVersion = false
	c.Released = false
	if c.Datatype == "" {
		c.Datatype = DefaultDatatype
	}

	exists, err := s.repository().ExistsActive(ctx, c.ParentID, c.Mnemonic)
	if err != nil {
		return asErrorSet(fmt.Errorf("failed to check concept uniqueness: %w", err))
	}
	if exists {
		return terminology.FieldError(terminology.ErrAlreadyExists, terminology.AllFields, terminology.MsgAlreadyExists)
	}

	if errs := s.validator.ValidateConcept(ctx, c); !errs.Empty() {
		return errs
	}

	start := time.Now()
	var initial *terminology.Concept
	err = s.persist(ctx, terminology.KindConcept, "create", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		sources := database.NewSourceRepository(s.ctx).WithQueries(q)
		taken, err := s.repository().WithQueries(q).ExistsActive(ctx, c.ParentID, c.Mnemonic)
		if err != nil {
			return nil, fmt.Errorf("failed to check concept uniqueness: %w", err)
		}
		if taken {
			return nil, terminology.FieldError(terminology.ErrAlreadyExists, terminology.AllFields, terminology.MsgAlreadyExists)
		}

		parent, err := sources.FindByID(ctx, c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent source: %w", err)
		}
		if parent == nil {
			return nil, notFound("source %d", c.ParentID)
		}
		c.Parent = parent
		c.Version = terminology.NewTempVersion()
		c.URI = terminology.ChildURI(parent.URI, "concepts", c.Mnemonic, "", true)

		id, err := insertConceptRow(ctx, q, c)
		if err != nil {
			return nil, err
		}
		c.ID = id
		c.VersionedObjectID = id
		c.Version = strconv.FormatInt(id, 10)
		if err := q.FinalizeConcept(ctx, sqldb.FinalizeParams{
			VersionedObjectID: id,
			Version:           c.Version,
			Uri:               c.URI,
			IsLatestVersion:   0,
			ID:                id,
		}); err != nil {
			return nil, fmt.Errorf("failed to finalize concept: %w", err)
		}

		if err := insertTexts(ctx, q, c); err != nil {
			return nil, err
		}

		if errs := s.validator.ValidateConcept(ctx, c); !errs.Empty() {
			return nil, errs
		}

		initial = terminology.InitialVersionOf(c)
		if err := insertConceptVersion(ctx, q, initial, parent); err != nil {
			return nil, err
		}

		sourceIDs, err := sourcesFor(ctx, sources, parent)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent head: %w", err)
		}
		for _, sourceID := range sourceIDs {
			if err := q.AddConceptSource(ctx, c.ID, sourceID); err != nil {
				return nil, fmt.Errorf("failed to attach concept to source: %w", err)
			}
			if err := q.AddConceptSource(ctx, initial.ID, sourceID); err != nil {
				return nil, fmt.Errorf("failed to attach concept version to source: %w", err)
			}
		}

		if _, err := s.resolver.ReresolveOnConceptCreated(ctx, q, c); err != nil {
			return nil, err
		}

		return ref(terminology.KindConcept, c.ID, initial.ID), nil
	})
	if err != nil {
		resetConcept(c, "")
		c.VersionedObjectID = 0
		s.log.LogPersist("create", 0, c.Version, time.Now().Sub(start), err)
		return asErrorSet(err)
	}

	s.log.LogPersist("create", c.ID, initial.Version, time.Now().Sub(start), nil)
	return nil
}

// PersistClone stores draft as the new latest version of its versioned
// object. Nothing is written unless every step succeeds; on failure draft is
// returned to its unsaved state and the error carries non_field_errors.
func (s *ConceptService) PersistClone(ctx context.Context, draft *terminology.Concept, actor string) error {
	if actor == "" {
		return missingActor(terminology.MsgConceptSpecifyUser)
	}
	draft.CreatedBy = actor
	draft.UpdatedBy = actor
	draft.IsActive = true
	if draft.Version == "" {
		draft.Version = terminology.NewTempVersion()
	}
	label := draft.Version
	if draft.VersionedObjectID == 0 {
		return cloneFailure(notFound("concept draft has no versioned object"))
	}

	if errs := s.validator.ValidateConcept(ctx, draft); !errs.Empty() {
		resetConcept(draft, label)
		return cloneFailure(errs)
	}

	start := time.Now()
	err := s.persist(ctx, terminology.KindConcept, "clone", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		concepts := s.repository().WithQueries(q)
		sources := database.NewSourceRepository(s.ctx).WithQueries(q)

		root, err := concepts.FindByID(ctx, draft.VersionedObjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load versioned object: %w", err)
		}
		if root == nil || !root.IsVersionedObject() {
			return nil, notFound("concept %d", draft.VersionedObjectID)
		}
		if _, err := q.TouchConcept(ctx, database.Now(), root.ID); err != nil {
			return nil, fmt.Errorf("failed to lock versioned object: %w", err)
		}

		previous, err := concepts.FindLatest(ctx, root.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest version: %w", err)
		}
		if _, err := q.ClearLatestConceptVersion(ctx, root.ID); err != nil {
			return nil, fmt.Errorf("failed to clear latest version: %w", err)
		}

		draft.Mnemonic = root.Mnemonic
		draft.ParentID = root.ParentID
		draft.Parent = root.Parent
		draft.IsLatestVersion = true
		if err := insertConceptVersion(ctx, q, draft, root.Parent); err != nil {
			return nil, err
		}

		stored, err := concepts.FindByID(ctx, draft.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload version: %w", err)
		}
		if errs := s.validator.ValidateConcept(ctx, stored); !errs.Empty() {
			return nil, errs
		}

		external := root.ExternalID
		if draft.ExternalID != "" {
			external = draft.ExternalID
		}
		params, err := database.ConceptRootParams(root.ID, draft, external)
		if err != nil {
			return nil, fmt.Errorf("failed to encode versioned object: %w", err)
		}
		if _, err := q.UpdateConceptRoot(ctx, params); err != nil {
			return nil, fmt.Errorf("failed to update versioned object: %w", err)
		}
		if err := replaceRootTexts(ctx, q, root, draft); err != nil {
			return nil, err
		}

		sourceIDs, err := sourcesFor(ctx, sources, root.Parent)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent head: %w", err)
		}
		for _, sourceID := range sourceIDs {
			if err := q.AddConceptSource(ctx, draft.ID, sourceID); err != nil {
				return nil, fmt.Errorf("failed to attach version to source: %w", err)
			}
		}

		refs := ref(terminology.KindConcept, draft.ID, root.ID)
		if previous != nil {
			refs = append(refs, ref(terminology.KindConcept, previous.ID)...)
		}
		return refs, nil
	})
	if err != nil {
		resetConcept(draft, label)
		s.log.LogPersist("clone", draft.VersionedObjectID, "", time.Now().Sub(start), err)
		return cloneFailure(err)
	}

	s.log.LogPersist("clone", draft.VersionedObjectID, draft.Version, time.Now().Sub(start), nil)
	return nil
}

// CreateNewVersion clones latest, applies u and persists the result.
func (s *ConceptService) CreateNewVersion(ctx context.Context, latest *terminology.Concept, u terminology.ConceptUpdate, actor string) (*terminology.Concept, error) {
	draft := latest.Clone()
	draft.Apply(u)
	if err := s.PersistClone(ctx, draft, actor); err != nil {
		return draft, err
	}
	return draft, nil
}

// Update creates a new version of the concept mnemonic in parentID.
func (s *ConceptService) Update(ctx context.Context, parentID int64, mnemonic string, u terminology.ConceptUpdate, actor string) (*terminology.Concept, error) {
	latest, err := s.Get(ctx, parentID, mnemonic)
	if err != nil {
		return nil, err
	}
	return s.CreateNewVersion(ctx, latest, u, actor)
}

// Retire creates a new version marked retired.
func (s *ConceptService) Retire(ctx context.Context, parentID int64, mnemonic, comment, actor string) (*terminology.Concept, error) {
	return s.setRetired(ctx, parentID, mnemonic, true, comment, actor)
}

// Unretire creates a new version with the retired flag cleared.
func (s *ConceptService) Unretire(ctx context.Context, parentID int64, mnemonic, comment, actor string) (*terminology.Concept, error) {
	return s.setRetired(ctx, parentID, mnemonic, false, comment, actor)
}

func (s *ConceptService) setRetired(ctx context.Context, parentID int64, mnemonic string, retired bool, comment, actor string) (*terminology.Concept, error) {
	latest, err := s.Get(ctx, parentID, mnemonic)
	if err != nil {
		return nil, err
	}

	if latest.Retired == retired {
		msg := terminology.MsgConceptAlreadyNotRetired
		if retired {
			msg = terminology.MsgConceptAlreadyRetired
		}
		return nil, terminology.FieldError(terminology.ErrValidation, terminology.AllFields, msg)
	}

	if comment == "" {
		comment = terminology.MsgConceptWasUnretired
		if retired {
			comment = terminology.MsgConceptWasRetired
		}
	}

	return s.CreateNewVersion(ctx, latest, terminology.ConceptUpdate{Retired: &retired, Comment: comment}, actor)
}

// Get returns the latest version of a concept, or the versioned object when
// no version exists yet.
func (s *ConceptService) Get(ctx context.Context, parentID int64, mnemonic string) (*terminology.Concept, error) {
	repo := s.repository()
	root, err := repo.FindRoot(ctx, parentID, mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept %s: %w", mnemonic, err)
	}
	if root == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Concept %s not found.", mnemonic))
	}
	latest, err := repo.FindLatest(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest version of %s: %w", mnemonic, err)
	}
	if latest == nil {
		return root, nil
	}
	return latest, nil
}

// GetVersion returns one labelled version of a concept.
func (s *ConceptService) GetVersion(ctx context.Context, parentID int64, mnemonic, version string) (*terminology.Concept, error) {
	repo := s.repository()
	root, err := repo.FindRoot(ctx, parentID, mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept %s: %w", mnemonic, err)
	}
	if root == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Concept %s not found.", mnemonic))
	}
	v, err := repo.FindVersion(ctx, root.ID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load version %s of %s: %w", version, mnemonic, err)
	}
	if v == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Concept %s has no version %s.", mnemonic, version))
	}
	return v, nil
}

// Versions lists every version of a concept, newest first.
func (s *ConceptService) Versions(ctx context.Context, parentID int64, mnemonic string) ([]database.VersionRecord, error) {
	repo := s.repository()
	root, err := repo.FindRoot(ctx, parentID, mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept %s: %w", mnemonic, err)
	}
	if root == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Concept %s not found.", mnemonic))
	}
	versions, err := repo.ListVersions(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", mnemonic, err)
	}
	records := make([]database.VersionRecord, 0, len(versions))
	for _, v := range versions {
		records = append(records, database.VersionRecordFromConcept(v))
	}
	return records, nil
}

// Sources lists the source versions the concept row conceptID belongs to.
func (s *ConceptService) Sources(ctx context.Context, conceptID int64) ([]*terminology.Source, error) {
	sources, err := database.NewSourceRepository(s.ctx).ListForConcept(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources of concept %d: %w", conceptID, err)
	}
	return sources, nil
}

func insertConceptRow(ctx context.Context, q *sqldb.Queries, c *terminology.Concept) (int64, error) {
	params, err := database.ConceptInsertParams(c)
	if err != nil {
		return 0, fmt.Errorf("failed to encode concept: %w", err)
	}
	res, err := q.InsertConcept(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to insert concept: %w", err)
	}
	id, err := lastInsertID(res)
	if err != nil {
		return 0, fmt.Errorf("failed to insert concept: %w", err)
	}
	return id, nil
}

// insertConceptVersion writes v under parent and assigns its identifier,
// version label and URI. An explicit label other than a placeholder is kept.
func insertConceptVersion(ctx context.Context, q *sqldb.Queries, v *terminology.Concept, parent *terminology.Source) error {
	if v.Version == "" {
		v.Version = terminology.NewTempVersion()
	}
	explicit := !terminology.IsTempVersion(v.Version)
	v.ParentID = parent.ID
	v.Parent = parent
	v.URI = terminology.ChildURI(parent.URI, "concepts", v.Mnemonic, v.Version, false)

	id, err := insertConceptRow(ctx, q, v)
	if err != nil {
		return err
	}
	v.ID = id
	if !explicit {
		v.Version = strconv.FormatInt(id, 10)
	}
	v.URI = terminology.ChildURI(parent.URI, "concepts", v.Mnemonic, v.Version, false)

	if err := q.FinalizeConcept(ctx, sqldb.FinalizeParams{
		VersionedObjectID: v.VersionedObjectID,
		Version:           v.Version,
		Uri:               v.URI,
		IsLatestVersion:   flag(v.IsLatestVersion),
		ID:                id,
	}); err != nil {
		return fmt.Errorf("failed to finalize concept version: %w", err)
	}

	return insertTexts(ctx, q, v)
}

// insertTexts writes the unsaved names and descriptions of c and binds them
// to c.
func insertTexts(ctx context.Context, q *sqldb.Queries, c *terminology.Concept) error {
	for i := range c.Names {
		id, err := insertText(ctx, q, c.Names[i])
		if err != nil {
			return err
		}
		c.Names[i].ID = id
		if c.Names[i].InternalReferenceID == "" {
			c.Names[i].InternalReferenceID = strconv.FormatInt(id, 10)
		}
		if err := q.AddConceptName(ctx, c.ID, id); err != nil {
			return fmt.Errorf("failed to bind concept name: %w", err)
		}
	}
	for i := range c.Descriptions {
		id, err := insertText(ctx, q, c.Descriptions[i])
		if err != nil {
			return err
		}
		c.Descriptions[i].ID = id
		if c.Descriptions[i].InternalReferenceID == "" {
			c.Descriptions[i].InternalReferenceID = strconv.FormatInt(id, 10)
		}
		if err := q.AddConceptDescription(ctx, c.ID, id); err != nil {
			return fmt.Errorf("failed to bind concept description: %w", err)
		}
	}
	return nil
}

func insertText(ctx context.Context, q *sqldb.Queries, t terminology.LocalizedText) (int64, error) {
	res, err := q.InsertLocalizedText(ctx, database.LocalizedTextInsertParams(t))
	if err != nil {
		return 0, fmt.Errorf("failed to insert localized text: %w", err)
	}
	id, err := lastInsertID(res)
	if err != nil {
		return 0, fmt.Errorf("failed to insert localized text: %w", err)
	}
	if t.InternalReferenceID == "" {
		if err := q.SetLocalizedTextReference(ctx, strconv.FormatInt(id, 10), id); err != nil {
			return 0, fmt.Errorf("failed to set localized text reference: %w", err)
		}
	}
	return id, nil
}

// replaceRootTexts gives the versioned object fresh copies of the texts of
// latest.
func replaceRootTexts(ctx context.Context, q *sqldb.Queries, root, latest *terminology.Concept) error {
	if _, err := q.DeleteConceptNames(ctx, root.ID); err != nil {
		return fmt.Errorf("failed to clear versioned object names: %w", err)
	}
	if _, err := q.DeleteConceptDescriptions(ctx, root.ID); err != nil {
		return fmt.Errorf("failed to clear versioned object descriptions: %w", err)
	}

	mirror := &terminology.Concept{ID: root.ID}
	for _, t := range latest.Names {
		mirror.Names = append(mirror.Names, t.Clone())
	}
	for _, t := range latest.Descriptions {
		mirror.Descriptions = append(mirror.Descriptions, t.Clone())
	}
	return insertTexts(ctx, q, mirror)
}

// resetConcept returns a draft whose transaction rolled back to its unsaved
// state. An explicit label the draft carried before the attempt is kept.
func resetConcept(c *terminology.Concept, label string) {
	c.ID = 0
	c.URI = ""
	c.Version = restoredVersion(label)
	for i := range c.Names {
		c.Names[i].ID = 0
		c.Names[i].InternalReferenceID = ""
	}
	for i := range c.Descriptions {
		c.Descriptions[i].ID = 0
		c.Descriptions[i].InternalReferenceID = ""
	}
}

// restoredVersion returns label when it is an explicit version label, else a
// fresh placeholder.
func restoredVersion(label string) string {
	if terminology.IsTempVersion(label) {
		return terminology.NewTempVersion()
	}
	return label
}

func flag(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
