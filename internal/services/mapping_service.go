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

// MappingInput describes a new mapping.
type MappingInput struct {
	ParentID   int64
	Mnemonic   string
	MapType    string
	From       terminology.EndpointInput
	To         terminology.EndpointInput
	ExternalID string
	Extras     map[string]any
	Comment    string
}

// MappingService creates mappings and new versions of them.
type MappingService struct {
	runner
	validator     Validator
	resolver      *Resolver
	defaultLocale string
}

func NewMappingService(dbCtx *database.Context, opts Options) *MappingService {
	opts = opts.withDefaults()
	return &MappingService{
		runner: runner{
			ctx:     dbCtx,
			indexer: opts.Indexer,
			log:     opts.Logger.ServiceLogger(terminology.KindMapping),
			metrics: opts.Metrics,
		},
		validator:     opts.Validator,
		resolver:      NewResolver(dbCtx, opts),
		defaultLocale: opts.DefaultLocale,
	}
}

func (s *MappingService) repository() *database.MappingRepository {
	return database.NewMappingRepository(s.ctx, s.defaultLocale)
}

// PersistNew resolves the endpoints of in and stores the mapping with its
// first version. An endpoint whose concept does not exist yet is stored
// unresolved. Without a mnemonic the mapping is named after its identifier.
func (s *MappingService) PersistNew(ctx context.Context, in MappingInput, actor string) (*terminology.Mapping, error) {
	m := &terminology.Mapping{
		ParentID:   in.ParentID,
		Mnemonic:   in.Mnemonic,
		MapType:    in.MapType,
		ExternalID: in.ExternalID,
		Extras:     in.Extras,
		Comment:    in.Comment,
		IsActive:   true,
	}
	if actor == "" {
		return m, missingActor(terminology.MsgMappingSpecifyUser)
	}
	m.CreatedBy = actor
	m.UpdatedBy = actor

	if m.Mnemonic != "" {
		exists, err := s.repository().ExistsActive(ctx, m.ParentID, m.Mnemonic)
		if err != nil {
			return m, asErrorSet(fmt.Errorf("failed to check mapping uniqueness: %w", err))
		}
		if exists {
			return m, terminology.FieldError(terminology.ErrAlreadyExists, terminology.AllFields, terminology.MsgMappingAlreadyExists)
		}
	}

	start := time.Now()
	var initial *terminology.Mapping
	err := s.persist(ctx, terminology.KindMapping, "create", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		sources := database.NewSourceRepository(s.ctx).WithQueries(q)
		lookup := s.repository().WithQueries(q)

		parent, err := sources.FindByID(ctx, m.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent source: %w", err)
		}
		if parent == nil {
			return nil, notFound("source %d", m.ParentID)
		}
		m.Parent = parent

		if m.From, err = s.resolver.ResolveEndpoint(ctx, q, in.From); err != nil {
			return nil, err
		}
		if m.To, err = s.resolver.ResolveEndpoint(ctx, q, in.To); err != nil {
			return nil, err
		}

		if errs := s.validator.ValidateMapping(ctx, m, lookup); !errs.Empty() {
			return nil, errs
		}

		named := m.Mnemonic != ""
		if !named {
			m.Mnemonic = terminology.NewTempVersion()
		}
		m.Version = terminology.NewTempVersion()

		id, err := insertMappingRow(ctx, q, m)
		if err != nil {
			return nil, err
		}
		m.ID = id
		m.VersionedObjectID = id
		m.Version = strconv.FormatInt(id, 10)
		if !named {
			m.Mnemonic = m.Version
			if err := q.SetMappingMnemonic(ctx, m.Mnemonic, id); err != nil {
				return nil, fmt.Errorf("failed to name mapping: %w", err)
			}
		}
		m.URI = terminology.ChildURI(parent.URI, "mappings", m.Mnemonic, "", true)
		if err := q.FinalizeMapping(ctx, sqldb.FinalizeParams{
			VersionedObjectID: id,
			Version:           m.Version,
			Uri:               m.URI,
			IsLatestVersion:   0,
			ID:                id,
		}); err != nil {
			return nil, fmt.Errorf("failed to finalize mapping: %w", err)
		}

		if errs := s.validator.ValidateMapping(ctx, m, lookup); !errs.Empty() {
			return nil, errs
		}

		initial = terminology.InitialMappingVersionOf(m)
		if err := insertMappingVersion(ctx, q, initial, parent); err != nil {
			return nil, err
		}

		sourceIDs, err := sourcesFor(ctx, sources, parent)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent head: %w", err)
		}
		for _, sourceID := range sourceIDs {
			if err := q.AddMappingSource(ctx, m.ID, sourceID); err != nil {
				return nil, fmt.Errorf("failed to attach mapping to source: %w", err)
			}
			if err := q.AddMappingSource(ctx, initial.ID, sourceID); err != nil {
				return nil, fmt.Errorf("failed to attach mapping version to source: %w", err)
			}
		}

		return ref(terminology.KindMapping, m.ID, initial.ID), nil
	})
	if err != nil {
		resetMapping(m, "")
		m.VersionedObjectID = 0
		m.Mnemonic = in.Mnemonic
		s.log.LogPersist("create", 0, "", time.Since(start), err)
		return m, asErrorSet(err)
	}

	s.log.LogPersist("create", m.ID, initial.Version, time.Since(start), nil)
	return initial, nil
}

// PersistClone stores draft as the new latest version of its versioned
// object, mirroring its fields onto the versioned object.
func (s *MappingService) PersistClone(ctx context.Context, draft *terminology.Mapping, actor string) error {
	if actor == "" {
		return missingActor(terminology.MsgMappingSpecifyUser)
	}
	draft.CreatedBy = actor
	draft.UpdatedBy = actor
	draft.IsActive = true
	if draft.Version == "" {
		draft.Version = terminology.NewTempVersion()
	}
	label := draft.Version
	if draft.VersionedObjectID == 0 {
		return cloneFailure(notFound("mapping draft has no versioned object"))
	}

	if errs := s.validator.ValidateMapping(ctx, draft, nil); !errs.Empty() {
		resetMapping(draft, label)
		return cloneFailure(errs)
	}

	start := time.Now()
	err := s.persist(ctx, terminology.KindMapping, "clone", func(ctx context.Context, q *sqldb.Queries) ([]indexing.Ref, error) {
		mappings := s.repository().WithQueries(q)
		sources := database.NewSourceRepository(s.ctx).WithQueries(q)

		root, err := mappings.FindByID(ctx, draft.VersionedObjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load versioned object: %w", err)
		}
		if root == nil || !root.IsVersionedObject() {
			return nil, notFound("mapping %d", draft.VersionedObjectID)
		}
		if _, err := q.TouchMapping(ctx, database.Now(), root.ID); err != nil {
			return nil, fmt.Errorf("failed to lock versioned object: %w", err)
		}

		previous, err := mappings.FindLatest(ctx, root.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest version: %w", err)
		}
		if _, err := q.ClearLatestMappingVersion(ctx, root.ID); err != nil {
			return nil, fmt.Errorf("failed to clear latest version: %w", err)
		}

		draft.Mnemonic = root.Mnemonic
		draft.ParentID = root.ParentID
		draft.Parent = root.Parent
		draft.IsLatestVersion = true
		if err := insertMappingVersion(ctx, q, draft, root.Parent); err != nil {
			return nil, err
		}

		if errs := s.validator.ValidateMapping(ctx, draft, mappings); !errs.Empty() {
			return nil, errs
		}

		params, err := database.MappingRootParams(root.ID, draft)
		if err != nil {
			return nil, fmt.Errorf("failed to encode versioned object: %w", err)
		}
		if _, err := q.UpdateMappingRoot(ctx, params); err != nil {
			return nil, fmt.Errorf("failed to update versioned object: %w", err)
		}

		sourceIDs, err := sourcesFor(ctx, sources, root.Parent)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent head: %w", err)
		}
		for _, sourceID := range sourceIDs {
			if err := q.AddMappingSource(ctx, draft.ID, sourceID); err != nil {
				return nil, fmt.Errorf("failed to attach version to source: %w", err)
			}
		}

		refs := ref(terminology.KindMapping, draft.ID, root.ID)
		if previous != nil {
			refs = append(refs, ref(terminology.KindMapping, previous.ID)...)
		}
		return refs, nil
	})
	if err != nil {
		resetMapping(draft, label)
		s.log.LogPersist("clone", draft.VersionedObjectID, "", time.Since(start), err)
		return cloneFailure(err)
	}

	s.log.LogPersist("clone", draft.VersionedObjectID, draft.Version, time.Since(start), nil)
	return nil
}

// CreateNewVersion clones latest, applies u and persists the result.
// Endpoints named in u are resolved against the current state of the store.
func (s *MappingService) CreateNewVersion(ctx context.Context, latest *terminology.Mapping, u terminology.MappingUpdate, actor string) (*terminology.Mapping, error) {
	draft := latest.Clone()
	draft.Apply(u)

	if !u.From.IsZero() || !u.To.IsZero() {
		q, err := s.queries()
		if err != nil {
			return draft, asErrorSet(err)
		}
		if !u.From.IsZero() {
			if draft.From, err = s.resolver.ResolveEndpoint(ctx, q, u.From); err != nil {
				return draft, cloneFailure(err)
			}
		}
		if !u.To.IsZero() {
			if draft.To, err = s.resolver.ResolveEndpoint(ctx, q, u.To); err != nil {
				return draft, cloneFailure(err)
			}
		}
	}

	if err := s.PersistClone(ctx, draft, actor); err != nil {
		return draft, err
	}
	return draft, nil
}

// Update creates a new version of the mapping mnemonic in parentID.
func (s *MappingService) Update(ctx context.Context, parentID int64, mnemonic string, u terminology.MappingUpdate, actor string) (*terminology.Mapping, error) {
	latest, err := s.Get(ctx, parentID, mnemonic)
	if err != nil {
		return nil, err
	}
	return s.CreateNewVersion(ctx, latest, u, actor)
}

// Retire creates a new version marked retired.
func (s *MappingService) Retire(ctx context.Context, parentID int64, mnemonic, comment, actor string) (*terminology.Mapping, error) {
	return s.setRetired(ctx, parentID, mnemonic, true, comment, actor)
}

// Unretire creates a new version with the retired flag cleared.
func (s *MappingService) Unretire(ctx context.Context, parentID int64, mnemonic, comment, actor string) (*terminology.Mapping, error) {
	return s.setRetired(ctx, parentID, mnemonic, false, comment, actor)
}

func (s *MappingService) setRetired(ctx context.Context, parentID int64, mnemonic string, retired bool, comment, actor string) (*terminology.Mapping, error) {
	latest, err := s.Get(ctx, parentID, mnemonic)
	if err != nil {
		return nil, err
	}

	if latest.Retired == retired {
		msg := terminology.MsgMappingAlreadyNotRetired
		if retired {
			msg = terminology.MsgMappingAlreadyRetired
		}
		return nil, terminology.FieldError(terminology.ErrValidation, terminology.AllFields, msg)
	}

	if comment == "" {
		comment = terminology.MsgMappingWasUnretired
		if retired {
			comment = terminology.MsgMappingWasRetired
		}
	}

	return s.CreateNewVersion(ctx, latest, terminology.MappingUpdate{Retired: &retired, Comment: comment}, actor)
}

// Get returns the latest version of a mapping, or the versioned object when
// no version exists yet.
func (s *MappingService) Get(ctx context.Context, parentID int64, mnemonic string) (*terminology.Mapping, error) {
	repo := s.repository()
	root, err := repo.FindRoot(ctx, parentID, mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping %s: %w", mnemonic, err)
	}
	if root == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Mapping %s not found.", mnemonic))
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

// Sources lists the source versions the mapping row mappingID belongs to.
func (s *MappingService) Sources(ctx context.Context, mappingID int64) ([]*terminology.Source, error) {
	sources, err := database.NewSourceRepository(s.ctx).ListForMapping(ctx, mappingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources of mapping %d: %w", mappingID, err)
	}
	return sources, nil
}

// Versions lists every version of a mapping, newest first.
func (s *MappingService) Versions(ctx context.Context, parentID int64, mnemonic string) ([]database.VersionRecord, error) {
	repo := s.repository()
	root, err := repo.FindRoot(ctx, parentID, mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping %s: %w", mnemonic, err)
	}
	if root == nil {
		return nil, terminology.FieldError(terminology.ErrNotFound, terminology.AllFields, fmt.Sprintf("Mapping %s not found.", mnemonic))
	}
	versions, err := repo.ListVersions(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", mnemonic, err)
	}
	records := make([]database.VersionRecord, 0, len(versions))
	for _, v := range versions {
		records = append(records, database.VersionRecordFromMapping(v))
	}
	return records, nil
}

func insertMappingRow(ctx context.Context, q *sqldb.Queries, m *terminology.Mapping) (int64, error) {
	params, err := database.MappingInsertParams(m)
	if err != nil {
		return 0, fmt.Errorf("failed to encode mapping: %w", err)
	}
	res, err := q.InsertMapping(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mapping: %w", err)
	}
	id, err := lastInsertID(res)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mapping: %w", err)
	}
	return id, nil
}

func insertMappingVersion(ctx context.Context, q *sqldb.Queries, v *terminology.Mapping, parent *terminology.Source) error {
	if v.Version == "" {
		v.Version = terminology.NewTempVersion()
	}
	explicit := !terminology.IsTempVersion(v.Version)
	v.ParentID = parent.ID
	v.Parent = parent
	v.URI = terminology.ChildURI(parent.URI, "mappings", v.Mnemonic, v.Version, false)

	id, err := insertMappingRow(ctx, q, v)
	if err != nil {
		return err
	}
	v.ID = id
	if !explicit {
		v.Version = strconv.FormatInt(id, 10)
	}
	v.URI = terminology.ChildURI(parent.URI, "mappings", v.Mnemonic, v.Version, false)

	if err := q.FinalizeMapping(ctx, sqldb.FinalizeParams{
		VersionedObjectID: v.VersionedObjectID,
		Version:           v.Version,
		Uri:               v.URI,
		IsLatestVersion:   flag(v.IsLatestVersion),
		ID:                id,
	}); err != nil {
		return fmt.Errorf("failed to finalize mapping version: %w", err)
	}
	return nil
}

func resetMapping(m *terminology.Mapping, label string) {
	m.ID = 0
	m.URI = ""
	m.Version = restoredVersion(label)
}
