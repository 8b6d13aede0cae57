package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/services"
	"github.com/termvault/termvault/internal/terminology"
	"github.com/termvault/termvault/internal/usecase"
)

// Server wraps the MCP server with termvault tools.
type Server struct {
	server        *mcp.Server
	catalog       *usecase.Catalog
	defaultLocale string
}

// Options configures a Server.
type Options struct {
	// Actor is recorded as the author of every write made through the tools.
	Actor         string
	DefaultLocale string
	Version       string
}

// NewServer creates a new MCP server instance over svc.
func NewServer(svc *services.Services, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = terminology.DefaultLocale
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "termvault",
		Version: opts.Version,
	}, nil)

	s := &Server{
		server:        mcpServer,
		catalog:       usecase.NewCatalog(svc, opts.Actor),
		defaultLocale: opts.DefaultLocale,
	}

	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves one session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "source_create",
		Description: "Create the HEAD version of a source",
	}, s.handleSourceCreate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "concept_create",
		Description: "Create a concept and its first version in a source",
	}, s.handleConceptCreate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "concept_update",
		Description: "Create a new version of a concept",
	}, s.handleConceptUpdate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "concept_get",
		Description: "Retrieve the latest or a specific version of a concept",
	}, s.handleConceptGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "concept_versions",
		Description: "List every version of a concept, newest first",
	}, s.handleConceptVersions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "mapping_create",
		Description: "Create a mapping between two concepts",
	}, s.handleMappingCreate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "mapping_get",
		Description: "Retrieve the latest version of a mapping",
	}, s.handleMappingGet)
}

// Input/Output types for each tool

type SourceCreateInput struct {
	OwnerType        string   `json:"ownerType,omitempty" jsonschema:"Owner type: orgs or users (default orgs)"`
	Owner            string   `json:"owner" jsonschema:"Owner mnemonic"`
	Mnemonic         string   `json:"mnemonic" jsonschema:"Source mnemonic"`
	CanonicalURL     string   `json:"canonicalUrl,omitempty" jsonschema:"Canonical URL identifying the source"`
	DefaultLocale    string   `json:"defaultLocale,omitempty" jsonschema:"Default locale of the source"`
	SupportedLocales []string `json:"supportedLocales,omitempty" jsonschema:"Additional supported locales"`
}

type SourceOutput struct {
	ID            int64  `json:"id"`
	URI           string `json:"uri"`
	Version       string `json:"version"`
	CanonicalURL  string `json:"canonicalUrl,omitempty"`
	DefaultLocale string `json:"defaultLocale"`
}

type NameInput struct {
	Name            string `json:"name" jsonschema:"The name text"`
	Locale          string `json:"locale" jsonschema:"Locale of the name"`
	LocalePreferred bool   `json:"localePreferred,omitempty" jsonschema:"Whether this is the preferred name for its locale"`
	Type            string `json:"type,omitempty" jsonschema:"Name type, e.g. FULLY_SPECIFIED"`
}

type DescriptionInput struct {
	Description     string `json:"description" jsonschema:"The description text"`
	Locale          string `json:"locale" jsonschema:"Locale of the description"`
	LocalePreferred bool   `json:"localePreferred,omitempty" jsonschema:"Whether this is the preferred description for its locale"`
	Type            string `json:"type,omitempty" jsonschema:"Description type"`
}

type ConceptCreateInput struct {
	Source       string             `json:"source" jsonschema:"URI of the HEAD source, e.g. /orgs/CIEL/sources/CIEL/"`
	ID           string             `json:"id" jsonschema:"Concept mnemonic, unique within the source"`
	ConceptClass string             `json:"conceptClass" jsonschema:"Concept class, e.g. Diagnosis"`
	Datatype     string             `json:"datatype,omitempty" jsonschema:"Datatype (default None)"`
	ExternalID   string             `json:"externalId,omitempty" jsonschema:"External identifier"`
	Comment      string             `json:"comment,omitempty" jsonschema:"Update comment of the first version"`
	Names        []NameInput        `json:"names" jsonschema:"At least one name"`
	Descriptions []DescriptionInput `json:"descriptions,omitempty" jsonschema:"Descriptions"`
}

type ConceptUpdateInput struct {
	Source       string             `json:"source" jsonschema:"URI of the HEAD source"`
	ID           string             `json:"id" jsonschema:"Concept mnemonic"`
	ConceptClass *string            `json:"conceptClass,omitempty" jsonschema:"New concept class"`
	Datatype     *string            `json:"datatype,omitempty" jsonschema:"New datatype"`
	ExternalID   *string            `json:"externalId,omitempty" jsonschema:"New external identifier"`
	Retired      *bool              `json:"retired,omitempty" jsonschema:"Retire or un-retire the concept"`
	Comment      string             `json:"comment,omitempty" jsonschema:"Update comment of the new version"`
	Names        []NameInput        `json:"names,omitempty" jsonschema:"Names replacing the current ones"`
	Descriptions []DescriptionInput `json:"descriptions,omitempty" jsonschema:"Descriptions replacing the current ones"`
}

type ConceptGetInput struct {
	Source  string `json:"source" jsonschema:"URI of the HEAD source"`
	ID      string `json:"id" jsonschema:"Concept mnemonic"`
	Version string `json:"version,omitempty" jsonschema:"Specific version to retrieve (latest if not specified)"`
}

type TextOutput struct {
	Name            string `json:"name"`
	Locale          string `json:"locale"`
	LocalePreferred bool   `json:"localePreferred,omitempty"`
	Type            string `json:"type,omitempty"`
}

type ConceptOutput struct {
	ID              string       `json:"id"`
	Version         string       `json:"version"`
	URI             string       `json:"uri"`
	ConceptClass    string       `json:"conceptClass"`
	Datatype        string       `json:"datatype"`
	DisplayName     string       `json:"displayName"`
	DisplayLocale   string       `json:"displayLocale"`
	ExternalID      string       `json:"externalId,omitempty"`
	Retired         bool         `json:"retired"`
	IsLatestVersion bool         `json:"isLatestVersion"`
	Comment         string       `json:"comment,omitempty"`
	Names           []TextOutput `json:"names"`
	Descriptions    []TextOutput `json:"descriptions,omitempty"`
	UpdatedBy       string       `json:"updatedBy"`
	UpdatedAt       string       `json:"updatedAt"`
}

type ConceptVersionsInput struct {
	Source string `json:"source" jsonschema:"URI of the HEAD source"`
	ID     string `json:"id" jsonschema:"Concept mnemonic"`
}

type VersionEntry struct {
	Version         string `json:"version"`
	URI             string `json:"uri"`
	IsLatestVersion bool   `json:"isLatestVersion"`
	Retired         bool   `json:"retired"`
	Comment         string `json:"comment,omitempty"`
	CreatedBy       string `json:"createdBy"`
	CreatedAt       string `json:"createdAt"`
}

type ConceptVersionsOutput struct {
	Versions []VersionEntry `json:"versions"`
}

type MappingCreateInput struct {
	Source         string `json:"source" jsonschema:"URI of the HEAD source owning the mapping"`
	ID             string `json:"id,omitempty" jsonschema:"Mapping mnemonic (assigned from the row id if not specified)"`
	MapType        string `json:"mapType" jsonschema:"Map type, e.g. SAME-AS"`
	FromConceptURL string `json:"fromConceptUrl" jsonschema:"URL of the from concept"`
	ToConceptURL   string `json:"toConceptUrl,omitempty" jsonschema:"URL of the to concept"`
	ToSourceURL    string `json:"toSourceUrl,omitempty" jsonschema:"URL of the to source, used with toConceptCode"`
	ToConceptCode  string `json:"toConceptCode,omitempty" jsonschema:"Code of the to concept in toSourceUrl"`
	ToConceptName  string `json:"toConceptName,omitempty" jsonschema:"Name of the to concept when it is not stored here"`
	ExternalID     string `json:"externalId,omitempty" jsonschema:"External identifier"`
	Comment        string `json:"comment,omitempty" jsonschema:"Update comment of the first version"`
}

type MappingGetInput struct {
	Source string `json:"source" jsonschema:"URI of the HEAD source owning the mapping"`
	ID     string `json:"id" jsonschema:"Mapping mnemonic"`
}

type EndpointOutput struct {
	State       string `json:"state"`
	ConceptURL  string `json:"conceptUrl,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	Code        string `json:"code,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type MappingOutput struct {
	ID              string         `json:"id"`
	Version         string         `json:"version"`
	URI             string         `json:"uri"`
	MapType         string         `json:"mapType"`
	From            EndpointOutput `json:"from"`
	To              EndpointOutput `json:"to"`
	Retired         bool           `json:"retired"`
	IsLatestVersion bool           `json:"isLatestVersion"`
	UpdatedBy       string         `json:"updatedBy"`
	UpdatedAt       string         `json:"updatedAt"`
}

// Tool handlers

func (s *Server) handleSourceCreate(ctx context.Context, req *mcp.CallToolRequest, input SourceCreateInput) (*mcp.CallToolResult, SourceOutput, error) {
	src, err := s.catalog.CreateSource(ctx, services.SourceInput{
		OwnerType:        input.OwnerType,
		Owner:            input.Owner,
		Mnemonic:         input.Mnemonic,
		CanonicalURL:     input.CanonicalURL,
		DefaultLocale:    input.DefaultLocale,
		SupportedLocales: input.SupportedLocales,
	})
	if err != nil {
		return nil, SourceOutput{}, fmt.Errorf("failed to create source: %w", err)
	}

	return nil, SourceOutput{
		ID:            src.ID,
		URI:           src.URI,
		Version:       src.Version,
		CanonicalURL:  src.CanonicalURL,
		DefaultLocale: src.DefaultLocale,
	}, nil
}

func (s *Server) handleConceptCreate(ctx context.Context, req *mcp.CallToolRequest, input ConceptCreateInput) (*mcp.CallToolResult, ConceptOutput, error) {
	c, err := s.catalog.CreateConcept(ctx, usecase.ConceptInput{
		Source:       input.Source,
		ID:           input.ID,
		ConceptClass: input.ConceptClass,
		Datatype:     input.Datatype,
		ExternalID:   input.ExternalID,
		Comment:      input.Comment,
		Names:        toNameInputs(input.Names),
		Descriptions: toDescriptionInputs(input.Descriptions),
	})
	if err != nil {
		return nil, ConceptOutput{}, fmt.Errorf("failed to create concept: %w", err)
	}

	return nil, s.conceptOutput(c), nil
}

func (s *Server) handleConceptUpdate(ctx context.Context, req *mcp.CallToolRequest, input ConceptUpdateInput) (*mcp.CallToolResult, ConceptOutput, error) {
	updated, err := s.catalog.UpdateConcept(ctx, input.Source, input.ID, terminology.ConceptUpdate{
		ConceptClass: input.ConceptClass,
		Datatype:     input.Datatype,
		ExternalID:   input.ExternalID,
		Retired:      input.Retired,
		Comment:      input.Comment,
		Names:        toNameInputs(input.Names),
		Descriptions: toDescriptionInputs(input.Descriptions),
	})
	if err != nil {
		return nil, ConceptOutput{}, fmt.Errorf("failed to update concept: %w", err)
	}

	return nil, s.conceptOutput(updated), nil
}

func (s *Server) handleConceptGet(ctx context.Context, req *mcp.CallToolRequest, input ConceptGetInput) (*mcp.CallToolResult, ConceptOutput, error) {
	c, err := s.catalog.GetConcept(ctx, input.Source, input.ID, input.Version)
	if err != nil {
		return nil, ConceptOutput{}, fmt.Errorf("failed to get concept: %w", err)
	}

	return nil, s.conceptOutput(c), nil
}

func (s *Server) handleConceptVersions(ctx context.Context, req *mcp.CallToolRequest, input ConceptVersionsInput) (*mcp.CallToolResult, ConceptVersionsOutput, error) {
	records, err := s.catalog.ConceptVersions(ctx, input.Source, input.ID)
	if err != nil {
		return nil, ConceptVersionsOutput{}, fmt.Errorf("failed to list versions: %w", err)
	}

	return nil, ConceptVersionsOutput{Versions: versionEntries(records)}, nil
}

func (s *Server) handleMappingCreate(ctx context.Context, req *mcp.CallToolRequest, input MappingCreateInput) (*mcp.CallToolResult, MappingOutput, error) {
	m, err := s.catalog.CreateMapping(ctx, usecase.MappingInput{
		Source:  input.Source,
		ID:      input.ID,
		MapType: input.MapType,
		From:    terminology.EndpointInput{ConceptURL: input.FromConceptURL},
		To: terminology.EndpointInput{
			ConceptURL: input.ToConceptURL,
			SourceURL:  input.ToSourceURL,
			Code:       input.ToConceptCode,
			Name:       input.ToConceptName,
		},
		ExternalID: input.ExternalID,
		Comment:    input.Comment,
	})
	if err != nil {
		return nil, MappingOutput{}, fmt.Errorf("failed to create mapping: %w", err)
	}

	return nil, mappingOutput(m), nil
}

func (s *Server) handleMappingGet(ctx context.Context, req *mcp.CallToolRequest, input MappingGetInput) (*mcp.CallToolResult, MappingOutput, error) {
	m, err := s.catalog.GetMapping(ctx, input.Source, input.ID)
	if err != nil {
		return nil, MappingOutput{}, fmt.Errorf("failed to get mapping: %w", err)
	}

	return nil, mappingOutput(m), nil
}

func (s *Server) conceptOutput(c *terminology.Concept) ConceptOutput {
	return ConceptOutput{
		ID:              c.Mnemonic,
		Version:         c.Version,
		URI:             c.URI,
		ConceptClass:    c.ConceptClass,
		Datatype:        c.Datatype,
		DisplayName:     c.DisplayName(s.defaultLocale),
		DisplayLocale:   c.DisplayLocale(s.defaultLocale),
		ExternalID:      c.ExternalID,
		Retired:         c.Retired,
		IsLatestVersion: c.IsLatestVersion,
		Comment:         c.Comment,
		Names:           textOutputs(c.Names),
		Descriptions:    textOutputs(c.Descriptions),
		UpdatedBy:       c.UpdatedBy,
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
}

func mappingOutput(m *terminology.Mapping) MappingOutput {
	return MappingOutput{
		ID:              m.Mnemonic,
		Version:         m.Version,
		URI:             m.URI,
		MapType:         m.MapType,
		From:            endpointOutput(m.From),
		To:              endpointOutput(m.To),
		Retired:         m.Retired,
		IsLatestVersion: m.IsLatestVersion,
		UpdatedBy:       m.UpdatedBy,
		UpdatedAt:       m.UpdatedAt.Format(time.RFC3339),
	}
}

func endpointOutput(e terminology.Endpoint) EndpointOutput {
	out := EndpointOutput{
		State:       e.State().String(),
		SourceURL:   e.EffectiveSourceURL(),
		Code:        e.EffectiveCode(),
		DisplayName: e.DisplayName(),
	}
	if e.Concept != nil {
		out.ConceptURL = e.Concept.URI
	}
	return out
}

func textOutputs(texts []terminology.LocalizedText) []TextOutput {
	out := make([]TextOutput, 0, len(texts))
	for _, t := range texts {
		out = append(out, TextOutput{
			Name:            t.Name,
			Locale:          t.Locale,
			LocalePreferred: t.LocalePreferred,
			Type:            t.Type,
		})
	}
	return out
}

func versionEntries(records []database.VersionRecord) []VersionEntry {
	entries := make([]VersionEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, VersionEntry{
			Version:         r.Version,
			URI:             r.URI,
			IsLatestVersion: r.IsLatestVersion,
			Retired:         r.Retired,
			Comment:         r.Comment,
			CreatedBy:       r.CreatedBy,
			CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		})
	}
	return entries
}

func toNameInputs(in []NameInput) []terminology.NameInput {
	out := make([]terminology.NameInput, 0, len(in))
	for _, n := range in {
		out = append(out, terminology.NameInput{
			Name:            n.Name,
			Locale:          n.Locale,
			LocalePreferred: n.LocalePreferred,
			Type:            n.Type,
		})
	}
	return out
}

func toDescriptionInputs(in []DescriptionInput) []terminology.DescriptionInput {
	out := make([]terminology.DescriptionInput, 0, len(in))
	for _, d := range in {
		out = append(out, terminology.DescriptionInput{
			Description:     d.Description,
			Locale:          d.Locale,
			LocalePreferred: d.LocalePreferred,
			Type:            d.Type,
		})
	}
	return out
}
