package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/termvault/termvault/internal/terminology"
	"github.com/termvault/termvault/internal/usecase"
)

func newMappingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage mappings",
	}

	cmd.AddCommand(newMappingCreateCmd())
	cmd.AddCommand(newMappingShowCmd())
	cmd.AddCommand(newMappingVersionsCmd())
	cmd.AddCommand(newMappingSourcesCmd())

	return cmd
}

func newMappingCreateCmd() *cobra.Command {
	var (
		mnemonic   string
		mapType    string
		from       string
		to         string
		toSource   string
		toCode     string
		toName     string
		externalID string
		comment    string
	)

	cmd := &cobra.Command{
		Use:   "create <source-uri>",
		Short: "Create a mapping and its first version",
		Long: "Create a mapping and its first version. The to side is either a concept URL (--to) " +
			"or a source URL and code (--to-source, --to-code) that may not be stored yet.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.catalog.CreateMapping(context.Background(), usecase.MappingInput{
				Source:  args[0],
				ID:      mnemonic,
				MapType: mapType,
				From:    terminology.EndpointInput{ConceptURL: from},
				To: terminology.EndpointInput{
					ConceptURL: to,
					SourceURL:  toSource,
					Code:       toCode,
					Name:       toName,
				},
				ExternalID: externalID,
				Comment:    comment,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (to: %s)\n", m.URI, m.To.State())
			return nil
		},
	}

	cmd.Flags().StringVar(&mnemonic, "id", "", "Mapping mnemonic (default: assigned from the row id)")
	cmd.Flags().StringVar(&mapType, "map-type", "", "Map type, e.g. SAME-AS")
	cmd.Flags().StringVar(&from, "from", "", "URL of the from concept")
	cmd.Flags().StringVar(&to, "to", "", "URL of the to concept")
	cmd.Flags().StringVar(&toSource, "to-source", "", "URL of the to source")
	cmd.Flags().StringVar(&toCode, "to-code", "", "Code of the to concept")
	cmd.Flags().StringVar(&toName, "to-name", "", "Name of the to concept")
	cmd.Flags().StringVar(&externalID, "external-id", "", "External identifier")
	cmd.Flags().StringVar(&comment, "comment", "", "Update comment of the first version")

	return cmd
}

type endpointOutput struct {
	State     string `json:"state"`
	Concept   string `json:"concept,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Code      string `json:"code,omitempty"`
	Name      string `json:"name,omitempty"`
}

type mappingOutput struct {
	ID        string         `json:"id"`
	Version   string         `json:"version"`
	URI       string         `json:"uri"`
	MapType   string         `json:"map_type"`
	From      endpointOutput `json:"from"`
	To        endpointOutput `json:"to"`
	Retired   bool           `json:"retired"`
	Latest    bool           `json:"latest"`
	UpdatedBy string         `json:"updated_by"`
	Updated   string         `json:"updated"`
}

func newEndpointOutput(e terminology.Endpoint) endpointOutput {
	out := endpointOutput{
		State:     e.State().String(),
		SourceURL: e.EffectiveSourceURL(),
		Code:      e.EffectiveCode(),
		Name:      e.DisplayName(),
	}
	if e.Concept != nil {
		out.Concept = e.Concept.URI
	}
	return out
}

func newMappingShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <source-uri> <id>",
		Short: "Show the latest version of a mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.catalog.GetMapping(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}

			out := mappingOutput{
				ID:        m.Mnemonic,
				Version:   m.Version,
				URI:       m.URI,
				MapType:   m.MapType,
				From:      newEndpointOutput(m.From),
				To:        newEndpointOutput(m.To),
				Retired:   m.Retired,
				Latest:    m.IsLatestVersion,
				UpdatedBy: m.UpdatedBy,
				Updated:   m.UpdatedAt.Format(time.RFC3339),
			}
			if format == formatJSON {
				return outputJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:         %s\n", out.ID)
			fmt.Fprintf(w, "Version:    %s\n", out.Version)
			fmt.Fprintf(w, "URI:        %s\n", out.URI)
			fmt.Fprintf(w, "Map Type:   %s\n", out.MapType)
			fmt.Fprintf(w, "From:       %s %s [%s]\n", out.From.SourceURL, out.From.Code, out.From.State)
			fmt.Fprintf(w, "To:         %s %s [%s]\n", out.To.SourceURL, out.To.Code, out.To.State)
			fmt.Fprintf(w, "Retired:    %t\n", out.Retired)
			fmt.Fprintf(w, "Updated By: %s\n", out.UpdatedBy)
			fmt.Fprintf(w, "Updated At: %s\n", m.UpdatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text or json")

	return cmd
}

func newMappingVersionsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "versions <source-uri> <id>",
		Short: "List every version of a mapping, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.catalog.MappingVersions(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			return outputVersions(cmd, records, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
