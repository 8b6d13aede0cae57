package main

import (
	"context"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/termvault/termvault/internal/terminology"
)

func newConceptSourcesCmd() *cobra.Command {
	var (
		versionFlag string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "sources <source-uri> <id>",
		Short: "List the source versions containing a concept version",
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

			sources, err := a.catalog.ConceptSources(context.Background(), args[0], args[1], versionFlag)
			if err != nil {
				return err
			}
			return outputSources(cmd, sources, format)
		},
	}

	cmd.Flags().StringVar(&versionFlag, "ver", "", "Specific version (latest if not specified)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}

func newMappingSourcesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sources <source-uri> <id>",
		Short: "List the source versions containing the latest mapping version",
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

			sources, err := a.catalog.MappingSources(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			return outputSources(cmd, sources, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}

func outputSources(cmd *cobra.Command, sources []*terminology.Source, format string) error {
	if format == formatJSON {
		output := make([]sourceOutputEntry, 0, len(sources))
		for _, s := range sources {
			output = append(output, sourceOutputEntry{
				URI:           s.URI,
				Version:       s.Version,
				Latest:        s.IsLatestVersion,
				Released:      s.Released,
				CanonicalURL:  s.CanonicalURL,
				DefaultLocale: s.DefaultLocale,
				Created:       s.CreatedAt.Format(time.RFC3339),
			})
		}
		return outputJSON(cmd, output)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"URI", "Version", "Released"})
	for _, s := range sources {
		t.AppendRow(table.Row{s.URI, s.Version, s.Released})
	}
	t.Render()
	return nil
}
