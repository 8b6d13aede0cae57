package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/termvault/termvault/internal/services"
	"github.com/termvault/termvault/internal/terminology"
)

func newSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage sources",
	}

	cmd.AddCommand(newSourceCreateCmd())
	cmd.AddCommand(newSourceVersionCmd())
	cmd.AddCommand(newSourceCanonicalCmd())
	cmd.AddCommand(newSourceShowCmd())

	return cmd
}

func newSourceCreateCmd() *cobra.Command {
	var (
		ownerType        string
		canonicalURL     string
		defaultLocale    string
		supportedLocales []string
	)

	cmd := &cobra.Command{
		Use:   "create <owner> <mnemonic>",
		Short: "Create the HEAD version of a source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			src, err := a.catalog.CreateSource(context.Background(), services.SourceInput{
				OwnerType:        ownerType,
				Owner:            args[0],
				Mnemonic:         args[1],
				CanonicalURL:     canonicalURL,
				DefaultLocale:    defaultLocale,
				SupportedLocales: supportedLocales,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), src.URI)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerType, "owner-type", terminology.OwnerOrganization, "Owner type: orgs or users")
	cmd.Flags().StringVar(&canonicalURL, "canonical-url", "", "Canonical URL identifying the source")
	cmd.Flags().StringVar(&defaultLocale, "default-locale", "", "Default locale (default: configured system locale)")
	cmd.Flags().StringSliceVar(&supportedLocales, "supported-locales", nil, "Additional supported locales")

	return cmd
}

func newSourceVersionCmd() *cobra.Command {
	var released bool

	cmd := &cobra.Command{
		Use:   "version <source-uri> <version>",
		Short: "Snapshot HEAD as a labelled source version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.catalog.SnapshotSource(context.Background(), args[0], args[1], released)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.URI)
			return nil
		},
	}

	cmd.Flags().BoolVar(&released, "released", false, "Mark the version released")

	return cmd
}

func newSourceCanonicalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canonical <source-uri> <url>",
		Short: "Set the canonical URL of a source",
		Long:  "Set the canonical URL of a source. Mappings that refer to the URL are bound to the source.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			updated, err := a.catalog.SetCanonicalURL(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", updated.URI, updated.CanonicalURL)
			return nil
		},
	}

	return cmd
}

type sourceOutputEntry struct {
	URI           string `json:"uri"`
	Version       string `json:"version"`
	Latest        bool   `json:"latest"`
	Released      bool   `json:"released"`
	CanonicalURL  string `json:"canonical_url,omitempty"`
	DefaultLocale string `json:"default_locale"`
	Created       string `json:"created"`
}

func newSourceShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <source-uri>",
		Short: "List the versions of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			versions, err := a.catalog.SourceVersions(context.Background(), args[0])
			if err != nil {
				return err
			}

			if format == formatJSON {
				output := make([]sourceOutputEntry, 0, len(versions))
				for _, v := range versions {
					output = append(output, sourceOutputEntry{
						URI:           v.URI,
						Version:       v.Version,
						Latest:        v.IsLatestVersion,
						Released:      v.Released,
						CanonicalURL:  v.CanonicalURL,
						DefaultLocale: v.DefaultLocale,
						Created:       v.CreatedAt.Format(time.RFC3339),
					})
				}
				return outputJSON(cmd, output)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Version", "Latest", "Released", "Canonical URL", "Created"})
			for _, v := range versions {
				latest := ""
				if v.IsLatestVersion {
					latest = "*"
				}
				t.AppendRow(table.Row{v.Version, latest, v.Released, v.CanonicalURL, v.CreatedAt.Format("2006-01-02 15:04:05")})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
