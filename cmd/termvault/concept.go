package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/termvault/termvault/internal/terminology"
	"github.com/termvault/termvault/internal/usecase"
)

func newConceptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concept",
		Short: "Manage concepts",
	}

	cmd.AddCommand(newConceptCreateCmd())
	cmd.AddCommand(newConceptUpdateCmd())
	cmd.AddCommand(newConceptRetireCmd())
	cmd.AddCommand(newConceptShowCmd())
	cmd.AddCommand(newConceptVersionsCmd())
	cmd.AddCommand(newConceptSourcesCmd())

	return cmd
}

func newConceptCreateCmd() *cobra.Command {
	var (
		conceptClass string
		datatype     string
		externalID   string
		comment      string
		nameType     string
		names        []string
		descriptions []string
	)

	cmd := &cobra.Command{
		Use:   "create <source-uri> <id>",
		Short: "Create a concept and its first version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameInputs, err := parseNames(names, nameType)
			if err != nil {
				return err
			}
			descriptionInputs, err := parseDescriptions(descriptions)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.catalog.CreateConcept(context.Background(), usecase.ConceptInput{
				Source:       args[0],
				ID:           args[1],
				ConceptClass: conceptClass,
				Datatype:     datatype,
				ExternalID:   externalID,
				Comment:      comment,
				Names:        nameInputs,
				Descriptions: descriptionInputs,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), c.URI)
			return nil
		},
	}

	cmd.Flags().StringVar(&conceptClass, "class", "", "Concept class")
	cmd.Flags().StringVar(&datatype, "datatype", "", "Datatype (default None)")
	cmd.Flags().StringVar(&externalID, "external-id", "", "External identifier")
	cmd.Flags().StringVar(&comment, "comment", "", "Update comment of the first version")
	cmd.Flags().StringVar(&nameType, "name-type", "", "Type of the given names")
	cmd.Flags().StringArrayVar(&names, "name", nil, "Name as LOCALE:TEXT (repeatable)")
	cmd.Flags().StringArrayVar(&descriptions, "description", nil, "Description as LOCALE:TEXT (repeatable)")

	return cmd
}

func newConceptUpdateCmd() *cobra.Command {
	var (
		conceptClass string
		datatype     string
		externalID   string
		comment      string
		nameType     string
		names        []string
		descriptions []string
	)

	cmd := &cobra.Command{
		Use:   "update <source-uri> <id>",
		Short: "Create a new version of a concept",
		Long:  "Create a new version of a concept. Given names or descriptions replace the current ones.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u terminology.ConceptUpdate
			if cmd.Flags().Changed("class") {
				u.ConceptClass = &conceptClass
			}
			if cmd.Flags().Changed("datatype") {
				u.Datatype = &datatype
			}
			if cmd.Flags().Changed("external-id") {
				u.ExternalID = &externalID
			}
			u.Comment = comment

			var err error
			if u.Names, err = parseNames(names, nameType); err != nil {
				return err
			}
			if u.Descriptions, err = parseDescriptions(descriptions); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			updated, err := a.catalog.UpdateConcept(context.Background(), args[0], args[1], u)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), updated.URI)
			return nil
		},
	}

	cmd.Flags().StringVar(&conceptClass, "class", "", "New concept class")
	cmd.Flags().StringVar(&datatype, "datatype", "", "New datatype")
	cmd.Flags().StringVar(&externalID, "external-id", "", "New external identifier")
	cmd.Flags().StringVar(&comment, "comment", "", "Update comment of the new version")
	cmd.Flags().StringVar(&nameType, "name-type", "", "Type of the given names")
	cmd.Flags().StringArrayVar(&names, "name", nil, "Name as LOCALE:TEXT (repeatable)")
	cmd.Flags().StringArrayVar(&descriptions, "description", nil, "Description as LOCALE:TEXT (repeatable)")

	return cmd
}

func newConceptRetireCmd() *cobra.Command {
	var (
		comment string
		undo    bool
	)

	cmd := &cobra.Command{
		Use:   "retire <source-uri> <id>",
		Short: "Retire a concept, or un-retire it with --undo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.catalog.RetireConcept(context.Background(), args[0], args[1], !undo, comment)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.URI)
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Update comment of the new version")
	cmd.Flags().BoolVar(&undo, "undo", false, "Un-retire instead")

	return cmd
}

type conceptOutput struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	URI          string `json:"uri"`
	Source       string `json:"source"`
	ConceptClass string `json:"concept_class"`
	Datatype     string `json:"datatype"`
	DisplayName  string `json:"display_name"`
	Locale       string `json:"display_locale"`
	ExternalID   string `json:"external_id,omitempty"`
	Retired      bool   `json:"retired"`
	Latest       bool   `json:"latest"`
	Comment      string `json:"comment,omitempty"`
	UpdatedBy    string `json:"updated_by"`
	Updated      string `json:"updated"`
}

func newConceptShowCmd() *cobra.Command {
	var (
		versionFlag string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "show <source-uri> <id>",
		Short: "Show the latest or a specific version of a concept",
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

			c, err := a.catalog.GetConcept(context.Background(), args[0], args[1], versionFlag)
			if err != nil {
				return err
			}

			locale := a.settings.DefaultLocale
			out := conceptOutput{
				ID:           c.Mnemonic,
				Version:      c.Version,
				URI:          c.URI,
				Source:       args[0],
				ConceptClass: c.ConceptClass,
				Datatype:     c.Datatype,
				DisplayName:  c.DisplayName(locale),
				Locale:       c.DisplayLocale(locale),
				ExternalID:   c.ExternalID,
				Retired:      c.Retired,
				Latest:       c.IsLatestVersion,
				Comment:      c.Comment,
				UpdatedBy:    c.UpdatedBy,
				Updated:      c.UpdatedAt.Format(time.RFC3339),
			}
			if format == formatJSON {
				return outputJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:           %s\n", out.ID)
			fmt.Fprintf(w, "Version:      %s\n", out.Version)
			fmt.Fprintf(w, "URI:          %s\n", out.URI)
			fmt.Fprintf(w, "Class:        %s\n", out.ConceptClass)
			fmt.Fprintf(w, "Datatype:     %s\n", out.Datatype)
			fmt.Fprintf(w, "Display Name: %s (%s)\n", out.DisplayName, out.Locale)
			if out.ExternalID != "" {
				fmt.Fprintf(w, "External ID:  %s\n", out.ExternalID)
			}
			fmt.Fprintf(w, "Retired:      %t\n", out.Retired)
			fmt.Fprintf(w, "Latest:       %t\n", out.Latest)
			fmt.Fprintf(w, "Updated By:   %s\n", out.UpdatedBy)
			fmt.Fprintf(w, "Updated At:   %s\n", c.UpdatedAt.Format("2006-01-02 15:04:05"))
			outputTexts(cmd, "Names", c.Names)
			outputTexts(cmd, "Descriptions", c.Descriptions)
			return nil
		},
	}

	cmd.Flags().StringVar(&versionFlag, "ver", "", "Specific version (latest if not specified)")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text or json")

	return cmd
}

func newConceptVersionsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "versions <source-uri> <id>",
		Short: "List every version of a concept, newest first",
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

			records, err := a.catalog.ConceptVersions(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			return outputVersions(cmd, records, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
