package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/terminology"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatText  = "text"
)

func checkFormat(format string, valid ...string) error {
	for _, v := range valid {
		if format == v {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s (valid values: %s)", format, strings.Join(valid, ", "))
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// commentWidth leaves the comment column whatever the fixed columns of a
// version table do not use.
func commentWidth(termWidth int) int {
	// Version, Latest, Retired, Created By, Created plus borders
	width := termWidth - (12 + 6 + 7 + 12 + 19) - 6*3
	if width < 15 {
		width = 15
	}
	return width
}

type versionOutputEntry struct {
	Version   string `json:"version"`
	URI       string `json:"uri"`
	Latest    bool   `json:"latest"`
	Retired   bool   `json:"retired"`
	Released  bool   `json:"released"`
	Comment   string `json:"comment,omitempty"`
	CreatedBy string `json:"created_by"`
	Created   string `json:"created"`
}

func outputVersions(cmd *cobra.Command, records []database.VersionRecord, format string) error {
	if format == formatJSON {
		output := make([]versionOutputEntry, 0, len(records))
		for _, r := range records {
			output = append(output, versionOutputEntry{
				Version:   r.Version,
				URI:       r.URI,
				Latest:    r.IsLatestVersion,
				Retired:   r.Retired,
				Released:  r.Released,
				Comment:   r.Comment,
				CreatedBy: r.CreatedBy,
				Created:   r.CreatedAt.Format(time.RFC3339),
			})
		}
		return outputJSON(cmd, output)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Latest", "Retired", "Created By", "Created", "Comment"})

	width := commentWidth(getTerminalWidth())
	for _, r := range records {
		latest := ""
		if r.IsLatestVersion {
			latest = "*"
		}
		t.AppendRow(table.Row{
			r.Version,
			latest,
			r.Retired,
			r.CreatedBy,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			runewidth.Truncate(r.Comment, width, "..."),
		})
	}
	t.Render()
	return nil
}

func outputTexts(cmd *cobra.Command, title string, texts []terminology.LocalizedText) {
	if len(texts) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Locale", "Preferred", "Type", "Text"})
	for _, text := range texts {
		preferred := ""
		if text.LocalePreferred {
			preferred = "*"
		}
		t.AppendRow(table.Row{text.Locale, preferred, text.Type, text.Name})
	}
	t.Render()
}

// parseNames reads LOCALE:TEXT values. The first name of each locale is
// marked locale preferred.
func parseNames(values []string, nameType string) ([]terminology.NameInput, error) {
	seen := make(map[string]bool)
	names := make([]terminology.NameInput, 0, len(values))
	for _, v := range values {
		locale, text, err := splitLocalized(v)
		if err != nil {
			return nil, err
		}
		names = append(names, terminology.NameInput{
			Name:            text,
			Locale:          locale,
			LocalePreferred: !seen[locale],
			Type:            nameType,
		})
		seen[locale] = true
	}
	return names, nil
}

func parseDescriptions(values []string) ([]terminology.DescriptionInput, error) {
	descriptions := make([]terminology.DescriptionInput, 0, len(values))
	for _, v := range values {
		locale, text, err := splitLocalized(v)
		if err != nil {
			return nil, err
		}
		descriptions = append(descriptions, terminology.DescriptionInput{
			Description: text,
			Locale:      locale,
		})
	}
	return descriptions, nil
}

func splitLocalized(value string) (string, string, error) {
	locale, text, ok := strings.Cut(value, ":")
	if !ok || locale == "" || text == "" {
		return "", "", fmt.Errorf("invalid localized text %q (expected LOCALE:TEXT)", value)
	}
	return locale, text, nil
}
