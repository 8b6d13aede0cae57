package terminology

import "time"

// Source is one version of a container of concepts and mappings. The row
// with Version == HEAD is the mutable working copy.
type Source struct {
	ID               int64
	OwnerType        string
	Owner            string
	Mnemonic         string
	Version          string
	URI              string
	CanonicalURL     string
	DefaultLocale    string
	SupportedLocales []string
	Released         bool
	IsLatestVersion  bool
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsHead reports whether s is the HEAD version.
func (s *Source) IsHead() bool {
	return s != nil && s.Version == HEAD
}

// IdentifyingURLs returns the URLs a mapping may use to refer to s: its
// versionless URI and, when known, its canonical URL.
func (s *Source) IdentifyingURLs() []string {
	if s == nil {
		return nil
	}
	urls := []string{DropVersion(s.URI)}
	if s.CanonicalURL != "" {
		urls = append(urls, s.CanonicalURL)
	}
	return urls
}
