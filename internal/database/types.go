package database

import "time"

// VersionRecord summarises one version of a concept or mapping for history
// listings.
type VersionRecord struct {
	ID              int64
	Version         string
	URI             string
	IsLatestVersion bool
	Retired         bool
	Released        bool
	Comment         string
	CreatedBy       string
	CreatedAt       time.Time
}
