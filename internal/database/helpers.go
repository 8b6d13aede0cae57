package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sqldb "github.com/termvault/termvault/internal/database/sqlc"
)

// Now returns the timestamp stored on writes.
var Now = func() time.Time {
	return time.Now().UTC()
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value int64) sql.NullInt64 {
	if value == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value, Valid: true}
}

func optionalString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func optionalInt64(ni sql.NullInt64) int64 {
	if !ni.Valid {
		return 0
	}
	return ni.Int64
}

func boolToInt64(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return Now()
	}
	return t
}

func encodeExtras(extras map[string]any) (string, error) {
	if len(extras) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return "", fmt.Errorf("failed to encode extras: %w", err)
	}
	return string(data), nil
}

func decodeExtras(raw string) map[string]any {
	extras := map[string]any{}
	if raw == "" {
		return extras
	}
	if err := json.Unmarshal([]byte(raw), &extras); err != nil {
		return map[string]any{}
	}
	return extras
}

func encodeLocales(locales []string) string {
	return strings.Join(locales, ",")
}

func decodeLocales(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queriesFromContext(ctx *Context) *sqldb.Queries {
	if ctx == nil {
		return nil
	}
	if ctx.Queries != nil {
		return ctx.Queries
	}
	if ctx.DB == nil {
		return nil
	}
	return sqldb.New(ctx.DB)
}

// found turns a single-row lookup result into a record count.
func found(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
