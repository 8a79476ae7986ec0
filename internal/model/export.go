package model

import "time"

// Export is the denormalized key→value mapping for one locale, optionally
// restricted to translations carrying at least one of a set of tags. It is
// materialized from the database and lives only in the cache, never in a
// table of its own.
type Export struct {
	Locale      string            `json:"locale"`
	Messages    map[string]string `json:"messages"`
	Count       int               `json:"count"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
