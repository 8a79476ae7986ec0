package cache

import (
	"sort"
	"strings"
)

const (
	exportKeyPrefix = "lexicon:export:"
	tagSegment      = ":tags:"

	// LocalesKey caches the sorted list of distinct locales.
	LocalesKey = "lexicon:locales"
	// TagsKey caches the sorted list of distinct tag names.
	TagsKey = "lexicon:tags"
)

// ExportKey derives the canonical cache key for a per-locale export. It is a
// pure function of its inputs: the tag list is deduplicated (case-sensitive)
// and sorted, so every ordering of the same set yields the same key. No tags
// yields the base per-locale key with no tag suffix.
func ExportKey(locale string, tagNames []string) string {
	base := exportKeyPrefix + locale
	normalized := NormalizeTags(tagNames)
	if len(normalized) == 0 {
		return base
	}
	return base + tagSegment + strings.Join(normalized, ",")
}

// ExportTagPrefix returns the prefix shared by every tag-suffixed export key
// of a locale. It keeps the tag segment separator, so enumerating keys for
// "en" cannot sweep up entries belonging to "en-US".
func ExportTagPrefix(locale string) string {
	return exportKeyPrefix + locale + tagSegment
}

// NormalizeTags deduplicates and sorts tag names. Comparison is exact:
// "Web" and "web" are distinct tags.
func NormalizeTags(tagNames []string) []string {
	if len(tagNames) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tagNames))
	normalized := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}
	sort.Strings(normalized)
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
