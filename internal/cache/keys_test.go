package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportKey_Deterministic(t *testing.T) {
	orderings := [][]string{
		{"web", "mobile", "email"},
		{"email", "web", "mobile"},
		{"mobile", "email", "web"},
		{"web", "web", "email", "mobile", "email"},
	}

	first := ExportKey("en", orderings[0])
	for _, tags := range orderings[1:] {
		require.Equal(t, first, ExportKey("en", tags))
	}
	require.Equal(t, "lexicon:export:en:tags:email,mobile,web", first)
}

func TestExportKey_NoTags(t *testing.T) {
	require.Equal(t, "lexicon:export:en", ExportKey("en", nil))
	require.Equal(t, "lexicon:export:en", ExportKey("en", []string{}))
	require.Equal(t, "lexicon:export:en", ExportKey("en", []string{"", ""}))
}

func TestExportKey_CaseSensitiveTags(t *testing.T) {
	require.NotEqual(t, ExportKey("en", []string{"Web"}), ExportKey("en", []string{"web"}))
}

func TestExportTagPrefix_DoesNotMatchSiblingLocale(t *testing.T) {
	prefix := ExportTagPrefix("en")

	enKey := ExportKey("en", []string{"web"})
	enUSKey := ExportKey("en-US", []string{"web"})

	require.True(t, len(enKey) > len(prefix) && enKey[:len(prefix)] == prefix)
	require.False(t, len(enUSKey) >= len(prefix) && enUSKey[:len(prefix)] == prefix,
		"enumerating en must not sweep up en-US entries")
}

func TestNormalizeTags(t *testing.T) {
	require.Nil(t, NormalizeTags(nil))
	require.Nil(t, NormalizeTags([]string{""}))
	require.Equal(t, []string{"a", "b", "c"}, NormalizeTags([]string{"c", "a", "b", "a", ""}))
}
