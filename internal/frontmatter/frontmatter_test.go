package frontmatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	fm := map[string]interface{}{
		"title":     "Заголовок поста",
		"published": true,
		"tags":      []string{"go", "backend"},
		"category":  "tech",
	}
	body := "# Привет\n\nТело поста.\n"

	raw, err := Serialize(fm, body)
	require.NoError(t, err)

	gotFM, gotBody, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, body, gotBody)
	assert.Equal(t, "Заголовок поста", Str(gotFM, "title"))
	assert.True(t, Bool(gotFM, "published"))
	assert.Equal(t, []string{"go", "backend"}, Strings(gotFM, "tags"))
	assert.Equal(t, "tech", Str(gotFM, "category"))
}

func TestSerializeDropsNilKeys(t *testing.T) {
	fm := map[string]interface{}{
		"title":    "x",
		"excerpt":  nil,
		"category": nil,
	}

	raw, err := Serialize(fm, "body")
	require.NoError(t, err)
	assert.NotContains(t, raw, "excerpt")
	assert.NotContains(t, raw, "category")

	gotFM, _, err := Parse(raw)
	require.NoError(t, err)
	_, hasExcerpt := gotFM["excerpt"]
	assert.False(t, hasExcerpt)
	_, hasCategory := gotFM["category"]
	assert.False(t, hasCategory)
}

func TestParseWithoutFrontMatter(t *testing.T) {
	raw := "просто текст без метаданных\n"
	fm, body, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, fm)
	assert.Equal(t, raw, body)
}

func TestParsePassesUnknownKeysThrough(t *testing.T) {
	raw := "---\ntitle: x\ncustomKey: значение\n---\n\nтело"
	fm, _, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "значение", Str(fm, "customKey"))
}

func TestStringsCoercion(t *testing.T) {
	fm := map[string]interface{}{
		"list":   []interface{}{"a", "b"},
		"single": "one",
		"empty":  "",
	}
	assert.Equal(t, []string{"a", "b"}, Strings(fm, "list"))
	assert.Equal(t, []string{"one"}, Strings(fm, "single"))
	assert.Nil(t, Strings(fm, "empty"))
	assert.Nil(t, Strings(fm, "missing"))
}

func TestTimeParsing(t *testing.T) {
	fm := map[string]interface{}{
		"iso":  "2025-03-01T10:00:00Z",
		"date": "2025-03-01",
		"junk": "не дата",
	}

	got := Time(fm, "iso")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), got.UTC())

	require.NotNil(t, Time(fm, "date"))
	assert.Nil(t, Time(fm, "junk"))
	assert.Nil(t, Time(fm, "missing"))
}

func TestSerializeEmptyFrontMatter(t *testing.T) {
	raw, err := Serialize(map[string]interface{}{}, "body")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "---\n"))
	assert.True(t, strings.HasSuffix(raw, "body"))
}
