package docs

import (
	"testing"
	"testing/fstest"

	"github.com/opensourceavatars/avatar-site/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	set, err := i18n.NewSet([]string{"en", "ja"}, "en")
	require.NoError(t, err)
	return NewLibrary(Content(), set)
}

func TestGetTranslatedDocument(t *testing.T) {
	lib := newTestLibrary(t)

	doc, err := lib.Get("ja", "getting-started")
	require.NoError(t, err)

	assert.Equal(t, i18n.Locale("ja"), doc.Locale)
	assert.Equal(t, i18n.Locale("ja"), doc.ResolvedLocale)
	assert.False(t, doc.Fallback)
	assert.Equal(t, "はじめに", doc.Title)
	assert.Contains(t, doc.HTML, `id="アバターのダウンロード"`)

	require.NotEmpty(t, doc.TOC)
	assert.Equal(t, TOCEntry{Level: 2, ID: "アバターのダウンロード", Text: "アバターのダウンロード"}, doc.TOC[0])
}

func TestGetFallsBackToDefaultLocale(t *testing.T) {
	lib := newTestLibrary(t)

	doc, err := lib.Get("ja", "vrm-format")
	require.NoError(t, err)

	assert.Equal(t, i18n.Locale("ja"), doc.Locale)
	assert.Equal(t, i18n.Locale("en"), doc.ResolvedLocale)
	assert.True(t, doc.Fallback)
	assert.Equal(t, "The VRM Format", doc.Title)
}

func TestGetRendersAnchorsAndStripsRawHTML(t *testing.T) {
	lib := newTestLibrary(t)

	doc, err := lib.Get("en", "vrm-format")
	require.NoError(t, err)

	assert.NotContains(t, doc.HTML, "<script")
	assert.NotContains(t, doc.HTML, "raw HTML omitted")
	assert.Contains(t, doc.HTML, `<h2 id="humanoid-bones">Humanoid bones</h2>`)
	assert.Contains(t, doc.HTML, `<code>happy</code>`)

	ids := make([]string, 0, len(doc.TOC))
	for _, e := range doc.TOC {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"humanoid-bones", "expressions", "expressions-1", "first-person"}, ids)
}

func TestGetUnknownDocument(t *testing.T) {
	lib := newTestLibrary(t)

	_, err := lib.Get("en", "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lib.Get("en", "../en/vrm-format")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	lib := newTestLibrary(t)

	list, err := lib.List("ja")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, Summary{Slug: "getting-started", Title: "はじめに", Fallback: false}, list[0])
	assert.Equal(t, Summary{Slug: "vrm-format", Title: "The VRM Format", Fallback: true}, list[1])
}

func TestListSkipsMissingLocaleDirectory(t *testing.T) {
	set, err := i18n.NewSet([]string{"en", "ja"}, "en")
	require.NoError(t, err)
	lib := NewLibrary(fstest.MapFS{
		"en/faq.md":    {Data: []byte("# FAQ\n\n## Why?\n")},
		"en/notes.txt": {Data: []byte("ignored")},
	}, set)

	list, err := lib.List("ja")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "FAQ", list[0].Title)
	assert.True(t, list[0].Fallback)
}
