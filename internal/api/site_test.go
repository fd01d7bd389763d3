package api

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"testing"

	"github.com/opensourceavatars/avatar-site/internal/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapXML(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))

	var set struct {
		URLs []struct {
			Loc      string `xml:"loc"`
			LastMod  string `xml:"lastmod"`
			Priority string `xml:"priority"`
			Links    []struct {
				Hreflang string `xml:"hreflang,attr"`
				Href     string `xml:"href,attr"`
			} `xml:"http://www.w3.org/1999/xhtml link"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &set))
	require.Len(t, set.URLs, 13)

	assert.Equal(t, "https://opensourceavatars.com/en", set.URLs[0].Loc)
	assert.Equal(t, "2024-05-01T12:00:00Z", set.URLs[0].LastMod)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
	require.Len(t, set.URLs[0].Links, 2)
	assert.Equal(t, "ja", set.URLs[0].Links[1].Hreflang)
	assert.Equal(t, "https://opensourceavatars.com/ja", set.URLs[0].Links[1].Href)

	last := set.URLs[12]
	assert.Equal(t, "https://opensourceavatars.com", last.Loc)
	assert.Empty(t, last.Links)
}

func TestSitemapJSON(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sitemap.json")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 13)
	assert.Equal(t, "https://opensourceavatars.com/en/gallery", entries[1]["url"])
	assert.Equal(t, "daily", entries[1]["changeFrequency"])
	assert.Equal(t, 0.9, entries[1]["priority"])
	assert.NotContains(t, entries[12], "alternates")
}

func TestRobots(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/robots.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sitemap: https://opensourceavatars.com/sitemap.xml")
}

func TestRootRedirectNegotiatesLocale(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/", "Accept-Language", "ja-JP,ja;q=0.9")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/ja", w.Header().Get("Location"))

	w = env.do(t, http.MethodGet, "/?ref=x")
	assert.Equal(t, "/en?ref=x", w.Header().Get("Location"))
}

func TestUnprefixedPageRedirects(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/gallery", "Accept-Language", "ja")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/ja/gallery", w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/nowhere").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/fr/gallery").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/en/nowhere").Code)
}

func TestTrailingSlashRedirectsToCanonical(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/ja/about/")
	assert.Equal(t, http.StatusPermanentRedirect, w.Code)
	assert.Equal(t, "/ja/about", w.Header().Get("Location"))
}

func TestServePage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/ja/gallery")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ja", w.Header().Get("Content-Language"))

	var meta PageMeta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "ja", string(meta.Locale))
	assert.Equal(t, "/gallery", meta.Path)
	assert.Equal(t, "ギャラリー", meta.Title)
	assert.False(t, meta.Fallback)
	assert.Equal(t, "https://opensourceavatars.com/ja/gallery", meta.Canonical)
	assert.Equal(t, map[string]string{
		"en": "https://opensourceavatars.com/en/gallery",
		"ja": "https://opensourceavatars.com/ja/gallery",
	}, meta.Alternates)
	assert.Equal(t, map[string]string{"en": "/en/gallery", "ja": "/ja/gallery"}, meta.Switcher)
}

func TestServePageTranslationFallback(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/ja/vrminspector")
	require.Equal(t, http.StatusOK, w.Code)

	var meta PageMeta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.True(t, meta.Fallback)
	assert.Equal(t, "VRM Inspector", meta.Title)
}

func TestDocs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/docs/ja")
	require.Equal(t, http.StatusOK, w.Code)
	var list []docs.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = env.do(t, http.MethodGet, "/api/docs/ja/vrm-format")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en", w.Header().Get("Content-Language"))

	var doc docs.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.True(t, doc.Fallback)
	assert.Equal(t, "en", string(doc.ResolvedLocale))
	assert.NotEmpty(t, doc.TOC)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/docs/de").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/docs/en/missing").Code)
}

func TestCrawlerRoutesAnswerHead(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/sitemap.xml", "application/xml; charset=utf-8"},
		{"/sitemap.json", "application/json; charset=utf-8"},
		{"/robots.txt", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(t, http.MethodHead, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
		})
	}

	w := env.do(t, http.MethodHead, "/", "Accept-Language", "ja")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/ja", w.Header().Get("Location"))
}
