package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet([]string{"en", "ja"}, "en")
	require.NoError(t, err)
	return s
}

func TestNewSetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		locales []string
		def     string
	}{
		{"empty", nil, "en"},
		{"blank locale", []string{"en", ""}, "en"},
		{"malformed locale", []string{"en", "x!y"}, "en"},
		{"duplicate", []string{"en", "en"}, "en"},
		{"default missing", []string{"en", "ja"}, "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(tt.locales, tt.def)
			assert.Error(t, err)
		})
	}
}

func TestNegotiate(t *testing.T) {
	s := newTestSet(t)

	tests := []struct {
		header string
		want   Locale
	}{
		{"", "en"},
		{"ja", "ja"},
		{"ja-JP,ja;q=0.9,en;q=0.8", "ja"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR,ja;q=0.5", "ja"},
		{"fr-FR", "en"},
		{";;;garbage", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Negotiate(tt.header))
		})
	}
}

func TestNegotiateNonEnglishDefault(t *testing.T) {
	s, err := NewSet([]string{"en", "ja"}, "ja")
	require.NoError(t, err)
	assert.Equal(t, Locale("ja"), s.Negotiate("de"))
	assert.Equal(t, Locale("en"), s.Negotiate("en-GB"))
}

func TestSplitLocalePath(t *testing.T) {
	s := newTestSet(t)

	tests := []struct {
		path     string
		locale   Locale
		page     string
		hasLocal bool
	}{
		{"/ja/gallery", "ja", "/gallery", true},
		{"/en", "en", "", true},
		{"/en/", "en", "", true},
		{"/", "", "", false},
		{"/gallery", "", "/gallery", false},
		{"/fr/gallery", "", "/fr/gallery", false},
		{"/ja/resources/", "ja", "/resources", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, page, ok := s.SplitLocalePath(tt.path)
			assert.Equal(t, tt.locale, l)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.hasLocal, ok)
		})
	}
}

func TestSwitchLocalePath(t *testing.T) {
	s := newTestSet(t)

	assert.Equal(t, "/ja/gallery", s.SwitchLocalePath("/en/gallery", "ja"))
	assert.Equal(t, "/en", s.SwitchLocalePath("/ja", "en"))
	assert.Equal(t, "/ja/about", s.SwitchLocalePath("/about", "ja"))
	assert.Equal(t, "/ja", s.SwitchLocalePath("/", "ja"))
}

func TestResolve(t *testing.T) {
	s := newTestSet(t)

	l, fallback := s.Resolve("ja", []Locale{"en", "ja"})
	assert.Equal(t, Locale("ja"), l)
	assert.False(t, fallback)

	l, fallback = s.Resolve("ja", []Locale{"en"})
	assert.Equal(t, Locale("en"), l)
	assert.True(t, fallback)

	l, fallback = s.Resolve("en", []Locale{"ja"})
	assert.Equal(t, Locale("ja"), l)
	assert.True(t, fallback)
}

func TestParse(t *testing.T) {
	s := newTestSet(t)

	l, err := s.Parse("ja")
	require.NoError(t, err)
	assert.Equal(t, Locale("ja"), l)

	_, err = s.Parse("de")
	assert.ErrorIs(t, err, ErrUnsupportedLocale)
}

func TestPageTitle(t *testing.T) {
	s := newTestSet(t)

	title, fallback := s.PageTitle("ja", "/gallery")
	assert.Equal(t, "ギャラリー", title)
	assert.False(t, fallback)

	title, fallback = s.PageTitle("ja", "/vrminspector")
	assert.Equal(t, "VRM Inspector", title)
	assert.True(t, fallback)

	title, fallback = s.PageTitle("en", "")
	assert.Equal(t, "Open Source Avatars", title)
	assert.False(t, fallback)
}
