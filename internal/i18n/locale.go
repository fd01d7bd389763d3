// Package i18n holds the site's locale set, Accept-Language negotiation and
// the locale-prefixed path helpers used by routing and the language switcher.
package i18n

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported site language such as "en" or "ja".
type Locale string

var ErrUnsupportedLocale = errors.New("unsupported locale")

// Set is the closed list of locales the site is published in.
type Set struct {
	locales  []Locale
	def      Locale
	matcher  language.Matcher
	matchIdx []Locale // matcher index -> locale, default first
}

// NewSet validates the locale tags and builds a matcher with the default
// locale as the no-match fallback.
func NewSet(locales []string, defaultLocale string) (*Set, error) {
	if len(locales) == 0 {
		return nil, errors.New("no locales configured")
	}

	s := &Set{}
	for _, raw := range locales {
		if _, err := language.Parse(raw); err != nil || strings.TrimSpace(raw) != raw || raw == "" {
			return nil, fmt.Errorf("invalid locale %q", raw)
		}
		l := Locale(raw)
		if slices.Contains(s.locales, l) {
			return nil, fmt.Errorf("duplicate locale %q", raw)
		}
		s.locales = append(s.locales, l)
	}

	s.def = Locale(defaultLocale)
	if !slices.Contains(s.locales, s.def) {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, ErrUnsupportedLocale)
	}

	s.matchIdx = append(s.matchIdx, s.def)
	for _, l := range s.locales {
		if l != s.def {
			s.matchIdx = append(s.matchIdx, l)
		}
	}
	tags := make([]language.Tag, len(s.matchIdx))
	for i, l := range s.matchIdx {
		tags[i] = language.MustParse(string(l))
	}
	s.matcher = language.NewMatcher(tags)

	return s, nil
}

// Locales returns the locales in their configured order.
func (s *Set) Locales() []Locale {
	return slices.Clone(s.locales)
}

func (s *Set) Default() Locale {
	return s.def
}

func (s *Set) Contains(l Locale) bool {
	return slices.Contains(s.locales, l)
}

// Parse returns the locale if it belongs to the set.
func (s *Set) Parse(raw string) (Locale, error) {
	l := Locale(raw)
	if !s.Contains(l) {
		return "", fmt.Errorf("%q: %w", raw, ErrUnsupportedLocale)
	}
	return l, nil
}

// Negotiate picks the best locale for an Accept-Language header value.
func (s *Set) Negotiate(acceptLanguage string) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return s.def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return s.def
	}
	_, idx, conf := s.matcher.Match(tags...)
	if conf == language.No {
		return s.def
	}
	return s.matchIdx[idx]
}

// SplitLocalePath separates a leading locale segment from a request path.
// "/ja/gallery" yields ("ja", "/gallery", true); "/ja" yields ("ja", "", true).
func (s *Set) SplitLocalePath(path string) (Locale, string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	l := Locale(first)
	if !s.Contains(l) {
		return "", normalizePage(path), false
	}
	return l, normalizePage("/" + rest), true
}

// SwitchLocalePath rewrites path to the same page in locale l.
func (s *Set) SwitchLocalePath(path string, l Locale) string {
	_, page, _ := s.SplitLocalePath(path)
	return LocalizedPath(l, page)
}

// Resolve returns requested when it is available, otherwise the default
// locale (or the first available one). The bool reports a fallback.
func (s *Set) Resolve(requested Locale, available []Locale) (Locale, bool) {
	if slices.Contains(available, requested) {
		return requested, false
	}
	if slices.Contains(available, s.def) || len(available) == 0 {
		return s.def, true
	}
	return available[0], true
}

// LocalizedPath joins a locale and a page path: ("ja", "/gallery") -> "/ja/gallery".
func LocalizedPath(l Locale, page string) string {
	return "/" + string(l) + page
}

// normalizePage maps "/" and "" to the locale root and drops a trailing slash.
func normalizePage(p string) string {
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
