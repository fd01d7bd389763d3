// Package sitemap builds the crawler-facing list of indexable site routes:
// every configured locale crossed with every static page, plus the bare
// base URL that redirects to a locale.
package sitemap

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ChangeFrequency is the crawler hint for how often a page changes.
type ChangeFrequency string

const (
	ChangeAlways  ChangeFrequency = "always"
	ChangeHourly  ChangeFrequency = "hourly"
	ChangeDaily   ChangeFrequency = "daily"
	ChangeWeekly  ChangeFrequency = "weekly"
	ChangeMonthly ChangeFrequency = "monthly"
	ChangeYearly  ChangeFrequency = "yearly"
	ChangeNever   ChangeFrequency = "never"
)

const (
	DefaultBaseURL = "https://opensourceavatars.com"

	// GalleryPath is refreshed daily and ranks just below the locale roots.
	GalleryPath = "/gallery"
)

var (
	DefaultLocales = []string{"en", "ja"}
	DefaultPages   = []string{"", "/gallery", "/about", "/resources", "/vrminspector", "/test"}
)

var ErrInvalidConfig = errors.New("invalid sitemap configuration")

// Entry is one record of the sitemap.
type Entry struct {
	URL             string          `json:"url"`
	LastModified    time.Time       `json:"lastModified"`
	ChangeFrequency ChangeFrequency `json:"changeFrequency"`
	Priority        float64         `json:"priority"`
	Alternates      *Alternates     `json:"alternates,omitempty"`
}

// Alternates maps each locale to the URL of the same page in that locale.
type Alternates struct {
	Languages map[string]string `json:"languages"`
}

type Options struct {
	BaseURL string
	Locales []string
	Pages   []string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Generator produces sitemap entries. It is immutable after New and safe
// for concurrent use.
type Generator struct {
	baseURL string
	locales []string
	pages   []string
	clock   func() time.Time
}

// Default returns a generator over the site's built-in base URL, locales
// and pages.
func Default() *Generator {
	g, err := New(Options{
		BaseURL: DefaultBaseURL,
		Locales: DefaultLocales,
		Pages:   DefaultPages,
	})
	if err != nil {
		panic(err)
	}
	return g
}

// New validates opts and returns a generator. Any empty or malformed base
// URL, locale or page path is rejected with ErrInvalidConfig.
func New(opts Options) (*Generator, error) {
	base, err := validateBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(opts.Locales) == 0 {
		return nil, fmt.Errorf("%w: no locales", ErrInvalidConfig)
	}
	for i, l := range opts.Locales {
		if err := validateLocale(l); err != nil {
			return nil, err
		}
		if slices.Contains(opts.Locales[:i], l) {
			return nil, fmt.Errorf("%w: duplicate locale %q", ErrInvalidConfig, l)
		}
	}
	if len(opts.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidConfig)
	}
	for i, p := range opts.Pages {
		if err := validatePage(p); err != nil {
			return nil, err
		}
		if slices.Contains(opts.Pages[:i], p) {
			return nil, fmt.Errorf("%w: duplicate page %q", ErrInvalidConfig, p)
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Generator{
		baseURL: base,
		locales: slices.Clone(opts.Locales),
		pages:   slices.Clone(opts.Pages),
		clock:   clock,
	}, nil
}

func (g *Generator) BaseURL() string {
	return g.baseURL
}

func (g *Generator) Locales() []string {
	return slices.Clone(g.locales)
}

func (g *Generator) Pages() []string {
	return slices.Clone(g.pages)
}

// Entries reads the clock once and generates the full sitemap.
func (g *Generator) Entries() []Entry {
	return g.Generate(g.clock())
}

// Generate returns locales x pages entries, locale-outer and page-inner in
// configured order, followed by the bare base URL entry. Every entry carries
// the same lastModified.
func (g *Generator) Generate(now time.Time) []Entry {
	entries := make([]Entry, 0, len(g.locales)*len(g.pages)+1)

	for _, locale := range g.locales {
		for _, page := range g.pages {
			entries = append(entries, Entry{
				URL:             g.PageURL(locale, page),
				LastModified:    now,
				ChangeFrequency: changeFrequency(page),
				Priority:        priority(page),
				Alternates:      &Alternates{Languages: g.Alternates(page)},
			})
		}
	}

	entries = append(entries, Entry{
		URL:             g.baseURL,
		LastModified:    now,
		ChangeFrequency: ChangeDaily,
		Priority:        1.0,
	})

	return entries
}

// PageURL is the absolute URL of page in locale.
func (g *Generator) PageURL(locale, page string) string {
	return g.baseURL + "/" + locale + page
}

// Alternates maps every locale to the absolute URL of page in that locale.
func (g *Generator) Alternates(page string) map[string]string {
	langs := make(map[string]string, len(g.locales))
	for _, l := range g.locales {
		langs[l] = g.PageURL(l, page)
	}
	return langs
}

func changeFrequency(page string) ChangeFrequency {
	if page == GalleryPath {
		return ChangeDaily
	}
	return ChangeWeekly
}

func priority(page string) float64 {
	switch page {
	case "":
		return 1.0
	case GalleryPath:
		return 0.9
	default:
		return 0.7
	}
}

func validateBaseURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty base URL", ErrInvalidConfig)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: base URL %q: %v", ErrInvalidConfig, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: base URL %q must be http or https", ErrInvalidConfig, raw)
	}
	if u.Host == "" || u.ForceQuery || strings.ContainsAny(raw, "?#") {
		return "", fmt.Errorf("%w: base URL %q must be scheme://host[/path]", ErrInvalidConfig, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func validateLocale(l string) error {
	if l == "" || strings.ContainsAny(l, "/ ?#") {
		return fmt.Errorf("%w: malformed locale %q", ErrInvalidConfig, l)
	}
	if _, err := language.Parse(l); err != nil {
		return fmt.Errorf("%w: malformed locale %q: %v", ErrInvalidConfig, l, err)
	}
	return nil
}

// validatePage accepts "" (the locale root) or a "/"-prefixed path without
// a trailing slash, whitespace, query or fragment.
func validatePage(p string) error {
	if p == "" {
		return nil
	}
	if !strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") || strings.ContainsAny(p, " \t\n?#") {
		return fmt.Errorf("%w: malformed page path %q", ErrInvalidConfig, p)
	}
	return nil
}
