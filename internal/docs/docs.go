// Package docs renders the localized documentation pages (resources, VRM
// guides) from embedded Markdown, with heading anchors and a table of
// contents. A page missing in the requested locale falls back to the
// default locale and is flagged so the page can show a translation banner.
package docs

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/opensourceavatars/avatar-site/internal/i18n"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content
var content embed.FS

// Content is the embedded documentation tree: <locale>/<slug>.md.
func Content() fs.FS {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

var ErrNotFound = errors.New("document not found")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type Document struct {
	Slug           string      `json:"slug"`
	Locale         i18n.Locale `json:"locale"`
	ResolvedLocale i18n.Locale `json:"resolvedLocale"`
	Fallback       bool        `json:"fallback"`
	Title          string      `json:"title"`
	HTML           string      `json:"html"`
	TOC            []TOCEntry  `json:"toc"`
}

type Summary struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Fallback bool   `json:"fallback"`
}

type Library struct {
	fsys    fs.FS
	locales *i18n.Set
	md      goldmark.Markdown
}

func NewLibrary(fsys fs.FS, locales *i18n.Set) *Library {
	return &Library{
		fsys:    fsys,
		locales: locales,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Get renders slug in locale l, falling back to another locale when the
// translation is missing.
func (lib *Library) Get(l i18n.Locale, slug string) (*Document, error) {
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%q: %w", slug, ErrNotFound)
	}

	available := lib.availableLocales(slug)
	if len(available) == 0 {
		return nil, fmt.Errorf("%q: %w", slug, ErrNotFound)
	}
	resolved, fallback := lib.locales.Resolve(l, available)

	src, err := fs.ReadFile(lib.fsys, docPath(resolved, slug))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", resolved, slug, err)
	}

	rendered, toc, title, err := lib.Render(src)
	if err != nil {
		return nil, fmt.Errorf("render %s/%s: %w", resolved, slug, err)
	}
	if title == "" {
		title = slug
	}

	return &Document{
		Slug:           slug,
		Locale:         l,
		ResolvedLocale: resolved,
		Fallback:       fallback,
		Title:          title,
		HTML:           rendered,
		TOC:            toc,
	}, nil
}

// List returns every document readable in locale l, sorted by slug.
func (lib *Library) List(l i18n.Locale) ([]Summary, error) {
	slugs := make(map[string]struct{})
	for _, loc := range lib.locales.Locales() {
		entries, err := fs.ReadDir(lib.fsys, string(loc))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || path.Ext(e.Name()) != ".md" {
				continue
			}
			slugs[strings.TrimSuffix(e.Name(), ".md")] = struct{}{}
		}
	}

	summaries := make([]Summary, 0, len(slugs))
	for slug := range slugs {
		if !slugPattern.MatchString(slug) {
			continue
		}
		resolved, fallback := lib.locales.Resolve(l, lib.availableLocales(slug))
		src, err := fs.ReadFile(lib.fsys, docPath(resolved, slug))
		if err != nil {
			return nil, err
		}
		title := markdownTitle(src)
		if title == "" {
			title = slug
		}
		summaries = append(summaries, Summary{Slug: slug, Title: title, Fallback: fallback})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Slug < summaries[j].Slug })
	return summaries, nil
}

// Render converts Markdown to sanitized HTML with heading anchors.
func (lib *Library) Render(src []byte) (string, []TOCEntry, string, error) {
	var buf bytes.Buffer
	if err := lib.md.Convert(src, &buf); err != nil {
		return "", nil, "", err
	}

	cleaned := cleanHTML(buf.String())
	anchored, toc, err := AnchorHeadings(cleaned)
	if err != nil {
		return "", nil, "", err
	}

	return anchored, toc, FirstHeading(anchored), nil
}

func (lib *Library) availableLocales(slug string) []i18n.Locale {
	var available []i18n.Locale
	for _, l := range lib.locales.Locales() {
		if _, err := fs.Stat(lib.fsys, docPath(l, slug)); err == nil {
			available = append(available, l)
		}
	}
	return available
}

func docPath(l i18n.Locale, slug string) string {
	return path.Join(string(l), slug+".md")
}

// markdownTitle reads the first ATX level-1 heading without rendering.
func markdownTitle(src []byte) string {
	for _, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
