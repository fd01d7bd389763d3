package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opensourceavatars/avatar-site/internal/docs"
	"github.com/opensourceavatars/avatar-site/internal/i18n"
	"github.com/opensourceavatars/avatar-site/internal/metrics"
	"github.com/opensourceavatars/avatar-site/internal/sitemap"
	"github.com/rs/zerolog"
)

// SiteHandler serves the crawler-facing and localized page routes.
type SiteHandler struct {
	sitemap *sitemap.Generator
	locales *i18n.Set
	docs    *docs.Library
	logger  zerolog.Logger
}

// PageMeta is the SEO block of a localized page.
type PageMeta struct {
	Locale     i18n.Locale       `json:"locale"`
	Path       string            `json:"path"`
	Title      string            `json:"title"`
	Fallback   bool              `json:"fallback"`
	Canonical  string            `json:"canonical"`
	Alternates map[string]string `json:"alternates"`
	// Switcher maps each locale to this page's path in that locale.
	Switcher map[string]string `json:"switcher"`
}

func NewSiteHandler(gen *sitemap.Generator, locales *i18n.Set, library *docs.Library, logger zerolog.Logger) *SiteHandler {
	return &SiteHandler{
		sitemap: gen,
		locales: locales,
		docs:    library,
		logger:  logger.With().Str("component", "site").Logger(),
	}
}

func (s *SiteHandler) SitemapXML(c *gin.Context) {
	entries := s.sitemap.Entries()

	var buf bytes.Buffer
	if err := sitemap.WriteXML(&buf, entries); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render sitemap")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to render sitemap"})
		return
	}
	metrics.SitemapGenerationsTotal.WithLabelValues("xml").Inc()

	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

func (s *SiteHandler) SitemapJSON(c *gin.Context) {
	entries := s.sitemap.Entries()
	metrics.SitemapGenerationsTotal.WithLabelValues("json").Inc()
	c.JSON(http.StatusOK, entries)
}

func (s *SiteHandler) Robots(c *gin.Context) {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", s.sitemap.BaseURL())
	c.String(http.StatusOK, body)
}

// RedirectRoot sends the bare site root to the visitor's best locale.
func (s *SiteHandler) RedirectRoot(c *gin.Context) {
	l := s.locales.Negotiate(c.GetHeader("Accept-Language"))
	c.Redirect(http.StatusTemporaryRedirect, withQuery(i18n.LocalizedPath(l, ""), c.Request.URL.RawQuery))
}

// ServePage resolves /<locale><page> against the configured pages. A known
// page without a locale prefix is redirected to the negotiated locale.
func (s *SiteHandler) ServePage(c *gin.Context) {
	path := c.Request.URL.Path
	if (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) || strings.HasPrefix(path, "/api/") {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}

	locale, page, ok := s.locales.SplitLocalePath(path)
	if !s.isPage(page) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Page not found"})
		return
	}

	if !ok {
		l := s.locales.Negotiate(c.GetHeader("Accept-Language"))
		c.Redirect(http.StatusTemporaryRedirect, withQuery(i18n.LocalizedPath(l, page), c.Request.URL.RawQuery))
		return
	}

	if canonical := i18n.LocalizedPath(locale, page); canonical != path {
		c.Redirect(http.StatusPermanentRedirect, withQuery(canonical, c.Request.URL.RawQuery))
		return
	}

	title, fallback := s.locales.PageTitle(locale, page)
	switcher := make(map[string]string)
	for _, l := range s.locales.Locales() {
		switcher[string(l)] = s.locales.SwitchLocalePath(path, l)
	}

	c.Header("Content-Language", string(locale))
	c.JSON(http.StatusOK, PageMeta{
		Locale:     locale,
		Path:       page,
		Title:      title,
		Fallback:   fallback,
		Canonical:  s.sitemap.PageURL(string(locale), page),
		Alternates: s.sitemap.Alternates(page),
		Switcher:   switcher,
	})
}

func (s *SiteHandler) ListDocs(c *gin.Context) {
	locale, err := s.locales.Parse(c.Param("locale"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Unsupported locale"})
		return
	}

	list, err := s.docs.List(locale)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list documents"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (s *SiteHandler) GetDoc(c *gin.Context) {
	locale, err := s.locales.Parse(c.Param("locale"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Unsupported locale"})
		return
	}

	doc, err := s.docs.Get(locale, c.Param("slug"))
	if errors.Is(err, docs.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("slug", c.Param("slug")).Msg("Failed to render document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to render document"})
		return
	}

	if doc.Fallback {
		metrics.DocsFallbackTotal.WithLabelValues(string(locale)).Inc()
	}
	c.Header("Content-Language", string(doc.ResolvedLocale))
	c.JSON(http.StatusOK, doc)
}

func (s *SiteHandler) isPage(page string) bool {
	return slices.Contains(s.sitemap.Pages(), page)
}

func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
