package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/opensourceavatars/avatar-site/internal/models"
)

// ToURLSet converts entries to the sitemaps.org XML shape. Alternates become
// xhtml:link elements ordered by hreflang.
func ToURLSet(entries []Entry) models.URLSet {
	set := models.URLSet{
		Xmlns: models.SitemapNamespace,
		XHTML: models.XHTMLNamespace,
		URLs:  make([]models.URL, 0, len(entries)),
	}

	for _, e := range entries {
		u := models.URL{
			Loc:        e.URL,
			LastMod:    e.LastModified.UTC().Format(time.RFC3339),
			ChangeFreq: string(e.ChangeFrequency),
			Priority:   fmt.Sprintf("%.1f", e.Priority),
		}
		if e.Alternates != nil {
			langs := make([]string, 0, len(e.Alternates.Languages))
			for l := range e.Alternates.Languages {
				langs = append(langs, l)
			}
			sort.Strings(langs)
			for _, l := range langs {
				u.Alternates = append(u.Alternates, models.AlternateLink{
					Rel:      "alternate",
					Hreflang: l,
					Href:     e.Alternates.Languages[l],
				})
			}
		}
		set.URLs = append(set.URLs, u)
	}

	return set
}

// WriteXML writes entries as an indented sitemap document.
func WriteXML(w io.Writer, entries []Entry) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(ToURLSet(entries)); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return enc.Flush()
}
