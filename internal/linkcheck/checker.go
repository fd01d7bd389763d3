// Package linkcheck crawls a published sitemap and verifies that every
// location and hreflang alternate it lists answers, and that alternates
// point back at each other.
package linkcheck

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/opensourceavatars/avatar-site/internal/models"
	"github.com/rs/zerolog"
)

const targetKey = "target"

type Config struct {
	UserAgent   string
	Parallelism int
	Delay       time.Duration
	Timeout     time.Duration
}

type Checker struct {
	config Config
	logger zerolog.Logger
}

// Result is the outcome of fetching one URL. Status is zero when the request
// never produced a response.
type Result struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Status > 0 && r.Status < http.StatusBadRequest
}

// AlternateIssue is an hreflang link that the target page does not return.
type AlternateIssue struct {
	From     string `json:"from"`
	Hreflang string `json:"hreflang"`
	To       string `json:"to"`
	Reason   string `json:"reason"`
}

type Report struct {
	Sitemap       string           `json:"sitemap"`
	Entries       int              `json:"entries"`
	Results       []Result         `json:"results"`
	NonReciprocal []AlternateIssue `json:"nonReciprocal"`
}

// Broken returns the results that did not answer with a non-error status.
func (r *Report) Broken() []Result {
	var broken []Result
	for _, res := range r.Results {
		if !res.OK() {
			broken = append(broken, res)
		}
	}
	return broken
}

// sitemapDoc reads the published sitemap. The alternate links are matched by
// namespace URI, which is how the decoder resolves the xhtml prefix.
type sitemapDoc struct {
	URLs []struct {
		Loc   string                 `xml:"loc"`
		Links []models.AlternateLink `xml:"http://www.w3.org/1999/xhtml link"`
	} `xml:"url"`
}

// resultSet collects results from the async collector callbacks.
type resultSet struct {
	results map[string]Result
	mutex   sync.Mutex
}

func (rs *resultSet) add(res Result) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	rs.results[res.URL] = res
}

func (rs *resultSet) sorted() []Result {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	out := make([]Result, 0, len(rs.results))
	for _, res := range rs.results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

func NewChecker(config Config, logger zerolog.Logger) *Checker {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Checker{
		config: config,
		logger: logger.With().Str("component", "linkcheck").Logger(),
	}
}

// Check fetches the sitemap at sitemapURL and visits every distinct URL in
// it once.
func (c *Checker) Check(ctx context.Context, sitemapURL string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := c.fetchSitemap(sitemapURL)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Sitemap:       sitemapURL,
		Entries:       len(doc.URLs),
		NonReciprocal: reciprocity(doc),
	}

	var targets []string
	seen := make(map[string]bool)
	for _, u := range doc.URLs {
		for _, href := range append([]string{u.Loc}, hrefs(u.Links)...) {
			if href == "" || seen[href] {
				continue
			}
			seen[href] = true
			targets = append(targets, href)
		}
	}

	results := &resultSet{results: make(map[string]Result, len(targets))}
	collector := c.newCollector(true)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.config.Parallelism,
		Delay:       c.config.Delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to set crawl limits: %w", err)
	}

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		results.add(Result{URL: r.Ctx.Get(targetKey), Status: r.StatusCode})
	})
	collector.OnError(func(r *colly.Response, err error) {
		res := Result{URL: r.Ctx.Get(targetKey), Status: r.StatusCode}
		if !res.OK() {
			res.Error = err.Error()
		}
		c.logger.Debug().Str("url", res.URL).Int("status", res.Status).Err(err).Msg("Link check failed")
		results.add(res)
	})

	for idx, target := range targets {
		if ctx.Err() != nil {
			break
		}
		c.logger.Debug().Msgf("Checking URL %d/%d: %s", idx+1, len(targets), target)

		cctx := colly.NewContext()
		cctx.Put(targetKey, target)
		if err := collector.Request(http.MethodGet, target, nil, cctx, nil); err != nil {
			results.add(Result{URL: target, Error: err.Error()})
		}
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Results = results.sorted()
	for _, target := range targets {
		if _, ok := results.results[target]; !ok {
			report.Results = append(report.Results, Result{URL: target, Error: "not visited"})
		}
	}

	c.logger.Info().
		Int("entries", report.Entries).
		Int("urls", len(report.Results)).
		Int("broken", len(report.Broken())).
		Int("non_reciprocal", len(report.NonReciprocal)).
		Msg("Link check completed")

	return report, nil
}

func (c *Checker) newCollector(async bool) *colly.Collector {
	// colly.Async ignores its argument, so it is only passed when wanted.
	var opts []colly.CollectorOption
	if async {
		opts = append(opts, colly.Async())
	}
	if c.config.UserAgent != "" {
		opts = append(opts, colly.UserAgent(c.config.UserAgent))
	}
	collector := colly.NewCollector(opts...)
	collector.SetRequestTimeout(c.config.Timeout)
	return collector
}

func (c *Checker) fetchSitemap(sitemapURL string) (*sitemapDoc, error) {
	var (
		body     []byte
		fetchErr error
	)

	collector := c.newCollector(false)
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(sitemapURL); err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, fetchErr)
	}
	if len(body) == 0 {
		return nil, errors.New("sitemap response was empty")
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	return &doc, nil
}

// reciprocity reports alternates whose target entry is missing from the
// sitemap or does not link back.
func reciprocity(doc *sitemapDoc) []AlternateIssue {
	links := make(map[string]map[string]bool, len(doc.URLs))
	for _, u := range doc.URLs {
		back := make(map[string]bool, len(u.Links))
		for _, l := range u.Links {
			back[l.Href] = true
		}
		links[u.Loc] = back
	}

	var issues []AlternateIssue
	for _, u := range doc.URLs {
		for _, l := range u.Links {
			if l.Href == u.Loc {
				continue
			}
			back, ok := links[l.Href]
			switch {
			case !ok:
				issues = append(issues, AlternateIssue{From: u.Loc, Hreflang: l.Hreflang, To: l.Href, Reason: "target not in sitemap"})
			case !back[u.Loc]:
				issues = append(issues, AlternateIssue{From: u.Loc, Hreflang: l.Hreflang, To: l.Href, Reason: "target does not link back"})
			}
		}
	}
	return issues
}

func hrefs(links []models.AlternateLink) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Href)
	}
	return out
}
