// Package metrics provides Prometheus metrics for the site.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by method, route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatars_http_requests_total",
		Help: "Total number of HTTP requests, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "avatars_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// SitemapGenerationsTotal counts sitemap builds by output format.
	SitemapGenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatars_sitemap_generations_total",
		Help: "Total number of sitemap generations, by format (xml/json).",
	}, []string{"format"})

	// AvatarDownloadsTotal counts download redirects handed to the Arweave gateway.
	AvatarDownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatars_downloads_total",
		Help: "Total number of avatar download redirects.",
	})

	// DocsFallbackTotal counts documentation pages served in a fallback locale.
	DocsFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatars_docs_fallback_total",
		Help: "Documentation requests served from a fallback locale, by requested locale.",
	}, []string{"locale"})
)

// ObserveRequest records one served request.
func ObserveRequest(method, route string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}
