package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/sitemap.xml", "200"))
	ObserveRequest("GET", "/sitemap.xml", 200, 0.01)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/sitemap.xml", "200"))
	assert.Equal(t, before+1, after)
}

func TestObserveRequestUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	ObserveRequest("GET", "", 404, 0.001)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
