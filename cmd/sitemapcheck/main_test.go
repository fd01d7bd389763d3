package main

import (
	"bytes"
	"testing"

	"github.com/opensourceavatars/avatar-site/internal/linkcheck"
	"github.com/stretchr/testify/assert"
)

func TestPrintReport(t *testing.T) {
	report := &linkcheck.Report{
		Sitemap: "https://example.com/sitemap.xml",
		Entries: 3,
		Results: []linkcheck.Result{
			{URL: "https://example.com/en", Status: 200},
			{URL: "https://example.com/ja", Status: 404, Error: "Not Found"},
			{URL: "https://example.com/de", Error: "connection refused"},
		},
		NonReciprocal: []linkcheck.AlternateIssue{
			{From: "https://example.com/en", Hreflang: "ja", To: "https://example.com/ja", Reason: "target does not link back"},
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, printReport(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "Entries: 3, URLs checked: 3, broken: 2")
	assert.Contains(t, out, "BROKEN 404 https://example.com/ja")
	assert.Contains(t, out, "BROKEN https://example.com/de (connection refused)")
	assert.Contains(t, out, "ALTERNATE https://example.com/en -> https://example.com/ja [ja]")
}

func TestPrintReportJSON(t *testing.T) {
	CLI.JSON = true
	defer func() { CLI.JSON = false }()

	var buf bytes.Buffer
	assert.NoError(t, printReport(&buf, &linkcheck.Report{Sitemap: "s", Entries: 1}))
	assert.Contains(t, buf.String(), `"sitemap": "s"`)
	assert.Contains(t, buf.String(), `"entries": 1`)
}
