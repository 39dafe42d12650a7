// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sitemapper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingObserver struct {
	fetches  []string
	sitemaps []SitemapReport
}

func (r *recordingObserver) ObserveFetch(kind string, result *FetchResult) {
	r.fetches = append(r.fetches, kind+":"+result.Outcome())
}

func (r *recordingObserver) ObserveSitemap(report SitemapReport) {
	r.sitemaps = append(r.sitemaps, report)
}

func newTestExtractor(t *testing.T, mock *MockTransport, config *Config, opts ...Option) *Extractor {
	t.Helper()
	opts = append([]Option{WithTransport(mock), WithLogger(zap.NewNop())}, opts...)
	ex, err := NewExtractor(testBaseURL, config, opts...)
	require.NoError(t, err)
	return ex
}

func TestNewExtractor_EmptyBaseURL(t *testing.T) {
	_, err := NewExtractor("  ", nil)
	assert.ErrorIs(t, err, ErrEmptyBaseURL)
}

func TestNewExtractor_InvalidConfig(t *testing.T) {
	_, err := NewExtractor(testBaseURL, &Config{SitemapGlobs: []string{"[unclosed"}}, WithLogger(zap.NewNop()))
	assert.Error(t, err)

	_, err = NewExtractor(testBaseURL, &Config{ContentHashAlgorithm: "crc32"}, WithLogger(zap.NewNop()))
	assert.Error(t, err)
}

func TestExtractorRobotsURL(t *testing.T) {
	for _, base := range []string{"https://x.com", "https://x.com/"} {
		ex, err := NewExtractor(base, nil, WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, "https://x.com/robots.txt", ex.RobotsURL())
	}
}

func TestExtractorRun(t *testing.T) {
	mock := setupMockTransport()
	ex := newTestExtractor(t, mock, nil)

	ext := ex.Run(context.Background())

	assert.True(t, ext.Robots.Fetched)
	assert.Equal(t, []string{
		testBaseURL + "/sitemap-pages.xml",
		testBaseURL + "/sitemap-posts.xml",
		testBaseURL + "/sitemap-broken.xml",
		testBaseURL + "/sitemap-missing.xml",
		testBaseURL + "/sitemap-down.xml",
	}, ext.Robots.Sitemaps)

	assert.Equal(t, []string{"sitemap-pages", "sitemap-posts", "sitemap-broken"}, ext.Identifiers())
	assert.Equal(t, 4, ext.URLCount())

	pages, ok := ext.Get("sitemap-pages")
	require.True(t, ok)
	assert.Equal(t, 3, pages.Depth())
	assert.Equal(t, [][]string{
		{"ExtractedURLs", "Subdir_1", "Subdir_2", "Subdir_3"},
		{"http://test.local/a/b", "a", "b", ""},
		{"http://test.local/c", "c", "", ""},
		{"http://test.local/private/x/y", "private", "x", "y"},
	}, pages.Records())

	broken, ok := ext.Get("sitemap-broken")
	require.True(t, ok)
	assert.Equal(t, 0, broken.Len())
	assert.Equal(t, 0, broken.Depth())

	_, ok = ext.Get("sitemap-missing")
	assert.False(t, ok)

	require.Len(t, ext.Sitemaps, 5)
	statuses := make([]SitemapStatus, len(ext.Sitemaps))
	for i, r := range ext.Sitemaps {
		statuses[i] = r.Status
	}
	assert.Equal(t, []SitemapStatus{SitemapOK, SitemapOK, SitemapMalformed, SitemapUnreachable, SitemapUnreachable}, statuses)

	missing := ext.Sitemaps[3]
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.ErrorIs(t, missing.Err, ErrStatus)

	down := ext.Sitemaps[4]
	assert.Equal(t, 0, down.StatusCode)
	assert.True(t, errors.Is(down.Err, errConnRefused), "got %v", down.Err)

	assert.NotEmpty(t, ext.Sitemaps[0].ContentHash)
	assert.Empty(t, ext.Sitemaps[2].ContentHash)
}

func TestExtractorRun_SendsUserAgent(t *testing.T) {
	mock := setupMockTransport()
	ex := newTestExtractor(t, mock, &Config{HTTP: &HTTPConfig{UserAgent: "audit-bot/2.0"}})

	ex.Run(context.Background())

	requests := mock.Requests()
	require.NotEmpty(t, requests)
	assert.Equal(t, testBaseURL+"/robots.txt", requests[0].URL.String())
	for _, req := range requests {
		assert.Equal(t, "audit-bot/2.0", req.Header.Get("User-Agent"))
	}
}

func TestExtractorRun_RobotsUnreachable(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterError(testBaseURL+"/robots.txt", errConnRefused)
	ex := newTestExtractor(t, mock, nil)

	ext := ex.Run(context.Background())

	assert.False(t, ext.Robots.Fetched)
	assert.Equal(t, FailureTransport, ext.Robots.Failure)
	assert.Equal(t, 0, ext.Len())
	assert.Empty(t, ext.Sitemaps)

	_, err := ext.BlockedURLs("sitemapper")
	assert.ErrorIs(t, err, ErrNoRobots)
}

func TestExtractorRun_RobotsNotFound(t *testing.T) {
	ex := newTestExtractor(t, NewMockTransport(), nil)

	ext := ex.Run(context.Background())

	assert.False(t, ext.Robots.Fetched)
	assert.Equal(t, FailureStatus, ext.Robots.Failure)
	assert.Equal(t, http.StatusNotFound, ext.Robots.StatusCode)
	assert.Equal(t, 0, ext.Len())
}

func TestExtractorRun_NoSitemapDirectives(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterText(testBaseURL+"/robots.txt", "User-agent: *\nDisallow:\n")
	ex := newTestExtractor(t, mock, nil)

	ext := ex.Run(context.Background())

	assert.True(t, ext.Robots.Fetched)
	assert.Empty(t, ext.Robots.Sitemaps)
	assert.Equal(t, 0, ext.Len())
	assert.Len(t, mock.Requests(), 1)
}

func TestExtractorRun_IdentifierCollision(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterText(testBaseURL+"/robots.txt",
		"Sitemap: http://test.local/en/sitemap.xml\nSitemap: http://test.local/other.xml\nSitemap: http://test.local/de/sitemap.xml\n")
	mock.RegisterXML(testBaseURL+"/en/sitemap.xml", `<urlset><url><loc>http://test.local/en</loc></url></urlset>`)
	mock.RegisterXML(testBaseURL+"/other.xml", `<urlset><url><loc>http://test.local/o</loc></url></urlset>`)
	mock.RegisterXML(testBaseURL+"/de/sitemap.xml", `<urlset><url><loc>http://test.local/de/a</loc></url></urlset>`)
	ex := newTestExtractor(t, mock, nil)

	ext := ex.Run(context.Background())

	assert.Equal(t, []string{"sitemap", "other"}, ext.Identifiers())
	table, _ := ext.Get("sitemap")
	assert.Equal(t, []string{"http://test.local/de/a"}, table.URLs())
}

func TestExtractorRun_Filter(t *testing.T) {
	mock := setupMockTransport()
	ex := newTestExtractor(t, mock, &Config{SitemapGlobs: []string{"*/sitemap-pages.xml"}})

	ext := ex.Run(context.Background())

	assert.Equal(t, []string{"sitemap-pages"}, ext.Identifiers())
	assert.Equal(t, SitemapOK, ext.Sitemaps[0].Status)
	for _, r := range ext.Sitemaps[1:] {
		assert.Equal(t, SitemapFiltered, r.Status, r.URL)
	}
	assert.Len(t, mock.Requests(), 2)
}

func TestExtractorRun_Observer(t *testing.T) {
	rec := &recordingObserver{}
	ex := newTestExtractor(t, setupMockTransport(), nil, WithObserver(rec))

	ex.Run(context.Background())

	assert.Equal(t, []string{
		"robots:ok",
		"sitemap:ok",
		"sitemap:ok",
		"sitemap:ok",
		"sitemap:status",
		"sitemap:transport",
	}, rec.fetches)
	require.Len(t, rec.sitemaps, 5)
	assert.Equal(t, "sitemap-pages", rec.sitemaps[0].Identifier)
	assert.Equal(t, 3, rec.sitemaps[0].Rows)
}

func TestExtractorRun_LogsFetchFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ex := newTestExtractor(t, setupMockTransport(), nil, WithLogger(zap.New(core)))

	ex.Run(context.Background())

	failures := logs.FilterMessage("error occurred while fetching URL content")
	require.Equal(t, 2, failures.Len())
	for _, entry := range failures.All() {
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	}
	assert.Equal(t, testBaseURL+"/sitemap-missing.xml", failures.All()[0].ContextMap()["url"])
	assert.Equal(t, "status", failures.All()[0].ContextMap()["failure"])
	assert.Equal(t, "transport", failures.All()[1].ContextMap()["failure"])

	assert.Equal(t, 1, logs.FilterMessage("sitemap is not well-formed XML").Len())
}

func TestExtractorRun_Repeatable(t *testing.T) {
	ex := newTestExtractor(t, setupMockTransport(), nil)

	first := ex.Run(context.Background())
	second := ex.Run(context.Background())

	assert.Equal(t, first.Identifiers(), second.Identifiers())
	for _, id := range first.Identifiers() {
		a, _ := first.Get(id)
		b, _ := second.Get(id)
		assert.Equal(t, a.Records(), b.Records())
	}
}

func TestExtractorRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := newTestExtractor(t, setupMockTransport(), nil)

	ext := ex.Run(ctx)

	assert.False(t, ext.Robots.Fetched)
	assert.Equal(t, FailureTransport, ext.Robots.Failure)
	assert.Equal(t, 0, ext.Len())
}

func TestExtractorRun_LargeSitemapWithDefaults(t *testing.T) {
	const count = 200000
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	body.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for i := 0; i < count; i++ {
		fmt.Fprintf(&body, "<url><loc>http://test.local/section/page-%06d</loc></url>\n", i)
	}
	body.WriteString("</urlset>\n")
	require.Greater(t, body.Len(), 10*1024*1024)

	mock := NewMockTransport()
	mock.RegisterText(testBaseURL+"/robots.txt", "Sitemap: http://test.local/sitemap-large.xml\n")
	mock.RegisterXML(testBaseURL+"/sitemap-large.xml", body.String())
	ex := newTestExtractor(t, mock, nil)

	ext := ex.Run(context.Background())

	require.Len(t, ext.Sitemaps, 1)
	assert.Equal(t, SitemapOK, ext.Sitemaps[0].Status, "%v", ext.Sitemaps[0].Err)
	table, ok := ext.Get("sitemap-large")
	require.True(t, ok)
	assert.Equal(t, count, table.Len())
	assert.Equal(t, "http://test.local/section/page-199999", table.Row(count-1).URL)
}

func TestExtractorRun_SitemapOverLimit(t *testing.T) {
	rec := &recordingObserver{}
	mock := NewMockTransport()
	mock.RegisterText(testBaseURL+"/robots.txt", "Sitemap: http://test.local/sitemap-big.xml\n")
	mock.RegisterXML(testBaseURL+"/sitemap-big.xml",
		`<urlset><url><loc>http://test.local/a</loc></url><url><loc>http://test.local/b</loc></url></urlset>`)
	ex := newTestExtractor(t, mock, &Config{HTTP: &HTTPConfig{MaxBodySize: 64}}, WithObserver(rec))

	ext := ex.Run(context.Background())

	require.Len(t, ext.Sitemaps, 1)
	assert.Equal(t, SitemapTooLarge, ext.Sitemaps[0].Status)
	assert.ErrorIs(t, ext.Sitemaps[0].Err, ErrBodyTooLarge)
	assert.Equal(t, 0, ext.Len())
	assert.Equal(t, []string{"robots:ok", "sitemap:too_large"}, rec.fetches)
}

func TestExtractorRun_EmptySitemapBody(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "whitespace": " \n\t\n"} {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			mock := NewMockTransport()
			mock.RegisterText(testBaseURL+"/robots.txt",
				"Sitemap: http://test.local/sitemap-blank.xml\nSitemap: http://test.local/sitemap-pages.xml\n")
			mock.RegisterXML(testBaseURL+"/sitemap-blank.xml", body)
			mock.RegisterXML(testBaseURL+"/sitemap-pages.xml", testPagesSitemap)
			ex := newTestExtractor(t, mock, nil, WithLogger(zap.New(core)))

			ext := ex.Run(context.Background())

			require.Len(t, ext.Sitemaps, 2)
			assert.Equal(t, SitemapEmpty, ext.Sitemaps[0].Status)
			assert.Equal(t, http.StatusOK, ext.Sitemaps[0].StatusCode)
			assert.Equal(t, []string{"sitemap-pages"}, ext.Identifiers())
			assert.Equal(t, 1, logs.FilterMessage("sitemap has no content").Len())
			assert.Zero(t, logs.FilterMessage("sitemap is not well-formed XML").Len())
		})
	}
}
