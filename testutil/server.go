// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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

// Package testutil provides shared test utilities for sitemapper tests.
// This includes an HTTP test site with a robots.txt and sitemaps.
package testutil

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
)

// Test data shared across tests
var (
	// PagesSitemap has three URLs of different depths
	PagesSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{base}}/a/b</loc><lastmod>2024-01-01</lastmod></url>
  <url><loc>{{base}}/c</loc></url>
  <url><loc>{{base}}/private/x/y</loc></url>
</urlset>
`
	// PostsSitemap is served gzip compressed
	PostsSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{base}}/blog/2024/hello</loc></url>
</urlset>
`
	// BrokenSitemap is not well-formed XML
	BrokenSitemap = `<urlset><url><loc>{{base}}/oops</loc></url>`
)

// RobotsFile declares four sitemaps: two good, one broken, one missing.
const RobotsFile = `User-agent: *
Disallow: /private/

Sitemap: {{base}}/sitemap-pages.xml
Sitemap: {{base}}/sitemap-posts.xml.gz
Sitemap: {{base}}/sitemap-broken.xml
Sitemap: {{base}}/sitemap-missing.xml
`

// NewUnstartedTestServer creates an unstarted test site. Placeholders
// {{base}} in the bodies are replaced with the server URL on each request.
func NewUnstartedTestServer() *httptest.Server {
	mux := http.NewServeMux()
	server := httptest.NewUnstartedServer(mux)

	render := func(r *http.Request, body string) []byte {
		return []byte(strings.ReplaceAll(body, "{{base}}", "http://"+r.Host))
	}

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write(render(r, RobotsFile))
	})

	mux.HandleFunc("/sitemap-pages.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write(render(r, PagesSitemap))
	})

	mux.HandleFunc("/sitemap-posts.xml.gz", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write(render(r, PostsSitemap))
		gz.Close()
		w.Header().Set("Content-Type", "application/x-gzip")
		w.Write(buf.Bytes())
	})

	mux.HandleFunc("/sitemap-broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write(render(r, BrokenSitemap))
	})

	mux.HandleFunc("/user_agent", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("User-Agent")))
	})

	mux.HandleFunc("/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "<p>error</p>")
	})

	return server
}

// NewTestServer creates and starts a new test site
func NewTestServer() *httptest.Server {
	srv := NewUnstartedTestServer()
	srv.Start()
	return srv
}
