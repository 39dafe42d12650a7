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
	"errors"
	"net/http"
)

const testBaseURL = "http://test.local"

var testRobotsFile = `User-agent: *
Disallow: /private/

# pages first, then posts
Sitemap: http://test.local/sitemap-pages.xml
sitemap: http://test.local/ignored-lowercase.xml
Sitemap: http://test.local/sitemap-posts.xml
Sitemap: http://test.local/sitemap-broken.xml
Sitemap: http://test.local/sitemap-missing.xml
Sitemap: http://test.local/sitemap-down.xml
`

var testPagesSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://test.local/a/b</loc><lastmod>2024-01-01</lastmod></url>
  <url><loc>http://test.local/c</loc></url>
  <url><loc>http://test.local/private/x/y</loc></url>
</urlset>`

var testPostsSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://test.local/blog/hello</loc></url>
</urlset>`

var errConnRefused = errors.New("connection refused")

// setupMockTransport registers a site whose robots.txt declares one sitemap
// of every kind: two parsable ones, a malformed one, a 404 and a
// transport failure.
func setupMockTransport() *MockTransport {
	mock := NewMockTransport()
	mock.RegisterText(testBaseURL+"/robots.txt", testRobotsFile)
	mock.RegisterXML(testBaseURL+"/sitemap-pages.xml", testPagesSitemap)
	mock.RegisterXML(testBaseURL+"/sitemap-posts.xml", testPostsSitemap)
	mock.RegisterXML(testBaseURL+"/sitemap-broken.xml", "<urlset><url><loc>")
	mock.RegisterStatus(testBaseURL+"/sitemap-missing.xml", http.StatusNotFound)
	mock.RegisterError(testBaseURL+"/sitemap-down.xml", errConnRefused)
	return mock
}
