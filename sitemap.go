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
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// locQuery matches <loc> at any depth whatever its namespace prefix.
const locQuery = "//*[local-name()='loc']"

// ParseSitemapLocations returns the text of every loc element in an XML
// document, in document order and with duplicates kept. Other elements
// (lastmod, changefreq, image:image, ...) are ignored. A sitemap index is
// treated like any other document: its child sitemap URLs are returned as is.
func ParseSitemapLocations(body []byte) ([]string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}

	nodes := xmlquery.Find(doc, locQuery)
	locations := make([]string, 0, len(nodes))
	for _, n := range nodes {
		locations = append(locations, strings.TrimSpace(n.InnerText()))
	}
	return locations, nil
}

// SitemapIdentifier derives the store key of a sitemap from the last
// "/"-separated segment of its URL with ".xml" removed, so
// "https://example.com/post-sitemap.xml" becomes "post-sitemap".
func SitemapIdentifier(sitemapURL string) string {
	segments := strings.Split(sitemapURL, "/")
	return strings.ReplaceAll(segments[len(segments)-1], ".xml", "")
}
