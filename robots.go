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
	"fmt"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
)

// sitemapDirective is matched case-sensitively at the start of a trimmed line.
const sitemapDirective = "Sitemap:"

// ScanSitemapDirectives returns the URL of every "Sitemap: <url>" line in a
// robots.txt document, in document order. The URL is whatever follows the
// first ": " on the line, with surrounding whitespace removed. Lines with the
// prefix but no ": " separator are ignored.
func ScanSitemapDirectives(text string) []string {
	var sitemaps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, sitemapDirective) {
			continue
		}
		_, rest, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		sitemaps = append(sitemaps, strings.TrimSpace(rest))
	}
	return sitemaps
}

// RobotsPolicy answers allow/deny questions against a parsed robots.txt.
type RobotsPolicy struct {
	data *robotstxt.RobotsData
}

// ParseRobotsPolicy parses robots.txt content with github.com/temoto/robotstxt.
func ParseRobotsPolicy(body []byte) (*RobotsPolicy, error) {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}
	return &RobotsPolicy{data: data}, nil
}

// Allowed reports whether agent may fetch rawURL. Only the path and query
// of rawURL are matched against the rules.
func (p *RobotsPolicy) Allowed(rawURL, agent string) bool {
	path := "/"
	if u, err := url.Parse(rawURL); err == nil {
		path = u.RequestURI()
	}
	return p.data.TestAgent(path, agent)
}
