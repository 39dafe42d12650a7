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

	"github.com/gobwas/glob"
)

// SitemapFilter selects which sitemap URLs declared in robots.txt are fetched.
type SitemapFilter struct {
	globs []glob.Glob
}

// NewSitemapFilter compiles glob patterns. "*" matches across "/", so
// "*/blog-*.xml" matches any blog sitemap on any host.
func NewSitemapFilter(patterns []string) (*SitemapFilter, error) {
	f := &SitemapFilter{}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid sitemap glob %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether sitemapURL should be processed. A filter without
// patterns matches everything.
func (f *SitemapFilter) Match(sitemapURL string) bool {
	if f == nil || len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(sitemapURL) {
			return true
		}
	}
	return false
}
