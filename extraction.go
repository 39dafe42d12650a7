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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kennygrant/sanitize"
)

// SitemapStatus is the outcome of processing one declared sitemap
type SitemapStatus string

const (
	// SitemapOK means the sitemap was fetched and parsed
	SitemapOK SitemapStatus = "ok"
	// SitemapUnreachable means the fetch failed; no table was stored
	SitemapUnreachable SitemapStatus = "unreachable"
	// SitemapTooLarge means the body exceeded HTTPConfig.MaxBodySize; no table was stored
	SitemapTooLarge SitemapStatus = "too_large"
	// SitemapEmpty means the response had no content; no table was stored
	SitemapEmpty SitemapStatus = "empty"
	// SitemapMalformed means the body was not well-formed XML; an empty table was stored
	SitemapMalformed SitemapStatus = "malformed"
	// SitemapFiltered means the URL did not match Config.SitemapGlobs
	SitemapFiltered SitemapStatus = "filtered"
)

// RobotsReport describes the robots.txt fetch of a run
type RobotsReport struct {
	URL        string
	Fetched    bool
	StatusCode int
	Failure    FailureKind
	Err        error
	// Sitemaps lists the declared sitemap URLs in document order
	Sitemaps []string
}

// SitemapReport describes how one declared sitemap was handled
type SitemapReport struct {
	URL         string
	Identifier  string
	Status      SitemapStatus
	StatusCode  int
	Err         error
	ContentHash string
	Rows        int
	Depth       int
	Duration    time.Duration
}

// BlockedURL is an extracted URL that robots.txt disallows
type BlockedURL struct {
	Identifier string
	URL        string
}

// Extraction is the result of one run: the tables keyed by sitemap
// identifier in first-insertion order, plus the run report.
type Extraction struct {
	BaseURL   string
	StartedAt time.Time
	Duration  time.Duration
	Robots    RobotsReport
	Sitemaps  []SitemapReport

	tables            map[string]*URLTable
	order             []string
	policy            *RobotsPolicy
	sanitizeFileNames bool
}

// NewExtraction creates an empty extraction for baseURL.
func NewExtraction(baseURL string) *Extraction {
	return &Extraction{
		BaseURL: baseURL,
		tables:  make(map[string]*URLTable),
	}
}

// Put stores table under identifier. An existing entry is replaced and
// keeps its position.
func (e *Extraction) Put(identifier string, table *URLTable) {
	if _, ok := e.tables[identifier]; !ok {
		e.order = append(e.order, identifier)
	}
	e.tables[identifier] = table
}

// Get returns the table stored under identifier.
func (e *Extraction) Get(identifier string) (*URLTable, bool) {
	t, ok := e.tables[identifier]
	return t, ok
}

// Identifiers returns the stored identifiers in insertion order.
func (e *Extraction) Identifiers() []string {
	return append([]string(nil), e.order...)
}

// Tables returns the stored tables in insertion order.
func (e *Extraction) Tables() []*URLTable {
	tables := make([]*URLTable, len(e.order))
	for i, id := range e.order {
		tables[i] = e.tables[id]
	}
	return tables
}

// Len is the number of stored tables.
func (e *Extraction) Len() int {
	return len(e.order)
}

// URLCount is the total number of rows across all tables.
func (e *Extraction) URLCount() int {
	n := 0
	for _, t := range e.tables {
		n += t.Len()
	}
	return n
}

// SetSanitizeFileNames controls whether SaveCSV passes identifiers through
// sanitize.BaseName.
func (e *Extraction) SetSanitizeFileNames(v bool) {
	e.sanitizeFileNames = v
}

// FileName is the CSV file name used for identifier.
func (e *Extraction) FileName(identifier string) string {
	if e.sanitizeFileNames {
		identifier = sanitize.BaseName(identifier)
	}
	return identifier + ".csv"
}

// SaveCSV writes one <identifier>.csv per table into dir, creating dir and
// its parents as needed. An empty dir means DefaultOutputDir. Existing
// files are overwritten. Files are written in order and the first failure
// stops the remaining writes.
func (e *Extraction) SaveCSV(dir string) error {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, id := range e.order {
		path := filepath.Join(dir, e.FileName(id))
		if err := writeTableCSV(path, e.tables[id]); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func writeTableCSV(path string, table *URLTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(table.Records()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// BlockedURLs lists every extracted URL that robots.txt disallows for
// agent, grouped by table in insertion order.
func (e *Extraction) BlockedURLs(agent string) ([]BlockedURL, error) {
	if e.policy == nil {
		return nil, ErrNoRobots
	}
	var blocked []BlockedURL
	for _, id := range e.order {
		for _, u := range e.tables[id].URLs() {
			if !e.policy.Allowed(u, agent) {
				blocked = append(blocked, BlockedURL{Identifier: id, URL: u})
			}
		}
	}
	return blocked, nil
}
