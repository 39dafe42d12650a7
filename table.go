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
	"strconv"
	"strings"
)

// URLColumn is the header of the column holding the full URL
const URLColumn = "ExtractedURLs"

const subdirColumnPrefix = "Subdir_"

// Cell is one Subdir_k value of a row. Set is false when the row's path is
// shallower than k; a set cell may still hold the empty string.
type Cell struct {
	Value string
	Set   bool
}

// Row is one extracted URL and its path segments, padded to the table depth.
type Row struct {
	URL   string
	Cells []Cell
}

// URLTable holds one row per URL with a fixed number of Subdir columns equal
// to the deepest path among its rows.
type URLTable struct {
	rows  []Row
	depth int
}

// BuildURLTable decomposes urls into path segments relative to baseURL.
// Row order follows input order. The table width is only known once every
// URL has been split, so rows are materialised in a second pass.
func BuildURLTable(urls []string, baseURL string) *URLTable {
	segmentLists := make([][]string, len(urls))
	depth := 0
	for i, u := range urls {
		segmentLists[i] = SplitPathSegments(u, baseURL)
		depth = max(depth, len(segmentLists[i]))
	}

	rows := make([]Row, len(urls))
	for i, u := range urls {
		cells := make([]Cell, depth)
		for j, segment := range segmentLists[i] {
			cells[j] = Cell{Value: segment, Set: true}
		}
		rows[i] = Row{URL: u, Cells: cells}
	}
	return &URLTable{rows: rows, depth: depth}
}

// SplitPathSegments strips baseURL from the front of rawURL, trims leading
// and trailing slashes and splits the rest on "/". The result always has at
// least one element: the base URL itself yields [""].
func SplitPathSegments(rawURL, baseURL string) []string {
	path := rawURL
	if baseURL != "" {
		path = strings.TrimPrefix(rawURL, baseURL)
	}
	return strings.Split(strings.Trim(path, "/"), "/")
}

// Depth is the number of Subdir columns.
func (t *URLTable) Depth() int {
	return t.depth
}

// Len is the number of rows.
func (t *URLTable) Len() int {
	return len(t.rows)
}

// Row returns row i (0-indexed).
func (t *URLTable) Row(i int) Row {
	return t.rows[i]
}

// Cell returns Subdir_k (1-indexed) of row i and whether it is set.
// Columns beyond Depth are reported as unset.
func (t *URLTable) Cell(i, k int) (string, bool) {
	if k < 1 || k > t.depth {
		return "", false
	}
	c := t.rows[i].Cells[k-1]
	return c.Value, c.Set
}

// URLs returns the ExtractedURLs column.
func (t *URLTable) URLs() []string {
	urls := make([]string, len(t.rows))
	for i, r := range t.rows {
		urls[i] = r.URL
	}
	return urls
}

// Columns returns the header: ExtractedURLs, Subdir_1 .. Subdir_Depth.
func (t *URLTable) Columns() []string {
	columns := make([]string, 0, t.depth+1)
	columns = append(columns, URLColumn)
	for k := 1; k <= t.depth; k++ {
		columns = append(columns, subdirColumnPrefix+strconv.Itoa(k))
	}
	return columns
}

// Records returns the header followed by one record per row, with unset
// cells rendered as empty strings.
func (t *URLTable) Records() [][]string {
	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, t.Columns())
	for _, r := range t.rows {
		record := make([]string, 0, t.depth+1)
		record = append(record, r.URL)
		for _, c := range r.Cells {
			record = append(record, c.Value)
		}
		records = append(records, record)
	}
	return records
}
