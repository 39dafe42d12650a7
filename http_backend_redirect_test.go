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
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHttpBackendFollowsRedirects checks that moved sitemaps are fetched from
// their final location.
func TestHttpBackendFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/moved/sitemap.xml", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/moved/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<urlset><url><loc>https://x.com/a</loc></url></urlset>`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	backend := &httpBackend{}
	backend.Init(0)
	req, _ := http.NewRequest("GET", ts.URL+"/sitemap.xml", nil)

	resp, err := backend.Do(req, 0)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	locs, err := ParseSitemapLocations(resp.Body)
	if err != nil || len(locs) != 1 {
		t.Errorf("Expected one loc from the final location, got %v, %v", locs, err)
	}
}

// TestHttpBackendGzipByFinalURL checks that a redirect to a .xml.gz file is
// decompressed even without gzip headers.
func TestHttpBackendGzipByFinalURL(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`<urlset><url><loc>https://x.com/b</loc></url></urlset>`))
	gz.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/archive/sitemap.xml.gz", http.StatusFound)
	})
	mux.HandleFunc("/archive/sitemap.xml.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf.Bytes())
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	backend := &httpBackend{}
	backend.Init(0)
	req, _ := http.NewRequest("GET", ts.URL+"/latest", nil)

	resp, err := backend.Do(req, 0)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	locs, err := ParseSitemapLocations(resp.Body)
	if err != nil || len(locs) != 1 || locs[0] != "https://x.com/b" {
		t.Errorf("Expected decompressed sitemap, got %v, %v", locs, err)
	}
}
