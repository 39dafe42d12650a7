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
	"io"
	"net/http"
	"testing"
)

func TestMockTransport_RegisterXML(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterXML("https://example.com/sitemap.xml", "<urlset/>")

	req, _ := http.NewRequest("GET", "https://example.com/sitemap.xml", nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Expected Content-Type application/xml, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<urlset/>" {
		t.Errorf("Unexpected body %q", body)
	}
}

func TestMockTransport_Unregistered(t *testing.T) {
	mock := NewMockTransport()

	req, _ := http.NewRequest("GET", "https://example.com/nothing", nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	if len(mock.Requests()) != 1 {
		t.Errorf("Expected 1 recorded request, got %d", len(mock.Requests()))
	}
}

func TestMockTransport_Error(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterError("https://example.com/", errConnRefused)

	req, _ := http.NewRequest("GET", "https://example.com/", nil)
	if _, err := mock.RoundTrip(req); err != errConnRefused {
		t.Errorf("Expected errConnRefused, got %v", err)
	}
}

func TestMockTransport_CancelledRequest(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterText("https://example.com/robots.txt", "User-agent: *")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", "https://example.com/robots.txt", nil)
	if _, err := mock.RoundTrip(req); err == nil {
		t.Error("Expected an error for a cancelled request")
	}
}
