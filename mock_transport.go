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
	"io"
	"net/http"
	"sync"
)

// MockResponse is a canned reply served by MockTransport
type MockResponse struct {
	// StatusCode defaults to 200
	StatusCode int
	Body       []byte
	Headers    http.Header
	// Error simulates a transport failure; the other fields are ignored
	Error error
}

// MockTransport is an http.RoundTripper that serves registered responses
// without touching the network. Unregistered URLs get a 404. It lets tests
// and offline tools drive an Extractor through WithTransport.
type MockTransport struct {
	responses map[string]*MockResponse
	requests  []*http.Request
	mutex     sync.RWMutex
}

// NewMockTransport creates an empty MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{responses: make(map[string]*MockResponse)}
}

// RegisterResponse serves response for an exact URL.
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if response.StatusCode == 0 {
		response.StatusCode = http.StatusOK
	}
	if response.Headers == nil {
		response.Headers = make(http.Header)
	}
	m.responses[url] = response
}

// RegisterText serves a plain text body, e.g. a robots.txt.
func (m *MockTransport) RegisterText(url, body string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "text/plain; charset=utf-8")
	m.RegisterResponse(url, &MockResponse{Body: []byte(body), Headers: headers})
}

// RegisterXML serves an XML body, e.g. a sitemap.
func (m *MockTransport) RegisterXML(url, body string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/xml")
	m.RegisterResponse(url, &MockResponse{Body: []byte(body), Headers: headers})
}

// RegisterStatus serves an empty body with the given status code.
func (m *MockTransport) RegisterStatus(url string, code int) {
	m.RegisterResponse(url, &MockResponse{StatusCode: code})
}

// RegisterError makes requests for url fail with err.
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{Error: err})
}

// Requests returns the requests seen so far, oldest first.
func (m *MockTransport) Requests() []*http.Request {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]*http.Request(nil), m.requests...)
}

// RoundTrip implements http.RoundTripper
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	m.mutex.Lock()
	m.requests = append(m.requests, req)
	mockResp, found := m.responses[req.URL.String()]
	m.mutex.Unlock()

	if !found {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(bytes.NewBufferString("Not Found")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
	if mockResp.Error != nil {
		return nil, mockResp.Error
	}

	return &http.Response{
		StatusCode:    mockResp.StatusCode,
		Status:        http.StatusText(mockResp.StatusCode),
		Body:          io.NopCloser(bytes.NewReader(mockResp.Body)),
		Header:        mockResp.Headers.Clone(),
		ContentLength: int64(len(mockResp.Body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}, nil
}
