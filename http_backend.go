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

package sitemapper

import (
	"compress/gzip"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// Response is the raw HTTP response as seen by the backend. It is also the
// unit stored in the on-disk cache.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    *http.Header
}

type httpBackend struct {
	Client *http.Client
}

func (h *httpBackend) Init(timeout time.Duration) {
	h.Client = &http.Client{
		Timeout: timeout,
	}
}

// Cache serves GET requests from cacheDir when a fresh entry exists and
// stores successful (< 500) responses after fetching them.
func (h *httpBackend) Cache(request *http.Request, bodySize int, cacheDir string, cacheExpiration time.Duration) (*Response, bool, error) {
	if cacheDir == "" || request.Method != "GET" || request.Header.Get("Cache-Control") == "no-cache" {
		resp, err := h.Do(request, bodySize)
		return resp, false, err
	}
	sum := sha1.Sum([]byte(request.URL.String()))
	hash := hex.EncodeToString(sum[:])
	dir := path.Join(cacheDir, hash[:2])
	filename := path.Join(dir, hash)

	if fileInfo, err := os.Stat(filename); err == nil && cacheExpiration > 0 {
		if time.Since(fileInfo.ModTime()) > cacheExpiration {
			_ = os.Remove(filename)
		}
	}

	if file, err := os.Open(filename); err == nil {
		resp := new(Response)
		err := gob.NewDecoder(file).Decode(resp)
		file.Close()
		if err == nil && resp.StatusCode < 500 {
			return resp, true, nil
		}
	}
	resp, err := h.Do(request, bodySize)
	if err != nil || resp.StatusCode >= 500 {
		return resp, false, err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return resp, false, err
	}
	file, err := os.Create(filename + "~")
	if err != nil {
		return resp, false, err
	}
	if err := gob.NewEncoder(file).Encode(resp); err != nil {
		file.Close()
		return resp, false, err
	}
	file.Close()
	return resp, false, os.Rename(filename+"~", filename)
}

// Do performs the request with the client's default redirect policy,
// gunzipping when the response or the URL says the payload is compressed.
// bodySize caps the decoded body (0 = unlimited); a larger body fails with
// ErrBodyTooLarge instead of being cut short.
func (h *httpBackend) Do(request *http.Request, bodySize int) (*Response, error) {
	res, err := h.Client.Do(request)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	finalURL := request.URL
	if res.Request != nil {
		finalURL = res.Request.URL
	}

	var bodyReader io.Reader = res.Body
	contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
	if !res.Uncompressed && (strings.Contains(contentEncoding, "gzip") ||
		(contentEncoding == "" && strings.Contains(strings.ToLower(res.Header.Get("Content-Type")), "gzip")) ||
		strings.HasSuffix(strings.ToLower(finalURL.Path), ".xml.gz")) {
		gz, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		bodyReader = gz
	}
	if bodySize > 0 {
		bodyReader = io.LimitReader(bodyReader, int64(bodySize)+1)
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}
	if bodySize > 0 && len(body) > bodySize {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, bodySize, finalURL)
	}
	return &Response{
		StatusCode: res.StatusCode,
		Body:       body,
		Headers:    &res.Header,
	}, nil
}
