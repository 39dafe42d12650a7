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
	"errors"
	"net/http"
	"net/url"
	"time"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
	"go.uber.org/zap"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// Fetcher performs single blocking GET requests. It never returns an error
// to its caller: every failure is logged and reported in the FetchResult.
type Fetcher struct {
	backend *httpBackend
	config  *HTTPConfig
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher. A nil config uses the defaults and a nil
// logger discards diagnostics.
func NewFetcher(config *HTTPConfig, logger *zap.Logger) *Fetcher {
	if config == nil {
		config = NewDefaultConfig().HTTP
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := &httpBackend{}
	backend.Init(config.RequestTimeout)
	return &Fetcher{backend: backend, config: config, logger: logger}
}

// SetClient replaces the underlying HTTP client.
func (f *Fetcher) SetClient(client *http.Client) {
	f.backend.Client = client
}

// WithTransport replaces the transport of the underlying HTTP client.
func (f *Fetcher) WithTransport(transport http.RoundTripper) {
	f.backend.Client.Transport = transport
}

// Fetch retrieves u. A 2xx response yields a successful result carrying the
// body; anything else yields a failed result tagged with its FailureKind.
func (f *Fetcher) Fetch(ctx context.Context, u string) *FetchResult {
	start := time.Now()
	result := f.fetch(ctx, u)
	result.Duration = time.Since(start)

	if !result.OK() {
		f.logger.Warn("error occurred while fetching URL content",
			zap.String("url", u),
			zap.String("failure", string(result.Failure)),
			zap.Int("status", result.StatusCode),
			zap.Error(result.Err),
		)
		return result
	}

	fields := []zap.Field{
		zap.String("url", u),
		zap.Int("status", result.StatusCode),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("took", result.Duration),
		zap.Bool("cached", result.FromCache),
	}
	if result.Trace != nil {
		fields = append(fields, result.Trace.fields()...)
	}
	f.logger.Debug("fetched", fields...)
	return result
}

func (f *Fetcher) fetch(ctx context.Context, u string) *FetchResult {
	parsedWhatwgURL, err := urlParser.Parse(u)
	if err != nil {
		return transportFailure(u, err)
	}
	parsedURL, err := url.Parse(parsedWhatwgURL.Href(false))
	if err != nil {
		return transportFailure(u, err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", parsedURL.String(), nil)
	if err != nil {
		return transportFailure(u, err)
	}
	for header, value := range f.config.Headers {
		req.Header.Set(header, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	var trace *HTTPTrace
	if f.config.TraceHTTP {
		trace = &HTTPTrace{}
		req = trace.WithTrace(req)
	}

	resp, fromCache, err := f.backend.Cache(req, f.config.MaxBodySize, f.config.CacheDir, f.config.CacheExpiration)
	if err != nil {
		if resp == nil {
			if errors.Is(err, ErrBodyTooLarge) {
				return tooLargeFailure(u, err)
			}
			return transportFailure(u, err)
		}
		// The response is usable; only storing it in the cache failed.
		f.logger.Debug("cache write failed", zap.String("url", u), zap.Error(err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusFailure(u, resp)
	}

	result := &FetchResult{
		URL:        u,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Trace:      trace,
		FromCache:  fromCache,
	}
	if resp.Headers != nil {
		result.Headers = *resp.Headers
	}
	return result
}
