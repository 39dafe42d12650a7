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
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrStatus is wrapped by fetch failures caused by a non-2xx response
	ErrStatus = errors.New("unexpected HTTP status")
	// ErrEmptyBaseURL is returned when an extractor is configured without a site
	ErrEmptyBaseURL = errors.New("base URL is empty")
	// ErrNoRobots is returned by robots audits when robots.txt was not fetched
	ErrNoRobots = errors.New("robots.txt was not fetched")
	// ErrBodyTooLarge is returned when a response body exceeds HTTPConfig.MaxBodySize
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

// FailureKind classifies why a fetch did not produce a body.
type FailureKind string

const (
	// FailureNone marks a successful fetch
	FailureNone FailureKind = ""
	// FailureTransport covers invalid URLs, connection errors and timeouts
	FailureTransport FailureKind = "transport"
	// FailureStatus covers responses outside the 2xx range
	FailureStatus FailureKind = "status"
	// FailureTooLarge covers bodies over HTTPConfig.MaxBodySize; nothing is
	// passed on truncated
	FailureTooLarge FailureKind = "too_large"
)

// FetchResult is the tagged outcome of a single fetch.
type FetchResult struct {
	// URL is the requested URL
	URL string
	// StatusCode is 0 when no response was received
	StatusCode int
	// Body is nil unless the fetch succeeded
	Body []byte
	// Headers of the final response, if any
	Headers http.Header
	// Failure is FailureNone on success
	Failure FailureKind
	// Err carries the failure detail
	Err error
	// Duration is the wall time of the fetch
	Duration time.Duration
	// Trace is set when HTTPConfig.TraceHTTP is enabled
	Trace *HTTPTrace
	// FromCache reports whether the body came from the on-disk cache
	FromCache bool
}

// OK reports whether the fetch produced a body.
func (r *FetchResult) OK() bool {
	return r != nil && r.Failure == FailureNone
}

// Outcome is a short label for logs and metrics: "ok" or the failure kind.
func (r *FetchResult) Outcome() string {
	if r.OK() {
		return "ok"
	}
	return string(r.Failure)
}

func transportFailure(u string, err error) *FetchResult {
	return &FetchResult{URL: u, Failure: FailureTransport, Err: err}
}

func tooLargeFailure(u string, err error) *FetchResult {
	return &FetchResult{URL: u, Failure: FailureTooLarge, Err: err}
}

func statusFailure(u string, resp *Response) *FetchResult {
	result := &FetchResult{
		URL:        u,
		StatusCode: resp.StatusCode,
		Failure:    FailureStatus,
		Err:        fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
	if resp.Headers != nil {
		result.Headers = *resp.Headers
	}
	return result
}
