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
	"net/http"
	"net/http/httptrace"
	"time"

	"go.uber.org/zap"
)

// HTTPTrace records connection timings of one fetch.
type HTTPTrace struct {
	start, dnsStart, connect time.Time
	DNSDuration              time.Duration
	ConnectDuration          time.Duration
	FirstByteDuration        time.Duration
	ReusedConn               bool
}

func (ht *HTTPTrace) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(hostPort string) { ht.start = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) { ht.ReusedConn = info.Reused },
		DNSStart: func(httptrace.DNSStartInfo) { ht.dnsStart = time.Now() },
		DNSDone: func(httptrace.DNSDoneInfo) {
			ht.DNSDuration = time.Since(ht.dnsStart)
		},
		ConnectStart: func(network, addr string) { ht.connect = time.Now() },
		ConnectDone: func(network, addr string, err error) {
			ht.ConnectDuration = time.Since(ht.connect)
		},
		GotFirstResponseByte: func() {
			ht.FirstByteDuration = time.Since(ht.start)
		},
	}
}

// WithTrace returns req with this trace attached to its context.
func (ht *HTTPTrace) WithTrace(req *http.Request) *http.Request {
	return req.WithContext(httptrace.WithClientTrace(req.Context(), ht.clientTrace()))
}

func (ht *HTTPTrace) fields() []zap.Field {
	return []zap.Field{
		zap.Duration("dns", ht.DNSDuration),
		zap.Duration("connect", ht.ConnectDuration),
		zap.Duration("first_byte", ht.FirstByteDuration),
		zap.Bool("reused_conn", ht.ReusedConn),
	}
}
