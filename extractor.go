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

// Package sitemapper discovers the sitemaps a website declares in its
// robots.txt, extracts every <loc> URL from them and decomposes each URL
// into path segments (Subdir_1 .. Subdir_N) for structure and SEO audits.
//
// Usage:
//
//	ex, err := sitemapper.NewExtractor("https://example.com", nil)
//	if err != nil {
//		return err
//	}
//	result := ex.Run(ctx)
//	err = result.SaveCSV("extracted_sitemaps")
package sitemapper

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	sitelog "github.com/agentberlin/sitemapper/internal/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Observer is notified as a run progresses. internal/metrics implements it.
type Observer interface {
	// ObserveFetch is called after every fetch; kind is "robots" or "sitemap"
	ObserveFetch(kind string, result *FetchResult)
	// ObserveSitemap is called once per declared sitemap
	ObserveSitemap(report SitemapReport)
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithClient replaces the HTTP client.
func WithClient(client *http.Client) Option {
	return func(e *Extractor) {
		e.client = client
	}
}

// WithTransport replaces the transport of the HTTP client.
func WithTransport(transport http.RoundTripper) Option {
	return func(e *Extractor) {
		e.transport = transport
	}
}

// WithObserver registers an observer for fetch and sitemap events.
func WithObserver(o Observer) Option {
	return func(e *Extractor) {
		e.observer = o
	}
}

// Extractor runs the robots.txt → sitemap → table pipeline for one website.
// Construction only records configuration; Run does the work and may be
// called again to retry.
type Extractor struct {
	baseURL   string
	config    *Config
	fetcher   *Fetcher
	filter    *SitemapFilter
	logger    *zap.Logger
	observer  Observer
	client    *http.Client
	transport http.RoundTripper
}

// NewExtractor creates an Extractor for baseURL. config is merged over
// NewDefaultConfig and SITEMAPPER_* environment variables are applied last.
func NewExtractor(baseURL string, config *Config, opts ...Option) (*Extractor, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}

	e := &Extractor{baseURL: baseURL}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = sitelog.NewLogger(sitelog.NewStderrPlugin(zapcore.InfoLevel))
	}

	e.config = mergeConfig(config)
	applyEnv(e.config, os.Environ(), e.logger)
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	filter, err := NewSitemapFilter(e.config.SitemapGlobs)
	if err != nil {
		return nil, err
	}
	e.filter = filter

	e.fetcher = NewFetcher(e.config.HTTP, e.logger)
	if e.client != nil {
		e.fetcher.SetClient(e.client)
	}
	if e.transport != nil {
		e.fetcher.WithTransport(e.transport)
	}
	return e, nil
}

// BaseURL returns the website this extractor targets.
func (e *Extractor) BaseURL() string {
	return e.baseURL
}

// Config returns the effective configuration.
func (e *Extractor) Config() *Config {
	return e.config
}

// RobotsURL is <base>/robots.txt.
func (e *Extractor) RobotsURL() string {
	return strings.TrimSuffix(e.baseURL, "/") + "/robots.txt"
}

// Run fetches robots.txt, then every sitemap it declares, and returns the
// resulting tables. Fetch failures never abort the run: a missing robots.txt
// yields an empty extraction, and an unreachable, oversized or empty sitemap
// is skipped. The
// report on the returned Extraction tells these cases apart.
func (e *Extractor) Run(ctx context.Context) *Extraction {
	ext := NewExtraction(e.baseURL)
	ext.SetSanitizeFileNames(e.config.SanitizeFileNames)
	ext.StartedAt = time.Now()
	defer func() {
		ext.Duration = time.Since(ext.StartedAt)
	}()

	robotsURL := e.RobotsURL()
	e.logger.Info("fetching robots.txt", zap.String("url", robotsURL))
	res := e.fetcher.Fetch(ctx, robotsURL)
	e.observeFetch("robots", res)

	ext.Robots = RobotsReport{
		URL:        robotsURL,
		Fetched:    res.OK(),
		StatusCode: res.StatusCode,
		Failure:    res.Failure,
		Err:        res.Err,
	}
	if !res.OK() {
		return ext
	}

	text := decodeText(res.Body, res.Headers.Get("Content-Type"), e.config.HTTP.DetectCharset)
	if policy, err := ParseRobotsPolicy([]byte(text)); err != nil {
		e.logger.Debug("robots.txt rules unavailable", zap.Error(err))
	} else {
		ext.policy = policy
	}

	ext.Robots.Sitemaps = ScanSitemapDirectives(text)
	e.logger.Info("sitemaps declared", zap.Int("count", len(ext.Robots.Sitemaps)))

	for _, sitemapURL := range ext.Robots.Sitemaps {
		ext.Sitemaps = append(ext.Sitemaps, e.processSitemap(ctx, ext, sitemapURL))
	}

	e.logger.Info("extraction finished",
		zap.String("site", e.baseURL),
		zap.Int("tables", ext.Len()),
		zap.Int("urls", ext.URLCount()),
	)
	return ext
}

func (e *Extractor) processSitemap(ctx context.Context, ext *Extraction, sitemapURL string) SitemapReport {
	start := time.Now()
	report := SitemapReport{URL: sitemapURL, Identifier: SitemapIdentifier(sitemapURL)}
	defer func() {
		report.Duration = time.Since(start)
		if e.observer != nil {
			e.observer.ObserveSitemap(report)
		}
	}()

	if !e.filter.Match(sitemapURL) {
		report.Status = SitemapFiltered
		e.logger.Debug("sitemap filtered out", zap.String("url", sitemapURL))
		return report
	}

	res := e.fetcher.Fetch(ctx, sitemapURL)
	e.observeFetch("sitemap", res)
	report.StatusCode = res.StatusCode
	if !res.OK() {
		report.Status = SitemapUnreachable
		if res.Failure == FailureTooLarge {
			report.Status = SitemapTooLarge
		}
		report.Err = res.Err
		return report
	}
	if len(bytes.TrimSpace(res.Body)) == 0 {
		report.Status = SitemapEmpty
		e.logger.Warn("sitemap has no content", zap.String("url", sitemapURL))
		return report
	}

	locations, err := ParseSitemapLocations(res.Body)
	if err != nil {
		report.Status = SitemapMalformed
		report.Err = err
		e.logger.Warn("sitemap is not well-formed XML", zap.String("url", sitemapURL), zap.Error(err))
	} else {
		report.Status = SitemapOK
	}

	if hash, err := DigestLocations(locations, e.config.ContentHashAlgorithm); err == nil {
		report.ContentHash = hash
	}

	table := BuildURLTable(locations, e.baseURL)
	if _, exists := ext.Get(report.Identifier); exists {
		e.logger.Warn("sitemap identifier collision, replacing earlier table",
			zap.String("identifier", report.Identifier), zap.String("url", sitemapURL))
	}
	ext.Put(report.Identifier, table)
	report.Rows = table.Len()
	report.Depth = table.Depth()

	e.logger.Info("sitemap processed",
		zap.String("identifier", report.Identifier),
		zap.Int("urls", report.Rows),
		zap.Int("depth", report.Depth),
	)
	return report
}

func (e *Extractor) observeFetch(kind string, res *FetchResult) {
	if e.observer != nil {
		e.observer.ObserveFetch(kind, res)
	}
}
