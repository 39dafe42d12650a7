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

// Package metrics exposes extraction progress as Prometheus metrics.
package metrics

import (
	"github.com/agentberlin/sitemapper"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitemapper"

// Recorder implements sitemapper.Observer on a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	sitemaps      *prometheus.CounterVec
	urls          prometheus.Counter
	depth         *prometheus.GaugeVec
}

var _ sitemapper.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with its metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "HTTP fetches by kind (robots, sitemap) and outcome (ok, transport, status, too_large).",
		}, []string{"kind", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of HTTP fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		sitemaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemaps_total",
			Help:      "Declared sitemaps by processing status.",
		}, []string{"status"}),
		urls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "urls_extracted_total",
			Help:      "URLs extracted from sitemaps.",
		}),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_depth",
			Help:      "Number of Subdir columns of the last table built for a sitemap.",
		}, []string{"sitemap"}),
	}
	r.registry.MustRegister(r.fetches, r.fetchDuration, r.sitemaps, r.urls, r.depth)
	return r
}

// ObserveFetch implements sitemapper.Observer
func (r *Recorder) ObserveFetch(kind string, result *sitemapper.FetchResult) {
	r.fetches.WithLabelValues(kind, result.Outcome()).Inc()
	r.fetchDuration.WithLabelValues(kind).Observe(result.Duration.Seconds())
}

// ObserveSitemap implements sitemapper.Observer
func (r *Recorder) ObserveSitemap(report sitemapper.SitemapReport) {
	r.sitemaps.WithLabelValues(string(report.Status)).Inc()
	if report.Status != sitemapper.SitemapOK {
		return
	}
	r.urls.Add(float64(report.Rows))
	r.depth.WithLabelValues(report.Identifier).Set(float64(report.Depth))
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics in text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
