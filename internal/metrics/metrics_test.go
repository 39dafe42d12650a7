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

package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentberlin/sitemapper"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runWithRecorder(t *testing.T) *Recorder {
	t.Helper()
	mock := sitemapper.NewMockTransport()
	mock.RegisterText("http://test.local/robots.txt",
		"Sitemap: http://test.local/pages.xml\nSitemap: http://test.local/broken.xml\nSitemap: http://test.local/gone.xml\n")
	mock.RegisterXML("http://test.local/pages.xml",
		"<urlset><url><loc>http://test.local/a/b</loc></url><url><loc>http://test.local/c</loc></url></urlset>")
	mock.RegisterXML("http://test.local/broken.xml", "<urlset>")

	rec := NewRecorder()
	ex, err := sitemapper.NewExtractor("http://test.local", nil,
		sitemapper.WithTransport(mock),
		sitemapper.WithLogger(zap.NewNop()),
		sitemapper.WithObserver(rec))
	require.NoError(t, err)
	ex.Run(context.Background())
	return rec
}

func TestRecorder(t *testing.T) {
	rec := runWithRecorder(t)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.fetches.WithLabelValues("robots", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.fetches.WithLabelValues("sitemap", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.fetches.WithLabelValues("sitemap", "status")))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sitemaps.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sitemaps.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sitemaps.WithLabelValues("unreachable")))

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.urls))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.depth.WithLabelValues("pages")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.depth))
}

func TestWriteTextfile(t *testing.T) {
	rec := runWithRecorder(t)
	path := filepath.Join(t.TempDir(), "sitemapper.prom")

	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `sitemapper_urls_extracted_total 2`), text)
	assert.True(t, strings.Contains(text, `sitemapper_fetches_total{kind="robots",outcome="ok"} 1`), text)
	assert.True(t, strings.Contains(text, "sitemapper_fetch_duration_seconds_bucket"), text)
}
