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

package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/agentberlin/sitemapper"
	"github.com/agentberlin/sitemapper/internal/metrics"
	"github.com/agentberlin/sitemapper/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// extractFlags holds all the flags for the extract command
type extractFlags struct {
	// Core options
	configFile    string
	userAgent     string
	timeout       time.Duration
	include       []string
	detectCharset bool

	// Output
	output        string
	sanitizeNames bool
	auditAgent    string
	metricsFile   string

	// History
	dbPath    string
	noHistory bool

	// Logging
	logLevel string
	logFile  string
}

func newExtractCmd() *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract sitemaps of a website into CSV files",
		Long: `Fetch <url>/robots.txt, download every sitemap it declares and write
one <identifier>.csv per sitemap with the columns ExtractedURLs, Subdir_1..N.`,
		Example: `  # Basic extraction into ./extracted_sitemaps
  sitemapper extract https://example.com

  # Only blog sitemaps, and list URLs that Googlebot may not crawl
  sitemapper extract https://example.com --include '*blog*' --audit-agent Googlebot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], &flags)
		},
	}

	bindExtractFlags(cmd, &flags)
	return cmd
}

func bindExtractFlags(cmd *cobra.Command, flags *extractFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	fs.StringVarP(&flags.userAgent, "user-agent", "A", "", "Custom User-Agent string")
	fs.DurationVar(&flags.timeout, "timeout", 0, "Per-request timeout (0 = none)")
	fs.StringArrayVar(&flags.include, "include", nil, "Only process sitemap URLs matching this glob (repeatable)")
	fs.BoolVar(&flags.detectCharset, "detect-charset", true, "Transcode robots.txt and sitemaps that are not UTF-8")
	fs.StringVarP(&flags.output, "out", "o", "", "Output directory (default \"extracted_sitemaps\")")
	fs.BoolVar(&flags.sanitizeNames, "sanitize-names", false, "Sanitize sitemap identifiers before using them as file names")
	fs.StringVar(&flags.auditAgent, "audit-agent", "", "List extracted URLs that robots.txt disallows for this agent")
	fs.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.StringVar(&flags.dbPath, "db", "", "History database path (default ~/.sitemapper/sitemapper.db)")
	fs.BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history database")
	fs.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&flags.logFile, "log-file", "", "Also write logs to this file (rotated)")
}

func runExtract(cmd *cobra.Command, urlStr string, flags *extractFlags) error {
	out := cmd.OutOrStdout()
	urlStr = normalizeURL(urlStr)

	logger, closeLog, err := newLogger(flags.logLevel, flags.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	config, err := buildConfig(cmd, flags)
	if err != nil {
		return err
	}

	opts := []sitemapper.Option{sitemapper.WithLogger(logger)}
	var recorder *metrics.Recorder
	if flags.metricsFile != "" {
		recorder = metrics.NewRecorder()
		opts = append(opts, sitemapper.WithObserver(recorder))
	}

	extractor, err := sitemapper.NewExtractor(urlStr, config, opts...)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Extracting sitemaps for %s...\n", urlStr)
	ext := extractor.Run(ctx)

	if !ext.Robots.Fetched {
		fmt.Fprintf(out, "Could not fetch %s: %v\n", ext.Robots.URL, ext.Robots.Err)
	}

	outputDir := flags.output
	if outputDir == "" {
		outputDir = extractor.Config().OutputDir
	}
	if err := ext.SaveCSV(outputDir); err != nil {
		return fmt.Errorf("failed to save CSV files: %w", err)
	}

	var run *store.Run
	if !flags.noHistory {
		run, err = saveHistory(flags.dbPath, ext)
		if err != nil {
			// the CSV files are already on disk
			logger.Warn("failed to record run history", zap.Error(err))
		}
	}

	printSummary(out, ext, run)
	fmt.Fprintf(out, "\n%d tables, %d URLs written to %s in %s\n",
		ext.Len(), ext.URLCount(), outputDir, ext.Duration.Round(time.Millisecond))

	if flags.auditAgent != "" {
		if err := printBlocked(out, ext, flags.auditAgent); err != nil {
			logger.Warn("robots audit skipped", zap.Error(err))
		}
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(flags.metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// buildConfig layers the config file (if any) and explicitly set flags.
func buildConfig(cmd *cobra.Command, flags *extractFlags) (*sitemapper.Config, error) {
	config := sitemapper.NewDefaultConfig()
	if flags.configFile != "" {
		loaded, err := sitemapper.LoadConfigFile(flags.configFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	changed := cmd.Flags().Changed
	if flags.userAgent != "" {
		config.HTTP.UserAgent = flags.userAgent
	}
	if changed("timeout") {
		config.HTTP.RequestTimeout = flags.timeout
	}
	if len(flags.include) > 0 {
		config.SitemapGlobs = flags.include
	}
	if flags.configFile == "" || changed("detect-charset") {
		config.HTTP.DetectCharset = flags.detectCharset
	}
	if flags.sanitizeNames {
		config.SanitizeFileNames = true
	}
	return config, nil
}

func saveHistory(dbPath string, ext *sitemapper.Extraction) (*store.Run, error) {
	st, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.SaveExtraction(ext)
}

func printBlocked(w io.Writer, ext *sitemapper.Extraction, agent string) error {
	blocked, err := ext.BlockedURLs(agent)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d URLs disallowed for %s by robots.txt\n", len(blocked), agent)
	if len(blocked) == 0 {
		return nil
	}
	rows := [][]string{{"Sitemap", "URL"}}
	for _, b := range blocked {
		rows = append(rows, []string{b.Identifier, b.URL})
	}
	writeTable(w, rows)
	return nil
}

// normalizeURL adds a scheme when missing, the same way a browser would.
func normalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}
	return urlStr
}
