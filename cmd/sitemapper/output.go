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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentberlin/sitemapper"
	"github.com/agentberlin/sitemapper/internal/log"
	"github.com/agentberlin/sitemapper/internal/store"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

const maxCellWidth = 60

// newLogger logs to stderr and, when logFile is set, to a rotated file too.
// The returned func flushes and closes the sinks.
func newLogger(level, logFile string) (*zap.Logger, func(), error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	plugins := []log.Plugin{log.NewStderrPlugin(lvl)}
	var closer io.Closer
	if logFile != "" {
		var plugin log.Plugin
		plugin, closer = log.NewFilePlugin(logFile, lvl)
		plugins = append(plugins, plugin)
	}

	logger := log.NewLogger(log.NewTee(plugins...))
	return logger, func() {
		_ = logger.Sync()
		if closer != nil {
			closer.Close()
		}
	}, nil
}

func printSummary(w io.Writer, ext *sitemapper.Extraction, run *store.Run) {
	if len(ext.Sitemaps) == 0 {
		return
	}

	rows := [][]string{{"Sitemap", "Status", "URLs", "Depth", "Changed"}}
	for i, r := range ext.Sitemaps {
		changed := "-"
		if run != nil && i < len(run.Sitemaps) && r.ContentHash != "" {
			changed = "yes"
			if run.Sitemaps[i].Unchanged {
				changed = "no"
			}
		}
		status := string(r.Status)
		if r.StatusCode != 0 && r.Status == sitemapper.SitemapUnreachable {
			status = fmt.Sprintf("%s (%d)", status, r.StatusCode)
		}
		rows = append(rows, []string{
			r.Identifier,
			status,
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.Depth),
			changed,
		})
	}

	fmt.Fprintln(w)
	writeTable(w, rows)
	if run != nil {
		fmt.Fprintf(w, "\nRun ID: %s\n", run.ID)
	}
}

// writeTable prints rows as aligned columns. The first row is the header.
// Widths are measured in terminal cells so CJK identifiers line up.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(truncate(row[i])))
		}
	}

	for r, row := range rows {
		var sb strings.Builder
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = truncate(row[i])
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))

		if r == 0 {
			total := 0
			for _, width := range widths {
				total += width
			}
			fmt.Fprintln(w, strings.Repeat("-", total+2*(len(widths)-1)))
		}
	}
}

func truncate(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "...")
}

// formatDuration formats a duration in milliseconds to a human-readable string
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := ms / 1000
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%ds", seconds/60, seconds%60)
}
