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
	"strconv"
	"time"

	"github.com/agentberlin/sitemapper/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "history <url>",
		Short: "List previous extraction runs of a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			urlStr := normalizeURL(args[0])
			runs, err := st.ListRuns(urlStr, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs found for %s.\n", urlStr)
				return nil
			}

			rows := [][]string{{"Run ID", "Started", "Duration", "Robots", "Sitemaps", "Tables", "URLs"}}
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					time.UnixMilli(r.StartedAt).Format("2006-01-02 15:04"),
					formatDuration(r.DurationMs),
					r.RobotsStatus,
					strconv.Itoa(r.SitemapCount),
					strconv.Itoa(r.TableCount),
					strconv.Itoa(r.URLCount),
				})
			}
			writeTable(out, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show (0 = all)")
	cmd.Flags().StringVar(&dbPath, "db", "", "History database path (default ~/.sitemapper/sitemapper.db)")
	return cmd
}

// openStore opens dbPath, or the default database when it is empty.
func openStore(dbPath string) (*store.Store, error) {
	var (
		st  *store.Store
		err error
	)
	if dbPath != "" {
		st, err = store.NewStoreWithPath(dbPath)
	} else {
		st, err = store.NewStore()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return st, nil
}
