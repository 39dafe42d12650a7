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

// sitemapper CLI
//
// Extracts the URLs listed in the sitemaps a website declares in its
// robots.txt and writes one CSV table per sitemap.
//
// Usage:
//
//	sitemapper <command> [flags]
//
// Commands:
//
//	extract   Extract sitemaps of a website into CSV files
//	history   List previous extraction runs of a website
//	version   Show version information
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sitemapper",
		Short:         "Sitemap URL extractor for SEO audits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newExtractCmd(), newHistoryCmd(), newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
