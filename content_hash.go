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
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// newLocationDigest returns the hash behind Config.ContentHashAlgorithm.
func newLocationDigest(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "xxhash", "":
		return xxhash.New(), nil
	case "md5":
		return md5.New(), nil
	case "sha256":
		return sha256.New(), nil
	}
	return nil, fmt.Errorf("unsupported content hash algorithm: %s (supported: xxhash, md5, sha256)", algorithm)
}

// DigestLocations fingerprints the ordered loc list of a sitemap. Hashing
// the extracted URLs rather than the raw body keeps lastmod churn and
// whitespace changes from marking a sitemap as changed. An empty list has
// the empty digest.
func DigestLocations(locations []string, algorithm string) (string, error) {
	h, err := newLocationDigest(algorithm)
	if err != nil {
		return "", err
	}
	if len(locations) == 0 {
		return "", nil
	}
	for _, loc := range locations {
		// newline-terminated so ["ab"] and ["a", "b"] differ
		io.WriteString(h, loc)
		io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
