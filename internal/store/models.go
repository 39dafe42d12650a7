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

package store

import "encoding/json"

// Site is a website whose sitemaps have been extracted at least once
type Site struct {
	ID        uint   `gorm:"primaryKey"`
	URL       string `gorm:"uniqueIndex;not null"` // Base URL as given to the extractor
	Runs      []Run  `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	CreatedAt int64  `gorm:"autoCreateTime"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

// Run is one extraction of a site
type Run struct {
	ID               string          `gorm:"primaryKey"` // UUID
	SiteID           uint            `gorm:"not null;index"`
	StartedAt        int64           `gorm:"not null;index"` // Unix milliseconds
	DurationMs       int64           `gorm:"not null"`
	RobotsURL        string          `gorm:"type:text"`
	RobotsStatus     string          `gorm:"not null"` // "ok", "transport" or "status"
	RobotsStatusCode int             `gorm:"default:0"`
	SitemapCount     int             `gorm:"not null"` // Sitemaps declared in robots.txt
	TableCount       int             `gorm:"not null"` // Tables stored
	URLCount         int             `gorm:"not null"`
	Sitemaps         []SitemapRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	Site             *Site           `gorm:"foreignKey:SiteID"`
	CreatedAt        int64           `gorm:"autoCreateTime"`
}

// SitemapRecord is the outcome of one declared sitemap within a run
type SitemapRecord struct {
	ID          uint           `gorm:"primaryKey"`
	RunID       string         `gorm:"not null;index"`
	Position    int            `gorm:"not null"` // Order of the Sitemap: line in robots.txt
	Identifier  string         `gorm:"not null;index"`
	URL         string         `gorm:"not null"`
	Status      string         `gorm:"not null"` // ok, unreachable, malformed, filtered
	StatusCode  int            `gorm:"default:0"`
	Error       string         `gorm:"type:text"`
	ContentHash string         `gorm:"type:text;index"`
	Depth       int            `gorm:"default:0"`
	URLCount    int            `gorm:"default:0"`
	Unchanged   bool           `gorm:"default:false"` // Same digest as the previous run of the site
	URLs        []ExtractedURL `gorm:"foreignKey:SitemapRecordID;constraint:OnDelete:CASCADE"`
}

// ExtractedURL is one row of a stored table
type ExtractedURL struct {
	ID              uint   `gorm:"primaryKey"`
	SitemapRecordID uint   `gorm:"not null;index"`
	Position        int    `gorm:"not null"`
	URL             string `gorm:"not null"`
	Segments        string `gorm:"type:text"` // JSON array of Subdir values
}

// GetSegmentsArray deserializes the Segments JSON to []string
func (u *ExtractedURL) GetSegmentsArray() []string {
	if u.Segments == "" {
		return nil
	}
	var segments []string
	if err := json.Unmarshal([]byte(u.Segments), &segments); err != nil {
		return nil
	}
	return segments
}

// SetSegmentsArray serializes []string to JSON for Segments
func (u *ExtractedURL) SetSegmentsArray(segments []string) error {
	data, err := json.Marshal(segments)
	if err != nil {
		return err
	}
	u.Segments = string(data)
	return nil
}
