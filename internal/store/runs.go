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

import (
	"errors"
	"fmt"

	"github.com/agentberlin/sitemapper"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const urlBatchSize = 500

// GetOrCreateSite gets or creates a site by base URL
func (s *Store) GetOrCreateSite(siteURL string) (*Site, error) {
	var site Site
	result := s.db.Where("url = ?", siteURL).First(&site)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		site = Site{URL: siteURL}
		if err := s.db.Create(&site).Error; err != nil {
			return nil, fmt.Errorf("failed to create site: %w", err)
		}
		return &site, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get site: %w", result.Error)
	}
	return &site, nil
}

func (s *Store) findSite(siteURL string) (*Site, error) {
	var site Site
	err := s.db.Where("url = ?", siteURL).First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// SaveExtraction records ext as a new run of its site. Each sitemap whose
// digest equals the latest stored digest for the same identifier is marked
// Unchanged.
func (s *Store) SaveExtraction(ext *sitemapper.Extraction) (*Run, error) {
	site, err := s.GetOrCreateSite(ext.BaseURL)
	if err != nil {
		return nil, err
	}

	robotsStatus := "ok"
	if !ext.Robots.Fetched {
		robotsStatus = string(ext.Robots.Failure)
	}
	run := &Run{
		ID:               uuid.NewString(),
		SiteID:           site.ID,
		StartedAt:        ext.StartedAt.UnixMilli(),
		DurationMs:       ext.Duration.Milliseconds(),
		RobotsURL:        ext.Robots.URL,
		RobotsStatus:     robotsStatus,
		RobotsStatusCode: ext.Robots.StatusCode,
		SitemapCount:     len(ext.Robots.Sitemaps),
		TableCount:       ext.Len(),
		URLCount:         ext.URLCount(),
	}

	// A repeated identifier replaces the earlier table, so the rows belong
	// to the last report that produced it.
	owner := make(map[string]int)
	for i, report := range ext.Sitemaps {
		if report.Status == sitemapper.SitemapOK || report.Status == sitemapper.SitemapMalformed {
			owner[report.Identifier] = i
		}
	}

	records := make([]SitemapRecord, len(ext.Sitemaps))
	for i, report := range ext.Sitemaps {
		rec := SitemapRecord{
			RunID:       run.ID,
			Position:    i,
			Identifier:  report.Identifier,
			URL:         report.URL,
			Status:      string(report.Status),
			StatusCode:  report.StatusCode,
			ContentHash: report.ContentHash,
		}
		if report.Err != nil {
			rec.Error = report.Err.Error()
		}
		if report.ContentHash != "" {
			previous, err := s.LatestContentHash(ext.BaseURL, report.Identifier)
			if err != nil {
				return nil, err
			}
			rec.Unchanged = previous == report.ContentHash
		}
		if j, ok := owner[report.Identifier]; ok && j == i {
			rec.Depth = report.Depth
			rec.URLCount = report.Rows
		}
		records[i] = rec
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return fmt.Errorf("failed to create sitemap record: %w", err)
			}
			if j, ok := owner[records[i].Identifier]; !ok || j != i {
				continue
			}
			table, ok := ext.Get(records[i].Identifier)
			if !ok || table.Len() == 0 {
				continue
			}
			urls, err := tableRows(records[i].ID, table)
			if err != nil {
				return err
			}
			if err := tx.CreateInBatches(urls, urlBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save extracted URLs: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	run.Sitemaps = records
	return run, nil
}

func tableRows(recordID uint, table *sitemapper.URLTable) ([]ExtractedURL, error) {
	urls := make([]ExtractedURL, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		var segments []string
		for _, c := range row.Cells {
			if c.Set {
				segments = append(segments, c.Value)
			}
		}
		urls[i] = ExtractedURL{SitemapRecordID: recordID, Position: i, URL: row.URL}
		if err := urls[i].SetSegmentsArray(segments); err != nil {
			return nil, err
		}
	}
	return urls, nil
}

// ListRuns returns the runs of siteURL, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(siteURL string, limit int) ([]Run, error) {
	site, err := s.findSite(siteURL)
	if err != nil || site == nil {
		return nil, err
	}

	var runs []Run
	db := s.db.Where("site_id = ?", site.ID).Order("started_at DESC").Order("created_at DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun gets a run by ID
func (s *Store) GetRun(runID string) (*Run, error) {
	var run Run
	if err := s.db.Where("id = ?", runID).First(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// GetRunSitemaps returns the sitemap records of a run in robots.txt order
func (s *Store) GetRunSitemaps(runID string) ([]SitemapRecord, error) {
	var records []SitemapRecord
	if err := s.db.Where("run_id = ?", runID).Order("position ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get run sitemaps: %w", err)
	}
	return records, nil
}

// GetSitemapURLs returns the stored rows of a sitemap record in table order
func (s *Store) GetSitemapURLs(recordID uint) ([]ExtractedURL, error) {
	var urls []ExtractedURL
	if err := s.db.Where("sitemap_record_id = ?", recordID).Order("position ASC").Find(&urls).Error; err != nil {
		return nil, fmt.Errorf("failed to get sitemap URLs: %w", err)
	}
	return urls, nil
}

// LatestContentHash returns the most recent non-empty digest stored for
// identifier on siteURL, or "" if there is none.
func (s *Store) LatestContentHash(siteURL, identifier string) (string, error) {
	site, err := s.findSite(siteURL)
	if err != nil || site == nil {
		return "", err
	}

	var rec SitemapRecord
	err = s.db.Joins("JOIN runs ON runs.id = sitemap_records.run_id").
		Where("runs.site_id = ? AND sitemap_records.identifier = ? AND sitemap_records.content_hash <> ''", site.ID, identifier).
		Order("runs.started_at DESC").
		Order("sitemap_records.id DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest content hash: %w", err)
	}
	return rec.ContentHash, nil
}

// DeleteRun deletes a run with its sitemap records and URLs
func (s *Store) DeleteRun(runID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&SitemapRecord{}).Select("id").Where("run_id = ?", runID)
		if err := tx.Where("sitemap_record_id IN (?)", sub).Delete(&ExtractedURL{}).Error; err != nil {
			return fmt.Errorf("failed to delete extracted URLs: %w", err)
		}
		if err := tx.Where("run_id = ?", runID).Delete(&SitemapRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete sitemap records: %w", err)
		}
		result := tx.Where("id = ?", runID).Delete(&Run{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete run: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}
