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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "sitemapper/1.0 (+https://snake.blue)"

// DefaultOutputDir is the directory SaveCSV writes to when none is given.
const DefaultOutputDir = "extracted_sitemaps"

// envPrefix marks environment variables that override configuration.
const envPrefix = "SITEMAPPER_"

// DefaultMaxBodySize is the sitemap protocol's limit for an uncompressed
// sitemap file (50MB).
const DefaultMaxBodySize = 50 * 1024 * 1024

// HTTPConfig contains HTTP client configuration for the Extractor
type HTTPConfig struct {
	// UserAgent is the User-Agent string used by HTTP requests
	UserAgent string `yaml:"user_agent"`
	// Headers contains extra headers sent with every request
	Headers map[string]string `yaml:"headers"`
	// MaxBodySize is the limit of the decoded response body in bytes; larger
	// bodies fail with FailureTooLarge. 0 means unlimited. The default is
	// DefaultMaxBodySize.
	MaxBodySize int `yaml:"max_body_size"`
	// RequestTimeout bounds a single fetch. 0 leaves the http.Client default
	// (no timeout).
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// CacheDir specifies a location where GET responses are cached as files.
	// When it's not defined, caching is disabled.
	CacheDir string `yaml:"cache_dir"`
	// CacheExpiration sets the maximum age for cache files.
	CacheExpiration time.Duration `yaml:"cache_expiration"`
	// DetectCharset transcodes response bodies that are not valid UTF-8
	// using https://github.com/saintfish/chardet
	DetectCharset bool `yaml:"detect_charset"`
	// TraceHTTP records connect and first-byte durations on each FetchResult.
	TraceHTTP bool `yaml:"trace_http"`
}

// Config is the full configuration of an Extractor
type Config struct {
	HTTP *HTTPConfig `yaml:"http"`
	// SitemapGlobs restricts which sitemap URLs from robots.txt are fetched.
	// Empty means every declared sitemap is processed.
	SitemapGlobs []string `yaml:"sitemap_globs"`
	// SanitizeFileNames passes sitemap identifiers through sanitize.BaseName
	// before they are used as CSV file names.
	SanitizeFileNames bool `yaml:"sanitize_file_names"`
	// ContentHashAlgorithm digests each sitemap body ("xxhash", "md5", "sha256")
	ContentHashAlgorithm string `yaml:"content_hash_algorithm"`
	// OutputDir is where the CLI writes CSV files.
	OutputDir string `yaml:"output_dir"`
}

var envMap = map[string]func(*Config, string) error{
	"CACHE_DIR": func(c *Config, val string) error {
		c.HTTP.CacheDir = val
		return nil
	},
	"DETECT_CHARSET": func(c *Config, val string) error {
		c.HTTP.DetectCharset = isYesString(val)
		return nil
	},
	"MAX_BODY_SIZE": func(c *Config, val string) error {
		size, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		c.HTTP.MaxBodySize = size
		return nil
	},
	"REQUEST_TIMEOUT": func(c *Config, val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		c.HTTP.RequestTimeout = d
		return nil
	},
	"SANITIZE_FILE_NAMES": func(c *Config, val string) error {
		c.SanitizeFileNames = isYesString(val)
		return nil
	},
	"TRACE_HTTP": func(c *Config, val string) error {
		c.HTTP.TraceHTTP = isYesString(val)
		return nil
	},
	"USER_AGENT": func(c *Config, val string) error {
		c.HTTP.UserAgent = val
		return nil
	},
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{
			UserAgent:   DefaultUserAgent,
			MaxBodySize: DefaultMaxBodySize,
		},
		ContentHashAlgorithm: "xxhash",
		OutputDir:            DefaultOutputDir,
	}
}

// mergeConfig layers user over the defaults. Non-zero user values win,
// except MaxBodySize which is always taken from the user (0 = unlimited).
func mergeConfig(user *Config) *Config {
	merged := NewDefaultConfig()
	if user == nil {
		return merged
	}

	if user.HTTP != nil {
		if user.HTTP.UserAgent != "" {
			merged.HTTP.UserAgent = user.HTTP.UserAgent
		}
		if user.HTTP.Headers != nil {
			merged.HTTP.Headers = user.HTTP.Headers
		}
		merged.HTTP.MaxBodySize = user.HTTP.MaxBodySize
		if user.HTTP.RequestTimeout != 0 {
			merged.HTTP.RequestTimeout = user.HTTP.RequestTimeout
		}
		if user.HTTP.CacheDir != "" {
			merged.HTTP.CacheDir = user.HTTP.CacheDir
		}
		if user.HTTP.CacheExpiration != 0 {
			merged.HTTP.CacheExpiration = user.HTTP.CacheExpiration
		}
		if user.HTTP.DetectCharset {
			merged.HTTP.DetectCharset = true
		}
		if user.HTTP.TraceHTTP {
			merged.HTTP.TraceHTTP = true
		}
	}
	if len(user.SitemapGlobs) > 0 {
		merged.SitemapGlobs = append([]string(nil), user.SitemapGlobs...)
	}
	if user.SanitizeFileNames {
		merged.SanitizeFileNames = true
	}
	if user.ContentHashAlgorithm != "" {
		merged.ContentHashAlgorithm = user.ContentHashAlgorithm
	}
	if user.OutputDir != "" {
		merged.OutputDir = user.OutputDir
	}
	return merged
}

// Validate reports configuration values that would make a run fail.
func (c *Config) Validate() error {
	if c.HTTP == nil {
		return fmt.Errorf("http config is required")
	}
	if c.HTTP.MaxBodySize < 0 {
		return fmt.Errorf("max_body_size must not be negative")
	}
	if c.HTTP.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	for _, pattern := range c.SitemapGlobs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid sitemap glob %q: %w", pattern, err)
		}
	}
	if _, err := newLocationDigest(c.ContentHashAlgorithm); err != nil {
		return err
	}
	return nil
}

// LoadConfigFile reads a YAML config file on top of NewDefaultConfig.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := NewDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.HTTP == nil {
		config.HTTP = NewDefaultConfig().HTTP
	}
	return config, nil
}

// applyEnv overrides config fields from SITEMAPPER_* environment variables.
func applyEnv(c *Config, environ []string, logger *zap.Logger) {
	for _, e := range environ {
		if !strings.HasPrefix(e, envPrefix) {
			continue
		}
		key, val, _ := strings.Cut(e[len(envPrefix):], "=")
		f, ok := envMap[key]
		if !ok {
			logger.Debug("unknown environment variable", zap.String("name", envPrefix+key))
			continue
		}
		if err := f(c, val); err != nil {
			logger.Warn("ignoring invalid environment variable",
				zap.String("name", envPrefix+key), zap.Error(err))
		}
	}
}

func isYesString(s string) bool {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "y":
		return true
	}
	return false
}
