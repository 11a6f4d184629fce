// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for gist-comments with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxPerPage is the largest page size the GitHub REST API accepts.
const maxPerPage = 100

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .gist-comments.yaml (current directory)
//   - .gist-comments.yml (current directory)
//   - ~/.gist-comments/config.yaml
//   - ~/.gist-comments/config.yml
//
// Environment variables are applied after loading the config file. The cache
// directory has ~ and environment variables expanded.
//
// Returns an error if the specified config file cannot be loaded or an
// environment override cannot be parsed, but succeeds with defaults if no
// config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".gist-comments.yaml",
			".gist-comments.yml",
			filepath.Join(os.Getenv("HOME"), ".gist-comments", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".gist-comments", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"GIST_COMMENTS_CONCURRENCY", &cfg.Fetch.Concurrency},
		{"GIST_COMMENTS_PER_PAGE", &cfg.Fetch.PerPage},
		{"GIST_COMMENTS_MAX_RETRIES", &cfg.Fetch.MaxRetries},
	}
	for _, o := range ints {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := parseNonNegativeInt(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", o.env, err)
		}
		*o.dst = n
	}

	if timeout := os.Getenv("GIST_COMMENTS_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid GIST_COMMENTS_TIMEOUT: %w", err)
		}
		cfg.Fetch.Timeout = d
	}

	if dir := os.Getenv("GIST_COMMENTS_CACHE_DIR"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if noCache := os.Getenv("GIST_COMMENTS_NO_CACHE"); noCache != "" {
		cfg.Cache.Disabled = parseBool(noCache)
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parseNonNegativeInt parses a string to an integer >= 0
func parseNonNegativeInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("value must not be negative, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Validate checks if the configuration contains valid values. This should be
// called after loading configuration and applying flag overrides.
func (c *Config) Validate() error {
	if c.GitHub.APIEndpoint == "" {
		return fmt.Errorf("GitHub API endpoint cannot be empty")
	}
	if c.Fetch.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got: %d", c.Fetch.Concurrency)
	}
	if c.Fetch.PerPage < 0 || c.Fetch.PerPage > maxPerPage {
		return fmt.Errorf("per_page %d is outside the GitHub API range 1-%d (0 for default)", c.Fetch.PerPage, maxPerPage)
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got: %d", c.Fetch.MaxRetries)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got: %s", c.Fetch.Timeout)
	}
	if c.Cache.GistsFile == "" || c.Cache.CommentsFile == "" {
		return fmt.Errorf("cache file names cannot be empty")
	}
	return nil
}
