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

// Package config types define the configuration structures used throughout
// gist-comments. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for gist-comments.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Cache  CacheConfig  `yaml:"cache"`
}

// GitHubConfig contains the API endpoint and the name of the environment
// variable holding the token. Point APIEndpoint at
// https://HOST/api/v3 for GitHub Enterprise.
type GitHubConfig struct {
	APIEndpoint string `yaml:"api_endpoint"`
	TokenEnv    string `yaml:"token_env"`
}

// FetchConfig controls how live fetches talk to the API.
type FetchConfig struct {
	// Concurrency caps simultaneous comment fetches; 0 means unlimited.
	Concurrency int `yaml:"concurrency"`
	// PerPage is sent as per_page; 0 leaves the API default.
	PerPage int `yaml:"per_page"`
	// MaxRetries is the number of retries for transient failures.
	MaxRetries int `yaml:"max_retries"`
	// Timeout bounds a whole live fetch; 0 means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig locates the cache files.
type CacheConfig struct {
	Dir          string `yaml:"dir"`
	GistsFile    string `yaml:"gists_file"`
	CommentsFile string `yaml:"comments_file"`
	// Disabled skips writing the cache after a live fetch.
	Disabled bool `yaml:"disabled"`
}

// DefaultConfig returns the built-in defaults: public GitHub, unlimited
// concurrency, no retries and the cache in the current directory.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint: "https://api.github.com",
			TokenEnv:    "GITHUB_TOKEN",
		},
		Fetch: FetchConfig{},
		Cache: CacheConfig{
			Dir:          ".",
			GistsFile:    "gists.json",
			CommentsFile: "comments.json",
		},
	}
}
