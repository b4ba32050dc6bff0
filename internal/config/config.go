// Copyright 2026 Salesforce, Inc.
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

// Package config reads and writes the changelog.yaml configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete changelog.yaml configuration file.
// Every field is optional; missing fields fall back to the defaults for
// the Salesforce DX extensions repository.
type Config struct {
	// Remote is the git remote holding the release branches.
	Remote string `yaml:"remote,omitempty"`

	// BranchPrefix is the release branch prefix after the remote name,
	// e.g. "release/v". The full release prefix used for branch lookup
	// is "<remote>/<branch_prefix>".
	BranchPrefix string `yaml:"branch_prefix,omitempty"`

	// PackagesDir is the directory prefix stripped from changed file
	// paths before taking the attribution segment.
	PackagesDir string `yaml:"packages_dir,omitempty"`

	// PackagePrefix is the product prefix a path segment must carry to
	// count as an extension package.
	PackagePrefix string `yaml:"package_prefix,omitempty"`

	// CorePackage is the package whose changes are cross-cutting: when a
	// commit touches it, per-package attribution collapses to the core
	// package (plus docs).
	CorePackage string `yaml:"core_package,omitempty"`

	// DocsPackage is the documentation package. It always survives
	// attribution collapsing.
	DocsPackage string `yaml:"docs_package,omitempty"`

	// Changelog is the repository-relative path of the changelog file.
	Changelog string `yaml:"changelog,omitempty"`

	// PullRequestURL is the base URL for rendered pull request links.
	PullRequestURL string `yaml:"pull_request_url,omitempty"`
}

// Default returns the configuration for the Salesforce DX extensions
// repository.
func Default() *Config {
	return &Config{
		Remote:         "origin",
		BranchPrefix:   "release/v",
		PackagesDir:    "packages",
		PackagePrefix:  "salesforcedx",
		CorePackage:    "salesforcedx-vscode-core",
		DocsPackage:    "docs",
		Changelog:      "packages/salesforcedx-vscode/CHANGELOG.md",
		PullRequestURL: "https://github.com/forcedotcom/salesforcedx-vscode/pull",
	}
}

// Read loads the configuration from the given path. A missing file is not
// an error: it yields the defaults. Fields absent from the file fall back
// to their defaults as well.
func Read(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Write writes the configuration to the given path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills fields explicitly set to empty strings.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Remote == "" {
		c.Remote = def.Remote
	}
	if c.BranchPrefix == "" {
		c.BranchPrefix = def.BranchPrefix
	}
	if c.PackagesDir == "" {
		c.PackagesDir = def.PackagesDir
	}
	if c.PackagePrefix == "" {
		c.PackagePrefix = def.PackagePrefix
	}
	if c.CorePackage == "" {
		c.CorePackage = def.CorePackage
	}
	if c.DocsPackage == "" {
		c.DocsPackage = def.DocsPackage
	}
	if c.Changelog == "" {
		c.Changelog = def.Changelog
	}
	if c.PullRequestURL == "" {
		c.PullRequestURL = def.PullRequestURL
	}
}
