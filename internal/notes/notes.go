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

// Package notes turns raw one-line commit summaries into changelog
// entries: it parses the pull request number out of each subject,
// attributes the commit to the extension packages it touched, and renders
// the grouped Markdown section.
package notes

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/forcedotcom/sfdx-changelog/internal/config"
)

// CommitRecord is one parsed commit unique to the current release branch.
// Records are immutable once built.
type CommitRecord struct {
	// PRNumber is the pull request number from the "(#NNN)" subject suffix.
	PRNumber int

	// CommitID is the short hash leading the log line.
	CommitID string

	// Message is the commit subject with the commit id and PR suffix
	// removed.
	Message string

	// Files holds the repository-relative paths the commit touched.
	Files []string

	// Packages holds the extension packages attributed to the commit, in
	// first-seen order. Empty when no changed file maps to a recognized
	// package; such records contribute no changelog line.
	Packages []string
}

var (
	prPattern     = regexp.MustCompile(`\(#(\d+)\)\s*$`)
	commitPattern = regexp.MustCompile(`^[0-9a-zA-Z]+`)
)

// ParseCommit parses one "<commitId> <subject>" log line. Commits without
// a trailing pull request suffix or a leading commit id are intentionally
// excluded from the changelog: ok is false and the line should be skipped.
func ParseCommit(line string) (CommitRecord, bool) {
	pr := prPattern.FindStringSubmatch(line)
	id := commitPattern.FindString(line)
	if pr == nil || id == "" {
		return CommitRecord{}, false
	}
	num, err := strconv.Atoi(pr[1])
	if err != nil {
		return CommitRecord{}, false
	}

	message := strings.Replace(line, pr[0], "", 1)
	message = strings.Replace(message, id, "", 1)
	return CommitRecord{
		PRNumber: num,
		CommitID: id,
		Message:  strings.TrimSpace(message),
	}, true
}

// Attribute maps changed file paths to extension package names, in order
// of first appearance. Paths under images/ or test/ segments are ignored;
// the remaining paths contribute their first segment after the packages
// directory, kept only when it carries the product prefix or is the docs
// package.
func Attribute(files []string, cfg *config.Config) []string {
	var packages []string
	seen := make(map[string]bool)
	for _, file := range files {
		if strings.Contains(file, "/images/") || strings.Contains(file, "/test/") {
			continue
		}
		rel := strings.TrimPrefix(file, cfg.PackagesDir+"/")
		segment, _, _ := strings.Cut(rel, "/")
		if segment == "" {
			continue
		}
		if !strings.HasPrefix(segment, cfg.PackagePrefix) && segment != cfg.DocsPackage {
			continue
		}
		if !seen[segment] {
			seen[segment] = true
			packages = append(packages, segment)
		}
	}
	return packages
}

// Collapse applies the core package policy: core changes are cross-cutting,
// so when the core package is present every other package is dropped except
// docs, which is independently interesting.
func Collapse(packages []string, cfg *config.Config) []string {
	if !slices.Contains(packages, cfg.CorePackage) {
		return packages
	}
	collapsed := []string{cfg.CorePackage}
	if slices.Contains(packages, cfg.DocsPackage) {
		collapsed = append(collapsed, cfg.DocsPackage)
	}
	return collapsed
}

// Recorded reports whether the pull request already appears in the
// changelog content. The check is a literal substring search, which makes
// re-runs idempotent.
func Recorded(changelog string, prNumber int) bool {
	return strings.Contains(changelog, fmt.Sprintf("PR #%d", prNumber))
}
