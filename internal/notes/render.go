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

package notes

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/cbroglie/mustache"
)

//go:embed section.mustache
var sectionTemplate string

// Groups maps package names to their rendered entry lines, preserving the
// order in which packages were first seen during grouping.
type Groups struct {
	order   []string
	entries map[string][]string
}

// Group builds the package groups for a record list. Each record
// contributes one entry line per attributed package; records with no
// attributed packages contribute nothing.
func Group(records []CommitRecord, pullRequestURL string) *Groups {
	g := &Groups{entries: make(map[string][]string)}
	for _, rec := range records {
		line := fmt.Sprintf("\n- %s ([PR #%d](%s/%d))\n", rec.Message, rec.PRNumber, pullRequestURL, rec.PRNumber)
		for _, pkg := range rec.Packages {
			if _, ok := g.entries[pkg]; !ok {
				g.order = append(g.order, pkg)
			}
			g.entries[pkg] = append(g.entries[pkg], line)
		}
	}
	return g
}

// Empty reports whether no package received an entry.
func (g *Groups) Empty() bool {
	return len(g.order) == 0
}

// Packages returns the grouped package names in first-seen order.
func (g *Groups) Packages() []string {
	return g.order
}

// Header renders the section header for a release version. A changelog
// that does not yet mention the version gets a fresh top-level section
// with a placeholder date and empty Fixed/Added subsections for manual
// curation; otherwise a marker line flags the entries for review.
func Header(version, changelog string) (string, error) {
	if strings.Contains(changelog, version) {
		return fmt.Sprintf("# Additional entries to review for %s:\n", version), nil
	}
	return mustache.Render(sectionTemplate, map[string]string{"version": version})
}

// Render produces the Markdown section to prepend to the changelog:
// header, then one "#### <package>" subsection per group in first-seen
// order. An empty group set renders to the empty string and the caller
// must skip the write.
func Render(version string, groups *Groups, changelog string) (string, error) {
	if groups.Empty() {
		return "", nil
	}

	header, err := Header(version, changelog)
	if err != nil {
		return "", fmt.Errorf("failed to render section header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	for _, pkg := range groups.order {
		fmt.Fprintf(&buf, "\n#### %s\n", pkg)
		for _, line := range groups.entries[pkg] {
			buf.WriteString(line)
		}
	}
	buf.WriteString("\n")
	return buf.String(), nil
}

// Prepend inserts text at the top of the changelog file, leaving the
// existing content unchanged. A missing file is created.
func Prepend(path, text string) error {
	old, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read changelog: %w", err)
	}

	content := append([]byte(text), old...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	return nil
}
