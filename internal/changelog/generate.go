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

package changelog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/forcedotcom/sfdx-changelog/internal/config"
	"github.com/forcedotcom/sfdx-changelog/internal/gitrepo"
	"github.com/forcedotcom/sfdx-changelog/internal/notes"
)

// Options are the invocation parameters of the generate command. Verbose
// is threaded through explicitly rather than held in package state.
type Options struct {
	// Release is an explicit version override; empty selects the newest
	// release branch.
	Release string

	// RepoDir is the repository root.
	RepoDir string

	// ConfigPath is the changelog.yaml location; empty means the default
	// path in the repository root.
	ConfigPath string

	// Verbose echoes every git query and intermediate structure.
	Verbose bool
}

// runGenerate runs the full pipeline: resolve the current and previous
// release branches, list the commits unique to the current one, parse and
// attribute each commit, and prepend the rendered section to the
// changelog. A run that produces no new entries writes nothing.
func runGenerate(ctx context.Context, opts *Options) error {
	if opts.Verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(opts.RepoDir, "changelog.yaml")
	}
	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}

	repo, err := gitrepo.New(opts.RepoDir, cfg.Remote, cfg.BranchPrefix)
	if err != nil {
		return err
	}

	branches, err := repo.ReleaseBranches(ctx)
	if err != nil {
		return err
	}
	current, err := repo.CurrentBranch(branches, opts.Release)
	if err != nil {
		return err
	}
	previous, err := repo.PreviousBranch(current, branches)
	if err != nil {
		return err
	}
	slog.Info("comparing release branches", "current", current, "previous", previous)

	lines, err := repo.UniqueCommits(ctx, current, previous)
	if err != nil {
		return err
	}

	changelogPath := filepath.Join(opts.RepoDir, cfg.Changelog)
	existing, err := readChangelog(changelogPath)
	if err != nil {
		return err
	}

	records := collectRecords(repo, cfg, lines, existing)
	groups := notes.Group(records, cfg.PullRequestURL)
	slog.Debug("grouped entries", "packages", groups.Packages())

	version := repo.VersionOf(current)
	text, err := notes.Render(version, groups, existing)
	if err != nil {
		return err
	}
	if text == "" {
		slog.Info("no new changelog entries", "version", version)
		return nil
	}

	if err := notes.Prepend(changelogPath, text); err != nil {
		return err
	}
	slog.Info("changelog updated", "path", changelogPath, "entries", len(records))
	return nil
}

// collectRecords parses and attributes each raw commit line. Commits
// without a pull request, and pull requests already recorded in the
// changelog, are dropped silently.
func collectRecords(repo *gitrepo.Repo, cfg *config.Config, lines []string, existing string) []notes.CommitRecord {
	var records []notes.CommitRecord
	for _, line := range lines {
		rec, ok := notes.ParseCommit(line)
		if !ok {
			slog.Debug("skipping commit without pull request", "line", line)
			continue
		}

		files, err := repo.ChangedFiles(rec.CommitID)
		if err != nil {
			slog.Debug("no file listing for commit", "commit", rec.CommitID, "error", err)
		}
		rec.Files = files
		rec.Packages = notes.Collapse(notes.Attribute(files, cfg), cfg)

		if notes.Recorded(existing, rec.PRNumber) {
			slog.Debug("skipping recorded entry", "pr", rec.PRNumber)
			continue
		}

		slog.Debug("parsed commit", "commit", rec.CommitID, "pr", rec.PRNumber, "packages", rec.Packages)
		records = append(records, rec)
	}
	return records
}

// readChangelog returns the changelog content, or the empty string when
// the file does not exist yet.
func readChangelog(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read changelog: %w", err)
	}
	return string(data), nil
}
