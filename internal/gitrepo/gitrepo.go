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

// Package gitrepo answers the three repository questions the generator
// needs: which release branches exist, which commits are unique to the
// current release, and which files each of those commits touched.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repo wraps one local clone of the extensions repository.
type Repo struct {
	// Dir is the repository root.
	Dir string

	// Remote is the git remote holding the release branches.
	Remote string

	// BranchPrefix is the release branch prefix after the remote name.
	BranchPrefix string

	repo *git.Repository
}

// New opens the repository at dir. The returned Repo issues branch and log
// queries through the git binary and reads commit objects in process.
func New(dir, remote, branchPrefix string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	return &Repo{
		Dir:          dir,
		Remote:       remote,
		BranchPrefix: branchPrefix,
		repo:         repo,
	}, nil
}

// ReleasePrefix returns the full remote-qualified release branch prefix,
// e.g. "origin/release/v".
func (r *Repo) ReleasePrefix() string {
	return r.Remote + "/" + r.BranchPrefix
}

// releasePattern matches a release branch name: two-digit major, one or two
// digit minor, numeric patch.
func (r *Repo) releasePattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(r.ReleasePrefix()) + `\d{2}\.\d{1,2}\.\d`)
}

// ReleaseBranches lists the remote release branches, newest first by
// creation date. It fails when no branch matches the release pattern.
func (r *Repo) ReleaseBranches(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "branch", "--remotes", "--list", r.ReleasePrefix()+"*", "--sort=-creatordate")
	if err != nil {
		return nil, err
	}

	branches := parseBranches(out, r.releasePattern())
	if len(branches) == 0 {
		return nil, fmt.Errorf("no release branches matching %q found on remote %s", r.BranchPrefix, r.Remote)
	}
	slog.Debug("listed release branches", "branches", branches)
	return branches, nil
}

// parseBranches extracts the branch names matching pattern from git branch
// output, preserving order.
func parseBranches(out string, pattern *regexp.Regexp) []string {
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || !pattern.MatchString(name) {
			continue
		}
		branches = append(branches, name)
	}
	return branches
}

// CurrentBranch resolves the release branch to generate entries for: the
// override version when given, otherwise the newest branch. The result
// must match the release pattern.
func (r *Repo) CurrentBranch(branches []string, override string) (string, error) {
	name := ""
	if override != "" {
		name = r.ReleasePrefix() + override
	} else if len(branches) > 0 {
		name = branches[0]
	}
	if !r.releasePattern().MatchString(name) {
		return "", fmt.Errorf("invalid release branch %q: expected %s<major>.<minor>.<patch>", name, r.ReleasePrefix())
	}
	return name, nil
}

// PreviousBranch returns the release branch immediately preceding current
// in the recency-ordered list. There is no first-release fallback: a
// current branch with nothing after it is an error.
func (r *Repo) PreviousBranch(current string, branches []string) (string, error) {
	for i, b := range branches {
		if b != current {
			continue
		}
		if i+1 >= len(branches) {
			return "", fmt.Errorf("no release branch precedes %q", current)
		}
		return branches[i+1], nil
	}
	return "", fmt.Errorf("release branch %q not found on remote %s", current, r.Remote)
}

// VersionOf returns the bare version number of a release branch name.
func (r *Repo) VersionOf(branch string) string {
	return strings.TrimPrefix(branch, r.ReleasePrefix())
}

// UniqueCommits returns the one-line summaries ("<commitId> <subject>") of
// the commits reachable from current but not previous, newest first. The
// comparison is cherry-pick aware: commits with equivalent patch content
// on both branches are excluded.
func (r *Repo) UniqueCommits(ctx context.Context, current, previous string) ([]string, error) {
	out, err := r.git(ctx, "log", "--cherry-pick", "--left-only", "--oneline", current+"..."+previous)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	slog.Debug("diffed release branches", "current", current, "previous", previous, "commits", len(lines))
	return lines, nil
}

// ChangedFiles returns the repository-relative paths touched by a commit,
// identified by its (short) id. An unknown id or an empty diff yields an
// empty list.
func (r *Repo) ChangedFiles(commitID string) ([]string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(commitID))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commit %s: %w", commitID, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", commitID, err)
	}
	stats, err := commit.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to diff commit %s: %w", commitID, err)
	}

	var files []string
	for _, stat := range stats {
		files = append(files, stat.Name)
	}
	return files, nil
}

// git runs one git query in the repository directory and returns stdout.
func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	slog.Debug("running git", "args", args)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
