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

// Package changelog provides the command surface for the changelog
// generator: it compares the two most recent release branches, attributes
// each new pull request to the extension packages it touched, and prepends
// the grouped entries to CHANGELOG.md.
package changelog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/forcedotcom/sfdx-changelog/internal/config"
	"github.com/urfave/cli/v3"
)

// Sentinel errors for validation.
var (
	errConfigAlreadyExists = errors.New("changelog.yaml already exists in current directory")
)

// Run executes the changelog command with the given arguments.
func Run(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:      "changelog",
		Usage:     "generate changelog entries for Salesforce DX extension releases",
		UsageText: "changelog [command]",
		Version:   Version(),
		Commands: []*cli.Command{
			generateCommand(),
			initCommand(),
			versionCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// versionCommand prints the version information.
func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "print the version",
		UsageText: "changelog version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("changelog version %s\n", Version())
			return nil
		},
	}
}

// generateCommand runs the full generation pipeline.
func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "generate changelog entries for the current release branch",
		UsageText: "changelog generate [--release X.Y.Z] [--verbose]",
		Description: `Generate changelog entries for the current release branch.

Diffs the current release branch against the previous one, extracts the
pull request number from each new commit, attributes each change to the
extension packages it touched, and prepends the grouped Markdown section
to CHANGELOG.md. Entries whose pull request is already recorded in the
changelog are skipped, so re-running the command is safe.

By default the newest release branch on the remote is used. Pass
--release to generate entries for an older release instead.

Example:
  changelog generate
  changelog generate --release 17.10.0 --verbose`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "release",
				Usage: "release version to generate entries for (default: newest release branch)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "echo every git query and intermediate result",
			},
			&cli.StringFlag{
				Name:  "repo",
				Value: ".",
				Usage: "path to the repository root",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to changelog.yaml (default: changelog.yaml in the repository root)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runGenerate(ctx, &Options{
				Release:    cmd.String("release"),
				Verbose:    cmd.Bool("verbose"),
				RepoDir:    cmd.String("repo"),
				ConfigPath: cmd.String("config"),
			})
		},
	}
}

// initCommand creates a new repository configuration.
func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "write a changelog.yaml with default settings",
		UsageText: "changelog init",
		Description: `Write a changelog.yaml in the current directory.

The file records the remote, the release branch prefix, the package
attribution rules and the changelog location. Every field is optional;
missing fields fall back to the defaults for the Salesforce DX
extensions repository.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInit()
		},
	}
}

func runInit() error {
	const configPath = "changelog.yaml"
	if _, err := os.Stat(configPath); err == nil {
		return errConfigAlreadyExists
	}

	cfg := config.Default()
	if err := cfg.Write(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created changelog.yaml\n")
	return nil
}
