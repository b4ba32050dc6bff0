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
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/forcedotcom/sfdx-changelog/internal/config"
	"github.com/google/go-cmp/cmp"
)

// chdir changes the working directory for the duration of the test,
// matching the behavior of testing.T.Chdir (added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestRun_Version(t *testing.T) {
	err := Run(context.Background(), []string{"changelog", "--version"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRun_VersionCommand(t *testing.T) {
	err := Run(context.Background(), []string{"changelog", "version"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRun_Help(t *testing.T) {
	err := Run(context.Background(), []string{"changelog", "--help"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRun_CommandsExist(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
	}{
		{
			name: "generate command exists",
			args: []string{"changelog", "generate", "--help"},
		},
		{
			name: "init command exists",
			args: []string{"changelog", "init", "--help"},
		},
		{
			name: "version command exists",
			args: []string{"changelog", "version"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if err := Run(context.Background(), test.args); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	if err := Run(context.Background(), []string{"changelog", "init"}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat("changelog.yaml"); os.IsNotExist(err) {
		t.Fatal("changelog.yaml was not created")
	}

	cfg, err := config.Read("changelog.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("created config mismatch (-want +got):\n%s", diff)
	}
}

func TestRunInit_ExistingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	if err := os.WriteFile("changelog.yaml", []byte("remote: origin\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runInit(); err == nil {
		t.Error("runInit() should fail when changelog.yaml exists")
	} else if !errors.Is(err, errConfigAlreadyExists) {
		t.Errorf("want %v; got %v", errConfigAlreadyExists, err)
	}
}

func TestGenerate_OutsideRepository(t *testing.T) {
	tmpDir := t.TempDir()

	err := runGenerate(context.Background(), &Options{RepoDir: tmpDir})
	if err == nil {
		t.Error("runGenerate() outside a repository succeeded, want error")
	}
}

func TestVersion_IncludesOSArch(t *testing.T) {
	version := Version()
	expectedSuffix := runtime.GOOS + "/" + runtime.GOARCH
	if !strings.Contains(version, expectedSuffix) {
		t.Errorf("Version() = %q, want it to contain %q", version, expectedSuffix)
	}
}
