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
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"
)

var noHeaderRequiredFiles = []string{
	"CODEOWNERS",
	".gitignore",
	"go.mod",
	"go.sum",
	"LICENSE",
	"coverage.out",
}

var ignoredExts = map[string]bool{
	".md":   true,
	".yml":  true,
	".yaml": true,
	".txt":  true,
}

var ignoredDirs = []string{
	".git",
	".idea",
	".vscode",
	"_examples",
	"testdata",
}

// expectedHeader defines the regex for the required copyright header.
const expectedHeader = `// Copyright 202\d Salesforce, Inc\.
//
// Licensed under the Apache License, Version 2\.0 \(the "License"\);
// you may not use this file except in compliance with the License\.
// You may obtain a copy of the License at`

var headerRegex = regexp.MustCompile("(?s)" + expectedHeader)

func TestHeaders(t *testing.T) {
	sfs := os.DirFS(".")
	err := fs.WalkDir(sfs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored files and directories.
		if d.IsDir() {
			if slices.Contains(ignoredDirs, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if slices.Contains(noHeaderRequiredFiles, filepath.Base(path)) || ignoredExts[filepath.Ext(path)] {
			return nil
		}

		f, err := sfs.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		ok, err := hasValidHeader(path, f)
		if err != nil {
			return err
		}
		if !ok {
			t.Errorf("%q: invalid header", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func hasValidHeader(path string, r io.Reader) (bool, error) {
	allBytes, err := io.ReadAll(r)
	if err != nil {
		return false, err
	}

	// If the file is a mustache template, the license is expected to be
	// wrapped as:
	// {{!
	// Copyright 2026 Salesforce, Inc.
	// ...
	// }}
	if strings.HasSuffix(path, ".mustache") {
		if !bytes.HasPrefix(allBytes, []byte("{{!")) {
			return false, nil
		}
		end := bytes.Index(allBytes, []byte("}}"))
		if end == -1 {
			return false, nil
		}
		headerContent := allBytes[len("{{!"):end]
		headerContent = bytes.TrimPrefix(headerContent, []byte("\n"))
		var builder strings.Builder
		lines := strings.Split(string(headerContent), "\n")
		for i, line := range lines {
			builder.WriteString("//")
			if len(line) > 0 {
				builder.WriteString(" ")
			}
			builder.WriteString(line)
			if i < len(lines)-1 {
				builder.WriteString("\n")
			}
		}
		return headerRegex.MatchString(builder.String()), nil
	}

	return headerRegex.Match(allBytes), nil
}

func TestExportedSymbolsHaveDocs(t *testing.T) {
	packageHasComment := make(map[string]bool)
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if slices.Contains(ignoredDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			t.Errorf("failed to parse file %q: %v", path, err)
			return nil
		}

		recordPackageCommentStatus(t, node, packageHasComment)

		// Visit every top-level declaration in the file.
		for _, decl := range node.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if ok && (gen.Tok == token.TYPE || gen.Tok == token.VAR) {
				for _, spec := range gen.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						checkDoc(t, s.Name, gen.Doc, path)
					case *ast.ValueSpec:
						for _, name := range s.Names {
							checkDoc(t, name, gen.Doc, path)
						}
					}
				}
			}
			if fn, ok := decl.(*ast.FuncDecl); ok {
				checkDoc(t, fn.Name, fn.Doc, path)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for name, hasPkgComment := range packageHasComment {
		if !hasPkgComment {
			t.Errorf("package %s does not have package comment", name)
		}
	}
}

func checkDoc(t *testing.T, name *ast.Ident, doc *ast.CommentGroup, path string) {
	t.Helper()
	if !name.IsExported() {
		return
	}
	if doc == nil {
		t.Errorf("%s: %q is missing doc comment",
			path, name.Name)
	}
}

// recordPackageCommentStatus updates the seen map with the package comment status for a given package, processing each
// package only once.
func recordPackageCommentStatus(t *testing.T, file *ast.File, packageHasComment map[string]bool) {
	t.Helper()
	pkg := file.Name.String()
	if !packageHasComment[pkg] {
		packageHasComment[pkg] = file.Doc != nil
	}
}
