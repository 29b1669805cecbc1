// Copyright 2020 ZUP IT SERVICOS EM TECNOLOGIA E INOVACAO SA
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

// Package binding indexes the type-declaration files shipped next to a
// native library's source tree, so the call resolver can attach a declared
// signature to every cross-language call site it discovers.
//
// Declaration files are not walked with a full parser: they are scanned
// line by line with a small fixed set of regular expressions, the same
// posture the teacher's own text.Rule uses for its own regex-driven file
// scanning.
package binding

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// DefaultGlob is the default declaration-file selector: a `.d.ts` file
// anywhere below a `cpp` directory, the conventional home for a native
// module's hand-written or generated type declarations.
const DefaultGlob = "**/cpp/**/*.d.ts"

// Signature is a declared sub-signature recovered from a declaration file:
// the exported name, its parameter type list (in order), and its return
// type string ("" if the declaration omitted one).
type Signature struct {
	Name       string
	ParamTypes []string
	ReturnType string
}

// Index maps a library key (the basename of a declaration file's containing
// directory) to the exported declarations recovered from every declaration
// file under that directory.
type Index struct {
	byLibrary map[string][]Signature
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{byLibrary: make(map[string][]Signature)}
}

// Lookup returns the declared signature for name under library, or nil.
func (idx *Index) Lookup(library, name string) *Signature {
	for _, sig := range idx.byLibrary[library] {
		if sig.Name == name {
			return &sig
		}
	}

	return nil
}

// Libraries returns every library key the index holds declarations for.
func (idx *Index) Libraries() []string {
	keys := make([]string, 0, len(idx.byLibrary))
	for k := range idx.byLibrary {
		keys = append(keys, k)
	}

	return keys
}

var (
	// exportFuncRe matches `export function <name>(<params>): <type>;`-shaped
	// ambient function declarations, e.g.:
	//   export function add(a: number, b: number): number;
	exportFuncRe = regexp.MustCompile(`export\s+function\s+(\w+)\s*\(([^)]*)\)\s*:\s*([\w<>.\[\]]+)\s*;`)

	// exportConstRe matches ambient `export const <name>: <type>;` forms,
	// used by declaration files that expose a value rather than a function.
	exportConstRe = regexp.MustCompile(`export\s+const\s+(\w+)\s*:\s*([\w<>.\[\]]+)\s*;`)
)

// IndexDir scans every file under root matching glob (DefaultGlob if empty)
// and merges their declarations into a new Index.
func IndexDir(root, glob string) (*Index, error) {
	if glob == "" {
		glob = DefaultGlob
	}

	idx := NewIndex()

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		matched, matchErr := doublestar.Match(glob, filepath.ToSlash(rel))
		if matchErr != nil {
			return matchErr
		}
		if !matched {
			return nil
		}

		return idx.indexFile(path)
	})
	if err != nil {
		return nil, err
	}

	return idx, nil
}

// indexFile scans one declaration file and merges its exported declarations
// into idx, keyed by the basename of the file's containing directory.
func (idx *Index) indexFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	library := filepath.Base(filepath.Dir(path))

	sigs, err := scanDeclarations(f)
	if err != nil {
		return err
	}

	idx.byLibrary[library] = append(idx.byLibrary[library], sigs...)

	return nil
}

// scanDeclarations reads r line by line, matching the fixed declaration
// patterns. Multi-line declarations are not supported: a function or const
// declaration must fit on one line, which holds for generated `.d.ts` files.
func scanDeclarations(r io.Reader) ([]Signature, error) {
	var sigs []Signature

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if m := exportFuncRe.FindStringSubmatch(line); m != nil {
			sigs = append(sigs, Signature{
				Name:       m[1],
				ParamTypes: paramTypes(m[2]),
				ReturnType: m[3],
			})

			continue
		}

		if m := exportConstRe.FindStringSubmatch(line); m != nil {
			sigs = append(sigs, Signature{Name: m[1], ReturnType: m[2]})
		}
	}

	return sigs, scanner.Err()
}

// paramTypes splits a `(a: number, b: string)`-shaped parameter list's
// interior into its ordered type list.
func paramTypes(params string) []string {
	params = strings.TrimSpace(params)
	if params == "" {
		return nil
	}

	parts := strings.Split(params, ",")
	types := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if idx := strings.LastIndex(part, ":"); idx != -1 {
			types = append(types, strings.TrimSpace(part[idx+1:]))

			continue
		}

		types = append(types, "")
	}

	return types
}
