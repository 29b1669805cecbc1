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

package hostlang_test

import (
	"testing"

	"github.com/arkbridge/native-body-rebuilder/internal/ast"
	"github.com/arkbridge/native-body-rebuilder/internal/hostlang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileFillAllPositions(t *testing.T) {
	src := []byte(`
class Foo { f(a, b) { return a + b }}

function f1(s) { console.log(s) }

const f2 = (a, b) => { return a / b }
	`)

	f, err := hostlang.ParseFile("", src)
	require.NoError(t, err, "Expected no error to parse source file: %v", err)

	notExpectedPos := ast.Pos{
		Byte:   0,
		Row:    0,
		Column: 0,
	}

	ast.Inspect(f, func(n ast.Node) bool {
		if n == nil {
			return false
		}

		start := f.Start()
		end := f.End()

		assert.NotEqual(t, notExpectedPos, start, "Expected not empty start position from node %T: %s", n, start)
		assert.NotEqual(t, notExpectedPos, end, "Expected not empty end position from node %T: %s", n, end)

		return true
	})
}

func TestParseFileClassDeclaration(t *testing.T) {
	src := []byte(`
class Adder {
	add(a, b) { return a + b }
}
	`)

	f, err := hostlang.ParseFile("adder.ts", src)
	require.NoError(t, err)
	require.Len(t, f.Decls, 1)

	classDecl, ok := f.Decls[0].(*ast.ClassDecl)
	require.True(t, ok, "expected *ast.ClassDecl, got %T", f.Decls[0])
	assert.Equal(t, "Adder", classDecl.Name.Name)
	require.NotNil(t, classDecl.Body)
	require.Len(t, classDecl.Body.List, 1)

	method, ok := classDecl.Body.List[0].(*ast.FuncDecl)
	require.True(t, ok, "expected *ast.FuncDecl, got %T", classDecl.Body.List[0])
	assert.Equal(t, "add", method.Name.Name)
	require.Len(t, method.Type.Params.List, 2)
}

func TestParseFileImportShapes(t *testing.T) {
	src := []byte(`
import './sideeffect'
import def from 'default_module'
import { named, other as alias } from 'named_module'
import * as ns from 'namespace_module'
	`)

	f, err := hostlang.ParseFile("imports.ts", src)
	require.NoError(t, err)

	// 1 (side effect) + 1 (default) + 2 (named, alias) + 1 (namespace) = 5 decls.
	require.Len(t, f.Decls, 5)

	sideEffect := f.Decls[0].(*ast.ImportDecl)
	assert.Nil(t, sideEffect.Name)
	assert.Equal(t, "./sideeffect", sideEffect.Path.Name)

	def := f.Decls[1].(*ast.ImportDecl)
	assert.Equal(t, "def", def.Name.Name)
	assert.Equal(t, "default_module", def.Path.Name)

	named := f.Decls[2].(*ast.ImportDecl)
	assert.Equal(t, "named", named.Name.Name)
	assert.Nil(t, named.Alias)

	aliased := f.Decls[3].(*ast.ImportDecl)
	assert.Equal(t, "other", aliased.Name.Name)
	require.NotNil(t, aliased.Alias)
	assert.Equal(t, "alias", aliased.Alias.Name)

	ns := f.Decls[4].(*ast.ImportDecl)
	assert.Equal(t, "ns", ns.Name.Name)
	assert.Equal(t, "namespace_module", ns.Path.Name)
}

func TestParseFileRequireCallExpression(t *testing.T) {
	src := []byte(`const lib = require('native_lib')`)

	f, err := hostlang.ParseFile("require.ts", src)
	require.NoError(t, err)
	require.Len(t, f.Decls, 1)

	decl, ok := f.Decls[0].(*ast.ImportDecl)
	require.True(t, ok, "expected *ast.ImportDecl, got %T", f.Decls[0])
	assert.Equal(t, "lib", decl.Name.Name)
	assert.Equal(t, "native_lib", decl.Path.Name)
}
