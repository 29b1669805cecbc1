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

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arkbridge/native-body-rebuilder/internal/ast"
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
)

func TestLibraryFromPathStripsNativeSuffix(t *testing.T) {
	lib, ok := libraryFromPath("libentry.so")
	assert.True(t, ok)
	assert.Equal(t, "libentry", lib)

	lib, ok = libraryFromPath("libentry.so&1")
	assert.True(t, ok)
	assert.Equal(t, "libentry", lib)

	_, ok = libraryFromPath("some/module")
	assert.False(t, ok)
}

func TestLooksSyntheticRecognizesSyntheticTokens(t *testing.T) {
	assert.True(t, looksSynthetic("%AM0"))
	assert.False(t, looksSynthetic("add"))
}

// funcDecl builds a minimal *ast.FuncDecl with no parameters or results,
// enough for ir.File.NewFunction to lower into an *ir.Function.
func funcDecl(name string) *ast.FuncDecl {
	return &ast.FuncDecl{
		Name: &ast.Ident{Name: name},
		Type: &ast.FuncType{},
	}
}

// singleFunctionFile builds a minimal *ir.File exposing exactly one
// function member, named name, so singleExportedFunction resolves to it.
func singleFunctionFile(name string) *ir.File {
	file := &ir.File{Members: map[string]ir.Member{}}
	fn := file.NewFunction(funcDecl(name))
	file.Members[fn.Name()] = fn

	return file
}

func TestRecoverPointerInvokeFallsBackToSingleExportedFunction(t *testing.T) {
	file := singleFunctionFile("onlyExport")
	call := &ir.Call{Kind: ir.PointerInvoke}

	name, ok := recoverPointerInvoke(file, call, nil)
	assert.True(t, ok)
	assert.Equal(t, "onlyExport", name)
}

func TestRecoverPointerInvokeFailsWithMultipleExportsAndNoSource(t *testing.T) {
	file := &ir.File{Members: map[string]ir.Member{}}
	fnA := file.NewFunction(funcDecl("a"))
	fnB := file.NewFunction(funcDecl("b"))
	file.Members[fnA.Name()] = fnA
	file.Members[fnB.Name()] = fnB
	call := &ir.Call{Kind: ir.PointerInvoke}

	_, ok := recoverPointerInvoke(file, call, nil)
	assert.False(t, ok)
}
