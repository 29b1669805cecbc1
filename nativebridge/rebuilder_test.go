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

package nativebridge_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/hostlang"
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/nativebridge"
)

const fixtureSrc = `
import libentry from 'libentry.so'

function useDefault() {
  libentry.mul(1, 2)
}

function useAgain() {
  libentry.mul(3, 4)
}
`

const mulDoc = `{
	"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
	"functions": [{
		"name": "mul",
		"params": {"0": "napi_env", "1": "napi_callback_info"},
		"instructions": [
			{"type": "Call", "target": "napi_get_cb_info", "operands": ["p0", "p1"], "rets": {"a0": "3", "a1": "3"}},
			{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "a0"], "rets": {"x": "2"}},
			{"type": "Ret", "operand": "x"}
		]
	}]
}`

func buildFixtureFile(t *testing.T) *ir.File {
	t.Helper()

	astFile, err := hostlang.ParseFile("fixture.ts", []byte(fixtureSrc))
	require.NoError(t, err)

	file := ir.NewFile(astFile)
	file.Build()

	return file
}

func writeSummaryDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "libentry.json"), []byte(mulDoc), 0o644)
	require.NoError(t, err)

	return dir
}

func TestRebuilderRunEndToEnd(t *testing.T) {
	file := buildFixtureFile(t)
	dir := writeSummaryDir(t)

	rebuilder := nativebridge.NewRebuilder(nativebridge.Config{
		SummaryDir: dir,
		Project:    "myproject",
		PoolSize:   2,
	})

	results, snapshot, err := rebuilder.Run(context.Background(), []*ir.File{file}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		method := result.Method
		require.NotNil(t, method)
		assert.True(t, strings.HasPrefix(method.Name(), "@nodeapiFunctionmul_"))
		assert.Same(t, method, result.Site.Call.Function)
	}

	assert.Equal(t, 1, snapshot.SummaryFunctionCount)
	assert.Equal(t, 3, snapshot.SummaryInstructionCount)
	assert.Equal(t, 2, snapshot.RebuiltMethodCount)
	assert.Equal(t, 2, snapshot.TotalCallSites)
	assert.InDelta(t, 2.0, snapshot.RebuildSuccessRate, 0.0001)
	assert.Equal(t, 2, snapshot.CallSitesByInvokeKind[ir.StaticInvoke.String()])
}

func TestRebuilderRunWithStaticInvokeRewrite(t *testing.T) {
	file := buildFixtureFile(t)
	dir := writeSummaryDir(t)

	rebuilder := nativebridge.NewRebuilder(nativebridge.Config{
		SummaryDir:          dir,
		StaticInvokeRewrite: true,
	})

	results, _, err := rebuilder.Run(context.Background(), []*ir.File{file}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, result := range results {
		assert.Equal(t, ir.StaticInvoke, result.Site.Call.Kind)
		assert.Nil(t, result.Site.Call.Recv)
	}
}

func TestRebuilderRunWithNoResolvableCallSitesReturnsEmptyResults(t *testing.T) {
	astFile, err := hostlang.ParseFile("fixture.ts", []byte("function f() { return 1 }"))
	require.NoError(t, err)

	file := ir.NewFile(astFile)
	file.Build()

	dir := t.TempDir()

	rebuilder := nativebridge.NewRebuilder(nativebridge.Config{SummaryDir: dir})

	results, snapshot, err := rebuilder.Run(context.Background(), []*ir.File{file}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, snapshot.RebuiltMethodCount)
	assert.Zero(t, snapshot.TotalCallSites)
}

func TestRebuilderRunWithMissingDeclarationDirSkipsIndexing(t *testing.T) {
	file := buildFixtureFile(t)
	dir := writeSummaryDir(t)

	rebuilder := nativebridge.NewRebuilder(nativebridge.Config{
		SummaryDir:     dir,
		DeclarationDir: "",
	})

	results, _, err := rebuilder.Run(context.Background(), []*ir.File{file}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
