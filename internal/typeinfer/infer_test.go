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

package typeinfer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
	"github.com/arkbridge/native-body-rebuilder/internal/typeinfer"
)

// buildFunction decodes a single-function summary-IR document into a
// *summary.Function, failing the test on any load error.
func buildFunction(t *testing.T, doc string) *summary.Function {
	t.Helper()

	mod, err := summary.LoadDocument([]byte(doc), nil)
	require.NoError(t, err)
	require.Len(t, mod.Functions, 1)

	for _, fn := range mod.Functions {
		return fn
	}

	return nil
}

func TestInferNumericCreatePropagatesNumberType(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "mul",
			"params": {"0": "napi_env", "1": "napi_callback_info"},
			"instructions": [
				{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "long 7"], "rets": {"x": "2"}},
				{"type": "Ret", "operand": "x"}
			]
		}]
	}`
	fn := buildFunction(t, doc)

	typeinfer.Infer(fn, nil)

	call := fn.Instructions[0].(*summary.Call)
	result := call.RetsByTag("2")
	require.NotNil(t, result)
	require.Len(t, result.Vars, 1)
	assert.True(t, result.Vars[0].Type.Equal(ir.TypeNumber))
}

func TestInferPhiUnifiesOperandsAndResult(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "branchy",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "long 1"], "rets": {"a": "2"}},
				{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "long 2"], "rets": {"b": "2"}},
				{"type": "Phi", "ret": "c", "operands": ["a", "b"]},
				{"type": "Ret", "operand": "c"}
			]
		}]
	}`
	fn := buildFunction(t, doc)

	typeinfer.Infer(fn, nil)

	phi := fn.Instructions[2].(*summary.Phi)
	assert.True(t, phi.Result.Type.Equal(ir.TypeNumber))
}

func TestInferDefaultsUnresolvedTargetToAny(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "opaque",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "some_unmodeled_native_symbol", "operands": ["p0"], "rets": {"x": "1"}},
				{"type": "Ret", "operand": "x"}
			]
		}]
	}`
	fn := buildFunction(t, doc)

	var buf bytes.Buffer
	logger := rlog.New(&buf)

	typeinfer.Infer(fn, logger)

	call := fn.Instructions[0].(*summary.Call)
	group := call.RetsByTag("1")
	require.NotNil(t, group)
	assert.True(t, group.Vars[0].Type.Equal(ir.TypeAny))
	assert.Contains(t, buf.String(), "defaulted unresolved types to Any")
}

func TestInferWarnsOnIncompatibleConcreteMerge(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "collide",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "x"], "rets": {}},
				{"type": "Call", "target": "napi_create_string_utf8", "operands": ["p0", "x"], "rets": {}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	fn := buildFunction(t, doc)

	var buf bytes.Buffer
	logger := rlog.New(&buf)

	typeinfer.Infer(fn, logger)

	call := fn.Instructions[0].(*summary.Call)
	x := call.Operands[1]
	variable, ok := x.(*summary.Variable)
	require.True(t, ok)
	assert.True(t, variable.Type.Equal(ir.TypeAny))
	assert.Contains(t, buf.String(), "merged incompatible concrete types to Any")
}

func TestInferSeedsReceiverParameterAsObject(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "method",
			"params": {"0": "napi_env", "1": "napi_callback_info", "2": "napi_value"},
			"instructions": [
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	fn := buildFunction(t, doc)

	typeinfer.Infer(fn, nil)

	require.Len(t, fn.Params, 3)
	assert.Equal(t, ir.Unknown, fn.Params[0].Type.Kind)
	assert.Equal(t, ir.ClassKind, fn.Params[1].Type.Kind)
	assert.True(t, fn.Params[2].Type.Equal(ir.TypeAny))
}
