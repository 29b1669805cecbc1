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

package lower_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/lower"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
	"github.com/arkbridge/native-body-rebuilder/internal/typeinfer"
)

// buildFunction decodes a single-function summary-IR document, failing the
// test on any load error.
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

// newHostFunction mints a synthetic host Function with nParams Any-typed
// parameters and an owning struct, the shape C9 hands to Lower.
func newHostFunction(name string, nParams int) *ir.Function {
	file := ir.NewSyntheticFile("lib")
	class := file.NewSyntheticStruct("@nodeapiClasslib")
	sig := &ir.Signature{}

	fn := file.NewSyntheticFunction(name, sig)
	class.AddMethod(fn)

	for i := 0; i < nParams; i++ {
		sig.Params = append(sig.Params, ir.NewSyntheticParameter(fn, "arg", ir.TypeAny))
	}

	return fn
}

func TestLowerValueCreateBindsReturnToTypedLocal(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "answer",
			"params": {"0": "napi_env", "1": "napi_callback_info"},
			"instructions": [
				{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "long 42"], "rets": {"x": "2"}},
				{"type": "Ret", "operand": "x"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("answer", 0)
	lower.Lower(fn, blueprint, nil)

	block := fn.CurrentBlock()
	require.NotEmpty(t, block.Instrs)

	last, ok := block.Instrs[len(block.Instrs)-1].(*ir.Return)
	require.True(t, ok)
	require.Len(t, last.Results, 1)

	v, ok := last.Results[0].(*ir.Var)
	require.True(t, ok)
	assert.True(t, v.Type.Equal(ir.TypeNumber))
	// Scenario 1 (napi_create_int32 of a literal): the minted intermediate
	// must carry the "number" prefix, not the generic "value" the handler
	// used before it was keyed to the create target's type.
	assert.True(t, strings.HasPrefix(v.Name(), "%number_"), "got name %q", v.Name())
}

func TestLowerStringExtractBindsLengthSlot(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "greet",
			"params": {"0": "napi_env", "1": "napi_callback_info"},
			"instructions": [
				{"type": "Call", "target": "napi_get_cb_info", "operands": ["p0", "p1"], "rets": {"a0": "3"}},
				{"type": "Call", "target": "napi_get_value_string_utf8", "operands": ["p0", "a0"], "rets": {"s": "2", "n": "4"}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("greet", 1)
	lower.Lower(fn, blueprint, nil)

	var fieldReads int
	var sawString, sawLength bool
	for _, instr := range fn.CurrentBlock().Instrs {
		if v, ok := instr.(*ir.Var); ok {
			if _, ok := v.Value.(*ir.FieldRead); ok {
				fieldReads++
				sawLength = sawLength || strings.HasPrefix(v.Name(), "%length_")
			}
			sawString = sawString || strings.HasPrefix(v.Name(), "%string_")
		}
	}
	assert.GreaterOrEqual(t, fieldReads, 1)
	// Scenario-bearing string-extract: the extracted value names "%string_N"
	// and the length slot (a field-read of .length) names "%length_N",
	// distinct from array-length's "%array_length_N".
	assert.True(t, sawString, "expected a %%string_N local")
	assert.True(t, sawLength, "expected a %%length_N local")
}

func TestLowerArrayFamily(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "arr",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "napi_create_array", "operands": ["p0"], "rets": {"a": "2"}},
				{"type": "Call", "target": "napi_get_array_length", "operands": ["p0", "a"], "rets": {"n": "2"}},
				{"type": "Call", "target": "napi_is_array", "operands": ["p0", "a"], "rets": {"b": "2"}},
				{"type": "Call", "target": "napi_set_element", "operands": ["p0", "a", "long 0", "long 9"], "rets": {}},
				{"type": "Call", "target": "napi_get_element", "operands": ["p0", "a", "long 0"], "rets": {"e": "3"}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("arr", 0)

	var buf bytes.Buffer
	logger := rlog.New(&buf)
	lower.Lower(fn, blueprint, logger)

	assert.Empty(t, buf.String())

	var newArrays, indexReads, indexWrites int
	var sawArray, sawArrayLength, sawIsArray, sawGetElement bool
	for _, instr := range fn.CurrentBlock().Instrs {
		switch v := instr.(type) {
		case *ir.Var:
			switch v.Value.(type) {
			case *ir.NewArray:
				newArrays++
				sawArray = sawArray || strings.HasPrefix(v.Name(), "%array_")
			case *ir.FieldRead:
				sawArrayLength = sawArrayLength || strings.HasPrefix(v.Name(), "%array_length_")
			case *ir.TypeAssert:
				sawIsArray = sawIsArray || strings.HasPrefix(v.Name(), "%is_array_")
			case *ir.IndexRead:
				indexReads++
				sawGetElement = sawGetElement || strings.HasPrefix(v.Name(), "%get_element_")
			}
		case *ir.IndexWrite:
			indexWrites++
		}
	}
	assert.Equal(t, 1, newArrays)
	assert.Equal(t, 1, indexReads)
	assert.Equal(t, 1, indexWrites)
	// Scenarios 3/4: array-length and is-array name distinctly from a plain
	// field-read/type-assert, and array-element-get names "%get_element_N".
	assert.True(t, sawArray, "expected a %%array_N local")
	assert.True(t, sawArrayLength, "expected a %%array_length_N local")
	assert.True(t, sawIsArray, "expected a %%is_array_N local")
	assert.True(t, sawGetElement, "expected a %%get_element_N local")
}

func TestLowerNoopFamilyEmitsNothingAndDoesNotWarn(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "touch",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "napi_has_property", "operands": ["p0"], "rets": {"b": "2"}},
				{"type": "Call", "target": "napi_coerce_to_string", "operands": ["p0"], "rets": {"s": "2"}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("touch", 0)

	var buf bytes.Buffer
	logger := rlog.New(&buf)
	lower.Lower(fn, blueprint, logger)

	assert.Empty(t, buf.String())

	instrsBefore := len(fn.CurrentBlock().Instrs)
	assert.NotZero(t, instrsBefore) // prologue + final void return still emitted
}

func TestLowerRawAllocation(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "alloc",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "malloc", "operands": ["long 16"], "rets": {"buf": "-1"}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("alloc", 0)
	lower.Lower(fn, blueprint, nil)

	var found bool
	for _, instr := range fn.CurrentBlock().Instrs {
		if v, ok := instr.(*ir.Var); ok && v.Type.Equal(ir.TypeString) {
			if c, ok := v.Value.(*ir.Const); ok && c.Value == "" {
				found = found || strings.HasPrefix(v.Name(), "%alloc_")
			}
		}
	}
	assert.True(t, found, "expected a %%alloc_N local")
}

func TestLowerLogPrintDispatchesByLevel(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "logs",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "OH_LOG_Print", "operands": ["long 0", "long 6", "char* \"app\"", "char* \"tag\"", "char* \"boom\""], "rets": {}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("logs", 0)
	lower.Lower(fn, blueprint, nil)

	var found bool
	for _, instr := range fn.CurrentBlock().Instrs {
		if call, ok := instr.(*ir.Call); ok {
			if call.Function != nil && call.Function.Name() == "@nodeapiLog.error" {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestLowerUnknownTargetWarnsAndSkips(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "mystery",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "some_unmodeled_native_symbol", "operands": ["p0"], "rets": {"x": "1"}},
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("mystery", 0)

	var buf bytes.Buffer
	logger := rlog.New(&buf)
	lower.Lower(fn, blueprint, logger)

	assert.Contains(t, buf.String(), "no lowering handler registered for call target")
}

func TestLowerReturnOfTopConstantEmitsVoidReturn(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "voidy",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Ret", "operand": "top"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("voidy", 0)
	lower.Lower(fn, blueprint, nil)

	last := fn.CurrentBlock().Instrs[len(fn.CurrentBlock().Instrs)-1]
	ret, ok := last.(*ir.Return)
	require.True(t, ok)
	assert.Empty(t, ret.Results)
}

func TestLowerPhiSkipsConstantOperands(t *testing.T) {
	doc := `{
		"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
		"functions": [{
			"name": "branchy",
			"params": {"0": "napi_env"},
			"instructions": [
				{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "long 1"], "rets": {"a": "2"}},
				{"type": "Phi", "ret": "c", "operands": ["a", "long 0"]},
				{"type": "Ret", "operand": "c"}
			]
		}]
	}`
	blueprint := buildFunction(t, doc)
	typeinfer.Infer(blueprint, nil)

	fn := newHostFunction("branchy", 0)
	lower.Lower(fn, blueprint, nil)

	var phiEdges int
	for _, instr := range fn.CurrentBlock().Instrs {
		if v, ok := instr.(*ir.Var); ok {
			if p, ok := v.Value.(*ir.Phi); ok {
				phiEdges = len(p.Edges)
			}
		}
	}
	assert.Equal(t, 1, phiEdges)
}
