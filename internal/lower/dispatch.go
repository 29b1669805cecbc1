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

package lower

import (
	"fmt"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

// handler lowers one Call instruction to zero or more host statements.
type handler func(lw *lowerer, call *summary.Call)

// dispatchTable maps a native-binding target name to its handler. It is
// data, the C8 analogue of C7's rule table, and is closed over the same
// target families.
var dispatchTable = buildDispatchTable()

// nolint:funlen // Table data, not control flow.
func buildDispatchTable() map[string]handler {
	t := make(map[string]handler)

	numericCreate := map[string]ir.Type{
		"napi_create_double": ir.TypeNumber, "napi_create_int32": ir.TypeNumber,
		"napi_create_uint32": ir.TypeNumber, "napi_create_int64": ir.TypeNumber,
		"napi_create_bigint_int64": ir.TypeNumber, "napi_create_bigint_uint64": ir.TypeNumber,
	}
	for target, typ := range numericCreate {
		t[target] = valueCreateHandler(typ, "2")
	}

	stringCreate := []string{"napi_create_string_utf8", "napi_create_string_utf16", "napi_create_string_latin1"}
	for _, target := range stringCreate {
		t[target] = valueCreateHandler(ir.TypeString, "3")
	}

	t["napi_get_boolean"] = valueCreateHandler(ir.TypeBoolean, "2")
	t["napi_get_undefined"] = valueCreateHandler(ir.TypeUndefined, "1")
	t["napi_get_null"] = valueCreateHandler(ir.TypeNull, "1")

	numericExtract := []string{
		"napi_get_value_double", "napi_get_value_int32", "napi_get_value_uint32",
		"napi_get_value_int64", "napi_get_value_bigint_int64", "napi_get_value_bigint_uint64",
	}
	for _, target := range numericExtract {
		t[target] = valueExtractHandler(ir.TypeNumber, "2", false)
	}
	t["napi_get_value_bool"] = valueExtractHandler(ir.TypeBoolean, "2", false)

	stringExtract := []string{
		"napi_get_value_string_utf8", "napi_get_value_string_utf16", "napi_get_value_string_latin1",
	}
	for _, target := range stringExtract {
		t[target] = valueExtractHandler(ir.TypeString, "2", true)
	}

	t["napi_create_array"] = arrayCreateHandler(false)
	t["napi_create_array_with_length"] = arrayCreateHandler(true)
	t["napi_get_array_length"] = arrayLengthHandler
	t["napi_is_array"] = isArrayHandler
	t["napi_set_element"] = arrayElementSetHandler
	t["napi_get_element"] = arrayElementGetHandler

	noop := []string{
		"napi_has_element", "napi_delete_element", "napi_has_property", "napi_delete_property",
		"napi_coerce_to_bool", "napi_coerce_to_number", "napi_coerce_to_object", "napi_coerce_to_string",
		"napi_set_property", "napi_get_property", "napi_has_own_property", "napi_get_all_property_names",
		"napi_create_object", "napi_get_prototype",
	}
	for _, target := range noop {
		t[target] = noopHandler
	}

	for _, target := range []string{"malloc", "operator new", "operator new[]", "xmalloc"} {
		t[target] = rawAllocationHandler
	}

	t[logPrintTarget] = logPrintHandler

	return t
}

// localPrefix maps a host value type to the intermediate-local naming prefix
// (the `%prefix_N` scheme) a value of that type mints when lowered. Number,
// string and boolean each get their own name; every other concrete kind
// (undefined, null) shares the generic "const" prefix.
func localPrefix(typ ir.Type) string {
	switch typ.Kind {
	case ir.Number:
		return "number"
	case ir.String:
		return "string"
	case ir.Boolean:
		return "bool"
	default:
		return "const"
	}
}

// valueCreateHandler returns a handler for a value-create-<T> family member:
// look up the operand's host value (minting a local if it's a constant),
// then bind the return at tag to a fresh typ-typed local holding it.
func valueCreateHandler(typ ir.Type, tag string) handler {
	return func(lw *lowerer, call *summary.Call) {
		val, ok := lw.operand(call, 1)
		if !ok {
			val = ir.NewConst("")
		}

		local := lw.fn.EmitTemp(localPrefix(typ), val, typ)
		lw.bindReturn(call, tag, local)
	}
}

// valueExtractHandler returns a handler for a value-extract-<T> family
// member: `target-local := source-local`. When withLength is set (the
// string-extract family), also binds the length slot (tag "4") to a fresh
// Number local reading `.length` off the new local.
func valueExtractHandler(typ ir.Type, tag string, withLength bool) handler {
	return func(lw *lowerer, call *summary.Call) {
		src, ok := lw.operand(call, 1)
		if !ok {
			return
		}

		local := lw.fn.EmitTemp(localPrefix(typ), src, typ)
		lw.bindReturn(call, tag, local)

		if withLength {
			length := lw.fn.EmitFieldRead(local, "length", ir.TypeNumber, "length")
			lw.bindReturn(call, "4", length)
		}
	}
}

// arrayCreateHandler mints a fresh Array-typed local bound to `new
// array[len]`; withLength selects whether len comes from operand 1 or is the
// literal 0.
func arrayCreateHandler(withLength bool) handler {
	return func(lw *lowerer, call *summary.Call) {
		var length ir.Value = ir.NewConst("0")
		if withLength {
			if v, ok := lw.operand(call, 1); ok {
				length = v
			}
		}

		local := lw.fn.EmitNewArray(length, ir.TypeAny, "array")
		lw.bindReturn(call, "2", local)
	}
}

func arrayLengthHandler(lw *lowerer, call *summary.Call) {
	arr, ok := lw.operand(call, 1)
	if !ok {
		return
	}

	local := lw.fn.EmitFieldRead(arr, "length", ir.TypeNumber, "array_length")
	lw.bindReturn(call, "2", local)
}

func isArrayHandler(lw *lowerer, call *summary.Call) {
	arr, ok := lw.operand(call, 1)
	if !ok {
		return
	}

	local := lw.fn.EmitTypeAssert(arr, ir.NewArrayType(ir.TypeAny, 1), "is_array")
	lw.bindReturn(call, "2", local)
}

func arrayElementSetHandler(lw *lowerer, call *summary.Call) {
	arr, ok := lw.operand(call, 1)
	if !ok {
		return
	}
	idx, ok := lw.operand(call, 2)
	if !ok {
		return
	}
	val, ok := lw.operand(call, 3)
	if !ok {
		return
	}

	lw.fn.EmitIndexWrite(arr, idx, val)
}

func arrayElementGetHandler(lw *lowerer, call *summary.Call) {
	arr, ok := lw.operand(call, 1)
	if !ok {
		return
	}
	idx, ok := lw.operand(call, 2)
	if !ok {
		return
	}

	local := lw.fn.EmitIndexRead(arr, idx, ir.TypeAny, "get_element")
	lw.bindReturn(call, "3", local)
}

// noopHandler is the registered-but-inert handler for the has-element /
// delete-element / has-property / delete-property / coerce-to-* / property-
// set / property-get family: it consumes nothing and emits no statement, so
// the dispatcher never warns about these targets as unknown, while C7's
// rule table still seeds their return types.
func noopHandler(*lowerer, *summary.Call) {}

// rawAllocationHandler models a raw buffer allocation (`malloc`, `operator
// new`, `xmalloc`, ...): it mints a String-typed local initialized to the
// empty string, anticipating that a subsequent string-extract call
// overwrites it.
func rawAllocationHandler(lw *lowerer, call *summary.Call) {
	local := lw.fn.EmitTemp("alloc", ir.NewConst(""), ir.TypeString)
	lw.bindReturn(call, "-1", local)
}

// logLevelNames maps OH_LOG_Print's numeric level operand to the host log
// method it invokes; any value outside this table defaults to "info".
var logLevelNames = map[int64]string{3: "debug", 4: "info", 5: "warn", 6: "error", 7: "fatal"}

// logPrintHandler lowers OH_LOG_Print(type, level, domain, tag, fmt, ...args)
// to an invoke of one of five host logging methods, chosen by the constant
// value of the level operand.
func logPrintHandler(lw *lowerer, call *summary.Call) {
	level := "info"
	if len(call.Operands) > 1 {
		if nc, ok := call.Operands[1].(*summary.NumberConstant); ok {
			if name, known := logLevelNames[nc.Value]; known {
				level = name
			}
		}
	}

	var args []ir.Value
	for _, idx := range []int{2, 3, 4} {
		if v, ok := lw.operand(call, idx); ok {
			args = append(args, v)
		}
	}
	for _, op := range call.ArgsOperands {
		if v, ok := lw.resolve(op); ok {
			args = append(args, v)
		}
	}

	target := ir.NewExternalFunction(fmt.Sprintf("%s.%s", logNamespace, level))
	lw.fn.EmitCall(ir.StaticInvoke, nil, target, args, "", ir.TypeVoid)
}

// lowerCall dispatches call on its target, warning and emitting nothing for
// an unrecognized target.
func (lw *lowerer) lowerCall(call *summary.Call) {
	h, ok := dispatchTable[call.Target]
	if !ok {
		lw.warn("no lowering handler registered for call target", call.Target)

		return
	}

	h(lw, call)
}

// lowerPhi emits `result := phi(op1, ..., opn)`, skipping constant operands
// per SPEC_FULL.md's phi-lowering rule.
func (lw *lowerer) lowerPhi(phi *summary.Phi) {
	var values []ir.Value

	for _, op := range phi.Operands {
		if !mutableOperand(op) {
			continue
		}

		v, ok := lw.resolve(op)
		if !ok {
			continue
		}

		values = append(values, v)
	}

	local := lw.fn.EmitPhi(nil, values, "", phi.Result.Type)
	lw.locals[phi.Result] = local
}

// lowerReturn emits a void-return for a TopConstant operand, a return of the
// operand's host local otherwise, and a warned void-return if the operand
// cannot be resolved.
func (lw *lowerer) lowerReturn(ret *summary.Return) {
	if _, ok := ret.Operand.(summary.TopConstant); ok {
		lw.fn.EmitReturn(nil)

		return
	}

	v, ok := lw.resolve(ret.Operand)
	if !ok {
		lw.warn("return operand could not be resolved, emitting void return", ret.Operand.Token())
		lw.fn.EmitReturn(nil)

		return
	}

	lw.fn.EmitReturn([]ir.Value{v})
}

func mutableOperand(v summary.Value) bool {
	switch v.(type) {
	case *summary.Variable, *summary.Parameter:
		return true
	default:
		return false
	}
}
