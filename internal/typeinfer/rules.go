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

package typeinfer

import "github.com/arkbridge/native-body-rebuilder/internal/ir"

// operandRule pins the type a positional Operands-slice index must carry for
// a given target.
type operandRule struct {
	index int
	typ   ir.Type
}

// returnRule pins the type a return group must carry for a given target. tag
// matches a summary.Call's ReturnGroup.Tag exactly as the document names it
// (e.g. "2", "3", "-1"), the same tagging RetsByTag and RealArgs rely on.
type returnRule struct {
	tag string
	typ ir.Type
}

// rule is one rule-table entry: the operand and return-tag constraints a
// native-binding target imposes on a Call's operands and return variables.
type rule struct {
	operands []operandRule
	returns  []returnRule
}

// ruleTable is keyed on the Call's Target name (the native-binding symbol,
// e.g. "napi_create_int32"). It is data, not code, per the rule-table-driven
// dispatch convention the rest of this system follows.
var ruleTable = buildRuleTable()

// buildRuleTable expands every target family in the rule table into concrete
// per-target entries, grounded on SPEC_FULL.md's rule-table excerpt.
//
// nolint:funlen // Table data, not control flow.
func buildRuleTable() map[string]rule {
	t := make(map[string]rule)

	numeric := rule{
		operands: []operandRule{{1, ir.TypeNumber}},
		returns:  []returnRule{{"2", ir.TypeNumber}},
	}
	for _, target := range []string{
		"napi_create_double", "napi_create_int32", "napi_create_uint32",
		"napi_create_int64", "napi_create_bigint_int64", "napi_create_bigint_uint64",
	} {
		t[target] = numeric
	}
	for _, target := range []string{
		"napi_get_value_double", "napi_get_value_int32", "napi_get_value_uint32",
		"napi_get_value_int64", "napi_get_value_bigint_int64", "napi_get_value_bigint_uint64",
	} {
		t[target] = numeric
	}

	stringCreate := rule{
		operands: []operandRule{{1, ir.TypeString}},
		returns:  []returnRule{{"3", ir.TypeString}},
	}
	for _, target := range []string{
		"napi_create_string_utf8", "napi_create_string_utf16", "napi_create_string_latin1",
	} {
		t[target] = stringCreate
	}

	stringExtract := rule{
		operands: []operandRule{{1, ir.TypeString}, {2, ir.TypeString}, {3, ir.TypeNumber}, {4, ir.TypeNumber}},
		returns:  []returnRule{{"2", ir.TypeString}, {"4", ir.TypeNumber}},
	}
	for _, target := range []string{
		"napi_get_value_string_utf8", "napi_get_value_string_utf16", "napi_get_value_string_latin1",
	} {
		t[target] = stringExtract
	}

	boolean := rule{
		operands: []operandRule{{1, ir.TypeBoolean}},
		returns:  []returnRule{{"2", ir.TypeBoolean}},
	}
	t["napi_get_boolean"] = boolean
	t["napi_get_value_bool"] = boolean

	t["napi_get_undefined"] = rule{returns: []returnRule{{"1", ir.TypeUndefined}}}
	t["napi_get_null"] = rule{returns: []returnRule{{"1", ir.TypeNull}}}

	object := rule{
		operands: []operandRule{{1, objectType()}},
		returns:  []returnRule{{"2", objectType()}},
	}
	t["napi_create_object"] = object
	t["napi_get_prototype"] = object

	// propertyAny deliberately carries no returnRule: none of set/get/has/
	// delete/has-own have a documented return-type seed, only operand
	// constraints. Left unresolved rather than guessed.
	propertyAny := rule{
		operands: []operandRule{{1, objectType()}, {2, ir.TypeString}, {3, ir.TypeAny}},
	}
	for _, target := range []string{
		"napi_set_property", "napi_get_property", "napi_has_property",
		"napi_delete_property", "napi_has_own_property",
	} {
		t[target] = propertyAny
	}

	t["napi_get_all_property_names"] = rule{
		operands: []operandRule{{1, objectType()}},
		returns:  []returnRule{{"5", arrayType()}},
	}

	arrayCreate := rule{
		operands: []operandRule{{1, ir.TypeNumber}},
		returns:  []returnRule{{"2", arrayType()}},
	}
	t["napi_create_array"] = rule{returns: []returnRule{{"2", arrayType()}}}
	t["napi_create_array_with_length"] = arrayCreate

	t["napi_is_array"] = rule{
		operands: []operandRule{{1, arrayType()}},
		returns:  []returnRule{{"2", ir.TypeBoolean}},
	}
	t["napi_get_array_length"] = rule{
		operands: []operandRule{{1, arrayType()}},
		returns:  []returnRule{{"2", ir.TypeNumber}},
	}

	arrayElement := rule{
		operands: []operandRule{{1, arrayType()}, {2, ir.TypeNumber}, {3, ir.TypeAny}},
		returns:  []returnRule{{"3", ir.TypeAny}},
	}
	for _, target := range []string{
		"napi_set_element", "napi_get_element", "napi_has_element", "napi_delete_element",
	} {
		t[target] = arrayElement
	}

	coerce := rule{operands: []operandRule{{1, ir.TypeAny}}}
	t["napi_coerce_to_bool"] = withReturn(coerce, "2", ir.TypeBoolean)
	t["napi_coerce_to_number"] = withReturn(coerce, "2", ir.TypeNumber)
	t["napi_coerce_to_object"] = withReturn(coerce, "2", objectType())
	t["napi_coerce_to_string"] = withReturn(coerce, "2", ir.TypeString)

	allocation := rule{
		operands: []operandRule{{0, ir.TypeNumber}},
		returns:  []returnRule{{"-1", ir.TypeString}},
	}
	for _, target := range []string{"malloc", "operator new", "operator new[]", "xmalloc"} {
		t[target] = allocation
	}

	return t
}

func withReturn(r rule, tag string, typ ir.Type) rule {
	r.returns = append(append([]returnRule(nil), r.returns...), returnRule{tag, typ})

	return r
}

// objectType and arrayType return fresh structural placeholders for the
// "Object"/"Array" shapes the rule table names without pinning a concrete
// struct or element type; C8/C9 refine these further once a receiver or
// element type is known from context.
func objectType() ir.Type { return ir.NewClassType(nil) }
func arrayType() ir.Type  { return ir.NewArrayType(ir.TypeAny, 1) }

// lookupRule returns the rule-table entry for target, if any.
func lookupRule(target string) (rule, bool) {
	r, ok := ruleTable[target]

	return r, ok
}
