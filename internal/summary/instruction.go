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

package summary

// Instruction is a single summary-IR instruction: Call, Return, or Phi.
//
// DefinedVars and UsedVars are total and pure: they never mutate the
// instruction and always return a (possibly empty) slice.
type Instruction interface {
	instr()

	// DefinedVars returns every Variable this instruction binds.
	DefinedVars() []*Variable
	// UsedVars returns every operand Value this instruction reads.
	UsedVars() []Value
}

// ReturnGroup is one tagged group of return variables produced by a single
// Call: the host-callback-info primitive yields several actual-argument
// slots at the same index tag, so a Call's return table maps a tag to an
// ordered list of variables rather than to a single variable.
type ReturnGroup struct {
	Tag  string
	Vars []*Variable
}

// Call instruction models one summary-IR native-binding operation.
//
// Target is the native-binding symbol name (e.g. "napi_create_int32",
// "napi_get_cb_info") that drives both C7's rule-table lookup and C8's
// lowering dispatch. Operands is the call's ordered non-variadic argument
// vector; ArgsOperands, when non-nil, is a trailing variadic tail kept
// separate from Operands so handlers can distinguish "this many fixed
// operands" from "and then an open tail".
type Call struct {
	CallSite     string
	Target       string
	Operands     []Value
	ArgsOperands []Value
	Rets         []*ReturnGroup // Groups and their variables follow the sorted order of the variable tokens.
}

func (*Call) instr() {}

// DefinedVars returns every variable bound across all of c's return groups,
// in Rets order.
func (c *Call) DefinedVars() []*Variable {
	var out []*Variable
	for _, g := range c.Rets {
		out = append(out, g.Vars...)
	}

	return out
}

// UsedVars returns every operand, fixed then variadic, constants included;
// callers that track def/use edges skip the Top, Null and constant operands.
func (c *Call) UsedVars() []Value {
	out := make([]Value, 0, len(c.Operands)+len(c.ArgsOperands))
	out = append(out, c.Operands...)
	out = append(out, c.ArgsOperands...)

	return out
}

// RetsByTag returns the return group tagged tag, or nil if c has none.
func (c *Call) RetsByTag(tag string) *ReturnGroup {
	for _, g := range c.Rets {
		if g.Tag == tag {
			return g
		}
	}

	return nil
}

// Return instruction terminates a summary-IR function. Operand is
// TopConstant for a void return.
type Return struct {
	Operand Value
}

func (*Return) instr() {}

func (r *Return) DefinedVars() []*Variable { return nil }
func (r *Return) UsedVars() []Value {
	if r.Operand == nil {
		return nil
	}

	return []Value{r.Operand}
}

// Phi instruction merges an ordered operand vector into a single result
// variable at a confluence point in the native library's own control flow
// (the summary IR is straight-line per exposed function, but Phi nodes can
// still appear where the original native code joined two paths before
// calling back into the host).
type Phi struct {
	Result   *Variable
	Operands []Value
}

func (*Phi) instr() {}

func (p *Phi) DefinedVars() []*Variable { return []*Variable{p.Result} }
func (p *Phi) UsedVars() []Value        { return p.Operands }
