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

// getCallbackInfoTarget is the well-known native-binding call whose return
// table, at index tag "3", holds every real argument slot the host passed
// across the language boundary.
const getCallbackInfoTarget = "napi_get_cb_info"

// realArgsTag is the index tag under which get-callback-info's real
// arguments are grouped.
const realArgsTag = "3"

// Function is one native library export, fully described by its summary-IR
// document: its positional parameter table, its instruction list in
// document order, and the variables its own value interner produced.
type Function struct {
	Name         string
	Params       []*Parameter // Positional, indexed by Params[i].Index == i.
	Instructions []Instruction

	interned *internCache

	// realArgs is computed lazily by RealArgs and cached; cleared by Clone
	// so a copy recomputes it against its own instruction list.
	realArgs    []*Variable
	realArgsSet bool
}

// newFunction creates an empty Function ready to receive params and
// instructions from the loader.
func newFunction(name string) *Function {
	return &Function{
		Name:     name,
		interned: newInternCache(),
	}
}

// RealArgs returns the variables discovered by scanning Instructions for the
// well-known get-callback-info call and collecting every return variable at
// index tag "3" (§3's "real arguments" extraction). The result is empty if
// the function never calls get-callback-info, which is the case for
// exports that take no host-supplied value arguments.
func (f *Function) RealArgs() []*Variable {
	if f.realArgsSet {
		return f.realArgs
	}

	f.realArgsSet = true

	for _, instr := range f.Instructions {
		call, ok := instr.(*Call)
		if !ok || call.Target != getCallbackInfoTarget {
			continue
		}

		if group := call.RetsByTag(realArgsTag); group != nil {
			f.realArgs = append(f.realArgs, group.Vars...)
		}
	}

	return f.realArgs
}

// Clone returns a structural deep copy of f: every Variable, Parameter and
// Instruction is duplicated so mutating the copy (by C7's type inference or
// C8's lowering) never affects f or any other clone instantiated from it.
// Constants are immutable and are shared rather than copied.
//
// Clone is how C9 turns one loaded blueprint Function into a fresh,
// independently-typed instance per resolved call site.
func (f *Function) Clone() *Function {
	varMap := make(map[*Variable]*Variable)
	paramMap := make(map[*Parameter]*Parameter)

	clone := &Function{
		Name:     f.Name,
		interned: newInternCache(),
	}

	cloneParam := func(p *Parameter) *Parameter {
		if p == nil {
			return nil
		}
		if existing, ok := paramMap[p]; ok {
			return existing
		}
		cp := &Parameter{
			name:         p.name,
			Index:        p.Index,
			DeclaredType: p.DeclaredType,
			Type:         p.Type,
		}
		paramMap[p] = cp

		return cp
	}

	cloneVar := func(v *Variable) *Variable {
		if v == nil {
			return nil
		}
		if existing, ok := varMap[v]; ok {
			return existing
		}
		cv := &Variable{name: v.name, Type: v.Type}
		varMap[v] = cv

		return cv
	}

	cloneValue := func(v Value) Value {
		switch val := v.(type) {
		case *Variable:
			return cloneVar(val)
		case *Parameter:
			return cloneParam(val)
		default:
			// Constants are immutable; share identity.
			return v
		}
	}

	for _, p := range f.Params {
		clone.Params = append(clone.Params, cloneParam(p))
	}

	for _, instr := range f.Instructions {
		switch in := instr.(type) {
		case *Call:
			call := &Call{CallSite: in.CallSite, Target: in.Target}
			for _, op := range in.Operands {
				call.Operands = append(call.Operands, cloneValue(op))
			}
			for _, op := range in.ArgsOperands {
				call.ArgsOperands = append(call.ArgsOperands, cloneValue(op))
			}
			for _, g := range in.Rets {
				group := &ReturnGroup{Tag: g.Tag}
				for _, v := range g.Vars {
					group.Vars = append(group.Vars, cloneVar(v))
				}
				call.Rets = append(call.Rets, group)
			}
			clone.Instructions = append(clone.Instructions, call)
		case *Return:
			clone.Instructions = append(clone.Instructions, &Return{Operand: cloneValue(in.Operand)})
		case *Phi:
			phi := &Phi{Result: cloneVar(in.Result)}
			for _, op := range in.Operands {
				phi.Operands = append(phi.Operands, cloneValue(op))
			}
			clone.Instructions = append(clone.Instructions, phi)
		}
	}

	return clone
}
