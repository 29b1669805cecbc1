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

// Package lower builds a straight-line host-model body (C8) from a
// type-inferred summary-IR blueprint function (C7's output), walking its
// instruction list in order and dispatching each Call on its target name.
package lower

import (
	"fmt"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

// logNamespace is the synthetic host target OH_LOG_Print calls are lowered
// to, named in the same "@nodeapi*" convention C9 uses for its synthetic
// files, classes and methods.
const logNamespace = "@nodeapiLog"

// logPrintTarget is the well-known native-binding log primitive.
const logPrintTarget = "OH_LOG_Print"

// lowerer carries the per-function state C8 threads through one blueprint's
// instruction list: the variable-to-local map and the logger.
type lowerer struct {
	fn        *ir.Function
	blueprint *summary.Function
	locals    map[summary.Value]*ir.Var
	logger    *rlog.Logger
}

// Lower populates fn's single entry block with the straight-line host body
// for blueprint, which must already have been produced by Infer (C7) so
// every Variable and Parameter carries a resolved Type.
//
// fn must already have its Signature (parameter list) and Recv (owning
// struct) set, per C9's "select a method sub-signature" step; by the time
// Lower runs, a positional parameter list always exists, declared (from C5)
// or synthesized (from the call-site argument count), so the two sources
// SPEC_FULL.md's prologue describes converge on the same action here: bind
// each of blueprint's "real arguments" to the host parameter at the same
// position.
func Lower(fn *ir.Function, blueprint *summary.Function, logger *rlog.Logger) {
	lw := &lowerer{
		fn:        fn,
		blueprint: blueprint,
		locals:    make(map[summary.Value]*ir.Var),
		logger:    logger,
	}

	lw.prologue()

	for _, instr := range blueprint.Instructions {
		lw.lowerInstr(instr)
	}
}

// prologue binds every declared summary-IR parameter (the native env/info
// handles) to an opaque local typed with the parameter's inferred Type (so
// Unknown for the env handle, Object for the info handle), so a handler reading one of
// them as an operand always resolves, then binds each "real argument" (the
// get-callback-info-extracted values) to the corresponding host positional
// parameter, and finally binds "this".
func (lw *lowerer) prologue() {
	for _, p := range lw.blueprint.Params {
		local := lw.fn.EmitTemp("native", ir.NewConst(p.DeclaredType), p.Type)
		lw.locals[p] = local
	}

	realArgs := lw.blueprint.RealArgs()
	params := lw.hostParams()

	for i, v := range realArgs {
		var ref ir.Value
		var typ ir.Type
		if i < len(params) {
			ref, typ = params[i], params[i].Type
		} else {
			ref, typ = ir.NewConst(""), v.Type
		}

		local := lw.fn.EmitTemp("param", ref, typ)
		lw.locals[v] = local
	}

	recvType := ir.TypeAny
	if lw.fn.Recv != nil {
		recvType = ir.NewClassType(lw.fn.Recv)
	}
	lw.fn.EmitThis(recvType)
}

// hostParams returns fn's declared host parameters, or nil if it has none.
func (lw *lowerer) hostParams() []*ir.Parameter {
	if lw.fn.Signature == nil {
		return nil
	}

	return lw.fn.Signature.Params
}

// lowerInstr dispatches a single blueprint instruction to its handler.
func (lw *lowerer) lowerInstr(instr summary.Instruction) {
	switch in := instr.(type) {
	case *summary.Call:
		lw.lowerCall(in)
	case *summary.Phi:
		lw.lowerPhi(in)
	case *summary.Return:
		lw.lowerReturn(in)
	}
}

// bindReturn binds every return variable tagged tag on call to local.
func (lw *lowerer) bindReturn(call *summary.Call, tag string, local *ir.Var) {
	group := call.RetsByTag(tag)
	if group == nil {
		return
	}

	for _, v := range group.Vars {
		lw.locals[v] = local
	}
}

// operand resolves operand index idx of call to a host Value: an existing
// local for a Variable/Parameter operand, or a freshly minted constant for a
// literal operand. Returns false if idx is out of range or names an
// operand this function never saw bound (a document ordering violation).
func (lw *lowerer) operand(call *summary.Call, idx int) (ir.Value, bool) {
	if idx < 0 || idx >= len(call.Operands) {
		return nil, false
	}

	return lw.resolve(call.Operands[idx])
}

func (lw *lowerer) resolve(v summary.Value) (ir.Value, bool) {
	switch val := v.(type) {
	case *summary.Variable:
		if local, ok := lw.locals[val]; ok {
			return local, true
		}

		lw.warn("operand variable used before it was bound", v.Token())

		return nil, false
	case *summary.Parameter:
		if local, ok := lw.locals[val]; ok {
			return local, true
		}

		lw.warn("operand parameter used before it was bound", v.Token())

		return nil, false
	case *summary.NumberConstant:
		return ir.NewConst(fmt.Sprintf("%d", val.Value)), true
	case *summary.StringConstant:
		return ir.NewConst(val.Value), true
	case summary.NullConstant:
		return ir.NewConst("null"), true
	case summary.TopConstant:
		return ir.NewConst("top"), true
	default:
		return nil, false
	}
}

func (lw *lowerer) warn(msg, detail string) {
	if lw.logger == nil {
		return
	}

	lw.logger.Warn(rlog.Lower, msg, rlog.Fields{
		"function": lw.blueprint.Name,
		"operand":  detail,
	})
}
