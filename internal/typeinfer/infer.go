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

// Package typeinfer propagates host-model types through a loaded summary-IR
// function, using a worklist fixpoint driven by a fixed rule table keyed on
// native-binding call-target names.
package typeinfer

import (
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

// passCap bounds the number of instruction visits the worklist performs,
// expressed as a multiple of the function's own instruction count so the
// cap scales with the size of what it is bounding, per SPEC_FULL.md's "100
// passes" safety valve.
const passCap = 100

// Infer runs the worklist fixpoint over fn in place: every Variable and
// Parameter's Type field is updated until no further change propagates or
// the safety cap is reached. Seeds: parameter 0 is the host-environment
// handle (left Unknown), parameter 1 is the receiver (Object), and every
// remaining parameter starts at Any.
func Infer(fn *summary.Function, logger *rlog.Logger) {
	seed(fn)

	users := buildUserIndex(fn)
	queue, inQueue := newWorklist(fn.Instructions)

	ctx := &inferCtx{fn: fn, logger: logger}

	enqueue := func(v summary.Value) {
		for _, instr := range users[v] {
			if !inQueue[instr] {
				inQueue[instr] = true
				queue = append(queue, instr)
			}
		}
	}

	visitCap := passCap * (len(fn.Instructions) + 1)
	visits := 0

	for len(queue) > 0 && visits < visitCap {
		instr := queue[0]
		queue = queue[1:]
		delete(inQueue, instr)
		visits++

		step(ctx, instr, enqueue)
	}

	defaultRemaining(fn, logger, visits >= visitCap)
}

// inferCtx carries the per-run state step/join need only to report a
// warning, so the worklist loop above does not have to thread fn/logger
// through every call individually.
type inferCtx struct {
	fn     *summary.Function
	logger *rlog.Logger
}

// seed assigns the fixed starting types to fn's positional parameters.
func seed(fn *summary.Function) {
	for i, p := range fn.Params {
		switch i {
		case 0:
			p.Type = ir.TypeUnknown
		case 1:
			p.Type = objectType()
		default:
			p.Type = ir.TypeAny
		}
	}
}

// newWorklist seeds the queue with every instruction in declaration order.
func newWorklist(instrs []summary.Instruction) ([]summary.Instruction, map[summary.Instruction]bool) {
	queue := make([]summary.Instruction, len(instrs))
	copy(queue, instrs)

	inQueue := make(map[summary.Instruction]bool, len(instrs))
	for _, instr := range instrs {
		inQueue[instr] = true
	}

	return queue, inQueue
}

// buildUserIndex maps every mutable Value (Variable or Parameter) to the
// instructions that read it, so a type change can re-enqueue its users.
func buildUserIndex(fn *summary.Function) map[summary.Value][]summary.Instruction {
	users := make(map[summary.Value][]summary.Instruction)

	for _, instr := range fn.Instructions {
		for _, v := range instr.UsedVars() {
			if !mutable(v) {
				continue
			}
			users[v] = append(users[v], instr)
		}
	}

	return users
}

// step applies the rule for instr's concrete kind, enqueuing the users of
// any Value whose type changed.
func step(ctx *inferCtx, instr summary.Instruction, enqueue func(summary.Value)) {
	switch in := instr.(type) {
	case *summary.Call:
		stepCall(ctx, in, enqueue)
	case *summary.Phi:
		stepPhi(ctx, in, enqueue)
	case *summary.Return:
		// The operand retains whatever type it already has; Return is a
		// leaf in the use chain and binds nothing.
	}
}

// stepCall joins the rule table's declared operand and return types into
// call's actual operands and return variables.
func stepCall(ctx *inferCtx, call *summary.Call, enqueue func(summary.Value)) {
	r, ok := lookupRule(call.Target)
	if !ok {
		return
	}

	for _, opRule := range r.operands {
		if opRule.index < 0 || opRule.index >= len(call.Operands) {
			continue
		}

		join(ctx, call.Operands[opRule.index], opRule.typ, enqueue)
	}

	for _, retRule := range r.returns {
		group := call.RetsByTag(retRule.tag)
		if group == nil {
			continue
		}

		for _, v := range group.Vars {
			join(ctx, v, retRule.typ, enqueue)
		}
	}
}

// stepPhi unifies every non-constant operand and the result into a single
// merged type, then propagates that merge back to each operand.
func stepPhi(ctx *inferCtx, phi *summary.Phi, enqueue func(summary.Value)) {
	merged := typeOf(phi.Result)

	for _, op := range phi.Operands {
		if !mutable(op) {
			continue
		}

		next := typeOf(op)
		warnIfIncompatible(ctx, merged, next)
		merged = merged.Merge(next)
	}

	join(ctx, phi.Result, merged, enqueue)

	for _, op := range phi.Operands {
		if !mutable(op) {
			continue
		}

		join(ctx, op, merged, enqueue)
	}
}

// join merges t into v's current type; if the merge changes v's type, the
// new type is written back and v's users are enqueued. A merge of two
// incompatible concrete types (collapsing to Any) is warned before the
// write-back, per SPEC_FULL.md's "T ⊔ U = Any for incompatible concrete
// T, U (with a warning)".
func join(ctx *inferCtx, v summary.Value, t ir.Type, enqueue func(summary.Value)) {
	if !mutable(v) {
		return
	}

	current := typeOf(v)
	warnIfIncompatible(ctx, current, t)
	merged := current.Merge(t)

	if merged.Equal(current) {
		return
	}

	setType(v, merged)
	enqueue(v)
}

// warnIfIncompatible logs once per colliding merge when two different
// concrete types widen to Any; a nil logger (as in most tests) is a no-op.
func warnIfIncompatible(ctx *inferCtx, a, b ir.Type) {
	if ctx.logger == nil || !ir.IsIncompatibleMerge(a, b) {
		return
	}

	ctx.logger.Warn(rlog.TypeInfer, "merged incompatible concrete types to Any", rlog.Fields{
		"function": ctx.fn.Name,
		"left":     a.String(),
		"right":    b.String(),
	})
}

// mutable reports whether v carries a Type field inference can update:
// Variables and Parameters do, the constant kinds don't.
func mutable(v summary.Value) bool {
	switch v.(type) {
	case *summary.Variable, *summary.Parameter:
		return true
	default:
		return false
	}
}

// typeOf returns v's current type, or Unknown for an immutable constant
// value (constants never participate in the lattice beyond being skipped).
func typeOf(v summary.Value) ir.Type {
	switch val := v.(type) {
	case *summary.Variable:
		return val.Type
	case *summary.Parameter:
		return val.Type
	default:
		return ir.TypeUnknown
	}
}

// setType writes t onto v, which must be mutable.
func setType(v summary.Value, t ir.Type) {
	switch val := v.(type) {
	case *summary.Variable:
		val.Type = t
	case *summary.Parameter:
		val.Type = t
	}
}

// defaultRemaining defaults every still-Unknown Variable and Parameter in fn
// to Any, warning once per function when the cap was reached and once more
// if any value needed defaulting.
func defaultRemaining(fn *summary.Function, logger *rlog.Logger, capped bool) {
	var defaulted int

	for i, p := range fn.Params {
		if i == 0 {
			// Parameter 0 is the host-environment handle: it is seeded
			// Unknown deliberately and stays opaque rather than defaulting
			// to Any.
			continue
		}

		if p.Type.Kind == ir.Unknown {
			p.Type = ir.TypeAny
			defaulted++
		}
	}

	seen := make(map[*summary.Variable]bool)
	for _, instr := range fn.Instructions {
		for _, v := range instr.DefinedVars() {
			if v == nil || seen[v] {
				continue
			}
			seen[v] = true

			if v.Type.Kind == ir.Unknown {
				v.Type = ir.TypeAny
				defaulted++
			}
		}
	}

	if logger == nil {
		return
	}

	if capped {
		logger.Warn(rlog.TypeInfer, "worklist hit safety cap before reaching fixpoint", rlog.Fields{
			"function": fn.Name,
		})
	}

	if defaulted > 0 {
		logger.Warn(rlog.TypeInfer, "defaulted unresolved types to Any", rlog.Fields{
			"function": fn.Name,
			"count":    defaulted,
		})
	}
}
