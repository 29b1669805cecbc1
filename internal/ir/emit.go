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

package ir

import (
	"fmt"

	"github.com/arkbridge/native-body-rebuilder/internal/ast"
)

// syntheticNode stands in for ast.Node on IR built directly from summary-IR
// instructions or minted by the synthetic-method assembler, where there is
// no host source text to point back to.
type syntheticNode struct{}

func (syntheticNode) Pos() ast.Position { return ast.Position{} }

// NoPos is the source-position placeholder used by IR nodes that do not
// originate from parsed host source.
var NoPos ast.Node = syntheticNode{}

// NewSyntheticFunction creates a standalone Function owned by f, with an
// empty single entry block ready for direct emission (used by C8's
// lowering, which builds straight-line bodies from summary-IR instructions
// instead of from a host AST).
func (f *File) NewSyntheticFunction(name string, sig *Signature) *Function {
	fn := &Function{
		name:      name,
		File:      f,
		Signature: sig,
		Locals:    make(map[string]*Var),
		Blocks:    make([]*BasicBlock, 0, 1),
		syntax:    NoPos,
	}
	fn.currentBlock = fn.newBasicBlock("entry")

	return fn
}

// NewSyntheticStruct creates and registers a synthetic Struct member on f.
func (f *File) NewSyntheticStruct(name string) *Struct {
	s := &Struct{name: name, File: f}
	if f.Members == nil {
		f.Members = make(map[string]Member)
	}
	f.Members[name] = s

	return s
}

// NewSyntheticFile creates a standalone File with the given name, suitable
// as the home for methods minted by the synthetic-method assembler.
func NewSyntheticFile(name string) *File {
	return &File{
		name:     name,
		Members:  make(map[string]Member),
		imported: make(map[string]*ExternalMember),
	}
}

// AddMethod appends fn to s.Methods and sets fn.Recv to s.
func (s *Struct) AddMethod(fn *Function) {
	fn.Recv = s
	s.Methods = append(s.Methods, fn)
}

// NewSyntheticParameter builds a Parameter owned by fn, for use in a
// synthetic Signature minted directly (rather than recovered from an
// ast.FuncDecl) by C9's per-call-site method assembler.
func NewSyntheticParameter(fn *Function, name string, typ Type) *Parameter {
	return &Parameter{node: node{NoPos}, name: name, Type: typ, parent: fn}
}

// NewConst builds a Const carrying the given raw token, for code (C8's
// lowering) that needs to mint a literal value with no host source position.
func NewConst(value string) *Const {
	return &Const{node: node{NoPos}, Value: value}
}

// NewExternalFunction builds a placeholder Function naming an external
// target not declared anywhere in this file's own Members (e.g. a host
// logging method C8's lowering invokes), suitable as a Call's Function
// field.
func NewExternalFunction(name string) *Function {
	return &Function{name: name}
}

// EmitThis appends an assignment binding the local "this" to a This-reference
// of fn's owning struct (fn.Recv), typed typ.
func (fn *Function) EmitThis(typ Type) *Var {
	this := &This{node: node{NoPos}, Struct: fn.Recv}

	return fn.EmitNamed("this", this, typ)
}

// EmitNamed appends a new named local bound to value to fn's current block.
func (fn *Function) EmitNamed(name string, value Value, typ Type) *Var {
	v := &Var{node: node{NoPos}, name: name, Value: value, Type: typ}
	fn.Locals[name] = v
	fn.emit(v)

	return v
}

// EmitTemp mints a fresh local using the given prefix (e.g. "number", "array")
// and binds it to value, appending the assignment to fn's current block.
func (fn *Function) EmitTemp(prefix string, value Value, typ Type) *Var {
	name := fmt.Sprintf("%%%s_%d", prefix, fn.tempCounter())
	v := &Var{node: node{NoPos}, name: name, Value: value, Type: typ}
	fn.Locals[name] = v
	fn.emit(v)

	return v
}

// tempCounter returns the number of locals already declared on fn, named
// ones included, used to keep generated "%prefix_N" names unique and stable.
func (fn *Function) tempCounter() int {
	return len(fn.Locals)
}

// EmitFieldRead appends `x.field` to fn's current block and binds the
// result to a fresh local minted under prefix (e.g. "length").
func (fn *Function) EmitFieldRead(x Value, field string, typ Type, prefix string) *Var {
	read := &FieldRead{node: node{NoPos}, X: x, Field: field}

	return fn.EmitTemp(prefix, read, typ)
}

// EmitFieldWrite appends `x.field = value` to fn's current block.
func (fn *Function) EmitFieldWrite(x Value, field string, value Value) {
	fn.emit(&FieldWrite{node: node{NoPos}, X: x, Field: field, Value: value})
}

// EmitIndexRead appends `x[index]` to fn's current block and binds the
// result to a fresh local minted under prefix (e.g. "get_element").
func (fn *Function) EmitIndexRead(x, index Value, typ Type, prefix string) *Var {
	read := &IndexRead{node: node{NoPos}, X: x, Index: index}

	return fn.EmitTemp(prefix, read, typ)
}

// EmitIndexWrite appends `x[index] = value` to fn's current block.
func (fn *Function) EmitIndexWrite(x, index, value Value) {
	fn.emit(&IndexWrite{node: node{NoPos}, X: x, Index: index, Value: value})
}

// EmitNewArray mints a fresh Array-typed local bound to `new array[length]`,
// under prefix (e.g. "array").
func (fn *Function) EmitNewArray(length Value, elem Type, prefix string) *Var {
	arr := &NewArray{node: node{NoPos}, Len: length}

	return fn.EmitTemp(prefix, arr, NewArrayType(elem, 1))
}

// EmitTypeAssert mints a fresh Boolean-typed local bound to `x instanceof typ`,
// under prefix (e.g. "is_array").
func (fn *Function) EmitTypeAssert(x Value, typ Type, prefix string) *Var {
	assert := &TypeAssert{node: node{NoPos}, X: x, Type: typ}

	return fn.EmitTemp(prefix, assert, TypeBoolean)
}

// EmitPhi appends a Phi instruction whose edges pair preds[i] with values[i],
// binding the result to a fresh local.
func (fn *Function) EmitPhi(preds []*BasicBlock, values []Value, comment string, typ Type) *Var {
	phi := &Phi{node: node{NoPos}, Comment: comment}
	for i, v := range values {
		var block *BasicBlock
		if i < len(preds) {
			block = preds[i]
		}
		phi.Edges = append(phi.Edges, &PhiEdge{block: block, Value: v})
	}

	return fn.EmitTemp("phi", phi, typ)
}

// EmitReturn appends a Return instruction terminating fn's current block.
func (fn *Function) EmitReturn(results []Value) {
	fn.emit(&Return{node: node{NoPos}, Results: results})
}

// EmitCall appends an invoke of target with args to fn's current block and,
// when bind is non-empty, binds the call's result to a fresh local of typ.
func (fn *Function) EmitCall(kind CallKind, recv Value, target *Function, args []Value, bind string, typ Type) Value {
	call := &Call{node: node{NoPos}, Parent: fn, Function: target, Args: args, Kind: kind, Recv: recv}

	if bind == "" {
		fn.emit(call)

		return call
	}

	return fn.EmitTemp(bind, call, typ)
}

// RewriteCallTarget updates the callee of an existing Call in place, the
// in-place analogue of the invoke-expression rewrite the synthetic-method
// assembler performs once a call site's synthetic method exists.
func (c *Call) RewriteCallTarget(kind CallKind, recv Value, target *Function) {
	c.Kind = kind
	c.Recv = recv
	c.Function = target
}

// CurrentBlock returns the block new instructions append to.
func (fn *Function) CurrentBlock() *BasicBlock {
	return fn.currentBlock
}

// Lookup returns the declared local variable with the given name, or nil.
func (fn *Function) Lookup(name string) *Var {
	return fn.lookup(name)
}
