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

import "fmt"

// Struct represents a host class: a named member owning a set of methods.
//
// The Struct implements Member interface.
type Struct struct {
	name    string      // Class name.
	File    *File       // File that this struct belongs.
	Methods []*Function // Methods declared on the struct, in declaration order.
}

func (*Struct) member()        {}
func (s *Struct) Name() string { return s.name }

// Method returns the method with the given name, or nil.
func (s *Struct) Method(name string) *Function {
	for _, m := range s.Methods {
		if m.Name() == name {
			return m
		}
	}

	return nil
}

// This represents the implicit receiver inside an instance method body.
//
// The This implements Value interface.
type This struct {
	node
	Struct *Struct // Struct this receiver belongs to.
}

func (*This) value()         {}
func (*This) Name() string   { return "this" }
func (t *This) String() string { return t.Name() }

// Phi instruction represents an SSA phi-node: the value of Result depends on
// which predecessor block control flowed from.
//
// The Phi implements Value and Instruction interfaces.
type Phi struct {
	node
	Comment string      // Optional label; no semantic significance.
	Edges   []*PhiEdge // One edge per predecessor of the owning block, same order as block.Preds.
}

// PhiEdge pairs an incoming value with the block it flows from.
//
// PhiEdge embeds Value so edge.Name() forwards to the incoming value.
type PhiEdge struct {
	block *BasicBlock
	Value
}

func (*Phi) instr()         {}
func (*Phi) value()         {}
func (p *Phi) Name() string { return p.String() }

// Object represents a property bag created by an object/array literal or
// a raw allocation standing in for a not-yet-typed native value.
//
// The Object implements Value and Instruction interfaces.
type Object struct {
	node
	Comment string           // "hashmap", "array", "constructor", or "" for a raw allocation.
	Values  map[string]Value // Property values keyed by name; nil for an empty/raw object.
}

func (*Object) instr()         {}
func (*Object) value()         {}
func (o *Object) Name() string { return o.String() }
func (o *Object) String() string {
	if o.Comment != "" {
		return fmt.Sprintf("new %s{}", o.Comment)
	}

	return "new object{}"
}

// FieldRead instruction reads a named property off a value.
//
// Example printed form:
// 	x.foo
//
// The FieldRead implements Value and Instruction interfaces.
type FieldRead struct {
	node
	X     Value
	Field string
}

func (*FieldRead) instr()         {}
func (*FieldRead) value()         {}
func (f *FieldRead) Name() string { return f.String() }
func (f *FieldRead) String() string {
	return fmt.Sprintf("%s.%s", f.X.Name(), f.Field)
}

// FieldWrite instruction assigns a value to a named property.
//
// Example printed form:
// 	x.foo = v
//
// The FieldWrite implements Instruction interface.
type FieldWrite struct {
	node
	X     Value
	Field string
	Value Value
}

func (*FieldWrite) instr() {}
func (f *FieldWrite) String() string {
	return fmt.Sprintf("%s.%s = %s", f.X.Name(), f.Field, f.Value.Name())
}

// IndexRead instruction reads an element off an array-like value by index.
//
// The IndexRead implements Value and Instruction interfaces.
type IndexRead struct {
	node
	X     Value
	Index Value
}

func (*IndexRead) instr()         {}
func (*IndexRead) value()         {}
func (r *IndexRead) Name() string { return r.String() }
func (r *IndexRead) String() string {
	return fmt.Sprintf("%s[%s]", r.X.Name(), r.Index.Name())
}

// IndexWrite instruction assigns a value to an array-like value at an index.
//
// The IndexWrite implements Instruction interface.
type IndexWrite struct {
	node
	X     Value
	Index Value
	Value Value
}

func (*IndexWrite) instr() {}
func (w *IndexWrite) String() string {
	return fmt.Sprintf("%s[%s] = %s", w.X.Name(), w.Index.Name(), w.Value.Name())
}

// NewArray instruction allocates a fixed-length array value.
//
// The NewArray implements Value and Instruction interfaces.
type NewArray struct {
	node
	Len Value // Requested length, or nil if unknown/unbounded.
}

func (*NewArray) instr()         {}
func (*NewArray) value()         {}
func (a *NewArray) Name() string { return a.String() }
func (a *NewArray) String() string {
	if a.Len != nil {
		return fmt.Sprintf("new array[%s]", a.Len.Name())
	}

	return "new array[]"
}

// TypeAssert instruction tests whether X holds a value of the given Type,
// the host-level equivalent of an `instanceof` check.
//
// The TypeAssert implements Value and Instruction interfaces.
type TypeAssert struct {
	node
	X    Value
	Type Type
}

func (*TypeAssert) instr()         {}
func (*TypeAssert) value()         {}
func (t *TypeAssert) Name() string { return t.String() }
func (t *TypeAssert) String() string {
	return fmt.Sprintf("%s.(%s)", t.X.Name(), t.Type)
}

