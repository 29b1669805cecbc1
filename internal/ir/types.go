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

// Kind discriminates the variants of the host-model Type lattice.
type Kind int

const (
	Unknown Kind = iota // Bottom: nothing is known yet.
	Any                 // Top: merge of incompatible concrete types.
	Number
	String
	Boolean
	Null
	Undefined
	Void
	ArrayKind
	FunctionKind
	ClassKind
)

// Type is a value of the host-model type lattice used by type inference (C7)
// and by the synthetic-method assembler (C9) to pick parameter types.
//
// Array and Class types carry extra structural data (element type and
// dimensionality, or the struct they name) and compare equal structurally,
// not by identity.
type Type struct {
	Kind Kind

	Elem Type    // Element type, only meaningful when Kind == ArrayKind.
	Dims int     // Array dimensionality, only meaningful when Kind == ArrayKind.
	Sig  *Signature // Function signature, only meaningful when Kind == FunctionKind.
	Of   *Struct // Named struct/class, only meaningful when Kind == ClassKind.
}

// Basic type constructors for the non-structural kinds.
var (
	TypeUnknown   = Type{Kind: Unknown}
	TypeAny       = Type{Kind: Any}
	TypeNumber    = Type{Kind: Number}
	TypeString    = Type{Kind: String}
	TypeBoolean   = Type{Kind: Boolean}
	TypeNull      = Type{Kind: Null}
	TypeUndefined = Type{Kind: Undefined}
	TypeVoid      = Type{Kind: Void}
)

// NewArrayType builds an Array(elem, dims) type.
func NewArrayType(elem Type, dims int) Type {
	return Type{Kind: ArrayKind, Elem: elem, Dims: dims}
}

// NewFunctionType builds a Function(sig) type.
func NewFunctionType(sig *Signature) Type {
	return Type{Kind: FunctionKind, Sig: sig}
}

// NewClassType builds a Class(struct) type.
func NewClassType(s *Struct) Type {
	return Type{Kind: ClassKind, Of: s}
}

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Any:
		return "Any"
	case Number:
		return "Number"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	case Undefined:
		return "Undefined"
	case Void:
		return "Void"
	case ArrayKind:
		return "Array"
	case FunctionKind:
		return "Function"
	case ClassKind:
		return "Class"
	default:
		return "?"
	}
}

func (t Type) String() string {
	switch t.Kind {
	case ArrayKind:
		return fmt.Sprintf("Array(%s, dims=%d)", t.Elem, t.Dims)
	case ClassKind:
		if t.Of != nil {
			return fmt.Sprintf("Class(%s)", t.Of.Name())
		}
		return "Class(?)"
	case FunctionKind:
		if t.Sig != nil {
			return fmt.Sprintf("Function%s", t.Sig)
		}
		return "Function(?)"
	default:
		return t.Kind.String()
	}
}

// Equal reports whether t and other name the same type, comparing Array and
// Class types structurally rather than by identity.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case ArrayKind:
		return t.Dims == other.Dims && t.Elem.Equal(other.Elem)
	case ClassKind:
		return t.Of == other.Of
	case FunctionKind:
		return t.Sig.Equal(other.Sig)
	default:
		return true
	}
}

// Merge implements the type-lattice join used by C7: identical types merge to
// themselves, Unknown is absorbed by anything, and incompatible concrete
// types merge to Any.
func (t Type) Merge(other Type) Type {
	if t.Equal(other) {
		return t
	}

	if t.Kind == Unknown {
		return other
	}

	if other.Kind == Unknown {
		return t
	}

	if t.Kind == Any || other.Kind == Any {
		return TypeAny
	}

	return TypeAny
}

// IsIncompatibleMerge reports whether merging t and other collides two
// different concrete (non-Unknown, non-Any) types into Any — the case C7
// must warn about, as distinct from Unknown being absorbed or either side
// already being Any.
func IsIncompatibleMerge(t, other Type) bool {
	if t.Equal(other) {
		return false
	}

	return t.Kind != Unknown && t.Kind != Any && other.Kind != Unknown && other.Kind != Any
}

// ValueType returns the host-model type already carried by v, or TypeUnknown
// for a value kind (a literal Const, a bare Call, ...) that carries none of
// its own. Used by C9 to refine a synthetic parameter's type from the
// corresponding call-site argument.
func ValueType(v Value) Type {
	switch val := v.(type) {
	case *Var:
		return val.Type
	case *Parameter:
		return val.Type
	default:
		return TypeUnknown
	}
}

// Equal reports whether two signatures have the same arity with
// structurally-equal parameter and result types.
func (s *Signature) Equal(other *Signature) bool {
	if s == other {
		return true
	}

	if s == nil || other == nil {
		return false
	}

	return paramsEqual(s.Params, other.Params) && paramsEqual(s.Results, other.Results)
}

func paramsEqual(a, b []*Parameter) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}

	return true
}
