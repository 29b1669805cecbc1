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

// Package summary models the per-library summary-IR documents: their value
// universe (C1), instructions (C2), functions and modules (C3), and the
// loader that turns JSON documents into this model (C4).
package summary

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
)

// Value is an operand of a summary-IR instruction: a Variable, a Parameter,
// or one of the constant kinds (number, string, null, top).
//
// Constants are immutable once created; Variable and Parameter carry a
// mutable Type and a HostBinding field. C8's lowering does not set Binding:
// it records each value's host local in its own per-function map.
type Value interface {
	value()

	// Token is the textual form this value was interned from.
	Token() string
}

// HostBinding is the host-model value a summary-IR Variable or Parameter is
// lowered to. C8's lowering does not set it, so it stays nil unless a
// caller sets it.
type HostBinding struct {
	Value ir.Value
	Type  ir.Type
}

// Variable is a summary-IR SSA name: defined by exactly one instruction in
// its owning function.
type Variable struct {
	name    string
	Type    ir.Type
	Binding *HostBinding
}

func (*Variable) value()          {}
func (v *Variable) Token() string { return v.name }

// Name returns the variable's textual name.
func (v *Variable) Name() string { return v.name }

// Parameter is a summary-IR function parameter, keyed by its positional
// index in the function's params table.
type Parameter struct {
	name         string
	Index        int
	DeclaredType string // Declared type string from the document, e.g. "napi_value".
	Type         ir.Type
	Binding      *HostBinding
}

func (*Parameter) value()          {}
func (p *Parameter) Token() string { return p.name }

// Name returns the parameter's textual name.
func (p *Parameter) Name() string { return p.name }

// NumberConstant is an integer constant token (`long -?\d+`).
type NumberConstant struct {
	token string
	Value int64
}

func (*NumberConstant) value()          {}
func (n *NumberConstant) Token() string { return n.token }

// StringConstant is a string literal constant token (`char* "..."`).
type StringConstant struct {
	token string
	Value string
}

func (*StringConstant) value()          {}
func (s *StringConstant) Token() string { return s.token }

// NullConstant is the "null" token.
type NullConstant struct{}

func (NullConstant) value()          {}
func (NullConstant) Token() string   { return "null" }

// TopConstant is the "top" token, meaning "irrelevant/unused".
type TopConstant struct{}

func (TopConstant) value()        {}
func (TopConstant) Token() string { return "top" }

var (
	numberTokenRe = regexp.MustCompile(`^long (-?\d+)$`)
	stringTokenRe = regexp.MustCompile(`^char\* "(.*)"$`)
)

// ErrMalformedToken reports a constant-shaped token that failed to parse.
type ErrMalformedToken struct {
	Token string
}

func (e *ErrMalformedToken) Error() string {
	return fmt.Sprintf("summary: malformed constant token %q", e.Token)
}

// internCache interns Values by their textual token within one function,
// so equal tokens share identity (invariant ii).
type internCache struct {
	values map[string]Value
}

func newInternCache() *internCache {
	return &internCache{values: make(map[string]Value)}
}

// intern classifies and interns a raw token per the C1 grammar:
//
//	"null"              -> NullConstant
//	"top"               -> TopConstant
//	`long -?\d+`        -> NumberConstant
//	`char\* "(.*)"`     -> StringConstant
//	anything else       -> Variable
//
// A token that looks like a "long" or "char*" literal but fails to parse
// returns ErrMalformedToken; the caller (C4's function loader) drops the
// enclosing function load on this error.
func (c *internCache) intern(token string) (Value, error) {
	if v, ok := c.values[token]; ok {
		return v, nil
	}

	v, err := classify(token)
	if err != nil {
		return nil, err
	}

	c.values[token] = v

	return v, nil
}

func classify(token string) (Value, error) {
	switch {
	case token == "null":
		return NullConstant{}, nil
	case token == "top":
		return TopConstant{}, nil
	case looksLikeNumberToken(token):
		m := numberTokenRe.FindStringSubmatch(token)
		if m == nil {
			return nil, &ErrMalformedToken{Token: token}
		}

		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, &ErrMalformedToken{Token: token}
		}

		return &NumberConstant{token: token, Value: n}, nil
	case looksLikeStringToken(token):
		m := stringTokenRe.FindStringSubmatch(token)
		if m == nil {
			return nil, &ErrMalformedToken{Token: token}
		}

		return &StringConstant{token: token, Value: m[1]}, nil
	default:
		return &Variable{name: token}, nil
	}
}

// looksLikeNumberToken reports whether token has the "long ..." shape,
// without committing to whether the remainder actually parses — a token
// that starts this way but doesn't fully match numberTokenRe is a malformed
// constant, not a variable named "long 4x".
func looksLikeNumberToken(token string) bool {
	return len(token) > len("long ") && token[:len("long ")] == "long "
}

func looksLikeStringToken(token string) bool {
	return len(token) > len(`char* "`) && token[:len(`char* "`)] == `char* "`
}

// internParameter interns a Parameter for a positional index and declared
// type string, used by the function loader while walking the params table.
func (c *internCache) internParameter(index int, declaredType string) *Parameter {
	name := fmt.Sprintf("p%d", index)

	if existing, ok := c.values[name]; ok {
		if p, ok := existing.(*Parameter); ok {
			return p
		}
	}

	p := &Parameter{name: name, Index: index, DeclaredType: declaredType}
	c.values[name] = p

	return p
}
