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

// nolint:funlen // We need a lot of lines and if to convert an AST to IR.
package ir

import (
	"fmt"

	"github.com/arkbridge/native-body-rebuilder/internal/ast"
)

// NewFile create a new File to a given ast.File.
//
// The real work of building the IR form for a file is not done
// untila call to File.Build().
//
// NewFile only map function, class and import declarations on returned File.
//
// nolint:gocyclo // Some checks is needed here.
func NewFile(f *ast.File) *File {
	file := &File{
		Members:    make(map[string]Member),
		imported:   make(map[string]*ExternalMember),
		name:       f.Name.Name,
		expresions: f.Exprs,
	}

	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			fn := file.NewFunction(decl)
			if _, exists := file.Members[fn.Name()]; exists {
				panic(fmt.Sprintf("ir.NewFile: already existed function member: %s", fn.Name()))
			}
			file.Members[fn.Name()] = fn
		case *ast.ClassDecl:
			strct := file.NewStruct(decl)
			if _, exists := file.Members[strct.Name()]; exists {
				panic(fmt.Sprintf("ir.NewFile: already existed struct member: %s", strct.Name()))
			}
			file.Members[strct.Name()] = strct
		case *ast.ImportDecl:
			importt := &ExternalMember{
				name:  identNameIfNotNil(decl.Name),
				Path:  decl.Path.Name,
				Alias: identNameIfNotNil(decl.Alias),
				Kind:  decl.Kind,
			}
			file.Members[importt.Name()] = importt
			file.imported[importt.Name()] = importt
		case *ast.ValueDecl, *ast.BadNode:
			// Top level value declarations and bad nodes carry no callable
			// surface for call resolution; they are dropped here.
		default:
			panic(fmt.Sprintf("ir.NewFile: unhandled declaration type: %T", decl))
		}
	}

	return file
}

// NewStruct creates a new Struct member to a given class declaration. Each
// method of the class becomes a Function whose Signature is built the same
// way as a free function's.
func (f *File) NewStruct(decl *ast.ClassDecl) *Struct {
	strct := &Struct{
		name: decl.Name.Name,
		File: f,
	}

	if decl.Body == nil {
		return strct
	}

	for _, member := range decl.Body.List {
		if fnDecl, ok := member.(*ast.FuncDecl); ok {
			method := f.NewFunction(fnDecl)
			method.Recv = strct
			strct.Methods = append(strct.Methods, method)
		}
	}

	return strct
}

// NewFunction create a new Function to a given function declaration.
//
// The real work of building the IR form for a function is not done
// until a call to Function.Build().
func (f *File) NewFunction(decl *ast.FuncDecl) *Function {
	var (
		params  []*Parameter
		results []*Parameter
		fn      = &Function{
			name:   decl.Name.Name,
			syntax: decl,
			File:   f,
			Blocks: make([]*BasicBlock, 0),
			Locals: make(map[string]*Var),
		}
	)

	if decl.Type.Params != nil {
		params = make([]*Parameter, 0, len(decl.Type.Params.List))
		for _, p := range decl.Type.Params.List {
			params = append(params, newParameter(fn, p.Name))
		}
	}

	if decl.Type.Results != nil {
		results = make([]*Parameter, 0, len(decl.Type.Results.List))
		for _, p := range decl.Type.Results.List {
			results = append(results, newParameter(fn, p.Name))
		}
	}

	fn.Signature = &Signature{params, results}

	return fn
}

// newParameter return a new Parameter to a given expression.
func newParameter(fn *Function, expr ast.Expr) *Parameter {
	switch expr := expr.(type) {
	case *ast.Ident:
		return &Parameter{
			node:   node{expr},
			parent: fn,
			name:   expr.Name,
			Value:  nil,
		}
	default:
		panic(fmt.Sprintf("ir.newParameter: unhandled expression type: %T", expr))
	}
}

// exprValue lowers a single-result expression e to IR form and returns the
// Value defined by the expression. Identifiers that name an already-declared
// local of fn resolve to that local instead of a fresh, disconnected Var.
//
// nolint:gocyclo // Centralizing all expression-to-value lowering here.
func exprValue(fn *Function, e ast.Expr) Value {
	switch expr := e.(type) {
	case *ast.BasicLit:
		return &Const{node: node{expr}, Value: expr.Value}
	case *ast.Ident:
		if expr.Name == "this" && fn != nil && fn.Recv != nil {
			return &This{node: node{expr}, Struct: fn.Recv}
		}
		if fn != nil {
			if local := fn.lookup(expr.Name); local != nil {
				return local
			}
		}
		return &Var{node: node{expr}, name: expr.Name, Value: nil}
	case *ast.CallExpr:
		return callExpr(fn, expr)
	case *ast.SelectorExpr:
		return &FieldRead{
			node:  node{expr},
			X:     exprValue(fn, expr.Expr),
			Field: expr.Sel.Name,
		}
	case *ast.SubscriptExpr:
		return &IndexRead{
			node:  node{expr},
			X:     exprValue(fn, expr.Object),
			Index: exprValue(fn, expr.Index),
		}
	case *ast.BinaryExpr:
		return &BinOp{
			node:  node{expr},
			Op:    expr.Op,
			Left:  exprValue(fn, expr.Left),
			Right: exprValue(fn, expr.Right),
		}
	case *ast.ObjectExpr:
		return objectExpr(fn, expr)
	default:
		panic(fmt.Sprintf("ir.exprValue: unhandled expression type: %T", expr))
	}
}

// objectExpr lowers an object/array/constructor literal to an Object value.
func objectExpr(fn *Function, expr *ast.ObjectExpr) *Object {
	obj := &Object{node: node{expr}, Comment: expr.Comment}

	for _, elt := range expr.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			if obj.Values == nil {
				obj.Values = make(map[string]Value)
			}

			key := keyName(kv.Key)
			obj.Values[key] = exprValue(fn, kv.Value)
		}
	}

	return obj
}

// keyName returns the literal name used to key an object property.
func keyName(e ast.Expr) string {
	switch key := e.(type) {
	case *ast.Ident:
		return key.Name
	case *ast.BasicLit:
		return key.Value
	default:
		return ""
	}
}

// funcLit lowers a function literal assigned to name into a Function member
// and returns a Var instruction recording the binding.
func funcLit(fn *Function, name string, lit *ast.FuncLit) *Var {
	nested := &Function{
		name:   name,
		syntax: lit,
		File:   fn.File,
		Blocks: make([]*BasicBlock, 0),
		Locals: make(map[string]*Var),
	}

	var params []*Parameter
	if lit.Type.Params != nil {
		for _, p := range lit.Type.Params.List {
			params = append(params, newParameter(nested, p.Name))
		}
	}
	nested.Signature = &Signature{Params: params}

	return &Var{
		node:  node{lit},
		name:  name,
		Value: &closureValue{node: node{lit}, fn: nested},
	}
}

// closureValue wraps a nested Function so it can be used where a Value is
// expected (e.g. as the right-hand side of a Var binding).
type closureValue struct {
	node
	fn *Function
}

func (*closureValue) value()           {}
func (c *closureValue) Name() string   { return c.fn.Name() }
func (c *closureValue) String() string { return c.Name() }

// callExpr lowers a call expression inside fn, resolving its callee and
// arguments to IR form.
func callExpr(fn *Function, call *ast.CallExpr) *Call {
	return newCall(fn, call)
}

// newCall create new Call to a given ast.CallExpr.
//
// If CallExpr arguments use a variable declared inside parent function
// call arguments will point to this declared variable.
//
// nolint:gocyclo // Some checks is needed here.
func newCall(parent *Function, call *ast.CallExpr) *Call {
	args := make([]Value, 0, len(call.Args))

	for _, arg := range call.Args {
		args = append(args, exprValue(parent, arg))
	}

	result := &Call{node: node{call}, Parent: parent, Args: args}

	switch fun := call.Fun.(type) {
	case *ast.Ident:
		result.Kind = StaticInvoke
		result.CalleeName = fun.Name
		// TODO(matheus): This will not work if function is defined inside parent.
		if f := parent.File.Func(fun.Name); f != nil {
			result.Function = f

			break
		}
		result.Function = &Function{name: fun.Name, File: parent.File}
	case *ast.SelectorExpr:
		recv := exprValue(parent, fun.Expr)
		result.CalleeName = fun.Sel.Name

		if ident, ok := fun.Expr.(*ast.Ident); ok {
			result.CalleeBase = ident.Name

			// Expr.Name could be an alias imported name or a module namespace,
			// so check if this identifier is imported and use its real name.
			if importt := parent.File.ImportedPackage(ident.Name); importt != nil {
				result.Kind = StaticInvoke
				result.Function = &Function{
					name: fmt.Sprintf("%s.%s", importt.name, fun.Sel.Name),
					File: parent.File,
				}

				break
			}
		}

		// Otherwise this is an instance call through some receiver value.
		result.Kind = InstanceInvoke
		result.Recv = recv
		result.Function = &Function{name: fun.Sel.Name, File: parent.File}
	default:
		// The callee is reached through an arbitrary value (e.g. a callback
		// obtained dynamically); record it as the receiver of a pointer call.
		result.Kind = PointerInvoke
		result.Recv = exprValue(parent, fun)
		result.Function = &Function{name: "", File: parent.File}
	}

	return result
}

func identNameIfNotNil(i *ast.Ident) string {
	if i != nil {
		return i.Name
	}
	return ""
}
