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

// Package resolve walks a host model's import declarations and call sites,
// attaching each cross-language call to the library and exported function it
// targets, plus a declared signature recovered from the binding index.
package resolve

import (
	"regexp"
	"strings"

	"github.com/arkbridge/native-body-rebuilder/internal/ast"
	"github.com/arkbridge/native-body-rebuilder/internal/binding"
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
)

// nativeSuffix marks an import path as a native-binary module. A path may
// carry an internal-tag variant, e.g. "libentry.so&1".
const nativeSuffix = ".so"

// loaderFunction is the well-known dynamic module-loading convention.
const loaderFunction = "loadNativeModule"

// CallSite is a successfully resolved cross-language call.
type CallSite struct {
	Call         *ir.Call
	Func         *ir.Function
	Block        *ir.BasicBlock
	Index        int // position of Call's enclosing instruction within Block.Instrs
	Library      string
	ExportedName string
	Signature    *binding.Signature // nil if no declaration was found
}

// namedTarget records what a named-function-alias was bound to.
type namedTarget struct {
	library  string
	original string
}

// aliasTable is the per-file alias environment built from import
// declarations and any loadNativeModule convention calls.
type aliasTable struct {
	moduleAlias map[string]string
	namedAlias  map[string]namedTarget
}

func newAliasTable() *aliasTable {
	return &aliasTable{
		moduleAlias: make(map[string]string),
		namedAlias:  make(map[string]namedTarget),
	}
}

// libraryFromPath strips the native-binary suffix from an import path,
// returning the bare library name. ok is false if path does not look like a
// native-binary import.
func libraryFromPath(path string) (string, bool) {
	idx := strings.Index(path, nativeSuffix)
	if idx == -1 {
		return "", false
	}

	return path[:idx], true
}

// buildAliasTable classifies every import of f that targets a native binary
// into a module-alias or a named-function-alias, per the four import shapes.
func buildAliasTable(f *ir.File) *aliasTable {
	table := newAliasTable()

	for localName, member := range f.Imports() {
		lib, ok := libraryFromPath(member.Path)
		if !ok {
			continue
		}

		switch member.Kind {
		case ast.SideEffectImport:
			// No binding is produced.
		case ast.NamedImport:
			table.namedAlias[localName] = namedTarget{library: lib, original: member.OriginalName()}
		default: // DefaultImport covers default, namespace and equals-require shapes.
			table.moduleAlias[localName] = lib
		}
	}

	return table
}

// collectDynamicAliases scans f for loadNativeModule(...) convention calls
// and records the assigned local as a dynamic module-alias for the extracted
// library.
func (table *aliasTable) collectDynamicAliases(f *ir.File) {
	for _, fn := range f.Functions() {
		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				v, ok := instr.(*ir.Var)
				if !ok {
					continue
				}

				call, ok := v.Value.(*ir.Call)
				if !ok || call.CalleeBase != "" || call.CalleeName != loaderFunction {
					continue
				}

				if len(call.Args) == 0 {
					continue
				}

				lit, ok := call.Args[0].(*ir.Const)
				if !ok {
					continue
				}

				lib, ok := libraryFromPath(lit.Value)
				if !ok {
					lib = lit.Value
				}

				table.moduleAlias[v.Name()] = lib
			}
		}
	}
}

// callOccurrence is a Call found while walking a function's basic blocks,
// together with its position so a CallSite can record where it lives.
type callOccurrence struct {
	call  *ir.Call
	block *ir.BasicBlock
	index int
}

// collectCalls returns every Call reachable from fn's instructions, whether
// it appears directly as an instruction or as the bound value of a Var
// instruction (an assignment `x = f(...)`).
func collectCalls(fn *ir.Function) []callOccurrence {
	var out []callOccurrence

	for _, block := range fn.Blocks {
		for i, instr := range block.Instrs {
			switch v := instr.(type) {
			case *ir.Call:
				out = append(out, callOccurrence{v, block, i})
			case *ir.Var:
				if call, ok := v.Value.(*ir.Call); ok {
					out = append(out, callOccurrence{call, block, i})
				}
			}
		}
	}

	return out
}

// leadingIdentRe matches an identifier immediately preceding a `(`, used to
// recover the apparent callee name from the textual form of a pointer-invoke.
var leadingIdentRe = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\(`)

// recoverPointerInvoke recovers the real exported name of a pointer-invoke
// call site by scanning the invoke's source text for a leading identifier,
// falling back to the enclosing module's sole export when the text is
// unavailable or inconclusive.
func recoverPointerInvoke(f *ir.File, call *ir.Call, src []byte) (string, bool) {
	if src != nil {
		start, end := int(call.Pos().Start().Byte), int(call.Pos().End().Byte)
		if start >= 0 && end <= len(src) && start < end {
			text := string(src[start:end])
			if m := leadingIdentRe.FindStringSubmatch(text); m != nil {
				return m[1], true
			}
		}
	}

	return singleExportedFunction(f)
}

// singleExportedFunction returns the name of f's only declared function,
// when there is exactly one, as a last-resort default target.
func singleExportedFunction(f *ir.File) (string, bool) {
	fns := f.Functions()
	if len(fns) != 1 {
		return "", false
	}

	return fns[0].Name(), true
}

// looksSynthetic reports whether name is a synthetic function-pointer token
// such as "%AM0" rather than a real source identifier.
func looksSynthetic(name string) bool {
	return strings.HasPrefix(name, "%")
}

// lookupSignature tries the declared-signature forms a native declaration
// file may use for an exported function, preferring the synthetic
// "@nodeapiFunction" naming convention before the bare exported name.
func lookupSignature(idx *binding.Index, library, name string) *binding.Signature {
	if idx == nil {
		return nil
	}

	if sig := idx.Lookup(library, "@nodeapiFunction"+name); sig != nil {
		return sig
	}

	return idx.Lookup(library, name)
}

// Resolve walks every file's host model, classifying native-binary imports
// and attaching every cross-language call site it finds to a library,
// exported function name and (when available) declared signature.
//
// sources optionally maps a file to its original source bytes, enabling
// textual-form recovery of pointer-invoke call sites; it may be nil or
// incomplete, in which case recovery falls back to the enclosing module's
// sole export.
func Resolve(files []*ir.File, sources map[*ir.File][]byte, idx *binding.Index, logger *rlog.Logger) map[string][]*CallSite {
	result := make(map[string][]*CallSite)

	for _, f := range files {
		resolveFile(f, sources[f], idx, logger, result)
	}

	return result
}

func resolveFile(f *ir.File, src []byte, idx *binding.Index, logger *rlog.Logger, result map[string][]*CallSite) {
	table := buildAliasTable(f)
	table.collectDynamicAliases(f)

	for _, fn := range f.Functions() {
		for _, occ := range collectCalls(fn) {
			library, exported, ok := classify(f, table, occ.call, src, logger, fn.Name())
			if !ok {
				continue
			}

			site := &CallSite{
				Call:         occ.call,
				Func:         fn,
				Block:        occ.block,
				Index:        occ.index,
				Library:      library,
				ExportedName: exported,
				Signature:    lookupSignature(idx, library, exported),
			}
			result[library] = append(result[library], site)
		}
	}
}

// classify attributes a single call to a (library, exported-name) pair
// following the instance-invoke / static-invoke / pointer-invoke shapes.
func classify(f *ir.File, table *aliasTable, call *ir.Call, src []byte, logger *rlog.Logger, fnName string) (library, exported string, ok bool) {
	switch call.Kind {
	case ir.InstanceInvoke:
		return classifyInstanceInvoke(table, call)
	case ir.StaticInvoke:
		return classifyStaticInvoke(f, table, call, src)
	default: // ir.PointerInvoke
		name, recovered := recoverPointerInvoke(f, call, src)
		if !recovered {
			if logger != nil {
				logger.Warn(rlog.Resolve, "could not recover pointer-invoke target", rlog.Fields{
					"function": fnName,
				})
			}
			return "", "", false
		}
		return classifyByDeclaredName(table, name)
	}
}

// classifyInstanceInvoke handles `base.m(args)` shaped calls.
func classifyInstanceInvoke(table *aliasTable, call *ir.Call) (library, exported string, ok bool) {
	base := call.CalleeBase
	if base == "" {
		return "", "", false
	}

	if lib, isModule := table.moduleAlias[base]; isModule {
		return lib, call.CalleeName, true
	}

	if target, isNamed := table.namedAlias[base]; isNamed {
		// Unusual but legal shape: a named import materializing as an
		// instance invoke.
		return target.library, call.CalleeName, true
	}

	return "", "", false
}

// classifyStaticInvoke handles `m(args)` shaped calls, including the
// merged `base.m(args)` form the builder already resolves to a single
// dotted StaticInvoke target when base names a real import.
func classifyStaticInvoke(f *ir.File, table *aliasTable, call *ir.Call, src []byte) (library, exported string, ok bool) {
	if call.CalleeBase != "" {
		// `base.m(args)` where base was a recognized import: the builder
		// already merged this into a single StaticInvoke target.
		if lib, isModule := table.moduleAlias[call.CalleeBase]; isModule {
			return lib, call.CalleeName, true
		}

		if target, isNamed := table.namedAlias[call.CalleeBase]; isNamed {
			return target.library, call.CalleeName, true
		}

		return "", "", false
	}

	name := call.CalleeName
	if looksSynthetic(name) {
		if recovered, ok := recoverPointerInvoke(f, call, src); ok {
			name = recovered
		}
	}

	return classifyByDeclaredName(table, name)
}

// classifyByDeclaredName resolves a bare identifier against the
// named-function-alias table. A named-function-alias that also names an
// importable module resolves as the named function, never the module: the
// module-alias table is therefore never consulted here for a bare
// static-invoke identifier (only for the already-merged `base.m(...)` shape
// in classifyStaticInvoke).
func classifyByDeclaredName(table *aliasTable, name string) (library, exported string, ok bool) {
	if target, isNamed := table.namedAlias[name]; isNamed {
		return target.library, target.original, true
	}

	return "", "", false
}
