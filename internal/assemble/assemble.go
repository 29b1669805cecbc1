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

// Package assemble turns each resolved cross-language call site into a
// synthetic host method: a deep copy of the targeted blueprint function,
// type-inferred (C7), lowered (C8), and wrapped into a synthetic class
// inside a synthetic file, then linked back at its call site.
package assemble

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arkbridge/native-body-rebuilder/internal/binding"
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/lower"
	"github.com/arkbridge/native-body-rebuilder/internal/resolve"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
	"github.com/arkbridge/native-body-rebuilder/internal/typeinfer"
)

// syntheticFilePrefix and syntheticClassPrefix name the per-module home for
// every method this package mints, e.g. "myproject/@nodeapiFilelibentry"
// and "@nodeapiClasslibentry".
const (
	syntheticFilePrefix   = "@nodeapiFile"
	syntheticClassPrefix  = "@nodeapiClass"
	syntheticMethodPrefix = "@nodeapiFunction"
)

// Options configures the assembler's optional behavior.
type Options struct {
	// Project names the host project the synthetic files are minted for,
	// e.g. "myproject/@nodeapiFile<module>".
	Project string

	// StaticInvokeRewrite converts the original invoke in place to a
	// static-invoke of the synthetic method, instead of preserving the
	// original call's Kind/Recv.
	StaticInvokeRewrite bool
}

// Result is one call site's outcome: the minted method and the module it
// belongs to, or the reason nothing was minted.
type Result struct {
	Site   *resolve.CallSite
	Method *ir.Function
}

// Assembler holds the state shared across every call site of one rebuild:
// the loaded modules, declaration index, and the one synthetic file/class
// pair minted per module. AssembleOne is safe to call concurrently from
// multiple goroutines (C12 fans out independent call sites over a worker
// pool); mu guards the shared synthetic file/class state each call mutates.
// Naming is deliberately kept off that concurrent path: AssignNames mints
// every call site's synthetic method name up front, synchronously, in a
// fixed sort order, so the name bound to a given call site never depends on
// map-iteration or goroutine-scheduling order.
type Assembler struct {
	modules map[string]*summary.Module
	idx     *binding.Index
	logger  *rlog.Logger
	options Options

	mu      sync.Mutex
	files   map[string]*ir.File
	classes map[string]*ir.Struct
	counter int

	names map[*resolve.CallSite]string
}

// New creates an Assembler over modules (keyed by Module.ModuleName, the
// convention C9 shares with C6's library-name derivation) and idx (may be
// nil).
func New(modules []*summary.Module, idx *binding.Index, logger *rlog.Logger, options Options) *Assembler {
	byName := make(map[string]*summary.Module, len(modules))
	for _, m := range modules {
		byName[m.ModuleName] = m
	}

	return &Assembler{
		modules: byName,
		idx:     idx,
		logger:  logger,
		options: options,
		files:   make(map[string]*ir.File),
		classes: make(map[string]*ir.Struct),
		names:   make(map[*resolve.CallSite]string),
	}
}

// AssignNames deterministically mints and records a synthetic method name
// for every call site in sites, visiting libraries and each library's call
// sites in a stable sort order — never map-iteration or goroutine-scheduling
// order — so the same host model always yields bit-identical synthetic
// names across runs (SPEC_FULL.md §8 invariant 1). Must run once,
// synchronously, before any call to AssembleOne over the same sites: naming
// itself is not safe to race, which is why it is pulled out of the
// concurrent per-call-site path entirely rather than guarded by a.mu.
func (a *Assembler) AssignNames(sites map[string][]*resolve.CallSite) {
	for _, library := range sortedLibraries(sites) {
		for _, site := range sortedCallSites(sites[library]) {
			a.counter++
			a.names[site] = fmt.Sprintf("%s%s_%d", syntheticMethodPrefix, site.ExportedName, a.counter)
		}
	}
}

// AssembleAll processes every call site in sites (as produced by
// resolve.Resolve, keyed by library) sequentially, in the same stable sort
// order AssignNames uses, returning one Result per call site whose library
// resolved to a loaded module and whose exported name resolved to a
// blueprint function. Callers wanting C12's fanned-out concurrency should
// call AssignNames once and then ModuleFor/AssembleOne directly from their
// own pool instead.
func (a *Assembler) AssembleAll(sites map[string][]*resolve.CallSite) []Result {
	a.AssignNames(sites)

	var results []Result

	for _, library := range sortedLibraries(sites) {
		module, ok := a.ModuleFor(library)
		if !ok {
			a.warn("resolved call site's library has no loaded summary module", library)

			continue
		}

		for _, site := range sortedCallSites(sites[library]) {
			result, ok := a.AssembleOne(module, site)
			if !ok {
				continue
			}

			results = append(results, result)
		}
	}

	return results
}

// sortedLibraries returns sites' library keys in lexical order.
func sortedLibraries(sites map[string][]*resolve.CallSite) []string {
	libraries := make([]string, 0, len(sites))
	for library := range sites {
		libraries = append(libraries, library)
	}

	sort.Strings(libraries)

	return libraries
}

// sortedCallSites returns a copy of sites ordered by a stable key derived
// from where each call site sits in the host model: owning file name,
// owning function name, block index, and instruction index within the
// block. This is independent of the order resolve.Resolve happened to
// discover call sites in.
func sortedCallSites(sites []*resolve.CallSite) []*resolve.CallSite {
	sorted := make([]*resolve.CallSite, len(sites))
	copy(sorted, sites)

	sort.SliceStable(sorted, func(i, j int) bool {
		return callSiteKey(sorted[i]) < callSiteKey(sorted[j])
	})

	return sorted
}

// callSiteKey builds site's stable sort key. See sortedCallSites.
func callSiteKey(site *resolve.CallSite) string {
	var fileName, funcName string

	if site.Func != nil {
		funcName = site.Func.Name()
		if site.Func.File != nil {
			fileName = site.Func.File.Name()
		}
	}

	blockIndex := 0
	if site.Block != nil {
		blockIndex = site.Block.Index
	}

	return fmt.Sprintf("%s\x00%s\x00%08d\x00%08d", fileName, funcName, blockIndex, site.Index)
}

// ModuleFor returns the loaded module matching a resolved call site's
// library name, or false if none was loaded under that name.
func (a *Assembler) ModuleFor(library string) (*summary.Module, bool) {
	module, ok := a.modules[library]

	return module, ok
}

// AssembleOne performs steps 1-6 of the synthetic-method assembler for a
// single call site, using the name AssignNames already minted for it. Safe
// to call concurrently for independent call sites, since each works from
// its own deep-copied blueprint; the shared synthetic file/class state is
// mutex-guarded internally.
func (a *Assembler) AssembleOne(module *summary.Module, site *resolve.CallSite) (Result, bool) {
	blueprint := module.Func(site.ExportedName)
	if blueprint == nil {
		a.warn("resolved call site's exported name has no blueprint function", site.ExportedName)

		return Result{}, false
	}

	clone := blueprint.Clone()

	class := a.syntheticClass(module)
	fn := a.newSyntheticMethod(class, site)

	typeinfer.Infer(clone, a.logger)
	lower.Lower(fn, clone, a.logger)

	a.registerMethod(class, fn)

	a.rewriteCallSite(site, fn)

	return Result{Site: site, Method: fn}, true
}

// registerMethod appends fn to class.Methods under the assembler's mutex.
func (a *Assembler) registerMethod(class *ir.Struct, fn *ir.Function) {
	a.mu.Lock()
	defer a.mu.Unlock()

	class.AddMethod(fn)
}

// syntheticFile returns module's synthetic file, minting it on first use.
// Callers must hold a.mu.
func (a *Assembler) syntheticFile(module *summary.Module) *ir.File {
	if f, ok := a.files[module.ModuleName]; ok {
		return f
	}

	name := syntheticFilePrefix + module.ModuleName
	if a.options.Project != "" {
		name = a.options.Project + "/" + name
	}

	f := ir.NewSyntheticFile(name)
	a.files[module.ModuleName] = f

	return f
}

// syntheticClass returns module's synthetic class, minting it (and its
// owning file) on first use.
func (a *Assembler) syntheticClass(module *summary.Module) *ir.Struct {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.classes[module.ModuleName]; ok {
		return c
	}

	f := a.syntheticFile(module)
	c := f.NewSyntheticStruct(syntheticClassPrefix + module.ModuleName)
	a.classes[module.ModuleName] = c

	return c
}

// newSyntheticMethod builds the host Function for site's synthetic method,
// under the globally unique name AssignNames already minted for it, with a
// refined signature, not yet lowered.
func (a *Assembler) newSyntheticMethod(class *ir.Struct, site *resolve.CallSite) *ir.Function {
	name, ok := a.names[site]
	if !ok {
		// AssignNames was not called (or this site wasn't in the map it
		// was given) before AssembleOne; fall back rather than collide,
		// but this always indicates a caller bug.
		name = fmt.Sprintf("%s%s_unassigned", syntheticMethodPrefix, site.ExportedName)
		a.warn("call site has no pre-assigned synthetic name; call AssignNames first", site.ExportedName)
	}

	sig := &ir.Signature{}
	fn := class.File.NewSyntheticFunction(name, sig)
	sig.Params = a.buildParams(fn, site)
	fn.Recv = class

	return fn
}

// buildParams selects a parameter count (preferring the declared signature's
// arity, falling back to the call site's own argument count) and refines
// each parameter's type from the corresponding call-site argument's
// host-model type, defaulting an unresolved (Unknown) argument type to
// String per the documented limitation.
func (a *Assembler) buildParams(fn *ir.Function, site *resolve.CallSite) []*ir.Parameter {
	count := len(site.Call.Args)
	if site.Signature != nil {
		count = len(site.Signature.ParamTypes)
	}

	params := make([]*ir.Parameter, 0, count)
	for i := 0; i < count; i++ {
		typ := ir.TypeUnknown
		if i < len(site.Call.Args) {
			typ = ir.ValueType(site.Call.Args[i])
		}

		if typ.Kind == ir.Unknown {
			typ = ir.TypeString
		}

		params = append(params, ir.NewSyntheticParameter(fn, fmt.Sprintf("p%d", i+1), typ))
	}

	return params
}

// rewriteCallSite points the original invoke expression at fn. When a
// recorded (block, index) no longer holds the same Call object the resolver
// found, the rewrite still proceeds (site.Call is authoritative) but a
// mismatch is warned, per the spec's "verified and a mismatch is warned"
// rule.
func (a *Assembler) rewriteCallSite(site *resolve.CallSite, fn *ir.Function) {
	a.verifyCallSitePosition(site)

	kind, recv := site.Call.Kind, site.Call.Recv
	if a.options.StaticInvokeRewrite {
		kind, recv = ir.StaticInvoke, nil
	}

	site.Call.RewriteCallTarget(kind, recv, fn)
}

// verifyCallSitePosition checks that the Call recorded at site's
// (block, index) is still the same object as site.Call, warning on a
// mismatch without blocking the rewrite.
func (a *Assembler) verifyCallSitePosition(site *resolve.CallSite) {
	if site.Index < 0 || site.Index >= len(site.Block.Instrs) {
		a.warn("recorded call-site index out of range", site.ExportedName)

		return
	}

	var found *ir.Call
	switch v := site.Block.Instrs[site.Index].(type) {
	case *ir.Call:
		found = v
	case *ir.Var:
		if c, ok := v.Value.(*ir.Call); ok {
			found = c
		}
	}

	if found != site.Call {
		a.warn("call site drifted from its recorded position", site.ExportedName)
	}
}

func (a *Assembler) warn(msg, detail string) {
	if a.logger == nil {
		return
	}

	a.logger.Warn(rlog.Assemble, msg, rlog.Fields{"detail": detail})
}
