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

// Package nativebridge is the package-root orchestrator of a rebuild: it
// wires the summary-IR loader, the binding-declaration indexer, the
// cross-language call resolver and the synthetic-method assembler together,
// the analogue of the teacher's own engine.Engine/Engine.Run.
package nativebridge

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arkbridge/native-body-rebuilder/internal/assemble"
	"github.com/arkbridge/native-body-rebuilder/internal/binding"
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/resolve"
	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/stats"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
	"github.com/arkbridge/native-body-rebuilder/pool"
)

// Config configures one rebuild.
type Config struct {
	// SummaryDir is the directory LoadDir (C4) walks for summary-IR JSON
	// documents.
	SummaryDir string

	// DeclarationDir is the directory IndexDir (C5) walks for `.d.ts`
	// declaration files. Empty skips declaration indexing entirely; every
	// call site then falls back to a synthesized signature (C9 step 2).
	DeclarationDir string

	// DeclarationGlob overrides binding.DefaultGlob when non-empty.
	DeclarationGlob string

	// Project names the host project synthetic files are minted under
	// (assemble.Options.Project).
	Project string

	// StaticInvokeRewrite is the optional C9 post-step (assemble.Options).
	StaticInvokeRewrite bool

	// PoolSize bounds the worker pool used for C4's document load and C9's
	// per-call-site fan-out. 0 uses pool.DefaultAntsPoolSize.
	PoolSize int

	Logger *rlog.Logger
}

// Rebuilder runs one configuration's worth of C4 -> C5 -> C6 ->
// (per call site: C7 -> C8 -> C9) against an already-parsed host model.
type Rebuilder struct {
	config    Config
	collector *stats.Collector
}

// NewRebuilder creates a Rebuilder for config.
func NewRebuilder(config Config) *Rebuilder {
	return &Rebuilder{config: config, collector: stats.NewCollector()}
}

// Run rebuilds every resolvable cross-language call site reachable from
// files, returning the mutated assembler state (via results, one per
// successfully-assembled call site) and a statistics snapshot.
//
// sources optionally supplies each file's original bytes, for C6's
// pointer-invoke textual-recovery fallback; it may be nil.
func (r *Rebuilder) Run(ctx context.Context, files []*ir.File, sources map[*ir.File][]byte) ([]assemble.Result, stats.Snapshot, error) {
	start := time.Now()
	defer func() { r.collector.SetTotalRebuildWallTime(time.Since(start)) }()

	modules, err := summary.LoadDir(r.config.SummaryDir, r.config.PoolSize, r.config.Logger)
	if err != nil {
		return nil, stats.Snapshot{}, err
	}
	for _, mod := range modules {
		r.collector.AddModule(mod)
	}

	idx, err := r.declarationIndex()
	if err != nil {
		return nil, stats.Snapshot{}, err
	}

	resolveStart := time.Now()
	sites := resolve.Resolve(files, sources, idx, r.config.Logger)
	r.collector.AddResolutionWallTime(time.Since(resolveStart))
	r.collector.RecordCallSites(sites)

	asm := assemble.New(modules, idx, r.config.Logger, assemble.Options{
		Project:             r.config.Project,
		StaticInvokeRewrite: r.config.StaticInvokeRewrite,
	})

	// Synthetic method names are minted synchronously, in a fixed sort
	// order, before any call site is handed to the pool below — naming is
	// not safe to race, and must not depend on submission/goroutine order.
	asm.AssignNames(sites)

	loweringStart := time.Now()
	results, err := r.assembleConcurrently(ctx, asm, sites)
	r.collector.AddLoweringWallTime(time.Since(loweringStart))
	if err != nil {
		return nil, stats.Snapshot{}, err
	}

	r.collector.SetTotalRebuildWallTime(time.Since(start))

	return results, r.collector.Snapshot(), nil
}

// declarationIndex builds the binding index for the configured directory,
// or returns nil (not an error) when no directory is configured.
func (r *Rebuilder) declarationIndex() (*binding.Index, error) {
	if r.config.DeclarationDir == "" {
		return nil, nil
	}

	return binding.IndexDir(r.config.DeclarationDir, r.config.DeclarationGlob)
}

// work pairs one resolved call site with the module it targets, the unit of
// fan-out the worker pool below submits.
type work struct {
	module *summary.Module
	site   *resolve.CallSite
}

// assembleConcurrently fans every resolved call site whose library resolved
// to a loaded module out over a bounded ants.Pool guarded by an
// errgroup.Group, exactly mirroring engine.Engine.Run's own pool-plus-
// errgroup shape: a mutex protects the shared results slice, a WaitGroup
// tracks outstanding submissions, and the first error cancels the group.
// Each submitted unit operates on its own deep-copied blueprint function
// (assemble.AssembleOne clones before mutating), so there is no shared
// mutable state inside a unit of work.
func (r *Rebuilder) assembleConcurrently(ctx context.Context, asm *assemble.Assembler, sites map[string][]*resolve.CallSite) ([]assemble.Result, error) {
	items := flattenWork(asm, sites, r.config.Logger)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []assemble.Result
	)

	workerPool, err := pool.NewPool(r.config.PoolSize)
	if err != nil {
		return nil, err
	}
	defer workerPool.Release()

	group, _ := errgroup.WithContext(ctx)

	wg.Add(len(items))

	for _, item := range items {
		item := item

		errSubmit := workerPool.Submit(func() {
			group.Go(func() error {
				defer wg.Done()

				result, ok := asm.AssembleOne(item.module, item.site)
				if !ok {
					return nil
				}

				r.collector.RecordRebuiltMethod()

				mu.Lock()
				results = append(results, result)
				mu.Unlock()

				return nil
			})
		})
		if errSubmit != nil {
			return nil, errSubmit
		}
	}

	wg.Wait()
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// flattenWork expands sites into one work item per call site whose library
// resolved to a loaded module, warning once per unresolvable library.
func flattenWork(asm *assemble.Assembler, sites map[string][]*resolve.CallSite, logger *rlog.Logger) []work {
	var items []work

	for library, libSites := range sites {
		module, ok := asm.ModuleFor(library)
		if !ok {
			if logger != nil {
				logger.Warn(rlog.Orchestrator, "resolved call site's library has no loaded summary module", rlog.Fields{
					"library": library,
				})
			}

			continue
		}

		for _, site := range libSites {
			items = append(items, work{module: module, site: site})
		}
	}

	return items
}
