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

// Package stats accumulates the counters and wall-clock timings a rebuild
// produces and publishes them as an immutable Snapshot, the plain-data
// reporting style the teacher uses for its own Finding/Report accumulation.
package stats

import (
	"sync"
	"time"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/resolve"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

// Snapshot is an immutable copy of one rebuild's accumulated statistics.
type Snapshot struct {
	SummaryFunctionCount    int
	SummaryInstructionCount int
	RebuiltMethodCount      int

	// RebuildSuccessRate is RebuiltMethodCount / SummaryFunctionCount, or 0
	// when no summary functions were loaded.
	RebuildSuccessRate float64

	TotalRebuildWallTime time.Duration
	ResolutionWallTime   time.Duration
	LoweringWallTime     time.Duration

	TotalCallSites int

	// CallSitesByInvokeKind counts call sites by ir.CallKind.String(), e.g.
	// "static", "instance", "pointer".
	CallSitesByInvokeKind map[string]int
}

// Collector accumulates statistics across a rebuild's lifetime. All methods
// are safe for concurrent use, since C4's document loads and C9's
// per-call-site instantiations are fanned out over a worker pool.
type Collector struct {
	mu sync.Mutex

	summaryFunctionCount    int
	summaryInstructionCount int
	rebuiltMethodCount      int

	totalRebuildWallTime time.Duration
	resolutionWallTime   time.Duration
	loweringWallTime     time.Duration

	callSitesByInvokeKind map[string]int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{callSitesByInvokeKind: make(map[string]int)}
}

// AddModule folds mod's function and instruction counts into the running
// totals. Called once per loaded summary document (C4).
func (c *Collector) AddModule(mod *summary.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, fn := range mod.Functions {
		c.summaryFunctionCount++
		c.summaryInstructionCount += len(fn.Instructions)
	}
}

// RecordCallSites folds the call sites resolve.Resolve (C6) discovered into
// the total count and the per-invoke-kind breakdown.
func (c *Collector) RecordCallSites(sites map[string][]*resolve.CallSite) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, libSites := range sites {
		for _, site := range libSites {
			c.totalCallSitesLocked(site.Call.Kind)
		}
	}
}

// totalCallSitesLocked must be called with c.mu held.
func (c *Collector) totalCallSitesLocked(kind ir.CallKind) {
	c.callSitesByInvokeKind[kind.String()]++
}

// RecordRebuiltMethod increments the rebuilt-method count by one, called
// once per synthetic method C9 successfully mints.
func (c *Collector) RecordRebuiltMethod() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rebuiltMethodCount++
}

// AddResolutionWallTime accumulates wall time spent in C6.
func (c *Collector) AddResolutionWallTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resolutionWallTime += d
}

// AddLoweringWallTime accumulates wall time spent across every C7+C8 pass.
func (c *Collector) AddLoweringWallTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loweringWallTime += d
}

// SetTotalRebuildWallTime records the wall time of the whole rebuild.
func (c *Collector) SetTotalRebuildWallTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRebuildWallTime = d
}

// Snapshot returns an immutable copy of the statistics accumulated so far.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	byKind := make(map[string]int, len(c.callSitesByInvokeKind))
	var total int
	for k, v := range c.callSitesByInvokeKind {
		byKind[k] = v
		total += v
	}

	var rate float64
	if c.summaryFunctionCount > 0 {
		rate = float64(c.rebuiltMethodCount) / float64(c.summaryFunctionCount)
	}

	return Snapshot{
		SummaryFunctionCount:    c.summaryFunctionCount,
		SummaryInstructionCount: c.summaryInstructionCount,
		RebuiltMethodCount:      c.rebuiltMethodCount,
		RebuildSuccessRate:      rate,
		TotalRebuildWallTime:    c.totalRebuildWallTime,
		ResolutionWallTime:      c.resolutionWallTime,
		LoweringWallTime:        c.loweringWallTime,
		TotalCallSites:          total,
		CallSitesByInvokeKind:   byKind,
	}
}
