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

package stats_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/hostlang"
	"github.com/arkbridge/native-body-rebuilder/internal/ir"
	"github.com/arkbridge/native-body-rebuilder/internal/resolve"
	"github.com/arkbridge/native-body-rebuilder/internal/stats"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

const mulDoc = `{
	"hap_name": "h", "so_name": "libentry.so", "module_name": "libentry",
	"functions": [{
		"name": "mul",
		"params": {"0": "napi_env", "1": "napi_callback_info"},
		"instructions": [
			{"type": "Call", "target": "napi_get_cb_info", "operands": ["p0", "p1"], "rets": {"a0": "3"}},
			{"type": "Call", "target": "napi_create_int32", "operands": ["p0", "a0"], "rets": {"x": "2"}},
			{"type": "Ret", "operand": "x"}
		]
	}]
}`

func TestCollectorAddModuleAccumulatesCounts(t *testing.T) {
	mod, err := summary.LoadDocument([]byte(mulDoc), nil)
	require.NoError(t, err)

	c := stats.NewCollector()
	c.AddModule(mod)

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.SummaryFunctionCount)
	assert.Equal(t, 3, snap.SummaryInstructionCount)
}

func TestCollectorSuccessRate(t *testing.T) {
	mod, err := summary.LoadDocument([]byte(mulDoc), nil)
	require.NoError(t, err)

	c := stats.NewCollector()
	c.AddModule(mod)
	c.RecordRebuiltMethod()

	snap := c.Snapshot()
	assert.InDelta(t, 1.0, snap.RebuildSuccessRate, 0.0001)
}

func TestCollectorSuccessRateZeroWithNoSummaryFunctions(t *testing.T) {
	c := stats.NewCollector()

	snap := c.Snapshot()
	assert.Zero(t, snap.RebuildSuccessRate)
}

func TestCollectorRecordCallSitesByInvokeKind(t *testing.T) {
	src := `
import libentry from 'libentry.so'

function f() {
  libentry.mul(1, 2)
}
`
	astFile, err := hostlang.ParseFile("fixture.ts", []byte(src))
	require.NoError(t, err)

	file := ir.NewFile(astFile)
	file.Build()

	sites := resolve.Resolve([]*ir.File{file}, nil, nil, nil)

	c := stats.NewCollector()
	c.RecordCallSites(sites)

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.TotalCallSites)
	assert.Equal(t, 1, snap.CallSitesByInvokeKind[ir.StaticInvoke.String()])
}

func TestCollectorWallTimeAccumulation(t *testing.T) {
	c := stats.NewCollector()
	c.AddResolutionWallTime(10 * time.Millisecond)
	c.AddResolutionWallTime(5 * time.Millisecond)
	c.AddLoweringWallTime(20 * time.Millisecond)
	c.SetTotalRebuildWallTime(100 * time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, 15*time.Millisecond, snap.ResolutionWallTime)
	assert.Equal(t, 20*time.Millisecond, snap.LoweringWallTime)
	assert.Equal(t, 100*time.Millisecond, snap.TotalRebuildWallTime)
}

func TestCollectorSnapshotIsConcurrencySafe(t *testing.T) {
	mod, err := summary.LoadDocument([]byte(mulDoc), nil)
	require.NoError(t, err)

	c := stats.NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AddModule(mod)
			c.RecordRebuiltMethod()
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, 50, snap.SummaryFunctionCount)
	assert.Equal(t, 50, snap.RebuiltMethodCount)
}
