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

package summary

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/pool"
)

// document is the raw JSON shape of one summary-IR module, per §6.
type document struct {
	HapName    string             `json:"hap_name"`
	SoName     string             `json:"so_name"`
	ModuleName string             `json:"module_name"`
	Functions  []documentFunction `json:"functions"`
}

type documentFunction struct {
	Name         string                      `json:"name"`
	Params       map[string]string           `json:"params"`
	Instructions []map[string]interface{} `json:"instructions"`
}

// LoadDocument parses a single summary-IR document's bytes into a Module.
//
// A document-level JSON syntax error is returned to the caller. An
// instruction of unknown type is dropped on its own, and its function still
// loads; a malformed constant token drops the whole enclosing function. Both
// are reported through logger.
func LoadDocument(data []byte, logger *rlog.Logger) (*Module, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("summary: parsing document: %w", err)
	}

	mod := &Module{
		HapName:    doc.HapName,
		SoName:     doc.SoName,
		ModuleName: doc.ModuleName,
		Functions:  make(map[string]*Function, len(doc.Functions)),
	}

	for _, df := range doc.Functions {
		fn, err := loadFunction(df)
		if err != nil {
			logWarn(logger, rlog.Summary, "dropping function load", rlog.Fields{
				"module":   mod.ModuleName,
				"function": df.Name,
				"error":    err.Error(),
			})

			continue
		}

		if dropped := len(df.Instructions) - len(fn.Instructions); dropped > 0 {
			logWarn(logger, rlog.Summary, "dropping instructions of unknown type", rlog.Fields{
				"module":   mod.ModuleName,
				"function": df.Name,
				"count":    dropped,
			})
		}

		mod.Functions[fn.Name] = fn
	}

	return mod, nil
}

// loadFunction builds one Function from its raw JSON shape, interning every
// operand token and classifying every instruction.
func loadFunction(df documentFunction) (*Function, error) {
	fn := newFunction(df.Name)

	indices := make([]int, 0, len(df.Params))
	for key := range df.Params {
		idx, err := parsePositionalKey(key)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		key := fmt.Sprintf("%d", idx)
		fn.Params = append(fn.Params, fn.interned.internParameter(idx, df.Params[key]))
	}

	for _, raw := range df.Instructions {
		instr, err := loadInstruction(fn.interned, raw)
		if err != nil {
			return nil, err
		}
		if instr == nil {
			// Unknown instruction type: the instruction is omitted and the
			// enclosing function still loads; LoadDocument warns about the
			// omission.
			continue
		}

		fn.Instructions = append(fn.Instructions, instr)
	}

	return fn, nil
}

func parsePositionalKey(key string) (int, error) {
	var idx int
	if _, err := fmt.Sscanf(key, "%d", &idx); err != nil {
		return 0, fmt.Errorf("summary: non-numeric parameter key %q", key)
	}

	return idx, nil
}

// loadInstruction classifies one raw instruction map by its "type"
// discriminator. A nil, nil result means the type was unrecognized and the
// instruction should be dropped (logged by the caller).
func loadInstruction(cache *internCache, raw map[string]interface{}) (Instruction, error) {
	kind, _ := raw["type"].(string)

	switch kind {
	case "Call":
		return loadCall(cache, raw)
	case "Ret":
		return loadReturn(cache, raw)
	case "Phi":
		return loadPhi(cache, raw)
	default:
		return nil, nil
	}
}

func loadCall(cache *internCache, raw map[string]interface{}) (*Call, error) {
	call := &Call{
		CallSite: stringField(raw, "callsite"),
		Target:   stringField(raw, "target"),
	}

	operands, err := internTokens(cache, stringSliceField(raw, "operands"))
	if err != nil {
		return nil, err
	}
	call.Operands = operands

	if raw["argsoperands"] != nil {
		argOperands, err := internTokens(cache, stringSliceField(raw, "argsoperands"))
		if err != nil {
			return nil, err
		}
		call.ArgsOperands = argOperands
	}

	rets, _ := raw["rets"].(map[string]interface{})
	tags := make([]string, 0, len(rets))
	for varTok := range rets {
		tags = append(tags, varTok)
	}
	sort.Strings(tags)

	byTag := make(map[string]*ReturnGroup)
	order := make([]string, 0)
	for _, varTok := range tags {
		tag, _ := rets[varTok].(string)

		v, err := cache.intern(varTok)
		if err != nil {
			return nil, err
		}
		variable, ok := v.(*Variable)
		if !ok {
			return nil, fmt.Errorf("summary: return slot %q is not a variable token", varTok)
		}

		group, exists := byTag[tag]
		if !exists {
			group = &ReturnGroup{Tag: tag}
			byTag[tag] = group
			order = append(order, tag)
		}
		group.Vars = append(group.Vars, variable)
	}

	for _, tag := range order {
		call.Rets = append(call.Rets, byTag[tag])
	}

	return call, nil
}

func loadReturn(cache *internCache, raw map[string]interface{}) (*Return, error) {
	operand, err := cache.intern(stringField(raw, "operand"))
	if err != nil {
		return nil, err
	}

	return &Return{Operand: operand}, nil
}

func loadPhi(cache *internCache, raw map[string]interface{}) (*Phi, error) {
	retTok := stringField(raw, "ret")

	v, err := cache.intern(retTok)
	if err != nil {
		return nil, err
	}
	result, ok := v.(*Variable)
	if !ok {
		return nil, fmt.Errorf("summary: phi result %q is not a variable token", retTok)
	}

	operands, err := internTokens(cache, stringSliceField(raw, "operands"))
	if err != nil {
		return nil, err
	}

	return &Phi{Result: result, Operands: operands}, nil
}

func internTokens(cache *internCache, tokens []string) ([]Value, error) {
	out := make([]Value, 0, len(tokens))
	for _, tok := range tokens {
		v, err := cache.intern(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)

	return s
}

func stringSliceField(raw map[string]interface{}, key string) []string {
	items, _ := raw[key].([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func logWarn(logger *rlog.Logger, component rlog.Component, msg string, fields rlog.Fields) {
	if logger == nil {
		return
	}

	logger.Warn(component, msg, fields)
}

// LoadDir walks dir for *.json summary-IR documents and loads them
// concurrently on a bounded ants worker pool (mirroring the teacher
// engine's Engine.Run pool-plus-errgroup shape): one slow or malformed
// document never blocks the others. Returns every successfully-loaded
// Module; duplicate ModuleName across documents is resolved last-wins, with
// a warning logged for the overwritten entry.
func LoadDir(dir string, poolSize int, logger *rlog.Logger) ([]*Module, error) {
	paths, err := jsonFilePaths(dir)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		modules = make(map[string]*Module)
	)

	workerPool, err := pool.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer workerPool.Release()

	group := new(errgroup.Group)

	wg.Add(len(paths))

	for _, path := range paths {
		path := path

		errSubmit := workerPool.Submit(func() {
			group.Go(func() error {
				defer wg.Done()

				mod, loadErr := loadDocumentFile(path, logger)
				if loadErr != nil {
					logWarn(logger, rlog.Summary, "skipping unreadable document", rlog.Fields{
						"path":  path,
						"error": loadErr.Error(),
					})

					return nil
				}

				mu.Lock()
				if _, dup := modules[mod.ModuleName]; dup {
					logWarn(logger, rlog.Summary, "duplicate module name, last one wins", rlog.Fields{
						"module": mod.ModuleName,
						"path":   path,
					})
				}
				modules[mod.ModuleName] = mod
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

	out := make([]*Module, 0, len(modules))
	for _, mod := range modules {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleName < out[j].ModuleName })

	return out, nil
}

func loadDocumentFile(path string, logger *rlog.Logger) (*Module, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	return LoadDocument(data, logger)
}

func jsonFilePaths(dir string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}

		return nil
	})

	return paths, err
}
