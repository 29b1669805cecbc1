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

// Module is one summary-IR document: the exports of a single native shared
// library, keyed by the hap (application package) and so (shared object)
// names the native toolchain recorded at build time.
type Module struct {
	HapName    string
	SoName     string
	ModuleName string
	Functions  map[string]*Function // Keyed by Function.Name.
}

// Func returns the export named name, or nil.
func (m *Module) Func(name string) *Function {
	return m.Functions[name]
}
