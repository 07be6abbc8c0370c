// Copyright the go-syrec Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ast

// Module is a named collection of parameter/local variables and a statement
// body (spec.md §3, §4.6 "call"/"uncall").
type Module struct {
	Name string
	// Parameters are, in order, the formal parameters addressable from a
	// call/uncall's Actuals list.
	Parameters []*Variable
	// Locals are module-scoped variables (wires and state) not visible to
	// callers.
	Locals []*Variable
	Body   []Statement
}

// Variable looks up a parameter or local by name, as required by the call/
// uncall binding contract of spec.md §6.1 ("resolve a formal parameter name
// to the caller's variable").
func (m *Module) Variable(name string) *Variable {
	for _, v := range m.Parameters {
		if v.Name == name {
			return v
		}
	}

	for _, v := range m.Locals {
		if v.Name == name {
			return v
		}
	}

	return nil
}

// Circuit is the root of the AST contract: the whole parsed RHDL program, as
// a set of modules (spec.md §6.1: "iterate a module's statements in order").
type Circuit struct {
	Modules []*Module
}

// Module looks up a module by name.
func (c *Circuit) Module(name string) *Module {
	for _, m := range c.Modules {
		if m.Name == name {
			return m
		}
	}

	return nil
}
