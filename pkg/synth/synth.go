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
package synth

import (
	"github.com/sirupsen/logrus"

	"github.com/reversible-synth/go-syrec/pkg/ast"
	"github.com/reversible-synth/go-syrec/pkg/circuit"
)

// Engine holds all mutable state threaded through a single synthesis run
// (spec.md §5 "Concurrency": one Engine is never shared across goroutines,
// and a synthesis run is single-threaded).
type Engine struct {
	build   *circuit.Builder
	cfg     Config
	log     *logrus.Entry
	circuit *ast.Circuit

	free   freePool
	scopes []*scope
	cct    *cct

	// currentSourceLine tags the next gates onStatement/onExpression emit
	// with the RHDL line they came from (spec.md §6.2 "source_line").
	currentSourceLine uint

	// loopVars is the induction-variable binding stack's current flattened
	// view: nested for-loops shadow by name, innermost wins.
	loopVars map[string]uint64

	// ifRemap holds the IfDuplication realization's variable substitution
	// for the statements currently executing inside a duplicated then-arm
	// (spec.md §4.6 IF policy 2): accesses to a remapped variable resolve
	// against its twin's lines instead of the variable's own.
	ifRemap map[*ast.Variable]LineRange

	// moduleCache memoizes call/uncall targets synthesized as named
	// sub-circuit modules when cfg.ModulesHierarchy is on (spec.md §4.6
	// "call"/"uncall": "reuse: synthesize the callee once").
	moduleCache map[string]bool

	errs []*Error
}

// newEngine wires a fresh Engine over a new Builder, ready for one
// Synthesize call.
func newEngine(cfg Config) *Engine {
	cfg.normalize()

	log := logrus.New()
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	e := &Engine{
		build:       circuit.NewBuilder(),
		cfg:         cfg,
		log:         log.WithField("component", "synth"),
		loopVars:    make(map[string]uint64),
		ifRemap:     make(map[*ast.Variable]LineRange),
		moduleCache: make(map[string]bool),
	}
	e.cct = newCCT()

	for k, v := range cfg.Unrecognized {
		e.log.WithFields(logrus.Fields{"key": k, "value": v}).Warn("unrecognized configuration key")
	}

	return e
}

func (e *Engine) fail(node ast.Node, format string, args ...any) {
	e.errs = append(e.errs, errorf(node, format, args...))
}

// Synthesize implements spec.md §2's top-level entry point: lowers c's main
// module (cfg.MainModule, defaulting to "main", else the AST's first module)
// to a gate-level circuit. Errors accumulate rather than aborting at the
// first one, matching spec.md §7's "collect every failing statement/
// expression before returning, instead of stopping at the first error".
func Synthesize(c *ast.Circuit, cfg Config) (*circuit.Circuit, []*Error) {
	e := newEngine(cfg)
	e.circuit = c

	main := c.Module(e.cfg.MainModule)
	if main == nil {
		if len(c.Modules) == 0 {
			e.fail(nil, "circuit has no modules")
			return nil, e.errs
		}

		main = c.Modules[0]
	}

	e.pushScope(main)

	for _, p := range main.Parameters {
		e.declareVariable(p, true)
	}

	for _, v := range main.Locals {
		e.declareVariable(v, true)
	}

	e.onStatements(main.Body)

	e.popScope()

	e.assembleCCT()

	if len(e.errs) > 0 {
		return nil, e.errs
	}

	return e.build.Circuit(), nil
}
