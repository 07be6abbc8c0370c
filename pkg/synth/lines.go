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
package synth

import (
	"fmt"

	"github.com/reversible-synth/go-syrec/pkg/ast"
	"github.com/reversible-synth/go-syrec/pkg/circuit"
)

// LineRange is the contiguous (but not necessarily literally adjacent, once
// array-swap cascades are involved) set of circuit line indices a variable
// access resolves to, in order. Kept as a slice rather than a (first,count)
// pair because bit ranges can reverse it (spec.md §3 "bit-reversed view").
type LineRange []uint

// scope is one module activation's variable bindings (spec.md §5 "the
// current module stack"): pushed on call/uncall entry (and for the
// top-level main module), popped on return. Bindings are keyed by the
// *ast.Variable identity the ast package hands back from Module.Variable,
// not by name, so shadowing across nested calls can't collide.
type scope struct {
	module *ast.Module
	vars   map[*ast.Variable]LineRange
}

func newScope(m *ast.Module) *scope {
	return &scope{module: m, vars: make(map[*ast.Variable]LineRange)}
}

// freePool tracks released constant ancillary lines by the polarity they
// were released with (spec.md §4.1 "free pool tagged with its current
// polarity"). Index 0 holds lines currently worth 0, index 1 holds lines
// currently worth 1.
type freePool [2][]uint

func (p *freePool) push(value bool, line uint) {
	p[boolIndex(value)] = append(p[boolIndex(value)], line)
}

func (p *freePool) pop(value bool) (uint, bool) {
	idx := boolIndex(value)

	n := len(p[idx])
	if n == 0 {
		return 0, false
	}

	line := p[idx][n-1]
	p[idx] = p[idx][:n-1]

	return line, true
}

func boolIndex(value bool) int {
	if value {
		return 1
	}

	return 0
}

// allocConst implements spec.md §4.1 alloc_const: prefer the matching-
// polarity free pool; else pop the opposite-polarity pool and emit a NOT;
// else append a fresh constant line.
func (e *Engine) allocConst(value bool) uint {
	if line, ok := e.free.pop(value); ok {
		return line
	}

	if line, ok := e.free.pop(!value); ok {
		e.build.AppendNot(line)
		return line
	}

	line := e.build.AddLine(circuit.Line{
		NameIn:        constLineName(value),
		NameOut:       constLineName(value),
		IsConstant:    true,
		ConstantValue: value,
		IsGarbage:     true,
	})

	return line
}

func constLineName(value bool) string {
	if value {
		return "const_1"
	}

	return "const_0"
}

// allocConstVector implements spec.md §4.1 alloc_const_vector: bitwidth
// lines whose combined value equals value, bit i of the result equalling
// bit i of value.
func (e *Engine) allocConstVector(bitwidth uint, value uint64) LineRange {
	out := make(LineRange, bitwidth)
	for i := uint(0); i < bitwidth; i++ {
		bit := (value>>i)&1 != 0
		out[i] = e.allocConst(bit)
	}

	return out
}

// releaseConst implements spec.md §4.1 release_const: returns the line to
// the free pool tagged with its current polarity and rewrites the circuit's
// output name at that position. value is the polarity the caller guarantees
// it restored the line to (spec.md §5 "Resource discipline" places this
// obligation on the caller; the allocator does not verify it).
func (e *Engine) releaseConst(line uint, value bool) {
	e.free.push(value, line)
	e.build.Circuit().Line(line).NameOut = constLineName(value)
}

// releaseConstVector releases every line of r with the corresponding bit of
// value.
func (e *Engine) releaseConstVector(r LineRange, value uint64) {
	for i, line := range r {
		e.releaseConst(line, (value>>uint(i))&1 != 0)
	}
}

// declareVariable implements spec.md §4.1 variables_of's creation path:
// allocates a fresh contiguous range of circuit lines for v, sized
// product(dimensions) x bitwidth, and records it in the active scope. Used
// for a module's own Locals and, for the top-level main module and for a
// callee built as a standalone module under Config.ModulesHierarchy, its
// Parameters (which for an inlined call are instead bound by reference via
// bindParameter).
func (e *Engine) declareVariable(v *ast.Variable, topLevel bool) LineRange {
	size := v.Size()
	r := make(LineRange, size)

	for i := uint(0); i < size; i++ {
		l := circuit.Line{
			NameIn:  e.lineName(v, i),
			NameOut: e.lineName(v, i),
		}

		switch {
		case topLevel && (v.Kind == ast.KindIn || v.Kind == ast.KindInout):
			l.IsInput = true
			l.IsOutput = v.Kind == ast.KindInout
		case topLevel && (v.Kind == ast.KindOut || v.Kind == ast.KindInout):
			l.IsOutput = true
			l.IsConstant = true
		default:
			l.IsConstant = true
			l.IsGarbage = v.Kind == ast.KindWire
		}

		if !topLevel {
			// A non-main module's own locals always start constant-zero
			// (spec.md §3 "outputs/wires start as constant-zero"); its
			// parameters are never declared fresh at all (see
			// bindParameter), so this path only ever runs for KindWire/
			// KindState locals.
			l.IsConstant = true
			l.IsGarbage = v.Kind == ast.KindWire
		}

		r[i] = e.build.AddLine(l)
	}

	e.currentScope().vars[v] = r

	if topLevel {
		switch v.Kind {
		case ast.KindIn:
			e.build.InputBus(v.Name, r)
		case ast.KindOut:
			e.build.OutputBus(v.Name, r)
		case ast.KindInout:
			e.build.InputBus(v.Name, r)
			e.build.OutputBus(v.Name, r)
		case ast.KindState:
			e.build.StateBus(v.Name, r)
		}
	}

	return r
}

// bindParameter records that formal, a parameter of the module just entered
// by call/uncall, aliases actual's lines for the extent of this activation —
// no fresh lines are allocated (spec.md §4.6 "call": "bind each formal
// parameter to the caller's variable by reference").
func (e *Engine) bindParameter(formal *ast.Variable, actual LineRange) {
	e.currentScope().vars[formal] = actual
}

// variablesOf implements spec.md §4.1 variables_of: the contiguous line
// range reserved for v in the currently active scope.
func (e *Engine) variablesOf(v *ast.Variable) (LineRange, error) {
	if r, ok := e.currentScope().vars[v]; ok {
		return r, nil
	}

	return nil, fmt.Errorf("variable %q not bound in the active module activation", v.Name)
}

func (e *Engine) lineName(v *ast.Variable, bitIndex uint) string {
	return e.cfg.VariableNameFormat(v.Name, bitIndex, "")
}

func (e *Engine) currentScope() *scope {
	return e.scopes[len(e.scopes)-1]
}

func (e *Engine) pushScope(m *ast.Module) {
	e.scopes = append(e.scopes, newScope(m))
}

func (e *Engine) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}
