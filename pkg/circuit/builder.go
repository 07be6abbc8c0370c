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
package circuit

import "github.com/bits-and-blooms/bitset"

// Bus names a contiguous or non-contiguous group of lines under one name,
// e.g. a variable's lines (spec.md §6.2 "input/output/state bus groups").
type Bus struct {
	Name  string
	Lines []uint
}

// Builder accumulates lines and gates into a Circuit. It is the sole writer
// of a Circuit's Lines/Gates slices — pkg/synth appends lines and gates
// only through this type (it does rename a released line's NameOut via
// Circuit().Line and reads Circuit().Modules), mirroring
// how go-corset's SchemaBuilder is the only writer of its Schema (spec.md
// §6.2; grounded in pkg/corset/compiler/translator.go's ModuleBuilder).
type Builder struct {
	circuit *Circuit

	inputs, outputs, state []Bus

	// onGateAdded, when set, is invoked synchronously after every gate
	// append, carrying the gate's source line when the caller supplied one
	// via SetSourceLine (spec.md §6.2 "OnGateAdded hook").
	onGateAdded func(Gate)

	// nextSourceLine is consumed by the next addGate call and then reset,
	// letting pkg/synth tag the gate(s) a statement emits without every
	// Append* call needing an extra parameter.
	nextSourceLine uint
}

// SetSourceLine tags the next gate appended with the given RHDL source
// line; that addGate call consumes it and resets it. Zero means "unknown".
func (b *Builder) SetSourceLine(line uint) {
	b.nextSourceLine = line
}

// NewBuilder creates a Builder over a fresh, empty Circuit.
func NewBuilder() *Builder {
	return &Builder{circuit: New()}
}

// Circuit returns the circuit under construction. Safe to call at any point;
// the returned pointer remains valid and keeps accumulating as the Builder
// is driven further.
func (b *Builder) Circuit() *Circuit {
	return b.circuit
}

// OnGateAdded installs fn as the hook invoked after each gate is appended.
// Passing nil disables the hook.
func (b *Builder) OnGateAdded(fn func(Gate)) {
	b.onGateAdded = fn
}

// AddLine declares a new circuit line and returns its index.
func (b *Builder) AddLine(l Line) uint {
	idx := uint(len(b.circuit.Lines))
	b.circuit.Lines = append(b.circuit.Lines, l)

	return idx
}

// InputBus records a named group of input lines (spec.md §6.2 "input...bus
// groups"), used by the CLI's `inspect` command and by callers that need to
// address a whole variable's lines by name rather than by index.
func (b *Builder) InputBus(name string, lines []uint) {
	b.inputs = append(b.inputs, Bus{Name: name, Lines: lines})
}

// OutputBus records a named group of output lines.
func (b *Builder) OutputBus(name string, lines []uint) {
	b.outputs = append(b.outputs, Bus{Name: name, Lines: lines})
}

// StateBus records a named group of persistent (KindState) lines.
func (b *Builder) StateBus(name string, lines []uint) {
	b.state = append(b.state, Bus{Name: name, Lines: lines})
}

// InputBuses, OutputBuses and StateBuses return the recorded bus groups in
// registration order.
func (b *Builder) InputBuses() []Bus  { return b.inputs }
func (b *Builder) OutputBuses() []Bus { return b.outputs }
func (b *Builder) StateBuses() []Bus  { return b.state }

func (b *Builder) addGate(g Gate) {
	if b.nextSourceLine != 0 {
		g.SourceLine = b.nextSourceLine
		b.nextSourceLine = 0
	}

	b.circuit.Gates = append(b.circuit.Gates, g)
	if b.onGateAdded != nil {
		b.onGateAdded(g)
	}
}

func controlSet(controls []uint) *bitset.BitSet {
	if len(controls) == 0 {
		return nil
	}

	max := controls[0]
	for _, c := range controls {
		if c > max {
			max = c
		}
	}

	set := bitset.New(max + 1)
	for _, c := range controls {
		set.Set(c)
	}

	return set
}

// AppendNot appends an uncontrolled NOT gate on target.
func (b *Builder) AppendNot(target uint) {
	b.addGate(Gate{Kind: GateNot, Targets: []uint{target}})
}

// AppendCNOT appends a singly-controlled NOT gate.
func (b *Builder) AppendCNOT(control, target uint) {
	b.addGate(Gate{Kind: GateCNOT, Controls: controlSet([]uint{control}), Targets: []uint{target}})
}

// AppendToffoli appends a (possibly multiply-) controlled NOT gate. An empty
// controls slice degenerates to a plain NOT; exactly one control degenerates
// to a CNOT; the Kind recorded always reflects the actual control count so
// QuantumCost's Toffoli/Fredkin distinction stays meaningful.
func (b *Builder) AppendToffoli(controls []uint, target uint) {
	kind := GateToffoli

	switch len(controls) {
	case 0:
		kind = GateNot
	case 1:
		kind = GateCNOT
	}

	b.addGate(Gate{Kind: kind, Controls: controlSet(controls), Targets: []uint{target}})
}

// AppendFredkin appends a controlled swap of two target lines (spec.md §3:
// "controlled swap of two equal-width target tuples" lowered elementwise to
// one Fredkin gate per bit pair).
func (b *Builder) AppendFredkin(controls []uint, target1, target2 uint) {
	b.addGate(Gate{Kind: GateFredkin, Controls: controlSet(controls), Targets: []uint{target1, target2}})
}

// AppendModule appends a gate instantiating a named sub-circuit (spec.md
// §6.2 "named sub-modules"). The sub-circuit itself must already be
// registered via RegisterModule.
func (b *Builder) AppendModule(name string, controls []uint, targets []uint) {
	b.addGate(Gate{Kind: GateModule, Controls: controlSet(controls), ModuleName: name, Targets: targets})
}

// RegisterModule names a completed sub-circuit so later AppendModule calls
// can reference it, and so the top-level Circuit's JSON form nests it
// (spec.md §6.2; Config.ModulesHierarchy, §6.3).
func (b *Builder) RegisterModule(name string, sub *Circuit) {
	b.circuit.Modules[name] = sub
}

// AppendCircuit splices another circuit's gates into this one, remapping
// its line indices through lineOf (index i of sub maps to lineOf(i) in b).
// Used when a call/uncall is inlined rather than emitted as a module gate
// (spec.md §4.6: inlining is the default realization; Config.ModulesHierarchy
// switches to AppendModule instead).
func (b *Builder) AppendCircuit(sub *Circuit, lineOf func(uint) uint) {
	for _, g := range sub.Gates {
		mapped := Gate{Kind: g.Kind, ModuleName: g.ModuleName, SourceLine: g.SourceLine}

		mapped.Targets = make([]uint, len(g.Targets))
		for i, t := range g.Targets {
			mapped.Targets[i] = lineOf(t)
		}

		if g.Controls != nil {
			mapped.Controls = bitset.New(0)

			for i, ok := g.Controls.NextSet(0); ok; i, ok = g.Controls.NextSet(i + 1) {
				mapped.Controls.Set(lineOf(i))
			}
		}

		b.addGate(mapped)
	}
}
