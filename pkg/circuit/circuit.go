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

// Package circuit implements the output-side data model of spec.md §6.2: a
// reversible circuit as an ordered gate list over a named set of lines, plus
// the append primitives the synthesizer drives it through.
package circuit

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// GateKind distinguishes the gate shapes spec.md §3 allows.
type GateKind uint8

const (
	GateNot GateKind = iota
	GateCNOT
	GateToffoli
	GateFredkin
	GateModule
)

// String names a GateKind for diagnostics and the `inspect`/`stats` CLI.
func (k GateKind) String() string {
	switch k {
	case GateNot:
		return "not"
	case GateCNOT:
		return "cnot"
	case GateToffoli:
		return "toffoli"
	case GateFredkin:
		return "fredkin"
	case GateModule:
		return "module"
	default:
		return "?"
	}
}

// Gate is a single reversible gate: a set of control lines plus a tuple of
// target lines (spec.md §3 "Circuit"). NOT has zero controls and one
// target; CNOT has one control and one target; Toffoli has any number of
// controls and one target; Fredkin has any number of controls and two
// (swapped) targets; a module gate has a name identifying a named
// sub-circuit plus its own target/control lines.
type Gate struct {
	Kind     GateKind
	Controls *bitset.BitSet
	Targets  []uint
	// ModuleName names the sub-circuit this gate instantiates; only set
	// when Kind == GateModule.
	ModuleName string
	// SourceLine is the RHDL source line that produced this gate, set via
	// the OnGateAdded hook (spec.md §6.2), 0 if unknown.
	SourceLine uint
}

// Line is a named circuit wire with the attributes spec.md §3 requires.
type Line struct {
	NameIn, NameOut string
	IsInput         bool
	IsOutput        bool
	IsConstant      bool
	ConstantValue   bool
	IsGarbage       bool
}

// Circuit is the complete synthesis output: spec.md §3's "ordered sequence
// of gates over a named set of signal lines, together with input/output/
// garbage/constant annotations".
type Circuit struct {
	Lines []Line
	Gates []Gate
	// Modules holds named sub-circuits referenced by GateModule gates
	// (spec.md §6.2 "named sub-modules keyed by name"), populated when
	// Config.ModulesHierarchy is enabled.
	Modules map[string]*Circuit
}

// New constructs an empty circuit.
func New() *Circuit {
	return &Circuit{Modules: make(map[string]*Circuit)}
}

// NumLines returns the declared line count (spec.md §8 invariant 1).
func (c *Circuit) NumLines() uint {
	return uint(len(c.Lines))
}

// NumGates returns the total gate count.
func (c *Circuit) NumGates() uint {
	return uint(len(c.Gates))
}

// Line returns the line at index i, panicking on an out-of-range index —
// line indices are produced exclusively by this package's own allocator
// (pkg/synth's Line Allocator, C1) and are never attacker- or user-supplied,
// so a panic here indicates an internal synthesis bug, not malformed input.
func (c *Circuit) Line(i uint) *Line {
	return &c.Lines[i]
}

// QuantumCost estimates the standard reversible-logic quantum cost of the
// circuit: NOT and CNOT cost 1, an n-controlled Toffoli costs 2^n - 1 for
// n >= 1 and 1 for n == 0, summed over all targets of the gate, and an
// n-controlled Fredkin costs three times that per-target figure (3 when
// n == 0).
// This is the same accounting spec.md §8 scenario 1 exercises and is reused
// verbatim by pkg/synth/cost's default cost.Model.
func (c *Circuit) QuantumCost() uint {
	var total uint

	for _, g := range c.Gates {
		total += gateQuantumCost(g)
	}

	return total
}

func gateQuantumCost(g Gate) uint {
	n := uint(0)
	if g.Controls != nil {
		n = g.Controls.Count()
	}

	var perTarget uint
	if n == 0 {
		perTarget = 1
	} else {
		perTarget = (uint(1) << n) - 1
	}

	targets := len(g.Targets)
	if g.Kind == GateFredkin {
		// A Fredkin gate swaps two targets; the standard decomposition is
		// three Toffolis sharing the control set, i.e. 3x the per-target
		// cost of a single-target Toffoli with the same controls.
		return 3 * perTarget
	}

	if targets == 0 {
		targets = 1
	}

	return perTarget * uint(targets)
}

// TransistorCost estimates the classical CMOS transistor count of the
// circuit using the reversible-logic convention of 4 transistors per
// quantum cost unit (spec.md §8 scenario 1: 24 quantum cost -> 96
// transistor cost is exactly this ratio).
func (c *Circuit) TransistorCost() uint {
	return 4 * c.QuantumCost()
}

// GateHistogram counts gates by kind, used by the `stats` CLI command.
func (c *Circuit) GateHistogram() map[GateKind]uint {
	hist := make(map[GateKind]uint)
	for _, g := range c.Gates {
		hist[g.Kind]++
	}

	return hist
}

// String renders a short human-readable summary, grounded in the
// termio-table style go-corset's inspect command uses.
func (c *Circuit) String() string {
	return fmt.Sprintf("circuit{lines=%d, gates=%d, qcost=%d, tcost=%d}",
		c.NumLines(), c.NumGates(), c.QuantumCost(), c.TransistorCost())
}
