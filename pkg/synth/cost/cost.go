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

// Package cost implements the pluggable cost-model hook spec.md §4.4.1 and
// §9's Open Questions call for in place of the original's commented-out
// standardCost/optimizationCost/successorsCost stubs.
package cost

// Tree is the minimal shape a cost.Model needs from a CCT subtree: its gate
// count and the size of the control set it would run under. pkg/synth's CCT
// node type satisfies this without cost needing to import pkg/synth (which
// would be a cycle, since pkg/synth imports cost).
type Tree interface {
	// GateCount is the number of gates buffered under this subtree.
	GateCount() uint
	// ControlCount is the number of controls already active above this
	// subtree (not counting any new helper control being considered).
	ControlCount() uint
}

// Model estimates the three costs spec.md §4.4.1 compares when deciding
// whether to hoist a CCT subtree's controls onto a single helper line.
type Model interface {
	// Standard estimates the cost of emitting tree's gates each individually
	// controlled by the full accumulated control set (no hoisting).
	Standard(tree Tree) uint
	// Optimization estimates the cost of hoisting: one Toffoli to compute
	// the helper AND, the subtree's gates controlled by that single helper,
	// one Toffoli to un-compute the helper.
	Optimization(tree Tree) uint
	// Successors estimates the cost of deferring the decision to each child
	// subtree independently (no hoisting at this node, but children may
	// still hoist).
	Successors(tree Tree) uint
}

// Default is a non-degenerate cost.Model using the standard reversible-logic
// quantum-cost table: an n-controlled Toffoli costs 2^n-1 for n>=1, 1 for
// n==0 (matching circuit.Circuit.QuantumCost and the figures spec.md §8
// scenario 1 exercises).
type Default struct{}

// toffoliCost is the quantum cost of a single n-controlled Toffoli gate.
func toffoliCost(controls uint) uint {
	if controls == 0 {
		return 1
	}

	return (uint(1) << controls) - 1
}

// Standard implements Model: every buffered gate pays the full control set.
func (Default) Standard(tree Tree) uint {
	return tree.GateCount() * toffoliCost(tree.ControlCount())
}

// Optimization implements Model: two Toffolis to compute/uncompute the
// helper AND (each over the same control set), plus every buffered gate now
// paying only a single-control (helper) cost.
func (Default) Optimization(tree Tree) uint {
	return 2*toffoliCost(tree.ControlCount()) + tree.GateCount()*toffoliCost(1)
}

// Successors implements Model: no hoisting decision is made at this node, so
// its own gates still pay the full control set; this differs from Standard
// only in intent (it's the baseline a child's own hoisting decision is
// compared against), so the estimate is identical here.
func (Default) Successors(tree Tree) uint {
	return tree.GateCount() * toffoliCost(tree.ControlCount())
}
