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
	"github.com/bits-and-blooms/bitset"

	"github.com/reversible-synth/go-syrec/pkg/circuit"
)

// The emit* family appends gates into the CCT's current leaf (spec.md §4.4
// invariant: "every gate append goes into current.circ"), tagged with
// whatever controls are explicit at the call site; the CCT's ancestor
// controls are merged in later, at assembleCCT.

func controlsOf(controls []uint) *bitset.BitSet {
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

func (e *Engine) emit(kind circuit.GateKind, controls []uint, targets []uint, moduleName string) {
	e.cct.append(circuit.Gate{
		Kind:       kind,
		Controls:   controlsOf(controls),
		Targets:    targets,
		ModuleName: moduleName,
		SourceLine: e.currentSourceLine,
	})
}

// emitNot implements spec.md §4.3 NOT(x).
func (e *Engine) emitNot(target uint) {
	e.emit(circuit.GateNot, nil, []uint{target}, "")
}

// emitCNOT implements spec.md §4.3 CNOT(c, x).
func (e *Engine) emitCNOT(control, target uint) {
	e.emit(circuit.GateCNOT, []uint{control}, []uint{target}, "")
}

// emitToffoli implements spec.md §4.3 Toffoli(controls, x).
func (e *Engine) emitToffoli(controls []uint, target uint) {
	e.emit(circuit.GateToffoli, controls, []uint{target}, "")
}

// emitFredkin implements spec.md §4.3 Fredkin(controls, a, b).
func (e *Engine) emitFredkin(controls []uint, a, b uint) {
	e.emit(circuit.GateFredkin, controls, []uint{a, b}, "")
}

// emitModule implements spec.md §4.6 "emit a single module gate".
func (e *Engine) emitModule(name string, controls []uint, targets []uint) {
	e.emit(circuit.GateModule, controls, targets, name)
}

// bitwiseCNOT implements spec.md §4.3 bitwise_cnot(dst, src): dst ^= src,
// pairwise.
func (e *Engine) bitwiseCNOT(dst, src LineRange) {
	n := min(len(dst), len(src))
	for i := range n {
		e.emitCNOT(src[i], dst[i])
	}
}

// bitwiseNegation implements spec.md §4.3 bitwise_negation(dst): NOT per bit.
func (e *Engine) bitwiseNegation(dst LineRange) {
	for _, l := range dst {
		e.emitNot(l)
	}
}

// conjunction implements spec.md §4.3 conjunction: dst ^= a AND b, via a
// single Toffoli (dst must start at 0 for this to read as a plain AND
// rather than an accumulate).
func (e *Engine) conjunction(dst, a, b uint) {
	e.emitToffoli([]uint{a, b}, dst)
}

// disjunction implements spec.md §4.3 disjunction: dst ^= a OR b, via CNOT
// pre-steps plus a Toffoli: dst ^= a; dst ^= b; dst ^= a AND b is the
// textbook identity (a OR b = a XOR b XOR (a AND b)).
func (e *Engine) disjunction(dst, a, b uint) {
	e.emitCNOT(a, dst)
	e.emitCNOT(b, dst)
	e.emitToffoli([]uint{a, b}, dst)
}

// increaseNew implements spec.md §4.3 increase_new(rhs, lhs): in-place
// ripple-carry adder, rhs <- rhs + lhs, emitted inline. Bit-width 1
// collapses to a single CNOT. Grounded bit-for-bit in
// original_source/src/algorithms/synthesis/syrec_synthesis.cpp's
// increase_new (lines ~1792-1870): CNOT passes and a CNOT chain along lhs,
// a forward Toffoli pass building up carries, then a reverse CNOT+Toffoli
// pass undoing the carry computation while committing each sum bit. Only
// CNOT and Toffoli gates are emitted.
func (e *Engine) increaseNew(rhs, lhs LineRange) {
	n := len(rhs)
	if n == 0 {
		return
	}

	if n == 1 {
		e.emitCNOT(lhs[0], rhs[0])
		return
	}

	for i := 1; i < n; i++ {
		e.emitCNOT(lhs[i], rhs[i])
	}

	for i := n - 2; i >= 1; i-- {
		e.emitCNOT(lhs[i], lhs[i+1])
	}

	for i := 0; i < n-1; i++ {
		e.emitToffoli([]uint{rhs[i], lhs[i]}, lhs[i+1])
	}

	for i := n - 1; i >= 1; i-- {
		e.emitCNOT(lhs[i], rhs[i])
		e.emitToffoli([]uint{rhs[i-1], lhs[i-1]}, lhs[i])
	}

	for i := 1; i < n-1; i++ {
		e.emitCNOT(lhs[i], lhs[i+1])
	}

	for i := 0; i < n; i++ {
		e.emitCNOT(lhs[i], rhs[i])
	}
}

// decreaseNew implements spec.md §4.3 decrease_new(rhs, lhs): the
// two's-complement trick (NOT rhs); increase_new(rhs,lhs); (NOT rhs).
func (e *Engine) decreaseNew(rhs, lhs LineRange) {
	e.bitwiseNegation(rhs)
	e.increaseNew(rhs, lhs)
	e.bitwiseNegation(rhs)
}

// decreaseNewAssign implements spec.md §4.3 decrease_new_assign(rhs, lhs):
// (NOT lhs); increase_new(rhs,lhs); (NOT lhs); (NOT rhs). Used evaluating
// `-` in an assign-statement where lhs is the destination.
func (e *Engine) decreaseNewAssign(rhs, lhs LineRange) {
	e.bitwiseNegation(lhs)
	e.increaseNew(rhs, lhs)
	e.bitwiseNegation(lhs)
	e.bitwiseNegation(rhs)
}

// increaseWithCarry implements spec.md §4.3 increase_with_carry(dst, src,
// carry): the same ripple-carry structure as increaseNew but threading an
// explicit extra carry line in and out. Nothing in this package calls it
// or decreaseWithCarry; the comparators in gates_arith.go use decreaseNew.
func (e *Engine) increaseWithCarry(dst, src LineRange, carry uint) {
	n := len(dst)
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		e.emitCNOT(src[i], dst[i])
	}

	carryChain := make([]uint, n+1)
	carryChain[0] = carry

	for i := 0; i < n; i++ {
		c := e.allocConst(false)
		e.emitToffoli([]uint{dst[i], carryChain[i]}, c)
		e.emitCNOT(src[i], dst[i])
		e.emitToffoli([]uint{dst[i], carryChain[i]}, c)
		carryChain[i+1] = c
	}

	for i := n - 1; i >= 0; i-- {
		e.emitCNOT(carryChain[i], dst[i])

		if i < n-1 {
			e.releaseConst(carryChain[i+1], false)
		}
	}

	e.releaseConst(carryChain[n], false)
}

// decreaseWithCarry implements spec.md §4.3 decrease_with_carry via the
// same two's-complement trick as decreaseNew.
func (e *Engine) decreaseWithCarry(dst, src LineRange, carry uint) {
	e.bitwiseNegation(dst)
	e.increaseWithCarry(dst, src, carry)
	e.bitwiseNegation(dst)
}
