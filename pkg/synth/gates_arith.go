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

import "github.com/reversible-synth/go-syrec/pkg/circuit"

// adderModuleName names a memoized adder module by bit-width, per spec.md §4.3
// "increase(dst, src): ... the module is memoized per bit-width."
func adderModuleName(bitwidth int) string {
	return "adder_" + uintToString(uint(bitwidth))
}

// increase implements spec.md §4.3 increase(dst, src): the ripple-carry
// adder realized as a reusable module gate rather than inlined. The first
// call for a given bit-width synthesizes and registers the module; later
// calls reuse it via append_module.
func (e *Engine) increase(dst, src LineRange) {
	n := len(dst)
	name := adderModuleName(n)

	if _, ok := e.build.Circuit().Modules[name]; !ok {
		e.buildAdderModule(name, n)
	}

	targets := make([]uint, 0, 2*n)
	targets = append(targets, dst...)
	targets = append(targets, src...)

	e.emitModule(name, nil, targets)
}

// decrease implements spec.md §4.3 decrease(dst, src): (NOT dst); increase;
// (NOT dst).
func (e *Engine) decrease(dst, src LineRange) {
	e.bitwiseNegation(dst)
	e.increase(dst, src)
	e.bitwiseNegation(dst)
}

// buildAdderModule synthesizes a standalone n-bit increaseNew circuit (lines
// 0..n-1 = dst, n..2n-1 = src) and registers it on the builder so increase
// can reference it by module gate, memoized per bit-width.
func (e *Engine) buildAdderModule(name string, n int) {
	sub := circuit.New()
	subBuild := circuit.NewBuilder()

	dst := make(LineRange, n)
	src := make(LineRange, n)

	for i := 0; i < n; i++ {
		dst[i] = subBuild.AddLine(circuit.Line{IsInput: true, IsOutput: true})
	}

	for i := 0; i < n; i++ {
		src[i] = subBuild.AddLine(circuit.Line{IsInput: true, IsOutput: true})
	}

	// Reuse the engine's own CCT-buffered emit path by swapping in a
	// throwaway builder/CCT pair for the duration of this sub-synthesis,
	// then restoring the caller's state — the adder module's body is
	// synthesized with exactly the same increaseNew primitive the inline
	// (non-memoized) path uses.
	savedBuild, savedCCT := e.build, e.cct
	e.build, e.cct = subBuild, newCCT()

	e.increaseNew(dst, src)
	e.assembleCCT()

	e.build, e.cct = savedBuild, savedCCT

	*sub = *subBuild.Circuit()
	e.build.RegisterModule(name, sub)
}

// computeBorrow implements the comparison-by-subtract-carry pattern spec.md
// §4.3 calls for: extends a copy of a by one guard bit, subtracts b
// (extended by one always-zero bit) from it, and returns the guard bit,
// which is set iff a < b in two's-complement underflow, along with the
// ancilla state the caller must restore via uncomputeBorrow once it has
// consumed the guard bit.
type borrowState struct {
	tmp   LineRange
	bExt  LineRange
	bHigh uint
	a     LineRange
}

func (e *Engine) computeBorrow(a, b LineRange) borrowState {
	n := len(a)
	tmp := e.allocConstVector(uint(n+1), 0)
	e.bitwiseCNOT(tmp[:n], a)

	bHigh := e.allocConst(false)

	bExt := make(LineRange, 0, n+1)
	bExt = append(bExt, b...)
	bExt = append(bExt, bHigh)

	e.decreaseNew(tmp, bExt)

	return borrowState{tmp: tmp, bExt: bExt, bHigh: bHigh, a: a}
}

func (e *Engine) uncomputeBorrow(s borrowState) {
	n := len(s.a)

	e.increaseNew(s.tmp, s.bExt)
	e.bitwiseCNOT(s.tmp[:n], s.a)
	e.releaseConstVector(s.tmp, 0)
	e.releaseConst(s.bHigh, false)
}

// lessThan implements spec.md §4.3 less_than: result ^= (a < b).
func (e *Engine) lessThan(result uint, a, b LineRange) {
	s := e.computeBorrow(a, b)
	e.emitCNOT(s.tmp[len(s.tmp)-1], result)
	e.uncomputeBorrow(s)
}

// greaterThan implements greater_than: result ^= (a > b) == (b < a).
func (e *Engine) greaterThan(result uint, a, b LineRange) {
	e.lessThan(result, b, a)
}

// lessEquals implements less_equals: result ^= NOT(a > b), via result ^= 1
// then ^= (a > b).
func (e *Engine) lessEquals(result uint, a, b LineRange) {
	e.emitNot(result)
	e.greaterThan(result, a, b)
}

// greaterEquals implements greater_equals: result ^= NOT(a < b).
func (e *Engine) greaterEquals(result uint, a, b LineRange) {
	e.emitNot(result)
	e.lessThan(result, a, b)
}

// equals implements spec.md §4.3 equals: result ^= (a == b), computed as
// NOR of the per-bit XORs.
func (e *Engine) equals(result uint, a, b LineRange) {
	n := len(a)
	diff := e.allocConstVector(uint(n), 0)

	for i := 0; i < n; i++ {
		e.emitCNOT(a[i], diff[i])
		e.emitCNOT(b[i], diff[i])
	}

	// result ^= 1 then AND-down: flip to 1 (assume equal), then for every
	// set diff bit, flip back to 0 — a multi-controlled Toffoli would need
	// all diff bits low; since Toffoli controls are AND semantics (active
	// high), invert each diff bit first so "all low" becomes "all high".
	for i := 0; i < n; i++ {
		e.emitNot(diff[i])
	}

	e.emitNot(result)

	controls := make([]uint, n)
	copy(controls, diff)
	e.emitToffoli(controls, result)
	e.emitNot(result)

	for i := 0; i < n; i++ {
		e.emitNot(diff[i])
	}

	for i := 0; i < n; i++ {
		e.emitCNOT(b[i], diff[i])
		e.emitCNOT(a[i], diff[i])
	}

	e.releaseConstVector(diff, 0)
}

// notEquals implements not_equals: result ^= NOT(a == b).
func (e *Engine) notEquals(result uint, a, b LineRange) {
	e.emitNot(result)
	e.equals(result, a, b)
}

// leftShift implements spec.md §4.3 left_shift(dst, src, k): copy bits via
// CNOT with the fixed offset k; vacated low positions remain zero.
func (e *Engine) leftShift(dst, src LineRange, k uint) {
	n := uint(len(src))
	for i := k; i < n; i++ {
		e.emitCNOT(src[i-k], dst[i])
	}
}

// rightShift implements right_shift(dst, src, k).
func (e *Engine) rightShift(dst, src LineRange, k uint) {
	n := uint(len(src))
	for i := uint(0); i+k < n; i++ {
		e.emitCNOT(src[i+k], dst[i])
	}
}

// multiplication implements spec.md §4.3 multiplication: schoolbook
// shift-and-add. dst (pre-allocated to bitwidth, all-ones per spec.md
// §4.5's allocation policy is immaterial to the gate sequence itself,
// which only requires dst start at a known value the caller restores) is
// conditionally incremented by a shifted copy of a for each set bit of b,
// using b's own lines as the per-term control (no extra read of b beyond
// using it as a control, so b is left unmodified).
func (e *Engine) multiplication(dst, a, b LineRange) {
	n := len(dst)

	for i, bBit := range b {
		if i >= n {
			break
		}

		shifted := make(LineRange, n)
		var zeros LineRange
		for j := range shifted {
			if j-i >= 0 && j-i < len(a) {
				shifted[j] = a[j-i]
			} else {
				z := e.allocConst(false)
				shifted[j] = z
				zeros = append(zeros, z)
			}
		}

		e.conditionalIncrease(dst, shifted, bBit)
		e.releaseConstVector(zeros, 0)
	}
}

// conditionalIncrease performs dst += src only when control is active,
// without allocating a fresh module per call: it pushes control onto the
// CCT, runs increaseNew, and pops — so the cost of "conditional" is paid by
// the CCT's existing control-accumulation machinery rather than a bespoke
// primitive (spec.md §4.4 is exactly this mechanism).
func (e *Engine) conditionalIncrease(dst, src LineRange, control uint) {
	e.cct.pushControl(control)
	e.increaseNew(dst, src)
	e.cct.popControl(control)
}

// multiplicationFull implements spec.md §4.3/§9 multiplication_full: same
// as multiplication but dest is double-width (dest.size == 2 x srcX.size),
// with the upper half of dest accumulating the carry-out terms (spec.md §9
// Open Questions: "growing sum by the upper half of dest").
func (e *Engine) multiplicationFull(dst, a, b LineRange) {
	n := len(a)
	if len(dst) != 2*n {
		return
	}

	for i, bBit := range b {
		if i >= n {
			break
		}

		shifted := make(LineRange, len(dst))
		var zeros LineRange
		for j := range shifted {
			if j-i >= 0 && j-i < len(a) {
				shifted[j] = a[j-i]
			} else {
				z := e.allocConst(false)
				shifted[j] = z
				zeros = append(zeros, z)
			}
		}

		e.conditionalIncrease(dst, shifted, bBit)
		e.releaseConstVector(zeros, 0)
	}
}

// division implements spec.md §4.3 division: shares the quotient-remainder
// loop with modulo (spec.md §9 Open Questions: "ensure divide matches
// modulo bit-for-bit"), recovering the quotient side.
func (e *Engine) division(quotient, dividend, divisor LineRange) {
	e.quotientRemainder(quotient, dividend, divisor, true)
}

// modulo implements spec.md §4.3 modulo, recovering the remainder side of
// the same loop division uses.
func (e *Engine) modulo(remainder, dividend, divisor LineRange) {
	e.quotientRemainder(remainder, dividend, divisor, false)
}

// quotientRemainder implements the shared restoring-division loop division
// and modulo differ only in which side they recover (spec.md §9 Open
// Questions). It keeps one (n+1)-line extended remainder register (the
// extra top bit is the restoring-division guard/borrow bit) across all n
// iterations: each iteration tentatively subtracts the divisor shifted into
// position, reads the guard bit into the quotient digit, and conditionally
// adds the divisor back when the guard bit shows underflow — the classical
// restoring-division identity guarantees the guard bit is back at 0 once
// the conditional restore completes, so it never needs a separate uncompute
// pass of its own.
func (e *Engine) quotientRemainder(dst, dividend, divisor LineRange, wantQuotient bool) {
	n := len(dividend)

	remainderExt := e.allocConstVector(uint(n+1), 0)
	e.bitwiseCNOT(remainderExt[:n], dividend)

	guard := remainderExt[n]

	for i := n - 1; i >= 0; i-- {
		shiftedExt := make(LineRange, n+1)

		zeros := make(LineRange, 0, n+1)

		for j := 0; j <= n; j++ {
			if j-i >= 0 && j-i < len(divisor) {
				shiftedExt[j] = divisor[j-i]
			} else {
				z := e.allocConst(false)
				shiftedExt[j] = z
				zeros = append(zeros, z)
			}
		}

		e.decreaseNew(remainderExt, shiftedExt)

		if wantQuotient && i < len(dst) {
			e.emitNot(dst[i])
			e.emitCNOT(guard, dst[i])
		}

		e.conditionalIncrease(remainderExt, shiftedExt, guard)

		e.releaseConstVector(zeros, 0)
	}

	if !wantQuotient {
		e.bitwiseCNOT(dst, remainderExt[:n])
	}

	// remainderExt (and, for division, the final true remainder it holds)
	// is left allocated as garbage rather than released to the free pool:
	// unlike the other primitives' scratch lines, its final value is
	// genuinely the division's byproduct output, not a restorable-to-zero
	// ancilla, matching spec.md §3's "wires are garbage outputs".
}
