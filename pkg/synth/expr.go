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

import "github.com/reversible-synth/go-syrec/pkg/ast"

// onExpression implements spec.md §4.5's Expression Synthesizer: it lowers
// expr to a line range holding its value, and returns a teardown closure the
// caller must invoke once it is done consuming that line range. Teardown
// reverses any array-swap cascade the expression's operands opened (spec.md
// §4.2) and returns a numeric literal's constant lines to the free pool; it
// is non-nil on success, and a no-op when there is nothing to reverse. Per
// the precedent set
// by quotientRemainder (gates_arith.go), a Binary/Shift result's own ancilla
// lines are never force-uncomputed back to zero here — they remain as
// garbage outputs (spec.md §3), and teardown only unwinds the operands.
func (e *Engine) onExpression(expr ast.Expression) (LineRange, func(), error) {
	switch n := expr.(type) {
	case *ast.Numeric:
		val, err := n.Evaluate(e.loopVars)
		if err != nil {
			return nil, nil, err
		}

		lines := e.allocConstVector(n.Width, val)

		return lines, func() { e.releaseConstVector(lines, val) }, nil
	case *ast.VariableRef:
		r, err := e.resolveAccess(n.Access)
		if err != nil {
			return nil, nil, err
		}

		return r.lines, func() { e.unget(r) }, nil
	case *ast.Binary:
		return e.onBinary(n)
	case *ast.Shift:
		return e.onShift(n)
	default:
		return nil, nil, errorf(expr, "unrecognized expression variant %T", expr)
	}
}

func (e *Engine) onBinary(n *ast.Binary) (LineRange, func(), error) {
	lhs, lhsDone, err := e.onExpression(n.Lhs)
	if err != nil {
		return nil, nil, err
	}

	rhs, rhsDone, err := e.onExpression(n.Rhs)
	if err != nil {
		if lhsDone != nil {
			lhsDone()
		}

		return nil, nil, err
	}

	teardown := func() {
		if lhsDone != nil {
			lhsDone()
		}

		if rhsDone != nil {
			rhsDone()
		}
	}

	width := n.Width

	switch n.Op {
	case ast.OpAdd:
		dst := e.allocConstVector(width, 0)
		e.bitwiseCNOT(dst, lhs)
		e.increaseNew(dst, rhs)

		return dst, teardown, nil
	case ast.OpSubtract:
		dst := e.allocConstVector(width, 0)
		e.bitwiseCNOT(dst, lhs)
		e.decreaseNew(dst, rhs)

		return dst, teardown, nil
	case ast.OpExor:
		dst := e.allocConstVector(width, 0)
		e.bitwiseCNOT(dst, lhs)
		e.bitwiseCNOT(dst, rhs)

		return dst, teardown, nil
	case ast.OpBitwiseAnd:
		dst := e.allocConstVector(width, 0)
		e.bitwiseAnd(dst, lhs, rhs)

		return dst, teardown, nil
	case ast.OpBitwiseOr:
		dst := e.allocConstVector(width, 0)
		e.bitwiseOr(dst, lhs, rhs)

		return dst, teardown, nil
	case ast.OpLogicalAnd:
		// a and b are data-dependent truth ancillas (reduceOr), not
		// provably-restorable constants, so — like quotientRemainder's
		// remainder — they are left allocated as garbage rather than
		// released to the free pool.
		dst := e.allocConstVector(width, 0)
		a := e.reduceOr(lhs)
		b := e.reduceOr(rhs)
		e.conjunction(dst[0], a, b)

		return dst, teardown, nil
	case ast.OpLogicalOr:
		dst := e.allocConstVector(width, 0)
		a := e.reduceOr(lhs)
		b := e.reduceOr(rhs)
		e.disjunction(dst[0], a, b)

		return dst, teardown, nil
	case ast.OpMultiply:
		dst := e.allocConstVector(width, 0)
		e.multiplication(dst, lhs, rhs)

		return dst, teardown, nil
	case ast.OpDivide:
		dst := e.allocConstVector(width, 0)
		e.division(dst, lhs, rhs)

		return dst, teardown, nil
	case ast.OpModulo:
		dst := e.allocConstVector(width, 0)
		e.modulo(dst, lhs, rhs)

		return dst, teardown, nil
	case ast.OpFracDivide:
		// OpFracDivide (SyReC's "*>") is the upper half of a full-width
		// multiplication, per original_source's fixed-point scaling use —
		// spec.md §9 leaves this operator's exact semantics an Open
		// Question; resolved here as upper_half(a * b).
		full := e.allocConstVector(2*uint(len(lhs)), 0)
		e.multiplicationFull(full, lhs, rhs)

		return full[len(lhs):], teardown, nil
	case ast.OpLess:
		dst := e.allocConstVector(width, 0)
		e.lessThan(dst[0], lhs, rhs)

		return dst, teardown, nil
	case ast.OpGreater:
		dst := e.allocConstVector(width, 0)
		e.greaterThan(dst[0], lhs, rhs)

		return dst, teardown, nil
	case ast.OpEquals:
		dst := e.allocConstVector(width, 0)
		e.equals(dst[0], lhs, rhs)

		return dst, teardown, nil
	case ast.OpNotEquals:
		dst := e.allocConstVector(width, 0)
		e.notEquals(dst[0], lhs, rhs)

		return dst, teardown, nil
	case ast.OpLessEquals:
		dst := e.allocConstVector(width, 0)
		e.lessEquals(dst[0], lhs, rhs)

		return dst, teardown, nil
	case ast.OpGreaterEquals:
		dst := e.allocConstVector(width, 0)
		e.greaterEquals(dst[0], lhs, rhs)

		return dst, teardown, nil
	default:
		teardown()

		return nil, nil, errorf(n, "unsupported binary operator %s", n.Op)
	}
}

func (e *Engine) onShift(n *ast.Shift) (LineRange, func(), error) {
	lhs, lhsDone, err := e.onExpression(n.Lhs)
	if err != nil {
		return nil, nil, err
	}

	amount, err := n.Amount.Evaluate(e.loopVars)
	if err != nil {
		if lhsDone != nil {
			lhsDone()
		}

		return nil, nil, err
	}

	dst := e.allocConstVector(n.Width, 0)

	if n.Op == ast.ShiftLeft {
		e.leftShift(dst, lhs, uint(amount))
	} else {
		e.rightShift(dst, lhs, uint(amount))
	}

	return dst, lhsDone, nil
}

// bitwiseAnd implements the per-bit (vector) AND spec.md §3 distinguishes
// from the single-bit logical AND: dst[i] = a[i] AND b[i].
func (e *Engine) bitwiseAnd(dst, a, b LineRange) {
	n := min(len(dst), min(len(a), len(b)))
	for i := range n {
		e.conjunction(dst[i], a[i], b[i])
	}
}

// bitwiseOr implements the per-bit (vector) OR.
func (e *Engine) bitwiseOr(dst, a, b LineRange) {
	n := min(len(dst), min(len(a), len(b)))
	for i := range n {
		e.disjunction(dst[i], a[i], b[i])
	}
}

// reduceOr folds bits down to a single line holding their logical OR (used
// by the scalar logical AND/OR operators, which truth-test a whole operand
// rather than combining it bitwise). Every intermediate accumulator past
// the first is a data-dependent partial OR, not a provable constant, so
// none of them are released — only the final accumulator is returned, and
// it carries the same "left as garbage" obligation as the rest of this
// package's data-dependent ancillas.
func (e *Engine) reduceOr(bits LineRange) uint {
	acc := e.allocConst(false)

	for _, b := range bits {
		next := e.allocConst(false)
		e.disjunction(next, acc, b)
		acc = next
	}

	return acc
}
