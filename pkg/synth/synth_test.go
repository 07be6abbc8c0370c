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
	"testing"

	"github.com/reversible-synth/go-syrec/pkg/ast"
	"github.com/reversible-synth/go-syrec/pkg/circuit"
)

// scalarAccess builds a whole-variable VariableAccess (no indices, no bit
// range) for v, the common case every scenario below needs.
func scalarAccess(v *ast.Variable) *ast.VariableAccess {
	return &ast.VariableAccess{Variable: v}
}

func refTo(v *ast.Variable) *ast.VariableRef {
	return &ast.VariableRef{Access: scalarAccess(v), Width: v.Bitwidth}
}

// seedAndRun builds the initial per-line boolean vector from bits (one
// value per declared variable, in declaration order, LSB at bit 0), seeds
// every constant line to its declared ConstantValue, and simulates c.
func seedAndRun(t *testing.T, c *circuit.Circuit, varLines []LineRange, bits []uint64) []bool {
	t.Helper()

	lines := make([]bool, c.NumLines())

	for i := range lines {
		lines[i] = c.Line(uint(i)).ConstantValue
	}

	for vi, r := range varLines {
		for bi, l := range r {
			lines[l] = (bits[vi]>>uint(bi))&1 != 0
		}
	}

	out, err := circuit.Simulate(c, lines)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	return out
}

func linesValue(out []bool, r LineRange) uint64 {
	var v uint64
	for i, l := range r {
		if out[l] {
			v |= 1 << uint(i)
		}
	}

	return v
}

// TestBitwiseAndExor builds spec.md §8 scenario 1's program by hand —
// module main(in a(2), in b(2), out y(2)) y ^= a & b — and checks the
// synthesized circuit computes y = a & b for every input combination, using
// exactly a(2)+b(2)+y(2) declared lines plus whatever ancillary lines
// bitwise_and's per-bit conjunction needs.
func TestBitwiseAndExor(t *testing.T) {
	a := &ast.Variable{Kind: ast.KindIn, Name: "a", Bitwidth: 2}
	b := &ast.Variable{Kind: ast.KindIn, Name: "b", Bitwidth: 2}
	y := &ast.Variable{Kind: ast.KindOut, Name: "y", Bitwidth: 2}

	module := &ast.Module{
		Name:       "main",
		Parameters: []*ast.Variable{a, b, y},
		Body: []ast.Statement{
			&ast.Assign{
				Op:  ast.AssignExor,
				Lhs: scalarAccess(y),
				Rhs: &ast.Binary{
					Op:    ast.OpBitwiseAnd,
					Lhs:   refTo(a),
					Rhs:   refTo(b),
					Width: 2,
				},
			},
		},
	}

	c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("synthesize errors: %v", errs)
	}

	// a, b, y occupy the first 6 lines in declaration order; any lines
	// beyond that are bitwise_and's per-bit conjunction ancillas.
	if got, want := c.NumLines(), uint(8); got != want {
		t.Fatalf("lines: got %d, want %d", got, want)
	}

	aLines := LineRange{0, 1}
	bLines := LineRange{2, 3}
	yLines := LineRange{4, 5}

	for av := uint64(0); av < 4; av++ {
		for bv := uint64(0); bv < 4; bv++ {
			out := seedAndRun(t, c, []LineRange{aLines, bLines, yLines}, []uint64{av, bv, 0})

			if got, want := linesValue(out, yLines), av&bv; got != want {
				t.Errorf("a=%d b=%d: y = %d, want %d", av, bv, got, want)
			}

			if got, want := linesValue(out, aLines), av; got != want {
				t.Errorf("a=%d b=%d: a mutated to %d", av, bv, got)
			}

			if got, want := linesValue(out, bLines), bv; got != want {
				t.Errorf("a=%d b=%d: b mutated to %d", av, bv, got)
			}
		}
	}

	// TransistorCost must always track QuantumCost by the fixed ratio
	// regardless of the exact gate sequence a given program lowers to.
	if got, want := c.TransistorCost(), 4*c.QuantumCost(); got != want {
		t.Errorf("transistor cost: got %d, want %d (4x quantum cost %d)", got, want, c.QuantumCost())
	}
}

// TestAssignCancelBareSelfReference covers spec.md §4.7 path A's simplest
// shape: x ^= x is the identity, so the synthesizer must emit nothing for
// it (and thus leave x unchanged under simulation for every input).
func TestAssignCancelBareSelfReference(t *testing.T) {
	x := &ast.Variable{Kind: ast.KindInout, Name: "x", Bitwidth: 4}

	module := &ast.Module{
		Name:       "main",
		Parameters: []*ast.Variable{x},
		Body: []ast.Statement{
			&ast.Assign{Op: ast.AssignExor, Lhs: scalarAccess(x), Rhs: refTo(x)},
		},
	}

	c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("synthesize errors: %v", errs)
	}

	if got, want := c.NumGates(), uint(0); got != want {
		t.Fatalf("gates: got %d, want %d (x ^= x must cancel to nothing)", got, want)
	}

	xLines := LineRange{0, 1, 2, 3}

	for xv := uint64(0); xv < 16; xv++ {
		out := seedAndRun(t, c, []LineRange{xLines}, []uint64{xv})
		if got := linesValue(out, xLines); got != xv {
			t.Errorf("x=%d: got %d after x ^= x", xv, got)
		}
	}
}

// TestAssignCancelRepeatedOperand covers the other path-A shape: a
// single-operator RHS (here y ^= a ^ a) whose two operands are
// structurally identical cancels regardless of whether either operand
// matches the assignment's own LHS.
func TestAssignCancelRepeatedOperand(t *testing.T) {
	a := &ast.Variable{Kind: ast.KindIn, Name: "a", Bitwidth: 3}
	y := &ast.Variable{Kind: ast.KindOut, Name: "y", Bitwidth: 3}

	module := &ast.Module{
		Name:       "main",
		Parameters: []*ast.Variable{a, y},
		Body: []ast.Statement{
			&ast.Assign{
				Op:  ast.AssignExor,
				Lhs: scalarAccess(y),
				Rhs: &ast.Binary{Op: ast.OpExor, Lhs: refTo(a), Rhs: refTo(a), Width: 3},
			},
		},
	}

	c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("synthesize errors: %v", errs)
	}

	if got, want := c.NumGates(), uint(0); got != want {
		t.Fatalf("gates: got %d, want %d (y ^= a^a must cancel to nothing)", got, want)
	}

	if got, want := c.NumLines(), uint(6); got != want {
		t.Fatalf("lines: got %d, want %d", got, want)
	}
}

// TestIncrementWraps covers spec.md §8's 3-bit increment scenario: x++
// simulated over every 3-bit value must produce (x+1) mod 8.
func TestIncrementWraps(t *testing.T) {
	x := &ast.Variable{Kind: ast.KindInout, Name: "x", Bitwidth: 3}

	module := &ast.Module{
		Name:       "main",
		Parameters: []*ast.Variable{x},
		Body: []ast.Statement{
			&ast.Unary{Op: ast.UnaryIncrement, Var: scalarAccess(x)},
		},
	}

	c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("synthesize errors: %v", errs)
	}

	xLines := LineRange{0, 1, 2}

	for xv := uint64(0); xv < 8; xv++ {
		out := seedAndRun(t, c, []LineRange{xLines}, []uint64{xv})

		if got, want := linesValue(out, xLines), (xv+1)%8; got != want {
			t.Errorf("x=%d: x++ = %d, want %d", xv, got, want)
		}
	}
}

// TestDecrementIsIncrementInverse checks that decrementing right after
// incrementing (the self-inverse pair spec.md §4.6 "uncall" relies on)
// restores the original value for every 3-bit input.
func TestDecrementIsIncrementInverse(t *testing.T) {
	x := &ast.Variable{Kind: ast.KindInout, Name: "x", Bitwidth: 3}

	module := &ast.Module{
		Name:       "main",
		Parameters: []*ast.Variable{x},
		Body: []ast.Statement{
			&ast.Unary{Op: ast.UnaryIncrement, Var: scalarAccess(x)},
			&ast.Unary{Op: ast.UnaryDecrement, Var: scalarAccess(x)},
		},
	}

	c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("synthesize errors: %v", errs)
	}

	xLines := LineRange{0, 1, 2}

	for xv := uint64(0); xv < 8; xv++ {
		out := seedAndRun(t, c, []LineRange{xLines}, []uint64{xv})
		if got := linesValue(out, xLines); got != xv {
			t.Errorf("x=%d: x++ then x-- = %d, want %d", xv, got, xv)
		}
	}
}

// TestIncrementMergedMatchesPlainCascade checks that enabling
// Config.CrementMergeLineCount changes nothing observable: the merged
// helper-line variant must still wrap exactly like the plain cascade for
// every 4-bit input, across every group size from 2 up to one less than
// the operand width.
func TestIncrementMergedMatchesPlainCascade(t *testing.T) {
	for group := uint(2); group < 4; group++ {
		x := &ast.Variable{Kind: ast.KindInout, Name: "x", Bitwidth: 4}

		module := &ast.Module{
			Name:       "main",
			Parameters: []*ast.Variable{x},
			Body: []ast.Statement{
				&ast.Unary{Op: ast.UnaryIncrement, Var: scalarAccess(x)},
			},
		}

		cfg := DefaultConfig()
		cfg.CrementMergeLineCount = group

		c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, cfg)
		if len(errs) != 0 {
			t.Fatalf("group=%d: synthesize errors: %v", group, errs)
		}

		xLines := LineRange{0, 1, 2, 3}

		for xv := uint64(0); xv < 16; xv++ {
			out := seedAndRun(t, c, []LineRange{xLines}, []uint64{xv})

			if got, want := linesValue(out, xLines), (xv+1)%16; got != want {
				t.Errorf("group=%d x=%d: x++ = %d, want %d", group, xv, got, want)
			}
		}
	}
}

// TestSwap covers spec.md §8's 4-bit swap scenario: x <=> y must exchange
// the two variables' contents for any initial (x, y) pair.
func TestSwap(t *testing.T) {
	x := &ast.Variable{Kind: ast.KindInout, Name: "x", Bitwidth: 4}
	y := &ast.Variable{Kind: ast.KindInout, Name: "y", Bitwidth: 4}

	module := &ast.Module{
		Name:       "main",
		Parameters: []*ast.Variable{x, y},
		Body: []ast.Statement{
			&ast.Swap{Lhs: scalarAccess(x), Rhs: scalarAccess(y)},
		},
	}

	c, errs := Synthesize(&ast.Circuit{Modules: []*ast.Module{module}}, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("synthesize errors: %v", errs)
	}

	xLines := LineRange{0, 1, 2, 3}
	yLines := LineRange{4, 5, 6, 7}

	for xv := uint64(0); xv < 16; xv += 3 {
		for yv := uint64(0); yv < 16; yv += 5 {
			out := seedAndRun(t, c, []LineRange{xLines, yLines}, []uint64{xv, yv})

			if got := linesValue(out, xLines); got != yv {
				t.Errorf("x=%d y=%d: x after swap = %d, want %d", xv, yv, got, yv)
			}

			if got := linesValue(out, yLines); got != xv {
				t.Errorf("x=%d y=%d: y after swap = %d, want %d", xv, yv, got, xv)
			}
		}
	}
}
