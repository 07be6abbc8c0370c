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
)

// resolved is what the Variable Access Resolver (spec.md §4.2) hands back:
// the destination line list, plus whatever state unget needs to reverse a
// dynamic (array-swap-cascade) access. Static accesses carry a nil
// cascade — unget is then a no-op, matching spec.md §4.2's "constant
// folding paths require no unget".
type resolved struct {
	lines   LineRange
	cascade *swapCascade
}

// swapCascade holds a closure that replays an array-swap cascade, so unget
// can emit the exact same toggle-and-swap sequence to swap the element back
// out.
type swapCascade struct {
	apply func()
}

// resolveAccess implements spec.md §4.2's algorithm end to end.
func (e *Engine) resolveAccess(access *ast.VariableAccess) (resolved, error) {
	v := access.Variable

	// Step 1: if-duplication remap (spec.md §4.6 IF policy 2): a variable
	// the then-branch modifies resolves against its twin's lines instead
	// of its own for the duration of that branch's lowering.
	base, remapped := e.ifRemap[v]
	if !remapped {
		var err error

		base, err = e.variablesOf(v)
		if err != nil {
			return resolved{}, err
		}
	}

	allStatic := true

	staticIdx := make([]uint64, len(access.Indices))

	for i, idxExpr := range access.Indices {
		val, err := ast.Evaluate(idxExpr, e.loopVars)
		if err != nil {
			allStatic = false
			break
		}

		staticIdx[i] = val
	}

	var elementLines LineRange

	var cascade *swapCascade

	if allStatic {
		offset, err := staticOffset(v, staticIdx)
		if err != nil {
			return resolved{}, err
		}

		elementLines = base[offset : offset+v.Bitwidth]
	} else {
		var err error

		elementLines, cascade, err = e.dynamicAccess(v, base, access.Indices)
		if err != nil {
			return resolved{}, err
		}
	}

	if access.Range != nil {
		elementLines = sliceRange(elementLines, *access.Range)
	}

	return resolved{lines: elementLines, cascade: cascade}, nil
}

// unget implements spec.md §4.2 "unget reapplies only the swap cascade for
// non-fully-static accesses".
func (e *Engine) unget(r resolved) {
	if r.cascade != nil {
		r.cascade.apply()
	}
}

// staticOffset implements spec.md §4.2 step 3: row-major stride folding.
func staticOffset(v *ast.Variable, idx []uint64) (uint, error) {
	if len(idx) > len(v.Dimensions) {
		return 0, fmt.Errorf("variable %q: too many indices", v.Name)
	}

	var offset uint

	for i, val := range idx {
		stride := v.Bitwidth
		for _, d := range v.Dimensions[i+1:] {
			stride *= d
		}

		offset += uint(val) * stride
	}

	return offset, nil
}

// sliceRange implements spec.md §4.2 step 5: returns the bit sub-slice
// first..=last, reversed when first > last.
func sliceRange(lines LineRange, r ast.BitRange) LineRange {
	if r.First <= r.Last {
		return lines[r.First : r.Last+1]
	}

	out := make(LineRange, 0, r.First-r.Last+1)
	for i := r.First; ; i-- {
		out = append(out, lines[i])

		if i == r.Last {
			break
		}
	}

	return out
}

// dynamicAccess implements spec.md §4.2 step 4: the array-swap cascade.
// Only the first dynamic dimension drives the cascade (the common RHDL
// case is a single dynamic index); any remaining dimensions after it are
// folded statically within each branch, and any dimensions before it must
// themselves be static. An access with a second dynamic dimension is
// rejected with an error; only one dynamic dimension per access is handled.
func (e *Engine) dynamicAccess(v *ast.Variable, base LineRange, indices []ast.Expression) (LineRange, *swapCascade, error) {
	dynDim := -1

	for i, idxExpr := range indices {
		if _, err := ast.Evaluate(idxExpr, e.loopVars); err != nil {
			dynDim = i
			break
		}
	}

	if dynDim < 0 {
		return nil, nil, fmt.Errorf("dynamicAccess called with no dynamic index")
	}

	dim := v.Dimensions[dynDim]

	// Precompute the static prefix offset (dimensions before dynDim, which
	// per the above must themselves be statically evaluable) and the
	// per-value stride contributed by dynDim's own dimension.
	var prefixOffset uint

	for i := 0; i < dynDim; i++ {
		val, err := ast.Evaluate(indices[i], e.loopVars)
		if err != nil {
			return nil, nil, fmt.Errorf("variable %q: dimension %d must be static when a later dimension is dynamic", v.Name, i)
		}

		stride := v.Bitwidth
		for _, d := range v.Dimensions[i+1:] {
			stride *= d
		}

		prefixOffset += uint(val) * stride
	}

	elemStride := v.Bitwidth
	for _, d := range v.Dimensions[dynDim+1:] {
		elemStride *= d
	}

	// Resolve the trailing (post-dynDim) static indices, if any.
	var trailingOffset uint

	for i := dynDim + 1; i < len(indices); i++ {
		val, err := ast.Evaluate(indices[i], e.loopVars)
		if err != nil {
			return nil, nil, fmt.Errorf("variable %q: only one dynamic dimension is supported per access", v.Name)
		}

		stride := v.Bitwidth
		for _, d := range v.Dimensions[i+1:] {
			stride *= d
		}

		trailingOffset += uint(val) * stride
	}

	selector, err := e.resolveSelector(indices[dynDim], dim)
	if err != nil {
		return nil, nil, err
	}

	dest := e.allocConstVector(v.Bitwidth, 0)

	swapIn := func() {
		e.graySwapCascade(selector, dim, func(k uint64) {
			start := prefixOffset + uint(k)*elemStride + trailingOffset
			e.bitwiseFredkin(dest, base[start:start+v.Bitwidth])
		})
	}

	swapIn()

	return dest, &swapCascade{apply: swapIn}, nil
}

// resolveSelector lowers a dynamic index expression to a selector
// line-vector wide enough to represent every value 0..dim-1 (spec.md §4.2
// step 4 "lower the index expression to a selector line-vector").
func (e *Engine) resolveSelector(idx ast.Expression, dim uint) (LineRange, error) {
	width := bitsFor(dim)

	out := make(LineRange, width)

	switch v := idx.(type) {
	case *ast.VariableRef:
		r, err := e.resolveAccess(v.Access)
		if err != nil {
			return nil, err
		}

		copy(out, r.lines)

		return out, nil
	default:
		// A computed (non-bare-variable) dynamic index: lower it through
		// the expression synthesizer onto fresh lines.
		lines, _, err := e.onExpression(idx)
		if err != nil {
			return nil, err
		}

		copy(out, lines)

		return out, nil
	}
}

func bitsFor(n uint) uint {
	width := uint(0)
	for (uint(1) << width) < n {
		width++
	}

	if width == 0 {
		width = 1
	}

	return width
}

// graySwapCascade implements spec.md §4.2's incremental selector-toggle
// cascade: it walks k = 0..dim-1 in order, inverting every selector bit
// before k = 0 and, between consecutive steps, flipping exactly the
// selector bits where k and k-1 differ (rather than re-testing the
// selector against k from scratch each time). At step k the selector's
// physical bit pattern is therefore the original value XOR NOT k, which
// reads all-ones exactly when the original selector value equals k — a plain
// conjunction of all selector lines is then the correct guard for
// body(k). The selector is left in its natural binary encoding
// throughout rather than being re-encoded to Gray code, so a transition
// between two values that differ in several bits costs several NOTs
// rather than exactly one; spec.md §4.2 motivates the fully Gray-coded
// variant as an optimization of this same toggle-and-guard structure.
func (e *Engine) graySwapCascade(selector LineRange, dim uint, body func(k uint64)) {
	width := len(selector)
	mask := uint64(1)<<uint(width) - 1
	prev := mask

	for k := uint64(0); k < uint64(dim); k++ {
		diff := k ^ prev
		for bit := 0; bit < width; bit++ {
			if diff&(1<<uint(bit)) != 0 {
				e.emitNot(selector[bit])
			}
		}

		e.pushAllControls(selector)

		body(k)

		e.popAllControls(selector)

		prev = k
	}

	// Restore the selector to its original value.
	diff := prev ^ mask
	for bit := 0; bit < width; bit++ {
		if diff&(1<<uint(bit)) != 0 {
			e.emitNot(selector[bit])
		}
	}
}

// pushAllControls and popAllControls push/pop one CCT control per selector
// line: at the point these are called, every selector line physically
// reads 1 exactly when the original selector equals the loop's current k
// (see graySwapCascade), so conjoining all of them is the correct guard.
func (e *Engine) pushAllControls(selector LineRange) {
	for _, l := range selector {
		e.cct.pushControl(l)
	}
}

func (e *Engine) popAllControls(selector LineRange) {
	for range selector {
		e.cct.popControl(0)
	}
}

// bitwiseFredkin swaps two equal-width line ranges pairwise using Fredkin
// gates under the currently active controls (used by the array-swap
// cascade to swap an element in/out of the destination block).
func (e *Engine) bitwiseFredkin(a, b LineRange) {
	n := min(len(a), len(b))
	for i := range n {
		e.emitFredkin(nil, a[i], b[i])
	}
}
