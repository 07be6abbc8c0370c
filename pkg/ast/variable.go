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
package ast

// Kind classifies how a variable participates in its enclosing module's
// interface (spec.md §3 "Variable").
type Kind uint8

const (
	// KindIn is a non-constant, non-garbage module input.
	KindIn Kind = iota
	// KindOut is a module output; starts life as constant-zero.
	KindOut
	// KindInout behaves as both an input and an output.
	KindInout
	// KindWire is a module-local temporary; starts constant-zero and ends
	// as garbage.
	KindWire
	// KindState is a persistent (non-wire) local, e.g. used across loop
	// iterations.
	KindState
)

// String renders a Kind the way diagnostics and the CLI's inspect command
// expect to see it.
func (k Kind) String() string {
	switch k {
	case KindIn:
		return "in"
	case KindOut:
		return "out"
	case KindInout:
		return "inout"
	case KindWire:
		return "wire"
	case KindState:
		return "state"
	default:
		return "?"
	}
}

// Variable is a declared signal of an enclosing Module (spec.md §3).
// Instances occupy a contiguous range of circuit lines sized
// product(Dimensions) × Bitwidth.
type Variable struct {
	Kind Kind
	Name string
	// Dimensions is the ordered list of array sizes; empty for a scalar.
	Dimensions []uint
	// Bitwidth is the number of bits per scalar element.
	Bitwidth uint
}

// Size returns the total number of circuit lines this variable's instances
// occupy: product(Dimensions) × Bitwidth.
func (v *Variable) Size() uint {
	size := v.Bitwidth
	for _, d := range v.Dimensions {
		size *= d
	}

	return size
}

// IsConstantAtStart indicates whether this variable's lines are guaranteed
// constant-zero when its enclosing module becomes active: true for wires and
// outputs, false for inputs and inouts (spec.md §3 "Lifecycles").
func (v *Variable) IsConstantAtStart() bool {
	return v.Kind == KindOut || v.Kind == KindWire || v.Kind == KindState
}

// BitRange is an optional (first, last) bit selection on a variable access.
// When First > Last the selected line list is reversed (spec.md §3
// "Variable access").
type BitRange struct {
	First, Last uint
}

// VariableAccess is a reference to (a slice of) a Variable, with optional
// per-dimension indices and an optional bit range (spec.md §3).
type VariableAccess struct {
	Pos

	Variable *Variable
	// Indices are evaluated in row-major order against Variable.Dimensions.
	// An empty Indices slice means a whole-variable (or whole-element, for
	// scalars) access.
	Indices []Expression
	// Range is the optional bit sub-selection. Nil means "whole bitwidth".
	Range *BitRange
}
