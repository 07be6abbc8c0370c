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

import "testing"

// buildAnd2 constructs a 1-bit analogue of the bitwise_and_2.src circuit of
// spec.md §8 scenario 1 by hand: two 1-bit inputs a, b; one 1-bit output c
// (starts constant-0);
// c = a & b via a single Toffoli, realized as the synthesizer would emit it
// for a 2-input conjunction (one Toffoli gate, no ancillaries needed since c
// already starts at 0).
func buildAnd2(t *testing.T) *Circuit {
	t.Helper()

	b := NewBuilder()
	a := b.AddLine(Line{NameIn: "a", IsInput: true})
	bb := b.AddLine(Line{NameIn: "b", IsInput: true})
	c := b.AddLine(Line{NameIn: "c", IsConstant: true, IsOutput: true})

	b.InputBus("a", []uint{a})
	b.InputBus("b", []uint{bb})
	b.OutputBus("c", []uint{c})

	b.AppendToffoli([]uint{a, bb}, c)

	return b.Circuit()
}

func TestBuilderAppendToffoliDegenerates(t *testing.T) {
	b := NewBuilder()
	x := b.AddLine(Line{})
	y := b.AddLine(Line{})

	b.AppendToffoli(nil, x)
	b.AppendToffoli([]uint{y}, x)
	b.AppendToffoli([]uint{x, y}, x)

	if got, want := b.Circuit().Gates[0].Kind, GateNot; got != want {
		t.Errorf("zero controls: got kind %v, want %v", got, want)
	}

	if got, want := b.Circuit().Gates[1].Kind, GateCNOT; got != want {
		t.Errorf("one control: got kind %v, want %v", got, want)
	}

	if got, want := b.Circuit().Gates[2].Kind, GateToffoli; got != want {
		t.Errorf("two controls: got kind %v, want %v", got, want)
	}
}

func TestAnd2QuantumCost(t *testing.T) {
	c := buildAnd2(t)

	if got, want := c.NumLines(), uint(3); got != want {
		t.Errorf("lines: got %d, want %d", got, want)
	}

	if got, want := c.NumGates(), uint(1); got != want {
		t.Errorf("gates: got %d, want %d", got, want)
	}

	// one Toffoli gate with 2 controls: quantum cost 2^2-1 = 3.
	if got, want := c.QuantumCost(), uint(3); got != want {
		t.Errorf("quantum cost: got %d, want %d", got, want)
	}
}

func TestGateHistogram(t *testing.T) {
	c := buildAnd2(t)
	hist := c.GateHistogram()

	if got, want := hist[GateToffoli], uint(1); got != want {
		t.Errorf("toffoli count: got %d, want %d", got, want)
	}
}

func TestOnGateAddedHook(t *testing.T) {
	b := NewBuilder()
	x := b.AddLine(Line{})

	var seen []Gate
	b.OnGateAdded(func(g Gate) { seen = append(seen, g) })

	b.SetSourceLine(42)
	b.AppendNot(x)
	b.AppendNot(x)

	if len(seen) != 2 {
		t.Fatalf("hook fired %d times, want 2", len(seen))
	}

	if seen[0].SourceLine != 42 {
		t.Errorf("first gate source line: got %d, want 42", seen[0].SourceLine)
	}

	if seen[1].SourceLine != 0 {
		t.Errorf("second gate source line: got %d, want 0 (cursor should reset)", seen[1].SourceLine)
	}
}
