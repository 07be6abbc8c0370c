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

func TestSimulateAnd2(t *testing.T) {
	c := buildAnd2(t)

	for _, tc := range []struct {
		a, b, wantC bool
	}{
		{false, false, false},
		{false, true, false},
		{true, false, false},
		{true, true, true},
	} {
		out, err := Simulate(c, []bool{tc.a, tc.b, false})
		if err != nil {
			t.Fatalf("a=%v b=%v: %v", tc.a, tc.b, err)
		}

		if out[2] != tc.wantC {
			t.Errorf("a=%v b=%v: c = %v, want %v", tc.a, tc.b, out[2], tc.wantC)
		}

		// inputs must be unchanged: reversible gates never destroy their
		// control lines.
		if out[0] != tc.a || out[1] != tc.b {
			t.Errorf("a=%v b=%v: inputs mutated to %v,%v", tc.a, tc.b, out[0], out[1])
		}
	}
}

func TestSimulateWrongLineCount(t *testing.T) {
	c := buildAnd2(t)

	if _, err := Simulate(c, []bool{true, false}); err == nil {
		t.Error("expected an error for a mismatched line count")
	}
}

func TestSimulateFredkinSwapsUnderControl(t *testing.T) {
	b := NewBuilder()
	ctrl := b.AddLine(Line{})
	x := b.AddLine(Line{})
	y := b.AddLine(Line{})

	b.AppendFredkin([]uint{ctrl}, x, y)

	out, err := Simulate(b.Circuit(), []bool{true, true, false})
	if err != nil {
		t.Fatal(err)
	}

	if out[1] != false || out[2] != true {
		t.Errorf("swap under active control: got x=%v y=%v, want x=false y=true", out[1], out[2])
	}

	out, err = Simulate(b.Circuit(), []bool{false, true, false})
	if err != nil {
		t.Fatal(err)
	}

	if out[1] != true || out[2] != false {
		t.Errorf("no swap when control inactive: got x=%v y=%v, want x=true y=false", out[1], out[2])
	}
}

func TestSimulateSelfInverse(t *testing.T) {
	// Running the same NOT-based circuit twice must return to the start:
	// every gate spec.md defines is its own inverse under repetition (NOT,
	// CNOT, Toffoli and Fredkin all square to the identity).
	c := buildAnd2(t)

	start := []bool{true, true, false}

	mid, err := Simulate(c, start)
	if err != nil {
		t.Fatal(err)
	}

	end, err := Simulate(c, mid)
	if err != nil {
		t.Fatal(err)
	}

	for i := range start {
		if end[i] != start[i] {
			t.Errorf("line %d: got %v after two passes, want %v", i, end[i], start[i])
		}
	}
}
