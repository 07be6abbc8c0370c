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

import (
	"bytes"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	c := buildAnd2(t)

	var buf bytes.Buffer
	if err := WriteTo(&buf, c); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if got.NumLines() != c.NumLines() || got.NumGates() != c.NumGates() {
		t.Fatalf("round trip: got lines=%d gates=%d, want lines=%d gates=%d",
			got.NumLines(), got.NumGates(), c.NumLines(), c.NumGates())
	}

	if got.QuantumCost() != c.QuantumCost() {
		t.Errorf("round trip: quantum cost %d, want %d", got.QuantumCost(), c.QuantumCost())
	}

	gate := got.Gates[0]
	if gate.Kind != GateToffoli {
		t.Errorf("round trip: gate kind %v, want %v", gate.Kind, GateToffoli)
	}

	if gate.Controls == nil || gate.Controls.Count() != 2 {
		t.Errorf("round trip: controls not preserved, got %v", gate.Controls)
	}
}
