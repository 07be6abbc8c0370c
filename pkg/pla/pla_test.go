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
package pla

import (
	"strings"
	"testing"
)

// and.pla: a single product term, both inputs asserted.
const andPLA = `.i 2
.o 1
.p 1
11 1
.e
`

// or.pla: the minimized two-product-term cover of 2-input OR.
const orPLA = `.i 2
.o 1
.p 2
-1 1
1- 1
.e
`

func TestParseAnd(t *testing.T) {
	tbl, err := Parse(strings.NewReader(andPLA))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got, want := tbl.Inputs, 2; got != want {
		t.Errorf("inputs: got %d, want %d", got, want)
	}

	if got, want := tbl.Outputs, 1; got != want {
		t.Errorf("outputs: got %d, want %d", got, want)
	}

	if got, want := len(tbl.Rows), 1; got != want {
		t.Fatalf("rows: got %d, want %d", got, want)
	}

	row, ok := tbl.Find([]Value{One, One})
	if !ok {
		t.Fatal("row \"11\" not found")
	}

	if got, want := row.Out, ([]Value{One}); !valuesEqual(got, want) {
		t.Errorf("output: got %v, want %v", got, want)
	}
}

func TestParseOr(t *testing.T) {
	tbl, err := Parse(strings.NewReader(orPLA))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got, want := tbl.Inputs, 2; got != want {
		t.Errorf("inputs: got %d, want %d", got, want)
	}

	if got, want := len(tbl.Rows), 2; got != want {
		t.Fatalf("rows: got %d, want %d", got, want)
	}

	dash1, ok := tbl.Find([]Value{DontCare, One})
	if !ok {
		t.Fatal("row \"-1\" not found")
	}

	if !valuesEqual(dash1.Out, []Value{One}) {
		t.Errorf("\"-1\" output: got %v, want [1]", dash1.Out)
	}

	oneDash, ok := tbl.Find([]Value{One, DontCare})
	if !ok {
		t.Fatal("row \"1-\" not found")
	}

	if !valuesEqual(oneDash.Out, []Value{One}) {
		t.Errorf("\"1-\" output: got %v, want [1]", oneDash.Out)
	}
}

func TestParseRejectsMalformedRow(t *testing.T) {
	_, err := Parse(strings.NewReader(".i 1\n.o 1\n1\n"))
	if err == nil {
		t.Fatal("expected an error for a row missing its output pattern")
	}
}

func TestParseRejectsBadCubeCharacter(t *testing.T) {
	_, err := Parse(strings.NewReader(".i 1\n.o 1\nx 1\n"))
	if err == nil {
		t.Fatal("expected an error for an unrecognized cube character")
	}
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	tbl, err := Parse(strings.NewReader("# a comment\n\n.i 1\n.o 1\n\n1 1\n.e\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got, want := len(tbl.Rows), 1; got != want {
		t.Fatalf("rows: got %d, want %d", got, want)
	}
}
