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

// Package pla reads the classic Espresso PLA truth-table format: a small
// number of ".i"/".o"/".p"/".e" header directives followed by cube rows, each
// row pairing an input pattern over {0, 1, -} with an output pattern over the
// same alphabet. Not part of spec.md's synthesis engine (spec.md §1 places
// the RHDL parser, and by the same reasoning any external truth-table
// collaborator, out of scope) — this package exists so spec.md §8 scenarios
// 2-3 ("and.pla"/"or.pla") have something concrete to read.
package pla

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Value is one cell of a cube: a fixed 0/1 literal, or a don't-care.
type Value uint8

const (
	Zero Value = iota
	One
	DontCare
)

// String renders v the way Espresso's own textual format does.
func (v Value) String() string {
	switch v {
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "-"
	}
}

// Cube is one data row: an input pattern and its associated output pattern,
// each one Value per declared input/output column.
type Cube struct {
	In  []Value
	Out []Value
}

// TruthTable is the parsed contents of a .pla file (SPEC_FULL.md §11.4):
// the declared input/output column counts, plus every data row encountered
// in file order. Rows are kept verbatim — a .pla file conventionally lists
// only its on-set cubes (see and.pla/or.pla), but this package does not
// itself filter or minimize rows; it is a reader, not an Espresso
// minimizer.
type TruthTable struct {
	Inputs, Outputs int
	Rows            []Cube
}

// Find returns the row whose input pattern is in, and whether it was found.
// Matching is literal: a "-" in the stored cube only matches a "-" in in,
// mirroring the original's cube-lookup semantics (spec.md's scenarios look
// up exactly the rows a .pla file declares, not a don't-care expansion).
func (t *TruthTable) Find(in []Value) (Cube, bool) {
	for _, row := range t.Rows {
		if valuesEqual(row.In, in) {
			return row, true
		}
	}

	return Cube{}, false
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// ParseFile opens and parses path as a .pla file.
func ParseFile(path string) (*TruthTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pla: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a .pla file's contents from r.
func Parse(r io.Reader) (*TruthTable, error) {
	t := &TruthTable{}

	scanner := bufio.NewScanner(r)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if err := t.parseDirective(line); err != nil {
				return nil, fmt.Errorf("pla: line %d: %w", lineNo, err)
			}

			if line == ".e" || strings.HasPrefix(line, ".end") {
				break
			}

			continue
		}

		row, err := t.parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("pla: line %d: %w", lineNo, err)
		}

		t.Rows = append(t.Rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pla: %w", err)
	}

	return t, nil
}

func (t *TruthTable) parseDirective(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case ".i":
		n, err := directiveInt(fields)
		if err != nil {
			return err
		}

		t.Inputs = n
	case ".o":
		n, err := directiveInt(fields)
		if err != nil {
			return err
		}

		t.Outputs = n
	case ".p", ".ilb", ".ob", ".type", ".e", ".end":
		// Product-term count and label directives carry no information
		// this reader needs; ".e"/".end" terminate the file (handled by
		// the caller).
	default:
		// Unrecognized directives (e.g. ".name") are ignored rather than
		// rejected, matching spec.md §7's "never aborts on an unknown
		// attribute" posture carried over from the synthesis engine.
	}

	return nil
}

func directiveInt(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected %q N, got %q", fields[0], strings.Join(fields, " "))
	}

	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("expected an integer after %q: %w", fields[0], err)
	}

	return n, nil
}

func (t *TruthTable) parseRow(line string) (Cube, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Cube{}, fmt.Errorf("expected \"<input> <output>\", got %q", line)
	}

	in, err := parsePattern(fields[0])
	if err != nil {
		return Cube{}, fmt.Errorf("input pattern: %w", err)
	}

	out, err := parsePattern(fields[1])
	if err != nil {
		return Cube{}, fmt.Errorf("output pattern: %w", err)
	}

	return Cube{In: in, Out: out}, nil
}

func parsePattern(s string) ([]Value, error) {
	out := make([]Value, len(s))

	for i, c := range s {
		switch c {
		case '0':
			out[i] = Zero
		case '1':
			out[i] = One
		case '-', '~':
			out[i] = DontCare
		default:
			return nil, fmt.Errorf("unrecognized cube character %q", c)
		}
	}

	return out, nil
}
