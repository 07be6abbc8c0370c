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
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Simulate executes c's gate list in order against lines, a per-line boolean
// value vector, and returns the resulting vector. lines must have exactly
// c.NumLines() entries; Simulate does not consult Line.IsConstant — callers
// seed constant lines themselves (e.g. from Line.ConstantValue) before
// calling, so the same vector can represent either a fresh run or a
// continuation of a larger circuit. Not part of spec.md, which specifies
// synthesis only; added so the testable properties of spec.md §8 (round-trip
// and invariant checks) have something to execute against.
func Simulate(c *Circuit, lines []bool) ([]bool, error) {
	if uint(len(lines)) != c.NumLines() {
		return nil, fmt.Errorf("circuit: expected %d lines, got %d", c.NumLines(), len(lines))
	}

	out := make([]bool, len(lines))
	copy(out, lines)

	for gi, g := range c.Gates {
		if err := applyGate(c, g, out); err != nil {
			return nil, fmt.Errorf("circuit: gate %d: %w", gi, err)
		}
	}

	return out, nil
}

func applyGate(c *Circuit, g Gate, lines []bool) error {
	switch g.Kind {
	case GateNot, GateCNOT, GateToffoli:
		if len(g.Targets) != 1 {
			return fmt.Errorf("%s gate must have exactly one target, got %d", g.Kind, len(g.Targets))
		}

		if controlsSatisfied(g.Controls, lines) {
			lines[g.Targets[0]] = !lines[g.Targets[0]]
		}

		return nil
	case GateFredkin:
		if len(g.Targets) != 2 {
			return fmt.Errorf("fredkin gate must have exactly two targets, got %d", len(g.Targets))
		}

		if controlsSatisfied(g.Controls, lines) {
			a, b := g.Targets[0], g.Targets[1]
			lines[a], lines[b] = lines[b], lines[a]
		}

		return nil
	case GateModule:
		sub, ok := c.Modules[g.ModuleName]
		if !ok {
			return fmt.Errorf("undefined module %q", g.ModuleName)
		}

		if !controlsSatisfied(g.Controls, lines) {
			return nil
		}

		return applyModule(sub, g.Targets, lines)
	default:
		return fmt.Errorf("unrecognized gate kind %d", g.Kind)
	}
}

// applyModule simulates sub in place over the caller's line vector, with
// sub's own line i addressing lines[targets[i]] for i < len(targets); any
// of sub's lines beyond len(targets) are sub-local ancillaries simulated
// starting from their declared constant value.
func applyModule(sub *Circuit, targets []uint, lines []bool) error {
	sublines := make([]bool, sub.NumLines())

	for i := range sublines {
		switch {
		case i < len(targets):
			sublines[i] = lines[targets[i]]
		case sub.Lines[i].IsConstant:
			sublines[i] = sub.Lines[i].ConstantValue
		}
	}

	result, err := Simulate(sub, sublines)
	if err != nil {
		return fmt.Errorf("module: %w", err)
	}

	for i := 0; i < len(targets) && i < len(result); i++ {
		lines[targets[i]] = result[i]
	}

	return nil
}

func controlsSatisfied(controls *bitset.BitSet, lines []bool) bool {
	if controls == nil {
		return true
	}

	for i, present := controls.NextSet(0); present; i, present = controls.NextSet(i + 1) {
		if !lines[i] {
			return false
		}
	}

	return true
}
