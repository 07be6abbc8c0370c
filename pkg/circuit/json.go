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
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/segmentio/encoding/json"
)

// wireGate is Gate's on-the-wire shape: bitset.BitSet doesn't round-trip
// through JSON on its own (its exported fields are an implementation
// detail), so controls are serialized as a sorted index list instead.
type wireGate struct {
	Kind       GateKind `json:"kind"`
	Controls   []uint   `json:"controls,omitempty"`
	Targets    []uint   `json:"targets"`
	ModuleName string   `json:"module,omitempty"`
	SourceLine uint     `json:"sourceLine,omitempty"`
}

type wireCircuit struct {
	Lines   []Line                  `json:"lines"`
	Gates   []wireGate              `json:"gates"`
	Modules map[string]*wireCircuit `json:"modules,omitempty"`
}

func toWire(c *Circuit) *wireCircuit {
	w := &wireCircuit{Lines: c.Lines, Gates: make([]wireGate, len(c.Gates))}

	for i, g := range c.Gates {
		w.Gates[i] = wireGate{
			Kind:       g.Kind,
			Targets:    g.Targets,
			ModuleName: g.ModuleName,
			SourceLine: g.SourceLine,
		}

		if g.Controls != nil {
			for idx, present := g.Controls.NextSet(0); present; idx, present = g.Controls.NextSet(idx + 1) {
				w.Gates[i].Controls = append(w.Gates[i].Controls, idx)
			}
		}
	}

	if len(c.Modules) > 0 {
		w.Modules = make(map[string]*wireCircuit, len(c.Modules))
		for name, sub := range c.Modules {
			w.Modules[name] = toWire(sub)
		}
	}

	return w
}

func fromWire(w *wireCircuit) *Circuit {
	c := &Circuit{Lines: w.Lines, Gates: make([]Gate, len(w.Gates)), Modules: make(map[string]*Circuit)}

	for i, wg := range w.Gates {
		g := Gate{Kind: wg.Kind, Targets: wg.Targets, ModuleName: wg.ModuleName, SourceLine: wg.SourceLine}

		if len(wg.Controls) > 0 {
			g.Controls = controlSet(wg.Controls)
		}

		c.Gates[i] = g
	}

	for name, sub := range w.Modules {
		c.Modules[name] = fromWire(sub)
	}

	return c
}

// MarshalJSON implements json.Marshaler, serializing via
// github.com/segmentio/encoding/json for its drop-in-compatible but faster
// encoding.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var w wireCircuit
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = *fromWire(&w)

	return nil
}

// WriteTo serializes c as JSON to w, for the CLI's `synth -o` output.
func WriteTo(w io.Writer, c *Circuit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(c)
}

// ReadFrom deserializes a Circuit previously written by WriteTo.
func ReadFrom(r io.Reader) (*Circuit, error) {
	var c Circuit
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}

	return &c, nil
}
