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
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/reversible-synth/go-syrec/pkg/circuit"
	"github.com/reversible-synth/go-syrec/pkg/util/termio"
	"github.com/spf13/cobra"
)

// statsCmd prints the per-gate-kind histogram of a synthesized circuit,
// grounded in go-corset's inspect command's use of termio.FormattedTable
// for columnar terminal output.
var statsCmd = &cobra.Command{
	Use:   "stats circuit.json",
	Short: "Print gate-kind histogram and cost summary for a circuit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := readCircuit(args[0])

		hist := c.GateHistogram()

		kinds := make([]circuit.GateKind, 0, len(hist))
		for k := range hist {
			kinds = append(kinds, k)
		}

		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		table := termio.NewFormattedTable(2, uint(len(kinds))+1)
		table.SetRow(0, termio.NewText("gate"), termio.NewText("count"))

		for i, k := range kinds {
			table.SetRow(uint(i+1), termio.NewText(k.String()), termio.NewText(strconv.FormatUint(uint64(hist[k]), 10)))
		}

		table.Print(!GetFlag(cmd, "no-color"))

		fmt.Printf("lines: %d, gates: %d, quantum cost: %d, transistor cost: %d\n",
			c.NumLines(), c.NumGates(), c.QuantumCost(), c.TransistorCost())
	},
}

func readCircuit(path string) *circuit.Circuit {
	f, err := os.Open(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()

	c, err := circuit.ReadFrom(f)
	if err != nil {
		fmt.Printf("parse %s: %v\n", path, err)
		os.Exit(1)
	}

	return c
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("no-color", false, "disable ANSI escapes in table output")
}
