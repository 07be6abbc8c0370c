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
	"strconv"

	"github.com/reversible-synth/go-syrec/pkg/util/termio"
	"github.com/spf13/cobra"
)

// inspectCmd lists every declared line of a synthesized circuit with its
// role annotations (spec.md §3), grounded in go-corset's inspect command's
// table-per-row listing style.
var inspectCmd = &cobra.Command{
	Use:   "inspect circuit.json",
	Short: "List a circuit's declared lines and their role annotations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := readCircuit(args[0])

		table := termio.NewFormattedTable(6, c.NumLines()+1)
		table.SetRow(0,
			termio.NewText("#"), termio.NewText("name_in"), termio.NewText("name_out"),
			termio.NewText("input"), termio.NewText("const"), termio.NewText("garbage"))

		for i := uint(0); i < c.NumLines(); i++ {
			l := c.Line(i)

			constCol := "-"
			if l.IsConstant {
				constCol = boolStr(l.ConstantValue)
			}

			table.SetRow(i+1,
				termio.NewText(strconv.FormatUint(uint64(i), 10)),
				termio.NewText(l.NameIn),
				termio.NewText(l.NameOut),
				termio.NewText(boolStr(l.IsInput)),
				termio.NewText(constCol),
				termio.NewText(boolStr(l.IsGarbage)))
		}

		table.Print(!GetFlag(cmd, "no-color"))
	},
}

func boolStr(b bool) string {
	return strconv.FormatBool(b)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("no-color", false, "disable ANSI escapes in table output")
}
