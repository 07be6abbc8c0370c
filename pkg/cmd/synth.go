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

	"github.com/reversible-synth/go-syrec/pkg/ast"
	"github.com/reversible-synth/go-syrec/pkg/circuit"
	"github.com/reversible-synth/go-syrec/pkg/synth"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// synthCmd translates a serialized RHDL AST (pkg/ast's tagged-union JSON
// wire format) into a gate-level circuit (spec.md §2-§4) and writes the
// result in pkg/circuit's own JSON wire format.
var synthCmd = &cobra.Command{
	Use:   "synth source.ast.json",
	Short: "Synthesize a gate-level circuit from an RHDL AST",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		var prog ast.Circuit
		if err := prog.UnmarshalJSON(data); err != nil {
			fmt.Printf("parse %s: %v\n", args[0], err)
			os.Exit(1)
		}

		cfg := buildConfig(cmd)

		out, errs := synth.Synthesize(&prog, cfg)
		if len(errs) != 0 {
			for _, e := range errs {
				fmt.Println(e)
			}

			os.Exit(1)
		}

		output := GetString(cmd, "output")

		f, err := os.Create(output)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer f.Close()

		if err := circuit.WriteTo(f, out); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			fmt.Printf("wrote %s: %d lines, %d gates, quantum cost %d\n",
				output, out.NumLines(), out.NumGates(), out.QuantumCost())
		}
	},
}

// buildConfig maps synth's cobra flags onto a synth.Config, matching
// spec.md §6.3's named keys, which are set only through their own flags;
// every pair passed via repeated -D flags lands in Config.Unrecognized
// rather than failing the command (§6.3: "any unrecognized keys are
// ignored").
func buildConfig(cmd *cobra.Command) synth.Config {
	cfg := synth.DefaultConfig()
	cfg.Verbose = GetFlag(cmd, "verbose")
	cfg.EfficientControls = GetFlag(cmd, "efficient-controls")
	cfg.ModulesHierarchy = GetFlag(cmd, "modules-hierarchy")
	cfg.AutoIfRealization = GetFlag(cmd, "auto-if-realization")
	cfg.CrementMergeLineCount = GetUint(cmd, "crement-merge-line-count")

	if m := GetString(cmd, "main-module"); m != "" {
		cfg.MainModule = m
	}

	switch r := GetString(cmd, "if-realization"); r {
	case "", "controlled":
		cfg.IfRealization = synth.IfControlled
	case "duplication":
		cfg.IfRealization = synth.IfDuplication
	default:
		logrus.WithField("if-realization", r).Warn("unrecognized if-realization value, using controlled")
	}

	cfg.Unrecognized = ParseDefines(GetStringArray(cmd, "set"))

	return cfg
}

func init() {
	rootCmd.AddCommand(synthCmd)
	synthCmd.Flags().StringP("output", "o", "a.circuit.json", "output circuit path")
	synthCmd.Flags().Bool("efficient-controls", false, "enable CCT control hoisting")
	synthCmd.Flags().Bool("modules-hierarchy", false, "emit called modules as reusable sub-circuits")
	synthCmd.Flags().Bool("auto-if-realization", false, "pick if-realization per statement by cost comparison")
	synthCmd.Flags().Uint("crement-merge-line-count", 0, "bit-grouping threshold for merging increment/decrement")
	synthCmd.Flags().String("main-module", "", "name of the entry module (default \"main\", else the first module)")
	synthCmd.Flags().String("if-realization", "controlled", "\"controlled\" or \"duplication\"")
	synthCmd.Flags().StringArrayP("set", "D", []string{}, "set an engine configuration key=value")
}
