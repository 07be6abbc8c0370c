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
package synth

// incrementMerged implements the additional-line-merging increment variant
// (spec.md §6.3 "crement_merge_line_count"): instead of the plain cascade's
// widest Toffoli spanning every lower bit, one helper line accumulates the
// AND of each completed group of Config.CrementMergeLineCount lower bits,
// so each cascade gate carries at most the group size plus one controls.
// The Toffolis that compute and clear the helper still take every lower
// bit below the current group as controls.
func (e *Engine) incrementMerged(dst LineRange) {
	group := e.cfg.CrementMergeLineCount
	n := uint(len(dst))

	if n == 0 {
		return
	}

	helper := e.allocConst(false)

	offset := (n - 1) - ((n - 1) % group)

	helperControls := append([]uint{}, dst[:offset]...)
	e.emitToffoli(helperControls, helper)

	controls := append([]uint{}, dst[offset:]...)
	controls = append(controls, helper)

	for i := int(n) - 1; i >= 0; i-- {
		controls = removeLine(controls, dst[i])

		e.emitToffoli(controls, dst[i])

		if uint(i)%group == 0 && i > 0 {
			// Empty the helper line and prepare the next group's merge.
			e.emitToffoli(helperControls, helper)

			for j := i - int(group); j < i; j++ {
				helperControls = removeLine(helperControls, dst[j])
				controls = append(controls, dst[j])
			}

			if uint(i) > group {
				e.emitToffoli(helperControls, helper)
			} else {
				controls = removeLine(controls, helper)
			}
		}
	}

	e.releaseConst(helper, false)
}

func removeLine(lines []uint, line uint) []uint {
	out := lines[:0]

	for _, l := range lines {
		if l != line {
			out = append(out, l)
		}
	}

	return out
}
