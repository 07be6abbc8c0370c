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
package ast

import "fmt"

// ErrDynamic is returned by Evaluate when an expression (or one of its
// sub-expressions) depends on a runtime variable access, and so cannot be
// folded to a constant at synthesis time. The variable access resolver
// (spec.md §4.2) uses this to decide between static index folding (step 3)
// and the dynamic array-swap cascade (step 4).
var ErrDynamic = fmt.Errorf("expression is not statically evaluable")

// Evaluate resolves expr to a constant value under the given loop-variable
// bindings (spec.md §6.1 "evaluate(loop_map)"). Only Numeric, Binary and
// Shift nodes over a purely-numeric/loop-variable subtree can be folded;
// any VariableRef encountered makes the whole expression dynamic.
func Evaluate(expr Expression, loopVars map[string]uint64) (uint64, error) {
	switch e := expr.(type) {
	case *Numeric:
		return e.Evaluate(loopVars)
	case *VariableRef:
		return 0, ErrDynamic
	case *Binary:
		lhs, err := Evaluate(e.Lhs, loopVars)
		if err != nil {
			return 0, err
		}

		rhs, err := Evaluate(e.Rhs, loopVars)
		if err != nil {
			return 0, err
		}

		return evaluateBinary(e.Op, lhs, rhs)
	case *Shift:
		lhs, err := Evaluate(e.Lhs, loopVars)
		if err != nil {
			return 0, err
		}

		amount, err := e.Amount.Evaluate(loopVars)
		if err != nil {
			return 0, err
		}

		if e.Op == ShiftLeft {
			return lhs << amount, nil
		}

		return lhs >> amount, nil
	default:
		return 0, fmt.Errorf("unrecognized expression variant %T", expr)
	}
}

func evaluateBinary(op BinaryOp, lhs, rhs uint64) (uint64, error) {
	switch op {
	case OpAdd:
		return lhs + rhs, nil
	case OpSubtract:
		return lhs - rhs, nil
	case OpExor:
		return lhs ^ rhs, nil
	case OpMultiply:
		return lhs * rhs, nil
	case OpDivide:
		if rhs == 0 {
			return 0, fmt.Errorf("division by zero in static expression")
		}

		return lhs / rhs, nil
	case OpModulo:
		if rhs == 0 {
			return 0, fmt.Errorf("modulo by zero in static expression")
		}

		return lhs % rhs, nil
	case OpBitwiseAnd:
		return lhs & rhs, nil
	case OpBitwiseOr:
		return lhs | rhs, nil
	case OpLogicalAnd:
		return boolToUint64(lhs != 0 && rhs != 0), nil
	case OpLogicalOr:
		return boolToUint64(lhs != 0 || rhs != 0), nil
	case OpLess:
		return boolToUint64(lhs < rhs), nil
	case OpGreater:
		return boolToUint64(lhs > rhs), nil
	case OpEquals:
		return boolToUint64(lhs == rhs), nil
	case OpNotEquals:
		return boolToUint64(lhs != rhs), nil
	case OpLessEquals:
		return boolToUint64(lhs <= rhs), nil
	case OpGreaterEquals:
		return boolToUint64(lhs >= rhs), nil
	default:
		return 0, fmt.Errorf("operator %s is not statically foldable", op)
	}
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
