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
package synth

import (
	"fmt"

	"github.com/reversible-synth/go-syrec/pkg/ast"
)

// Error is a rich synthesis failure: an ast.Node (when available), carrying
// the reason a lowering step failed. Internal lowering reports failure
// through Go errors (onExpression returns one) and through Engine.fail,
// which records an Error and lets synthesis continue; this mirrors the way
// go-corset's pkg/corset/compiler accumulates SyntaxError values, so callers
// get more than "synthesis failed" back.
type Error struct {
	Node    ast.Node
	Message string
}

func (e *Error) Error() string {
	if e.Node != nil && e.Node.Line() != 0 {
		return fmt.Sprintf("line %d: %s", e.Node.Line(), e.Message)
	}

	return e.Message
}

func errorf(node ast.Node, format string, args ...any) *Error {
	return &Error{Node: node, Message: fmt.Sprintf(format, args...)}
}
