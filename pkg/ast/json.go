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

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// This file gives the input-contract AST (spec.md §3) a JSON wire format, so
// the `go-syrec synth` CLI command has a concrete serialized ast.Circuit to
// read (the RHDL parser itself is out of scope — spec.md §1 — so this is
// the substitute front door). Statement and Expression are closed interface
// variant sets (see expression.go's doc comment), so each is given a tagged
// "kind" field on the wire rather than relying on encoding/json's limited
// interface support; VariableAccess.Variable is resolved to one of its
// enclosing module's own Parameters/Locals by name during decode, mirroring
// the pointer-identity binding pkg/synth's scope map relies on.

// wireVariable is Variable's on-the-wire shape.
type wireVariable struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Dimensions []uint `json:"dimensions,omitempty"`
	Bitwidth   uint   `json:"bitwidth"`
}

func kindToWire(k Kind) string { return k.String() }

func kindFromWire(s string) (Kind, error) {
	switch s {
	case "in":
		return KindIn, nil
	case "out":
		return KindOut, nil
	case "inout":
		return KindInout, nil
	case "wire":
		return KindWire, nil
	case "state":
		return KindState, nil
	default:
		return 0, fmt.Errorf("unrecognized variable kind %q", s)
	}
}

func (v *Variable) toWire() wireVariable {
	return wireVariable{Kind: kindToWire(v.Kind), Name: v.Name, Dimensions: v.Dimensions, Bitwidth: v.Bitwidth}
}

func (w wireVariable) toVariable() (*Variable, error) {
	k, err := kindFromWire(w.Kind)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", w.Name, err)
	}

	return &Variable{Kind: k, Name: w.Name, Dimensions: w.Dimensions, Bitwidth: w.Bitwidth}, nil
}

// varScope resolves a VariableAccess's variable name to the *Variable the
// enclosing module declared it as, the same lookup Module.Variable performs
// at synthesis time.
type varScope map[string]*Variable

// wireBitRange mirrors BitRange directly; both fields always present.
type wireBitRange struct {
	First uint `json:"first"`
	Last  uint `json:"last"`
}

type wireAccess struct {
	Variable string        `json:"variable"`
	Indices  []wireExpr    `json:"indices,omitempty"`
	Range    *wireBitRange `json:"range,omitempty"`
	Line     uint          `json:"line,omitempty"`
}

func (a *VariableAccess) toWire() wireAccess {
	w := wireAccess{Variable: a.Variable.Name, Line: a.SourceLine}
	for _, idx := range a.Indices {
		w.Indices = append(w.Indices, exprToWire(idx))
	}

	if a.Range != nil {
		w.Range = &wireBitRange{First: a.Range.First, Last: a.Range.Last}
	}

	return w
}

func (w wireAccess) toAccess(scope varScope) (*VariableAccess, error) {
	v, ok := scope[w.Variable]
	if !ok {
		return nil, fmt.Errorf("undeclared variable %q", w.Variable)
	}

	a := &VariableAccess{Pos: Pos{SourceLine: w.Line}, Variable: v}

	for _, wi := range w.Indices {
		idx, err := wi.toExpr(scope)
		if err != nil {
			return nil, err
		}

		a.Indices = append(a.Indices, idx)
	}

	if w.Range != nil {
		a.Range = &BitRange{First: w.Range.First, Last: w.Range.Last}
	}

	return a, nil
}

// wireExpr is the tagged union of every Expression variant.
type wireExpr struct {
	Kind string `json:"kind"`

	// numeric
	LoopVariable string `json:"loopVariable,omitempty"`
	Value        uint64 `json:"value,omitempty"`

	// variableRef
	Access *wireAccess `json:"access,omitempty"`

	// binary
	Op  string    `json:"op,omitempty"`
	Lhs *wireExpr `json:"lhs,omitempty"`
	Rhs *wireExpr `json:"rhs,omitempty"`

	// shift (reuses Lhs above for its operand)
	Amount *wireExpr `json:"amount,omitempty"`

	Width uint `json:"width"`
	Line  uint `json:"line,omitempty"`
}

func binaryOpToWire(op BinaryOp) (string, error) {
	names := [...]string{
		"add", "subtract", "exor", "multiply", "divide", "modulo", "fracdivide",
		"logicaland", "logicalor", "bitwiseand", "bitwiseor",
		"less", "greater", "equals", "notequals", "lessequals", "greaterequals",
	}
	if int(op) >= len(names) {
		return "", fmt.Errorf("unrecognized binary operator %d", op)
	}

	return names[op], nil
}

func binaryOpFromWire(s string) (BinaryOp, error) {
	names := map[string]BinaryOp{
		"add": OpAdd, "subtract": OpSubtract, "exor": OpExor, "multiply": OpMultiply,
		"divide": OpDivide, "modulo": OpModulo, "fracdivide": OpFracDivide,
		"logicaland": OpLogicalAnd, "logicalor": OpLogicalOr,
		"bitwiseand": OpBitwiseAnd, "bitwiseor": OpBitwiseOr,
		"less": OpLess, "greater": OpGreater, "equals": OpEquals, "notequals": OpNotEquals,
		"lessequals": OpLessEquals, "greaterequals": OpGreaterEquals,
	}

	op, ok := names[s]
	if !ok {
		return 0, fmt.Errorf("unrecognized binary operator %q", s)
	}

	return op, nil
}

func exprToWire(e Expression) wireExpr {
	switch n := e.(type) {
	case *Numeric:
		return wireExpr{Kind: "numeric", LoopVariable: n.LoopVariable, Value: n.Value, Width: n.Width, Line: n.SourceLine}
	case *VariableRef:
		a := n.Access.toWire()
		return wireExpr{Kind: "variableRef", Access: &a, Width: n.Width, Line: n.SourceLine}
	case *Binary:
		lhs, rhs := exprToWire(n.Lhs), exprToWire(n.Rhs)

		op, _ := binaryOpToWire(n.Op)

		return wireExpr{Kind: "binary", Op: op, Lhs: &lhs, Rhs: &rhs, Width: n.Width, Line: n.SourceLine}
	case *Shift:
		lhs := exprToWire(n.Lhs)
		amount := exprToWire(n.Amount)
		op := "left"

		if n.Op == ShiftRight {
			op = "right"
		}

		return wireExpr{Kind: "shift", Op: op, Lhs: &lhs, Amount: &amount, Width: n.Width, Line: n.SourceLine}
	default:
		return wireExpr{}
	}
}

func (w wireExpr) toExpr(scope varScope) (Expression, error) {
	pos := Pos{SourceLine: w.Line}

	switch w.Kind {
	case "numeric":
		return &Numeric{Pos: pos, LoopVariable: w.LoopVariable, Value: w.Value, Width: w.Width}, nil
	case "variableRef":
		if w.Access == nil {
			return nil, fmt.Errorf("variableRef expression missing \"access\"")
		}

		access, err := w.Access.toAccess(scope)
		if err != nil {
			return nil, err
		}

		return &VariableRef{Pos: pos, Access: access, Width: w.Width}, nil
	case "binary":
		if w.Lhs == nil || w.Rhs == nil {
			return nil, fmt.Errorf("binary expression missing an operand")
		}

		op, err := binaryOpFromWire(w.Op)
		if err != nil {
			return nil, err
		}

		lhs, err := w.Lhs.toExpr(scope)
		if err != nil {
			return nil, err
		}

		rhs, err := w.Rhs.toExpr(scope)
		if err != nil {
			return nil, err
		}

		return &Binary{Pos: pos, Op: op, Lhs: lhs, Rhs: rhs, Width: w.Width}, nil
	case "shift":
		if w.Lhs == nil || w.Amount == nil {
			return nil, fmt.Errorf("shift expression missing an operand")
		}

		lhs, err := w.Lhs.toExpr(scope)
		if err != nil {
			return nil, err
		}

		amount, err := w.Amount.toExpr(scope)
		if err != nil {
			return nil, err
		}

		amountNumeric, ok := amount.(*Numeric)
		if !ok {
			return nil, fmt.Errorf("shift amount must be a numeric expression")
		}

		shiftOp := ShiftLeft
		if w.Op == "right" {
			shiftOp = ShiftRight
		}

		return &Shift{Pos: pos, Op: shiftOp, Lhs: lhs, Amount: amountNumeric, Width: w.Width}, nil
	default:
		return nil, fmt.Errorf("unrecognized expression kind %q", w.Kind)
	}
}

// wireStatement is the tagged union of every Statement variant.
type wireStatement struct {
	Kind string `json:"kind"`

	// swap / unary
	Lhs *wireAccess `json:"lhs,omitempty"`
	Rhs *wireAccess `json:"rhs,omitempty"`
	Var *wireAccess `json:"var,omitempty"`

	// unary
	UnaryOp string `json:"unaryOp,omitempty"`

	// assign
	AssignOp string    `json:"assignOp,omitempty"`
	Expr     *wireExpr `json:"expr,omitempty"`

	// if
	Cond *wireExpr       `json:"cond,omitempty"`
	Then []wireStatement `json:"then,omitempty"`
	Else []wireStatement `json:"else,omitempty"`

	// for
	From         *wireExpr       `json:"from,omitempty"`
	To           *wireExpr       `json:"to,omitempty"`
	Step         *wireExpr       `json:"step,omitempty"`
	LoopVariable string          `json:"loopVariable,omitempty"`
	Body         []wireStatement `json:"body,omitempty"`

	// call / uncall
	Target  string   `json:"target,omitempty"`
	Actuals []string `json:"actuals,omitempty"`

	Line uint `json:"line,omitempty"`
}

func unaryOpToWire(op UnaryOp) string {
	switch op {
	case UnaryIncrement:
		return "increment"
	case UnaryDecrement:
		return "decrement"
	default:
		return "invert"
	}
}

func unaryOpFromWire(s string) (UnaryOp, error) {
	switch s {
	case "invert":
		return UnaryInvert, nil
	case "increment":
		return UnaryIncrement, nil
	case "decrement":
		return UnaryDecrement, nil
	default:
		return 0, fmt.Errorf("unrecognized unary operator %q", s)
	}
}

func assignOpToWire(op AssignOp) string {
	switch op {
	case AssignAdd:
		return "add"
	case AssignSubtract:
		return "subtract"
	default:
		return "exor"
	}
}

func assignOpFromWire(s string) (AssignOp, error) {
	switch s {
	case "add":
		return AssignAdd, nil
	case "subtract":
		return AssignSubtract, nil
	case "exor":
		return AssignExor, nil
	default:
		return 0, fmt.Errorf("unrecognized assign operator %q", s)
	}
}

func stmtToWire(s Statement) wireStatement {
	switch n := s.(type) {
	case *Swap:
		lhs, rhs := n.Lhs.toWire(), n.Rhs.toWire()
		return wireStatement{Kind: "swap", Lhs: &lhs, Rhs: &rhs, Line: n.SourceLine}
	case *Unary:
		v := n.Var.toWire()
		return wireStatement{Kind: "unary", Var: &v, UnaryOp: unaryOpToWire(n.Op), Line: n.SourceLine}
	case *Assign:
		lhs := n.Lhs.toWire()
		rhs := exprToWire(n.Rhs)

		return wireStatement{Kind: "assign", Lhs: &lhs, AssignOp: assignOpToWire(n.Op), Expr: &rhs, Line: n.SourceLine}
	case *If:
		cond := exprToWire(n.Cond)
		w := wireStatement{Kind: "if", Cond: &cond, Line: n.SourceLine}

		for _, t := range n.Then {
			w.Then = append(w.Then, stmtToWire(t))
		}

		for _, e := range n.Else {
			w.Else = append(w.Else, stmtToWire(e))
		}

		return w
	case *For:
		w := wireStatement{Kind: "for", LoopVariable: n.LoopVariable, Line: n.SourceLine}

		if n.From != nil {
			from := exprToWire(n.From)
			w.From = &from
		}

		if n.To != nil {
			to := exprToWire(n.To)
			w.To = &to
		}

		if n.Step != nil {
			step := exprToWire(n.Step)
			w.Step = &step
		}

		for _, b := range n.Body {
			w.Body = append(w.Body, stmtToWire(b))
		}

		return w
	case *Call:
		return wireStatement{Kind: "call", Target: n.Target, Actuals: n.Actuals, Line: n.SourceLine}
	case *Uncall:
		return wireStatement{Kind: "uncall", Target: n.Target, Actuals: n.Actuals, Line: n.SourceLine}
	case *Skip:
		return wireStatement{Kind: "skip", Line: n.SourceLine}
	default:
		return wireStatement{}
	}
}

func (w wireStatement) toStmt(scope varScope) (Statement, error) {
	pos := Pos{SourceLine: w.Line}

	switch w.Kind {
	case "swap":
		if w.Lhs == nil || w.Rhs == nil {
			return nil, fmt.Errorf("swap statement missing an operand")
		}

		lhs, err := w.Lhs.toAccess(scope)
		if err != nil {
			return nil, err
		}

		rhs, err := w.Rhs.toAccess(scope)
		if err != nil {
			return nil, err
		}

		return &Swap{Pos: pos, Lhs: lhs, Rhs: rhs}, nil
	case "unary":
		if w.Var == nil {
			return nil, fmt.Errorf("unary statement missing its operand")
		}

		v, err := w.Var.toAccess(scope)
		if err != nil {
			return nil, err
		}

		op, err := unaryOpFromWire(w.UnaryOp)
		if err != nil {
			return nil, err
		}

		return &Unary{Pos: pos, Op: op, Var: v}, nil
	case "assign":
		if w.Lhs == nil || w.Expr == nil {
			return nil, fmt.Errorf("assign statement missing its lhs or rhs")
		}

		lhs, err := w.Lhs.toAccess(scope)
		if err != nil {
			return nil, err
		}

		op, err := assignOpFromWire(w.AssignOp)
		if err != nil {
			return nil, err
		}

		rhs, err := w.Expr.toExpr(scope)
		if err != nil {
			return nil, err
		}

		return &Assign{Pos: pos, Op: op, Lhs: lhs, Rhs: rhs}, nil
	case "if":
		if w.Cond == nil {
			return nil, fmt.Errorf("if statement missing its condition")
		}

		cond, err := w.Cond.toExpr(scope)
		if err != nil {
			return nil, err
		}

		then, err := wireStatementsToStmts(w.Then, scope)
		if err != nil {
			return nil, err
		}

		els, err := wireStatementsToStmts(w.Else, scope)
		if err != nil {
			return nil, err
		}

		return &If{Pos: pos, Cond: cond, Then: then, Else: els}, nil
	case "for":
		n := &For{Pos: pos, LoopVariable: w.LoopVariable}

		var err error
		if n.From, err = optionalExpr(w.From, scope); err != nil {
			return nil, err
		}

		if n.To, err = optionalExpr(w.To, scope); err != nil {
			return nil, err
		}

		if n.Step, err = optionalExpr(w.Step, scope); err != nil {
			return nil, err
		}

		if n.Body, err = wireStatementsToStmts(w.Body, scope); err != nil {
			return nil, err
		}

		return n, nil
	case "call":
		return &Call{Pos: pos, Target: w.Target, Actuals: w.Actuals}, nil
	case "uncall":
		return &Uncall{Pos: pos, Target: w.Target, Actuals: w.Actuals}, nil
	case "skip":
		return &Skip{Pos: pos}, nil
	default:
		return nil, fmt.Errorf("unrecognized statement kind %q", w.Kind)
	}
}

func optionalExpr(w *wireExpr, scope varScope) (Expression, error) {
	if w == nil {
		return nil, nil
	}

	return w.toExpr(scope)
}

func wireStatementsToStmts(ws []wireStatement, scope varScope) ([]Statement, error) {
	out := make([]Statement, 0, len(ws))

	for _, w := range ws {
		s, err := w.toStmt(scope)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// wireModule is Module's on-the-wire shape.
type wireModule struct {
	Name       string          `json:"name"`
	Parameters []wireVariable  `json:"parameters,omitempty"`
	Locals     []wireVariable  `json:"locals,omitempty"`
	Body       []wireStatement `json:"body,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m *Module) MarshalJSON() ([]byte, error) {
	w := wireModule{Name: m.Name}

	for _, p := range m.Parameters {
		w.Parameters = append(w.Parameters, p.toWire())
	}

	for _, l := range m.Locals {
		w.Locals = append(w.Locals, l.toWire())
	}

	for _, s := range m.Body {
		w.Body = append(w.Body, stmtToWire(s))
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Parameters and Locals are
// decoded first to build the name-keyed scope the body's variable accesses
// resolve against.
func (m *Module) UnmarshalJSON(data []byte) error {
	var w wireModule
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	m.Name = w.Name

	scope := make(varScope)

	for _, wv := range w.Parameters {
		v, err := wv.toVariable()
		if err != nil {
			return fmt.Errorf("module %q: %w", w.Name, err)
		}

		m.Parameters = append(m.Parameters, v)
		scope[v.Name] = v
	}

	for _, wv := range w.Locals {
		v, err := wv.toVariable()
		if err != nil {
			return fmt.Errorf("module %q: %w", w.Name, err)
		}

		m.Locals = append(m.Locals, v)
		scope[v.Name] = v
	}

	body, err := wireStatementsToStmts(w.Body, scope)
	if err != nil {
		return fmt.Errorf("module %q: %w", w.Name, err)
	}

	m.Body = body

	return nil
}

// wireCircuit is Circuit's on-the-wire shape.
type wireCircuit struct {
	Modules []*Module `json:"modules"`
}

// MarshalJSON implements json.Marshaler.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCircuit{Modules: c.Modules})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var w wireCircuit
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.Modules = w.Modules

	return nil
}
