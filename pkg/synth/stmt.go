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

import (
	"github.com/reversible-synth/go-syrec/pkg/ast"
	"github.com/reversible-synth/go-syrec/pkg/circuit"
)

// onStatements implements spec.md §4.6's statement dispatch over a
// statement list, forward direction.
func (e *Engine) onStatements(stmts []ast.Statement) {
	e.onStatementsDir(stmts, false)
}

// onStatementsDir lowers stmts either forward or, for an enclosing uncall
// (spec.md §4.6 "uncall"), in reverse: reverse order and each statement
// itself reversed (add<->subtract, swap/skip unchanged, call<->uncall,
// if/for bodies recursed with the same reverse flag, for-range walked
// backwards).
func (e *Engine) onStatementsDir(stmts []ast.Statement, reverse bool) {
	if !reverse {
		for _, s := range stmts {
			e.onStatement(s, false)
		}

		return
	}

	for i := len(stmts) - 1; i >= 0; i-- {
		e.onStatement(stmts[i], true)
	}
}

func (e *Engine) onStatement(s ast.Statement, reverse bool) {
	e.currentSourceLine = s.Line()

	switch n := s.(type) {
	case *ast.Swap:
		e.onSwap(n)
	case *ast.Unary:
		e.onUnary(n, reverse)
	case *ast.Assign:
		e.onAssign(n, reverse)
	case *ast.If:
		e.onIf(n, reverse)
	case *ast.For:
		e.onFor(n, reverse)
	case *ast.Call:
		e.onCallOrUncall(n.Target, n.Actuals, reverse)
	case *ast.Uncall:
		e.onCallOrUncall(n.Target, n.Actuals, !reverse)
	case *ast.Skip:
		// no-op
	default:
		e.fail(s, "unrecognized statement variant %T", s)
	}
}

// onSwap implements spec.md §4.6 swap(lhs, rhs): self-inverse, so reverse
// direction needs no special case.
func (e *Engine) onSwap(n *ast.Swap) {
	lhs, err := e.resolveAccess(n.Lhs)
	if err != nil {
		e.fail(n, "%s", err)
		return
	}

	rhs, err := e.resolveAccess(n.Rhs)
	if err != nil {
		e.unget(lhs)
		e.fail(n, "%s", err)

		return
	}

	if len(lhs.lines) != len(rhs.lines) {
		e.fail(n, "swap operands have different bit widths (%d vs %d)", len(lhs.lines), len(rhs.lines))
	} else {
		e.bitwiseFredkin(lhs.lines, rhs.lines)
	}

	e.unget(rhs)
	e.unget(lhs)
}

// onUnary implements spec.md §4.6 unary(op, var). Increment/decrement under
// reverse swap roles (incrementing forward is decrementing in reverse);
// invert is self-inverse.
func (e *Engine) onUnary(n *ast.Unary, reverse bool) {
	r, err := e.resolveAccess(n.Var)
	if err != nil {
		e.fail(n, "%s", err)
		return
	}

	op := n.Op
	if reverse {
		switch op {
		case ast.UnaryIncrement:
			op = ast.UnaryDecrement
		case ast.UnaryDecrement:
			op = ast.UnaryIncrement
		}
	}

	switch op {
	case ast.UnaryInvert:
		e.bitwiseNegation(r.lines)
	case ast.UnaryIncrement:
		e.increment(r.lines)
	case ast.UnaryDecrement:
		e.decrement(r.lines)
	}

	e.unget(r)
}

// increment implements spec.md §4.6's increment cascade: bit i flips iff
// every lower bit is set (a chain of progressively wider Toffolis), then
// bit 0 always flips. When Config.CrementMergeLineCount is at least 2 and
// narrower than dst, delegates to incrementMerged
// (pkg/synth/gates_crement.go), which shares control-prefix work across
// groups of that many bits via a helper line instead of widening every
// gate's own control set.
func (e *Engine) increment(dst LineRange) {
	if e.cfg.CrementMergeLineCount >= 2 && e.cfg.CrementMergeLineCount < uint(len(dst)) {
		e.incrementMerged(dst)
		return
	}

	n := len(dst)
	for i := n - 1; i >= 1; i-- {
		controls := make([]uint, i)
		copy(controls, dst[:i])
		e.emitToffoli(controls, dst[i])
	}

	if n > 0 {
		e.emitNot(dst[0])
	}
}

// decrement implements decrement: invert beforehand, increment, invert
// afterward (the same two's-complement trick increaseNew/decreaseNew use).
func (e *Engine) decrement(dst LineRange) {
	e.bitwiseNegation(dst)
	e.increment(dst)
	e.bitwiseNegation(dst)
}

// onAssign implements spec.md §4.6 assign(op, lhs, rhs).
func (e *Engine) onAssign(n *ast.Assign, reverse bool) {
	op := n.Op
	if reverse {
		op = op.Inverse()
	}

	lhsRes, err := e.resolveAccess(n.Lhs)
	if err != nil {
		e.fail(n, "%s", err)
		return
	}

	handled, err := e.resolveSelfReference(n.Lhs, op, n.Rhs)
	if err != nil {
		e.unget(lhsRes)
		e.fail(n, "%s", err)

		return
	}

	if handled {
		e.unget(lhsRes)
		return
	}

	rhsLines, teardown, err := e.onExpression(n.Rhs)
	if err != nil {
		e.unget(lhsRes)
		e.fail(n, "%s", err)

		return
	}

	e.expressionSingleOp(op, lhsRes.lines, rhsLines)

	if teardown != nil {
		teardown()
	}

	e.unget(lhsRes)
}

// onIf implements spec.md §4.6 if(cond, then, else): the controlled or
// duplication policy, per Config.IfRealization, unless Config.AutoIfRealization
// is set, in which case each if-statement picks its own realization by
// comparing cost.Model estimates (SPEC_FULL.md §12).
func (e *Engine) onIf(n *ast.If, reverse bool) {
	if e.cfg.AutoIfRealization {
		if e.preferDuplication(n) {
			e.onIfDuplication(n, reverse)
			return
		}

		e.onIfControlled(n, reverse)

		return
	}

	if e.cfg.IfRealization == IfDuplication {
		e.onIfDuplication(n, reverse)
		return
	}

	e.onIfControlled(n, reverse)
}

// ifCostTree is a cost.Tree adapter over an if-statement's branches, used
// only by preferDuplication's estimate: GateCount is approximated by a
// recursive statement count (the actual gate count isn't known until the
// branch is lowered), ControlCount is the CCT's current control depth at the
// point the if-statement is reached (spec.md §4.4.1 "controls already active
// above this subtree").
type ifCostTree struct {
	gates, controls uint
}

func (t ifCostTree) GateCount() uint    { return t.gates }
func (t ifCostTree) ControlCount() uint { return t.controls }

// preferDuplication implements the auto policy: controlled realization pays
// Model.Standard (every branch gate under the full accumulated control set,
// nested one deeper by the if's own helper control); duplication pays
// Model.Optimization (two Toffolis to compute/uncompute a single helper,
// then every branch gate under that one control alone) — the same trade-off
// cost.Model.Optimization already models for CCT control hoisting, which is
// structurally identical to what duplication buys an if-statement.
func (e *Engine) preferDuplication(n *ast.If) bool {
	gates := estimateStatementCost(n.Then) + estimateStatementCost(n.Else)
	tree := ifCostTree{gates: gates, controls: e.cct.current.controlsAccum.Count()}

	model := e.cfg.CostModel

	return model.Optimization(tree) < model.Standard(tree)
}

// estimateStatementCost recursively counts statements as a proxy for the
// gate count a branch will eventually lower to; loop bodies are weighted by
// their iteration count when statically known.
func estimateStatementCost(stmts []ast.Statement) uint {
	var total uint

	for _, s := range stmts {
		total++

		switch n := s.(type) {
		case *ast.If:
			total += estimateStatementCost(n.Then) + estimateStatementCost(n.Else)
		case *ast.For:
			iterations := estimateForIterations(n)
			total += iterations * estimateStatementCost(n.Body)
		}
	}

	return total
}

func estimateForIterations(n *ast.For) uint {
	to, err := ast.Evaluate(n.To, nil)
	if err != nil {
		return 1
	}

	from := uint64(1)

	if n.From != nil {
		if v, err := ast.Evaluate(n.From, nil); err == nil {
			from = v
		}
	}

	step := uint64(1)

	if n.Step != nil {
		if v, err := ast.Evaluate(n.Step, nil); err == nil && v != 0 {
			step = v
		}
	}

	if to < from {
		return 1
	}

	return uint((to-from)/step) + 1
}

// onIfControlled implements the controlled realization: lower cond to a
// single helper line h, bracket each branch with push_control(h)/
// pop_control(h), flipping h between branches so the else branch runs under
// NOT(cond), then restore h.
func (e *Engine) onIfControlled(n *ast.If, reverse bool) {
	condLines, condTeardown, err := e.onExpression(n.Cond)
	if err != nil {
		e.fail(n, "%s", err)
		return
	}

	h := e.allocConst(false)
	e.emitCNOT(condLines[0], h)

	e.cct.pushControl(h)
	e.onStatementsDir(n.Then, reverse)
	e.cct.popControl(h)

	e.emitNot(h)

	e.cct.pushControl(h)
	e.onStatementsDir(n.Else, reverse)
	e.cct.popControl(h)

	e.emitNot(h)

	// h currently equals cond's original value again; restore it to 0
	// (assuming, per spec.md §9, that neither branch mutates the bits
	// cond itself reads) and release it.
	e.emitCNOT(condLines[0], h)
	e.releaseConst(h, false)

	if condTeardown != nil {
		condTeardown()
	}
}

// onIfDuplication implements the duplication realization (spec.md §4.6 IF
// policy 2): twin every variable the then-branch modifies, lower then
// against the twins (via ifRemap), lower else against the originals, then
// conditionally swap each twin back in. The twins are left allocated
// (spec.md's own "at the cost of extra lines"): after the controlled swap
// each one holds whichever branch's result didn't end up in the original,
// a data-dependent value that can't be proven back to a constant.
func (e *Engine) onIfDuplication(n *ast.If, reverse bool) {
	module := e.currentScope().module
	modified := e.modifiedVars(n.Then, module)

	type twin struct {
		orig, twin LineRange
	}

	var twins []twin

	for v := range modified {
		orig, err := e.variablesOf(v)
		if err != nil {
			continue
		}

		tw := e.allocConstVector(uint(len(orig)), 0)
		e.bitwiseCNOT(tw, orig)

		e.ifRemap[v] = tw

		twins = append(twins, twin{orig: orig, twin: tw})
	}

	e.onStatementsDir(n.Then, reverse)

	for v := range modified {
		delete(e.ifRemap, v)
	}

	e.onStatementsDir(n.Else, reverse)

	condLines, condTeardown, err := e.onExpression(n.Cond)
	if err != nil {
		e.fail(n, "%s", err)
		return
	}

	h := e.allocConst(false)
	e.emitCNOT(condLines[0], h)

	e.cct.pushControl(h)

	for _, t := range twins {
		e.bitwiseFredkin(t.orig, t.twin)
	}

	e.cct.popControl(h)

	if condTeardown != nil {
		condTeardown()
	}
}

// modifiedVars statically collects every *ast.Variable a statement list (or
// any nested if/for/call/uncall reachable from it) may write to (spec.md
// §4.6 IF policy 2: "precomputed statically by walking each statement's
// sub-tree, unioning modified accesses through if/for/call").
func (e *Engine) modifiedVars(stmts []ast.Statement, module *ast.Module) map[*ast.Variable]bool {
	out := make(map[*ast.Variable]bool)
	e.collectModified(stmts, module, out)

	return out
}

func (e *Engine) collectModified(stmts []ast.Statement, module *ast.Module, out map[*ast.Variable]bool) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Swap:
			out[n.Lhs.Variable] = true
			out[n.Rhs.Variable] = true
		case *ast.Unary:
			out[n.Var.Variable] = true
		case *ast.Assign:
			out[n.Lhs.Variable] = true
		case *ast.If:
			e.collectModified(n.Then, module, out)
			e.collectModified(n.Else, module, out)
		case *ast.For:
			e.collectModified(n.Body, module, out)
		case *ast.Call:
			e.collectCalleeModified(n.Target, n.Actuals, module, out)
		case *ast.Uncall:
			e.collectCalleeModified(n.Target, n.Actuals, module, out)
		}
	}
}

func (e *Engine) collectCalleeModified(target string, actuals []string, callerModule *ast.Module, out map[*ast.Variable]bool) {
	if e.circuit == nil {
		return
	}

	callee := e.circuit.Module(target)
	if callee == nil {
		return
	}

	calleeModified := e.modifiedVars(callee.Body, callee)

	for i, formal := range callee.Parameters {
		if !calleeModified[formal] || i >= len(actuals) {
			continue
		}

		if v := callerModule.Variable(actuals[i]); v != nil {
			out[v] = true
		}
	}
}

// onFor implements spec.md §4.6 for: evaluate from/to/step under the
// current loop-variable map (defaulting from and step to 1), bind
// LoopVariable to each successive value, and lower the body once per value.
// Under reverse, the range is walked backwards and each iteration's body is
// itself lowered in reverse.
func (e *Engine) onFor(n *ast.For, reverse bool) {
	from := uint64(1)

	if n.From != nil {
		v, err := ast.Evaluate(n.From, e.loopVars)
		if err != nil {
			e.fail(n, "%s", err)
			return
		}

		from = v
	}

	to, err := ast.Evaluate(n.To, e.loopVars)
	if err != nil {
		e.fail(n, "%s", err)
		return
	}

	step := uint64(1)

	if n.Step != nil {
		v, err := ast.Evaluate(n.Step, e.loopVars)
		if err != nil {
			e.fail(n, "%s", err)
			return
		}

		step = v
	}

	if step == 0 {
		e.fail(n, "for-loop step must be non-zero")
		return
	}

	values := make([]uint64, 0)
	for v := from; v <= to; v += step {
		values = append(values, v)
	}

	if reverse {
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
	}

	var saved uint64

	var hadPrev bool

	if n.LoopVariable != "" {
		saved, hadPrev = e.loopVars[n.LoopVariable]
	}

	for _, v := range values {
		if n.LoopVariable != "" {
			e.loopVars[n.LoopVariable] = v
		}

		e.onStatementsDir(n.Body, reverse)
	}

	if n.LoopVariable != "" {
		if hadPrev {
			e.loopVars[n.LoopVariable] = saved
		} else {
			delete(e.loopVars, n.LoopVariable)
		}
	}
}

// onCallOrUncall implements spec.md §4.6 call/uncall: bind formals to the
// caller's actuals by reference, declare the callee's locals fresh, lower
// its body (forward for a call, reversed for an uncall — bodyReverse
// already encodes which), then pop the activation. When
// Config.ModulesHierarchy is set and the body is lowered forward, the callee
// is instead synthesized once as a named module and invoked via a single
// module gate; a reversed body (an uncall) is always inlined.
func (e *Engine) onCallOrUncall(target string, actuals []string, bodyReverse bool) {
	callee := e.circuit.Module(target)
	if callee == nil {
		e.fail(nil, "call to undefined module %q", target)
		return
	}

	callerModule := e.currentScope().module

	actualLines := make([]LineRange, len(callee.Parameters))

	for i, formal := range callee.Parameters {
		if i >= len(actuals) {
			e.fail(nil, "call to %q missing actual for parameter %q", target, formal.Name)
			return
		}

		v := callerModule.Variable(actuals[i])
		if v == nil {
			e.fail(nil, "call to %q: actual %q not found in caller scope", target, actuals[i])
			return
		}

		lines, err := e.variablesOf(v)
		if err != nil {
			e.fail(nil, "%s", err)
			return
		}

		actualLines[i] = lines
	}

	if e.cfg.ModulesHierarchy && !bodyReverse {
		e.callAsModule(target, callee, actualLines)
		return
	}

	e.pushScope(callee)

	for i, formal := range callee.Parameters {
		e.bindParameter(formal, actualLines[i])
	}

	for _, v := range callee.Locals {
		e.declareVariable(v, false)
	}

	e.onStatementsDir(callee.Body, bodyReverse)

	e.popScope()
}

// callAsModule implements the modules_hierarchy realization: synthesize
// callee once (memoized by name) as a standalone sub-circuit whose exposed
// lines are exactly its formal parameters in order, then emit a single
// module gate over the caller's actual lines (spec.md §4.6 "reuse").
func (e *Engine) callAsModule(name string, callee *ast.Module, actualLines []LineRange) {
	if !e.moduleCache[name] {
		e.buildCalleeModule(name, callee)
		e.moduleCache[name] = true
	}

	targets := make([]uint, 0)
	for _, lr := range actualLines {
		targets = append(targets, lr...)
	}

	e.emitModule(name, nil, targets)
}

func (e *Engine) buildCalleeModule(name string, callee *ast.Module) {
	savedBuild, savedCCT, savedScopes, savedFree := e.build, e.cct, e.scopes, e.free

	e.build = circuit.NewBuilder()
	e.cct = newCCT()
	e.scopes = nil
	e.free = freePool{}

	e.pushScope(callee)

	for _, p := range callee.Parameters {
		e.declareVariable(p, true)
	}

	for _, v := range callee.Locals {
		e.declareVariable(v, false)
	}

	e.onStatementsDir(callee.Body, false)

	e.popScope()
	e.assembleCCT()

	sub := e.build.Circuit()

	e.build, e.cct, e.scopes, e.free = savedBuild, savedCCT, savedScopes, savedFree

	e.build.RegisterModule(name, sub)
}
