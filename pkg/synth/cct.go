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
	"github.com/bits-and-blooms/bitset"

	"github.com/reversible-synth/go-syrec/pkg/circuit"
)

// cctNode is one node of the Controlled-Cascade Tree (spec.md §4.4). A node
// is a leaf iff it has no children, in which case it owns a gate buffer; an
// interior node never buffers gates, only routes to children in the order
// they were created. Parents hold children by slice (arena-style, no
// pointer cycles) per spec.md §9 "CCT ownership".
type cctNode struct {
	parent   *cctNode
	children []*cctNode

	hasControl bool
	control    uint

	// controlsAccum is the accumulated set of ancestor controls including
	// this node's own control, if any (spec.md §4.4 "controls").
	controlsAccum *bitset.BitSet

	// gates is non-nil only for leaves.
	gates []circuit.Gate
}

func (n *cctNode) isLeaf() bool {
	return len(n.children) == 0
}

// GateCount implements cost.Tree.
func (n *cctNode) GateCount() uint {
	if n.isLeaf() {
		return uint(len(n.gates))
	}

	var total uint
	for _, c := range n.children {
		total += c.GateCount()
	}

	return total
}

// ControlCount implements cost.Tree.
func (n *cctNode) ControlCount() uint {
	return n.controlsAccum.Count()
}

// cct is the engine's Controlled-Cascade Tree state: a root plus the
// current leaf pointer (spec.md §4.4 invariant).
type cct struct {
	root    *cctNode
	current *cctNode
}

func newCCT() *cct {
	root := &cctNode{controlsAccum: bitset.New(0)}
	leaf := &cctNode{parent: root, controlsAccum: bitset.New(0)}
	root.children = []*cctNode{leaf}

	return &cct{root: root, current: leaf}
}

// pushControl implements spec.md §4.4 push_control(c): completes the
// current leaf, adds a new control-node child under the leaf's parent, and
// descends into a fresh leaf under it.
func (t *cct) pushControl(c uint) {
	parent := t.current.parent

	accum := parent.controlsAccum.Clone()
	accum.Set(c)

	ctrlNode := &cctNode{parent: parent, hasControl: true, control: c, controlsAccum: accum}
	parent.children = append(parent.children, ctrlNode)

	leaf := &cctNode{parent: ctrlNode, controlsAccum: accum}
	ctrlNode.children = []*cctNode{leaf}

	t.current = leaf
}

// popControl implements spec.md §4.4 pop_control(c): walks current up two
// levels (leaf -> control node -> its parent) and resumes appending at a
// fresh leaf under that parent. c is advisory only, matching spec.md's note
// that "the tree topology determines what is popped" — the engine must not
// call this out of the nested order it pushed controls in (spec.md §5
// "Ordering").
func (t *cct) popControl(_ uint) {
	ctrlNode := t.current.parent
	parent := ctrlNode.parent

	leaf := &cctNode{parent: parent, controlsAccum: parent.controlsAccum}
	parent.children = append(parent.children, leaf)

	t.current = leaf
}

// append buffers g into the current leaf. g's own Controls field (if any)
// represents the gate's intrinsic controls (e.g. an explicit Toffoli
// control list), distinct from the CCT's accumulated context, which is
// merged in at assemble time.
func (t *cct) append(g circuit.Gate) {
	t.current.gates = append(t.current.gates, g)
}

// assemble implements spec.md §4.4 assemble: depth-first walk emitting
// every leaf's buffered gates into the circuit, with inherited_controls
// (here, the leaf's own controlsAccum) merged onto every gate. When
// efficient_controls is enabled, interior nodes whose subtree the cost
// model judges cheaper to hoist replace their subtree's controls with a
// single AND-computed helper line (spec.md §4.4.1).
func (e *Engine) assembleCCT() {
	e.assembleNode(e.cct.root)
}

func (e *Engine) assembleNode(n *cctNode) {
	if n.isLeaf() {
		for _, g := range n.gates {
			e.emitWithControls(g, n.controlsAccum)
		}

		return
	}

	if e.cfg.EfficientControls && n.hasControl && e.shouldHoist(n) {
		e.assembleHoisted(n)
		return
	}

	for _, c := range n.children {
		e.assembleNode(c)
	}
}

// shouldHoist implements the §4.4.1 cost comparison: hoist when
// Optimization is strictly cheaper than Standard and no more expensive than
// Successors (a tie with Successors hoists).
func (e *Engine) shouldHoist(n *cctNode) bool {
	model := e.cfg.CostModel

	std := model.Standard(n)
	opt := model.Optimization(n)
	succ := model.Successors(n)

	return opt < std && opt <= succ
}

// assembleHoisted implements the hoisted emission described in spec.md
// §4.4.1: allocate a fresh ancillary, AND the node's own accumulated
// controls into it via one Toffoli, recurse on children conditioned only on
// {helper}, then un-compute the helper with the same Toffoli.
func (e *Engine) assembleHoisted(n *cctNode) {
	helper := e.allocConst(false)

	controlList := bitsetToSlice(n.controlsAccum)
	e.build.AppendToffoli(controlList, helper)

	helperSet := bitset.New(helper + 1)
	helperSet.Set(helper)

	for _, c := range n.children {
		e.assembleNodeUnderHelper(c, helperSet)
	}

	e.build.AppendToffoli(controlList, helper)
	e.releaseConst(helper, false)
}

// assembleNodeUnderHelper is assembleNode's counterpart once a subtree has
// been hoisted onto a single helper control: every descendant leaf's gates
// run controlled by {helper} alone, regardless of how many controls the
// original subtree accumulated below this point.
func (e *Engine) assembleNodeUnderHelper(n *cctNode, helper *bitset.BitSet) {
	if n.isLeaf() {
		for _, g := range n.gates {
			e.emitWithControls(g, helper)
		}

		return
	}

	for _, c := range n.children {
		e.assembleNodeUnderHelper(c, helper)
	}
}

func (e *Engine) emitWithControls(g circuit.Gate, inherited *bitset.BitSet) {
	if g.Controls != nil {
		g.Controls = g.Controls.Union(inherited)
	} else if inherited.Count() > 0 {
		g.Controls = inherited.Clone()
	}

	e.build.SetSourceLine(g.SourceLine)

	switch {
	case g.Kind == circuit.GateModule:
		e.build.AppendModule(g.ModuleName, bitsetToSlice(g.Controls), g.Targets)
	case len(g.Targets) == 2 && g.Kind == circuit.GateFredkin:
		e.build.AppendFredkin(bitsetToSlice(g.Controls), g.Targets[0], g.Targets[1])
	default:
		e.build.AppendToffoli(bitsetToSlice(g.Controls), g.Targets[0])
	}
}

func bitsetToSlice(b *bitset.BitSet) []uint {
	if b == nil {
		return nil
	}

	out := make([]uint, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, i)
	}

	return out
}
