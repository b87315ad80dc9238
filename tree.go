package robustboost

import (
	"fmt"
	"strings"
)

// TreeNode is one arena slot of a RegTree: either an internal split node
// (LeftChild/RightChild >= 0) or a leaf (both -1). The arena layout and
// field set follow ebl/tree.go's TreeNode, adapted from that file's
// recursive depth-first shape to the frontier/level-wise growth spec
// section 4.4 describes: nodes are appended as the frontier expands
// rather than produced by a recursive builder call.
type TreeNode struct {
	ParentID    int
	LeftChild   int
	RightChild  int
	SplitFeature int
	Threshold   float32
	DefaultLeft bool

	IsLeaf     bool
	LeafWeight float32

	LossChg float32
	BaseWeight float32
	SumHess    float32
}

func newTreeNode(parentID int) TreeNode {
	return TreeNode{ParentID: parentID, LeftChild: -1, RightChild: -1}
}

// GraphDescription renders a node's label for DrawGraph, in the same
// "one line per field" style as ebl/tree.go's GraphDescription.
func (n TreeNode) GraphDescription(nodeID int) string {
	var sb strings.Builder
	if n.IsLeaf {
		fmt.Fprintf(&sb, "leaf %d\n", nodeID)
		fmt.Fprintf(&sb, "weight: %6.5f\n", n.LeafWeight)
	} else {
		fmt.Fprintf(&sb, "node %d\n", nodeID)
		fmt.Fprintf(&sb, "f_%d < %6.5f\n", n.SplitFeature, n.Threshold)
		fmt.Fprintf(&sb, "gain: %6.5f\n", n.LossChg)
	}
	fmt.Fprintf(&sb, "hess: %6.2f", n.SumHess)
	return sb.String()
}

// RegTree is the index-addressable node arena for one boosted tree. Node
// 0 is always the root. Arena growth is append-only during building;
// distributed pruning (distbuilder.go) marks nodes dead without
// compacting the arena, matching original_source's "collapse to leaf in
// place" pruning semantics.
type RegTree struct {
	Nodes []TreeNode
	// Dead marks pruned-away nodes; a dead node's subtree is unreachable
	// from prediction but stays in the arena for index stability.
	Dead []bool
}

// NewRegTree returns a tree with a single root leaf, matching spec
// section 3's "Frontier" starting state: one node, no splits yet.
func NewRegTree() *RegTree {
	root := newTreeNode(-1)
	root.IsLeaf = true
	return &RegTree{Nodes: []TreeNode{root}, Dead: []bool{false}}
}

func (t *RegTree) NumNodes() int { return len(t.Nodes) }

// AddChildren turns nodeID from a leaf into a split node with two new
// leaf children, returning their ids. Matches the arena-append pattern
// of ebl/tree.go's BuildTree, generalized to emit both children at once
// instead of recursing into each before returning.
func (t *RegTree) AddChildren(nodeID, splitFeature int, threshold float32, defaultLeft bool, lossChg, baseWeight, sumHess float32) (left, right int) {
	n := &t.Nodes[nodeID]
	n.IsLeaf = false
	n.SplitFeature = splitFeature
	n.Threshold = threshold
	n.DefaultLeft = defaultLeft
	n.LossChg = lossChg
	n.BaseWeight = baseWeight
	n.SumHess = sumHess

	left = len(t.Nodes)
	t.Nodes = append(t.Nodes, newTreeNode(nodeID))
	t.Nodes[left].IsLeaf = true
	t.Dead = append(t.Dead, false)

	right = len(t.Nodes)
	t.Nodes = append(t.Nodes, newTreeNode(nodeID))
	t.Nodes[right].IsLeaf = true
	t.Dead = append(t.Dead, false)

	t.Nodes[nodeID].LeftChild = left
	t.Nodes[nodeID].RightChild = right
	return left, right
}

// SetLeafWeight finalizes a leaf's prediction value; called once a node
// is decided to stay a leaf (max depth reached, no sufficient split
// found, or pruned).
func (t *RegTree) SetLeafWeight(nodeID int, weight float32) {
	t.Nodes[nodeID].IsLeaf = true
	t.Nodes[nodeID].LeafWeight = weight
}

// Collapse turns an internal node back into a leaf, discarding its split
// but leaving the now-unreachable children in the arena. Used by the
// distributed pruning handoff (distbuilder.go) instead of physically
// removing nodes, so that ResetPosition's id space stays stable.
func (t *RegTree) Collapse(nodeID int, weight float32) {
	t.markDead(t.Nodes[nodeID].LeftChild)
	t.markDead(t.Nodes[nodeID].RightChild)
	t.Nodes[nodeID].LeftChild = -1
	t.Nodes[nodeID].RightChild = -1
	t.SetLeafWeight(nodeID, weight)
}

func (t *RegTree) markDead(nodeID int) {
	if nodeID < 0 || t.Dead[nodeID] {
		return
	}
	t.Dead[nodeID] = true
	t.markDead(t.Nodes[nodeID].LeftChild)
	t.markDead(t.Nodes[nodeID].RightChild)
}

// Predict walks row's features from the root to a leaf and returns the
// leaf weight. row is indexed by feature id; a missing value is
// represented by NaN and follows the node's DefaultLeft flag.
func (t *RegTree) Predict(row []float32) float32 {
	nodeID := 0
	for !t.Nodes[nodeID].IsLeaf {
		n := t.Nodes[nodeID]
		v := row[n.SplitFeature]
		var goLeft bool
		if isMissing(v) {
			goLeft = n.DefaultLeft
		} else {
			goLeft = v < n.Threshold
		}
		if goLeft {
			nodeID = n.LeftChild
		} else {
			nodeID = n.RightChild
		}
	}
	return t.Nodes[nodeID].LeafWeight
}
