package robustboost

import (
	"fmt"
	"path"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// recurrentDraw walks tree from nodeID, creating a graphviz node per
// arena slot and an edge from parentNode if any, the same recursive
// shape as ebl/tree.go's recurrentDraw, adapted to RegTree's
// LeftChild/RightChild fields and IsLeaf flag instead of
// LeafIndex/TreeNodeId.
func recurrentDraw(g *cgraph.Graph, tree *RegTree, nodeID int, parentNode *cgraph.Node) error {
	currentNode, err := g.CreateNode(fmt.Sprint(nodeID))
	if err != nil {
		return err
	}
	if parentNode != nil {
		if _, err := g.CreateEdge("", parentNode, currentNode); err != nil {
			return err
		}
	}

	node := tree.Nodes[nodeID]
	currentNode.Set("label", node.GraphDescription(nodeID))
	if node.IsLeaf {
		currentNode.Set("shape", "box")
		return nil
	}
	if err := recurrentDraw(g, tree, node.LeftChild, currentNode); err != nil {
		return err
	}
	return recurrentDraw(g, tree, node.RightChild, currentNode)
}

// DrawGraph renders tree as a graphviz graph, mirroring ebl/tree.go's
// OneTree.DrawGraph.
func DrawGraph(tree *RegTree) (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return nil, nil, err
	}
	if err := recurrentDraw(graph, tree, 0, nil); err != nil {
		return nil, nil, err
	}
	return gv, graph, nil
}

// RenderTrees writes one image file per tree in m, following
// ebl/ebooster.go's RenderTrees dump-prefix/figure-type/directory
// convention.
func RenderTrees(m *Model, dumpPrefix, figureType, picturesDirectory string) error {
	formats := map[string]graphviz.Format{
		"png": graphviz.PNG,
		"svg": graphviz.SVG,
		"jpg": graphviz.JPG,
	}
	format, ok := formats[figureType]
	if !ok {
		return &BuildError{Phase: "RenderTrees", Err: ErrIndexOutOfRange}
	}

	for idx, tree := range m.Trees {
		gv, graph, err := DrawGraph(tree)
		if err != nil {
			return &BuildError{Phase: "RenderTrees", Err: err}
		}
		filename := fmt.Sprintf("%s_%05d.%s", dumpPrefix, idx, figureType)
		if err := gv.RenderFilename(graph, format, path.Join(picturesDirectory, filename)); err != nil {
			return &BuildError{Phase: "RenderTrees", Err: err}
		}
	}
	return nil
}
