package robustboost

import "testing"

func syntheticTwoClusterData() ([][]float32, []GradientPair) {
	rows := [][]float32{
		{1}, {1.2}, {0.8},
		{9}, {9.2}, {8.8},
	}
	gpair := []GradientPair{
		gp(-2, 1), gp(-2, 1), gp(-2, 1),
		gp(2, 1), gp(2, 1), gp(2, 1),
	}
	return rows, gpair
}

func TestBuilderGrowsASplitOnSeparatedClusters(t *testing.T) {
	rows, gpair := syntheticTwoClusterData()
	matrix := NewDenseColumnMatrix(rows)

	param := DefaultTrainParam()
	param.MaxDepth = 2
	param.MinChildWeight = 0.5
	param.NumWorkers = 2

	b := NewBuilder(param, NewStandardEvaluator(1, 0), 1)
	tree := NewRegTree()
	if err := b.Build(tree, matrix, gpair); err != nil {
		t.Fatalf("unexpected error building tree: %v", err)
	}

	if tree.Nodes[0].IsLeaf {
		t.Fatalf("expected the root to split on separated clusters, got a single leaf tree")
	}

	leftWeight := tree.Predict([]float32{1})
	rightWeight := tree.Predict([]float32{9})
	if leftWeight <= rightWeight {
		t.Errorf("expected the low cluster's prediction (negative gradients) above the high cluster's, got left=%v right=%v", leftWeight, rightWeight)
	}
}

func TestBuilderRespectsMaxDepthZero(t *testing.T) {
	rows, gpair := syntheticTwoClusterData()
	matrix := NewDenseColumnMatrix(rows)

	param := DefaultTrainParam()
	param.MaxDepth = 0
	param.NumWorkers = 1

	b := NewBuilder(param, NewStandardEvaluator(1, 0), 1)
	tree := NewRegTree()
	if err := b.Build(tree, matrix, gpair); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tree.Nodes[0].IsLeaf {
		t.Errorf("expected a max_depth=0 tree to stay a single leaf")
	}
}

func TestDistBuilderMatchesSingleWorkerOnTwoClusters(t *testing.T) {
	rows, gpair := syntheticTwoClusterData()
	matrix := NewDenseColumnMatrix(rows)

	param := DefaultTrainParam()
	param.MaxDepth = 2
	param.MinChildWeight = 0.5
	param.NumWorkers = 1

	local := NewBuilder(param, NewStandardEvaluator(1, 0), 1)
	d := NewDistBuilder(local, LocalReducer{}, nil, 0)

	tree := NewRegTree()
	if err := d.Build(tree, matrix, gpair); err != nil {
		t.Fatalf("unexpected error building distributed tree: %v", err)
	}
	if tree.Nodes[0].IsLeaf {
		t.Fatalf("expected the distributed builder to also split on separated clusters")
	}
}
