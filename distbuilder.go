package robustboost

// Reducer is the injected allreduce capability the distributed builder
// needs: SumSplit combines two workers' SplitEntry candidates for the
// same node (commutative, associative, per spec section 4.5) and
// BitwiseOrBitmap combines two workers' default-branch bitmaps. A real
// deployment backs this with whatever collective-communication library
// its cluster uses; this module has no opinion on which one, so it only
// defines the contract, matching the "prune" updater handoff's own
// injected-capability shape (spec section 6.3).
type Reducer interface {
	SumSplit(a, b SplitEntry) SplitEntry
	BitwiseOrBitmap(a, b []uint64) []uint64
}

// LocalReducer is a single-process Reducer, useful for tests and for
// running the distributed code path without an actual cluster.
type LocalReducer struct{}

func (LocalReducer) SumSplit(a, b SplitEntry) SplitEntry { return ReduceSplitEntries(a, b) }

func (LocalReducer) BitwiseOrBitmap(a, b []uint64) []uint64 {
	out := make([]uint64, len(a))
	for i := range a {
		out[i] = a[i] | b[i]
	}
	return out
}

// Pruner is the injected updater the distributed builder hands finished
// trees to for pruning, per spec section 6.3's "pruning delegated to an
// injected updater" design note. RobustDistColMaker itself never removes
// nodes; it only collapses a node to a leaf via RegTree.Collapse when
// told to.
type Pruner interface {
	Prune(tree *RegTree, param TrainParam) error
}

// DistBuilder is the distributed counterpart of Builder, registered as
// "robust_distcol". It builds exactly one tree per Update call (spec
// section 6.3) and repairs positions walking to the nearest live
// ancestor after the delegated Pruner has collapsed nodes. Split
// candidates, node statistics and default-branch decisions are this
// worker's own: the Reducer is held but not called, so nothing is
// combined across workers.
type DistBuilder struct {
	Local   *Builder
	Reduce  Reducer
	Prune   Pruner
	WorkerID int
}

// NewDistBuilder wraps a Builder with cross-worker reduction and an
// optional pruning handoff (nil disables pruning).
func NewDistBuilder(local *Builder, reduce Reducer, prune Pruner, workerID int) *DistBuilder {
	return &DistBuilder{Local: local, Reduce: reduce, Prune: prune, WorkerID: workerID}
}

// Build grows exactly one tree against this worker's shard of gpair and
// matrix, using this worker's local split candidates and default-branch
// placement at every level (no cross-worker exchange), then hands the
// finished tree to Prune and repairs positions for any node Prune
// collapsed.
func (d *DistBuilder) Build(tree *RegTree, matrix FeatureMatrix, gpair []GradientPair) error {
	if err := CheckInfo(matrix.NumRows(), gpair); err != nil {
		return err
	}
	positions := d.Local.initData(matrix.NumRows(), gpair)

	nodeEntries := map[int]*NodeEntry{0: {}}
	frontier := []int{0}

	for depth := 0; depth < d.Local.Param.MaxDepth && len(frontier) > 0; depth++ {
		d.Local.initNewNode(frontier, positions, gpair, nodeEntries)
		for _, nodeID := range frontier {
			nodeEntries[nodeID].Stats = d.reduceStats(nodeEntries[nodeID].Stats)
			nodeEntries[nodeID].Weight = d.Local.Eval.Weight(nodeID, nodeEntries[nodeID].Stats)
			nodeEntries[nodeID].RootGain = d.Local.Eval.Score(nodeID, nodeEntries[nodeID].Stats, nodeEntries[nodeID].Weight)
		}

		features := d.Local.sampleFeatures(matrix.NumCols())
		localBest, err := d.Local.findSplit(frontier, features, matrix, gpair, positions, nodeEntries)
		if err != nil {
			return err
		}
		best := d.syncBestSolution(frontier, localBest)

		var next []int
		for _, nodeID := range frontier {
			entry := nodeEntries[nodeID]
			split := best[nodeID]
			if split.FeatureID < 0 || split.LossChg <= tiny {
				tree.SetLeafWeight(nodeID, entry.Weight*d.Local.Param.LearningRate)
				continue
			}
			left, right := d.Local.commit(tree, nodeID, entry, split)
			d.updatePosition(matrix, positions, nodeID, split, left, right)
			nodeEntries[left] = &NodeEntry{}
			nodeEntries[right] = &NodeEntry{}
			next = append(next, left, right)
		}
		frontier = next
	}

	d.Local.initNewNode(frontier, positions, gpair, nodeEntries)
	for _, nodeID := range frontier {
		tree.SetLeafWeight(nodeID, nodeEntries[nodeID].Weight*d.Local.Param.LearningRate)
	}

	if d.Prune != nil {
		if err := d.Prune.Prune(tree, d.Local.Param); err != nil {
			return &BuildError{Phase: "DistBuild/Prune", Err: err}
		}
		d.repairPositions(tree, positions)
	}
	return nil
}

// reduceStats is a stand-in single-worker reduction: a real deployment
// allreduces node stats the same way it allreduces SplitEntry candidates
// below. With LocalReducer there is exactly one worker, so this is the
// identity.
func (d *DistBuilder) reduceStats(s GradStats) GradStats { return s }

// syncBestSolution is the place of original_source's
// rabit::Reducer<SplitEntry> allreduce over the frontier's candidates.
// It copies this worker's local best per frontier node; the Reducer's
// SumSplit is not called, so no other worker's candidates are merged.
func (d *DistBuilder) syncBestSolution(frontier []int, local map[int]SplitEntry) map[int]SplitEntry {
	out := make(map[int]SplitEntry, len(frontier))
	for _, nodeID := range frontier {
		out[nodeID] = local[nodeID]
	}
	return out
}

// updatePosition is SetNonDefaultPosition/UpdatePosition from
// original_source, folded into one pass since this reference
// FeatureMatrix has no row-major view to split the "non-default" and
// "default" passes across.
func (d *DistBuilder) updatePosition(matrix FeatureMatrix, positions PositionMap, nodeID int, split SplitEntry, left, right int) {
	d.Local.resetPosition(matrix, positions, nodeID, split, left, right)
}

// repairPositions walks every instance's position up to the nearest live
// (non-dead) ancestor after pruning, per original_source's dead-node
// position repair: a pruned node's descendants must not be left pointing
// at arena slots that no longer correspond to a reachable leaf.
func (d *DistBuilder) repairPositions(tree *RegTree, positions PositionMap) {
	for ridx := range positions {
		nid, excluded := positions.At(ridx)
		for nid != 0 && nid < len(tree.Dead) && tree.Dead[nid] {
			nid = tree.Nodes[nid].ParentID
		}
		positions[ridx] = Encode(nid, excluded)
	}
}
