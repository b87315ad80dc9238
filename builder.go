package robustboost

import (
	"math/rand"
	"sync"
)

// NodeEntry holds a frontier node's aggregated statistics and its best
// split candidate once FindSplit has run, mirroring original_source's
// NodeEntry (stats, root_gain, weight, best) rather than spreading those
// fields across several maps.
type NodeEntry struct {
	Stats    GradStats
	RootGain float32
	Weight   float32
	Best     SplitEntry
}

// Builder drives one tree's level-wise growth: InitData, InitNewNode,
// FindSplit, Commit, ResetPosition, Advance, repeated per level, per
// spec section 4.4. It generalizes ebl/tree.go's BuildTree from a
// recursive depth-first walk to a frontier queue so that every node at a
// level is enumerated together and the worker pool fans out across both
// nodes and features instead of just columns of one node at a time.
type Builder struct {
	Param TrainParam
	Eval  SplitEvaluator
	Pool  *Pool

	rng *rand.Rand
}

// NewBuilder returns a builder with its own worker pool sized to
// param.NumWorkers and a private RNG seeded from seed (row subsampling
// needs reproducible randomness across a distributed job's workers, so
// the seed is an explicit input rather than global math/rand state).
func NewBuilder(param TrainParam, eval SplitEvaluator, seed int64) *Builder {
	workers := param.NumWorkers
	if workers < 1 {
		workers = 1
	}
	return &Builder{
		Param: param,
		Eval:  eval,
		Pool:  NewPool(workers),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Build grows tree in place from its current state (a single root leaf
// for a fresh tree) against gpair and matrix, implementing the
// InitData/InitNewNode/FindSplit/Commit/ResetPosition/Advance cycle of
// spec section 4.4.
func (b *Builder) Build(tree *RegTree, matrix FeatureMatrix, gpair []GradientPair) error {
	if err := CheckInfo(matrix.NumRows(), gpair); err != nil {
		return err
	}
	positions := b.initData(matrix.NumRows(), gpair)

	nodeEntries := map[int]*NodeEntry{0: {}}
	frontier := []int{0}

	for depth := 0; depth < b.Param.MaxDepth && len(frontier) > 0; depth++ {
		b.initNewNode(frontier, positions, gpair, nodeEntries)

		features := b.sampleFeatures(matrix.NumCols())
		best, err := b.findSplit(frontier, features, matrix, gpair, positions, nodeEntries)
		if err != nil {
			return err
		}

		var next []int
		for _, nodeID := range frontier {
			entry := nodeEntries[nodeID]
			split := best[nodeID]
			if split.FeatureID < 0 || split.LossChg <= tiny {
				tree.SetLeafWeight(nodeID, entry.Weight*b.Param.LearningRate)
				continue
			}
			left, right := b.commit(tree, nodeID, entry, split)
			b.resetPosition(matrix, positions, nodeID, split, left, right)
			nodeEntries[left] = &NodeEntry{}
			nodeEntries[right] = &NodeEntry{}
			next = append(next, left, right)
		}
		frontier = next
	}

	// anything still on the frontier hit max depth; finalize as leaves.
	b.initNewNode(frontier, positions, gpair, nodeEntries)
	for _, nodeID := range frontier {
		tree.SetLeafWeight(nodeID, nodeEntries[nodeID].Weight*b.Param.LearningRate)
	}
	return nil
}

// initData applies row subsampling and excludes deleted (negative
// hessian) instances, returning a position map with every retained row
// at the root and every excluded row's flag already set.
func (b *Builder) initData(numRows int, gpair []GradientPair) PositionMap {
	positions := NewPositionMap(numRows)
	for ridx := 0; ridx < numRows; ridx++ {
		if gpair[ridx].Deleted() {
			positions.Exclude(ridx)
			continue
		}
		if b.Param.Subsample < 1 && b.rng.Float32() >= b.Param.Subsample {
			positions.Exclude(ridx)
		}
	}
	return positions
}

// initNewNode aggregates each frontier node's statistics from the
// current position map and derives its weight and root gain from the
// injected evaluator.
func (b *Builder) initNewNode(frontier []int, positions PositionMap, gpair []GradientPair, nodeEntries map[int]*NodeEntry) {
	for _, nodeID := range frontier {
		entry := nodeEntries[nodeID]
		entry.Stats.Clear()
	}
	for ridx := range positions {
		nid, excluded := positions.At(ridx)
		if excluded {
			continue
		}
		if entry, ok := nodeEntries[nid]; ok {
			entry.Stats.Add(gpair[ridx])
		}
	}
	for _, nodeID := range frontier {
		entry := nodeEntries[nodeID]
		entry.Weight = b.Eval.Weight(nodeID, entry.Stats)
		entry.RootGain = b.Eval.Score(nodeID, entry.Stats, entry.Weight)
	}
}

// sampleFeatures applies colsample_bylevel/colsample_bytree, returning
// the column ids to scan at this level. The two knobs are collapsed into
// one combined keep-probability: a tree-level mask would need to persist
// across levels, which the single-tree Build call has no state for, so
// this module applies their product per level instead.
func (b *Builder) sampleFeatures(numCols int) []int {
	prob := b.Param.ColSampleByTree * b.Param.ColSampleByLevel
	if prob >= 1 {
		out := make([]int, numCols)
		for i := range out {
			out[i] = i
		}
		return out
	}
	var out []int
	for fid := 0; fid < numCols; fid++ {
		if b.rng.Float32() < prob {
			out = append(out, fid)
		}
	}
	if len(out) == 0 && numCols > 0 {
		out = append(out, b.rng.Intn(numCols))
	}
	return out
}

// findSplit fans the (node, feature) scan grid out across the pool,
// following the robust-enumerator path for ParallelFeature and the
// plain nominal scan (ScanColumnPlain) for ParallelColumn, then reduces every
// feature's result into one SplitEntry per node via ReduceSplitEntries.
func (b *Builder) findSplit(frontier, features []int, matrix FeatureMatrix, gpair []GradientPair, positions PositionMap, nodeEntries map[int]*NodeEntry) (map[int]SplitEntry, error) {
	best := make(map[int]SplitEntry, len(frontier))
	var mu sync.Mutex
	for _, nodeID := range frontier {
		best[nodeID] = NewSplitEntry()
	}

	parallel := b.Param.resolvedParallel(len(features))

	for _, fid := range features {
		fid := fid
		col := matrix.Column(fid)
		start, step := normalizeDirection(col)
		ascending := materializeAscending(col, start, step)
		density := matrix.ColDensity(fid)

		for _, nodeID := range frontier {
			nodeID := nodeID
			b.Pool.AddTask(func() error {
				filtered := filterColumnForNode(ascending, positions, nodeID)
				if len(filtered) == 0 {
					return nil
				}
				var candidate SplitEntry
				if parallel == ParallelColumn {
					candidate = ScanColumnPlain(filtered, gpair, fid, nodeID, b.Eval, b.Param, nodeEntries[nodeID].Stats)
				} else {
					indicatorSame := filtered[0].FValue == filtered[len(filtered)-1].FValue
					state := NewThreadScanState()
					if b.Param.NeedForwardSearch(density, indicatorSame) {
						EnumerateColumn(&state, filtered, gpair, fid, nodeID, b.Eval, b.Param, nodeEntries[nodeID].Stats)
					}
					if b.Param.NeedBackwardSearch(density, indicatorSame) {
						EnumerateColumnBackward(&state, filtered, gpair, fid, nodeID, b.Eval, b.Param, nodeEntries[nodeID].Stats)
					}
					candidate = state.Best
				}
				mu.Lock()
				merged := ReduceSplitEntries(best[nodeID], candidate)
				best[nodeID] = merged
				mu.Unlock()
				return nil
			})
		}
	}
	if err := b.Pool.WaitAll(); err != nil {
		return nil, &BuildError{Phase: "FindSplit", Err: err}
	}
	return best, nil
}

// commit materializes a node's winning split into the tree arena,
// delegates constraint bookkeeping to the evaluator, and returns the new
// children's ids.
func (b *Builder) commit(tree *RegTree, nodeID int, entry *NodeEntry, split SplitEntry) (left, right int) {
	lossChg := split.LossChg
	left, right = tree.AddChildren(nodeID, split.FeatureID, split.Threshold, split.DefaultLeft, lossChg, entry.Weight, entry.Stats.SumHess)
	b.Eval.AddSplit(nodeID, left, right, split.FeatureID, 0, 0)
	return left, right
}

// resetPosition re-homes every row currently at nodeID to its new left
// or right child according to split, using a full column scan rather
// than original_source's in-place bitmap update: the reference
// FeatureMatrix here has no row-major view, so the cheapest correct way
// to reclassify is to walk the split feature's own column once more and
// default everything else left or right per the split's DefaultLeft
// flag.
func (b *Builder) resetPosition(matrix FeatureMatrix, positions PositionMap, nodeID int, split SplitEntry, left, right int) {
	for ridx := range positions {
		nid, excluded := positions.At(ridx)
		if nid != nodeID {
			continue
		}
		target := right
		if split.DefaultLeft {
			target = left
		}
		positions[ridx] = Encode(target, excluded)
	}
	for _, e := range matrix.Column(split.FeatureID) {
		nid, excluded := positions.At(e.InstanceID)
		if nid != left && nid != right {
			continue
		}
		goLeft := e.FValue < split.Threshold
		target := right
		if goLeft {
			target = left
		}
		positions[e.InstanceID] = Encode(target, excluded)
	}
}

func materializeAscending(col []Entry, start, step int) []Entry {
	if step == 1 {
		return col
	}
	out := make([]Entry, len(col))
	idx := start
	for i := range out {
		out[i] = col[idx]
		idx += step
	}
	return out
}

func filterColumnForNode(col []Entry, positions PositionMap, nodeID int) []Entry {
	out := make([]Entry, 0, len(col))
	for _, e := range col {
		nid, excluded := positions.At(e.InstanceID)
		if excluded || nid != nodeID {
			continue
		}
		out = append(out, e)
	}
	return out
}
