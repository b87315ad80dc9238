package robustboost

import (
	"log"
	"math"
)

// childStats bundles the two children's stats for one split candidate.
type childStats struct {
	left, right GradStats
}

// EnumerateColumn sweeps one feature column, ascending (d=+1), for one
// frontier node, updating state.Best with the best robust split found in
// this column, tie-broken against whatever state.Best already holds from
// earlier columns or an earlier call to EnumerateColumnBackward on the
// same state. It is the engine named in spec section 4.3: the only place
// in this module where a close translation of original_source's
// EnumerateSplit is the right call, since the numeric behavior of the
// adversarial eps-band sweep is the spec's whole point and a
// reimplementation from a paraphrase would drift from it.
//
// col must already be materialized ascending (callers get this from
// normalizeDirection plus a start/step walk); gpair is indexed by
// InstanceID. parentStats is the node's total statistics, used as the
// fixed total every candidate's right side is computed against.
func EnumerateColumn(state *ThreadScanState, col []Entry, gpair []GradientPair, fid, nodeID int, eval SplitEvaluator, param TrainParam, parentStats GradStats) {
	sweep(state, col, gpair, fid, nodeID, eval, param, parentStats, false)
}

// EnumerateColumnBackward sweeps the same column descending (d=-1), per
// spec section 4.3's direction parameter and section 4.4's "optionally
// invoke forward and/or backward enumeration". It is implemented as the
// forward sweep run over the column with every feature value negated
// (which turns ascending-in-v into ascending-in--v, i.e. descending-in-v)
// and its result folded back with the sides and the sign of the
// threshold swapped, rather than as a second hand-written pass: the
// uncertainty-band bookkeeping is exactly the tricky part spec section 2
// calls out, and duplicating it by hand is how the two directions drift
// apart.
func EnumerateColumnBackward(state *ThreadScanState, col []Entry, gpair []GradientPair, fid, nodeID int, eval SplitEvaluator, param TrainParam, parentStats GradStats) {
	neg := negateDescending(col)
	sweep(state, neg, gpair, fid, nodeID, eval, param, parentStats, true)
}

func negateDescending(col []Entry) []Entry {
	out := make([]Entry, len(col))
	n := len(col)
	for i, e := range col {
		out[n-1-i] = Entry{InstanceID: e.InstanceID, FValue: -e.FValue}
	}
	return out
}

// sweep is the shared ascending scan. When backward is true, col has
// already been value-negated and reversed by the caller, so "left" here
// means "-v < eta'", i.e. geometrically the right side of -eta' in the
// caller's original value space; foldBoundary undoes that before
// touching state.Best.
func sweep(state *ThreadScanState, col []Entry, gpair []GradientPair, fid, nodeID int, eval SplitEvaluator, param TrainParam, parentStats GradStats, backward bool) {
	state.Reset()
	n := len(col)
	if n == 0 {
		return
	}
	state.FirstFValue = col[0].FValue
	state.LastFValue = col[n-1].FValue

	eps := param.RobustEps
	parentWeight := eval.Weight(nodeID, parentStats)
	parentGain := eval.Score(nodeID, parentStats, parentWeight)

	colBest := NewSplitEntry()
	haveBoundary := false

	if param.Verbose {
		dir := "forward"
		if backward {
			dir = "backward"
		}
		log.Printf("robustboost: enumerator fid=%d node=%d dir=%s n=%d eps=%v parentGain=%v", fid, nodeID, dir, n, eps, parentGain)
	}

	var lastValue float32
	for k := 0; k < n; k++ {
		entry := col[k]
		v := entry.FValue

		// A transition (v != lastValue) is the only place a candidate
		// threshold can legitimately fall: tied values have no feature
		// value between them to split on, so evaluating mid-tie would
		// score a partition no real threshold produces. eta is computed
		// from the entry about to be absorbed (not yet drained in), per
		// spec section 4.3 step 2 — draining runs against this same eta
		// immediately before scoring, so the candidate's loss_chg and its
		// reported threshold always describe the same partition.
		if k > 0 && v != lastValue {
			eta := v - eps
			drainUncRight(state, gpair, eta)
			drainUnc(state, gpair, eta, eps)

			if evaluateCandidates(state, eval, param, nodeID, fid, parentStats, parentGain, eta, &colBest) {
				colBest.UpdateSplitValue(eta)
				haveBoundary = true
				if param.Verbose {
					log.Printf("robustboost: enumerator fid=%d node=%d dir=%s eta=%v window=[%v,%v] loss_chg=%v default_left=%v", fid, nodeID, dirName(backward), eta, eta-eps, eta+eps, colBest.LossChg, colBest.DefaultLeft)
				}
			}
		}

		state.Stats.Add(gpair[entry.InstanceID])
		state.DataUncRight.push(entry)
		state.StatsUncRight.Add(gpair[entry.InstanceID])
		state.DataUnc.push(entry)
		state.StatsUnc.Add(gpair[entry.InstanceID])
		lastValue = v
	}

	// closing pass: drain every remaining entry as if eta were +inf, so
	// the present values are fully resolved into StatsLeft/StatsCLeft, and
	// evaluate the "everything present goes left" candidate at spec
	// section 4.3's boundary one step past the last value in the scan
	// direction, last_fvalue + sign(d)*(|last_fvalue| + tiny + eps) — here
	// sign(d) is always +1 since sweep always runs in its own local
	// ascending coordinate (EnumerateColumnBackward negates the column
	// before calling sweep and foldBoundary negates the result back, so
	// the offset ends up on the correct side in the caller's space).
	drainUncRight(state, gpair, float32(math.Inf(1)))
	drainUnc(state, gpair, float32(math.Inf(1)), eps)
	closingEta := lastValue + float32(math.Abs(float64(lastValue))) + tiny + eps
	if evaluateCandidates(state, eval, param, nodeID, fid, parentStats, parentGain, closingEta, &colBest) {
		colBest.UpdateSplitValue(closingEta)
		haveBoundary = true
	}

	if !haveBoundary {
		return
	}
	foldBoundary(state, colBest, backward)
}

func dirName(backward bool) string {
	if backward {
		return "backward"
	}
	return "forward"
}

// foldBoundary merges a column's winning candidate into state.Best,
// undoing the negate-and-reverse transform EnumerateColumnBackward
// applied before the threshold and default-direction flag are meaningful
// in the caller's original value space. A backward candidate sends
// v > -eta' to one side and v <= -eta' to the other, so its threshold
// becomes the next float32 above -eta' to keep "v < threshold goes left"
// describing the same partition.
func foldBoundary(state *ThreadScanState, colBest SplitEntry, backward bool) {
	if backward {
		colBest.Threshold = math.Nextafter32(-colBest.Threshold, float32(math.Inf(1)))
		colBest.DefaultLeft = !colBest.DefaultLeft
	}
	state.Best.UpdateFrom(colBest)
}

// drainUncRight moves every entry at the head of DataUncRight whose value
// is strictly below eta out of the uncertain-right band and into
// StatsLeft: once eta has advanced past it, an adversarial +eps shift
// can no longer put it back on the right side of the split, so it is
// certainly left (spec section 4.3 steps 2-3).
func drainUncRight(state *ThreadScanState, gpair []GradientPair, eta float32) {
	for !state.DataUncRight.empty() && state.DataUncRight.front().FValue < eta {
		old := state.DataUncRight.front()
		state.DataUncRight.pop()
		state.StatsUncRight.Subtract(gpair[old.InstanceID])
		state.StatsLeft.Add(gpair[old.InstanceID])
	}
}

// drainUnc moves every entry at the head of DataUnc whose value is below
// eta-eps out of the two-sided uncertainty band and into StatsCLeft: it
// is far enough behind eta that no eps-sized adversarial shift reaches
// it from either direction (spec section 4.3 step 4).
func drainUnc(state *ThreadScanState, gpair []GradientPair, eta, eps float32) {
	bound := eta - eps
	for !state.DataUnc.empty() && state.DataUnc.front().FValue < bound {
		old := state.DataUnc.front()
		state.DataUnc.pop()
		state.StatsUnc.Subtract(gpair[old.InstanceID])
		state.StatsCLeft.Add(gpair[old.InstanceID])
		state.CLeftCounter++
	}
}

// evaluateCandidates scores the four adversarial candidates at the
// current sweep position (threshold implied by state) and folds the
// worst (minimum loss_chg) of the ones with sufficient children into
// best, tagged with fid and threshold, so that equal-loss candidates are
// tie-broken on their real threshold.
//
// Nominal uses StatsLeft, the band already resolved certainly-left of
// eta (spec section 4.3 step 6). Pushed uses StatsCLeft, the even more
// conservative band outside the full eps-band on either side: the
// adversary pushes everything still pending resolution to the right.
// Pulled adds StatsUncRight back onto the nominal left, the adversary's
// opposite move of pulling the pending uncertain-right band in. Swap
// combines both: push on the inner band, pull on the outer one.
func evaluateCandidates(state *ThreadScanState, eval SplitEvaluator, param TrainParam, nodeID, fid int, parentStats GradStats, parentGain, threshold float32, best *SplitEntry) bool {
	total := parentStats

	nominalLeft := state.StatsLeft
	pulledLeft := addStats(state.StatsLeft, state.StatsUncRight)
	pushedLeft := state.StatsCLeft
	swapLeft := addStats(state.StatsCLeft, state.StatsUncRight)

	candidates := [4]childStats{
		{nominalLeft, subStats(total, nominalLeft)},
		{pushedLeft, subStats(total, pushedLeft)},
		{pulledLeft, subStats(total, pulledLeft)},
		{swapLeft, subStats(total, swapLeft)},
	}

	worst := float32(math.Inf(1))
	found := false
	var defaultLeft bool
	for _, c := range candidates {
		if !c.left.Sufficient(param.MinChildWeight) || !c.right.Sufficient(param.MinChildWeight) {
			continue
		}
		score := eval.SplitScore(nodeID, fid, c.left, c.right)
		lossChg := score - parentGain
		if !found || lossChg < worst {
			worst = lossChg
			found = true
			defaultLeft = c.left.SumHess >= c.right.SumHess
		}
	}
	if !found {
		return false
	}
	return best.Update(worst, fid, threshold, defaultLeft)
}

func addStats(a, b GradStats) GradStats {
	var r GradStats
	r.Union(a, b)
	return r
}

func subStats(a, b GradStats) GradStats {
	var r GradStats
	r.SetSubtract(a, b)
	return r
}

// ScanColumnPlain is the non-robust fallback sweep used when
// param.resolvedParallel selects ParallelColumn: a single nominal
// left/right prefix scan with no eps-uncertainty bands, matching
// original_source's ordinary (non-robust) colmaker enumeration and spec
// section 4.3's "within-column-parallel mode has no uncertainty
// branches" note. Builder.findSplit calls it once per (feature, node)
// over the node's whole sorted column; the column is not split into row
// chunks and there is no prefix-scan stitching across workers.
func ScanColumnPlain(col []Entry, gpair []GradientPair, fid, nodeID int, eval SplitEvaluator, param TrainParam, parentStats GradStats) SplitEntry {
	best := NewSplitEntry()
	n := len(col)
	if n == 0 {
		return best
	}
	parentWeight := eval.Weight(nodeID, parentStats)
	parentGain := eval.Score(nodeID, parentStats, parentWeight)

	var left GradStats
	var lastValue float32
	for k := 0; k < n; k++ {
		entry := col[k]
		v := entry.FValue
		if k > 0 && v != lastValue {
			right := subStats(parentStats, left)
			if left.Sufficient(param.MinChildWeight) && right.Sufficient(param.MinChildWeight) {
				score := eval.SplitScore(nodeID, fid, left, right)
				lossChg := score - parentGain
				defaultLeft := left.SumHess >= right.SumHess
				midpoint := (lastValue + v) / 2
				best.Update(lossChg, fid, midpoint, defaultLeft)
			}
		}
		left.Add(gpair[entry.InstanceID])
		lastValue = v
	}
	return best
}
