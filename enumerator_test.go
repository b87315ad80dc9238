package robustboost

import (
	"testing"
)

func gp(g, h float32) GradientPair { return GradientPair{Grad: g, Hess: h} }

func TestEnumerateColumnConstantFeatureFindsNoSplit(t *testing.T) {
	col := []Entry{{InstanceID: 0, FValue: 5}, {InstanceID: 1, FValue: 5}, {InstanceID: 2, FValue: 5}}
	gpair := []GradientPair{gp(-1, 1), gp(1, 1), gp(0, 1)}

	eval := NewStandardEvaluator(1, 0)
	param := DefaultTrainParam()
	param.MinChildWeight = 0.5

	var total GradStats
	for _, g := range gpair {
		total.Add(g)
	}

	state := NewThreadScanState()
	EnumerateColumn(&state, col, gpair, 0, 0, eval, param, total)

	if state.Best.FeatureID >= 0 {
		t.Errorf("expected no split candidate for a constant feature, got %+v", state.Best)
	}
}

func TestEnumerateColumnSeparatedClustersZeroEpsFindsTheGap(t *testing.T) {
	col := []Entry{
		{InstanceID: 0, FValue: 1}, {InstanceID: 1, FValue: 1.1}, {InstanceID: 2, FValue: 1.2},
		{InstanceID: 3, FValue: 10}, {InstanceID: 4, FValue: 10.1}, {InstanceID: 5, FValue: 10.2},
	}
	gpair := []GradientPair{
		gp(-2, 1), gp(-2, 1), gp(-2, 1),
		gp(2, 1), gp(2, 1), gp(2, 1),
	}
	eval := NewStandardEvaluator(1, 0)
	param := DefaultTrainParam()
	param.MinChildWeight = 0.5
	param.RobustEps = 0

	var total GradStats
	for _, g := range gpair {
		total.Add(g)
	}

	state := NewThreadScanState()
	EnumerateColumn(&state, col, gpair, 0, 0, eval, param, total)

	if state.Best.FeatureID != 0 {
		t.Fatalf("expected a split on feature 0, got %+v", state.Best)
	}
	if state.Best.Threshold <= 1.2 || state.Best.Threshold > 10 {
		t.Errorf("expected the split threshold in the gap between clusters, got %v", state.Best.Threshold)
	}
}

func TestEnumerateColumnLargeEpsDegradesTheSplit(t *testing.T) {
	col := []Entry{
		{InstanceID: 0, FValue: 1}, {InstanceID: 1, FValue: 2}, {InstanceID: 2, FValue: 3},
		{InstanceID: 3, FValue: 7}, {InstanceID: 4, FValue: 8}, {InstanceID: 5, FValue: 9},
	}
	gpair := []GradientPair{
		gp(-2, 1), gp(-2, 1), gp(-2, 1),
		gp(2, 1), gp(2, 1), gp(2, 1),
	}
	eval := NewStandardEvaluator(1, 0)

	var total GradStats
	for _, g := range gpair {
		total.Add(g)
	}

	smallEps := DefaultTrainParam()
	smallEps.MinChildWeight = 0.5
	smallEps.RobustEps = 1

	bigEps := DefaultTrainParam()
	bigEps.MinChildWeight = 0.5
	bigEps.RobustEps = 6

	stateSmall := NewThreadScanState()
	EnumerateColumn(&stateSmall, col, gpair, 0, 0, eval, smallEps, total)

	stateBig := NewThreadScanState()
	EnumerateColumn(&stateBig, col, gpair, 0, 0, eval, bigEps, total)

	if stateSmall.Best.FeatureID < 0 {
		t.Fatalf("expected a split candidate with a small eps")
	}
	if stateBig.Best.FeatureID >= 0 && stateBig.Best.LossChg > stateSmall.Best.LossChg {
		t.Errorf("expected a larger eps to never report a better worst-case loss_chg than a smaller eps: small=%v big=%v", stateSmall.Best.LossChg, stateBig.Best.LossChg)
	}
}

func TestEnumerateColumnForwardAndBackwardAgree(t *testing.T) {
	col := []Entry{
		{InstanceID: 0, FValue: 1}, {InstanceID: 1, FValue: 1.1}, {InstanceID: 2, FValue: 1.2},
		{InstanceID: 3, FValue: 10}, {InstanceID: 4, FValue: 10.1}, {InstanceID: 5, FValue: 10.2},
	}
	gpair := []GradientPair{
		gp(-2, 1), gp(-2, 1), gp(-2, 1),
		gp(2, 1), gp(2, 1), gp(2, 1),
	}
	eval := NewStandardEvaluator(1, 0)
	param := DefaultTrainParam()
	param.MinChildWeight = 0.5
	param.RobustEps = 0

	var total GradStats
	for _, g := range gpair {
		total.Add(g)
	}

	forward := NewThreadScanState()
	EnumerateColumn(&forward, col, gpair, 0, 0, eval, param, total)

	backward := NewThreadScanState()
	EnumerateColumnBackward(&backward, col, gpair, 0, 0, eval, param, total)

	if forward.Best.FeatureID < 0 || backward.Best.FeatureID < 0 {
		t.Fatalf("expected both directions to find a split, got forward=%+v backward=%+v", forward.Best, backward.Best)
	}
	if forward.Best.LossChg != backward.Best.LossChg {
		t.Errorf("expected order-independent loss_chg, got forward=%v backward=%v", forward.Best.LossChg, backward.Best.LossChg)
	}
	// Each direction reports its own nearest data-adjacent boundary
	// (eta = fvalue - eps approached from that direction's side of the
	// gap), not a shared midpoint, so the two thresholds need not be
	// equal — only both inside the gap separating the two clusters.
	for _, got := range []float32{forward.Best.Threshold, backward.Best.Threshold} {
		if got <= 1.2 || got > 10 {
			t.Errorf("expected a threshold inside the gap between clusters, got %v", got)
		}
	}

	combined := NewThreadScanState()
	EnumerateColumn(&combined, col, gpair, 0, 0, eval, param, total)
	EnumerateColumnBackward(&combined, col, gpair, 0, 0, eval, param, total)
	if combined.Best.LossChg != forward.Best.LossChg {
		t.Errorf("expected combining both sweeps on one state to keep the same winner, got %v", combined.Best.LossChg)
	}
}

func TestEnumerateColumnExcludesFilteredInstances(t *testing.T) {
	col := []Entry{{InstanceID: 0, FValue: 1}, {InstanceID: 2, FValue: 9}}
	gpair := []GradientPair{gp(-1, 1), gp(0, -1), gp(1, 1)}

	eval := NewStandardEvaluator(1, 0)
	param := DefaultTrainParam()
	param.MinChildWeight = 0.5

	var total GradStats
	total.Add(gpair[0])
	total.Add(gpair[2])

	state := NewThreadScanState()
	EnumerateColumn(&state, col, gpair, 0, 0, eval, param, total)

	if state.Best.FeatureID != 0 {
		t.Fatalf("expected a split over the two retained instances, got %+v", state.Best)
	}
}
