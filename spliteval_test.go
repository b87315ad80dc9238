package robustboost

import "testing"

func TestStandardEvaluatorWeightSignFollowsGradient(t *testing.T) {
	e := NewStandardEvaluator(1, 0)
	negGrad := e.Weight(0, GradStats{SumGrad: -4, SumHess: 2})
	posGrad := e.Weight(0, GradStats{SumGrad: 4, SumHess: 2})
	if negGrad <= 0 || posGrad >= 0 {
		t.Errorf("expected weight to have the opposite sign of sum_grad, got negGrad=%v posGrad=%v", negGrad, posGrad)
	}
}

func TestStandardEvaluatorScoreIsNonNegative(t *testing.T) {
	e := NewStandardEvaluator(1, 0)
	stats := GradStats{SumGrad: 3, SumHess: 5}
	w := e.Weight(0, stats)
	score := e.Score(0, stats, w)
	if score < 0 {
		t.Errorf("expected a non-negative node score (this implementation reports the gain), got %v", score)
	}
}

func TestStandardEvaluatorL1ThresholdZeroesSmallGradients(t *testing.T) {
	e := NewStandardEvaluator(1, 10)
	w := e.Weight(0, GradStats{SumGrad: 5, SumHess: 2})
	if w != 0 {
		t.Errorf("expected alpha=10 to threshold a sum_grad of 5 to zero, got weight %v", w)
	}
}

func TestHostCloneDropsHistory(t *testing.T) {
	e := NewStandardEvaluator(2, 3)
	e.AddSplit(0, 1, 2, 0, 0.1, -0.1)

	clone := e.HostClone().(*StandardEvaluator)
	if len(clone.splits) != 0 {
		t.Errorf("expected HostClone to start with no recorded split history")
	}
	if clone.RegLambda != 2 || clone.RegAlpha != 3 {
		t.Errorf("expected HostClone to preserve regularization config")
	}
}
