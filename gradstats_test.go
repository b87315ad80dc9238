package robustboost

import "testing"

func TestGradStatsAddSubtractInverse(t *testing.T) {
	var s GradStats
	gp := GradientPair{Grad: 1.5, Hess: 2.0}
	s.Add(gp)
	s.Subtract(gp)
	if !s.Empty() {
		t.Errorf("expected empty stats after add then subtract, got %+v", s)
	}
}

func TestGradStatsUnionIsCommutative(t *testing.T) {
	a := GradStats{SumGrad: 1, SumHess: 2}
	b := GradStats{SumGrad: 3, SumHess: 4}

	var ab, ba GradStats
	ab.Union(a, b)
	ba.Union(b, a)

	if ab != ba {
		t.Errorf("union not commutative: %+v vs %+v", ab, ba)
	}
}

func TestGradStatsSetSubtractUndoesUnion(t *testing.T) {
	a := GradStats{SumGrad: 5, SumHess: 6}
	b := GradStats{SumGrad: 1, SumHess: 2}

	var total, back GradStats
	total.Union(a, b)
	back.SetSubtract(total, b)

	if back != a {
		t.Errorf("expected %+v, got %+v", a, back)
	}
}

func TestGradStatsSufficient(t *testing.T) {
	s := GradStats{SumHess: 1}
	if !s.Sufficient(1) {
		t.Errorf("expected stats with hess 1 to be sufficient for min_child_weight 1")
	}
	if s.Sufficient(2) {
		t.Errorf("expected stats with hess 1 to be insufficient for min_child_weight 2")
	}
}

func TestCheckInfoShapeMismatch(t *testing.T) {
	if err := CheckInfo(3, make([]GradientPair, 2)); err == nil {
		t.Errorf("expected an error for mismatched row/gpair lengths")
	}
	if err := CheckInfo(2, make([]GradientPair, 2)); err != nil {
		t.Errorf("unexpected error for matching lengths: %v", err)
	}
}
