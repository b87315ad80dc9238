package robustboost

import "testing"

func TestTrainParamInitIgnoresUnknownKeys(t *testing.T) {
	p := DefaultTrainParam()
	p.Init(map[string]string{
		"max_depth":   "3",
		"robust_eps":  "0.25",
		"not_a_field": "whatever",
	})
	if p.MaxDepth != 3 {
		t.Errorf("expected max_depth to be applied, got %d", p.MaxDepth)
	}
	if p.RobustEps != 0.25 {
		t.Errorf("expected robust_eps to be applied, got %v", p.RobustEps)
	}
}

func TestResolvedParallelAutoPrefersColumnWhenFeaturesAreFew(t *testing.T) {
	p := DefaultTrainParam()
	p.Parallel = ParallelAuto
	p.NumWorkers = 16

	if got := p.resolvedParallel(2); got != ParallelColumn {
		t.Errorf("expected few features with many workers to resolve to ParallelColumn, got %v", got)
	}
	if got := p.resolvedParallel(64); got != ParallelFeature {
		t.Errorf("expected many features to resolve to ParallelFeature, got %v", got)
	}
}
