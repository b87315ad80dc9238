package robustboost

import "fmt"

// ParallelOption selects how a level's column scans are distributed
// across workers (spec section 6.2, "parallel_option").
type ParallelOption int

const (
	// ParallelFeature scans different features on different workers
	// (the default; the robust uncertainty branches are only available
	// here).
	ParallelFeature ParallelOption = 0
	// ParallelColumn runs the plain nominal scan (ScanColumnPlain) over
	// each node's whole column; the column is not split into row chunks
	// and no prefix scan stitches results. Does not carry the
	// eps-uncertainty queues (spec section 5).
	ParallelColumn ParallelOption = 1
	// ParallelAuto resolves to ParallelColumn when 2*numFeatures is below
	// the worker count, ParallelFeature otherwise.
	ParallelAuto ParallelOption = 2
)

// TrainParam collects the configuration options of spec section 6.2.
// Constructed as a plain struct literal, matching the teacher's
// EBoosterParams/TreeBuildParams style (golang/poisson_legacy/types.go):
// no flags/config library is pulled into the core, only into cmd/.
type TrainParam struct {
	LearningRate    float32
	MaxDepth        int
	MinChildWeight  float32
	Subsample       float32
	ColSampleByTree float32
	ColSampleByLevel float32
	RobustEps       float32
	Verbose         bool
	Parallel        ParallelOption
	SplitEvaluator  string

	// NumWorkers is the fixed worker-pool size used at builder
	// construction (values below 1 mean 1). It is not derived from the
	// hardware; DefaultTrainParam sets it to 1.
	NumWorkers int
}

// DefaultTrainParam returns a TrainParam with the conventional defaults:
// no robust perturbation, full column/row sampling, single-tree learning
// rate 0.3, depth 6.
func DefaultTrainParam() TrainParam {
	return TrainParam{
		LearningRate:     0.3,
		MaxDepth:         6,
		MinChildWeight:   1,
		Subsample:        1,
		ColSampleByTree:  1,
		ColSampleByLevel: 1,
		RobustEps:        0,
		Parallel:         ParallelAuto,
		NumWorkers:       1,
	}
}

// Init applies a set of key-value options onto p, ignoring unknown keys,
// per the "init(params)" contract of spec section 6.1.
func (p *TrainParam) Init(options map[string]string) {
	for k, v := range options {
		switch k {
		case "learning_rate", "eta":
			setFloat32(&p.LearningRate, v)
		case "max_depth":
			setInt(&p.MaxDepth, v)
		case "min_child_weight":
			setFloat32(&p.MinChildWeight, v)
		case "subsample":
			setFloat32(&p.Subsample, v)
		case "colsample_bytree":
			setFloat32(&p.ColSampleByTree, v)
		case "colsample_bylevel":
			setFloat32(&p.ColSampleByLevel, v)
		case "robust_eps":
			setFloat32(&p.RobustEps, v)
		case "robust_training_verbose":
			p.Verbose = v == "1" || v == "true"
		case "parallel_option":
			switch v {
			case "0":
				p.Parallel = ParallelFeature
			case "1":
				p.Parallel = ParallelColumn
			default:
				p.Parallel = ParallelAuto
			}
		case "split_evaluator":
			p.SplitEvaluator = v
		}
		// unrecognized keys are ignored, per spec section 6.1
	}
}

func setFloat32(dst *float32, v string) {
	var f float64
	if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
		*dst = float32(f)
	}
}

func setInt(dst *int, v string) {
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
		*dst = n
	}
}

// resolvedParallel returns the effective parallel option for a level with
// the given number of candidate features, resolving ParallelAuto.
func (p TrainParam) resolvedParallel(numFeatures int) ParallelOption {
	if p.Parallel != ParallelAuto {
		return p.Parallel
	}
	if 2*numFeatures < p.NumWorkers {
		return ParallelColumn
	}
	return ParallelFeature
}

// NeedForwardSearch reports whether a forward (ascending, d=+1) sweep
// should run for a column with the given density and endpoint-equality
// flag. A column whose first and last entries are equal (constant
// column) never needs more than one direction.
func (p TrainParam) NeedForwardSearch(colDensity float64, indicatorSame bool) bool {
	return colDensity > 0
}

// NeedBackwardSearch reports whether a backward (descending, d=-1) sweep
// should run: only for a non-constant column with missing values
// (density below 1), so that both directions are tried for where those
// instances go. A fully dense column has no missing values and runs the
// forward sweep alone.
func (p TrainParam) NeedBackwardSearch(colDensity float64, indicatorSame bool) bool {
	return colDensity < 1.0 && !indicatorSame
}
