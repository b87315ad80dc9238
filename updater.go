package robustboost

import "log"

// Updater is the registration surface spec section 6.1 describes: a
// named tree-growing strategy, configured by key-value options, applied
// to one boosting round's gradient pairs against a fixed feature matrix.
// RobustColMaker and RobustDistColMaker are the two implementations this
// module registers.
type Updater interface {
	Init(options map[string]string)
	Update(gpair []GradientPair, matrix FeatureMatrix, trees []*RegTree) error
}

var registry = map[string]func() Updater{
	"robust_grow_colmaker": func() Updater { return NewRobustColMaker() },
	"robust_distcol":       func() Updater { return NewRobustDistColMaker(LocalReducer{}, nil, 0) },
}

// NewUpdater looks up a registered updater by name, returning nil if the
// name is unknown (callers are expected to treat that as a
// configuration error at a higher level, the way ebooster.go's mode
// dispatch table does for unrecognized CLI modes).
func NewUpdater(name string) Updater {
	factory, ok := registry[name]
	if !ok {
		return nil
	}
	return factory()
}

// RobustColMaker is the "robust_grow_colmaker" updater: one Builder per
// Update call, one tree grown per entry in trees.
type RobustColMaker struct {
	param TrainParam
	eval  SplitEvaluator
	seed  int64
}

func NewRobustColMaker() *RobustColMaker {
	return &RobustColMaker{param: DefaultTrainParam(), eval: NewStandardEvaluator(1, 0)}
}

func (u *RobustColMaker) Init(options map[string]string) {
	u.param.Init(options)
}

// Update grows every tree in trees against gpair, temporarily dividing
// the configured learning rate by len(trees) so that a multi-tree
// boosting round (as used by some multiclass/multi-output objectives)
// doesn't overshoot, restoring it before returning.
func (u *RobustColMaker) Update(gpair []GradientPair, matrix FeatureMatrix, trees []*RegTree) error {
	if len(trees) == 0 {
		return &BuildError{Phase: "Update", Err: ErrWrongTreeCount}
	}
	saved := u.param.LearningRate
	u.param.LearningRate = saved / float32(len(trees))
	defer func() { u.param.LearningRate = saved }()

	for _, tree := range trees {
		b := NewBuilder(u.param, u.eval.HostClone(), u.seed)
		u.seed++
		if u.param.Verbose {
			log.Printf("robustboost: growing tree with %d rows, eps=%v", matrix.NumRows(), u.param.RobustEps)
		}
		if err := b.Build(tree, matrix, gpair); err != nil {
			return err
		}
	}
	return nil
}

// RobustDistColMaker is the "robust_distcol" updater: same per-call
// contract as RobustColMaker, but builds through a DistBuilder and
// enforces exactly one tree per Update call (spec section 6.3).
type RobustDistColMaker struct {
	param   TrainParam
	eval    SplitEvaluator
	reduce  Reducer
	prune   Pruner
	workerID int
	seed    int64
}

func NewRobustDistColMaker(reduce Reducer, prune Pruner, workerID int) *RobustDistColMaker {
	return &RobustDistColMaker{
		param:    DefaultTrainParam(),
		eval:     NewStandardEvaluator(1, 0),
		reduce:   reduce,
		prune:    prune,
		workerID: workerID,
	}
}

func (u *RobustDistColMaker) Init(options map[string]string) {
	u.param.Init(options)
}

func (u *RobustDistColMaker) Update(gpair []GradientPair, matrix FeatureMatrix, trees []*RegTree) error {
	if len(trees) != 1 {
		return &BuildError{Phase: "DistUpdate", Err: ErrWrongTreeCount}
	}
	local := NewBuilder(u.param, u.eval.HostClone(), u.seed)
	u.seed++
	d := NewDistBuilder(local, u.reduce, u.prune, u.workerID)
	if u.param.Verbose {
		log.Printf("robustboost: worker %d growing distributed tree, eps=%v", u.workerID, u.param.RobustEps)
	}
	return d.Build(trees[0], matrix, gpair)
}
