package robustboost

import "gonum.org/v1/gonum/floats/scalar"

// GradientPair is the first- and second-order loss derivative for one
// training instance. A negative Hess marks the instance as deleted or
// filtered for the current tree: excluded from every accumulator and
// never considered for a split.
type GradientPair struct {
	Grad float32
	Hess float32
}

// Deleted reports whether this instance is filtered for the current tree.
func (g GradientPair) Deleted() bool {
	return g.Hess < 0
}

// GradStats is a commutative accumulator over (sum_grad, sum_hess). It is
// the algebraic monoid every scan state and node entry is built from.
type GradStats struct {
	SumGrad float32
	SumHess float32
}

// Add folds one instance's gradient pair into the accumulator.
func (s *GradStats) Add(gp GradientPair) {
	s.SumGrad += gp.Grad
	s.SumHess += gp.Hess
}

// Subtract removes one instance's gradient pair from the accumulator.
// Floating-point drift can push SumHess slightly negative; callers that
// need a hard sufficiency check should use Sufficient, not a sign check.
func (s *GradStats) Subtract(gp GradientPair) {
	s.SumGrad -= gp.Grad
	s.SumHess -= gp.Hess
}

// AddStats folds another accumulator's totals into this one.
func (s *GradStats) AddStats(o GradStats) {
	s.SumGrad += o.SumGrad
	s.SumHess += o.SumHess
}

// SubtractStats removes another accumulator's totals from this one.
func (s *GradStats) SubtractStats(o GradStats) {
	s.SumGrad -= o.SumGrad
	s.SumHess -= o.SumHess
}

// Union sets s to the union (here equivalent to addition) of a and b.
func (s *GradStats) Union(a, b GradStats) {
	s.SumGrad = a.SumGrad + b.SumGrad
	s.SumHess = a.SumHess + b.SumHess
}

// SetSubtract sets s to a - b.
func (s *GradStats) SetSubtract(a, b GradStats) {
	s.SumGrad = a.SumGrad - b.SumGrad
	s.SumHess = a.SumHess - b.SumHess
}

// Clear resets the accumulator to zero.
func (s *GradStats) Clear() {
	s.SumGrad = 0
	s.SumHess = 0
}

const tiny = 1e-6

// Empty reports whether no (or negligible) hessian mass has been
// accumulated yet.
func (s GradStats) Empty() bool {
	return scalar.EqualWithinAbsOrRel(float64(s.SumHess), 0, tiny, tiny)
}

// Sufficient reports whether this accumulator carries enough hessian mass
// to be an admissible child. No tolerance: a candidate exactly at the
// threshold is admissible.
func (s GradStats) Sufficient(minChildWeight float32) bool {
	return s.SumHess >= minChildWeight
}

// CheckInfo validates that the gradient vector's length matches the
// number of rows the feature matrix declares before any tree is built.
// Failure is fatal: the outer booster must not attempt to grow a tree
// against a matrix/gradient pair that disagree in shape.
func CheckInfo(numRows int, gpair []GradientPair) error {
	if len(gpair) != numRows {
		return &BuildError{Phase: "CheckInfo", Err: ErrShapeMismatch}
	}
	return nil
}
