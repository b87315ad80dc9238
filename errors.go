package robustboost

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal precondition/metadata classes of spec
// section 7. Numerical edges (insufficient hessian, loss_chg <= tiny) are
// not errors: they are candidate rejections handled inline in the scan.
var (
	ErrTreeNotEmpty       = errors.New("robustboost: tree is not empty at start of build")
	ErrNoFeaturesRetained = errors.New("robustboost: zero features retained after sampling")
	ErrShapeMismatch      = errors.New("robustboost: gradient vector and feature matrix disagree in shape")
	ErrIndexOutOfRange    = errors.New("robustboost: instance index out of bounds")
	ErrReduceMismatch     = errors.New("robustboost: inconsistent distributed reduce result")
	ErrWrongTreeCount     = errors.New("robustboost: invalid tree count for this update call")
)

// BuildError wraps a fatal error with the build phase it occurred in, so
// the outer booster can log where an Update call aborted.
type BuildError struct {
	Phase string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("robustboost: %s: %v", e.Phase, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
