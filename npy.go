package robustboost

import (
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// LoadColumnMatrixNpy loads a row-major feature matrix from a .npy file
// and returns it as a DenseColumnMatrix, following ebl/ematrix.go's
// ReadNpy but returning an error instead of calling log.Fatal, and
// converting gonum's float64 mat.Dense into this module's float32
// column-oriented layout.
func LoadColumnMatrixNpy(fileName string) (*DenseColumnMatrix, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, &BuildError{Phase: "LoadColumnMatrixNpy", Err: err}
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, &BuildError{Phase: "LoadColumnMatrixNpy", Err: err}
	}

	var dense mat.Dense
	if err := r.Read(&dense); err != nil {
		return nil, &BuildError{Phase: "LoadColumnMatrixNpy", Err: err}
	}

	h, w := dense.Dims()
	rows := make([][]float32, h)
	for i := 0; i < h; i++ {
		row := make([]float32, w)
		for j := 0; j < w; j++ {
			row[j] = float32(dense.At(i, j))
		}
		rows[i] = row
	}
	return NewDenseColumnMatrix(rows), nil
}

// LoadGradientPairsNpy loads an (n, 2) .npy file of [grad, hess] rows as
// GradientPairs, the companion loader to LoadColumnMatrixNpy for feeding
// a saved boosting round's gradients back into an Updater.
func LoadGradientPairsNpy(fileName string) ([]GradientPair, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, &BuildError{Phase: "LoadGradientPairsNpy", Err: err}
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, &BuildError{Phase: "LoadGradientPairsNpy", Err: err}
	}

	var dense mat.Dense
	if err := r.Read(&dense); err != nil {
		return nil, &BuildError{Phase: "LoadGradientPairsNpy", Err: err}
	}

	h, w := dense.Dims()
	if w != 2 {
		return nil, &BuildError{Phase: "LoadGradientPairsNpy", Err: ErrShapeMismatch}
	}
	out := make([]GradientPair, h)
	for i := 0; i < h; i++ {
		out[i] = GradientPair{Grad: float32(dense.At(i, 0)), Hess: float32(dense.At(i, 1))}
	}
	return out, nil
}
