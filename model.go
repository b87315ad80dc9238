package robustboost

import (
	"encoding/json"
	"os"
)

// Model is the persisted state of a boosted ensemble: spec section 6.4's
// "Persisted state" surface. Saving/loading follows ebl/ebooster.go's
// Save/LoadModel shape but returns errors instead of panicking through
// HandleError, matching poisson_legacy's error-returning idiom, which is
// the one this module's ambient stack follows throughout.
type Model struct {
	Trees        []*RegTree
	Param        TrainParam
	LearningRate float32
}

// NewModel returns an empty model configured with param.
func NewModel(param TrainParam) *Model {
	return &Model{Param: param, LearningRate: param.LearningRate}
}

// Predict sums every tree's contribution for row, indexed by feature id.
func (m *Model) Predict(row []float32) float32 {
	var sum float32
	for _, tree := range m.Trees {
		sum += tree.Predict(row)
	}
	return sum
}

// Save writes the model as indented JSON to filename.
func (m *Model) Save(filename string) error {
	dest, err := os.Create(filename)
	if err != nil {
		return &BuildError{Phase: "Save", Err: err}
	}
	defer dest.Close()

	encoder := json.NewEncoder(dest)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return &BuildError{Phase: "Save", Err: err}
	}
	return nil
}

// LoadModel reads a model previously written by Save.
func LoadModel(filename string) (*Model, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, &BuildError{Phase: "LoadModel", Err: err}
	}
	defer source.Close()

	var m Model
	if err := json.NewDecoder(source).Decode(&m); err != nil {
		return nil, &BuildError{Phase: "LoadModel", Err: err}
	}
	return &m, nil
}
