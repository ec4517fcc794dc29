// Package model provides binary classifiers behind a single Adapter
// interface so that the comparison harness can train and score every
// algorithm through the same two calls.
//
// An Adapter is a reusable factory: Fit never mutates the adapter and
// returns a fresh Trained artifact each time, so the same adapter can
// be fitted against different partitions concurrently.
package model

import (
	"gonum.org/v1/gonum/mat"

	coremodel "github.com/tksato/wdbc/core/model"
	"github.com/tksato/wdbc/pkg/errors"
)

// Trained is an immutable fitted model. PredictScore returns one
// malignancy score per input row, in row order, in [0, 1].
type Trained interface {
	PredictScore(X mat.Matrix) (*mat.VecDense, error)
}

var _ coremodel.Scorer = (Trained)(nil)

// Adapter trains a classifier on an encoded feature matrix and label
// vector. y must be a column vector of 0/1 values aligned with X rows.
type Adapter interface {
	// Name returns a stable identifier used in reports and logs.
	Name() string

	Fit(X, y mat.Matrix) (Trained, error)
}

// DefaultAdapters returns the four comparison models with their
// default hyperparameters, all seeded from the given value.
func DefaultAdapters(seed int64) []Adapter {
	return []Adapter{
		NewRandomForest(RandomForestParams{Seed: seed}),
		NewGradientBoosting(GradientBoostingParams{Seed: seed}),
		NewXGBoost(XGBoostParams{Seed: seed}),
		NewMLP(MLPParams{Seed: seed}),
	}
}

// checkTrainingData validates the Fit contract shared by all adapters
// and extracts the label column as a plain slice.
func checkTrainingData(op string, X, y mat.Matrix) (nSamples, nFeatures int, targets []float64, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, nil, errors.NewEmptyPartitionError(op, "train")
	}

	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, 0, nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != nSamples {
		return 0, 0, nil, errors.NewDimensionError(op, nSamples, yRows, 0)
	}

	targets = make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return 0, 0, nil, errors.NewValueError(op, "labels must be encoded as 0 or 1")
		}
		targets[i] = v
	}
	return nSamples, nFeatures, targets, nil
}

// checkPredictData validates a prediction matrix against the feature
// count the model was trained with.
func checkPredictData(op string, X mat.Matrix, nFeatures int) (int, error) {
	rows, cols := X.Dims()
	if rows == 0 {
		return 0, errors.NewEmptyPartitionError(op, "test")
	}
	if cols != nFeatures {
		return 0, errors.NewDimensionError(op, nFeatures, cols, 1)
	}
	return rows, nil
}

// matrixRow copies row i of X into buf and returns it.
func matrixRow(X mat.Matrix, i int, buf []float64) []float64 {
	for j := range buf {
		buf[j] = X.At(i, j)
	}
	return buf
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}
