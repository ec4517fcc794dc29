package model

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/errors"
)

// makeBlobs builds two well separated Gaussian clusters, class 0
// around -2 and class 1 around +2 in every feature.
func makeBlobs(n, features int, seed int64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	X := mat.NewDense(n, features, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		center := -2.0
		label := 0.0
		if i%2 == 1 {
			center = 2.0
			label = 1.0
		}
		for j := 0; j < features; j++ {
			X.Set(i, j, center+rng.NormFloat64())
		}
		y.SetVec(i, label)
	}
	return X, y
}

// pairwiseRanking returns the fraction of positive/negative pairs
// where the positive sample scored strictly higher.
func pairwiseRanking(scores *mat.VecDense, y *mat.VecDense) float64 {
	wins := 0.0
	pairs := 0.0
	for i := 0; i < y.Len(); i++ {
		if y.AtVec(i) != 1 {
			continue
		}
		for j := 0; j < y.Len(); j++ {
			if y.AtVec(j) != 0 {
				continue
			}
			pairs++
			if scores.AtVec(i) > scores.AtVec(j) {
				wins++
			}
		}
	}
	return wins / pairs
}

func testAdapters(seed int64) []Adapter {
	return []Adapter{
		NewRandomForest(RandomForestParams{NumTrees: 30, Seed: seed}),
		NewGradientBoosting(GradientBoostingParams{NumRounds: 50, Seed: seed}),
		NewXGBoost(XGBoostParams{NumRounds: 50, MaxDepth: 3, Seed: seed}),
		NewMLP(MLPParams{MaxEpochs: 200, Seed: seed}),
	}
}

func TestAdaptersSeparateBlobs(t *testing.T) {
	X, y := makeBlobs(80, 4, 7)

	for _, adapter := range testAdapters(42) {
		t.Run(adapter.Name(), func(t *testing.T) {
			trained, err := adapter.Fit(X, y)
			if err != nil {
				t.Fatalf("Fit failed: %v", err)
			}

			scores, err := trained.PredictScore(X)
			if err != nil {
				t.Fatalf("PredictScore failed: %v", err)
			}
			if scores.Len() != 80 {
				t.Fatalf("expected 80 scores, got %d", scores.Len())
			}

			for i := 0; i < scores.Len(); i++ {
				s := scores.AtVec(i)
				if s < 0 || s > 1 || math.IsNaN(s) {
					t.Fatalf("score %d out of range: %v", i, s)
				}
			}

			if ranking := pairwiseRanking(scores, y); ranking < 0.95 {
				t.Errorf("expected ranking >= 0.95 on separable data, got %v", ranking)
			}
		})
	}
}

func TestAdaptersDeterministic(t *testing.T) {
	X, y := makeBlobs(60, 3, 11)

	for _, name := range []string{"random_forest", "gradient_boosting", "xgboost", "mlp"} {
		t.Run(name, func(t *testing.T) {
			first := fitAndScore(t, adapterByName(name, 5), X, y)
			second := fitAndScore(t, adapterByName(name, 5), X, y)

			for i := 0; i < first.Len(); i++ {
				if first.AtVec(i) != second.AtVec(i) {
					t.Fatalf("scores differ at %d: %v vs %v", i, first.AtVec(i), second.AtVec(i))
				}
			}
		})
	}
}

func adapterByName(name string, seed int64) Adapter {
	switch name {
	case "random_forest":
		return NewRandomForest(RandomForestParams{NumTrees: 20, Seed: seed})
	case "gradient_boosting":
		return NewGradientBoosting(GradientBoostingParams{NumRounds: 30, Seed: seed})
	case "xgboost":
		return NewXGBoost(XGBoostParams{NumRounds: 30, Seed: seed})
	case "mlp":
		return NewMLP(MLPParams{MaxEpochs: 100, Seed: seed})
	}
	panic("unknown adapter " + name)
}

func fitAndScore(t *testing.T, adapter Adapter, X *mat.Dense, y *mat.VecDense) *mat.VecDense {
	t.Helper()
	trained, err := adapter.Fit(X, y)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	scores, err := trained.PredictScore(X)
	if err != nil {
		t.Fatalf("PredictScore failed: %v", err)
	}
	return scores
}

func TestFitReturnsFreshArtifact(t *testing.T) {
	X, y := makeBlobs(40, 2, 3)
	adapter := NewGradientBoosting(GradientBoostingParams{NumRounds: 20, Seed: 1})

	first, err := adapter.Fit(X, y)
	if err != nil {
		t.Fatalf("first Fit failed: %v", err)
	}
	before, err := first.PredictScore(X)
	if err != nil {
		t.Fatalf("PredictScore failed: %v", err)
	}

	// A second Fit on shuffled labels must not disturb the first
	// artifact's predictions.
	yFlipped := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		yFlipped.SetVec(i, 1-y.AtVec(i))
	}
	if _, err := adapter.Fit(X, yFlipped); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}

	after, err := first.PredictScore(X)
	if err != nil {
		t.Fatalf("PredictScore after refit failed: %v", err)
	}
	for i := 0; i < before.Len(); i++ {
		if before.AtVec(i) != after.AtVec(i) {
			t.Fatalf("artifact changed after refit at %d", i)
		}
	}
}

func TestFitValidation(t *testing.T) {
	X, y := makeBlobs(20, 3, 1)

	tests := []struct {
		name string
		x    mat.Matrix
		y    mat.Matrix
	}{
		{
			name: "empty matrix",
			x:    &mat.Dense{},
			y:    &mat.Dense{},
		},
		{
			name: "row count mismatch",
			x:    X,
			y:    mat.NewVecDense(10, nil),
		},
		{
			name: "y not a column vector",
			x:    X,
			y:    mat.NewDense(20, 2, nil),
		},
		{
			name: "labels not binary",
			x:    X,
			y:    vecOf(20, 2.0),
		},
	}

	for _, adapter := range testAdapters(1) {
		for _, tt := range tests {
			t.Run(adapter.Name()+"/"+tt.name, func(t *testing.T) {
				if _, err := adapter.Fit(tt.x, tt.y); err == nil {
					t.Error("expected error, got nil")
				}
			})
		}
	}

	t.Run("predict dimension mismatch", func(t *testing.T) {
		trained, err := NewRandomForest(RandomForestParams{NumTrees: 5, Seed: 1}).Fit(X, y)
		if err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		_, err = trained.PredictScore(mat.NewDense(4, 2, nil))
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected DimensionError, got %v", err)
		}
	})
}

func vecOf(n int, v float64) *mat.VecDense {
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, v)
	}
	return out
}

func TestMLPConvergenceWarning(t *testing.T) {
	var captured error
	errors.SetWarningHandler(func(w error) { captured = w })
	defer errors.SetWarningHandler(nil)

	X, y := makeBlobs(40, 2, 9)
	adapter := NewMLP(MLPParams{MaxEpochs: 1, Tol: 1e-12, Seed: 2})
	if _, err := adapter.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	var warning *errors.ConvergenceWarning
	if !errors.As(captured, &warning) {
		t.Fatalf("expected ConvergenceWarning, got %v", captured)
	}
	if warning.Algorithm != "mlp" {
		t.Errorf("expected algorithm mlp, got %q", warning.Algorithm)
	}
}
