package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/errors"
)

func vec(values []float64) *mat.VecDense {
	if len(values) == 0 {
		return nil
	}
	return mat.NewVecDense(len(values), values)
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name    string
		truth   []float64
		scores  []float64
		want    float64
		wantErr string // "", "degenerate", "mismatch", "empty"
	}{
		{
			name:   "perfect separator",
			truth:  []float64{0, 0, 0, 1, 1, 1},
			scores: []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9},
			want:   1.0,
		},
		{
			name:   "perfect anti-separator",
			truth:  []float64{0, 0, 0, 1, 1, 1},
			scores: []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1},
			want:   0.0,
		},
		{
			name:   "all ties",
			truth:  []float64{0, 1, 0, 1},
			scores: []float64{0.5, 0.5, 0.5, 0.5},
			want:   0.5,
		},
		{
			name:   "typical case",
			truth:  []float64{0, 0, 1, 1},
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.75,
		},
		{
			name:   "partial ties",
			truth:  []float64{0, 0, 1, 1},
			scores: []float64{0.2, 0.5, 0.5, 0.9},
			want:   0.875,
		},
		{
			name:    "single-class truth fails",
			truth:   []float64{1, 1, 1},
			scores:  []float64{0.1, 0.4, 0.8},
			wantErr: "degenerate",
		},
		{
			name:    "length mismatch",
			truth:   []float64{0, 1},
			scores:  []float64{0.5},
			wantErr: "mismatch",
		},
		{
			name:    "empty input",
			truth:   []float64{},
			scores:  []float64{},
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUC(vec(tt.scores), vec(tt.truth))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("AUC() = %v, want %s error", got, tt.wantErr)
				}
				assertErrorKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("AUC() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func assertErrorKind(t *testing.T, err error, kind string) {
	t.Helper()
	switch kind {
	case "degenerate":
		var e *errors.DegenerateLabelSetError
		if !errors.As(err, &e) {
			t.Errorf("expected DegenerateLabelSetError, got %v", err)
		}
	case "mismatch":
		var e *errors.LengthMismatchError
		if !errors.As(err, &e) {
			t.Errorf("expected LengthMismatchError, got %v", err)
		}
	case "empty":
		var e *errors.EmptyPartitionError
		if !errors.As(err, &e) {
			t.Errorf("expected EmptyPartitionError, got %v", err)
		}
	default:
		t.Fatalf("unknown expected error kind %q", kind)
	}
}

func TestEvaluatePerfectScenario(t *testing.T) {
	// scores=[0.9,0.1,0.8,0.2], truth=[1,0,1,0], threshold=0.5
	// -> TP=2, TN=2, FP=0, FN=0, AUC=1.0
	result, err := Evaluate(
		vec([]float64{0.9, 0.1, 0.8, 0.2}),
		vec([]float64{1, 0, 1, 0}),
		0.5,
	)
	if err != nil {
		t.Fatal(err)
	}

	cm := result.Confusion
	if cm.TruePositives != 2 || cm.TrueNegatives != 2 || cm.FalsePositives != 0 || cm.FalseNegatives != 0 {
		t.Errorf("confusion = %+v, want TP=2 TN=2 FP=0 FN=0", cm)
	}
	if result.AUC != 1.0 {
		t.Errorf("AUC = %v, want 1.0", result.AUC)
	}
	if result.Samples != 4 {
		t.Errorf("Samples = %d, want 4", result.Samples)
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	// A score exactly at the threshold predicts positive.
	result, err := Evaluate(
		vec([]float64{0.5, 0.49}),
		vec([]float64{1, 0}),
		0.5,
	)
	if err != nil {
		t.Fatal(err)
	}
	if result.Confusion.TruePositives != 1 || result.Confusion.TrueNegatives != 1 {
		t.Errorf("confusion = %+v, want TP=1 TN=1", result.Confusion)
	}
}

func TestEvaluatePermutationInvariance(t *testing.T) {
	scores := []float64{0.9, 0.3, 0.8, 0.1, 0.6, 0.2, 0.7, 0.4}
	truth := []float64{1, 0, 1, 0, 1, 0, 0, 1}

	base, err := Evaluate(vec(scores), vec(truth), 0.5)
	if err != nil {
		t.Fatal(err)
	}

	r := rand.New(rand.NewPCG(9, 9))
	for trial := 0; trial < 20; trial++ {
		perm := r.Perm(len(scores))
		ps := make([]float64, len(scores))
		pt := make([]float64, len(truth))
		for i, p := range perm {
			ps[i] = scores[p]
			pt[i] = truth[p]
		}

		got, err := Evaluate(vec(ps), vec(pt), 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if got.Confusion != base.Confusion {
			t.Fatalf("confusion changed under permutation: %+v vs %+v", got.Confusion, base.Confusion)
		}
		if math.Abs(got.AUC-base.AUC) > 1e-12 {
			t.Fatalf("AUC changed under permutation: %v vs %v", got.AUC, base.AUC)
		}
	}
}

func TestEvaluateRandomScoresNearHalf(t *testing.T) {
	// Random scores against random labels: AUC should approach 0.5.
	const n = 4000
	r := rand.New(rand.NewPCG(17, 17))
	scores := make([]float64, n)
	truth := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = r.Float64()
		if r.Float64() < 0.5 {
			truth[i] = 1
		}
	}

	result, err := Evaluate(vec(scores), vec(truth), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(result.AUC-0.5) > 0.05 {
		t.Errorf("AUC of random guessing = %v, want ~0.5", result.AUC)
	}
}

func TestEvaluateNonBinaryTruth(t *testing.T) {
	_, err := Evaluate(vec([]float64{0.5, 0.5}), vec([]float64{0, 0.5}), 0.5)
	if err == nil {
		t.Fatal("Evaluate() accepted non-binary truth labels")
	}
	var valueErr *errors.ValueError
	if !errors.As(err, &valueErr) {
		t.Errorf("expected ValueError, got %T", err)
	}
}

func TestEvaluateNaNScores(t *testing.T) {
	_, err := Evaluate(vec([]float64{math.NaN(), 0.5}), vec([]float64{1, 0}), 0.5)
	if err == nil {
		t.Fatal("Evaluate() accepted NaN scores")
	}
}

func TestConfusionMatrixDerivedRates(t *testing.T) {
	cm := ConfusionMatrix{
		TruePositives:  8,
		TrueNegatives:  5,
		FalsePositives: 2,
		FalseNegatives: 1,
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"accuracy", cm.Accuracy(), 13.0 / 16.0},
		{"precision", cm.Precision(), 8.0 / 10.0},
		{"recall", cm.Recall(), 8.0 / 9.0},
		{"specificity", cm.Specificity(), 5.0 / 7.0},
		{"f1", cm.F1(), 2 * (8.0 / 10.0) * (8.0 / 9.0) / ((8.0 / 10.0) + (8.0 / 9.0))},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestConfusionMatrixZeroDenominators(t *testing.T) {
	cm := ConfusionMatrix{TrueNegatives: 4}
	if got := cm.Precision(); got != 0 {
		t.Errorf("Precision with no positive predictions = %v, want 0", got)
	}
	if got := cm.Recall(); got != 0 {
		t.Errorf("Recall with no positives = %v, want 0", got)
	}
	if got := cm.F1(); got != 0 {
		t.Errorf("F1 = %v, want 0", got)
	}
}
