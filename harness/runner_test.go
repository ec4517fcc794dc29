package harness

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/dataset"
	"github.com/tksato/wdbc/metrics"
	"github.com/tksato/wdbc/model"
	"github.com/tksato/wdbc/pkg/errors"
)

// makeSplit builds a separable two-cluster dataset and partitions it.
func makeSplit(t *testing.T, n int, fraction float64) *dataset.Split {
	t.Helper()

	schema := []string{"f1", "f2", "f3"}
	rng := rand.New(rand.NewPCG(99, 99))
	records := make([]dataset.Record, n)
	for i := range records {
		center := -2.0
		label := "B"
		if i%2 == 1 {
			center = 2.0
			label = "M"
		}
		features := make([]float64, len(schema))
		for j := range features {
			features[j] = center + rng.NormFloat64()
		}
		records[i] = dataset.Record{
			ID:       fmt.Sprintf("%06d", i),
			RawLabel: label,
			Features: features,
		}
	}

	d, err := dataset.New(schema, records)
	if err != nil {
		t.Fatalf("dataset.New failed: %v", err)
	}
	split, err := dataset.NewSplit(d, fraction, 4)
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	return split
}

func smallAdapters() []model.Adapter {
	return []model.Adapter{
		model.NewRandomForest(model.RandomForestParams{NumTrees: 15, Seed: 1}),
		model.NewGradientBoosting(model.GradientBoostingParams{NumRounds: 25, Seed: 1}),
		model.NewXGBoost(model.XGBoostParams{NumRounds: 25, MaxDepth: 3, Seed: 1}),
		model.NewMLP(model.MLPParams{MaxEpochs: 150, Seed: 1}),
	}
}

func TestRunnerEvaluatesAllModels(t *testing.T) {
	split := makeSplit(t, 80, 0.75)
	runner := NewRunner(smallAdapters())

	report, err := runner.Run(split)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.RunID == "" {
		t.Error("expected a run ID")
	}
	if report.TrainSize != 60 || report.TestSize != 20 {
		t.Errorf("unexpected partition sizes: train=%d test=%d", report.TrainSize, report.TestSize)
	}
	if len(report.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(report.Results))
	}

	wantOrder := []string{"random_forest", "gradient_boosting", "xgboost", "mlp"}
	for i, res := range report.Results {
		if res.Model != wantOrder[i] {
			t.Errorf("result %d: got model %q, want %q", i, res.Model, wantOrder[i])
		}
		if res.Err != nil {
			t.Errorf("%s failed: %v", res.Model, res.Err)
			continue
		}
		if res.Evaluation.AUC < 0.9 {
			t.Errorf("%s: AUC %v below 0.9 on separable data", res.Model, res.Evaluation.AUC)
		}
		if res.Evaluation.Samples != 20 {
			t.Errorf("%s: expected 20 evaluated samples, got %d", res.Model, res.Evaluation.Samples)
		}
		if res.FitDuration <= 0 {
			t.Errorf("%s: fit duration not recorded", res.Model)
		}
	}

	if best, ok := report.Best(); !ok || best.Evaluation.AUC < 0.9 {
		t.Errorf("Best returned ok=%v auc=%v", ok, best.Evaluation)
	}
}

// panicAdapter simulates a model whose training panics.
type panicAdapter struct{}

func (panicAdapter) Name() string { return "panicky" }

func (panicAdapter) Fit(_, _ mat.Matrix) (model.Trained, error) {
	panic("numerical meltdown")
}

// errorAdapter simulates a model whose training fails cleanly.
type errorAdapter struct{}

func (errorAdapter) Name() string { return "broken" }

func (errorAdapter) Fit(_, _ mat.Matrix) (model.Trained, error) {
	return nil, errors.New("no can do")
}

func TestRunnerIsolatesFailingModels(t *testing.T) {
	split := makeSplit(t, 40, 0.5)
	adapters := []model.Adapter{
		panicAdapter{},
		errorAdapter{},
		model.NewGradientBoosting(model.GradientBoostingParams{NumRounds: 10, Seed: 1}),
	}

	report, err := NewRunner(adapters).Run(split)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Failed()) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(report.Failed()))
	}
	if len(report.Succeeded()) != 1 {
		t.Fatalf("expected 1 success, got %d", len(report.Succeeded()))
	}

	var panicErr *errors.PanicError
	if !errors.As(report.Results[0].Err, &panicErr) {
		t.Errorf("expected PanicError from panicking model, got %v", report.Results[0].Err)
	}
	if report.Succeeded()[0].Model != "gradient_boosting" {
		t.Errorf("wrong surviving model: %s", report.Succeeded()[0].Model)
	}
}

func TestRunnerRejectsEmptyPartitions(t *testing.T) {
	runner := NewRunner(smallAdapters())

	if _, err := runner.Run(nil); err == nil {
		t.Error("expected error for nil split")
	}

	var emptyErr *errors.EmptyPartitionError
	_, err := runner.Run(&dataset.Split{})
	if !errors.As(err, &emptyErr) {
		t.Errorf("expected EmptyPartitionError, got %v", err)
	}
}

func TestRunnerThresholdOption(t *testing.T) {
	split := makeSplit(t, 40, 0.5)
	adapters := []model.Adapter{
		model.NewGradientBoosting(model.GradientBoostingParams{NumRounds: 10, Seed: 1}),
	}

	report, err := NewRunner(adapters, WithThreshold(0.9)).Run(split)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Threshold != 0.9 {
		t.Errorf("threshold not propagated: %v", report.Threshold)
	}
	if res := report.Results[0]; res.Err == nil && res.Evaluation.Threshold != 0.9 {
		t.Errorf("evaluation threshold: got %v, want 0.9", res.Evaluation.Threshold)
	}
}

func TestTextSink(t *testing.T) {
	report := &Report{
		RunID:     "test-run",
		Threshold: 0.5,
		TrainSize: 60,
		TestSize:  20,
		Duration:  time.Second,
		Results: []ModelResult{
			{
				Model: "random_forest",
				Evaluation: &metrics.EvaluationResult{
					Confusion: metrics.ConfusionMatrix{TruePositives: 9, TrueNegatives: 9, FalsePositives: 1, FalseNegatives: 1},
					AUC:       0.97,
					Threshold: 0.5,
					Samples:   20,
				},
				FitDuration: 12 * time.Millisecond,
			},
			{
				Model: "mlp",
				Err:   errors.New("did not train"),
			},
		},
	}

	var buf bytes.Buffer
	if err := NewTextSink(&buf).Write(report); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"test-run", "random_forest", "0.9700", "mlp: FAILED: did not train"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
