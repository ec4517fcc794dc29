// Package harness trains every registered model on one train/test
// partition and collects a comparable evaluation per model. A failing
// model is recorded in the report and never aborts the other models.
package harness

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/dataset"
	"github.com/tksato/wdbc/metrics"
	"github.com/tksato/wdbc/model"
	"github.com/tksato/wdbc/pkg/errors"
	"github.com/tksato/wdbc/pkg/log"
)

// DefaultThreshold is the score cutoff used for the confusion matrix
// when no threshold is configured.
const DefaultThreshold = 0.5

// Runner fits a set of adapters against the same partition and
// evaluates each one on the held-out records.
type Runner struct {
	adapters  []model.Adapter
	threshold float64
	logger    log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithThreshold sets the score cutoff applied when deriving the
// confusion matrix. The exact AUC is threshold-free and unaffected.
func WithThreshold(threshold float64) Option {
	return func(r *Runner) {
		r.threshold = threshold
	}
}

// NewRunner creates a runner over the given adapters.
func NewRunner(adapters []model.Adapter, opts ...Option) *Runner {
	r := &Runner{
		adapters:  adapters,
		threshold: DefaultThreshold,
		logger:    log.GetLoggerWithName("harness"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run trains and evaluates every adapter concurrently on the given
// split. Per-model failures, including panics inside an adapter, are
// captured in the corresponding ModelResult. Run itself fails only
// when the partition cannot be turned into training data at all.
func (r *Runner) Run(split *dataset.Split) (*Report, error) {
	const op = "harness.Run"

	if split == nil || split.Train == nil || split.Train.Len() == 0 {
		return nil, errors.NewEmptyPartitionError(op, "train")
	}
	if split.Test == nil || split.Test.Len() == 0 {
		return nil, errors.NewEmptyPartitionError(op, "test")
	}
	if len(r.adapters) == 0 {
		return nil, errors.NewValueError(op, "no model adapters registered")
	}

	trainX := split.Train.FeatureMatrix()
	trainY, err := split.Train.LabelVector()
	if err != nil {
		return nil, err
	}
	testX := split.Test.FeatureMatrix()
	testY, err := split.Test.LabelVector()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With(log.RunIDKey, runID)
	logger.Info("comparison run started",
		log.TrainSizeKey, split.Train.Len(),
		log.TestSizeKey, split.Test.Len(),
		log.ThresholdKey, r.threshold,
		"models", len(r.adapters),
	)

	started := time.Now()
	results := make([]ModelResult, len(r.adapters))

	var wg sync.WaitGroup
	for i, adapter := range r.adapters {
		wg.Add(1)
		go func(idx int, adapter model.Adapter) {
			defer wg.Done()
			results[idx] = r.runModel(adapter, trainX, trainY, testX, testY)
		}(i, adapter)
	}
	wg.Wait()

	report := &Report{
		RunID:     runID,
		Threshold: r.threshold,
		TrainSize: split.Train.Len(),
		TestSize:  split.Test.Len(),
		Results:   results,
		Duration:  time.Since(started),
	}

	for _, res := range report.Results {
		if res.Err != nil {
			logger.Error("model failed", log.ErrAttrKey, res.Err, log.ModelNameKey, res.Model)
			continue
		}
		logger.Info("model evaluated",
			log.ModelNameKey, res.Model,
			log.AUCKey, res.Evaluation.AUC,
			log.AccuracyKey, res.Evaluation.Confusion.Accuracy(),
			log.DurationMsKey, res.FitDuration.Milliseconds(),
		)
	}
	logger.Info("comparison run finished",
		"succeeded", len(report.Succeeded()),
		"failed", len(report.Failed()),
		log.DurationMsKey, report.Duration.Milliseconds(),
	)
	return report, nil
}

// runModel trains one adapter and evaluates it, converting any panic
// into the result's error.
func (r *Runner) runModel(adapter model.Adapter, trainX *mat.Dense, trainY *mat.VecDense, testX *mat.Dense, testY *mat.VecDense) ModelResult {
	result := ModelResult{Model: adapter.Name()}

	err := errors.SafeExecute(adapter.Name(), func() error {
		fitStart := time.Now()
		trained, err := adapter.Fit(trainX, trainY)
		if err != nil {
			return errors.Wrapf(err, "%s: training failed", adapter.Name())
		}
		result.FitDuration = time.Since(fitStart)

		scoreStart := time.Now()
		scores, err := trained.PredictScore(testX)
		if err != nil {
			return errors.Wrapf(err, "%s: scoring failed", adapter.Name())
		}
		result.ScoreDuration = time.Since(scoreStart)

		eval, err := metrics.Evaluate(scores, testY, r.threshold)
		if err != nil {
			return errors.Wrapf(err, "%s: evaluation failed", adapter.Name())
		}
		result.Evaluation = eval
		return nil
	})
	result.Err = err
	return result
}
