package harness

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tksato/wdbc/metrics"
)

// ModelResult is the outcome for a single model within a run. Exactly
// one of Evaluation and Err is set.
type ModelResult struct {
	Model         string
	Evaluation    *metrics.EvaluationResult
	FitDuration   time.Duration
	ScoreDuration time.Duration
	Err           error
}

// Report aggregates the results of one comparison run.
type Report struct {
	RunID     string
	Threshold float64
	TrainSize int
	TestSize  int
	Results   []ModelResult
	Duration  time.Duration
}

// Succeeded returns the results of models that trained and evaluated
// without error, preserving adapter order.
func (r *Report) Succeeded() []ModelResult {
	var out []ModelResult
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results of models that errored.
func (r *Report) Failed() []ModelResult {
	var out []ModelResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Best returns the successful result with the highest AUC, or false
// when every model failed.
func (r *Report) Best() (ModelResult, bool) {
	succeeded := r.Succeeded()
	if len(succeeded) == 0 {
		return ModelResult{}, false
	}
	best := succeeded[0]
	for _, res := range succeeded[1:] {
		if res.Evaluation.AUC > best.Evaluation.AUC {
			best = res
		}
	}
	return best, true
}

// Sink consumes a finished report.
type Sink interface {
	Write(report *Report) error
}

// TextSink renders a report as a fixed-width comparison table.
type TextSink struct {
	Out io.Writer

	// SortByAUC orders rows best first instead of adapter order.
	SortByAUC bool
}

// NewTextSink creates a sink writing to the given writer.
func NewTextSink(out io.Writer) *TextSink {
	return &TextSink{Out: out}
}

// Write renders the report. Failed models appear below the table with
// their errors.
func (s *TextSink) Write(report *Report) error {
	succeeded := report.Succeeded()
	if s.SortByAUC {
		sort.SliceStable(succeeded, func(i, j int) bool {
			return succeeded[i].Evaluation.AUC > succeeded[j].Evaluation.AUC
		})
	}

	if _, err := fmt.Fprintf(s.Out, "run %s  train=%d test=%d threshold=%.2f\n\n",
		report.RunID, report.TrainSize, report.TestSize, report.Threshold); err != nil {
		return err
	}

	const rowFmt = "%-20s %9s %9s %9s %9s %9s %8s\n"
	if _, err := fmt.Fprintf(s.Out, rowFmt,
		"model", "accuracy", "precision", "recall", "f1", "auc", "fit"); err != nil {
		return err
	}

	for _, res := range succeeded {
		cm := res.Evaluation.Confusion
		if _, err := fmt.Fprintf(s.Out, rowFmt,
			res.Model,
			fmt.Sprintf("%.4f", cm.Accuracy()),
			fmt.Sprintf("%.4f", cm.Precision()),
			fmt.Sprintf("%.4f", cm.Recall()),
			fmt.Sprintf("%.4f", cm.F1()),
			fmt.Sprintf("%.4f", res.Evaluation.AUC),
			res.FitDuration.Round(time.Millisecond).String(),
		); err != nil {
			return err
		}
	}

	for _, res := range report.Failed() {
		if _, err := fmt.Fprintf(s.Out, "\n%s: FAILED: %v\n", res.Model, res.Err); err != nil {
			return err
		}
	}
	return nil
}
