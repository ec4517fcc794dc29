package model

import (
	"math"

	"github.com/tksato/wdbc/pkg/errors"
)

// logisticObjective supplies gradients and hessians of binary log loss
// with respect to raw (pre-sigmoid) scores.
type logisticObjective struct{}

// Gradient returns dL/dscore = sigmoid(score) - target.
func (logisticObjective) Gradient(rawScore, target float64) float64 {
	return sigmoid(rawScore) - target
}

// Hessian returns d2L/dscore2 = p(1-p), floored away from zero.
func (logisticObjective) Hessian(rawScore, _ float64) float64 {
	p := sigmoid(rawScore)
	h := p * (1 - p)
	const minHessian = 1e-16
	if h < minHessian {
		h = minHessian
	}
	return h
}

// Loss returns the mean log loss over a batch of raw scores.
func (logisticObjective) Loss(rawScores, targets []float64) float64 {
	if len(rawScores) == 0 {
		return 0
	}
	total := 0.0
	for i, s := range rawScores {
		p := sigmoid(s)
		if targets[i] == 1 {
			total -= errors.StabilizeLog(p)
		} else {
			total -= errors.StabilizeLog(1 - p)
		}
	}
	return total / float64(len(rawScores))
}

// InitScore returns the log odds of the positive rate, the constant
// prediction that minimizes log loss before any trees are added.
func (logisticObjective) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	p := sum / float64(len(targets))
	p = errors.ClipValue(p, 1e-15, 1-1e-15)
	return math.Log(p / (1 - p))
}
