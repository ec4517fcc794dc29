package model

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/errors"
	"github.com/tksato/wdbc/pkg/log"
	"github.com/tksato/wdbc/preprocessing"
)

// MLPParams configures a single-hidden-layer network with a sigmoid
// output, trained by full-batch gradient descent on log loss. Zero
// values select the defaults.
type MLPParams struct {
	HiddenUnits  int     `json:"hidden_units"`  // default 16
	LearningRate float64 `json:"learning_rate"` // base rate, decayed per epoch, default 0.1
	MaxEpochs    int     `json:"max_epochs"`    // default 500
	Alpha        float64 `json:"alpha"`         // L2 penalty on weights, default 1e-4
	Tol          float64 `json:"tol"`           // stop when max |gradient| falls below, default 1e-4
	MaxGradNorm  float64 `json:"max_grad_norm"` // gradient clipping, default 5.0
	Seed         int64   `json:"seed"`
}

func (p MLPParams) withDefaults() MLPParams {
	if p.HiddenUnits <= 0 {
		p.HiddenUnits = 16
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.1
	}
	if p.MaxEpochs <= 0 {
		p.MaxEpochs = 500
	}
	if p.Alpha <= 0 {
		p.Alpha = 1e-4
	}
	if p.Tol <= 0 {
		p.Tol = 1e-4
	}
	if p.MaxGradNorm <= 0 {
		p.MaxGradNorm = 5.0
	}
	return p
}

// MLP standardizes its inputs internally, so it can be fitted on raw
// feature scales like the tree ensembles. If the gradient has not
// fallen below Tol after MaxEpochs a ConvergenceWarning is emitted
// and the last weights are kept.
type MLP struct {
	params MLPParams
}

// NewMLP creates an adapter with the given parameters.
func NewMLP(params MLPParams) *MLP {
	return &MLP{params: params}
}

// Name returns the identifier used in reports and logs.
func (m *MLP) Name() string { return "mlp" }

// Fit trains the network and returns an immutable scoring artifact.
func (m *MLP) Fit(X, y mat.Matrix) (Trained, error) {
	nSamples, nFeatures, targets, err := checkTrainingData("MLP.Fit", X, y)
	if err != nil {
		return nil, err
	}

	params := m.params.withDefaults()

	scaler := preprocessing.NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, errors.Wrap(err, "MLP.Fit: scaling failed")
	}
	rows := denseRows(scaled)

	h := params.HiddenUnits
	rng := rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed)))

	// Glorot-style initialization scaled by fan-in.
	w1 := make([]float64, h*nFeatures) // hidden weights, row-major [h][nFeatures]
	b1 := make([]float64, h)
	w2 := make([]float64, h) // output weights
	scale1 := math.Sqrt(2.0 / float64(nFeatures+h))
	for i := range w1 {
		w1[i] = rng.NormFloat64() * scale1
	}
	scale2 := math.Sqrt(2.0 / float64(h+1))
	for i := range w2 {
		w2[i] = rng.NormFloat64() * scale2
	}
	b2 := 0.0

	gw1 := make([]float64, len(w1))
	gb1 := make([]float64, h)
	gw2 := make([]float64, h)
	hidden := make([]float64, h)

	converged := false
	epochs := 0
	for epoch := 0; epoch < params.MaxEpochs; epoch++ {
		epochs = epoch + 1
		for i := range gw1 {
			gw1[i] = 0
		}
		for i := 0; i < h; i++ {
			gb1[i] = 0
			gw2[i] = 0
		}
		gb2 := 0.0

		for i := 0; i < nSamples; i++ {
			row := rows[i]

			// Forward pass with tanh hidden units.
			for j := 0; j < h; j++ {
				z := b1[j]
				wRow := w1[j*nFeatures : (j+1)*nFeatures]
				for k, v := range row {
					z += wRow[k] * v
				}
				hidden[j] = math.Tanh(z)
			}
			out := b2
			for j := 0; j < h; j++ {
				out += w2[j] * hidden[j]
			}
			p := sigmoid(out)

			// Backward pass: dL/dout for log loss is p - y.
			delta := p - targets[i]
			gb2 += delta
			for j := 0; j < h; j++ {
				gw2[j] += delta * hidden[j]
				deltaHidden := delta * w2[j] * (1 - hidden[j]*hidden[j])
				gb1[j] += deltaHidden
				gRow := gw1[j*nFeatures : (j+1)*nFeatures]
				for k, v := range row {
					gRow[k] += deltaHidden * v
				}
			}
		}

		invN := 1.0 / float64(nSamples)
		maxGrad := math.Abs(gb2 * invN)
		for i := range gw1 {
			gw1[i] = gw1[i]*invN + params.Alpha*w1[i]
			if g := math.Abs(gw1[i]); g > maxGrad {
				maxGrad = g
			}
		}
		for i := 0; i < h; i++ {
			gb1[i] *= invN
			gw2[i] = gw2[i]*invN + params.Alpha*w2[i]
			if g := math.Abs(gb1[i]); g > maxGrad {
				maxGrad = g
			}
			if g := math.Abs(gw2[i]); g > maxGrad {
				maxGrad = g
			}
		}
		gb2 *= invN

		gw1 = errors.ClipGradient(gw1, params.MaxGradNorm)
		gw2 = errors.ClipGradient(gw2, params.MaxGradNorm)

		lr := params.LearningRate / (1.0 + 0.01*float64(epoch))
		for i := range w1 {
			w1[i] -= lr * gw1[i]
		}
		for i := 0; i < h; i++ {
			b1[i] -= lr * gb1[i]
			w2[i] -= lr * gw2[i]
		}
		b2 -= lr * gb2

		if maxGrad < params.Tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("mlp", params.MaxEpochs,
			"gradient did not fall below tolerance"))
	}

	logger := log.GetLoggerWithName("model.mlp")
	logger.Debug("network trained",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"hidden_units", h,
		"epochs", epochs,
		"converged", converged,
	)

	return &trainedMLP{
		scaler:    scaler,
		w1:        w1,
		b1:        b1,
		w2:        w2,
		b2:        b2,
		hidden:    h,
		nFeatures: nFeatures,
	}, nil
}

type trainedMLP struct {
	scaler    *preprocessing.StandardScaler
	w1        []float64
	b1        []float64
	w2        []float64
	b2        float64
	hidden    int
	nFeatures int
}

// PredictScore standardizes with the training-time statistics and runs
// the forward pass row by row.
func (m *trainedMLP) PredictScore(X mat.Matrix) (*mat.VecDense, error) {
	rowCount, err := checkPredictData("MLP.PredictScore", X, m.nFeatures)
	if err != nil {
		return nil, err
	}

	scaled, err := m.scaler.Transform(X)
	if err != nil {
		return nil, errors.Wrap(err, "MLP.PredictScore: scaling failed")
	}
	rows := denseRows(scaled)

	scores := mat.NewVecDense(rowCount, nil)
	hidden := make([]float64, m.hidden)
	for i := 0; i < rowCount; i++ {
		row := rows[i]
		for j := 0; j < m.hidden; j++ {
			z := m.b1[j]
			wRow := m.w1[j*m.nFeatures : (j+1)*m.nFeatures]
			for k, v := range row {
				z += wRow[k] * v
			}
			hidden[j] = math.Tanh(z)
		}
		out := m.b2
		for j := 0; j < m.hidden; j++ {
			out += m.w2[j] * hidden[j]
		}
		scores.SetVec(i, sigmoid(out))
	}
	return scores, nil
}
