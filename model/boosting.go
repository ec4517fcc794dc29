package model

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/log"
)

// GradientBoostingParams configures a first-order boosted tree
// ensemble with log loss. Zero values select the defaults.
type GradientBoostingParams struct {
	NumRounds      int     `json:"num_rounds"`      // default 100
	LearningRate   float64 `json:"learning_rate"`   // default 0.1
	MaxDepth       int     `json:"max_depth"`       // default 3
	MinSamplesLeaf int     `json:"min_samples_leaf"` // default 1
	Lambda         float64 `json:"lambda_l2"`       // default 1.0
	Subsample      float64 `json:"subsample"`       // row fraction per round, default 1.0
	Seed           int64   `json:"seed"`
}

func (p GradientBoostingParams) withDefaults() GradientBoostingParams {
	if p.NumRounds <= 0 {
		p.NumRounds = 100
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 3
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	if p.Lambda <= 0 {
		p.Lambda = 1.0
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		p.Subsample = 1.0
	}
	return p
}

// GradientBoosting fits shallow regression trees to the gradient of
// the log loss, one per round, each scaled by the learning rate. The
// hessian is held at one per sample, so leaf values are shrunk mean
// residuals.
type GradientBoosting struct {
	params GradientBoostingParams
}

// NewGradientBoosting creates an adapter with the given parameters.
func NewGradientBoosting(params GradientBoostingParams) *GradientBoosting {
	return &GradientBoosting{params: params}
}

// Name returns the identifier used in reports and logs.
func (gb *GradientBoosting) Name() string { return "gradient_boosting" }

// Fit trains the ensemble and returns an immutable scoring artifact.
func (gb *GradientBoosting) Fit(X, y mat.Matrix) (Trained, error) {
	nSamples, nFeatures, targets, err := checkTrainingData("GradientBoosting.Fit", X, y)
	if err != nil {
		return nil, err
	}

	params := gb.params.withDefaults()
	obj := logisticObjective{}
	rows := denseRows(X)
	rng := rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed)))

	allFeatures := make([]int, nFeatures)
	for j := range allFeatures {
		allFeatures[j] = j
	}

	initScore := obj.InitScore(targets)
	rawScores := make([]float64, nSamples)
	for i := range rawScores {
		rawScores[i] = initScore
	}

	grads := make([]float64, nSamples)
	hessians := make([]float64, nSamples)
	for i := range hessians {
		hessians[i] = 1.0
	}

	subsampleSize := int(params.Subsample * float64(nSamples))
	if subsampleSize < 1 {
		subsampleSize = 1
	}

	trees := make([]regressionTree, 0, params.NumRounds)
	for round := 0; round < params.NumRounds; round++ {
		for i := range grads {
			grads[i] = obj.Gradient(rawScores[i], targets[i])
		}

		indices := sequentialIndices(nSamples)
		if subsampleSize < nSamples {
			rng.Shuffle(nSamples, func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
			indices = indices[:subsampleSize]
		}

		grower := &treeGrower{
			X:              rows,
			grads:          grads,
			hessians:       hessians,
			maxDepth:       params.MaxDepth,
			minSamplesLeaf: params.MinSamplesLeaf,
			lambda:         params.Lambda,
			features:       allFeatures,
		}
		tree := grower.growTree(indices)
		trees = append(trees, tree)

		for i := 0; i < nSamples; i++ {
			rawScores[i] += params.LearningRate * tree.predict(rows[i])
		}
	}

	logger := log.GetLoggerWithName("model.gradient_boosting")
	logger.Debug("boosting finished",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"num_rounds", params.NumRounds,
		"training_loss", obj.Loss(rawScores, targets),
	)

	return &trainedBoosting{
		trees:        trees,
		initScore:    initScore,
		learningRate: params.LearningRate,
		nFeatures:    nFeatures,
		op:           "GradientBoosting.PredictScore",
	}, nil
}

// trainedBoosting scores by summing shrunken tree outputs onto the
// initial log odds and squashing through the sigmoid. Both boosted
// adapters share it.
type trainedBoosting struct {
	trees        []regressionTree
	initScore    float64
	learningRate float64
	nFeatures    int
	op           string
}

func (b *trainedBoosting) PredictScore(X mat.Matrix) (*mat.VecDense, error) {
	rows, err := checkPredictData(b.op, X, b.nFeatures)
	if err != nil {
		return nil, err
	}

	scores := mat.NewVecDense(rows, nil)
	buf := make([]float64, b.nFeatures)
	for i := 0; i < rows; i++ {
		row := matrixRow(X, i, buf)
		raw := b.initScore
		for t := range b.trees {
			raw += b.learningRate * b.trees[t].predict(row)
		}
		scores.SetVec(i, sigmoid(raw))
	}
	return scores, nil
}

func sequentialIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
