package model

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/log"
)

// XGBoostParams configures a second-order boosted tree ensemble with
// L1 and L2 regularization and per-tree column subsampling. Zero
// values select the defaults.
type XGBoostParams struct {
	NumRounds      int     `json:"num_rounds"`       // default 100
	LearningRate   float64 `json:"learning_rate"`    // default 0.3
	MaxDepth       int     `json:"max_depth"`        // default 6
	MinSamplesLeaf int     `json:"min_samples_leaf"` // default 1
	Lambda         float64 `json:"lambda_l2"`        // default 1.0
	Alpha          float64 `json:"lambda_l1"`        // default 0
	MinChildWeight float64 `json:"min_child_weight"` // minimum hessian sum, default 1.0
	ColsampleTree  float64 `json:"colsample_bytree"` // column fraction per tree, default 1.0
	Seed           int64   `json:"seed"`
}

func (p XGBoostParams) withDefaults() XGBoostParams {
	if p.NumRounds <= 0 {
		p.NumRounds = 100
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.3
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 6
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	if p.Lambda <= 0 {
		p.Lambda = 1.0
	}
	if p.MinChildWeight <= 0 {
		p.MinChildWeight = 1.0
	}
	if p.ColsampleTree <= 0 || p.ColsampleTree > 1 {
		p.ColsampleTree = 1.0
	}
	return p
}

// XGBoost boosts with both the gradient and the hessian of the log
// loss, so leaf values and split gains are full Newton steps. Apart
// from the second-order statistics it differs from GradientBoosting
// in its L1 penalty, hessian-weighted child constraint, and column
// subsampling.
type XGBoost struct {
	params XGBoostParams
}

// NewXGBoost creates an adapter with the given parameters.
func NewXGBoost(params XGBoostParams) *XGBoost {
	return &XGBoost{params: params}
}

// Name returns the identifier used in reports and logs.
func (xgb *XGBoost) Name() string { return "xgboost" }

// Fit trains the ensemble and returns an immutable scoring artifact.
func (xgb *XGBoost) Fit(X, y mat.Matrix) (Trained, error) {
	nSamples, nFeatures, targets, err := checkTrainingData("XGBoost.Fit", X, y)
	if err != nil {
		return nil, err
	}

	params := xgb.params.withDefaults()
	obj := logisticObjective{}
	rows := denseRows(X)
	rng := rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed)))

	colsampleSize := int(params.ColsampleTree * float64(nFeatures))
	if colsampleSize < 1 {
		colsampleSize = 1
	}

	initScore := obj.InitScore(targets)
	rawScores := make([]float64, nSamples)
	for i := range rawScores {
		rawScores[i] = initScore
	}

	indices := sequentialIndices(nSamples)
	grads := make([]float64, nSamples)
	hessians := make([]float64, nSamples)

	trees := make([]regressionTree, 0, params.NumRounds)
	for round := 0; round < params.NumRounds; round++ {
		for i := range grads {
			grads[i] = obj.Gradient(rawScores[i], targets[i])
			hessians[i] = obj.Hessian(rawScores[i], targets[i])
		}

		features := sequentialIndices(nFeatures)
		if colsampleSize < nFeatures {
			rng.Shuffle(nFeatures, func(i, j int) {
				features[i], features[j] = features[j], features[i]
			})
			features = features[:colsampleSize]
		}

		grower := &treeGrower{
			X:              rows,
			grads:          grads,
			hessians:       hessians,
			maxDepth:       params.MaxDepth,
			minSamplesLeaf: params.MinSamplesLeaf,
			lambda:         params.Lambda,
			alpha:          params.Alpha,
			minChildWeight: params.MinChildWeight,
			features:       features,
		}
		tree := grower.growTree(indices)
		trees = append(trees, tree)

		for i := 0; i < nSamples; i++ {
			rawScores[i] += params.LearningRate * tree.predict(rows[i])
		}
	}

	logger := log.GetLoggerWithName("model.xgboost")
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
		op:           "XGBoost.PredictScore",
	}, nil
}
