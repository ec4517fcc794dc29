package model

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/core/parallel"
	"github.com/tksato/wdbc/pkg/log"
)

// RandomForestParams configures a bagged ensemble of Gini-split
// classification trees. Zero values select the defaults.
type RandomForestParams struct {
	NumTrees       int   `json:"num_trees"`        // default 100
	MaxDepth       int   `json:"max_depth"`        // default 8
	MinSamplesLeaf int   `json:"min_samples_leaf"` // default 1
	MaxFeatures    int   `json:"max_features"`     // features tried per split, default floor(sqrt(n))
	Seed           int64 `json:"seed"`
}

func (p RandomForestParams) withDefaults() RandomForestParams {
	if p.NumTrees <= 0 {
		p.NumTrees = 100
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 8
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	return p
}

// RandomForest trains trees on bootstrap resamples of the training
// partition, with a random feature subset considered at every split.
// Scores are the mean positive fraction across the ensemble's leaves.
type RandomForest struct {
	params RandomForestParams
}

// NewRandomForest creates an adapter with the given parameters. Zero
// fields fall back to defaults at Fit time.
func NewRandomForest(params RandomForestParams) *RandomForest {
	return &RandomForest{params: params}
}

// Name returns the identifier used in reports and logs.
func (rf *RandomForest) Name() string { return "random_forest" }

// Fit trains the forest and returns an immutable scoring artifact.
func (rf *RandomForest) Fit(X, y mat.Matrix) (Trained, error) {
	nSamples, nFeatures, targets, err := checkTrainingData("RandomForest.Fit", X, y)
	if err != nil {
		return nil, err
	}

	params := rf.params.withDefaults()
	maxFeatures := params.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > nFeatures {
		maxFeatures = int(math.Sqrt(float64(nFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rows := denseRows(X)
	trees := make([]classTree, params.NumTrees)

	// Each tree owns a generator derived from its index, so results do
	// not depend on goroutine scheduling.
	parallel.Parallelize(params.NumTrees, func(start, end int) {
		for t := start; t < end; t++ {
			rng := rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed)+uint64(t)+1))

			sample := make([]int, nSamples)
			for i := range sample {
				sample[i] = rng.IntN(nSamples)
			}

			grower := &classTreeGrower{
				X:              rows,
				targets:        targets,
				maxDepth:       params.MaxDepth,
				minSamplesLeaf: params.MinSamplesLeaf,
				maxFeatures:    maxFeatures,
				nFeatures:      nFeatures,
				rng:            rng,
			}
			trees[t] = grower.growTree(sample)
		}
	})

	logger := log.GetLoggerWithName("model.random_forest")
	logger.Debug("forest trained",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"num_trees", params.NumTrees,
	)

	return &trainedForest{trees: trees, nFeatures: nFeatures}, nil
}

type trainedForest struct {
	trees     []classTree
	nFeatures int
}

// PredictScore averages the per-tree leaf probabilities row by row.
func (f *trainedForest) PredictScore(X mat.Matrix) (*mat.VecDense, error) {
	rows, err := checkPredictData("RandomForest.PredictScore", X, f.nFeatures)
	if err != nil {
		return nil, err
	}

	scores := mat.NewVecDense(rows, nil)
	buf := make([]float64, f.nFeatures)
	for i := 0; i < rows; i++ {
		row := matrixRow(X, i, buf)
		sum := 0.0
		for t := range f.trees {
			sum += f.trees[t].predict(row)
		}
		scores.SetVec(i, sum/float64(len(f.trees)))
	}
	return scores, nil
}

// classTree mirrors regressionTree but its leaves carry the positive
// class fraction of the training samples that reached them.
type classTree struct {
	Nodes []classNode
}

type classNode struct {
	Feature    int
	Threshold  float64
	LeftChild  int
	RightChild int
	Prob       float64
	Count      int
}

func (n *classNode) isLeaf() bool {
	return n.LeftChild < 0 && n.RightChild < 0
}

func (t *classTree) predict(row []float64) float64 {
	nodeID := 0
	for {
		node := &t.Nodes[nodeID]
		if node.isLeaf() {
			return node.Prob
		}
		if row[node.Feature] <= node.Threshold {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}
}

type classTreeGrower struct {
	X       [][]float64
	targets []float64

	maxDepth       int
	minSamplesLeaf int
	maxFeatures    int
	nFeatures      int
	rng            *rand.Rand
}

func (g *classTreeGrower) growTree(indices []int) classTree {
	tree := classTree{}
	g.growNode(&tree, indices, 0)
	return tree
}

func (g *classTreeGrower) growNode(tree *classTree, indices []int, depth int) int {
	positives := 0
	for _, idx := range indices {
		if g.targets[idx] == 1 {
			positives++
		}
	}

	nodeIdx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, classNode{
		Feature:    -1,
		LeftChild:  -1,
		RightChild: -1,
		Prob:       float64(positives) / float64(len(indices)),
		Count:      len(indices),
	})

	pure := positives == 0 || positives == len(indices)
	if pure || depth >= g.maxDepth || len(indices) < 2*g.minSamplesLeaf {
		return nodeIdx
	}

	split := g.findBestSplit(indices, positives)
	if split.Gain <= 0 {
		return nodeIdx
	}

	var left, right []int
	for _, idx := range indices {
		if g.X[idx][split.Feature] <= split.Threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	leftChild := g.growNode(tree, left, depth+1)
	rightChild := g.growNode(tree, right, depth+1)

	node := &tree.Nodes[nodeIdx]
	node.Feature = split.Feature
	node.Threshold = split.Threshold
	node.LeftChild = leftChild
	node.RightChild = rightChild
	return nodeIdx
}

// findBestSplit samples maxFeatures features without replacement and
// keeps the split with the largest Gini impurity decrease.
func (g *classTreeGrower) findBestSplit(indices []int, positives int) splitInfo {
	best := splitInfo{Feature: -1, Gain: -math.MaxFloat64}

	perm := g.rng.Perm(g.nFeatures)
	for _, j := range perm[:g.maxFeatures] {
		split := g.findBestSplitForFeature(indices, positives, j)
		if split.Gain > best.Gain {
			best = split
		}
	}
	return best
}

func (g *classTreeGrower) findBestSplitForFeature(indices []int, positives, feature int) splitInfo {
	values := make([]struct {
		value float64
		pos   bool
	}, len(indices))
	for i, idx := range indices {
		values[i].value = g.X[idx][feature]
		values[i].pos = g.targets[idx] == 1
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].value < values[j].value
	})

	n := len(indices)
	parentGini := giniImpurity(positives, n)

	best := splitInfo{Feature: feature, Gain: -math.MaxFloat64}
	leftPos := 0
	for i := 0; i < n-1; i++ {
		if values[i].pos {
			leftPos++
		}
		if values[i].value == values[i+1].value {
			continue
		}

		leftCount := i + 1
		rightCount := n - leftCount
		if leftCount < g.minSamplesLeaf || rightCount < g.minSamplesLeaf {
			continue
		}

		rightPos := positives - leftPos
		weighted := (float64(leftCount)*giniImpurity(leftPos, leftCount) +
			float64(rightCount)*giniImpurity(rightPos, rightCount)) / float64(n)

		gain := parentGini - weighted
		if gain > best.Gain {
			best.Gain = gain
			best.Threshold = (values[i].value + values[i+1].value) / 2
		}
	}
	return best
}

func giniImpurity(positives, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(positives) / float64(total)
	return 1 - p*p - (1-p)*(1-p)
}
