package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// treeNode is one node of a flat-array tree. Children are indices into
// the owning tree's node slice, -1 for leaves.
type treeNode struct {
	Feature    int
	Threshold  float64
	LeftChild  int
	RightChild int
	LeafValue  float64
	LeafCount  int
	Gain       float64
}

func (n *treeNode) isLeaf() bool {
	return n.LeftChild < 0 && n.RightChild < 0
}

// regressionTree is a depth-limited tree fitted to per-sample gradients
// and hessians. Boosted ensembles grow one per round.
type regressionTree struct {
	Nodes []treeNode
}

// predict walks the tree for a single feature row.
func (t *regressionTree) predict(row []float64) float64 {
	nodeID := 0
	for {
		node := &t.Nodes[nodeID]
		if node.isLeaf() {
			return node.LeafValue
		}
		if row[node.Feature] <= node.Threshold {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}
}

// treeGrower holds the state shared across one tree build.
type treeGrower struct {
	X        [][]float64
	grads    []float64
	hessians []float64

	maxDepth       int
	minSamplesLeaf int
	lambda         float64 // L2 penalty on leaf values
	alpha          float64 // L1 penalty on leaf values
	minChildWeight float64 // minimum hessian sum per child

	features []int // candidate feature indices for this tree
}

type splitInfo struct {
	Feature   int
	Threshold float64
	Gain      float64
}

// growTree builds a regression tree over the given sample indices.
func (g *treeGrower) growTree(indices []int) regressionTree {
	tree := regressionTree{}
	g.growNode(&tree, indices, 0)
	return tree
}

// growNode recursively adds a subtree rooted at the given samples and
// returns its node index.
func (g *treeGrower) growNode(tree *regressionTree, indices []int, depth int) int {
	nodeIdx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, treeNode{
		Feature:    -1,
		LeftChild:  -1,
		RightChild: -1,
		LeafValue:  g.leafValue(indices),
		LeafCount:  len(indices),
	})

	if depth >= g.maxDepth || len(indices) < 2*g.minSamplesLeaf {
		return nodeIdx
	}

	split := g.findBestSplit(indices)
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
	node.Gain = split.Gain
	node.LeftChild = leftChild
	node.RightChild = rightChild
	return nodeIdx
}

// findBestSplit scans every candidate feature for the highest-gain
// split over the given samples.
func (g *treeGrower) findBestSplit(indices []int) splitInfo {
	best := splitInfo{Feature: -1, Gain: -math.MaxFloat64}
	for _, j := range g.features {
		split := g.findBestSplitForFeature(indices, j)
		if split.Gain > best.Gain {
			best = split
		}
	}
	return best
}

// findBestSplitForFeature sorts the samples by one feature and sweeps
// the split point left to right, accumulating gradient and hessian
// prefix sums.
func (g *treeGrower) findBestSplitForFeature(indices []int, feature int) splitInfo {
	values := make([]struct {
		value float64
		idx   int
	}, len(indices))
	for i, idx := range indices {
		values[i].value = g.X[idx][feature]
		values[i].idx = idx
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].value < values[j].value
	})

	totalGrad := 0.0
	totalHess := 0.0
	for _, idx := range indices {
		totalGrad += g.grads[idx]
		totalHess += g.hessians[idx]
	}

	best := splitInfo{Feature: feature, Gain: -math.MaxFloat64}

	leftGrad := 0.0
	leftHess := 0.0
	leftCount := 0
	for i := 0; i < len(values)-1; i++ {
		idx := values[i].idx
		leftGrad += g.grads[idx]
		leftHess += g.hessians[idx]
		leftCount++

		// Cannot split between equal values.
		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := len(indices) - leftCount
		if leftCount < g.minSamplesLeaf || rightCount < g.minSamplesLeaf {
			continue
		}

		rightGrad := totalGrad - leftGrad
		rightHess := totalHess - leftHess
		if g.minChildWeight > 0 && (leftHess < g.minChildWeight || rightHess < g.minChildWeight) {
			continue
		}

		gain := g.splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess)
		if gain > best.Gain {
			best.Gain = gain
			best.Threshold = (values[i].value + values[i+1].value) / 2
		}
	}
	return best
}

// splitGain is the second-order gain of splitting a node, with the L1
// penalty applied by soft-thresholding the gradient sums.
func (g *treeGrower) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	leftScore := g.nodeScore(leftGrad, leftHess)
	rightScore := g.nodeScore(rightGrad, rightHess)
	totalScore := g.nodeScore(totalGrad, totalHess)
	return 0.5 * (leftScore + rightScore - totalScore)
}

func (g *treeGrower) nodeScore(sumGrad, sumHess float64) float64 {
	t := softThreshold(sumGrad, g.alpha)
	return (t * t) / (sumHess + g.lambda)
}

// leafValue is the regularized optimal output for a leaf.
func (g *treeGrower) leafValue(indices []int) float64 {
	sumGrad := 0.0
	sumHess := 0.0
	for _, idx := range indices {
		sumGrad += g.grads[idx]
		sumHess += g.hessians[idx]
	}

	const epsilon = 1e-10
	if math.Abs(sumHess) < epsilon {
		sumHess = epsilon
	}
	return -softThreshold(sumGrad, g.alpha) / (sumHess + g.lambda + epsilon)
}

func softThreshold(g, alpha float64) float64 {
	if alpha <= 0 {
		return g
	}
	if g > alpha {
		return g - alpha
	}
	if g < -alpha {
		return g + alpha
	}
	return 0
}

// denseRows copies a gonum matrix into a row-slice form that the tree
// code can index cheaply during repeated sorts.
func denseRows(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		out[i] = row
	}
	return out
}
