// Package ensemble implements a CART decision tree and a random forest
// classifier for binary targets. The forest's per-split candidate feature
// count (mtry) is the pipeline's tuned hyperparameter.
package ensemble

import (
	"math/rand/v2"
	"sort"
)

// node is one node of a fitted decision tree.
type node struct {
	leaf      bool
	feature   int
	threshold float64 // x[feature] <= threshold goes left
	left      *node
	right     *node

	// Leaf payload: class vote share of the training rows that reached
	// this node, and the majority class.
	proba float64 // share of positive class
	pred  int
}

// decisionTree is a CART classifier grown with gini impurity and per-split
// feature subsampling. It is only used through RandomForest, which owns
// validation and the fitted-state contract.
type decisionTree struct {
	maxDepth        int
	minSamplesSplit int
	mtry            int
	root            *node
}

// fit grows the tree on the rows of X selected by idx. The caller supplies
// the RNG so each tree in a forest has its own deterministic stream.
func (t *decisionTree) fit(X [][]float64, y []int, idx []int, rng *rand.Rand) {
	t.root = t.build(X, y, idx, 0, rng)
}

func (t *decisionTree) build(X [][]float64, y []int, idx []int, depth int, rng *rand.Rand) *node {
	positives := 0
	for _, i := range idx {
		positives += y[i]
	}
	n := len(idx)

	nd := &node{
		proba: float64(positives) / float64(n),
	}
	if nd.proba >= 0.5 {
		nd.pred = 1
	}

	pure := positives == 0 || positives == n
	if pure || n < t.minSamplesSplit || (t.maxDepth > 0 && depth >= t.maxDepth) {
		nd.leaf = true
		return nd
	}

	feature, threshold, ok := t.bestSplit(X, y, idx, rng)
	if !ok {
		nd.leaf = true
		return nd
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		nd.leaf = true
		return nd
	}

	nd.feature = feature
	nd.threshold = threshold
	nd.left = t.build(X, y, leftIdx, depth+1, rng)
	nd.right = t.build(X, y, rightIdx, depth+1, rng)
	return nd
}

// bestSplit samples mtry candidate features and returns the split with the
// largest gini impurity decrease.
func (t *decisionTree) bestSplit(X [][]float64, y []int, idx []int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	p := len(X[0])

	candidates := make([]int, p)
	for j := range candidates {
		candidates[j] = j
	}
	if t.mtry > 0 && t.mtry < p {
		rng.Shuffle(p, func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:t.mtry]
	}

	n := len(idx)
	totalPos := 0
	for _, i := range idx {
		totalPos += y[i]
	}
	parent := giniBinary(totalPos, n)

	bestGain := 1e-12
	type pair struct {
		v     float64
		label int
	}
	pairs := make([]pair, n)

	for _, f := range candidates {
		for k, i := range idx {
			pairs[k] = pair{v: X[i][f], label: y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		// Incremental scan: move one row at a time into the left
		// partition and evaluate the midpoint between distinct values.
		leftPos, leftN := 0, 0
		for k := 0; k < n-1; k++ {
			leftPos += pairs[k].label
			leftN++
			if pairs[k].v == pairs[k+1].v {
				continue
			}

			rightPos := totalPos - leftPos
			rightN := n - leftN
			weighted := (float64(leftN)*giniBinary(leftPos, leftN) +
				float64(rightN)*giniBinary(rightPos, rightN)) / float64(n)

			if gain := parent - weighted; gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (pairs[k].v + pairs[k+1].v) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// predict walks a single row down the tree.
func (t *decisionTree) predict(x []float64) (label int, proba float64) {
	nd := t.root
	for !nd.leaf {
		if x[nd.feature] <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd.pred, nd.proba
}

// giniBinary computes gini impurity from the positive count of a binary
// partition.
func giniBinary(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
