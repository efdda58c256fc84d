package ensemble

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/healthml/strokepipe/core/model"
	"github.com/healthml/strokepipe/core/parallel"
	"github.com/healthml/strokepipe/pkg/errors"
)

// RandomForest is a bagged ensemble of CART trees for binary
// classification. Each tree is grown on a bootstrap sample and considers
// MTry randomly sampled candidate features at every split.
type RandomForest struct {
	model.BaseEstimator

	// NTrees is the number of trees in the ensemble.
	NTrees int
	// MTry is the number of candidate features sampled per split.
	// 0 means floor(sqrt(n_features)).
	MTry int
	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int
	// MinSamplesSplit is the minimum rows required to attempt a split.
	MinSamplesSplit int
	// Seed drives bootstrap and feature sampling. Tree i uses stream
	// Seed+i so parallel growth stays deterministic.
	Seed uint64

	trees     []*decisionTree
	nFeatures int
}

// Option configures a RandomForest.
type Option func(*RandomForest)

// WithNTrees sets the ensemble size.
func WithNTrees(n int) Option { return func(rf *RandomForest) { rf.NTrees = n } }

// WithMTry sets the per-split candidate feature count.
func WithMTry(m int) Option { return func(rf *RandomForest) { rf.MTry = m } }

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(d int) Option { return func(rf *RandomForest) { rf.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum rows required to attempt a split.
func WithMinSamplesSplit(n int) Option { return func(rf *RandomForest) { rf.MinSamplesSplit = n } }

// WithSeed sets the random seed.
func WithSeed(seed uint64) Option { return func(rf *RandomForest) { rf.Seed = seed } }

// NewRandomForest creates a RandomForest with ranger-like defaults:
// 500 trees, mtry = sqrt(p), unlimited depth.
func NewRandomForest(opts ...Option) *RandomForest {
	rf := &RandomForest{
		NTrees:          500,
		MTry:            0,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		Seed:            1,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the ensemble on the design matrix X and binary labels y.
// Trees are grown in parallel; folds and candidates calling Fit
// concurrently is safe because each forest owns all of its state.
func (rf *RandomForest) Fit(X mat.Matrix, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForest.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != r {
		return errors.NewDimensionError("RandomForest.Fit", r, len(y), 0)
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return errors.NewValidationError("label", "must be binary (0 or 1)", map[string]int{"row": i, "label": label})
		}
	}
	if rf.NTrees < 1 {
		return errors.NewValueError("RandomForest.Fit", "NTrees must be positive")
	}
	if rf.MTry > c {
		return errors.NewValueError("RandomForest.Fit", "MTry exceeds feature count")
	}

	rows := denseRows(X)

	mtry := rf.MTry
	if mtry == 0 {
		mtry = int(math.Sqrt(float64(c)))
		if mtry < 1 {
			mtry = 1
		}
	}

	rf.nFeatures = c
	rf.trees = make([]*decisionTree, rf.NTrees)

	parallel.Parallelize(rf.NTrees, func(start, end int) {
		for i := start; i < end; i++ {
			rng := rand.New(rand.NewPCG(rf.Seed+uint64(i), rf.Seed+uint64(i)))

			// Bootstrap sample: n draws with replacement.
			idx := make([]int, r)
			for j := range idx {
				idx[j] = rng.IntN(r)
			}

			tree := &decisionTree{
				maxDepth:        rf.MaxDepth,
				minSamplesSplit: rf.MinSamplesSplit,
				mtry:            mtry,
			}
			tree.fit(rows, y, idx, rng)
			rf.trees[i] = tree
		}
	})

	rf.SetFitted()
	return nil
}

// Predict returns the majority-vote label per row of X.
func (rf *RandomForest) Predict(X mat.Matrix) ([]int, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// PredictProba returns the positive-class probability per row of X,
// estimated as the mean leaf vote share across trees.
func (rf *RandomForest) PredictProba(X mat.Matrix) ([]float64, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "PredictProba")
	}
	r, c := X.Dims()
	if c != rf.nFeatures {
		return nil, errors.NewDimensionError("RandomForest.PredictProba", rf.nFeatures, c, 1)
	}

	rows := denseRows(X)
	proba := make([]float64, r)

	parallel.ParallelizeWithThreshold(r, 64, func(start, end int) {
		for i := start; i < end; i++ {
			sum := 0.0
			for _, tree := range rf.trees {
				_, p := tree.predict(rows[i])
				sum += p
			}
			proba[i] = sum / float64(len(rf.trees))
		}
	})
	return proba, nil
}

// PredictRow scores one design-matrix row.
func (rf *RandomForest) PredictRow(x []float64) (label int, proba float64, err error) {
	if !rf.IsFitted() {
		return 0, 0, errors.NewNotFittedError("RandomForest", "PredictRow")
	}
	if len(x) != rf.nFeatures {
		return 0, 0, errors.NewDimensionError("RandomForest.PredictRow", rf.nFeatures, len(x), 1)
	}

	sum := 0.0
	for _, tree := range rf.trees {
		_, p := tree.predict(x)
		sum += p
	}
	proba = sum / float64(len(rf.trees))
	if proba >= 0.5 {
		label = 1
	}
	return label, proba, nil
}

// NFeatures returns the design-matrix width the forest was fitted with.
func (rf *RandomForest) NFeatures() int {
	return rf.nFeatures
}

func denseRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}
