package dataset

import (
	"math/rand/v2"

	"github.com/healthml/strokepipe/pkg/errors"
)

// Split is a disjoint partition of cleaned records into a training and a
// test subset.
type Split struct {
	Train []Record
	Test  []Record
}

// TrainTestSplit shuffles records with the given seed and partitions them
// so that roughly prop of the rows land in the training subset. The two
// subsets are disjoint and their union is the input.
func TrainTestSplit(records []Record, prop float64, seed uint64) (Split, error) {
	if len(records) == 0 {
		return Split{}, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if prop <= 0 || prop >= 1 {
		return Split{}, errors.NewValueError("TrainTestSplit", "proportion must be in (0,1)")
	}

	n := len(records)
	indices := shuffledIndices(n, seed)

	nTrain := int(float64(n) * prop)
	if nTrain == 0 {
		nTrain = 1
	}
	if nTrain == n {
		nTrain = n - 1
	}

	split := Split{
		Train: make([]Record, 0, nTrain),
		Test:  make([]Record, 0, n-nTrain),
	}
	for i, idx := range indices {
		if i < nTrain {
			split.Train = append(split.Train, records[idx])
		} else {
			split.Test = append(split.Test, records[idx])
		}
	}
	return split, nil
}

// Fold is one cross-validation fold: index sets into the training subset.
// The analysis set is fitted on, the assessment set is scored on.
type Fold struct {
	Analysis   []int
	Assessment []int
}

// KFold partitions n training rows into k folds. Every row appears in
// exactly one assessment set; fold sizes differ by at most one row.
func KFold(n, k int, seed uint64) ([]Fold, error) {
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "KFold")
	}
	if k < 2 {
		return nil, errors.NewValueError("KFold", "fold count must be at least 2")
	}
	if k > n {
		return nil, errors.NewValueError("KFold", "fold count exceeds row count")
	}

	indices := shuffledIndices(n, seed)

	folds := make([]Fold, k)
	foldSize := n / k
	remainder := n % k

	current := 0
	for i := 0; i < k; i++ {
		size := foldSize
		if i < remainder {
			size++
		}

		assessment := make([]int, size)
		copy(assessment, indices[current:current+size])

		inAssessment := make(map[int]bool, size)
		for _, idx := range assessment {
			inAssessment[idx] = true
		}

		analysis := make([]int, 0, n-size)
		for _, idx := range indices {
			if !inAssessment[idx] {
				analysis = append(analysis, idx)
			}
		}

		folds[i] = Fold{Analysis: analysis, Assessment: assessment}
		current += size
	}

	return folds, nil
}

// Subset returns the records at the given indices.
func Subset(records []Record, indices []int) []Record {
	out := make([]Record, len(indices))
	for i, idx := range indices {
		out[i] = records[idx]
	}
	return out
}

func shuffledIndices(n int, seed uint64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}
