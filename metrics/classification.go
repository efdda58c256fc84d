// Package metrics implements the binary classification metrics reported by
// the pipeline: accuracy, area under the ROC curve and the confusion
// matrix.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/healthml/strokepipe/pkg/errors"
)

// Accuracy returns the share of predictions matching the true labels.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("Accuracy", "empty input")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("Accuracy", len(yTrue), len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ROCAUC returns the area under the ROC curve for binary labels and
// positive-class scores, computed as the Mann-Whitney U statistic with
// average ranks for tied scores. When only one class is present the
// metric is undefined and an UndefinedMetricError is returned; callers
// aggregating over folds treat that fold as missing.
func ROCAUC(yTrue []int, score []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("ROCAUC", "empty input")
	}
	if len(score) != n {
		return 0, errors.NewDimensionError("ROCAUC", n, len(score), 0)
	}

	nPos := 0
	for _, label := range yTrue {
		if label != 0 && label != 1 {
			return 0, errors.NewValidationError("label", "must be binary (0 or 1)", label)
		}
		nPos += label
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0, errors.NewUndefinedMetricError("roc_auc", "only one class present")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return score[order[a]] < score[order[b]] })

	// Average ranks across tied score groups, then sum the ranks held by
	// positive examples.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && score[order[j]] == score[order[i]] {
			j++
		}
		// Ranks are 1-based; tied group [i, j) shares the mean rank.
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	rankSum := 0.0
	for i, label := range yTrue {
		if label == 1 {
			rankSum += ranks[i]
		}
	}

	u := rankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// ConfusionMatrix holds 2x2 prediction counts indexed by [true][predicted].
type ConfusionMatrix struct {
	Counts [2][2]int
}

// NewConfusionMatrix tabulates predicted against true labels.
func NewConfusionMatrix(yTrue, yPred []int) (*ConfusionMatrix, error) {
	if len(yTrue) == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty input")
	}
	if len(yPred) != len(yTrue) {
		return nil, errors.NewDimensionError("NewConfusionMatrix", len(yTrue), len(yPred), 0)
	}

	cm := &ConfusionMatrix{}
	for i := range yTrue {
		if yTrue[i] < 0 || yTrue[i] > 1 {
			return nil, errors.NewValidationError("label", "must be binary (0 or 1)", yTrue[i])
		}
		if yPred[i] < 0 || yPred[i] > 1 {
			return nil, errors.NewValidationError("prediction", "must be binary (0 or 1)", yPred[i])
		}
		cm.Counts[yTrue[i]][yPred[i]]++
	}
	return cm, nil
}

// Total returns the number of tabulated examples. It always equals the
// size of the scored set.
func (cm *ConfusionMatrix) Total() int {
	return cm.Counts[0][0] + cm.Counts[0][1] + cm.Counts[1][0] + cm.Counts[1][1]
}

// TruePositives returns count of correctly predicted positives.
func (cm *ConfusionMatrix) TruePositives() int { return cm.Counts[1][1] }

// TrueNegatives returns count of correctly predicted negatives.
func (cm *ConfusionMatrix) TrueNegatives() int { return cm.Counts[0][0] }

// FalsePositives returns count of negatives predicted positive.
func (cm *ConfusionMatrix) FalsePositives() int { return cm.Counts[0][1] }

// FalseNegatives returns count of positives predicted negative.
func (cm *ConfusionMatrix) FalseNegatives() int { return cm.Counts[1][0] }

// String renders the matrix as a small table with labeled axes.
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %12s %12s\n", "truth \\ pred", "no_stroke", "stroke")
	fmt.Fprintf(&b, "%-14s %12d %12d\n", "no_stroke", cm.Counts[0][0], cm.Counts[0][1])
	fmt.Fprintf(&b, "%-14s %12d %12d", "stroke", cm.Counts[1][0], cm.Counts[1][1])
	return b.String()
}
