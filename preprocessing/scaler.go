// Package preprocessing implements the feature transforms applied by the
// recipe: standardization of numeric columns and integer level coding of
// categorical columns. Transforms are fit once on training data and the
// fitted parameters are reused verbatim everywhere else.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/healthml/strokepipe/core/model"
	"github.com/healthml/strokepipe/pkg/errors"
)

// StandardScaler centers each column to mean zero and scales it to unit
// standard deviation. The statistics are computed by Fit and never
// re-derived by Transform, so test data and inference requests are scaled
// with training statistics only.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-column means from the fitted data.
	Mean []float64

	// Scale holds the per-column standard deviations from the fitted data.
	Scale []float64

	// NFeatures is the number of columns the scaler was fitted with.
	NFeatures int
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes the per-column mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		s.Mean[j] = sum / float64(r)
	}

	for j := 0; j < c; j++ {
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := X.At(i, j) - s.Mean[j]
			sumSquares += diff * diff
		}
		s.Scale[j] = math.Sqrt(sumSquares / float64(r))

		// Constant columns get unit scale to avoid division by zero.
		if math.Abs(s.Scale[j]) < 1e-8 {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits the scaler on X and returns the transformed data.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// TransformValue standardizes a single value of column j with the fitted
// statistics. Used when baking one inference request at a time.
func (s *StandardScaler) TransformValue(j int, v float64) (float64, error) {
	if !s.IsFitted() {
		return 0, errors.NewNotFittedError("StandardScaler", "TransformValue")
	}
	if j < 0 || j >= s.NFeatures {
		return 0, errors.NewDimensionError("StandardScaler.TransformValue", s.NFeatures, j, 1)
	}
	return (v - s.Mean[j]) / s.Scale[j], nil
}

// String returns a short description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler(unfitted)"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}
