// Package recipe declares the model's feature specification: which record
// fields are predictors, which is the target, and the transforms applied
// to them. A recipe is fitted once on training data; the fitted transform
// parameters are then reapplied unchanged when baking test data or single
// inference requests. Re-deriving statistics from non-training data would
// leak information into the evaluation, so the fitted recipe never does.
package recipe

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/healthml/strokepipe/core/model"
	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/pkg/errors"
	"github.com/healthml/strokepipe/preprocessing"
)

// Design-matrix column layout. Predictors appear in the declaration order
// of the model formula; the target (stroke) is never part of the matrix.
const (
	colGender = iota
	colAge
	colHypertension
	colHeartDisease
	colResidenceType
	colAvgGlucose
	colWorkType
	colSmokingStatus
	colBMI
	colEverMarried

	// NumFeatures is the width of the design matrix.
	NumFeatures = 10
)

// featureNames is indexed by design-matrix column.
var featureNames = []string{
	"gender",
	"age",
	"hypertension",
	"heart_disease",
	"Residence_type",
	"avg_glucose_level",
	"work_type",
	"smoking_status",
	"bmi",
	"ever_married",
}

// numericCols are the columns normalized by the standard scaler, in the
// order they occupy the scaler's internal matrix.
var numericCols = []int{colAge, colAvgGlucose, colBMI}

// categoricalCols maps design-matrix columns to the record field they
// encode.
var categoricalCols = []int{colGender, colResidenceType, colWorkType, colSmokingStatus, colEverMarried}

// FeatureNames returns the predictor names in design-matrix column order.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// Fitted is a recipe whose transform parameters have been learned from a
// training set. It bakes record sets into design matrices and validates
// single inference requests.
type Fitted struct {
	model.BaseEstimator

	scaler   *preprocessing.StandardScaler
	encoders map[int]*preprocessing.LevelEncoder
}

// Fit learns the recipe's transform parameters from train: category levels
// for every categorical predictor and normalization statistics for every
// numeric predictor.
func Fit(train []dataset.Record) (*Fitted, error) {
	if len(train) == 0 {
		return nil, errors.NewModelError("recipe.Fit", "empty training data", errors.ErrEmptyData)
	}

	f := &Fitted{
		scaler:   preprocessing.NewStandardScaler(),
		encoders: make(map[int]*preprocessing.LevelEncoder, len(categoricalCols)),
	}

	for _, col := range categoricalCols {
		enc := preprocessing.NewLevelEncoder(featureNames[col])
		values := make([]string, len(train))
		for i := range train {
			values[i] = categoricalValue(&train[i].Features, col)
		}
		if err := enc.Fit(values); err != nil {
			return nil, errors.Wrapf(err, "fitting encoder for %s", featureNames[col])
		}
		f.encoders[col] = enc
	}

	numeric := mat.NewDense(len(train), len(numericCols), nil)
	for i := range train {
		for j, col := range numericCols {
			numeric.Set(i, j, numericValue(&train[i].Features, col))
		}
	}
	if err := f.scaler.Fit(numeric); err != nil {
		return nil, errors.Wrap(err, "fitting scaler")
	}

	f.SetFitted()
	return f, nil
}

// Bake converts records into a design matrix and a label vector using the
// fitted transforms.
func (f *Fitted) Bake(records []dataset.Record) (*mat.Dense, []int, error) {
	if !f.IsFitted() {
		return nil, nil, errors.NewNotFittedError("Recipe", "Bake")
	}
	if len(records) == 0 {
		return nil, nil, errors.NewModelError("Recipe.Bake", "empty data", errors.ErrEmptyData)
	}

	X := mat.NewDense(len(records), NumFeatures, nil)
	y := make([]int, len(records))

	for i := range records {
		row, err := f.BakeFeatures(&records[i].Features)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "baking row %d", i)
		}
		X.SetRow(i, row)
		y[i] = int(records[i].Stroke)
	}
	return X, y, nil
}

// BakeFeatures converts one set of predictor fields into a design-matrix
// row, validating it against the fitted recipe. Unknown category levels
// and missing numeric values yield a ValidationError naming the field.
func (f *Fitted) BakeFeatures(features *dataset.Features) ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("Recipe", "BakeFeatures")
	}
	if err := validateFeatures(features); err != nil {
		return nil, err
	}

	row := make([]float64, NumFeatures)

	for _, col := range categoricalCols {
		code, err := f.encoders[col].Encode(categoricalValue(features, col))
		if err != nil {
			return nil, err
		}
		row[col] = code
	}

	for j, col := range numericCols {
		scaled, err := f.scaler.TransformValue(j, numericValue(features, col))
		if err != nil {
			return nil, err
		}
		row[col] = scaled
	}

	row[colHypertension] = float64(features.Hypertension)
	row[colHeartDisease] = float64(features.HeartDisease)

	return row, nil
}

// Levels returns the fitted category levels of the named predictor, or nil
// if the predictor is not categorical.
func (f *Fitted) Levels(name string) []string {
	for _, col := range categoricalCols {
		if featureNames[col] == name {
			return f.encoders[col].Levels()
		}
	}
	return nil
}

// NumericStats exposes the fitted normalization parameters of the named
// numeric predictor. Tests assert the same statistics are reused across
// bakes.
func (f *Fitted) NumericStats(name string) (mean, scale float64, ok bool) {
	for j, col := range numericCols {
		if featureNames[col] == name {
			return f.scaler.Mean[j], f.scaler.Scale[j], true
		}
	}
	return 0, 0, false
}

func validateFeatures(features *dataset.Features) error {
	if math.IsNaN(features.Age) {
		return errors.NewValidationError("age", "missing numeric value", features.Age)
	}
	if math.IsNaN(features.AvgGlucoseLevel) {
		return errors.NewValidationError("avg_glucose_level", "missing numeric value", features.AvgGlucoseLevel)
	}
	if math.IsNaN(features.BMI) {
		return errors.NewValidationError("bmi", "missing numeric value", features.BMI)
	}
	if features.Hypertension != 0 && features.Hypertension != 1 {
		return errors.NewValidationError("hypertension", "must be 0 or 1", features.Hypertension)
	}
	if features.HeartDisease != 0 && features.HeartDisease != 1 {
		return errors.NewValidationError("heart_disease", "must be 0 or 1", features.HeartDisease)
	}
	return nil
}

func categoricalValue(features *dataset.Features, col int) string {
	switch col {
	case colGender:
		return features.Gender
	case colResidenceType:
		return features.ResidenceType
	case colWorkType:
		return features.WorkType
	case colSmokingStatus:
		return features.SmokingStatus
	case colEverMarried:
		return features.EverMarried
	}
	return ""
}

func numericValue(features *dataset.Features, col int) float64 {
	switch col {
	case colAge:
		return features.Age
	case colAvgGlucose:
		return features.AvgGlucoseLevel
	case colBMI:
		return features.BMI
	}
	return math.NaN()
}
