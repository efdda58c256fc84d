package recipe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/pkg/errors"
)

func trainingRecords() []dataset.Record {
	return []dataset.Record{
		{
			Features: dataset.Features{
				Gender: "Male", Age: 67, Hypertension: 0, HeartDisease: 1,
				EverMarried: "Yes", WorkType: "Private", ResidenceType: "Urban",
				AvgGlucoseLevel: 228.69, BMI: 36.6, SmokingStatus: "formerly smoked",
			},
			Stroke: dataset.Stroke,
		},
		{
			Features: dataset.Features{
				Gender: "Female", Age: 61, Hypertension: 0, HeartDisease: 0,
				EverMarried: "Yes", WorkType: "Self-employed", ResidenceType: "Rural",
				AvgGlucoseLevel: 202.21, BMI: 28.1, SmokingStatus: "never smoked",
			},
			Stroke: dataset.Stroke,
		},
		{
			Features: dataset.Features{
				Gender: "Female", Age: 24, Hypertension: 1, HeartDisease: 0,
				EverMarried: "No", WorkType: "Govt_job", ResidenceType: "Urban",
				AvgGlucoseLevel: 85.3, BMI: 22.4, SmokingStatus: "smokes",
			},
			Stroke: dataset.NoStroke,
		},
		{
			Features: dataset.Features{
				Gender: "Male", Age: 45, Hypertension: 0, HeartDisease: 0,
				EverMarried: "Yes", WorkType: "children", ResidenceType: "Rural",
				AvgGlucoseLevel: 101.2, BMI: 31.0, SmokingStatus: "Unknown",
			},
			Stroke: dataset.NoStroke,
		},
	}
}

func TestFitAndBakeShape(t *testing.T) {
	train := trainingRecords()
	fitted, err := Fit(train)
	require.NoError(t, err)

	X, y, err := fitted.Bake(train)
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, len(train), r)
	assert.Equal(t, NumFeatures, c)
	assert.Equal(t, []int{1, 1, 0, 0}, y)
}

func TestNumericColumnsNormalized(t *testing.T) {
	train := trainingRecords()
	fitted, err := Fit(train)
	require.NoError(t, err)

	X, _, err := fitted.Bake(train)
	require.NoError(t, err)

	// Numeric predictor columns are centered and unit-scaled on the
	// training data itself.
	for _, col := range numericCols {
		sum, sumSq := 0.0, 0.0
		for i := 0; i < len(train); i++ {
			v := X.At(i, col)
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(len(train))
		std := math.Sqrt(sumSq/float64(len(train)) - mean*mean)

		assert.InDeltaf(t, 0, mean, 1e-10, "column %s mean", featureNames[col])
		assert.InDeltaf(t, 1, std, 1e-10, "column %s std", featureNames[col])
	}
}

func TestStatisticsReusedForNewData(t *testing.T) {
	train := trainingRecords()
	fitted, err := Fit(train)
	require.NoError(t, err)

	meanBefore, scaleBefore, ok := fitted.NumericStats("bmi")
	require.True(t, ok)

	// Bake wildly different data; the fitted parameters must not move.
	test := trainingRecords()
	for i := range test {
		test[i].BMI += 100
		test[i].AvgGlucoseLevel *= 3
	}
	_, _, err = fitted.Bake(test)
	require.NoError(t, err)

	meanAfter, scaleAfter, ok := fitted.NumericStats("bmi")
	require.True(t, ok)
	assert.Equal(t, meanBefore, meanAfter)
	assert.Equal(t, scaleBefore, scaleAfter)

	// And a single baked row uses those same statistics.
	features := test[0].Features
	row, err := fitted.BakeFeatures(&features)
	require.NoError(t, err)
	assert.InDelta(t, (features.BMI-meanBefore)/scaleBefore, row[colBMI], 1e-12)
}

func TestBakeFeaturesUnknownLevel(t *testing.T) {
	fitted, err := Fit(trainingRecords())
	require.NoError(t, err)

	features := trainingRecords()[0].Features
	features.Gender = "Other"

	_, err = fitted.BakeFeatures(&features)
	require.Error(t, err)
	require.True(t, errors.IsValidation(err))

	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "gender", valErr.Field)
}

func TestBakeFeaturesMissingNumeric(t *testing.T) {
	fitted, err := Fit(trainingRecords())
	require.NoError(t, err)

	features := trainingRecords()[0].Features
	features.BMI = math.NaN()

	_, err = fitted.BakeFeatures(&features)
	require.Error(t, err)

	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "bmi", valErr.Field)
}

func TestBakeFeaturesBadBinary(t *testing.T) {
	fitted, err := Fit(trainingRecords())
	require.NoError(t, err)

	features := trainingRecords()[0].Features
	features.Hypertension = 2

	_, err = fitted.BakeFeatures(&features)
	require.Error(t, err)

	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "hypertension", valErr.Field)
}

func TestUnfittedRecipe(t *testing.T) {
	var fitted Fitted
	_, _, err := fitted.Bake(trainingRecords())
	require.Error(t, err)

	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))
}

func TestLevelsAndFeatureNames(t *testing.T) {
	fitted, err := Fit(trainingRecords())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Female", "Male"}, fitted.Levels("gender"))
	assert.Nil(t, fitted.Levels("age"))

	names := FeatureNames()
	require.Len(t, names, NumFeatures)
	assert.Equal(t, "gender", names[colGender])
	assert.Equal(t, "bmi", names[colBMI])
}
