// Package dataset defines the patient record schema and implements loading,
// cleaning, splitting and summarizing of the stroke dataset.
package dataset

import (
	"encoding/json"
	"math"

	"github.com/healthml/strokepipe/pkg/errors"
)

// Label is the binary stroke outcome.
type Label int

const (
	// NoStroke means no stroke occurred.
	NoStroke Label = 0
	// Stroke means a stroke occurred.
	Stroke Label = 1
)

// String returns the categorical form of the label.
func (l Label) String() string {
	if l == Stroke {
		return "stroke"
	}
	return "no_stroke"
}

// MarshalJSON emits the categorical form, so API and CLI responses carry
// "stroke"/"no_stroke" instead of raw level codes.
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts both the categorical and the numeric form.
func (l *Label) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"stroke"`, "1":
		*l = Stroke
	case `"no_stroke"`, "0":
		*l = NoStroke
	default:
		return errors.NewValidationError("stroke", "must be stroke/no_stroke or 0/1", string(data))
	}
	return nil
}

// Gender levels retained after cleaning. Any other value, including
// "Other", is dropped from the dataset and rejected at inference time.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Features holds one patient's predictor fields. JSON tags match the
// column names of the raw dataset so inference requests use the same
// vocabulary as the source file.
type Features struct {
	Gender          string  `json:"gender"`
	Age             float64 `json:"age"`
	Hypertension    int     `json:"hypertension"`
	HeartDisease    int     `json:"heart_disease"`
	EverMarried     string  `json:"ever_married"`
	WorkType        string  `json:"work_type"`
	ResidenceType   string  `json:"Residence_type"`
	AvgGlucoseLevel float64 `json:"avg_glucose_level"`
	BMI             float64 `json:"bmi"`
	SmokingStatus   string  `json:"smoking_status"`
}

// Record is one row of the dataset: predictors plus the stroke outcome.
type Record struct {
	Features
	Stroke Label `json:"stroke"`
}

// HasBMI reports whether the bmi field carries a real value. Missing bmi
// is represented as NaN after loading.
func (f *Features) HasBMI() bool {
	return !math.IsNaN(f.BMI)
}

// Columns lists the dataset columns the loader requires, in the order the
// recipe consumes them as predictors (target last).
var Columns = []string{
	"gender",
	"age",
	"hypertension",
	"heart_disease",
	"ever_married",
	"work_type",
	"Residence_type",
	"avg_glucose_level",
	"bmi",
	"smoking_status",
	"stroke",
}
