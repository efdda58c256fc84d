package preprocessing

import (
	"sort"

	"github.com/healthml/strokepipe/core/model"
	"github.com/healthml/strokepipe/pkg/errors"
)

// LevelEncoder maps the category levels of one column to integer codes.
// Levels are assigned codes in sorted order so the mapping is stable
// across runs. Transform rejects levels that were not seen during Fit:
// an inference request with an out-of-domain category is a validation
// error, never a silent prediction.
type LevelEncoder struct {
	model.BaseEstimator

	// Field names the column, used in validation errors.
	Field string

	// LevelToCode maps a category level to its integer code.
	LevelToCode map[string]int

	// CodeToLevel is the inverse mapping.
	CodeToLevel []string
}

// NewLevelEncoder creates an unfitted encoder for the named column.
func NewLevelEncoder(field string) *LevelEncoder {
	return &LevelEncoder{Field: field}
}

// Fit learns the distinct levels present in values.
func (e *LevelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LevelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	unique := make(map[string]bool)
	for _, v := range values {
		unique[v] = true
	}

	levels := make([]string, 0, len(unique))
	for v := range unique {
		levels = append(levels, v)
	}
	sort.Strings(levels)

	e.CodeToLevel = levels
	e.LevelToCode = make(map[string]int, len(levels))
	for code, level := range levels {
		e.LevelToCode[level] = code
	}

	e.SetFitted()
	return nil
}

// Transform encodes values using the fitted levels.
func (e *LevelEncoder) Transform(values []string) ([]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LevelEncoder", "Transform")
	}

	out := make([]float64, len(values))
	for i, v := range values {
		code, err := e.Encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

// Encode returns the code of a single level, or a ValidationError naming
// the field when the level was not seen during Fit.
func (e *LevelEncoder) Encode(level string) (float64, error) {
	if !e.IsFitted() {
		return 0, errors.NewNotFittedError("LevelEncoder", "Encode")
	}
	code, ok := e.LevelToCode[level]
	if !ok {
		return 0, errors.NewValidationError(e.Field, "unknown category level", level)
	}
	return float64(code), nil
}

// Levels returns the fitted levels in code order.
func (e *LevelEncoder) Levels() []string {
	return e.CodeToLevel
}
