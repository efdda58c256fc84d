// Package errors provides the structured error types used across the
// stroke pipeline. Errors carry stack traces via cockroachdb/errors and
// marshal themselves as structured zerolog fields.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NotFittedError is returned when Predict, Transform or Bake is called on
// an estimator that has not been fitted yet.
type NotFittedError struct {
	EstimatorName string
	Method        string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("strokepipe: %s: not fitted yet. Call Fit() before using %s()", e.EstimatorName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", e.EstimatorName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(estimator, method string) error {
	err := &NotFittedError{EstimatorName: estimator, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the shape of input data does not match
// what an estimator was fitted with.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("strokepipe: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports an input field that failed validation, either in
// the raw dataset or in an inference request. Field identifies the
// offending column so callers can surface it to the user.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("strokepipe: validation failed for field '%s': %s (got: %v)", e.Field, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("field", e.Field).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(field, reason string, value interface{}) error {
	err := &ValidationError{Field: field, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ValueError is returned when an argument value is out of range or
// otherwise unusable, such as a split proportion outside (0,1).
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("strokepipe: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError wraps a lower-level failure during model training or scoring.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("strokepipe: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("strokepipe: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// UndefinedMetricError is returned when a metric cannot be computed for the
// given inputs, for example ROC-AUC on a fold containing a single class.
// Cross-validation treats the fold's value as missing rather than aborting.
type UndefinedMetricError struct {
	Metric    string
	Condition string
}

func (e *UndefinedMetricError) Error() string {
	return fmt.Sprintf("strokepipe: metric '%s' is undefined: %s", e.Metric, e.Condition)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UndefinedMetricError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("metric", e.Metric).
		Str("condition", e.Condition).
		Str("type", "UndefinedMetricError")
}

// NewUndefinedMetricError creates an UndefinedMetricError with a stack
// trace attached.
func NewUndefinedMetricError(metric, condition string) error {
	err := &UndefinedMetricError{Metric: metric, Condition: condition}
	return errors.WithStack(err)
}

// IsUndefinedMetric reports whether err is an UndefinedMetricError.
func IsUndefinedMetric(err error) bool {
	var target *UndefinedMetricError
	return errors.As(err, &target)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ErrEmptyData is returned when an operation receives no rows.
var ErrEmptyData = New("empty data")
