package model

import "errors"

var (
	// ErrEmptySeries is returned when a series carries no bars at all.
	ErrEmptySeries = errors.New("empty price series")
	// ErrMalformedInput covers missing columns, unordered dates and non-finite values.
	ErrMalformedInput = errors.New("malformed price series")
	// ErrInsufficientData is returned when a data source yields too few bars to analyse.
	ErrInsufficientData = errors.New("insufficient price data")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// ErrorResult is the record emitted at service boundaries in place of a result.
type ErrorResult struct {
	Error string `json:"error"`
}

// NewErrorResult wraps err for serialisation.
func NewErrorResult(err error) ErrorResult {
	return ErrorResult{Error: err.Error()}
}
