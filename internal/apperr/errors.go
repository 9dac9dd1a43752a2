// Package apperr declares the error kinds shared across the feed pipeline.
package apperr

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrParse         = errors.New("parse error")
	ErrMissingField  = errors.New("missing required field")
	ErrValidation    = errors.New("validation failed")
)
