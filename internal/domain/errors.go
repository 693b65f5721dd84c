package domain

import "errors"

var (
	// ErrInputUnavailable reports a dataset source that could not be read. It is
	// the only fatal error class of the pipeline.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrInvalidConfig reports a dataset registry or parameter config that
	// fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)
