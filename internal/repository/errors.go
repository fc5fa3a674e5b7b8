package repository

import "errors"

var (
	// ErrNotFound means the point lookup matched no record.
	ErrNotFound = errors.New("record not found")
	// ErrConversion means a stored attribute had an unexpected shape.
	ErrConversion = errors.New("stored attribute conversion failed")
)
