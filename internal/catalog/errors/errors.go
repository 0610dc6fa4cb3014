package errors

import "errors"

var (
	ErrNotFound  = errors.New("service listing not found")
	ErrInvalidID = errors.New("invalid service listing ID")
)
