package site

import "errors"

// Error constants
var (
	ErrInvalidField = errors.New("invalid field value")
	ErrRender       = errors.New("page render failed")
)
