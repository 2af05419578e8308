package model

import "errors"

// ErrInvalidInput marks a request rejected before any provider I/O.
var ErrInvalidInput = errors.New("invalid input")
