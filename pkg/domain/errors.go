package domain

import (
	"errors"
	"fmt"
)

var (
	// requested entity is not found
	ErrMissing = errors.New("missing")

	// requested entity is found too much
	ErrTooMuch = errors.New("too much")

	ErrInvalidPayloadStateChanging = errors.New("cannot change payload state")
)

func NewErrInvalidPayloadStateChanging(from, to PayloadState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidPayloadStateChanging, from, to)
}
