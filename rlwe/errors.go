package rlwe

import (
	"errors"
)

// ErrInvalidParameters is returned, possibly wrapped, whenever the shape of
// an operand (parameters, key, plaintext or ciphertext) does not match
// the parameters it is used with.
var ErrInvalidParameters = errors.New("invalid parameters")
