package member

import "errors"

var (
	ErrNotFound      = errors.New("member: not found")
	ErrConflict      = errors.New("member: already exists")
	ErrValidation    = errors.New("member: invalid input")
	ErrUnknownStatus = errors.New("member: unknown status")
)
