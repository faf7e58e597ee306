package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenInvalid       = errors.New("auth: token invalid")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrRefreshInvalid     = errors.New("auth: refresh token invalid")
	ErrNotFound           = errors.New("auth: not found")
	ErrConflict           = errors.New("auth: conflict")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrForbidden          = errors.New("auth: forbidden")
)
