package auth

import "errors"

// Token verification failures. They are logged but never returned past [Resolver].
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrMalformed        = errors.New("token is malformed")
)
