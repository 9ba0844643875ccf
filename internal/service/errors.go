package service

import "errors"

var (
	errNoUploader = errors.New("object storage not configured")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
