package service

import "errors"

var (
	ErrBundleNotFound  = errors.New("bundle not found")
	ErrBundleForbidden = errors.New("bundle belongs to another user")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid credentials")
	ErrInvalidInput    = errors.New("invalid input")
)
