package extension

import "errors"

// Sentinel errors for the extension registry.
var (
	ErrAlreadyRegistered = errors.New("extension already registered")
	ErrEmptyName         = errors.New("extension name is empty")
)
