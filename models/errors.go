package models

import "errors"

// Validation errors produced while parsing filters, changes and actions.
var (
	ErrInvalidField  = errors.New("invalid field")
	ErrInvalidValue  = errors.New("invalid field value")
	ErrInvalidAction = errors.New("invalid action")
)
