package repository

import "errors"

var (
	ErrDBNotReady = errors.New("database not initialized")
	// ErrConditionFailed is returned when a conditional update matched no row.
	ErrConditionFailed = errors.New("condition failed")
)
