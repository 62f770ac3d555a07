package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrJobInFlight        = errors.New("a generation job is already in progress")
	ErrNoJobInFlight      = errors.New("no generation job in progress")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidOptions     = errors.New("generation options failed validation")
	ErrJobImpossible      = errors.New("no worker can fulfil this request")
	ErrEmptyGeneration    = errors.New("result contained no generations")
	ErrEmptyImage         = errors.New("downloaded image is empty")
	ErrFetchExhausted     = errors.New("result fetch attempts exhausted")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
