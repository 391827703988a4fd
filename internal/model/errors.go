package model

import "errors"

var (
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrBootstrap is returned when a workspace could not be allocated or identified.
	ErrBootstrap = errors.New("bootstrap failed")
	// ErrUpload is returned when a file write location or a file write fails.
	ErrUpload = errors.New("upload failed")
	// ErrToken is returned when the execution token could not be obtained.
	ErrToken = errors.New("execution token request failed")
	// ErrConnect is returned when the event stream can't be established or breaks at
	// transport level.
	ErrConnect = errors.New("stream connection failed")
	// ErrExecution is returned when the remote side reports an error during execution.
	ErrExecution = errors.New("execution failed")
)
