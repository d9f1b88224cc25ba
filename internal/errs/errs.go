package errs

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the entity exists but the actor may not act on it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput indicates a required field was empty or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrWriteFailed indicates a store write failed or timed out.
	ErrWriteFailed = errors.New("write failed")
	// ErrReadFailed indicates a store read failed or timed out.
	ErrReadFailed = errors.New("read failed")
	// ErrUpstreamFailed indicates an external collaborator (media storage) failed.
	ErrUpstreamFailed = errors.New("upstream failed")
)
