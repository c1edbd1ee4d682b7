package hg

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound means a login used an email nobody signed up with.
	ErrUserNotFound = errors.New("user not found, sign up first")
	// ErrUserAlreadyExists means a signup used an email that is taken.
	ErrUserAlreadyExists = errors.New("user already exists, log in instead")
	// ErrCredentialMissing means the AI service has no API key configured.
	ErrCredentialMissing = errors.New("AI service unavailable: API key not configured")
	// ErrNoUser is returned by operations that need a logged-in user.
	ErrNoUser = errors.New("no user logged in")
	// ErrNotReady is returned when user data is not (or no longer) loaded.
	ErrNotReady = errors.New("user data is not loaded")
	// ErrStaleLoad is returned when a load finishes after another login or a logout.
	ErrStaleLoad = errors.New("load superseded by a newer session")
	// ErrInvalidProfile wraps profile validation failures.
	ErrInvalidProfile = errors.New("invalid profile")
)

// StorageReadError describes a stored value that could not be read or decoded.
// It is logged, never returned to callers of the gateway.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError describes a value that could not be encoded or written.
// In-memory state stays correct, it just isn't persisted.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// AnalysisError is returned when image analysis fails.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("food analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// PlanGenerationError is returned when diet plan generation fails.
type PlanGenerationError struct {
	Err error
}

func (e *PlanGenerationError) Error() string {
	return fmt.Sprintf("diet plan generation failed: %v", e.Err)
}

func (e *PlanGenerationError) Unwrap() error { return e.Err }
