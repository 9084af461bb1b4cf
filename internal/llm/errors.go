package llm

import (
	"errors"
	"fmt"
)

// CredentialMissingError indicates the provider API key was not found in the
// process environment. Raised at construction; the caller must not proceed.
type CredentialMissingError struct {
	Provider string
	EnvVar   string
}

func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf("%s not set in environment (required for provider %q)", e.EnvVar, e.Provider)
}

// ModelNotFoundError indicates the (provider, model) pair is not in the
// capability table. Raised at construction.
type ModelNotFoundError struct {
	Provider string
	Model    string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found for provider %q", e.Model, e.Provider)
}

// ClientInitError indicates the underlying transport could not be built.
// Raised at construction.
type ClientInitError struct {
	Provider string
	Err      error
}

func (e *ClientInitError) Error() string {
	return fmt.Sprintf("initializing %s client: %v", e.Provider, e.Err)
}

func (e *ClientInitError) Unwrap() error { return e.Err }

// ConnectionError indicates the connection probe failed. It wraps the
// underlying transport error.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s API: %v", e.Provider, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConnectionFailureError indicates a call failed on every attempt of its
// retry budget. It wraps the last underlying error.
type ConnectionFailureError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ConnectionFailureError) Error() string {
	return fmt.Sprintf("no response from %s after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *ConnectionFailureError) Unwrap() error { return e.Err }

// IsCredentialMissing reports whether err is a missing-credential error.
func IsCredentialMissing(err error) bool {
	var ce *CredentialMissingError
	return errors.As(err, &ce)
}

// IsModelNotFound reports whether err is an unknown-model error.
func IsModelNotFound(err error) bool {
	var me *ModelNotFoundError
	return errors.As(err, &me)
}

// IsConnectionFailure reports whether err is an exhausted-retries failure.
func IsConnectionFailure(err error) bool {
	var fe *ConnectionFailureError
	return errors.As(err, &fe)
}
