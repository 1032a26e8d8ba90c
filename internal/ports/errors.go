package ports

import (
	"errors"
	"fmt"
	"strings"
)

// Common infrastructure errors returned by port implementations.
var (
	// ErrServiceUnavailable indicates that an external service is
	// unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrPromptNotFound indicates the prompt store has no template
	// registered under the requested name.
	ErrPromptNotFound = errors.New("prompt not found")
)

// UnsupportedModelError indicates that a model identifier could not be
// resolved by the catalog or by the naming heuristic.
type UnsupportedModelError struct {
	// ModelID is the identifier that failed to resolve.
	ModelID string

	// Available lists known model identifiers to aid the caller.
	Available []string
}

// Error implements the error interface for UnsupportedModelError.
func (e *UnsupportedModelError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("model %q is not supported", e.ModelID)
	}
	return fmt.Sprintf("model %q is not supported; available: %s",
		e.ModelID, strings.Join(e.Available, ", "))
}

// MissingCredentialError indicates that a direct-API provider requires
// a credential that is absent from the process environment and no
// gateway fallback was possible.
type MissingCredentialError struct {
	// Provider is the provider whose credential is missing.
	Provider string

	// EnvVar names the environment variable that was expected.
	EnvVar string
}

// Error implements the error interface for MissingCredentialError.
func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("provider %q requires environment variable %s, which is not set", e.Provider, e.EnvVar)
}
