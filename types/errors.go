// Package types defines the core domain types shared across modelforge packages.
//
// This file defines the error taxonomy. Every failure raised by the build
// engine and its collaborators is classified by one of the sentinels below so
// callers can branch with errors.Is rather than string matching.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for build failure classification.
var (
	// ErrArgument indicates a missing or nil required input (target type,
	// configuration, instance).
	ErrArgument = errors.New("argument required")

	// ErrNotSupported indicates a generator or creator was asked to act on a
	// (type, reference name) pair it does not support.
	ErrNotSupported = errors.New("not supported")

	// ErrMissingMember indicates supplied constructor arguments match no
	// constructor signature of the type.
	ErrMissingMember = errors.New("missing member")

	// ErrBuildFailed indicates no rule, creator, generator or constructor can
	// produce the requested type.
	ErrBuildFailed = errors.New("cannot build type")

	// ErrConfiguration indicates a malformed rule or configuration, raised when
	// the rule or configuration is created.
	ErrConfiguration = errors.New("invalid configuration")
)

// BuildError wraps an underlying error with build classification.
// It preserves the original error in the chain for inspection via errors.As.
type BuildError struct {
	// Kind is the sentinel error for classification (e.g., ErrBuildFailed).
	Kind error
	// Type is the type being built, if known.
	Type reflect.Type
	// Reference is the property or parameter name being built, if any.
	Reference string
	// Err is the underlying error. May be nil when Kind says it all.
	Err error
}

func (e *BuildError) Error() string {
	subject := "<nil>"
	if e.Type != nil {
		subject = e.Type.String()
	}
	if e.Reference != "" {
		subject = fmt.Sprintf("%s (%s)", subject, e.Reference)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", subject, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", subject, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *BuildError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewBuildError creates a classified build error.
func NewBuildError(kind error, t reflect.Type, reference string, err error) *BuildError {
	return &BuildError{
		Kind:      kind,
		Type:      t,
		Reference: reference,
		Err:       err,
	}
}

// ArgumentError reports a missing required argument by name.
func ArgumentError(name string) error {
	return fmt.Errorf("%w: %s", ErrArgument, name)
}

// NotSupportedError reports that t (referenced as reference) is outside the
// capability of the named component.
func NotSupportedError(component string, t reflect.Type, reference string) error {
	return NewBuildError(ErrNotSupported, t, reference, fmt.Errorf("%s does not support this request", component))
}

// ConfigurationError reports a malformed rule or configuration.
func ConfigurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
