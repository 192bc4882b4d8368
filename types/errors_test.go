package types //nolint:revive // types is a valid package name

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBuildError_IsKind(t *testing.T) {
	tests := []struct {
		name string
		kind error
	}{
		{"argument", ErrArgument},
		{"not supported", ErrNotSupported},
		{"missing member", ErrMissingMember},
		{"build failed", ErrBuildFailed},
		{"configuration", ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuildError(tt.kind, reflect.TypeOf(0), "Count", errors.New("boom"))
			if !errors.Is(err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.kind)
			}

			wrapped := fmt.Errorf("outer: %w", err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("wrapped error lost kind %v", tt.kind)
			}
		})
	}
}

func TestBuildError_PreservesUnderlying(t *testing.T) {
	inner := errors.New("inner failure")
	err := NewBuildError(ErrBuildFailed, reflect.TypeOf(""), "", inner)

	if !errors.Is(err, inner) {
		t.Error("expected inner error in chain")
	}

	var be *BuildError
	if !errors.As(fmt.Errorf("ctx: %w", err), &be) {
		t.Fatalf("expected *BuildError in chain")
	}
	if be.Type != reflect.TypeOf("") {
		t.Errorf("Type = %v, want string", be.Type)
	}
}

func TestBuildError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"with reference", NewBuildError(ErrNotSupported, reflect.TypeOf(0), "Age", nil), "int (Age): not supported"},
		{"nil type", NewBuildError(ErrBuildFailed, nil, "", errors.New("x")), "<nil>: cannot build type: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgumentError(t *testing.T) {
	err := ArgumentError("type")
	if !errors.Is(err, ErrArgument) {
		t.Errorf("expected ErrArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "type") {
		t.Errorf("Error() = %q, want argument name", err.Error())
	}
}

func TestSessionMeta_Validate(t *testing.T) {
	ok := SessionMeta{SessionID: "s-1", StartedAt: time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if got := ok.Day(); got != "2026-03-01" {
		t.Errorf("Day() = %q, want 2026-03-01", got)
	}

	tests := []struct {
		name string
		meta SessionMeta
	}{
		{"missing session id", SessionMeta{StartedAt: time.Now()}},
		{"missing start time", SessionMeta{SessionID: "s-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.meta.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
