package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeStructural, "unknown register: %s", "qr")

	if err.Code != ErrCodeStructural {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStructural)
	}

	if err.Message != "unknown register: qr" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown register: qr")
	}

	expected := "STRUCTURAL: unknown register: qr"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidInput, cause, "parse circuit")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      Basis("no rule for %q", "foo"),
			code:     ErrCodeBasis,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      Basis("no rule"),
			code:     ErrCodeConnectivity,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeConnectivity, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeConnectivity,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("route: %w", Connectivity("no path from 0 to 3")),
			code:     ErrCodeConnectivity,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      Structural("test"),
			expected: ErrCodeStructural,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true")
	}
	if !IsFatal(Structural("x")) {
		t.Error("structural errors must be fatal")
	}
	if !IsFatal(errors.New("plain")) {
		t.Error("uncoded errors must be fatal")
	}
	if IsFatal(New(ErrCodeConvergence, "loop")) {
		t.Error("convergence must not be fatal")
	}
}

func TestConvergenceWarning(t *testing.T) {
	w := ConvergenceWarning("optimize", 20)
	if w.Code != ErrCodeConvergence {
		t.Errorf("Code = %v, want %v", w.Code, ErrCodeConvergence)
	}
	want := "CONVERGENCE: optimize: no fixed point after 20 iterations"
	if w.String() != want {
		t.Errorf("String() = %q, want %q", w.String(), want)
	}
}
