package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identifierRegex matches OpenQASM identifiers: a lowercase letter followed by
// letters, digits or underscores.
var identifierRegex = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)

// ValidateRegisterName validates a quantum or classical register name.
//
// The validation rules follow the OpenQASM 2.0 grammar so that every register
// can be written back out:
//   - No empty names
//   - Must start with a lowercase letter
//   - Only letters, digits and underscores
//   - Maximum length of 64 characters
func ValidateRegisterName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "register name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "register name too long (max 64 characters)")
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid register name: %q", name)
	}
	return nil
}

// ValidateOpName validates an operation name used in a basis or a gate
// declaration. The same identifier rules as registers apply.
func ValidateOpName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "operation name cannot be empty")
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid operation name: %q", name)
	}
	return nil
}

// ValidateBasis checks every name of a target basis and rejects duplicates.
func ValidateBasis(names []string) error {
	if len(names) == 0 {
		return New(ErrCodeInvalidConfig, "basis cannot be empty")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if err := ValidateOpName(n); err != nil {
			return err
		}
		if seen[n] {
			return New(ErrCodeInvalidConfig, "duplicate basis element %q", n)
		}
		seen[n] = true
	}
	return nil
}

// ValidatePath validates a file path supplied to the service for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
