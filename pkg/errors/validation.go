package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds node and connector identifiers.
const maxIDLength = 256

// ValidateID validates a node or connector identifier supplied by a caller.
//
// The rules:
//   - No empty IDs
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No leading '*', which is reserved for dummy vertices
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s ID cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s ID too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s ID contains invalid control characters", kind)
		}
	}
	if strings.HasPrefix(id, "*") {
		return New(ErrCodeInvalidInput, "%s ID %q must not start with '*'", kind, id)
	}
	return nil
}

// ValidateDimension validates a width, height or gap: it must be finite and
// non-negative.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative (got %g)", name, v)
	}
	return nil
}

// ValidatePath validates a relative file path used as a storage key.
// It prevents path traversal and ensures reasonable path length.
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
