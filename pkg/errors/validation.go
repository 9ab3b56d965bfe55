package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateNonNegative checks that a dimension is finite and not negative.
// Zero is accepted: zero-length sections are legal and simply draw nothing.
func ValidateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidGeometry, "must be finite, got %g", v).WithField(field)
	}
	if v < 0 {
		return New(ErrCodeInvalidGeometry, "must be non-negative, got %g", v).WithField(field)
	}
	return nil
}

// ValidatePositive checks that a dimension is finite and strictly positive.
func ValidatePositive(field string, v float64) error {
	if err := ValidateNonNegative(field, v); err != nil {
		return err
	}
	if v == 0 {
		return New(ErrCodeInvalidGeometry, "must be positive").WithField(field)
	}
	return nil
}

// ValidateFinite checks that a coordinate or angle is a usable number.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidGeometry, "must be finite, got %g", v).WithField(field)
	}
	return nil
}

// ValidateName validates a design or cross-section name.
// Names end up in GDSII STRNAME records and cache keys, so they are kept to
// printable ASCII without whitespace and at most 32 characters (the classic
// GDSII structure name limit).
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > 32 {
		return New(ErrCodeInvalidInput, "name too long (max 32 characters): %q", name)
	}
	for _, r := range name {
		if r > unicode.MaxASCII || unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "name contains invalid characters: %q", name)
		}
	}
	return nil
}

// ValidateOutputPath validates a path the CLI is about to write to.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must not point into a .git directory
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if part == ".git" {
			return New(ErrCodeInvalidPath, "refusing to write into %s", part)
		}
	}
	return nil
}
