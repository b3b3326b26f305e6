package errors

import (
	"strings"
	"unicode"
)

// ValidateTableDir validates a table directory argument.
// It rejects values that are empty, absurdly long, or contain control
// characters. Existence of the directory is checked later by the loader,
// which reports a LISTING_FAILED error with more context.
func ValidateTableDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidTable, "table directory cannot be empty")
	}

	const maxDirLength = 4096
	if len(dir) > maxDirLength {
		return New(ErrCodeInvalidTable, "table directory too long (max %d characters)", maxDirLength)
	}

	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidTable, "table directory contains invalid control characters")
		}
	}

	return nil
}

// ValidateFilename validates that a name is a simple basename without
// path components. Used for cache keys and output filenames.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	return nil
}
