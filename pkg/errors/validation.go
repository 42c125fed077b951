package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a repository-relative file path for safety.
// It rejects paths that could be used for traversal outside the repository
// or that contain characters GitHub never serves.
//
// The validation rules are intentionally conservative:
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No backslashes or leading slashes
//   - Maximum length of 1024 characters
//
// An empty path is valid and refers to the repository root.
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}

	if len(path) > 1024 {
		return New(ErrCodeInvalidPath, "path too long (max 1024 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be repository-relative, not absolute")
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "path contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
