package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds slice names so that "<name>.png" stays a valid filename
// on common filesystems.
const maxNameLength = 200

// ValidateSliceName checks that a slice name is safe to use as a filename stem
// inside the export directory.
//
// The empty name is accepted: it exports as ".png", and several empty names
// overwrite each other just like any other collision.
//
// Rejected:
//   - Path separators (/ and \)
//   - The names "." and ".."
//   - Control characters and null bytes
//   - Names longer than 200 bytes
func ValidateSliceName(name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidSlice, "slice name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSlice, "slice name %q contains control characters", name)
		}
	}

	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidSlice, "slice name %q cannot contain path separators", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidSlice, "slice name %q is a directory reference", name)
	}

	return nil
}

// ValidateOutputDir validates an export destination directory path.
// Only obviously broken paths are rejected; the directory itself is created
// by the exporter.
func ValidateOutputDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidPath, "output directory contains a null byte")
		}
	}

	return nil
}
