package errors

import (
	"slices"
	"strings"
	"unicode"
)

// maxKeyLength bounds expand keys accepted from clients.
const maxKeyLength = 512

// ValidateKey validates a qualified node key as sent by a client in an
// expand-set. Keys are slash-joined item ids.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 512 characters
//   - No control characters
//   - No empty segments (leading, trailing or doubled slashes)
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	if slices.Contains(strings.Split(key, "/"), "") {
		return New(ErrCodeInvalidKey, "key %q has an empty segment", key)
	}

	return nil
}

// ValidateKeys validates every key and returns the first failure.
func ValidateKeys(keys []string) error {
	for _, k := range keys {
		if err := ValidateKey(k); err != nil {
			return err
		}
	}
	return nil
}

// RenderFormats lists the output formats the renderer produces.
var RenderFormats = []string{"dot", "svg", "png", "json"}

// ValidateFormat checks that format is one of [RenderFormats].
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(RenderFormats, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(RenderFormats, ", "))
	}
	return nil
}
