package core

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxUploadBytes caps an import file when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// IsCSVFilename reports whether name has a .csv extension, ignoring case.
func IsCSVFilename(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// ReadUpload reads an uploaded CSV into a string.
//
// A UTF-8 or UTF-16 byte order mark is honored and removed, and invalid
// UTF-8 sequences become U+FFFD. More than maxBytes of input fails with
// ErrFileTooLarge; a non-positive maxBytes uses DefaultMaxUploadBytes.
func ReadUpload(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	limited := &io.LimitedReader{R: r, N: maxBytes + 1}
	decoded := transform.NewReader(limited, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if limited.N <= 0 {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}
	return string(data), nil
}
