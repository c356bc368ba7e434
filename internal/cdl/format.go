package cdl

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a supported file format.
type Format string

const (
	FormatCC   Format = "cc"
	FormatCCC  Format = "ccc"
	FormatCDL  Format = "cdl"
	FormatALE  Format = "ale"
	FormatFlex Format = "flex"
)

var extensionFormats = map[string]Format{
	".cc":   FormatCC,
	".ccc":  FormatCCC,
	".cdl":  FormatCDL,
	".ale":  FormatALE,
	".flex": FormatFlex,
	".flx":  FormatFlex,
}

// FormatForPath picks the format from a file extension, case-insensitively.
func FormatForPath(path string) (Format, bool) {
	format, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return format, ok
}

// ParseFormat validates a format name such as "ccc".
func ParseFormat(name string) (Format, error) {
	normalized := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
	switch normalized {
	case FormatCC, FormatCCC, FormatCDL, FormatALE, FormatFlex:
		return normalized, nil
	case "flx":
		return FormatFlex, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// Writable reports whether a serializer exists for the format.
func (f Format) Writable() bool {
	switch f {
	case FormatCC, FormatCCC, FormatCDL:
		return true
	}
	return false
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}
